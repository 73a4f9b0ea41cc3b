package main

import (
	"encoding/json"
	"fmt"
	"os"

	"cli-chat/internal/app"
	"cli-chat/internal/tui"

	"github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

var configPath string

func buildApplication() (*app.Application, error) {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := app.NewLogger(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	return app.NewApplication(cfg, logger)
}

func main() {
	root := &cobra.Command{
		Use:     "gchat",
		Short:   "gchat - terminal chat client demo",
		Long:    "gchat is a terminal chat client demo: phone/OTP sign-in (simulated), chat rooms and a simulated assistant.\n\nAll state lives on this machine; there is no server.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApplication()
			if err != nil {
				return err
			}
			defer application.Close()

			p := tea.NewProgram(tui.New(application), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return err
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yml")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Print the persisted state snapshot as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApplication()
			if err != nil {
				return err
			}
			defer application.Close()

			data, err := json.MarshalIndent(application.Store.Snapshot(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
	root.AddCommand(exportCmd)

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard the persisted state snapshot and theme preference",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApplication()
			if err != nil {
				return err
			}
			defer application.Close()

			application.Reset()
			fmt.Println("State cleared.")
			return nil
		},
	}
	root.AddCommand(resetCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
