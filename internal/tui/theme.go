package tui

import (
	"github.com/charmbracelet/lipgloss"

	"cli-chat/internal/app"
)

type ThemeMode string

const (
	ThemeLight ThemeMode = "light"
	ThemeDark  ThemeMode = "dark"
)

// ResolveThemeMode picks the active mode: config override first, then the
// stored preference, then the terminal's ambient background.
func ResolveThemeMode(a *app.Application) ThemeMode {
	if m, ok := parseThemeMode(a.Config.Theme); ok {
		return m
	}
	if m, ok := parseThemeMode(a.ThemePreference()); ok {
		return m
	}
	if lipgloss.HasDarkBackground() {
		return ThemeDark
	}
	return ThemeLight
}

func parseThemeMode(value string) (ThemeMode, bool) {
	switch ThemeMode(value) {
	case ThemeLight:
		return ThemeLight, true
	case ThemeDark:
		return ThemeDark, true
	default:
		return "", false
	}
}

func (m ThemeMode) Toggle() ThemeMode {
	if m == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

type Theme struct {
	Mode ThemeMode

	TextPrimary lipgloss.Color
	TextMuted   lipgloss.Color
	Accent      lipgloss.Color
	Success     lipgloss.Color
	Error       lipgloss.Color
	Border      lipgloss.Color

	TopBar      lipgloss.Style
	TopBarTitle lipgloss.Style
	Pane        lipgloss.Style
	InputBox    lipgloss.Style
	Footer      lipgloss.Style
	FieldLabel  lipgloss.Style
	FieldError  lipgloss.Style
	Selected    lipgloss.Style
	Muted       lipgloss.Style

	RoleYou lipgloss.Style
	RoleAI  lipgloss.Style
	Typing  lipgloss.Style

	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style
}

func NewTheme(mode ThemeMode) Theme {
	var t Theme
	if mode == ThemeDark {
		t = Theme{
			Mode:        ThemeDark,
			TextPrimary: lipgloss.Color("#f2f2f2"),
			TextMuted:   lipgloss.Color("#9aa0a6"),
			Accent:      lipgloss.Color("#7aa2ff"),
			Success:     lipgloss.Color("#46d1b7"),
			Error:       lipgloss.Color("#ff7a7a"),
			Border:      lipgloss.Color("#3a3a3a"),
		}
	} else {
		t = Theme{
			Mode:        ThemeLight,
			TextPrimary: lipgloss.Color("#1d2433"),
			TextMuted:   lipgloss.Color("#718096"),
			Accent:      lipgloss.Color("#1f6feb"),
			Success:     lipgloss.Color("#0f766e"),
			Error:       lipgloss.Color("#b42318"),
			Border:      lipgloss.Color("#cbd5e0"),
		}
	}

	t.TopBar = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.TopBarTitle = lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)
	t.Pane = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(t.Border).Padding(0, 1)
	t.InputBox = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(t.Accent).Padding(0, 1)
	t.Footer = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.FieldLabel = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.FieldError = lipgloss.NewStyle().Foreground(t.Error)
	t.Selected = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.Muted = lipgloss.NewStyle().Foreground(t.TextMuted)

	t.RoleYou = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.RoleAI = lipgloss.NewStyle().Bold(true).Foreground(t.Success)
	t.Typing = lipgloss.NewStyle().Foreground(t.TextMuted).Italic(true)

	t.ToastSuccess = lipgloss.NewStyle().Bold(true).Foreground(t.Success)
	t.ToastError = lipgloss.NewStyle().Bold(true).Foreground(t.Error)
	return t
}
