package tui

import (
	"testing"

	"cli-chat/internal/app"
)

func newTestApplication(t *testing.T) *app.Application {
	t.Helper()
	cfg := app.DefaultConfig()
	cfg.DataDir = t.TempDir()
	a, err := app.NewApplication(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestParseThemeMode(t *testing.T) {
	if m, ok := parseThemeMode("dark"); !ok || m != ThemeDark {
		t.Fatalf("dark: got %q, %v", m, ok)
	}
	if m, ok := parseThemeMode("light"); !ok || m != ThemeLight {
		t.Fatalf("light: got %q, %v", m, ok)
	}
	for _, bad := range []string{"", "auto", "DARK"} {
		if _, ok := parseThemeMode(bad); ok {
			t.Fatalf("expected %q rejected", bad)
		}
	}
}

func TestThemeModeToggle(t *testing.T) {
	if ThemeDark.Toggle() != ThemeLight || ThemeLight.Toggle() != ThemeDark {
		t.Fatalf("toggle must flip between light and dark")
	}
}

func TestResolveThemeModeConfigOverrideWins(t *testing.T) {
	a := newTestApplication(t)
	a.Config.Theme = "dark"
	a.SaveThemePreference("light")

	if got := ResolveThemeMode(a); got != ThemeDark {
		t.Fatalf("config override ignored: got %q", got)
	}
}

func TestResolveThemeModeUsesStoredPreference(t *testing.T) {
	a := newTestApplication(t)
	a.SaveThemePreference("dark")

	if got := ResolveThemeMode(a); got != ThemeDark {
		t.Fatalf("stored preference ignored: got %q", got)
	}

	a.SaveThemePreference("light")
	if got := ResolveThemeMode(a); got != ThemeLight {
		t.Fatalf("stored preference ignored: got %q", got)
	}
}

func TestResolveThemeModeAmbientFallback(t *testing.T) {
	a := newTestApplication(t)

	got := ResolveThemeMode(a)
	if got != ThemeLight && got != ThemeDark {
		t.Fatalf("expected a concrete mode, got %q", got)
	}
}

func TestNewThemePalettesDiffer(t *testing.T) {
	light := NewTheme(ThemeLight)
	dark := NewTheme(ThemeDark)
	if light.Mode != ThemeLight || dark.Mode != ThemeDark {
		t.Fatalf("mode not carried: %q / %q", light.Mode, dark.Mode)
	}
	if light.TextPrimary == dark.TextPrimary {
		t.Fatalf("expected distinct palettes")
	}
}
