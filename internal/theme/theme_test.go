package theme

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ghostwriter-blog/ghostwriter/internal/config"
)

func setupConfig(t *testing.T) {
	t.Helper()
	originalConfig := config.AppConfig
	t.Cleanup(func() { config.AppConfig = originalConfig })

	config.AppConfig = &config.Config{}
	config.ApplyDefaults(config.AppConfig)
}

func TestGetThemeFromRequest(t *testing.T) {
	setupConfig(t)

	t.Run("cookie wins", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: config.CookieTheme, Value: config.LightTheme})

		if got := GetThemeFromRequest(req); got != config.LightTheme {
			t.Errorf("expected light theme, got %s", got)
		}
	})

	t.Run("falls back to configured default", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)

		if got := GetThemeFromRequest(req); got != config.DarkTheme {
			t.Errorf("expected dark default, got %s", got)
		}
	})
}

func TestGetSyntaxThemeFromRequest(t *testing.T) {
	setupConfig(t)

	t.Run("cookie wins", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: config.CookieSyntaxTheme, Value: "monokai"})

		if got := GetSyntaxThemeFromRequest(req); got != "monokai" {
			t.Errorf("expected monokai, got %s", got)
		}
	})

	t.Run("default follows the page theme", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: config.CookieTheme, Value: config.LightTheme})

		if got := GetSyntaxThemeFromRequest(req); got != config.AppConfig.Theme.SyntaxHighlighting.DefaultLight {
			t.Errorf("expected light syntax default, got %s", got)
		}
	})
}

func TestGenerateSyntaxCSS(t *testing.T) {
	setupConfig(t)

	css := GenerateSyntaxCSS("gruvbox")
	if !strings.Contains(string(css), ".chroma") {
		t.Error("expected chroma rules in generated CSS")
	}

	// Second call is served from the cache and must be identical.
	if again := GenerateSyntaxCSS("gruvbox"); again != css {
		t.Error("cached CSS should be identical")
	}
}

func TestGetSyntaxThemes(t *testing.T) {
	themes := GetSyntaxThemes()
	if len(themes) == 0 {
		t.Fatal("expected at least one syntax theme")
	}
	for i := 1; i < len(themes); i++ {
		if themes[i-1] > themes[i] {
			t.Fatal("themes should be sorted")
		}
	}
}

func TestGetThemeIcon(t *testing.T) {
	if icon := GetThemeIcon(config.LightTheme); icon != config.DarkThemeIcon {
		t.Errorf("light theme should offer the dark icon, got %s", icon)
	}
	if icon := GetThemeIcon(config.DarkTheme); icon != config.LightThemeIcon {
		t.Errorf("dark theme should offer the light icon, got %s", icon)
	}
}
