package session

import (
	"fmt"
	"strings"

	"github.com/hongminglow/wayfarer/internal/localstore"
)

// ThemeKey is the local storage key holding the UI theme preference.
const ThemeKey = "wayfarer.theme"

// Theme is the terminal colour scheme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme accepts "light" or "dark" in any case.
func ParseTheme(value string) (Theme, bool) {
	switch Theme(strings.ToLower(strings.TrimSpace(value))) {
	case ThemeLight:
		return ThemeLight, true
	case ThemeDark:
		return ThemeDark, true
	}
	return "", false
}

// LoadTheme returns the stored theme, defaulting to dark.
func LoadTheme(local localstore.Store) Theme {
	raw, ok, err := local.Get(ThemeKey)
	if err != nil || !ok {
		return ThemeDark
	}
	if theme, ok := ParseTheme(raw); ok {
		return theme
	}
	return ThemeDark
}

// SaveTheme persists theme.
func SaveTheme(local localstore.Store, theme Theme) error {
	if err := local.Set(ThemeKey, string(theme)); err != nil {
		return fmt.Errorf("session: save theme: %w", err)
	}
	return nil
}
