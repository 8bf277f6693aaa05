package models

// Theme is the light/dark display preference
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Persisted values of the themeColor key
const (
	themeLightValue = "light_mode"
	themeDarkValue  = "dark_mode"
)

// StorageValue returns the persisted form of the theme
func (t Theme) StorageValue() string {
	if t == ThemeLight {
		return themeLightValue
	}
	return themeDarkValue
}

// ThemeFromStorage parses a persisted value. Anything other than
// "light_mode" is dark.
func ThemeFromStorage(v string) Theme {
	if v == themeLightValue {
		return ThemeLight
	}
	return ThemeDark
}

// ParseTheme parses a user supplied theme name
func ParseTheme(s string) (Theme, bool) {
	switch s {
	case "light", themeLightValue:
		return ThemeLight, true
	case "dark", themeDarkValue:
		return ThemeDark, true
	default:
		return "", false
	}
}

// Toggle returns the opposite theme
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// IsLight reports whether the theme is light
func (t Theme) IsLight() bool {
	return t == ThemeLight
}

func (t Theme) String() string {
	if t == ThemeLight {
		return string(ThemeLight)
	}
	return string(ThemeDark)
}
