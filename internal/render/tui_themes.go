package render

import (
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/geminichat/internal/models"
)

// TUITheme defines the color scheme for the TUI interface
type TUITheme struct {
	Name models.Theme

	// Base colors
	Background lipgloss.Color
	Surface    lipgloss.Color
	Border     lipgloss.Color

	// Accent colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color

	// Text colors
	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color

	// Gradient is swept across the loading placeholder
	Gradient []string
}

// Built-in TUI themes
var (
	DarkTheme = TUITheme{
		Name: models.ThemeDark,

		Background: lipgloss.Color("#242424"),
		Surface:    lipgloss.Color("#383838"),
		Border:     lipgloss.Color("#444444"),

		Primary:   lipgloss.Color("#4285f4"),
		Secondary: lipgloss.Color("#9ece6a"),
		Accent:    lipgloss.Color("#d96570"),
		Warning:   lipgloss.Color("#e0af68"),
		Error:     lipgloss.Color("#e55865"),

		Text:     lipgloss.Color("#e3e3e3"),
		TextDim:  lipgloss.Color("#a6a6a6"),
		TextMute: lipgloss.Color("#5f5f5f"),

		Gradient: []string{"#4285f4", "#6b7fe0", "#9b72cb", "#c06c99", "#d96570"},
	}

	LightTheme = TUITheme{
		Name: models.ThemeLight,

		Background: lipgloss.Color("#ffffff"),
		Surface:    lipgloss.Color("#e9eef6"),
		Border:     lipgloss.Color("#c4c7c5"),

		Primary:   lipgloss.Color("#1a73e8"),
		Secondary: lipgloss.Color("#188038"),
		Accent:    lipgloss.Color("#b3261e"),
		Warning:   lipgloss.Color("#b06000"),
		Error:     lipgloss.Color("#d93025"),

		Text:     lipgloss.Color("#1f1f1f"),
		TextDim:  lipgloss.Color("#5f6368"),
		TextMute: lipgloss.Color("#a6a6a6"),

		Gradient: []string{"#1a73e8", "#4c6fd8", "#7e6bc8", "#b066a0", "#d96570"},
	}
)

var (
	themeMu         sync.RWMutex
	currentTUITheme = DarkTheme
)

// GetTUITheme returns the currently active TUI theme
func GetTUITheme() TUITheme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTUITheme
}

// SetTUITheme activates the palette for theme
func SetTUITheme(theme models.Theme) {
	themeMu.Lock()
	defer themeMu.Unlock()
	currentTUITheme = TUIThemeFor(theme)
}

// TUIThemeFor returns the palette for theme
func TUIThemeFor(theme models.Theme) TUITheme {
	if theme == models.ThemeLight {
		return LightTheme
	}
	return DarkTheme
}
