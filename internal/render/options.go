// Package render turns answers into terminal output and holds the TUI palettes.
package render

import "github.com/diogo/geminichat/internal/models"

// Options configures the markdown renderer behavior.
type Options struct {
	// Width is the word-wrap column; 0 disables wrapping
	Width int

	// Theme picks glamour's matching standard style
	Theme models.Theme

	// Enabled turns markdown rendering on; off returns text untouched
	Enabled bool

	EnableEmoji      bool
	PreserveNewLines bool
	TableWrap        bool
	InlineTableLinks bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		Width:            80,
		Theme:            models.ThemeDark,
		Enabled:          true,
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
	}
}

// WithWidth returns Options with the specified width.
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

// WithTheme returns Options for the given theme.
func (o Options) WithTheme(theme models.Theme) Options {
	o.Theme = theme
	return o
}

// WithEnabled returns Options with markdown rendering switched on or off.
func (o Options) WithEnabled(enabled bool) Options {
	o.Enabled = enabled
	return o
}

// GlamourStyle is the glamour standard style name for the theme
func (o Options) GlamourStyle() string {
	if o.Theme == models.ThemeLight {
		return "light"
	}
	return "dark"
}
