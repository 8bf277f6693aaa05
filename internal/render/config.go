package render

import (
	"github.com/diogo/geminichat/internal/config"
	"github.com/diogo/geminichat/internal/models"
)

// OptionsFromConfig builds render options from the user configuration.
func OptionsFromConfig(cfg config.Config, theme models.Theme, width int) Options {
	md := cfg.Markdown
	return Options{
		Width:            width,
		Theme:            theme,
		Enabled:          md.Enabled,
		EnableEmoji:      md.EnableEmoji,
		PreserveNewLines: md.PreserveNewLines,
		TableWrap:        md.TableWrap,
		InlineTableLinks: md.InlineTableLinks,
	}
}
