package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/geminichat/internal/models"
)

func newThemeCmd(deps *Dependencies, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark|toggle]",
		Short:     "Show or change the color theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"light", "dark", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(deps, opts)
			if err != nil {
				return err
			}
			defer a.close()

			if len(args) == 0 {
				fmt.Fprintln(deps.Stdout, a.session.Theme())
				return nil
			}

			if args[0] == "toggle" {
				fmt.Fprintln(deps.Stdout, a.session.ToggleTheme())
				return nil
			}

			theme, ok := models.ParseTheme(args[0])
			if !ok {
				return fmt.Errorf("unknown theme %q (use light, dark or toggle)", args[0])
			}
			a.session.SetTheme(theme)
			fmt.Fprintln(deps.Stdout, theme)
			return nil
		},
	}
}
