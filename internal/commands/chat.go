package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/geminichat/internal/attachment"
	"github.com/diogo/geminichat/internal/tui"
)

func newChatCmd(deps *Dependencies, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with Gemini.

Each message is sent on its own; earlier turns are shown but not sent as
context. Press Esc or Ctrl+C to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(deps, opts)
		},
	}
}

func runChat(deps *Dependencies, opts *rootOptions) error {
	a, err := openApp(deps, opts)
	if err != nil {
		return err
	}
	defer a.close()

	asker, err := deps.NewAsker(a.cfg)
	if err != nil {
		fmt.Fprintln(deps.Stderr, formatErrorMessage(err, "Failed to create client"))
		return fmt.Errorf("failed to create client: %w", err)
	}

	return deps.RunTUI(tui.Deps{
		Session:   a.session,
		Encoder:   attachment.NewEncoder(nil),
		Asker:     asker,
		Timing:    a.timing(),
		Config:    a.cfg,
		ModelName: a.cfg.Model,
	})
}
