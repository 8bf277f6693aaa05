// Package commands provides CLI commands for geminichat.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootOptions holds the flags shared by the root command and its children
type rootOptions struct {
	// Global flags
	model     string
	ephemeral bool
	verbose   bool

	// One-shot flags
	output   string
	file     string
	attach   string
	noTyping bool
	version  bool
}

// NewRootCmd creates the base command
func NewRootCmd(deps *Dependencies) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "geminichat [prompt]",
		Short: "Terminal chat client for the Gemini API",
		Long: `geminichat is a terminal chat client for Google Gemini. It sends
each prompt, optionally with one attached file, to the generateContent API
and types the answer out word by word. History and theme are kept locally.

Examples:
  geminichat                              Start the interactive chat
  geminichat "What is Go?"                Send a single prompt
  geminichat -a photo.png "Describe it"   Attach a file
  geminichat -f prompt.md                 Read prompt from file
  cat prompt.md | geminichat              Read prompt from stdin
  geminichat "Hello" -o response.md       Save response to file
  geminichat history show                 Print the saved chat`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.version {
				fmt.Fprintf(deps.Stdout, "geminichat %s (built %s)\n", Version, BuildTime)
				return nil
			}

			prompt, hasInput, err := readPrompt(deps, opts, args)
			if err != nil {
				return err
			}
			if !hasInput && opts.attach == "" {
				return runChat(deps, opts)
			}
			return runQuery(deps, opts, prompt)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.model, "model", "m", "", "Model to use (e.g., gemini-2.5-flash)")
	cmd.PersistentFlags().BoolVar(&opts.ephemeral, "ephemeral", false, "Keep history in memory only")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Write debug entries to the log file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Save response to file")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read prompt from file")
	cmd.Flags().StringVarP(&opts.attach, "attach", "a", "", "Attach an image, PDF, DOC, DOCX or TXT file")
	cmd.Flags().BoolVar(&opts.noTyping, "no-typing", false, "Print the response at once")
	cmd.Flags().BoolVarP(&opts.version, "version", "v", false, "Show version and exit")

	cmd.AddCommand(newChatCmd(deps, opts))
	cmd.AddCommand(newHistoryCmd(deps, opts))
	cmd.AddCommand(newThemeCmd(deps, opts))
	cmd.AddCommand(NewConfigCmd(deps))

	return cmd
}

// readPrompt picks the prompt from --file, stdin or the argument, in that
// order. hasInput is false when none was given.
func readPrompt(deps *Dependencies, opts *rootOptions, args []string) (string, bool, error) {
	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	if deps.StdinIsPiped != nil && deps.StdinIsPiped() {
		data, err := io.ReadAll(deps.Stdin)
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), true, nil
	}

	if len(args) > 0 {
		return args[0], true, nil
	}

	return "", false, nil
}

// rootCmd represents the base command
var rootCmd = NewRootCmd(NewDependencies())

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
