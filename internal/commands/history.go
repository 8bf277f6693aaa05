package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diogo/geminichat/internal/history"
	"github.com/diogo/geminichat/internal/models"
)

func newHistoryCmd(deps *Dependencies, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage the saved chat",
		Long:  `View, search, export or delete the chat history kept in local storage.`,
	}

	var asJSON bool
	var limit int
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the saved messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryShow(deps, opts, asJSON, limit)
		},
	}
	showCmd.Flags().BoolVar(&asJSON, "json", false, "Print the stored JSON")
	showCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show only the last N messages")

	var force bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryClear(deps, opts, force)
		},
	}
	clearCmd.Flags().BoolVarP(&force, "force", "y", false, "Do not ask for confirmation")

	var format, output string
	var skipErrors bool
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the chat as Markdown or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryExport(deps, opts, format, output, !skipErrors)
		},
	}
	exportCmd.Flags().StringVar(&format, "format", "markdown", "Export format (markdown, json)")
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	exportCmd.Flags().BoolVar(&skipErrors, "skip-errors", false, "Leave out failed replies")

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find messages containing a term",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistorySearch(deps, opts, strings.Join(args, " "))
		},
	}

	cmd.AddCommand(showCmd)
	cmd.AddCommand(clearCmd)
	cmd.AddCommand(exportCmd)
	cmd.AddCommand(searchCmd)
	return cmd
}

func runHistoryShow(deps *Dependencies, opts *rootOptions, asJSON bool, limit int) error {
	a, err := openApp(deps, opts)
	if err != nil {
		return err
	}
	defer a.close()

	msgs := a.session.Messages()
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	if asJSON {
		data, err := json.MarshalIndent(msgs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode history: %w", err)
		}
		fmt.Fprintln(deps.Stdout, string(data))
		return nil
	}

	if len(msgs) == 0 {
		fmt.Fprintln(deps.Stdout, "No messages saved.")
		return nil
	}

	w := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tFROM\tSTATUS\tTEXT")
	_, _ = fmt.Fprintln(w, "-\t----\t------\t----")
	for i, msg := range msgs {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, sender(msg), status(msg), truncate(oneLine(msg.Text), 60))
	}
	return w.Flush()
}

func runHistoryClear(deps *Dependencies, opts *rootOptions, force bool) error {
	if !force {
		fmt.Fprintf(deps.Stdout, "%s [y/N] ", models.ClearConfirmPrompt)
		answer, _ := bufio.NewReader(deps.Stdin).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(deps.Stdout, "Cancelled.")
			return nil
		}
	}

	a, err := openApp(deps, opts)
	if err != nil {
		return err
	}
	defer a.close()

	a.session.Clear()
	fmt.Fprintln(deps.Stdout, "History cleared.")
	return nil
}

func runHistoryExport(deps *Dependencies, opts *rootOptions, format, output string, includeErrors bool) error {
	exportFormat, err := history.ParseFormat(format)
	if err != nil {
		return err
	}

	a, err := openApp(deps, opts)
	if err != nil {
		return err
	}
	defer a.close()

	exportOpts := history.DefaultExportOptions()
	exportOpts.Format = exportFormat
	exportOpts.Model = a.cfg.Model
	exportOpts.IncludeErrors = includeErrors

	data, err := history.Export(a.session.Messages(), exportOpts)
	if err != nil {
		return fmt.Errorf("failed to export history: %w", err)
	}

	if output == "" {
		fmt.Fprintln(deps.Stdout, string(data))
		return nil
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Fprintf(deps.Stdout, "Exported %d messages to %s\n", len(a.session.Messages()), output)
	return nil
}

func runHistorySearch(deps *Dependencies, opts *rootOptions, query string) error {
	a, err := openApp(deps, opts)
	if err != nil {
		return err
	}
	defer a.close()

	results := history.Search(a.session.Messages(), query)
	if len(results) == 0 {
		fmt.Fprintf(deps.Stdout, "No messages match %q.\n", query)
		return nil
	}

	w := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tFROM\tMATCH")
	for _, r := range results {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", r.Index+1, sender(r.Message), r.MatchSnippet)
	}
	return w.Flush()
}

func sender(msg models.Message) string {
	if msg.IsOutgoing() {
		return "you"
	}
	return "gemini"
}

func status(msg models.Message) string {
	switch {
	case msg.IsLoading:
		return "loading"
	case msg.IsError:
		return "error"
	case msg.HasFile:
		return "file"
	default:
		return "ok"
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate shortens s to max runes, adding an ellipsis
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
