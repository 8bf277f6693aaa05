package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/geminichat/internal/attachment"
	"github.com/diogo/geminichat/internal/chat"
	"github.com/diogo/geminichat/internal/models"
	"github.com/diogo/geminichat/internal/render"
	"github.com/diogo/geminichat/internal/tui"
)

// spinner handles the animated loading indicator
type spinner struct {
	out     io.Writer
	message string
	palette render.TUITheme
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool // Flag to prevent double-close
}

// newSpinner creates a new animated spinner
func newSpinner(out io.Writer, message string, palette render.TUITheme) *spinner {
	return &spinner{
		out:     out,
		message: message,
		palette: palette,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	colors := s.palette.Gradient
	if len(colors) == 0 {
		colors = []string{string(s.palette.Primary)}
	}

	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	spinColor := lipgloss.Color(colors[s.frame%len(colors)])
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[s.frame%len(chars)])

	barWidth := 16
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		c := lipgloss.Color(colors[(i/2+s.frame)%len(colors)])
		bar.WriteString(lipgloss.NewStyle().Foreground(c).Render("▀"))
	}

	msg := lipgloss.NewStyle().Foreground(s.palette.Text).Render(s.message)

	fmt.Fprintf(s.out, "\r\033[K%s %s %s", spinnerChar, bar.String(), msg)
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// halt stops the spinner and waits for the line to be cleared
func (s *spinner) halt() {
	if s == nil {
		return
	}
	s.stopOnce()
	<-s.done
}

// runQuery sends a single prompt, with the --attach file if any, and prints
// the reply. On a terminal the reply is typed out word by word.
func runQuery(deps *Dependencies, opts *rootOptions, prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" && opts.attach == "" {
		return fmt.Errorf("prompt cannot be empty")
	}

	a, err := openApp(deps, opts)
	if err != nil {
		return err
	}
	defer a.close()

	palette := render.TUIThemeFor(a.session.Theme())
	decorated := deps.StdoutIsTTY() && opts.output == ""
	typing := decorated && !opts.noTyping

	asker, err := deps.NewAsker(a.cfg)
	if err != nil {
		fmt.Fprintln(deps.Stderr, formatErrorMessage(err, "Failed to create client"))
		return fmt.Errorf("failed to create client: %w", err)
	}

	if opts.attach != "" {
		if _, err := a.session.SelectFile(opts.attach); err != nil {
			fmt.Fprintln(deps.Stderr, formatErrorMessage(err, "Failed to attach file"))
			return fmt.Errorf("failed to attach file: %w", err)
		}
	}

	// The pauses only make sense while typing on a terminal
	timing := chat.Timing{}
	if typing {
		timing.TypingInterval = a.timing().TypingInterval
	}
	runner := chat.NewRunner(a.session, attachment.NewEncoder(nil), asker, timing)
	if deps.Clock != nil {
		runner.Clock = deps.Clock
	}

	var spin *spinner
	if decorated {
		spin = newSpinner(deps.Stderr, "Generating response", palette)
		spin.start()
	}

	printed := 0
	if typing {
		runner.OnProgress = func(msg models.Message) {
			if printed == 0 {
				spin.halt()
				fmt.Fprintln(deps.Stdout, labelStyle(palette).Render("✦ Gemini"))
			}
			if len(msg.Text) > printed {
				fmt.Fprint(deps.Stdout, msg.Text[printed:])
				printed = len(msg.Text)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reply, err := runner.Submit(ctx, prompt)
	spin.halt()
	if err != nil {
		if printed > 0 {
			fmt.Fprintln(deps.Stdout)
		}
		if decorated {
			fmt.Fprintln(deps.Stderr, formatErrorMessage(err, "Generation failed"))
		}
		return fmt.Errorf("generation failed: %w", err)
	}

	text := reply.Text

	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if deps.StdoutIsTTY() {
			successMsg := lipgloss.NewStyle().Foreground(palette.Secondary).Render(
				fmt.Sprintf("✓ Response saved to %s", opts.output),
			)
			fmt.Fprintln(deps.Stderr, successMsg)
		}
		return nil
	}

	if typing {
		fmt.Fprintln(deps.Stdout)
		return nil
	}

	if !decorated {
		fmt.Fprint(deps.Stdout, text)
		return nil
	}

	bubbleWidth := deps.TerminalWidth() - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}

	renderOpts := render.OptionsFromConfig(a.cfg, a.session.Theme(), bubbleWidth-4)
	rendered := render.MarkdownOrPlain(text, renderOpts)

	bubble := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(palette.Primary).
		Foreground(palette.Text).
		Padding(0, 1).
		Width(bubbleWidth).
		Render(rendered)

	fmt.Fprintln(deps.Stdout, labelStyle(palette).Render("✦ Gemini"))
	fmt.Fprintln(deps.Stdout, bubble)
	return nil
}

func labelStyle(palette render.TUITheme) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(palette.Primary).Bold(true)
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, action string) string {
	if err == nil {
		return ""
	}
	return tui.FormatError(fmt.Errorf("%s: %w", action, err))
}
