package commands

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/diogo/geminichat/internal/api"
	"github.com/diogo/geminichat/internal/chat"
	"github.com/diogo/geminichat/internal/config"
	"github.com/diogo/geminichat/internal/models"
	"github.com/diogo/geminichat/internal/observability"
	"github.com/diogo/geminichat/internal/storage"
	"github.com/diogo/geminichat/internal/tui"
)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// LoadConfig reads the user configuration.
	LoadConfig func() (config.Config, error)

	// NewAsker builds the API client.
	NewAsker func(cfg config.Config) (chat.Asker, error)

	// OpenStore opens the key-value store behind history and theme.
	OpenStore func(cfg config.Config) (storage.KV, error)

	// RunTUI runs the interactive chat.
	RunTUI func(deps tui.Deps) error

	// Clock paces the one-shot reveal.
	Clock chat.Clock

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// StdoutIsTTY reports whether output goes to a terminal.
	StdoutIsTTY func() bool
	// StdinIsPiped reports whether a prompt is being piped in.
	StdinIsPiped func() bool
	// TerminalWidth returns the output width in columns.
	TerminalWidth func() int
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		LoadConfig: config.LoadConfig,
		NewAsker:   newGeminiClient,
		OpenStore:  storage.Open,
		RunTUI:     tui.RunChat,
		Clock:      chat.RealClock{},
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		StdoutIsTTY: func() bool {
			return term.IsTerminal(int(os.Stdout.Fd()))
		},
		StdinIsPiped: func() bool {
			stat, err := os.Stdin.Stat()
			return err == nil && (stat.Mode()&os.ModeCharDevice) == 0
		},
		TerminalWidth: getTerminalWidth,
	}
}

func newGeminiClient(cfg config.Config) (chat.Asker, error) {
	client, err := api.NewClient(cfg.APIKey,
		api.WithModel(models.ModelFromName(cfg.Model)),
		api.WithEndpoint(cfg.Endpoint),
		api.WithTimeout(cfg.Timeout()),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// app is the state shared by every command that touches the chat
type app struct {
	cfg     config.Config
	store   *storage.Persistence
	session *chat.Session
}

// openApp loads the configuration, starts logging and restores the saved
// chat. Callers must close the app.
func openApp(deps *Dependencies, opts *rootOptions) (*app, error) {
	cfg, err := deps.LoadConfig()
	if err != nil {
		// A broken config file still leaves usable defaults
		fmt.Fprintf(deps.Stderr, "Warning: %v\n", err)
	}
	if opts.model != "" {
		cfg.Model = opts.model
	}
	if opts.ephemeral {
		cfg.Storage.Backend = config.BackendMemory
	}
	if opts.verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if logPath, err := config.GetLogPath(cfg); err == nil {
		if err := observability.Setup(logPath, cfg.Verbose); err != nil {
			fmt.Fprintf(deps.Stderr, "Warning: logging disabled: %v\n", err)
		}
	}

	kv, err := deps.OpenStore(cfg)
	if err != nil {
		_ = observability.Close()
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	store := storage.NewPersistence(kv)
	session := chat.NewSession(store, store.LoadHistory(), store.LoadTheme())

	observability.Logger().Info("session restored",
		"backend", cfg.Storage.Backend,
		"model", cfg.Model,
		"messages", len(session.Messages()),
	)

	return &app{cfg: cfg, store: store, session: session}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		observability.Logger().Warn("failed to close storage", "error", err)
	}
	_ = observability.Close()
}

// timing converts the configured pauses
func (a *app) timing() chat.Timing {
	return chat.Timing{
		LoadingDelay:   a.cfg.LoadingDelay(),
		RequestDelay:   a.cfg.RequestDelay(),
		TypingInterval: a.cfg.TypingInterval(),
	}
}
