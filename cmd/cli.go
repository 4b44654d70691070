package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	tea "charm.land/bubbletea/v2"

	"github.com/polyglotlabs/polyglot/internal/audio"
	"github.com/polyglotlabs/polyglot/internal/chat"
	"github.com/polyglotlabs/polyglot/internal/config"
	"github.com/polyglotlabs/polyglot/internal/gemini"
	"github.com/polyglotlabs/polyglot/internal/log"
	"github.com/polyglotlabs/polyglot/internal/tui"
)

// runCLI initializes the conversation core and starts the Bubble Tea TUI.
func runCLI() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Stdout belongs to the TUI; only warnings and errors go to stderr
	// unless --debug is set.
	level := slog.LevelWarn
	if debugFlag {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: level})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store := chat.NewStore()
	session := chat.NewSession()
	session.SetDarkTheme(cfg.Theme != config.ThemeLight)

	gen, err := gemini.New(ctx, gemini.Config{
		APIKey:       cfg.APIKey,
		ModelName:    cfg.ModelName,
		Temperature:  cfg.Temperature,
		HistoryLimit: cfg.MaxHistoryMessages,
		Logger:       logger.With("component", "gemini"),
	})
	if err != nil {
		return fmt.Errorf("initializing generation client: %w", err)
	}

	ctrl, err := chat.NewController(chat.ControllerConfig{
		Store:     store,
		Session:   session,
		Generator: gen,
		Logger:    logger.With("component", "controller"),
	})
	if err != nil {
		return fmt.Errorf("initializing turn controller: %w", err)
	}

	// Voice capture is best-effort: without a recorder binary the text
	// path works unchanged.
	var recorder tui.AudioCapturer
	if binary, detectErr := audio.Detect(cfg.Recorder); detectErr != nil {
		logger.Warn("voice capture disabled", "error", detectErr)
	} else {
		recorder = audio.NewRecorder(binary, cfg.AudioDevice, logger.With("component", "audio"))
	}

	model, err := tui.New(ctx, tui.Config{
		Store:      store,
		Session:    session,
		Controller: ctrl,
		Recorder:   recorder,
		Logger:     logger.With("component", "tui"),
		ModelName:  cfg.ModelName,
	})
	if err != nil {
		return fmt.Errorf("creating TUI: %w", err)
	}

	program := tea.NewProgram(model, tea.WithContext(ctx))
	if _, err = program.Run(); err != nil {
		return fmt.Errorf("TUI exited: %w", err)
	}
	return nil
}
