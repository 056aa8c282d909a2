package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	tea "charm.land/bubbletea/v2"

	"github.com/carebyte/carebot/internal/config"
	"github.com/carebyte/carebot/internal/session"
	"github.com/carebyte/carebot/internal/tui"
)

// runChat initializes and starts the interactive chat TUI.
func runChat() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runner, err := newRunner(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}

	// The interactive session lives and dies with the process. Serve mode is
	// where states are persisted and resumed.
	sess := session.NewState(cfg.AttributeSeed())

	model, err := tui.New(ctx, runner, sess)
	if err != nil {
		return fmt.Errorf("creating TUI: %w", err)
	}
	program := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err = program.Run(); err != nil {
		return fmt.Errorf("TUI exited: %w", err)
	}
	return nil
}
