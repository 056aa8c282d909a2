package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/carebyte/carebot/internal/config"
	"github.com/carebyte/carebot/internal/session"
)

// runAsk runs a single conversation turn and streams the reply to stdout.
// The prompt is all remaining arguments joined, so quoting is optional:
//
//	carebot ask summarize the account
//	carebot ask "why is the bill higher this month?"
//
// Exits nonzero when the turn failed; the diagnostic becomes the process
// error.
func runAsk(args []string) error {
	prompt := buildPrompt(args)
	if prompt == "" {
		return errors.New("usage: carebot ask <prompt>")
	}

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

	st := session.NewState(cfg.AttributeSeed())

	var streamed bool
	out := runner.Run(ctx, st, prompt, func(delta, _ string) {
		streamed = true
		fmt.Print(delta)
	})
	if out.Failed() {
		// Terminate the partial line before the shell prints the error.
		if streamed {
			fmt.Println()
		}
		return errors.New(out.Reply)
	}

	fmt.Println()
	return nil
}

// buildPrompt joins the argument words into one prompt.
func buildPrompt(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
