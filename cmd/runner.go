package cmd

import (
	"context"
	"fmt"

	"github.com/carebyte/carebot/internal/bedrock"
	"github.com/carebyte/carebot/internal/chat"
	"github.com/carebyte/carebot/internal/config"
	"github.com/carebyte/carebot/internal/log"
)

// newRunner wires the AWS transport, the agent client and the turn runner
// from loaded configuration. Shared by chat, ask and serve.
func newRunner(ctx context.Context, cfg *config.Config, logger log.Logger) (*chat.Runner, error) {
	transport, err := bedrock.NewTransport(ctx, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client, err := bedrock.NewClient(bedrock.ClientConfig{
		Transport:         transport,
		AgentID:           cfg.AgentID,
		AgentAliasID:      cfg.AgentAliasID,
		GuardrailInterval: cfg.ApplyGuardrailInterval,
		StreamFinal:       cfg.StreamFinalResponse,
		Logger:            logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating agent client: %w", err)
	}

	runner, err := chat.NewRunner(chat.RunnerConfig{
		Invoker:  chat.BedrockInvoker{Client: client},
		Baseline: cfg.Baseline(),
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating turn runner: %w", err)
	}
	return runner, nil
}
