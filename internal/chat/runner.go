package chat

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/aws/smithy-go"

	"github.com/carebyte/carebot/internal/attrs"
	"github.com/carebyte/carebot/internal/bedrock"
	"github.com/carebyte/carebot/internal/log"
	"github.com/carebyte/carebot/internal/session"
)

// ErrMissingInvoker indicates RunnerConfig.Invoker was nil.
var ErrMissingInvoker = errors.New("chat: invoker is required")

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	// Invoker starts streaming invocations. Required.
	Invoker Invoker

	// Baseline is the routing attribute map sent as turn-scoped attributes
	// when overrides are disabled.
	Baseline map[string]string

	// Logger for turn diagnostics. Defaults to a nop logger.
	Logger log.Logger
}

// Runner executes conversation turns. It is immutable after construction
// and safe for concurrent use across sessions.
type Runner struct {
	invoker  Invoker
	baseline map[string]string
	logger   log.Logger
}

// NewRunner creates a turn runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if cfg.Invoker == nil {
		return nil, ErrMissingInvoker
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}
	return &Runner{
		invoker:  cfg.Invoker,
		baseline: maps.Clone(cfg.Baseline),
		logger:   logger,
	}, nil
}

// Run executes one conversation turn against the given session state.
//
// It always appends exactly two messages to st: the user prompt and one
// assistant message. On success the assistant message is the accumulated
// reply; on failure it is the diagnostic from the returned Outcome. The
// caller persists st afterwards.
//
// onDelta, when non-nil, is called synchronously for every streamed chunk.
// Cancelling ctx stops the stream; text accumulated up to that point stands
// as the reply.
func (r *Runner) Run(ctx context.Context, st *session.State, prompt string, onDelta DeltaFunc) Outcome {
	r.logger.Debug("turn started",
		"session_id", st.ID,
		"prompt_len", len(prompt),
		"use_overrides", st.UseOverrides)

	st.Append(session.RoleUser, prompt)
	out := r.invoke(ctx, st, prompt, onDelta)
	st.Append(session.RoleAssistant, out.Reply)

	if out.Failed() {
		r.logger.Warn("turn failed",
			"session_id", st.ID,
			"kind", out.Kind.String(),
			"error", out.Err)
	} else {
		r.logger.Debug("turn finished",
			"session_id", st.ID,
			"reply_len", len(out.Reply))
	}
	return out
}

func (r *Runner) invoke(ctx context.Context, st *session.State, prompt string, onDelta DeltaFunc) Outcome {
	built := attrs.Build(st.Overrides, st.UseOverrides)

	// The customer identifier scopes every tool call the agent makes.
	// Refuse to send overrides without one.
	if st.UseOverrides && built[attrs.KeyCustomerOUID] == "" {
		return Outcome{Reply: GuardMessage, Kind: FailureGuard, Err: ErrMissingCustomerOUID}
	}

	req := bedrock.Request{Prompt: prompt, SessionID: st.ID}
	if st.UseOverrides {
		req.SessionAttrs = built
	} else {
		req.PromptAttrs = r.baseline
	}

	stream, err := r.invoker.InvokeStreaming(ctx, req)
	if err != nil {
		return r.classify(err)
	}
	defer stream.Close()

	var total strings.Builder
	for stream.Next() {
		total.WriteString(stream.Text())
		if onDelta != nil {
			onDelta(stream.Text(), total.String())
		}
	}
	if err := stream.Err(); err != nil {
		// A cancelled turn keeps its partial reply; everything else
		// replaces it with a diagnostic.
		if canceled(err) && total.Len() > 0 {
			return Outcome{Reply: total.String()}
		}
		return r.classify(err)
	}
	return Outcome{Reply: total.String()}
}

// classify maps an invocation or stream error to its diagnostic. Service
// errors carry the remote error code surface; anything else is a runtime
// failure.
func (r *Runner) classify(err error) Outcome {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return Outcome{
			Reply: fmt.Sprintf("⚠️ AWS error: %v", err),
			Kind:  FailureService,
			Err:   err,
		}
	}
	return Outcome{
		Reply: fmt.Sprintf("⚠️ Runtime error: %v", err),
		Kind:  FailureRuntime,
		Err:   err,
	}
}

func canceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
