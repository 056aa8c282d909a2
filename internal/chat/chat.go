// Package chat orchestrates a conversation turn end to end: building the
// attribute maps, guarding invocation preconditions, consuming the reply
// stream and recording the transcript.
//
// [Runner.Run] is the single entry point. It owns the turn invariant: every
// call appends exactly two messages to the session state, the user's prompt
// and one assistant message that is either the streamed reply or a
// diagnostic. Failures never escape a turn; they are classified into a
// [FailureKind] and folded into the transcript, so the conversation stays
// usable no matter what the remote side did.
package chat

import (
	"context"

	"github.com/carebyte/carebot/internal/bedrock"
)

// Stream is the pull-based chunk sequence a turn consumes.
// *bedrock.Stream satisfies it.
type Stream interface {
	Next() bool
	Text() string
	Err() error
	Close() error
}

// Invoker starts a streaming invocation. The seam exists so tests can
// script turns; production wiring passes a BedrockInvoker.
type Invoker interface {
	InvokeStreaming(ctx context.Context, req bedrock.Request) (Stream, error)
}

// BedrockInvoker adapts *bedrock.Client to the Invoker interface.
type BedrockInvoker struct {
	Client *bedrock.Client
}

func (b BedrockInvoker) InvokeStreaming(ctx context.Context, req bedrock.Request) (Stream, error) {
	stream, err := b.Client.InvokeStreaming(ctx, req)
	if err != nil {
		return nil, err
	}
	return stream, nil
}

// DeltaFunc receives each streamed chunk together with the running
// concatenation so far. Presentation layers use it to paint incremental
// output; pass nil when only the final reply matters.
type DeltaFunc func(delta, total string)
