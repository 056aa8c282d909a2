package tui

import (
	"context"
	"fmt"
	"log/slog"

	tea "charm.land/bubbletea/v2"

	"github.com/carebyte/carebot/internal/chat"
)

// streamEvent is a discriminated union for all turn events. A single
// channel with a union type keeps the select logic flat; exactly one
// field is set per event.
type streamEvent struct {
	text    string       // Delta chunk (when non-empty)
	outcome chat.Outcome // Turn result (when done is true)
	err     error        // Bridge failure: panic, lost channel
	done    bool         // True when the turn finished, successfully or not
}

// Stream message types for Bubble Tea.
type streamStartedMsg struct {
	eventCh <-chan streamEvent
	cancel  context.CancelFunc
}

type streamTextMsg struct {
	text string
}

type streamDoneMsg struct {
	outcome chat.Outcome
}

type streamErrorMsg struct {
	err error
}

// startStream creates a command that runs one turn in a goroutine and
// bridges its deltas into the event loop.
//
// The event channel is unbuffered: the goroutine blocks until the event
// loop has taken the previous delta, so the transport stream is the only
// buffer and rendering paces the read from the wire.
//
// Goroutine lifecycle: the goroutine exits when the turn returns, and the
// turn returns when the stream ends, the turn context is canceled, or the
// timeout fires. Channel closure signals completion; no WaitGroup needed.
func (m *Model) startStream(prompt string) tea.Cmd {
	return func() tea.Msg {
		eventCh := make(chan streamEvent)

		ctx, cancel := context.WithTimeout(m.ctx, streamTimeout)

		// The outcome send must survive a canceled turn context, since a
		// canceled turn still carries its partial reply. Only program
		// exit abandons it.
		parentDone := m.ctx.Done()

		go func() {
			defer cancel()
			defer close(eventCh)

			// Panic recovery to prevent UI lockup
			defer func() {
				if r := recover(); r != nil {
					slog.Error("turn panic recovered", "panic", r)
					select {
					case eventCh <- streamEvent{err: fmt.Errorf("turn panic: %v", r)}:
					case <-parentDone:
					}
				}
			}()

			out := m.runner.Run(ctx, m.sess, prompt, func(delta, _ string) {
				select {
				case eventCh <- streamEvent{text: delta}:
				case <-ctx.Done():
				}
			})

			select {
			case eventCh <- streamEvent{done: true, outcome: out}:
			case <-parentDone:
			}
		}()

		return streamStartedMsg{
			eventCh: eventCh,
			cancel:  cancel,
		}
	}
}

// listenForStream creates a command that waits for the next turn event.
// Empty events (all fields zero) are skipped via loop instead of recursion
// to prevent stack growth under pathological conditions.
func listenForStream(eventCh <-chan streamEvent) tea.Cmd {
	return func() tea.Msg {
		if eventCh == nil {
			return nil
		}

		for {
			event, ok := <-eventCh
			if !ok {
				// Channel closed without a final event
				return streamErrorMsg{err: fmt.Errorf("turn ended without an outcome")}
			}

			switch {
			case event.err != nil:
				return streamErrorMsg{err: event.err}
			case event.done:
				return streamDoneMsg{outcome: event.outcome}
			case event.text != "":
				return streamTextMsg{text: event.text}
			default:
				continue
			}
		}
	}
}
