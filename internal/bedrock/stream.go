package bedrock

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
)

// Stream delivers the chunks of one agent reply in arrival order.
//
// It follows the scanner idiom: call Next until it returns false, reading
// each chunk with Text, then check Err. A Stream is finite and cannot be
// restarted. Next blocks until the service delivers the next event; the
// stream ends when the service closes the connection, including when the
// invocation context is canceled.
type Stream struct {
	events   EventSource
	complete string

	text string
	err  error
	done bool
}

func newEventStream(events EventSource) *Stream {
	return &Stream{events: events}
}

// newCompleteStream wraps a degenerate response in a stream that yields the
// complete text as a single chunk.
func newCompleteStream(text string) *Stream {
	return &Stream{complete: text}
}

// Next advances to the next reply chunk. It returns false when the reply is
// finished or the stream failed; Err distinguishes the two.
func (s *Stream) Next() bool {
	if s.done {
		return false
	}
	if s.events == nil {
		s.text = s.complete
		s.done = true
		return true
	}
	for {
		event, ok := <-s.events.Events()
		if !ok {
			s.done = true
			s.err = s.events.Err()
			return false
		}
		chunk, ok := event.(*types.ResponseStreamMemberChunk)
		if !ok {
			// Trace, file and control events are not part of the reply text.
			continue
		}
		s.text = decodeChunk(chunk.Value.Bytes)
		return true
	}
}

// Text returns the chunk read by the last successful Next.
func (s *Stream) Text() string {
	return s.text
}

// Err returns the first error encountered. Like bufio.Scanner, it is only
// meaningful once Next has returned false.
func (s *Stream) Err() error {
	return s.err
}

// Close releases the underlying event stream. Safe to call at any point,
// including after exhaustion.
func (s *Stream) Close() error {
	if s.events == nil {
		return nil
	}
	return s.events.Close()
}

// decodeChunk converts chunk bytes to text, dropping invalid UTF-8 sequences
// instead of failing: a malformed chunk must never abort a reply.
func decodeChunk(b []byte) string {
	return strings.ToValidUTF8(string(b), "")
}
