package testutil

import (
	"bufio"
	"strings"
	"testing"
)

// SSEEvent is a parsed Server-Sent Event. The chat stream endpoint emits
// "chunk", "done" and "error" events.
type SSEEvent struct {
	Type string
	Data string
}

// ParseSSEEvents parses an SSE response body into structured events.
//
// Follows the W3C SSE framing rules the endpoint relies on:
//   - an empty line terminates an event
//   - multiple "data:" lines are joined with newline
//   - data without a preceding "event:" defaults to the "message" type
//   - lines starting with ":" are comments and ignored
//
// Example:
//
//	events := testutil.ParseSSEEvents(t, rec.Body.String())
//	chunks := testutil.FindAllEvents(events, "chunk")
func ParseSSEEvents(t *testing.T, body string) []SSEEvent {
	t.Helper()

	var events []SSEEvent
	var current SSEEvent
	var dataLines []string

	scanner := bufio.NewScanner(strings.NewReader(body))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event: "):
			if current.Type != "" && len(dataLines) > 0 {
				t.Fatalf("SSE parse error at line %d: new event before previous one terminated (%q)", lineNum, line)
			}
			current.Type = strings.TrimPrefix(line, "event: ")

		case strings.HasPrefix(line, "data: "):
			if current.Type == "" {
				current.Type = "message"
			}
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))

		case line == "":
			if current.Type == "" {
				continue
			}
			current.Data = strings.Join(dataLines, "\n")
			events = append(events, current)
			current = SSEEvent{}
			dataLines = nil

		case strings.HasPrefix(line, ":"):
			// comment

		default:
			t.Fatalf("SSE parse error at line %d: unexpected line %q", lineNum, line)
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("SSE scan error: %v", err)
	}
	if current.Type != "" {
		t.Fatalf("SSE stream ended without terminating event %q (missing empty line)", current.Type)
	}

	return events
}

// FindEvent returns the first event of the given type, or nil.
func FindEvent(events []SSEEvent, eventType string) *SSEEvent {
	for i := range events {
		if events[i].Type == eventType {
			return &events[i]
		}
	}
	return nil
}

// FindAllEvents returns all events of the given type in order.
func FindAllEvents(events []SSEEvent, eventType string) []SSEEvent {
	var found []SSEEvent
	for _, e := range events {
		if e.Type == eventType {
			found = append(found, e)
		}
	}
	return found
}
