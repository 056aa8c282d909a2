package session

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/carebyte/carebot/internal/attrs"
)

// Role constants define valid message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn.
type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// State is the serializable conversation state. It round-trips through the
// store as JSON; every field that matters to a resumed conversation lives
// here.
//
// Version is managed by the store: Create sets it to 1 and every successful
// Update increments it. Callers never assign it.
type State struct {
	ID           string          `json:"id"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int64           `json:"version"`
	Messages     []Message       `json:"messages"`
	Overrides    attrs.Overrides `json:"overrides"`
	UseOverrides bool            `json:"use_overrides"`
}

// NewState creates a fresh conversation state with a generated session ID
// and the configured attribute prefills. Overrides start enabled, so the
// prefilled record applies from the first turn; disabling the toggle falls
// back to the baseline attributes.
func NewState(seed attrs.Seed) *State {
	return &State{
		ID:           uuid.NewString(),
		Overrides:    attrs.NewOverrides(seed),
		UseOverrides: true,
	}
}

// Append adds a message with the current timestamp.
func (s *State) Append(role, content string) {
	s.Messages = append(s.Messages, Message{
		Role:    role,
		Content: content,
		At:      time.Now(),
	})
}

// ClearMessages drops the transcript while keeping the session ID, the
// override record and the toggle. The agent-side context keyed by the
// session ID stays warm.
func (s *State) ClearMessages() {
	s.Messages = nil
}

// Clone returns a deep copy. Stores clone on the way in and out so callers
// never share message slices with stored state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.Messages = slices.Clone(s.Messages)
	return &out
}
