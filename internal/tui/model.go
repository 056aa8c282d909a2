// Package tui implements the interactive terminal client on Bubble Tea.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/carebyte/carebot/internal/chat"
	"github.com/carebyte/carebot/internal/session"
)

// State represents the TUI state machine.
type State int

// TUI state machine states. Submissions are only accepted in StateInput,
// which serializes turns: the session transcript grows by exactly one
// user/assistant pair at a time.
const (
	StateInput     State = iota // Awaiting user input
	StateThinking               // Turn started, no text yet
	StateStreaming              // Receiving the reply
)

// Memory bounds to prevent unbounded growth.
const (
	maxMessages = 100 // Maximum messages kept for display
	maxHistory  = 100 // Maximum input history entries
)

// streamTimeout caps a single turn end to end.
const streamTimeout = 5 * time.Minute

// Message role constants for display.
const (
	roleUser      = "user"
	roleAssistant = "assistant"
	roleSystem    = "system"
	roleError     = "error"
)

// Layout constants for viewport height calculation.
const (
	separatorLines = 2 // Separator lines above and below the input
	helpLines      = 1 // Help bar height
	promptLines    = 1 // Prompt prefix line
	minViewport    = 3 // Minimum viewport height
)

// Message is a conversation line for display. The display list is separate
// from the session transcript: system and error lines appear here but never
// in session.State.Messages.
type Message struct {
	Role string
	Text string
}

// Model is the Bubble Tea model for the terminal client.
//
// It owns one session.State for its whole lifetime. The turn goroutine is
// the only writer of the transcript while a turn is in flight; the UI only
// reads the override record, which no turn mutates.
type Model struct {
	// Input (textarea for multi-line support, Shift+Enter for newline)
	input      textarea.Model
	history    []string
	historyIdx int

	// State
	state           State
	lastCtrlC       time.Time
	cancelRequested bool

	// Output
	spinner  spinner.Model
	output   strings.Builder
	viewBuf  strings.Builder // Reusable buffer for View() to reduce allocations
	messages []Message

	// Scrollable message viewport
	viewport viewport.Model

	// Help bar for keyboard shortcuts
	help help.Model
	keys keyMap

	// Stream management. No sync.WaitGroup: Bubble Tea's event loop
	// provides synchronization, and the single union channel carries
	// every event type.
	streamCancel  context.CancelFunc
	streamEventCh <-chan streamEvent

	// Dependencies
	runner    *chat.Runner
	sess      *session.State
	ctx       context.Context
	ctxCancel context.CancelFunc // Cancels all turn goroutines on exit

	// Dimensions
	width  int
	height int

	// Styles
	styles Styles

	// Markdown rendering (nil = graceful degradation to plain text)
	markdown *markdownRenderer
}

// addMessage appends a display message and enforces the maxMessages bound.
func (m *Model) addMessage(msg Message) {
	m.messages = append(m.messages, msg)
	if len(m.messages) > maxMessages {
		m.messages = m.messages[len(m.messages)-maxMessages:]
	}
}

// New creates a Model that drives turns on runner against sess.
//
// ctx MUST be the same context passed to tea.WithContext() so cancellation
// behaves consistently.
func New(ctx context.Context, runner *chat.Runner, sess *session.State) (*Model, error) {
	if runner == nil {
		return nil, errors.New("tui.New: runner is required")
	}
	if ctx == nil {
		return nil, errors.New("tui.New: ctx is required")
	}
	if sess == nil {
		return nil, errors.New("tui.New: session state is required")
	}

	// Cancellable context for cleanup on exit
	ctx, cancel := context.WithCancel(ctx)

	// Enter submits, Shift+Enter adds a newline (textarea default)
	ta := textarea.New()
	ta.Placeholder = "Ask about this customer..."
	ta.SetHeight(1)  // Single line by default
	ta.SetWidth(120) // Updated on WindowSizeMsg
	ta.MaxWidth = 0
	ta.ShowLineNumbers = false

	// Minimal styling: no backgrounds, just text
	cleanStyle := textarea.StyleState{
		Base:        lipgloss.NewStyle(),
		Text:        lipgloss.NewStyle(),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Prompt:      lipgloss.NewStyle(),
	}
	ta.SetStyles(textarea.Styles{
		Focused: cleanStyle,
		Blurred: cleanStyle,
	})
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	// Viewport for scrollable history. Built-in key handling is disabled;
	// keys are routed explicitly in handleKey so they never conflict with
	// the textarea or history navigation.
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	vp.MouseWheelEnabled = true
	vp.SoftWrap = true
	vp.KeyMap = viewport.KeyMap{}

	m := &Model{
		runner:    runner,
		sess:      sess,
		ctx:       ctx,
		ctxCancel: cancel,
		input:     ta,
		spinner:   sp,
		viewport:  vp,
		help:      help.New(),
		keys:      newKeyMap(),
		styles:    DefaultStyles(),
		history:   make([]string, 0, maxHistory),
		markdown:  newMarkdownRenderer(80),
		width:     80, // Default width until WindowSizeMsg arrives
	}
	m.rebuildViewportContent()
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.input.Focus(),
	)
}
