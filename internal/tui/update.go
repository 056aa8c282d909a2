package tui

import (
	"context"
	"errors"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
)

// Update implements tea.Model.
//
//nolint:gocognit,gocyclo // Bubble Tea Update requires a type switch on all message types
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Viewport height: total minus input, separators, and help bar
		inputHeight := m.input.Height() + promptLines
		fixedHeight := separatorLines + inputHeight + helpLines
		vpHeight := max(msg.Height-fixedHeight, minViewport)

		m.viewport.SetWidth(msg.Width)
		m.viewport.SetHeight(vpHeight)
		m.input.SetWidth(msg.Width - 4) // Room for "> " prompt
		m.help.SetWidth(msg.Width)
		m.markdown.UpdateWidth(msg.Width)

		m.rebuildViewportContent()
		return m, nil

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		// The spinner shows while thinking and until the first delta lands
		if m.state == StateThinking || (m.state == StateStreaming && m.output.Len() == 0) {
			m.rebuildViewportContent()
		}
		return m, cmd

	case streamStartedMsg:
		m.streamCancel = msg.cancel
		m.streamEventCh = msg.eventCh
		m.state = StateStreaming
		if m.cancelRequested {
			// Esc landed before the turn goroutine was wired up
			msg.cancel()
			m.streamCancel = nil
		}
		m.rebuildViewportContent()
		m.viewport.GotoBottom()
		return m, listenForStream(msg.eventCh)

	case streamTextMsg:
		m.output.WriteString(msg.text)
		m.rebuildViewportContent()
		m.viewport.GotoBottom()
		return m, listenForStream(m.streamEventCh)

	case streamDoneMsg:
		m.finishTurn()

		out := msg.outcome
		switch {
		case m.cancelRequested:
			m.cancelRequested = false
			// A canceled turn keeps whatever text made it through
			if !out.Failed() && out.Reply != "" {
				m.addMessage(Message{Role: roleAssistant, Text: out.Reply})
			}
			m.addMessage(Message{Role: roleSystem, Text: canceledMarker})
		case out.Failed():
			// The diagnostic is part of the conversation
			m.addMessage(Message{Role: roleError, Text: out.Reply})
		default:
			reply := out.Reply
			if reply == "" {
				reply = m.output.String()
			}
			m.addMessage(Message{Role: roleAssistant, Text: reply})
		}

		m.output.Reset()
		m.rebuildViewportContent()
		m.viewport.GotoBottom()
		return m, m.input.Focus()

	case streamErrorMsg:
		m.finishTurn()

		switch {
		case m.cancelRequested:
			m.cancelRequested = false
			m.addMessage(Message{Role: roleSystem, Text: canceledMarker})
		case errors.Is(msg.err, context.Canceled):
			m.addMessage(Message{Role: roleSystem, Text: canceledMarker})
		case errors.Is(msg.err, context.DeadlineExceeded):
			m.addMessage(Message{Role: roleError, Text: "The reply timed out (>5 min). Try again or ask something smaller."})
		default:
			m.addMessage(Message{Role: roleError, Text: msg.err.Error()})
		}

		m.output.Reset()
		m.rebuildViewportContent()
		m.viewport.GotoBottom()
		return m, m.input.Focus()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// canceledMarker is the system line shown when the user cancels a turn.
const canceledMarker = "(canceled)"

// finishTurn returns the model to input state and releases the turn's
// context and channel.
func (m *Model) finishTurn() {
	m.state = StateInput
	if m.streamCancel != nil {
		m.streamCancel()
		m.streamCancel = nil
	}
	m.streamEventCh = nil
}
