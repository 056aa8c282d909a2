package tui

import (
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
)

// streamCursor trails the streaming text for the typing effect.
const streamCursor = "▌"

// View implements tea.Model.
// Uses AltScreen with a viewport for scrollable message history.
func (m *Model) View() tea.View {
	m.viewBuf.Reset()

	// Viewport (scrollable message area)
	_, _ = m.viewBuf.WriteString(m.viewport.View())
	_, _ = m.viewBuf.WriteString("\n")

	// Separator line above input
	_, _ = m.viewBuf.WriteString(m.renderSeparator())
	_, _ = m.viewBuf.WriteString("\n")

	// Input prompt. Always shown and always accepting keystrokes, so the
	// next prompt can be typed while the agent replies.
	_, _ = m.viewBuf.WriteString(m.styles.Prompt.Render("> "))
	_, _ = m.viewBuf.WriteString(m.input.View())
	_, _ = m.viewBuf.WriteString("\n")

	// Separator line below input
	_, _ = m.viewBuf.WriteString(m.renderSeparator())
	_, _ = m.viewBuf.WriteString("\n")

	// Help bar (keyboard shortcuts)
	_, _ = m.viewBuf.WriteString(m.renderStatusBar())

	v := tea.NewView(m.viewBuf.String())
	v.AltScreen = true
	return v
}

// rebuildViewportContent reconstructs the viewport content from messages
// and state. Called when messages, streaming output, or state changes.
func (m *Model) rebuildViewportContent() {
	var b strings.Builder

	// Banner and session status
	_, _ = b.WriteString(m.styles.RenderBanner())
	_, _ = b.WriteString("\n")
	_, _ = b.WriteString(m.styles.RenderWelcomeTips(m.welcomeStatus()))
	_, _ = b.WriteString("\n")

	// Messages (already bounded by addMessage)
	for _, msg := range m.messages {
		switch msg.Role {
		case roleUser:
			_, _ = b.WriteString(m.styles.User.Render("You> "))
			_, _ = b.WriteString(msg.Text)
		case roleAssistant:
			_, _ = b.WriteString(m.styles.Assistant.Render("Carebot> "))
			_, _ = b.WriteString(m.markdown.Render(msg.Text))
		case roleSystem:
			_, _ = b.WriteString(m.styles.System.Render(msg.Text))
		case roleError:
			// Diagnostics name themselves, no extra prefix
			_, _ = b.WriteString(m.styles.Error.Render(msg.Text))
		}
		_, _ = b.WriteString("\n\n")
	}

	// Streaming text with a trailing cursor. Markdown waits for the
	// complete reply; partial markdown renders badly.
	if m.state == StateStreaming && m.output.Len() > 0 {
		_, _ = b.WriteString(m.styles.Assistant.Render("Carebot> "))
		_, _ = b.WriteString(m.output.String())
		_, _ = b.WriteString(streamCursor)
		_, _ = b.WriteString("\n\n")
	}

	// Thinking indicator, shown until the first delta lands
	if m.state == StateThinking || (m.state == StateStreaming && m.output.Len() == 0) {
		_, _ = b.WriteString(m.spinner.View())
		_, _ = b.WriteString(" Thinking...\n\n")
	}

	m.viewport.SetContent(b.String())
}

// renderSeparator returns a horizontal line separator.
func (m *Model) renderSeparator() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	return m.styles.Separator.Render(strings.Repeat("─", width))
}

// renderStatusBar returns state-appropriate keyboard shortcut help.
func (m *Model) renderStatusBar() string {
	var bindings []key.Binding
	switch m.state {
	case StateInput:
		bindings = []key.Binding{
			m.keys.Submit, m.keys.NewLine, m.keys.History,
			m.keys.Cancel, m.keys.Quit, m.keys.ScrollUp,
		}
	case StateThinking, StateStreaming:
		bindings = []key.Binding{
			m.keys.EscCancel, m.keys.Cancel,
			m.keys.ScrollUp, m.keys.ScrollDown,
		}
	}
	return m.help.ShortHelpView(bindings)
}
