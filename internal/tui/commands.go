package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/carebyte/carebot/internal/attrs"
)

// Slash command constants.
const (
	cmdHelp      = "/help"
	cmdClear     = "/clear"
	cmdID        = "/id"
	cmdOverrides = "/overrides"
	cmdUse       = "/use"
	cmdSet       = "/set"
	cmdUnset     = "/unset"
	cmdExit      = "/exit"
	cmdQuit      = "/quit"
)

// quickPrompts are the care console's one-click prompts. The label is the
// prompt, exactly as the buttons submit it.
var quickPrompts = map[string]string{
	"/summary": "🧾 Summarize account",
	"/billing": "💳 Check billing & payments",
	"/usage":   "📊 Analyze consumption; recommend plan/booster",
	"/risks":   "🚨 Spot risks; suggest actions",
	"/tickets": "🎟️ Review tickets; propose next steps",
}

const helpText = `Commands:
  /help               show this help
  /clear              clear the transcript (session id and overrides survive)
  /id                 show the session id
  /overrides          show the session record (jwt masked)
  /use on|off         toggle sending the session record
  /set <key> <value>  set an attribute
  /unset <key>        clear an attribute
  /exit, /quit        leave

Quick prompts:
  /summary  /billing  /usage  /risks  /tickets

Shortcuts:
  Enter: send    Shift+Enter: newline    Esc: cancel reply
  Ctrl+C: clear/cancel (twice to quit)   Ctrl+D: exit
  Up/Down: history    PgUp/PgDn: scroll`

func (m *Model) handleSubmit() (tea.Model, tea.Cmd) {
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		return m, nil
	}

	if strings.HasPrefix(query, "/") {
		return m.handleSlashCommand(query)
	}

	// Input history (bounded like the message list)
	m.history = append(m.history, query)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
	m.historyIdx = len(m.history)

	m.input.Reset()
	return m.submitPrompt(query)
}

// submitPrompt starts a turn. Callers have already checked that no turn is
// in flight.
func (m *Model) submitPrompt(prompt string) (tea.Model, tea.Cmd) {
	m.addMessage(Message{Role: roleUser, Text: prompt})
	m.state = StateThinking
	m.rebuildViewportContent()
	m.viewport.GotoBottom()

	return m, tea.Batch(
		m.spinner.Tick,
		m.startStream(prompt),
	)
}

func (m *Model) handleSlashCommand(query string) (tea.Model, tea.Cmd) {
	m.input.Reset()

	if prompt, ok := quickPrompts[query]; ok {
		return m.submitPrompt(prompt)
	}

	fields := strings.Fields(query)
	switch fields[0] {
	case cmdHelp:
		m.addMessage(Message{Role: roleSystem, Text: helpText})
	case cmdClear:
		// Transcript only; the session id and override record survive
		m.messages = nil
		m.sess.ClearMessages()
	case cmdID:
		m.addMessage(Message{Role: roleSystem, Text: "session id: " + m.sess.ID})
	case cmdOverrides:
		m.addMessage(Message{Role: roleSystem, Text: m.renderOverrides()})
	case cmdUse:
		m.addMessage(m.toggleOverrides(fields))
	case cmdSet:
		m.addMessage(m.setOverride(query))
	case cmdUnset:
		m.addMessage(m.unsetOverride(fields))
	case cmdExit, cmdQuit:
		return m, m.cleanup()
	default:
		m.addMessage(Message{Role: roleError, Text: "Unknown command: " + fields[0] + " (see /help)"})
	}

	m.rebuildViewportContent()
	m.viewport.GotoBottom()
	return m, nil
}

// toggleOverrides handles "/use on|off".
func (m *Model) toggleOverrides(fields []string) Message {
	if len(fields) != 2 || (fields[1] != "on" && fields[1] != "off") {
		return Message{Role: roleError, Text: "Usage: /use on|off"}
	}
	m.sess.UseOverrides = fields[1] == "on"
	if m.sess.UseOverrides {
		return Message{Role: roleSystem, Text: "Overrides ON. The session record is sent with every turn."}
	}
	return Message{Role: roleSystem, Text: "Overrides OFF. Baseline attributes apply."}
}

// setOverride handles "/set <key> <value>". The value may contain spaces,
// so it is cut from the raw query rather than from the fields.
func (m *Model) setOverride(query string) Message {
	rest := strings.TrimSpace(strings.TrimPrefix(query, cmdSet))
	key, value, ok := strings.Cut(rest, " ")
	if !ok || key == "" {
		return Message{Role: roleError, Text: "Usage: /set <key> <value>"}
	}
	if err := m.sess.Overrides.Set(key, strings.TrimSpace(value)); err != nil {
		return Message{Role: roleError, Text: err.Error()}
	}
	return Message{Role: roleSystem, Text: key + " set"}
}

// unsetOverride handles "/unset <key>".
func (m *Model) unsetOverride(fields []string) Message {
	if len(fields) != 2 {
		return Message{Role: roleError, Text: "Usage: /unset <key>"}
	}
	if err := m.sess.Overrides.Unset(fields[1]); err != nil {
		return Message{Role: roleError, Text: err.Error()}
	}
	return Message{Role: roleSystem, Text: fields[1] + " cleared"}
}

// renderOverrides formats the session record for display. The JWT is
// masked; masking is display-only and never touches the stored value.
func (m *Model) renderOverrides() string {
	red := m.sess.Overrides.Redacted()

	var b strings.Builder
	if m.sess.UseOverrides {
		b.WriteString("overrides: ON\n")
	} else {
		b.WriteString("overrides: OFF (baseline attributes apply)\n")
	}
	for _, key := range attrs.Keys() {
		value, _ := red.Value(key)
		if value == "" {
			value = "(unset)"
		}
		fmt.Fprintf(&b, "  %-18s %s\n", key, value)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// welcomeStatus is the session line under the banner: the customer every
// tool call will act on, or a note that baseline attributes apply.
func (m *Model) welcomeStatus() string {
	if !m.sess.UseOverrides {
		return "Overrides are OFF; baseline attributes apply."
	}
	built := attrs.Build(m.sess.Overrides, true)
	ouid := built[attrs.KeyCustomerOUID]
	if ouid == "" {
		return "Overrides are ON but customerOuid is empty. Set one with /set customerOuid <id>."
	}
	return "Effective customerOuid → " + ouid
}
