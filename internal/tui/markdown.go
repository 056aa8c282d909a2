package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer converts assistant markdown to styled terminal output.
// The glamour renderer is cached and only rebuilt when the width changes.
type markdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// newMarkdownRenderer creates a renderer for the given width. A nil return
// is valid: Render falls back to plain text.
func newMarkdownRenderer(width int) *markdownRenderer {
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Detect light/dark terminal
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}

	return &markdownRenderer{renderer: r, width: width}
}

// UpdateWidth rebuilds the renderer when the width actually changed.
// Reports whether a rebuild happened.
func (m *markdownRenderer) UpdateWidth(width int) bool {
	if m == nil || width <= 0 || m.width == width {
		return false
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		// Keep the existing renderer on error
		return false
	}

	m.renderer = r
	m.width = width
	return true
}

// Render converts markdown to styled terminal output. On any failure the
// original text comes back unchanged.
func (m *markdownRenderer) Render(markdown string) string {
	if m == nil || m.renderer == nil {
		return markdown
	}

	rendered, err := m.renderer.Render(markdown)
	if err != nil {
		return markdown
	}

	return strings.TrimSuffix(rendered, "\n")
}
