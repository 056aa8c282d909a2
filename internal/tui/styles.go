package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Brand color for the banner and headers.
const brandTeal = "#2EC4B6"

// CAREBOT ASCII art (filled block style).
var bannerArt = []string{
	"   ██████╗ █████╗ ██████╗ ███████╗██████╗  ██████╗ ████████╗",
	"  ██╔════╝██╔══██╗██╔══██╗██╔════╝██╔══██╗██╔═══██╗╚══██╔══╝",
	"  ██║     ███████║██████╔╝█████╗  ██████╔╝██║   ██║   ██║   ",
	"  ██║     ██╔══██║██╔══██╗██╔══╝  ██╔══██╗██║   ██║   ██║   ",
	"  ╚██████╗██║  ██║██║  ██║███████╗██████╔╝╚██████╔╝   ██║   ",
	"   ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚═════╝  ╚═════╝    ╚═╝   ",
}

// Styles contains all lipgloss styles for the TUI.
type Styles struct {
	Banner    lipgloss.Style
	Header    lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	System    lipgloss.Style
	Tips      lipgloss.Style
	Error     lipgloss.Style
	Prompt    lipgloss.Style
	Separator lipgloss.Style
	StatusBar lipgloss.Style
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	return Styles{
		Banner:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(brandTeal)),
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(brandTeal)),
		User:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Assistant: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		System:    lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("240")),
		Tips:      lipgloss.NewStyle().Foreground(lipgloss.Color("255")), // White for visibility
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Prompt:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		StatusBar: lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
	}
}

// RenderBanner returns the CAREBOT ASCII art banner as a styled string.
func (s Styles) RenderBanner() string {
	var b strings.Builder
	for _, line := range bannerArt {
		_, _ = b.WriteString(s.Banner.Render(line))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}

// welcomeTips contains getting started tips displayed under the banner.
var welcomeTips = []string{
	"Tips for getting started:",
	"  • Ask about the customer's account, billing, usage, or tickets",
	"  • /summary /billing /usage /risks /tickets send the quick prompts",
	"  • /help lists commands, /overrides shows the session record",
	"  • Esc cancels a reply, Ctrl+D exits",
}

// RenderWelcomeTips returns the session status line followed by the tips.
func (s Styles) RenderWelcomeTips(status string) string {
	var b strings.Builder
	_, _ = b.WriteString(s.Header.Render(status))
	_, _ = b.WriteString("\n\n")
	for _, tip := range welcomeTips {
		_, _ = b.WriteString(s.Tips.Render(tip))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}
