package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Brainora brand purple.
const brandPurple = "#8B5CF6"

// BRAINORA ASCII art banner.
var bannerArt = []string{
	"  ██████╗ ██████╗  █████╗ ██╗███╗   ██╗ ██████╗ ██████╗  █████╗ ",
	"  ██╔══██╗██╔══██╗██╔══██╗██║████╗  ██║██╔═══██╗██╔══██╗██╔══██╗",
	"  ██████╔╝██████╔╝███████║██║██╔██╗ ██║██║   ██║██████╔╝███████║",
	"  ██╔══██╗██╔══██╗██╔══██║██║██║╚██╗██║██║   ██║██╔══██╗██╔══██║",
	"  ██████╔╝██║  ██║██║  ██║██║██║ ╚████║╚██████╔╝██║  ██║██║  ██║",
	"  ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═╝╚═╝  ╚═══╝ ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝",
}

// Styles contains all lipgloss styles for the TUI.
type Styles struct {
	Banner    lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	System    lipgloss.Style
	Tips      lipgloss.Style
	Error     lipgloss.Style
	Citation  lipgloss.Style
	Image     lipgloss.Style
	Mode      lipgloss.Style
	Prompt    lipgloss.Style
	Separator lipgloss.Style
	StatusBar lipgloss.Style
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	return Styles{
		Banner:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(brandPurple)),
		User:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Assistant: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		System:    lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("240")),
		Tips:      lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Citation:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		Image:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Mode:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(brandPurple)),
		Prompt:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		StatusBar: lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
	}
}

// RenderBanner returns the BRAINORA ASCII art banner as a styled string.
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
	"  • Ask questions naturally, or ask for an image (\"draw a red fox\")",
	"  • Press Tab to switch modes: default, knowledge, search, creative, live",
	"  • Use /help to see available commands, /sessions to browse history",
	"  • Press Ctrl+C to clear, Ctrl+D to exit",
}

// RenderWelcomeTips returns styled welcome tips.
func (s Styles) RenderWelcomeTips() string {
	var b strings.Builder
	for _, tip := range welcomeTips {
		_, _ = b.WriteString(s.Tips.Render(tip))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}
