package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

const Logo = "🌉"

// Version is overridden at build time with -ldflags "-X".
var Version = "0.1.0"

var (
	Accent = lipgloss.Color("#5865F2")
	Subtle = lipgloss.Color("#555555")
	Green  = lipgloss.Color("#04B575")
	Red    = lipgloss.Color("#FF4444")
	Yellow = lipgloss.Color("#E5C07B")

	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(Accent)
	BoldStyle  = lipgloss.NewStyle().Bold(true)
	BotLabel   = lipgloss.NewStyle().Bold(true).Foreground(Accent)
	UserLabel  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#AAAAAA"))
	ErrStyle   = lipgloss.NewStyle().Foreground(Red)
	WarnStyle  = lipgloss.NewStyle().Foreground(Yellow)
	OkStyle    = lipgloss.NewStyle().Foreground(Green).Bold(true)
	DimStyle   = lipgloss.NewStyle().Foreground(Subtle)
)

func StatusBadge(ok bool) string {
	if ok {
		return OkStyle.Render("✓")
	}
	return DimStyle.Render("✗")
}

// Title renders a command heading.
func Title(s string) string {
	return TitleStyle.Render(fmt.Sprintf("  %s discordbridge %s", Logo, s))
}
