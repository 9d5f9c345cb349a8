// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// THEME
// =============================================================================

// Theme holds the pre-built styles used across the TUI.
type Theme struct {
	width  int
	height int

	// Transcript
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	MessageBody    lipgloss.Style
	ErrorBody      lipgloss.Style
	Timestamp      lipgloss.Style
	Attachment     lipgloss.Style

	// Sidebar
	SidebarTitle    lipgloss.Style
	SidebarItem     lipgloss.Style
	SidebarSelected lipgloss.Style
	SidebarBorder   lipgloss.Style

	// Composer
	InputBorder     lipgloss.Style
	SendHint        lipgloss.Style
	RecordHint      lipgloss.Style
	RecordingActive lipgloss.Style

	// Welcome
	WelcomeTitle lipgloss.Style
	Chip         lipgloss.Style
	ChipSelected lipgloss.Style

	// Status bar
	StatusBar  lipgloss.Style
	StatusKey  lipgloss.Style
	StatusWarn lipgloss.Style
}

// NewTheme creates the theme, pinning the color profile up front so
// styles render consistently inside the alternate screen.
func NewTheme() *Theme {
	lipgloss.SetColorProfile(termenv.ColorProfile())

	t := &Theme{}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.UserLabel = lipgloss.NewStyle().Foreground(Blue).Bold(true)
	t.AssistantLabel = lipgloss.NewStyle().Foreground(Orange).Bold(true)
	t.MessageBody = lipgloss.NewStyle().Foreground(TextPrimary)
	t.ErrorBody = lipgloss.NewStyle().Foreground(Amber)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.Attachment = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)

	t.SidebarTitle = lipgloss.NewStyle().Foreground(Orange).Bold(true).Padding(0, 1)
	t.SidebarItem = lipgloss.NewStyle().Foreground(TextSecondary).Padding(0, 1)
	t.SidebarSelected = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Orange).
		Padding(0, 1)
	t.SidebarBorder = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay)

	t.InputBorder = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay)
	t.SendHint = lipgloss.NewStyle().Foreground(Emerald)
	t.RecordHint = lipgloss.NewStyle().Foreground(TextMuted)
	t.RecordingActive = lipgloss.NewStyle().Foreground(Rose).Bold(true)

	t.WelcomeTitle = lipgloss.NewStyle().Foreground(TextPrimary).Bold(true)
	t.Chip = lipgloss.NewStyle().
		Foreground(TextSecondary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.ChipSelected = lipgloss.NewStyle().
		Foreground(Orange).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Orange).
		Padding(0, 1)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim)
	t.StatusKey = lipgloss.NewStyle().Foreground(Orange).Bold(true)
	t.StatusWarn = lipgloss.NewStyle().Foreground(Amber)
}

// SetSize records the terminal dimensions for layout decisions.
func (t *Theme) SetSize(width, height int) {
	t.width = width
	t.height = height
}

// Width returns the last known terminal width.
func (t *Theme) Width() int {
	return t.width
}

// CompactLayout reports whether the terminal is too narrow for the
// sidebar to be shown alongside the transcript.
func (t *Theme) CompactLayout() bool {
	return t.width > 0 && t.width < 90
}
