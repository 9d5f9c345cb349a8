// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/toolify-tui/internal/ui/styles"
	"github.com/jeranaias/toolify-tui/internal/util"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// Status represents the current application status.
type Status int

const (
	StatusReady Status = iota
	StatusSending
	StatusRecording
	StatusPlaying
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusSending:
		return "Sending..."
	case StatusRecording:
		return "Recording"
	case StatusPlaying:
		return "Playing audio"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// StatusBar is the bottom bar showing status, language, and key hints.
type StatusBar struct {
	theme *styles.Theme

	Status      Status
	Language    string
	ChatTitle   string
	Attachments int
	SignedOut   bool
	Width       int
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		theme:    theme,
		Status:   StatusReady,
		Language: "en",
		Width:    80,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// View renders the status bar.
func (s *StatusBar) View() string {
	sep := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")

	left := []string{s.statusStyle().Render(s.Status.String())}

	if s.SignedOut {
		left = append(left, s.theme.StatusWarn.Render("signed out"))
	}
	if s.ChatTitle != "" {
		left = append(left, util.TruncateWidth(s.ChatTitle, 30))
	}
	left = append(left, "lang:"+s.Language)
	if s.Attachments > 0 {
		left = append(left, formatInt(s.Attachments)+" attached")
	}

	leftSection := strings.Join(left, sep)

	rightSection := strings.Join([]string{
		s.theme.StatusKey.Render("^R") + " record",
		s.theme.StatusKey.Render("^O") + " attach",
		s.theme.StatusKey.Render("^N") + " new",
		s.theme.StatusKey.Render("^C") + " quit",
	}, " ")

	gap := s.Width - lipgloss.Width(leftSection) - lipgloss.Width(rightSection) - 2
	if gap < 1 {
		gap = 1
	}

	return s.theme.StatusBar.
		Padding(0, 1).
		Width(s.Width).
		Render(leftSection + strings.Repeat(" ", gap) + rightSection)
}

func (s *StatusBar) statusStyle() lipgloss.Style {
	switch s.Status {
	case StatusSending, StatusPlaying:
		return lipgloss.NewStyle().Foreground(styles.Blue).Bold(true)
	case StatusRecording:
		return lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
	case StatusError:
		return lipgloss.NewStyle().Foreground(styles.Amber).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(styles.Emerald).Bold(true)
	}
}
