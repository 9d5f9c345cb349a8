// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the toolify TUI.
package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/toolify-tui/internal/ui/styles"
)

// =============================================================================
// SPINNER MODEL
// =============================================================================

// Spinner is a loading spinner with an optional message and elapsed timer.
type Spinner struct {
	spinner spinner.Model

	message   string
	startTime time.Time

	isActive  bool
	showTimer bool
}

// NewSpinner creates a new spinner with ASCII-compatible frames.
func NewSpinner() Spinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	return Spinner{
		spinner:   s,
		message:   "Loading",
		showTimer: true,
	}
}

// NewThinkingSpinner creates a spinner for the waiting-on-reply state.
func NewThinkingSpinner() Spinner {
	s := NewSpinner()
	s.message = "Identifying"
	return s
}

// SetMessage sets the text displayed next to the spinner.
func (s *Spinner) SetMessage(msg string) {
	s.message = msg
}

// SetShowTimer enables or disables the elapsed time display.
func (s *Spinner) SetShowTimer(show bool) {
	s.showTimer = show
}

// =============================================================================
// STATE MANAGEMENT
// =============================================================================

// Start activates the spinner and records the start time.
func (s *Spinner) Start() tea.Cmd {
	s.isActive = true
	s.startTime = time.Now()
	return s.spinner.Tick
}

// Stop deactivates the spinner.
func (s *Spinner) Stop() {
	s.isActive = false
}

// IsActive returns whether the spinner is currently running.
func (s *Spinner) IsActive() bool {
	return s.isActive
}

// Elapsed returns the duration since the spinner started.
func (s *Spinner) Elapsed() time.Duration {
	if s.startTime.IsZero() {
		return 0
	}
	return time.Since(s.startTime)
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Update handles messages for the spinner.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	if !s.isActive {
		return s, nil
	}

	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the spinner.
func (s Spinner) View() string {
	if !s.isActive {
		return ""
	}

	spinnerView := lipgloss.NewStyle().
		Foreground(styles.Orange).
		Render(s.spinner.View())

	messageView := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Render(s.message)

	dotsView := lipgloss.NewStyle().
		Foreground(styles.Orange).
		Render("...")

	result := spinnerView + " " + messageView + dotsView

	if s.showTimer && !s.startTime.IsZero() {
		elapsed := time.Since(s.startTime)
		timerView := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render(" (" + formatElapsed(elapsed) + ")")
		result += timerView
	}

	return result
}

// =============================================================================
// RECORDING INDICATOR
// =============================================================================

// RecordingIndicator shows the live-microphone state with elapsed time.
type RecordingIndicator struct {
	spinner   spinner.Model
	startTime time.Time
	active    bool
}

// NewRecordingIndicator creates a new recording indicator.
func NewRecordingIndicator() RecordingIndicator {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"( )", "(o)", "(O)", "(o)"},
		FPS:    time.Second / 8,
	}
	return RecordingIndicator{spinner: s}
}

// Start begins the recording animation.
func (r *RecordingIndicator) Start() tea.Cmd {
	r.active = true
	r.startTime = time.Now()
	return r.spinner.Tick
}

// Stop ends the recording animation.
func (r *RecordingIndicator) Stop() {
	r.active = false
}

// IsActive returns whether recording display is active.
func (r *RecordingIndicator) IsActive() bool {
	return r.active
}

// Update handles messages.
func (r RecordingIndicator) Update(msg tea.Msg) (RecordingIndicator, tea.Cmd) {
	if !r.active {
		return r, nil
	}
	var cmd tea.Cmd
	r.spinner, cmd = r.spinner.Update(msg)
	return r, cmd
}

// View renders the recording indicator.
func (r RecordingIndicator) View() string {
	if !r.active {
		return ""
	}

	frame := lipgloss.NewStyle().
		Foreground(styles.Rose).
		Bold(true).
		Render(r.spinner.View())

	label := lipgloss.NewStyle().
		Foreground(styles.Rose).
		Render(" REC " + formatElapsed(time.Since(r.startTime)))

	return frame + label
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// formatElapsed formats a duration for display.
func formatElapsed(d time.Duration) string {
	seconds := int(d.Seconds())
	if seconds < 60 {
		return formatInt(seconds) + "s"
	}
	minutes := seconds / 60
	secs := seconds % 60
	return formatInt(minutes) + "m " + formatInt(secs) + "s"
}

// formatInt converts a non-negative int to string without fmt.
func formatInt(n int) string {
	if n <= 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
