// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/toolify-tui/internal/ui/styles"
)

// =============================================================================
// WELCOME SCREEN
// =============================================================================

// TopicChips are the quick follow-up prompts offered on the welcome screen.
var TopicChips = []string{
	"Explain more",
	"How can I use it",
	"Precautions",
}

// Welcome renders the empty-session greeting with selectable topic chips.
type Welcome struct {
	theme     *styles.Theme
	firstName string
	now       func() time.Time

	selected int
	focused  bool
}

// NewWelcome creates the welcome component. firstName may be empty when
// nobody is signed in.
func NewWelcome(theme *styles.Theme, firstName string) Welcome {
	return Welcome{
		theme:     theme,
		firstName: firstName,
		now:       time.Now,
		selected:  -1,
	}
}

// Greeting builds the time-of-day greeting line.
func (w Welcome) Greeting() string {
	name := w.firstName
	if name == "" {
		name = "Human"
	}

	hour := w.now().Hour()
	var period string
	switch {
	case hour < 12:
		period = "Good Morning"
	case hour < 18:
		period = "Good Afternoon"
	default:
		period = "Good Evening"
	}

	return "Hey " + name + ", " + period + " how can I assist you?"
}

// Focus gives the chip row keyboard focus.
func (w *Welcome) Focus() {
	w.focused = true
	if w.selected < 0 {
		w.selected = 0
	}
}

// Blur removes keyboard focus from the chip row.
func (w *Welcome) Blur() {
	w.focused = false
	w.selected = -1
}

// Focused reports whether the chip row has keyboard focus.
func (w Welcome) Focused() bool {
	return w.focused
}

// Next moves chip selection to the right, wrapping around.
func (w *Welcome) Next() {
	if !w.focused {
		return
	}
	w.selected = (w.selected + 1) % len(TopicChips)
}

// Prev moves chip selection to the left, wrapping around.
func (w *Welcome) Prev() {
	if !w.focused {
		return
	}
	w.selected--
	if w.selected < 0 {
		w.selected = len(TopicChips) - 1
	}
}

// Selected returns the currently highlighted chip text, or "" when the
// row is unfocused.
func (w Welcome) Selected() string {
	if !w.focused || w.selected < 0 || w.selected >= len(TopicChips) {
		return ""
	}
	return TopicChips[w.selected]
}

// View renders the greeting and chip row.
func (w Welcome) View() string {
	title := w.theme.WelcomeTitle.Render(w.Greeting())

	chips := make([]string, 0, len(TopicChips))
	for i, chip := range TopicChips {
		if w.focused && i == w.selected {
			chips = append(chips, w.theme.ChipSelected.Render(chip))
		} else {
			chips = append(chips, w.theme.Chip.Render(chip))
		}
	}
	chipRow := lipgloss.JoinHorizontal(lipgloss.Center, chips...)

	hint := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Render("Attach a photo of a tool, or just ask. Tab selects a suggestion.")

	return lipgloss.JoinVertical(lipgloss.Left, title, "", chipRow, "", hint)
}
