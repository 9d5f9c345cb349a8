// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file implements the composer: the input bar merging text,
// attachments, and voice state into one outgoing message.
package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/toolify-tui/internal/attachment"
	"github.com/jeranaias/toolify-tui/internal/recorder"
	"github.com/jeranaias/toolify-tui/internal/ui/styles"
)

// Action is the composer's primary action affordance.
type Action int

const (
	// ActionRecord starts a recording: no text and no finalized voice.
	ActionRecord Action = iota
	// ActionSend sends the draft: trimmed text or a voice clip is ready.
	ActionSend
	// ActionStop stops the live recording. Sending while recording is
	// disallowed; the user must stop first.
	ActionStop
)

// Draft is the packaged outgoing message handed to the orchestrator.
type Draft struct {
	Text  string
	Files []attachment.File
	Voice *recorder.Clip
}

// IsEmpty reports whether the draft carries nothing sendable.
func (d Draft) IsEmpty() bool {
	return d.Text == "" && len(d.Files) == 0 && d.Voice == nil
}

// Composer owns the text input, the pending attachments, and the
// finalized voice clip awaiting send.
type Composer struct {
	input     textarea.Model
	attach    *attachment.Manager
	voice     *recorder.Clip
	recording bool
}

// NewComposer creates the composer around a shared attachment manager.
func NewComposer(attach *attachment.Manager) Composer {
	ta := textarea.New()
	ta.Placeholder = "Ask about a tool, or attach a photo..."
	ta.Prompt = "> "
	ta.CharLimit = 4000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	return Composer{input: ta, attach: attach}
}

// Update forwards input events to the textarea.
func (c Composer) Update(msg tea.Msg) (Composer, tea.Cmd) {
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

// Focus gives the text input keyboard focus.
func (c *Composer) Focus() tea.Cmd {
	return c.input.Focus()
}

// Blur removes keyboard focus from the text input.
func (c *Composer) Blur() {
	c.input.Blur()
}

// Focused reports whether the text input has focus.
func (c Composer) Focused() bool {
	return c.input.Focused()
}

// SetWidth sizes the text input.
func (c *Composer) SetWidth(width int) {
	c.input.SetWidth(width)
}

// Value returns the raw draft text.
func (c Composer) Value() string {
	return c.input.Value()
}

// SetValue replaces the draft text, e.g. when a welcome chip is chosen.
func (c *Composer) SetValue(s string) {
	c.input.SetValue(s)
}

// InsertNewline appends a line break to the draft.
func (c *Composer) InsertNewline() {
	c.input.InsertString("\n")
}

// SetRecording flips the live-recording flag.
func (c *Composer) SetRecording(on bool) {
	c.recording = on
}

// Recording reports whether a recording is live.
func (c Composer) Recording() bool {
	return c.recording
}

// SetVoice stores a finalized clip for the next send.
func (c *Composer) SetVoice(clip recorder.Clip) {
	if clip.Data == nil && clip.Path == "" {
		return
	}
	c.voice = &clip
}

// HasVoice reports whether a finalized clip is waiting.
func (c Composer) HasVoice() bool {
	return c.voice != nil
}

// PrimaryAction decides the active affordance. Send is active when
// trimmed text is non-empty or a finalized voice recording is ready;
// otherwise Record. A live recording always maps to Stop.
func (c Composer) PrimaryAction() Action {
	if c.recording {
		return ActionStop
	}
	if strings.TrimSpace(c.input.Value()) != "" || c.voice != nil {
		return ActionSend
	}
	return ActionRecord
}

// TakeDraft packages the current draft and clears text, attachments, and
// voice. The clearing is unconditional: it happens on hand-off, not on
// network success.
func (c *Composer) TakeDraft() Draft {
	d := Draft{
		Text:  strings.TrimSpace(c.input.Value()),
		Files: c.attach.Files(),
		Voice: c.voice,
	}

	c.input.Reset()
	c.attach.Clear()
	c.voice = nil
	return d
}

// View renders the input bar with the voice/attachment summary line.
func (c Composer) View(theme *styles.Theme) string {
	var b strings.Builder

	if c.attach.Count() > 0 || c.voice != nil {
		var parts []string
		for _, f := range c.attach.Files() {
			parts = append(parts, f.Name)
		}
		if c.voice != nil {
			parts = append(parts, "voice ("+c.voice.Duration.String()+")")
		}
		b.WriteString(theme.Attachment.Render("attached: " + strings.Join(parts, ", ")))
		b.WriteString("\n")
	}

	b.WriteString(theme.InputBorder.Render(c.input.View()))
	return b.String()
}
