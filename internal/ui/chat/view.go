// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file renders the chat view: transcript, sidebar, composer, and
// status bar.
package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/toolify-tui/internal/config"
	"github.com/jeranaias/toolify-tui/internal/model"
)

// errorMarker prefixes assistant-role error messages in the transcript.
const errorMarker = "[!] "

// View renders the whole chat screen.
func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	transcript := m.viewTranscript()

	var body string
	if m.theme.CompactLayout() || len(m.sidebar.Chats()) == 0 {
		body = transcript
	} else {
		body = lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.sidebar.View(m.theme, m.session.ActiveChatID),
			transcript,
		)
	}

	sections := []string{body}

	if m.composer.Recording() {
		sections = append(sections, m.recInd.View())
	}
	if m.spinner.IsActive() {
		sections = append(sections, m.spinner.View())
	}
	if m.notice != "" {
		sections = append(sections, m.theme.StatusWarn.Render(m.notice))
	}

	sections = append(sections, m.composer.View(m.theme), m.viewHint(), m.statusBar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// viewTranscript renders the message list, or the welcome screen for an
// empty session.
func (m Model) viewTranscript() string {
	if m.session.IsEmpty() {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.welcome.View())
	}

	var b strings.Builder
	for _, msg := range m.session.Messages() {
		b.WriteString(m.viewMessage(msg))
		b.WriteString("\n\n")
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.TrimRight(b.String(), "\n"))
}

// viewMessage renders one transcript bubble.
func (m Model) viewMessage(msg *model.Message) string {
	var label string
	if msg.Role == model.RoleUser {
		label = m.theme.UserLabel.Render(msg.Role.DisplayName())
	} else {
		label = m.theme.AssistantLabel.Render(msg.Role.DisplayName())
	}

	ts := m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))
	header := label + " " + ts
	if msg.Role == model.RoleAssistant && msg.Language != "" && msg.Language != m.language {
		header += " " + m.theme.Timestamp.Render("["+config.LanguageName(msg.Language)+"]")
	}

	var body string
	switch {
	case msg.IsError:
		body = m.theme.ErrorBody.Render(errorMarker + msg.Content)
	case msg.Role == model.RoleAssistant:
		body = m.renderer.Render(msg.Content)
	default:
		body = m.theme.MessageBody.Render(msg.Content)
	}

	out := header + "\n" + body
	if msg.ImagePath != "" {
		out += "\n" + m.theme.Attachment.Render("[image] "+msg.ImagePath)
	}
	if msg.AudioPath != "" {
		out += "\n" + m.theme.Attachment.Render("[voice] "+msg.AudioPath)
	}
	return out
}

// viewHint renders the affordance line under the composer.
func (m Model) viewHint() string {
	switch m.composer.PrimaryAction() {
	case ActionStop:
		return m.theme.RecordingActive.Render("recording - Enter or C-r to stop")
	case ActionSend:
		return m.theme.SendHint.Render("Enter to send - M-Enter for newline")
	default:
		return m.theme.RecordHint.Render("C-r to record - C-o to attach - /manual <tool> for a manual")
	}
}
