// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file implements the chat history sidebar.
package chat

import (
	"strings"

	"github.com/jeranaias/toolify-tui/internal/model"
	"github.com/jeranaias/toolify-tui/internal/ui/styles"
	"github.com/jeranaias/toolify-tui/internal/util"
)

// Sidebar lists the user's past chats.
type Sidebar struct {
	chats    []model.ChatSummary
	selected int
	focused  bool
	width    int
	height   int
}

// NewSidebar creates an empty sidebar.
func NewSidebar() Sidebar {
	return Sidebar{width: 28}
}

// SetChats replaces the listed chats, clamping the selection.
func (s *Sidebar) SetChats(chats []model.ChatSummary) {
	s.chats = chats
	if s.selected >= len(chats) {
		s.selected = len(chats) - 1
	}
	if s.selected < 0 {
		s.selected = 0
	}
}

// Chats returns the listed chats.
func (s Sidebar) Chats() []model.ChatSummary {
	return s.chats
}

// SetSize sets the rendered dimensions.
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// Width returns the sidebar's rendered width.
func (s Sidebar) Width() int {
	return s.width
}

// Focus gives the list keyboard focus.
func (s *Sidebar) Focus() {
	s.focused = true
}

// Blur removes keyboard focus.
func (s *Sidebar) Blur() {
	s.focused = false
}

// Focused reports whether the list has keyboard focus.
func (s Sidebar) Focused() bool {
	return s.focused
}

// MoveUp moves the selection up.
func (s *Sidebar) MoveUp() {
	if s.selected > 0 {
		s.selected--
	}
}

// MoveDown moves the selection down.
func (s *Sidebar) MoveDown() {
	if s.selected < len(s.chats)-1 {
		s.selected++
	}
}

// Selected returns the highlighted chat, if any.
func (s Sidebar) Selected() (model.ChatSummary, bool) {
	if s.selected < 0 || s.selected >= len(s.chats) {
		return model.ChatSummary{}, false
	}
	return s.chats[s.selected], true
}

// View renders the sidebar.
func (s Sidebar) View(theme *styles.Theme, activeChatID string) string {
	var b strings.Builder
	b.WriteString(theme.SidebarTitle.Render("Chats"))
	b.WriteString("\n")

	if len(s.chats) == 0 {
		b.WriteString(theme.SidebarItem.Render("no chats yet"))
		return theme.SidebarBorder.Width(s.width).Render(b.String())
	}

	// Inner width minus item padding.
	itemWidth := s.width - 3
	if itemWidth < 8 {
		itemWidth = 8
	}

	for i, c := range s.chats {
		title := util.TruncateWidth(c.DisplayTitle(), itemWidth)
		marker := " "
		if c.ID == activeChatID {
			marker = "*"
		}
		line := marker + title

		if s.focused && i == s.selected {
			b.WriteString(theme.SidebarSelected.Render(line))
		} else {
			b.WriteString(theme.SidebarItem.Render(line))
		}
		b.WriteString("\n")
	}

	return theme.SidebarBorder.Width(s.width).Render(strings.TrimRight(b.String(), "\n"))
}
