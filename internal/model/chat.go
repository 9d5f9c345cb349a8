// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// CHAT SUMMARY
// =============================================================================

// ChatSummary is one row of the remote chat history list.
type ChatSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayTitle returns the title, or a placeholder for untitled chats.
func (c ChatSummary) DisplayTitle() string {
	if c.Title == "" {
		return "(untitled chat)"
	}
	return c.Title
}
