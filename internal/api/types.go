// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"time"

	"github.com/jeranaias/toolify-tui/internal/model"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// FileUpload is a pending attachment to include in a multipart request.
type FileUpload struct {
	Name string // original filename, used for the multipart part
	MIME string // content type hint, e.g. "image/jpeg"
	Data []byte
}

// SendRequest carries one chat turn to POST /api/chat.
//
// All fields are optional on the wire, but at least one of Message, File,
// or Voice should be set for the request to be meaningful.
type SendRequest struct {
	Message   string
	SessionID string      // empty for a fresh session
	File      *FileUpload // tool photo
	Voice     []byte      // finalized mp3 recording
}

// ManualRequest carries the inputs for POST /api/generate-manual and
// POST /api/generate-safety-guide.
type ManualRequest struct {
	ToolName      string
	Language      string // defaults to "en" when empty
	GenerateAudio bool
	File          *FileUpload
}

// TTSRequest carries the inputs for POST /api/generate-tts.
type TTSRequest struct {
	Text      string
	Language  string
	MessageID string // transcript message the audio belongs to, optional
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ChatResponse is the reply to one chat turn.
type ChatResponse struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Language  string    `json:"language"`
	SessionID string    `json:"session_id"`
}

// Manual is a generated tool manual.
type Manual struct {
	ToolName   string    `json:"tool_name"`
	Manual     string    `json:"manual"`
	Summary    string    `json:"summary"`
	AudioFiles []string  `json:"audio_files,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// SafetyGuide is a generated safety guide for a tool.
type SafetyGuide struct {
	ToolName    string    `json:"tool_name"`
	SafetyGuide string    `json:"safety_guide"`
	Timestamp   time.Time `json:"timestamp"`
}

// chatSummaryJSON is the wire shape of one GET /api/chats row.
type chatSummaryJSON struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

func (c chatSummaryJSON) toModel() model.ChatSummary {
	return model.ChatSummary{
		ID:        c.ID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
	}
}

// messageJSON is the wire shape of one GET /api/chats/{id}/messages row.
// The backend may omit id and created_at on older rows.
type messageJSON struct {
	ID        string     `json:"id"`
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"created_at"`
}

func (m messageJSON) toModel() *model.Message {
	msg := model.NewMessage(model.Role(m.Role), m.Content)
	if m.ID != "" {
		msg.ID = m.ID
	}
	if m.CreatedAt != nil {
		msg.Timestamp = *m.CreatedAt
	}
	return msg
}
