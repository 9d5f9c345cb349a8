// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file defines all Bubble Tea message types used by the chat view.
// Messages are organized into the following categories:
//   - Chat turn: reply delivery for one send
//   - History: chat list and transcript loads
//   - Manuals: manual and safety-guide generation
//   - Recording: microphone start/stop results
//   - Playback: TTS toggle results and natural end-of-audio
//   - Attachments: file adds and async preview delivery
//
// All message types follow Bubble Tea conventions and are immutable.
package chat

import (
	"time"

	"github.com/jeranaias/toolify-tui/internal/api"
	"github.com/jeranaias/toolify-tui/internal/attachment"
	"github.com/jeranaias/toolify-tui/internal/model"
	"github.com/jeranaias/toolify-tui/internal/recorder"
)

// =============================================================================
// CHAT TURN MESSAGES
// =============================================================================

// ReplyMsg delivers the outcome of one send. Exactly one ReplyMsg arrives
// per send hand-off, success or failure.
type ReplyMsg struct {
	Resp *api.ChatResponse
	Err  error
}

// =============================================================================
// HISTORY MESSAGES
// =============================================================================

// ChatsLoadedMsg delivers the chat history list.
type ChatsLoadedMsg struct {
	Chats []model.ChatSummary
	Err   error
}

// TranscriptMsg delivers the messages of one selected chat. Gen carries
// the request generation so a stale response for a superseded selection
// can be discarded.
type TranscriptMsg struct {
	ChatID   string
	Gen      uint64
	Messages []*model.Message
	Err      error
}

// =============================================================================
// MANUAL MESSAGES
// =============================================================================

// ManualMsg delivers a generated tool manual.
type ManualMsg struct {
	Manual *api.Manual
	Err    error
}

// SafetyGuideMsg delivers a generated safety guide.
type SafetyGuideMsg struct {
	Guide *api.SafetyGuide
	Err   error
}

// =============================================================================
// RECORDING MESSAGES
// =============================================================================

// RecordingStartedMsg reports the outcome of a microphone acquisition.
type RecordingStartedMsg struct {
	Err error
}

// RecordingStoppedMsg carries the finalized clip, ready for the composer.
type RecordingStoppedMsg struct {
	Clip recorder.Clip
	Err  error
}

// RecordTickMsg drives the once-per-second elapsed display while recording.
type RecordTickMsg struct {
	At time.Time
}

// =============================================================================
// PLAYBACK MESSAGES
// =============================================================================

// PlaybackToggledMsg reports the outcome of a play/stop toggle.
type PlaybackToggledMsg struct {
	MessageID string
	Started   bool
	Err       error
}

// PlaybackFinishedMsg signals natural end of audio or a playback error,
// after the token has been cleared.
type PlaybackFinishedMsg struct {
	MessageID string
	Err       error
}

// =============================================================================
// ATTACHMENT MESSAGES
// =============================================================================

// AttachmentAddedMsg reports the outcome of adding a file from disk.
type AttachmentAddedMsg struct {
	File attachment.File
	Err  error
}

// PreviewReadyMsg delivers an asynchronously derived preview. The file
// may already have been removed or sent; stale previews are dropped.
type PreviewReadyMsg struct {
	FileID  string
	DataURL string
}

// =============================================================================
// UI STATE MESSAGES
// =============================================================================

// StatusMsg sets a transient status-line notice (e.g. a permission alert).
type StatusMsg struct {
	Text string
}
