// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file defines the tea.Cmd producers that run backend calls off the
// UI loop, plus the slash-command registry for the composer.
package chat

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/toolify-tui/internal/api"
	"github.com/jeranaias/toolify-tui/internal/attachment"
)

// =============================================================================
// BACKEND COMMANDS
// =============================================================================

// sendCmd posts one chat turn and delivers the reply.
func (m Model) sendCmd(req api.SendRequest) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		resp, err := backend.SendMessage(context.Background(), req)
		return ReplyMsg{Resp: resp, Err: err}
	}
}

// loadChatsCmd fetches the chat history list.
func (m Model) loadChatsCmd() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		chats, err := backend.GetChats(context.Background())
		return ChatsLoadedMsg{Chats: chats, Err: err}
	}
}

// loadTranscriptCmd fetches one chat's messages under a request generation.
func (m Model) loadTranscriptCmd(chatID string, gen uint64) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		msgs, err := backend.GetChatMessages(context.Background(), chatID)
		return TranscriptMsg{ChatID: chatID, Gen: gen, Messages: msgs, Err: err}
	}
}

// manualCmd requests a tool manual.
func (m Model) manualCmd(req api.ManualRequest) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		manual, err := backend.GenerateManual(context.Background(), req)
		return ManualMsg{Manual: manual, Err: err}
	}
}

// safetyGuideCmd requests a safety guide.
func (m Model) safetyGuideCmd(req api.ManualRequest) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		guide, err := backend.GenerateSafetyGuide(context.Background(), req)
		return SafetyGuideMsg{Guide: guide, Err: err}
	}
}

// =============================================================================
// DEVICE COMMANDS
// =============================================================================

// startRecordingCmd acquires the microphone.
func (m Model) startRecordingCmd() tea.Cmd {
	rec := m.recorder
	return func() tea.Msg {
		return RecordingStartedMsg{Err: rec.Start(context.Background())}
	}
}

// stopRecordingCmd finalizes the active recording into a clip.
func (m Model) stopRecordingCmd() tea.Cmd {
	rec := m.recorder
	return func() tea.Msg {
		clip, err := rec.Stop()
		return RecordingStoppedMsg{Clip: clip, Err: err}
	}
}

// recordTickCmd schedules the next elapsed-time refresh.
func recordTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return RecordTickMsg{At: t}
	})
}

// togglePlaybackCmd runs the play/stop toggle for one message. The fetch
// only happens on the start path, inside Player.Toggle.
func (m Model) togglePlaybackCmd(messageID, text, language string) tea.Cmd {
	backend := m.backend
	player := m.player
	return func() tea.Msg {
		fetch := func(ctx context.Context) ([]byte, error) {
			return backend.GenerateTTS(ctx, api.TTSRequest{
				Text:      text,
				Language:  language,
				MessageID: messageID,
			})
		}
		started, err := player.Toggle(context.Background(), messageID, fetch)
		return PlaybackToggledMsg{MessageID: messageID, Started: started, Err: err}
	}
}

// listenPlaybackCmd blocks on the end-of-playback channel. Re-armed after
// every PlaybackFinishedMsg.
func (m Model) listenPlaybackCmd() tea.Cmd {
	ch := m.finished
	return func() tea.Msg {
		return <-ch
	}
}

// =============================================================================
// ATTACHMENT COMMANDS
// =============================================================================

// addAttachmentCmd loads a file from disk into the pending set.
func (m Model) addAttachmentCmd(path string) tea.Cmd {
	mgr := m.attach
	return func() tea.Msg {
		f, err := mgr.AddPath(path)
		return AttachmentAddedMsg{File: f, Err: err}
	}
}

// previewCmd derives a data-URL preview for an image attachment off the
// UI loop. Previews are best effort.
func previewCmd(f attachment.File) tea.Cmd {
	return func() tea.Msg {
		return PreviewReadyMsg{FileID: f.ID, DataURL: attachment.DataURL(f)}
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// slashCommand is one parsed composer command.
type slashCommand struct {
	name string
	arg  string
}

// parseSlashCommand recognizes a leading-slash composer command. Returns
// nil for ordinary message text.
func parseSlashCommand(input string) *slashCommand {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "/") {
		return nil
	}

	name, arg, _ := strings.Cut(trimmed[1:], " ")
	name = strings.ToLower(name)
	switch name {
	case "new", "manual", "safety", "chats", "attach", "lang":
		return &slashCommand{name: name, arg: strings.TrimSpace(arg)}
	default:
		return nil
	}
}
