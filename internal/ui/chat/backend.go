// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the chat view: transcript, composer, sidebar,
// and the session orchestrator that reconciles backend responses into
// UI state.
package chat

import (
	"context"

	"github.com/jeranaias/toolify-tui/internal/api"
	"github.com/jeranaias/toolify-tui/internal/model"
)

// Backend is the remote API surface the orchestrator drives. *api.Client
// satisfies it; tests substitute a fake.
type Backend interface {
	SendMessage(ctx context.Context, req api.SendRequest) (*api.ChatResponse, error)
	GetChats(ctx context.Context) ([]model.ChatSummary, error)
	GetChatMessages(ctx context.Context, chatID string) ([]*model.Message, error)
	GenerateManual(ctx context.Context, req api.ManualRequest) (*api.Manual, error)
	GenerateSafetyGuide(ctx context.Context, req api.ManualRequest) (*api.SafetyGuide, error)
	GenerateTTS(ctx context.Context, req api.TTSRequest) ([]byte, error)
}
