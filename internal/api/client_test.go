// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/toolify-tui/internal/auth"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, auth.NewStaticProvider("test-token"))
	return c, srv
}

func TestSendMessageMultipartFields(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/chat", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(32<<20))
		assert.Equal(t, "What is this tool?", r.FormValue("message"))
		assert.Equal(t, "sess-1", r.FormValue("session_id"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "hammer.jpg", header.Filename)
		assert.Equal(t, "image/jpeg", header.Header.Get("Content-Type"))

		voice, vh, err := r.FormFile("voice")
		require.NoError(t, err)
		defer voice.Close()
		assert.Equal(t, "recording.mp3", vh.Filename)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"content":    "That is a claw hammer.",
			"timestamp":  time.Now().UTC(),
			"language":   "en",
			"session_id": "sess-1",
		})
	})

	resp, err := c.SendMessage(context.Background(), SendRequest{
		Message:   "What is this tool?",
		SessionID: "sess-1",
		File:      &FileUpload{Name: "hammer.jpg", MIME: "image/jpeg", Data: []byte{0xff, 0xd8}},
		Voice:     []byte("mp3data"),
	})
	require.NoError(t, err)
	assert.Equal(t, "That is a claw hammer.", resp.Content)
	assert.Equal(t, "sess-1", resp.SessionID)
	assert.Equal(t, "en", resp.Language)
}

func TestSendMessageOmitsEmptyFields(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, hasMessage := r.MultipartForm.Value["message"]
		_, hasSession := r.MultipartForm.Value["session_id"]
		assert.False(t, hasMessage, "empty message must not be sent")
		assert.False(t, hasSession, "empty session_id must not be sent")
		json.NewEncoder(w).Encode(map[string]string{"content": "ok", "session_id": "new"})
	})

	resp, err := c.SendMessage(context.Background(), SendRequest{
		File: &FileUpload{Name: "tool.png", Data: []byte{1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "new", resp.SessionID)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantKind Kind
		wantMsg  string
	}{
		{"401 is auth", 401, KindAuth, MsgAuthFailed},
		{"400 is validation", 400, KindValidation, MsgInvalidRequest},
		{"404 on chat is no tool found", 404, KindNotFound, MsgNoToolFound},
		{"403 is forbidden", 403, KindForbidden, MsgChatForbidden},
		{"500 is server", 500, KindServer, MsgServerError},
		{"502 falls back to transport", 502, KindTransport, MsgNetworkError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "detail", tt.status)
			})
			_, err := c.SendMessage(context.Background(), SendRequest{Message: "hi"})
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, KindOf(err))
			assert.Equal(t, tt.wantMsg, UserMessage(err))
		})
	}
}

func TestGetChatMessages404IsChatNotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	_, err := c.GetChatMessages(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, MsgChatNotFound, UserMessage(err))
}

func TestGetChats(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chats", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"id": "c1", "title": "Hammer chat", "created_at": time.Now().UTC()},
			{"id": "c2", "title": "", "created_at": time.Now().UTC()},
		})
	})

	chats, err := c.GetChats(context.Background())
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, "c1", chats[0].ID)
	assert.Equal(t, "Hammer chat", chats[0].Title)
	assert.Equal(t, "(untitled chat)", chats[1].DisplayTitle())
}

func TestGetChatMessagesMapsRoles(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chats/c1/messages", r.URL.Path)
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"id": "m1", "role": "user", "content": "what is this"},
			{"role": "assistant", "content": "a wrench"},
		})
	})

	msgs, err := c.GetChatMessages(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "user", msgs[0].Role.String())
	assert.NotEmpty(t, msgs[1].ID, "missing ids are generated client-side")
	assert.Equal(t, "assistant", msgs[1].Role.String())
}

func TestGenerateManualDefaults(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate-manual", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "en", r.FormValue("language"))
		assert.Equal(t, "false", r.FormValue("generate_audio"))
		assert.Equal(t, "claw hammer", r.FormValue("tool_name"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"tool_name": "claw hammer",
			"manual":    "# Claw Hammer\nUse it to drive nails.",
			"summary":   "A hammer for nails.",
		})
	})

	manual, err := c.GenerateManual(context.Background(), ManualRequest{ToolName: "claw hammer"})
	require.NoError(t, err)
	assert.Equal(t, "claw hammer", manual.ToolName)
	assert.Contains(t, manual.Manual, "Claw Hammer")
}

func TestGenerateTTS(t *testing.T) {
	audio := []byte("ID3mp3-bytes")
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate-tts", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "read this", r.FormValue("text"))
		assert.Equal(t, "fr", r.FormValue("language"))
		assert.Equal(t, "msg-9", r.FormValue("message_id"))
		w.Write(audio)
	})

	got, err := c.GenerateTTS(context.Background(), TTSRequest{
		Text: "read this", Language: "fr", MessageID: "msg-9",
	})
	require.NoError(t, err)
	assert.Equal(t, audio, got)
}

func TestTokenFetchedFreshPerCall(t *testing.T) {
	var calls atomic.Int32
	provider := &countingProvider{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode([]map[string]interface{}{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, provider)
	for i := 0; i < 3; i++ {
		_, err := c.GetChats(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), provider.calls.Load(), "token must be acquired per request")
	assert.Equal(t, int32(3), calls.Load())
}

func TestSignedOutIsAuthError(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", auth.NewStaticProvider(""))
	_, err := c.GetChats(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuth(err))
	assert.Equal(t, MsgAuthFailed, UserMessage(err))
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewClient(srv.URL, auth.NewStaticProvider("t"))
	_, err := c.GetChats(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.Equal(t, MsgNetworkError, UserMessage(err))
}

// countingProvider counts Token calls.
type countingProvider struct {
	calls atomic.Int32
}

func (p *countingProvider) Token(ctx context.Context) (string, error) {
	p.calls.Add(1)
	return "tok", nil
}

func (p *countingProvider) CurrentUser() (auth.User, bool) {
	return auth.User{}, false
}
