// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/toolify-tui/internal/api"
	"github.com/jeranaias/toolify-tui/internal/attachment"
	"github.com/jeranaias/toolify-tui/internal/audio"
	"github.com/jeranaias/toolify-tui/internal/model"
	"github.com/jeranaias/toolify-tui/internal/recorder"
	"github.com/jeranaias/toolify-tui/internal/ui/styles"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeBackend struct {
	sendCalls   int
	sendFn      func(req api.SendRequest) (*api.ChatResponse, error)
	chatsCalls  int
	chats       []model.ChatSummary
	chatsErr    error
	msgCalls    int
	transcripts map[string][]*model.Message
	msgErr      error
	manualFn    func(req api.ManualRequest) (*api.Manual, error)
	ttsCalls    int
}

func (f *fakeBackend) SendMessage(ctx context.Context, req api.SendRequest) (*api.ChatResponse, error) {
	f.sendCalls++
	if f.sendFn != nil {
		return f.sendFn(req)
	}
	return &api.ChatResponse{Content: "ok"}, nil
}

func (f *fakeBackend) GetChats(ctx context.Context) ([]model.ChatSummary, error) {
	f.chatsCalls++
	return f.chats, f.chatsErr
}

func (f *fakeBackend) GetChatMessages(ctx context.Context, chatID string) ([]*model.Message, error) {
	f.msgCalls++
	if f.msgErr != nil {
		return nil, f.msgErr
	}
	return f.transcripts[chatID], nil
}

func (f *fakeBackend) GenerateManual(ctx context.Context, req api.ManualRequest) (*api.Manual, error) {
	if f.manualFn != nil {
		return f.manualFn(req)
	}
	return &api.Manual{ToolName: "Hammer", Manual: "Swing it."}, nil
}

func (f *fakeBackend) GenerateSafetyGuide(ctx context.Context, req api.ManualRequest) (*api.SafetyGuide, error) {
	return &api.SafetyGuide{ToolName: "Hammer", SafetyGuide: "Mind your thumb."}, nil
}

func (f *fakeBackend) GenerateTTS(ctx context.Context, req api.TTSRequest) ([]byte, error) {
	f.ttsCalls++
	return []byte("mp3"), nil
}

type nopSource struct{}

func (nopSource) Start(ctx context.Context) error { return nil }
func (nopSource) Stop() (recorder.Clip, error)    { return recorder.Clip{Data: []byte("a")}, nil }

type nopSink struct{}

func (nopSink) Play(path string) (func(), <-chan error, error) {
	return func() {}, make(chan error, 1), nil
}

func newTestModel(backend Backend) Model {
	return New(
		styles.NewTheme(),
		backend,
		recorder.New(nopSource{}),
		audio.NewPlayer(nopSink{}),
		Options{Language: "en", FirstName: "Ada"},
	)
}

// drain executes orchestrator commands and feeds their results back until
// the flow settles. Animation ticks are executed but not re-armed.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case ReplyMsg, ChatsLoadedMsg, TranscriptMsg, ManualMsg, SafetyGuideMsg,
			AttachmentAddedMsg, PreviewReadyMsg, PlaybackToggledMsg:
			mm, next := m.Update(msg)
			m = mm.(Model)
			queue = append(queue, next)
		}
	}
	return m
}

func sendText(t *testing.T, m Model, text string) Model {
	t.Helper()
	mm, cmd := m.send(Draft{Text: text})
	return drain(t, mm.(Model), cmd)
}

// =============================================================================
// SEND FLOW
// =============================================================================

func TestSendScenarioNewSession(t *testing.T) {
	backend := &fakeBackend{
		sendFn: func(req api.SendRequest) (*api.ChatResponse, error) {
			return &api.ChatResponse{Content: "This is a hammer", SessionID: "abc123"}, nil
		},
	}
	m := newTestModel(backend)

	img := attachment.File{Name: "tool.jpg", MIME: "image/jpeg", Data: []byte("x"), Path: "/tmp/tool.jpg"}
	mm, cmd := m.send(Draft{Text: "identify this", Files: []attachment.File{img}})
	m = drain(t, mm.(Model), cmd)

	msgs := m.Session().Messages()
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if msgs[0].Role != model.RoleUser || msgs[0].Content != "identify this" {
		t.Errorf("user message = %q (%s)", msgs[0].Content, msgs[0].Role)
	}
	if msgs[1].Role != model.RoleAssistant || msgs[1].Content != "This is a hammer" {
		t.Errorf("assistant message = %q (%s)", msgs[1].Content, msgs[1].Role)
	}
	if m.Session().ActiveChatID != "abc123" {
		t.Errorf("ActiveChatID = %q, want abc123", m.Session().ActiveChatID)
	}
	if backend.chatsCalls != 1 {
		t.Errorf("chat list refreshed %d times, want exactly 1", backend.chatsCalls)
	}
	if m.InFlight() {
		t.Error("orchestrator must return to idle")
	}
}

func TestEachSendYieldsExactlyOneReply(t *testing.T) {
	calls := 0
	backend := &fakeBackend{
		sendFn: func(req api.SendRequest) (*api.ChatResponse, error) {
			calls++
			if calls == 2 {
				return nil, &api.Error{Kind: api.KindServer, Status: 500, Message: api.MsgServerError}
			}
			return &api.ChatResponse{Content: "reply"}, nil
		},
	}
	m := newTestModel(backend)

	for _, text := range []string{"one", "two", "three"} {
		m = sendText(t, m, text)
	}

	msgs := m.Session().Messages()
	if len(msgs) != 6 {
		t.Fatalf("messages = %d, want 6", len(msgs))
	}
	users := 0
	for i, msg := range msgs {
		if i%2 == 0 {
			if msg.Role != model.RoleUser {
				t.Errorf("message %d role = %s, want user", i, msg.Role)
			}
			users++
		} else if msg.Role != model.RoleAssistant {
			t.Errorf("message %d role = %s, want assistant", i, msg.Role)
		}
	}
	if users != 3 {
		t.Errorf("user messages = %d, want 3 (one per send)", users)
	}
	if !msgs[3].IsError || msgs[3].Content != api.MsgServerError {
		t.Errorf("second reply = %q (IsError=%v), want server-error text", msgs[3].Content, msgs[3].IsError)
	}
}

func TestSameSessionIDDoesNotRefreshChatList(t *testing.T) {
	backend := &fakeBackend{
		sendFn: func(req api.SendRequest) (*api.ChatResponse, error) {
			return &api.ChatResponse{Content: "r", SessionID: "abc"}, nil
		},
	}
	m := newTestModel(backend)

	m = sendText(t, m, "first")
	m = sendText(t, m, "second")

	if backend.chatsCalls != 1 {
		t.Errorf("chat list refreshed %d times, want 1 (adoption happens once)", backend.chatsCalls)
	}
}

func TestEmptySendRejectedWithoutAPICall(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestModel(backend)

	mm, cmd := m.submit()
	m = drain(t, mm.(Model), cmd)

	if backend.sendCalls != 0 {
		t.Errorf("sendCalls = %d, want 0", backend.sendCalls)
	}
	if !m.Session().IsEmpty() {
		t.Error("no messages should be appended for an empty send")
	}
}

func TestSendBlockedWhileInFlight(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestModel(backend)

	// Start a send but do not resolve it.
	mm, _ := m.send(Draft{Text: "first"})
	m = mm.(Model)

	m.composer.SetValue("second")
	mm, cmd := m.submit()
	m = drain(t, mm.(Model), cmd)

	if backend.sendCalls != 0 {
		t.Errorf("second send reached the backend while first was in flight")
	}
	if got := m.Session().Len(); got != 1 {
		t.Errorf("messages = %d, want 1 (only the first optimistic bubble)", got)
	}
}

func TestFileOnlySendUsesFixedPrompt(t *testing.T) {
	var sent api.SendRequest
	backend := &fakeBackend{
		sendFn: func(req api.SendRequest) (*api.ChatResponse, error) {
			sent = req
			return &api.ChatResponse{Content: "a hammer"}, nil
		},
	}
	m := newTestModel(backend)

	img := attachment.File{Name: "t.png", MIME: "image/png", Data: []byte("x")}
	mm, cmd := m.send(Draft{Files: []attachment.File{img}})
	m = drain(t, mm.(Model), cmd)

	if got := m.Session().Messages()[0].Content; got != "What is this tool?" {
		t.Errorf("optimistic bubble = %q, want fixed prompt", got)
	}
	if sent.Message != "What is this tool?" {
		t.Errorf("wire message = %q, want fixed prompt", sent.Message)
	}
	if sent.File == nil || sent.File.Name != "t.png" {
		t.Error("file must be carried on the wire")
	}
}

func TestVoiceOnlySendUsesPlaceholderLabel(t *testing.T) {
	var sent api.SendRequest
	backend := &fakeBackend{
		sendFn: func(req api.SendRequest) (*api.ChatResponse, error) {
			sent = req
			return &api.ChatResponse{Content: "heard you"}, nil
		},
	}
	m := newTestModel(backend)

	clip := recorder.Clip{Path: "/tmp/v.mp3", Data: []byte("mp3")}
	mm, cmd := m.send(Draft{Voice: &clip})
	m = drain(t, mm.(Model), cmd)

	if got := m.Session().Messages()[0].Content; got != "Voice message" {
		t.Errorf("optimistic bubble = %q, want placeholder label", got)
	}
	if sent.Message != "" {
		t.Errorf("voice-only wire message = %q, want empty (backend transcribes)", sent.Message)
	}
	if len(sent.Voice) == 0 {
		t.Error("voice bytes must be carried on the wire")
	}
}

// =============================================================================
// HISTORY
// =============================================================================

func TestSelectChatIdempotent(t *testing.T) {
	backend := &fakeBackend{
		transcripts: map[string][]*model.Message{
			"c1": {model.NewUserMessage("hi"), model.NewAssistantMessage("hello")},
		},
	}
	m := newTestModel(backend)

	mm, cmd := m.selectChat("c1")
	m = drain(t, mm.(Model), cmd)
	first := m.Session().Messages()

	mm, cmd = m.selectChat("c1")
	m = drain(t, mm.(Model), cmd)
	second := m.Session().Messages()

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Content != second[i].Content || first[i].Role != second[i].Role {
			t.Errorf("message %d differs after repeat select", i)
		}
	}
	if m.Session().ActiveChatID != "c1" {
		t.Errorf("ActiveChatID = %q, want c1", m.Session().ActiveChatID)
	}
}

func TestStaleTranscriptIgnored(t *testing.T) {
	backend := &fakeBackend{
		transcripts: map[string][]*model.Message{
			"old": {model.NewAssistantMessage("old chat")},
			"new": {model.NewAssistantMessage("new chat")},
		},
	}
	m := newTestModel(backend)

	mm, oldCmd := m.selectChat("old")
	m = mm.(Model)
	mm, newCmd := m.selectChat("new")
	m = mm.(Model)

	// Newer selection resolves first; the older response arrives late.
	newMsg := newCmd().(TranscriptMsg)
	oldMsg := oldCmd().(TranscriptMsg)

	res, _ := m.Update(newMsg)
	m = res.(Model)
	res, _ = m.Update(oldMsg)
	m = res.(Model)

	if m.Session().ActiveChatID != "new" {
		t.Errorf("ActiveChatID = %q, want new (stale response must be discarded)", m.Session().ActiveChatID)
	}
	if got := m.Session().Messages()[0].Content; got != "new chat" {
		t.Errorf("transcript = %q, want the newer chat's content", got)
	}
}

func TestSelectChatFailureKeepsMessages(t *testing.T) {
	backend := &fakeBackend{
		sendFn: func(req api.SendRequest) (*api.ChatResponse, error) {
			return &api.ChatResponse{Content: "kept"}, nil
		},
	}
	m := newTestModel(backend)
	m = sendText(t, m, "hello")

	backend.msgErr = &api.Error{Kind: api.KindNotFound, Status: 404, Message: api.MsgChatNotFound}
	mm, cmd := m.selectChat("missing")
	m = drain(t, mm.(Model), cmd)

	if got := m.Session().Len(); got != 2 {
		t.Errorf("messages = %d, want 2 (prior transcript untouched)", got)
	}
	if m.loadingChat {
		t.Error("loading indicator must stop on failure")
	}
}

func TestNewChatResetsSessionAndPlayback(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestModel(backend)
	m = sendText(t, m, "hello")

	mm, cmd := m.playLastAssistant()
	m = drain(t, mm.(Model), cmd)
	if _, ok := m.player.Active(); !ok {
		t.Fatal("playback should be active before newChat")
	}

	m = m.newChat()

	if !m.Session().IsEmpty() || m.Session().ActiveChatID != "" {
		t.Error("newChat must clear transcript and active chat id")
	}
	if _, ok := m.player.Active(); ok {
		t.Error("newChat must cancel active playback")
	}
}

// =============================================================================
// MANUALS
// =============================================================================

func TestGenerateManualNotFound(t *testing.T) {
	backend := &fakeBackend{
		manualFn: func(req api.ManualRequest) (*api.Manual, error) {
			return nil, &api.Error{Kind: api.KindNotFound, Status: 404, Message: api.MsgNoToolFound}
		},
	}
	m := newTestModel(backend)

	mm, cmd := m.generateManual("")
	m = drain(t, mm.(Model), cmd)

	msgs := m.Session().Messages()
	if len(msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(msgs))
	}
	if !msgs[0].IsError || msgs[0].Content != api.MsgNoToolFound {
		t.Errorf("error message = %q (IsError=%v), want no-tool-found text", msgs[0].Content, msgs[0].IsError)
	}
	if m.InFlight() {
		t.Error("must return to idle after a failed manual")
	}
}

func TestGenerateManualSuccess(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestModel(backend)

	mm, cmd := m.generateManual("hammer")
	m = drain(t, mm.(Model), cmd)

	msgs := m.Session().Messages()
	if len(msgs) != 1 || msgs[0].Role != model.RoleAssistant || msgs[0].IsError {
		t.Fatalf("expected one assistant message, got %+v", msgs)
	}
	if msgs[0].Content == "" {
		t.Error("manual content must not be empty")
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

func TestParseSlashCommand(t *testing.T) {
	tests := []struct {
		input string
		name  string
		arg   string
		nilOK bool
	}{
		{"/new", "new", "", false},
		{"/manual claw hammer", "manual", "claw hammer", false},
		{"/safety drill", "safety", "drill", false},
		{"/attach /tmp/a.jpg", "attach", "/tmp/a.jpg", false},
		{"/lang fr", "lang", "fr", false},
		{"  /chats  ", "chats", "", false},
		{"/bogus", "", "", true},
		{"plain message", "", "", true},
	}

	for _, tt := range tests {
		got := parseSlashCommand(tt.input)
		if tt.nilOK {
			if got != nil {
				t.Errorf("parseSlashCommand(%q) = %+v, want nil", tt.input, got)
			}
			continue
		}
		if got == nil || got.name != tt.name || got.arg != tt.arg {
			t.Errorf("parseSlashCommand(%q) = %+v, want {%s %s}", tt.input, got, tt.name, tt.arg)
		}
	}
}
