// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// SESSION
// =============================================================================

// Session holds the transcript for the currently displayed chat.
//
// The session orchestrator is the sole owner: all mutation happens on the
// UI event loop, so no locking is required. ActiveChatID is empty for a
// fresh session until the backend assigns one.
type Session struct {
	ActiveChatID string
	messages     []*Message
}

// NewSession creates an empty session with no active chat.
func NewSession() *Session {
	return &Session{}
}

// Messages returns the transcript in append order.
func (s *Session) Messages() []*Message {
	return s.messages
}

// Len returns the number of messages in the transcript.
func (s *Session) Len() int {
	return len(s.messages)
}

// IsEmpty returns true if no messages have been appended yet.
func (s *Session) IsEmpty() bool {
	return len(s.messages) == 0
}

// Append adds a message to the end of the transcript.
func (s *Session) Append(m *Message) {
	if m == nil {
		return
	}
	s.messages = append(s.messages, m)
}

// AppendUser appends a user message and returns it.
func (s *Session) AppendUser(content string) *Message {
	m := NewUserMessage(content)
	s.Append(m)
	return m
}

// AppendAssistant appends an assistant message and returns it.
func (s *Session) AppendAssistant(content string) *Message {
	m := NewAssistantMessage(content)
	s.Append(m)
	return m
}

// AppendError appends an assistant-role error message and returns it.
func (s *Session) AppendError(content string) *Message {
	m := NewErrorMessage(content)
	s.Append(m)
	return m
}

// ReplaceAll swaps the whole transcript, used when switching to another
// chat from the history list.
func (s *Session) ReplaceAll(msgs []*Message) {
	s.messages = msgs
}

// Reset clears the transcript and detaches from the active chat.
func (s *Session) Reset() {
	s.messages = nil
	s.ActiveChatID = ""
}

// AdoptChatID records a server-assigned session id. Returns true if the
// id differed from the current one, meaning the chat list is stale.
func (s *Session) AdoptChatID(id string) bool {
	if id == "" || id == s.ActiveChatID {
		return false
	}
	s.ActiveChatID = id
	return true
}

// Find returns the message with the given id, or nil.
func (s *Session) Find(id string) *Message {
	for _, m := range s.messages {
		if m.ID == id {
			return m
		}
	}
	return nil
}
