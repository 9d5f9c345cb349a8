// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audio owns the single playback resource for spoken responses.
//
// At most one clip plays at a time. The active playback is represented
// by a token bound to a transcript message; the previous token is always
// stopped and its resource revoked before a new one is allocated.
package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Token identifies the active playback.
type Token struct {
	MessageID string
	path      string
}

// Sink plays an audio file. Play returns a stop function and a channel
// that delivers the terminal result (nil on natural end of audio).
type Sink interface {
	Play(path string) (stop func(), done <-chan error, err error)
}

// FetchFunc obtains the audio bytes for a message, typically via TTS.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Player manages the playback token.
type Player struct {
	sink Sink

	// onFinished is invoked when playback ends on its own or errors,
	// after the token is cleared. May be nil.
	onFinished func(messageID string, err error)

	mu     sync.Mutex
	active *Token
	stop   func()
}

// NewPlayer creates a player around a sink.
func NewPlayer(sink Sink) *Player {
	return &Player{sink: sink}
}

// OnFinished registers the end-of-playback callback.
func (p *Player) OnFinished(fn func(messageID string, err error)) {
	p.onFinished = fn
}

// Active returns the message id of the current token, if any.
func (p *Player) Active() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == nil {
		return "", false
	}
	return p.active.MessageID, true
}

// Toggle implements play/stop semantics for one message.
//
// If messageID already holds the token, playback stops and the token is
// cleared (idempotent stop; no fetch happens). Otherwise any existing
// token is stopped and revoked first, then fetch is called, the clip is
// written to a temp file, and playback starts under a new token.
//
// Returns true when playback started, false when this call was a stop.
func (p *Player) Toggle(ctx context.Context, messageID string, fetch FetchFunc) (bool, error) {
	p.mu.Lock()

	if p.active != nil && p.active.MessageID == messageID {
		p.stopLocked()
		p.mu.Unlock()
		return false, nil
	}
	// Revoke-before-replace: the old resource is gone before the new
	// fetch even begins.
	p.stopLocked()
	p.mu.Unlock()

	data, err := fetch(ctx)
	if err != nil {
		return false, err
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("toolify-tts-%d.mp3", time.Now().UnixNano()))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return false, err
	}

	stop, done, err := p.sink.Play(path)
	if err != nil {
		os.Remove(path)
		return false, err
	}

	token := &Token{MessageID: messageID, path: path}
	p.mu.Lock()
	// A concurrent Toggle may have started something while we fetched;
	// it loses, per last-writer-wins on the single resource.
	p.stopLocked()
	p.active = token
	p.stop = stop
	p.mu.Unlock()

	go p.watch(token, done)
	return true, nil
}

// Stop clears the token and halts playback, if any.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// stopLocked halts playback and revokes the resource. Caller holds p.mu.
func (p *Player) stopLocked() {
	if p.stop != nil {
		p.stop()
		p.stop = nil
	}
	if p.active != nil {
		os.Remove(p.active.path)
		p.active = nil
	}
}

// watch clears the token when its playback finishes naturally or errors.
func (p *Player) watch(token *Token, done <-chan error) {
	err := <-done

	p.mu.Lock()
	finished := p.active == token
	if finished {
		os.Remove(token.path)
		p.active = nil
		p.stop = nil
	}
	p.mu.Unlock()

	if finished && p.onFinished != nil {
		p.onFinished(token.MessageID, err)
	}
}
