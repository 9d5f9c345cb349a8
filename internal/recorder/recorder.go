// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package recorder implements the microphone two-state machine.
//
// State moves Idle -> Recording -> Idle. The capture device is owned by
// the recorder for the lifetime of one recording and released on every
// stop path, including errors.
package recorder

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is the recorder state.
type State int

const (
	Idle State = iota
	Recording
)

// String returns the state name.
func (s State) String() string {
	if s == Recording {
		return "recording"
	}
	return "idle"
}

// ErrPermission indicates microphone access was denied. The recorder
// stays Idle; the UI surfaces an alert without touching chat state.
var ErrPermission = errors.New("microphone access denied")

// Clip is one finalized recording.
type Clip struct {
	Path     string // mp3 file on disk
	Data     []byte
	Duration time.Duration
}

// CaptureSource acquires the microphone and produces a clip.
//
// Start must fail with ErrPermission (possibly wrapped) when device
// access is denied. Stop must release the device even when it returns
// an error.
type CaptureSource interface {
	Start(ctx context.Context) error
	Stop() (Clip, error)
}

// Recorder is the two-state recording machine.
type Recorder struct {
	mu        sync.Mutex
	state     State
	source    CaptureSource
	startedAt time.Time
}

// New creates an idle recorder around a capture source.
func New(source CaptureSource) *Recorder {
	return &Recorder{source: source}
}

// State returns the current state.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Elapsed returns the time spent in the current recording, zero when
// Idle. Display code ticks this once per second.
func (r *Recorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Recording {
		return 0
	}
	return time.Since(r.startedAt).Truncate(time.Second)
}

// Start begins a recording. Starting while Recording is a no-op. A
// permission failure leaves the recorder Idle.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == Recording {
		return nil
	}
	if err := r.source.Start(ctx); err != nil {
		return err
	}
	r.state = Recording
	r.startedAt = time.Now()
	return nil
}

// Stop finalizes the recording into a clip and returns to Idle. The
// device is released regardless of outcome. Stopping while Idle returns
// an empty clip.
func (r *Recorder) Stop() (Clip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != Recording {
		return Clip{}, nil
	}
	elapsed := time.Since(r.startedAt)
	r.state = Idle
	r.startedAt = time.Time{}

	clip, err := r.source.Stop()
	if err != nil {
		return Clip{}, err
	}
	if clip.Duration == 0 {
		clip.Duration = elapsed.Truncate(time.Second)
	}
	return clip, nil
}
