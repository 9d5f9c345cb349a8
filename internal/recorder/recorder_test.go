// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package recorder

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeSource is an in-memory capture source for state machine tests.
type fakeSource struct {
	startErr   error
	stopErr    error
	clip       Clip
	startCalls int
	stopCalls  int
}

func (f *fakeSource) Start(ctx context.Context) error {
	f.startCalls++
	return f.startErr
}

func (f *fakeSource) Stop() (Clip, error) {
	f.stopCalls++
	return f.clip, f.stopErr
}

func TestStartStopTransitions(t *testing.T) {
	src := &fakeSource{clip: Clip{Data: []byte("mp3"), Duration: 2 * time.Second}}
	r := New(src)

	if r.State() != Idle {
		t.Fatalf("initial state = %v, want Idle", r.State())
	}

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if r.State() != Recording {
		t.Fatalf("state after Start = %v, want Recording", r.State())
	}

	clip, err := r.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if r.State() != Idle {
		t.Errorf("state after Stop = %v, want Idle", r.State())
	}
	if string(clip.Data) != "mp3" {
		t.Errorf("clip data = %q, want mp3", clip.Data)
	}
}

func TestStartWhileRecordingIsNoOp(t *testing.T) {
	src := &fakeSource{}
	r := New(src)

	r.Start(context.Background())
	r.Start(context.Background())
	r.Start(context.Background())

	if src.startCalls != 1 {
		t.Errorf("source started %d times, want 1 (single active recording)", src.startCalls)
	}
}

func TestPermissionErrorStaysIdle(t *testing.T) {
	src := &fakeSource{startErr: ErrPermission}
	r := New(src)

	err := r.Start(context.Background())
	if !errors.Is(err, ErrPermission) {
		t.Fatalf("Start = %v, want ErrPermission", err)
	}
	if r.State() != Idle {
		t.Errorf("state after denied Start = %v, want Idle", r.State())
	}
	if r.Elapsed() != 0 {
		t.Errorf("Elapsed after denied Start = %v, want 0", r.Elapsed())
	}
}

func TestStopWhileIdleIsEmpty(t *testing.T) {
	src := &fakeSource{}
	r := New(src)

	clip, err := r.Stop()
	if err != nil {
		t.Fatalf("Stop while idle: %v", err)
	}
	if len(clip.Data) != 0 {
		t.Error("Stop while idle should return an empty clip")
	}
	if src.stopCalls != 0 {
		t.Error("Stop while idle must not touch the device")
	}
}

func TestDeviceReleasedOnStopError(t *testing.T) {
	src := &fakeSource{stopErr: errors.New("flush failed")}
	r := New(src)

	r.Start(context.Background())
	if _, err := r.Stop(); err == nil {
		t.Fatal("Stop should propagate the source error")
	}

	// Error path still returns to Idle so the device can be reacquired.
	if r.State() != Idle {
		t.Errorf("state after failed Stop = %v, want Idle", r.State())
	}
	if err := r.Start(context.Background()); err != nil {
		t.Errorf("restart after failed Stop: %v", err)
	}
	if src.startCalls != 2 {
		t.Errorf("source started %d times, want 2", src.startCalls)
	}
}

func TestElapsedResetsOnStop(t *testing.T) {
	src := &fakeSource{}
	r := New(src)

	r.Start(context.Background())
	if r.Elapsed() < 0 {
		t.Error("Elapsed must be non-negative while recording")
	}
	r.Stop()
	if r.Elapsed() != 0 {
		t.Errorf("Elapsed after Stop = %v, want 0", r.Elapsed())
	}
}
