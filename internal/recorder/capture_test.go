// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package recorder

import (
	"context"
	"errors"
	"os"
	"runtime"
	"testing"
)

func requireSh(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("exec source tests need sh")
	}
}

func TestExecSourceImmediateExitDeniesStart(t *testing.T) {
	requireSh(t)

	// A helper that dies instantly is how ffmpeg reports a refused
	// device. Start must fail and the recorder must stay Idle.
	r := New(NewExecSource([]string{"sh", "-c", "exit 1"}))

	err := r.Start(context.Background())
	if !errors.Is(err, ErrPermission) {
		t.Fatalf("Start = %v, want ErrPermission", err)
	}
	if r.State() != Idle {
		t.Errorf("state after refused Start = %v, want Idle", r.State())
	}
}

func TestExecSourceImmediateExitReleasesProcess(t *testing.T) {
	requireSh(t)

	src := NewExecSource([]string{"sh", "-c", "exit 1"})
	if err := src.Start(context.Background()); err == nil {
		t.Fatal("Start should fail when the helper exits immediately")
	}

	if src.cmd != nil || src.outPath != "" || src.waited != nil {
		t.Errorf("source not cleaned up after early exit: cmd=%v outPath=%q", src.cmd, src.outPath)
	}
}

func TestExecSourceCancelledStartCleansUp(t *testing.T) {
	requireSh(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewExecSource([]string{"sh", "-c", "sleep 5"})
	err := src.Start(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Start = %v, want context.Canceled", err)
	}

	if src.cmd != nil || src.waited != nil {
		t.Error("source should release the process on a cancelled Start")
	}
	if src.outPath != "" {
		if _, statErr := os.Stat(src.outPath); statErr == nil {
			t.Errorf("temp file %q not removed", src.outPath)
		}
		t.Errorf("outPath = %q, want cleared", src.outPath)
	}
}

func TestExecSourceStartStopRoundTrip(t *testing.T) {
	requireSh(t)

	// The helper writes output and waits to be interrupted, like a real
	// encoder finalizing its container.
	src := NewExecSource([]string{"sh", "-c", `printf audio > "$0"; sleep 5`})
	if err := src.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	clip, err := src.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if string(clip.Data) != "audio" {
		t.Errorf("clip data = %q, want audio", clip.Data)
	}
	if clip.Path != "" {
		t.Cleanup(func() { os.Remove(clip.Path) })
	}
	if src.cmd != nil || src.outPath != "" {
		t.Error("source should be cleaned up after Stop")
	}
}
