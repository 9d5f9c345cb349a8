// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package recorder

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ExecSource captures microphone audio by running an external recorder
// (ffmpeg by default) writing mp3 to a temp file. The command receives
// the output path as its final argument and is stopped with an
// interrupt so the encoder can finalize the container.
type ExecSource struct {
	command []string

	cmd     *exec.Cmd
	outPath string
	started time.Time
	waited  chan error
}

// NewExecSource creates a source around a capture command line.
func NewExecSource(command []string) *ExecSource {
	return &ExecSource{command: command}
}

// Start launches the capture process. Device-access failures from the
// helper are reported as ErrPermission.
func (s *ExecSource) Start(ctx context.Context) error {
	if len(s.command) == 0 {
		return fmt.Errorf("no capture command configured")
	}

	out, err := os.CreateTemp("", "toolify-rec-*.mp3")
	if err != nil {
		return err
	}
	out.Close()

	args := append(append([]string{}, s.command[1:]...), out.Name())
	cmd := exec.Command(s.command[0], args...)
	if err := cmd.Start(); err != nil {
		os.Remove(out.Name())
		if isPermissionErr(err) {
			return fmt.Errorf("%w: %v", ErrPermission, err)
		}
		return err
	}

	s.cmd = cmd
	s.outPath = out.Name()
	s.started = time.Now()

	// Reap the process from a goroutine; Wait is what populates the exit
	// status, and Stop reuses the same channel.
	waited := make(chan error, 1)
	go func() { waited <- cmd.Wait() }()
	s.waited = waited

	// A capture helper that dies immediately almost always means the
	// device was refused. Give it a moment so Start can report it.
	select {
	case <-ctx.Done():
		s.kill()
		<-waited
		s.cleanup()
		return ctx.Err()
	case <-waited:
		s.cleanup()
		return fmt.Errorf("%w: capture process exited immediately", ErrPermission)
	case <-time.After(250 * time.Millisecond):
	}
	return nil
}

// Stop interrupts the capture process, waits for it to flush, and reads
// the finalized clip. The temp file is removed; the clip carries the
// bytes plus a copy on disk for transcript preview.
func (s *ExecSource) Stop() (Clip, error) {
	if s.cmd == nil {
		return Clip{}, nil
	}
	defer s.cleanup()

	if err := interrupt(s.cmd); err != nil {
		s.kill()
	}

	select {
	case <-s.waited:
	case <-time.After(3 * time.Second):
		s.kill()
		<-s.waited
	}

	data, err := os.ReadFile(s.outPath)
	if err != nil {
		return Clip{}, err
	}
	if len(data) == 0 {
		return Clip{}, fmt.Errorf("capture produced no audio")
	}

	// Keep a playable copy for the transcript's local audio reference.
	keep := filepath.Join(os.TempDir(), fmt.Sprintf("toolify-voice-%d.mp3", time.Now().UnixNano()))
	if err := os.WriteFile(keep, data, 0o600); err != nil {
		keep = ""
	}

	return Clip{
		Path:     keep,
		Data:     data,
		Duration: time.Since(s.started).Truncate(time.Second),
	}, nil
}

func (s *ExecSource) kill() {
	if s.cmd != nil && s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
}

func (s *ExecSource) cleanup() {
	if s.outPath != "" {
		os.Remove(s.outPath)
	}
	s.cmd = nil
	s.outPath = ""
	s.waited = nil
}

// isPermissionErr detects device-access denials from exec failures.
func isPermissionErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "permission denied") ||
		strings.Contains(msg, "operation not permitted")
}
