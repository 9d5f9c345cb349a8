// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audio

import (
	"fmt"
	"os/exec"
	"sync"
)

// ExecSink plays audio through an external player (ffplay by default).
// The command receives the file path as its final argument.
type ExecSink struct {
	command []string
}

// NewExecSink creates a sink around a player command line.
func NewExecSink(command []string) *ExecSink {
	return &ExecSink{command: command}
}

// Play starts the player process. The done channel fires once with the
// process result; stop kills the process early.
func (s *ExecSink) Play(path string) (func(), <-chan error, error) {
	if len(s.command) == 0 {
		return nil, nil, fmt.Errorf("no play command configured")
	}

	args := append(append([]string{}, s.command[1:]...), path)
	cmd := exec.Command(s.command[0], args...)
	if err := cmd.Start(); err != nil {
		return nil, nil, err
	}

	done := make(chan error, 1)
	var once sync.Once
	stop := func() {
		once.Do(func() {
			if cmd.Process != nil {
				cmd.Process.Kill()
			}
		})
	}

	go func() {
		done <- cmd.Wait()
	}()
	return stop, done, nil
}
