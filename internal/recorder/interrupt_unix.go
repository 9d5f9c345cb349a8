// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows

package recorder

import (
	"os/exec"

	"golang.org/x/sys/unix"
)

// interrupt asks the capture process to stop and flush its output.
// SIGINT lets ffmpeg finalize the mp3 container; SIGKILL would truncate it.
func interrupt(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Signal(unix.SIGINT)
}
