// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows

package recorder

import "os/exec"

// interrupt stops the capture process. Windows has no SIGINT delivery to
// a non-console child, so the process is killed outright; ffmpeg's mp3
// muxer tolerates truncation at a frame boundary.
func interrupt(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
