// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !darwin && !windows

package config

// ffmpeg capture input for Linux and the BSDs.
const (
	defaultCaptureFormat = "alsa"
	defaultCaptureDevice = "default"
)
