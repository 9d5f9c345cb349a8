// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

// ffmpeg capture input for Windows DirectShow.
const (
	defaultCaptureFormat = "dshow"
	defaultCaptureDevice = "audio=Microphone"
)
