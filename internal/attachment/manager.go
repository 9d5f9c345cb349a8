// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package attachment tracks pending files for the next chat send.
//
// Files and previews are kept in arrival order and removed by position.
// Preview derivation is asynchronous: a file is eligible to send before
// its preview exists.
package attachment

import (
	"encoding/base64"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// File is one pending attachment.
type File struct {
	ID   string // internal handle for async preview delivery
	Name string
	Path string // source file on disk
	MIME string
	Data []byte
}

// IsImage reports whether the file is an image and eligible for a preview.
func (f File) IsImage() bool {
	return strings.HasPrefix(f.MIME, "image/")
}

// Manager holds the pending attachments for the composer.
type Manager struct {
	files    []File
	previews map[string]string // file ID -> data URL
}

// NewManager creates an empty attachment manager.
func NewManager() *Manager {
	return &Manager{previews: make(map[string]string)}
}

// AddPath reads a file from disk and appends it. Returns the stored
// entry so the caller can schedule preview derivation.
func (m *Manager) AddPath(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}

	name := filepath.Base(path)
	f := File{
		ID:   uuid.NewString(),
		Name: name,
		Path: path,
		MIME: mime.TypeByExtension(filepath.Ext(name)),
		Data: data,
	}
	m.files = append(m.files, f)
	return f, nil
}

// Add appends an already loaded file.
func (m *Manager) Add(f File) File {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	m.files = append(m.files, f)
	return f
}

// Files returns the pending files in arrival order.
func (m *Manager) Files() []File {
	return m.files
}

// Count returns the number of pending files.
func (m *Manager) Count() int {
	return len(m.files)
}

// RemoveAt removes the file and its preview at the given position.
// Out-of-range indexes are ignored.
func (m *Manager) RemoveAt(i int) {
	if i < 0 || i >= len(m.files) {
		return
	}
	delete(m.previews, m.files[i].ID)
	m.files = append(m.files[:i], m.files[i+1:]...)
}

// Clear drops all pending files and previews. Called after a successful
// hand-off to the orchestrator.
func (m *Manager) Clear() {
	m.files = nil
	m.previews = make(map[string]string)
}

// SetPreview stores a derived preview for a file. Late previews for
// removed files are dropped silently.
func (m *Manager) SetPreview(fileID, dataURL string) {
	for _, f := range m.files {
		if f.ID == fileID {
			m.previews[fileID] = dataURL
			return
		}
	}
}

// Preview returns the preview for the file at the given position, if
// derived yet.
func (m *Manager) Preview(i int) (string, bool) {
	if i < 0 || i >= len(m.files) {
		return "", false
	}
	url, ok := m.previews[m.files[i].ID]
	return url, ok
}

// DataURL encodes a file as a data URL for inline preview rendering.
func DataURL(f File) string {
	mimeType := f.MIME
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
}
