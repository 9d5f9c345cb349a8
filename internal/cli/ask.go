// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command handler.
//
// Handles "toolify ask", which performs one chat round trip and prints
// the answer, rendering markdown when stdout is a terminal.
package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/toolify-tui/internal/api"
)

// MaxPhotoSize caps attached photos (10MB).
const MaxPhotoSize = 10 * 1024 * 1024

// HandleAsk sends one question and prints the reply.
func HandleAsk(client *api.Client, args Args) error {
	question := strings.TrimSpace(args.Query)
	if question == "" && args.File == "" {
		return fmt.Errorf("no question provided. Usage: toolify ask \"your question\"")
	}

	req := api.SendRequest{Message: question}
	if args.File != "" {
		upload, err := readPhoto(args.File)
		if err != nil {
			return err
		}
		req.File = upload
		if req.Message == "" {
			req.Message = "What is this tool?"
		}
	}

	resp, err := client.SendMessage(context.Background(), req)
	if err != nil {
		return fmt.Errorf("%s", api.UserMessage(err))
	}

	displayResponse(resp.Content)
	if args.Verbose && resp.Language != "" {
		fmt.Fprintf(os.Stderr, "language: %s\n", resp.Language)
	}
	return nil
}

// readPhoto loads a tool photo for upload.
func readPhoto(path string) (*api.FileUpload, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if info.Size() > MaxPhotoSize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d bytes)", info.Size(), MaxPhotoSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	name := filepath.Base(path)
	return &api.FileUpload{
		Name: name,
		MIME: mime.TypeByExtension(filepath.Ext(name)),
		Data: data,
	}, nil
}

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// newMarkdownRenderer builds a glamour renderer for the current terminal.
// Returns nil when initialization fails; callers fall back to plain text.
func newMarkdownRenderer() *glamour.TermRenderer {
	width := TerminalWidth()
	if width > 100 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

// displayResponse prints a reply, rendering markdown only on a TTY so
// piped output stays clean.
func displayResponse(content string) {
	if !IsStdoutTTY() {
		fmt.Println(content)
		return
	}
	r := newMarkdownRenderer()
	if r == nil {
		fmt.Println(content)
		return
	}
	rendered, err := r.Render(content)
	if err != nil {
		fmt.Println(content)
		return
	}
	fmt.Print(rendered)
}
