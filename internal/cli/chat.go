// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive line-mode chat command handler.
//
// Handles "toolify chat": a REPL over the same backend the TUI drives,
// with input history and session continuity.
//
// Interactive commands:
//   /manual <tool>   Generate a manual for a named tool
//   /safety <tool>   Generate a safety guide
//   /lang <code>     Switch response language
//   /new             Start a fresh session
//   /help            Show commands
//   /quit            Exit (also Ctrl+D)
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/toolify-tui/internal/api"
	"github.com/jeranaias/toolify-tui/internal/config"
)

const historyFilename = "history"

// =============================================================================
// INPUT HISTORY
// =============================================================================

// chatInput provides line editing and persistent history for the REPL.
type chatInput struct {
	line        *liner.State
	historyFile string
}

func newChatInput() *chatInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.StateDir()
	if err != nil {
		dir = os.TempDir()
	}

	c := &chatInput{
		line:        line,
		historyFile: filepath.Join(dir, historyFilename),
	}
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
	return c
}

// Read reads one line, recording non-empty input in history.
func (c *chatInput) Read(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Close persists history and restores the terminal.
func (c *chatInput) Close() {
	if err := config.EnsureStateDir(); err == nil {
		if f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			c.line.WriteHistory(f)
			f.Close()
		}
	}
	c.line.Close()
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChat runs the interactive REPL.
func HandleChat(client *api.Client, args Args) error {
	cfg := config.Global()
	language := cfg.Chat.Language
	if args.Language != "" {
		language = args.Language
	}

	input := newChatInput()
	defer input.Close()

	if !args.Quiet {
		fmt.Println("toolify chat - ask about any tool. /help for commands, /quit to exit.")
	}

	var sessionID string
	ctx := context.Background()

	for {
		text, err := input.Read("you> ")
		if err == io.EOF || err == liner.ErrPromptAborted {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "/") {
			done, err := runChatCommand(ctx, client, text, &sessionID, &language)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
			if done {
				return nil
			}
			continue
		}

		resp, err := client.SendMessage(ctx, api.SendRequest{
			Message:   text,
			SessionID: sessionID,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, api.UserMessage(err))
			continue
		}
		if resp.SessionID != "" {
			sessionID = resp.SessionID
		}

		fmt.Print("toolify> ")
		displayResponse(resp.Content)
	}
}

// runChatCommand executes one slash command. Returns true to exit.
func runChatCommand(ctx context.Context, client *api.Client, text string, sessionID, language *string) (bool, error) {
	name, arg, _ := strings.Cut(strings.TrimPrefix(text, "/"), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "quit", "q", "exit":
		return true, nil

	case "new":
		*sessionID = ""
		fmt.Println("started a new session")
		return false, nil

	case "lang":
		for _, l := range config.SupportedLanguages {
			if l == arg {
				*language = arg
				fmt.Println("language set to", config.LanguageName(arg))
				return false, nil
			}
		}
		return false, fmt.Errorf("unsupported language %q (supported: %s)",
			arg, strings.Join(config.SupportedLanguages, ", "))

	case "manual":
		if arg == "" {
			return false, fmt.Errorf("usage: /manual <tool name>")
		}
		manual, err := client.GenerateManual(ctx, api.ManualRequest{
			ToolName: arg,
			Language: *language,
		})
		if err != nil {
			return false, fmt.Errorf("%s", api.UserMessage(err))
		}
		displayResponse("# " + manual.ToolName + "\n\n" + manual.Manual)
		return false, nil

	case "safety":
		if arg == "" {
			return false, fmt.Errorf("usage: /safety <tool name>")
		}
		guide, err := client.GenerateSafetyGuide(ctx, api.ManualRequest{
			ToolName: arg,
			Language: *language,
		})
		if err != nil {
			return false, fmt.Errorf("%s", api.UserMessage(err))
		}
		displayResponse("# Safety: " + guide.ToolName + "\n\n" + guide.SafetyGuide)
		return false, nil

	case "help", "h":
		fmt.Println(`/manual <tool>   Generate a manual
/safety <tool>   Generate a safety guide
/lang <code>     Switch language (en, fr, pdg)
/new             Start a fresh session
/quit            Exit`)
		return false, nil

	default:
		return false, fmt.Errorf("unknown command: /%s", name)
	}
}
