// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// toolify is a terminal client for the Toolify tool-identification
// service: a Bubble Tea chat TUI plus a small non-interactive CLI, both
// driving the same remote HTTP API.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/jeranaias/toolify-tui/internal/api"
	"github.com/jeranaias/toolify-tui/internal/audio"
	"github.com/jeranaias/toolify-tui/internal/auth"
	"github.com/jeranaias/toolify-tui/internal/cli"
	"github.com/jeranaias/toolify-tui/internal/config"
	"github.com/jeranaias/toolify-tui/internal/recorder"
	"github.com/jeranaias/toolify-tui/internal/ui/chat"
	"github.com/jeranaias/toolify-tui/internal/ui/styles"
)

func main() {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.HandleHelp()
	case cli.CmdAsk:
		runCLI(args, func(client *api.Client) error {
			return cli.HandleAsk(client, args)
		})
	case cli.CmdChat:
		runCLI(args, func(client *api.Client) error {
			return cli.HandleChat(client, args)
		})
	default:
		runTUI(args)
	}
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// newAuthProvider picks the identity source: a static TOOLIFY_TOKEN when
// set, otherwise sealed credentials under the state dir. A signed-out
// result is not fatal; the caller decides how to degrade.
func newAuthProvider(cfg *config.Config) (auth.Provider, bool) {
	if token := os.Getenv("TOOLIFY_TOKEN"); token != "" {
		return auth.NewStaticProvider(token), false
	}

	dir, err := config.StateDir()
	if err != nil {
		return auth.NewStaticProvider(""), true
	}
	provider, err := auth.NewFileProvider(dir, cfg.API.TokenURL)
	if err != nil {
		return auth.NewStaticProvider(""), true
	}
	return provider, false
}

// newClient builds the API client from config and identity.
func newClient(cfg *config.Config, tokens auth.Provider, logger *log.Logger) *api.Client {
	return api.NewClient(cfg.API.BaseURL, tokens).WithLogger(logger)
}

// =============================================================================
// CLI MODE
// =============================================================================

// runCLI wires config, identity, and logging for a non-interactive
// command, then invokes it.
func runCLI(args cli.Args, run func(*api.Client) error) {
	cfg := config.Global()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	logger.SetLevel(parseLogLevel(cfg.Log.Level, args.Verbose))

	tokens, signedOut := newAuthProvider(cfg)
	if signedOut && !args.Quiet {
		fmt.Fprintln(os.Stderr, "not signed in: set TOOLIFY_TOKEN or store credentials under ~/.toolify")
	}

	client := newClient(cfg, tokens, logger)
	if err := run(client); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// =============================================================================
// TUI MODE
// =============================================================================

func runTUI(args cli.Args) {
	if !cli.IsTTY() {
		fmt.Fprintln(os.Stderr, "toolify: stdin is not a terminal; use `toolify ask` for scripted use")
		os.Exit(1)
	}

	cfg := config.Global()

	logger := newTUILogger(cfg)
	tokens, signedOut := newAuthProvider(cfg)
	client := newClient(cfg, tokens, logger)

	language := cfg.Chat.Language
	if args.Language != "" {
		language = args.Language
	}

	var firstName string
	if user, ok := tokens.CurrentUser(); ok {
		firstName = user.FirstName
	}

	rec := recorder.New(recorder.NewExecSource(cfg.Audio.CaptureCommand))
	player := audio.NewPlayer(audio.NewExecSink(cfg.Audio.PlayCommand))

	m := chat.New(styles.NewTheme(), client, rec, player, chat.Options{
		Language:  language,
		FirstName: firstName,
		ReadOnly:  signedOut,
		Logger:    logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())

	// Live config reload: base URL changes apply without a restart.
	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	if path, err := config.Path(); err == nil {
		go func() {
			err := config.Watch(watchCtx, path, func(updated *config.Config) {
				client.SetBaseURL(updated.API.BaseURL)
				config.SetGlobal(updated)
				logger.Info("config reloaded", "base_url", updated.API.BaseURL)
			})
			if err != nil && watchCtx.Err() == nil {
				logger.Warn("config watcher stopped", "err", err)
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newTUILogger logs to a file under the state dir. The alternate screen
// owns the terminal; logging there would corrupt the display.
func newTUILogger(cfg *config.Config) *log.Logger {
	path := cfg.Log.File
	if path == "" {
		if dir, err := config.StateDir(); err == nil {
			path = filepath.Join(dir, "toolify.log")
		}
	}

	var out io.Writer = io.Discard
	if path != "" {
		if err := config.EnsureStateDir(); err == nil {
			if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600); err == nil {
				out = f
			}
		}
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	logger.SetLevel(parseLogLevel(cfg.Log.Level, false))
	return logger
}

// parseLogLevel maps the configured level, bumped to debug by --verbose.
func parseLogLevel(level string, verbose bool) log.Level {
	if verbose {
		return log.DebugLevel
	}
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
