// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command handlers for toolify.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet    bool
	Verbose  bool
	Language string // overrides the configured response language

	// Command-specific
	Query string // ask: the question text
	File  string // ask: tool photo to attach

	// Raw args remaining after flag parsing
	Raw []string
}

const usageText = `toolify - tool identification assistant

Toolify identifies hand and power tools from photos or questions and
explains how to use them safely.

Usage:
  toolify                    Start TUI (default)
  toolify ask "question"     Ask a single question
    -f, --file PATH          Attach a tool photo
    -l, --lang CODE          Response language (en, fr, pdg)
  toolify chat               Interactive chat (line mode)
  toolify version            Show version
  toolify help               Show this help

Global flags:
  -q, --quiet                Minimal output
  -v, --verbose              Verbose output

Environment:
  TOOLIFY_API_URL            Backend base URL override
  TOOLIFY_TOKEN              Static bearer token (skips stored credentials)

Examples:
  toolify ask "What is a torque wrench used for?"
  toolify ask -f photo.jpg
  toolify ask -l fr "Comment utiliser cet outil?"
  toolify chat
`

// Parse reads os.Args into a command and its arguments.
func Parse() (Command, Args) {
	raw := os.Args[1:]
	remaining, args := parseGlobalFlags(raw)

	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, args
	case "ask":
		parseAskArgs(&args, remaining)
		return CmdAsk, args
	case "chat":
		return CmdChat, args
	case "version", "-V", "--version":
		return CmdVersion, args
	case "help", "-h", "--help":
		return CmdHelp, args
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		return CmdHelp, args
	}
}

// parseGlobalFlags strips the flags every command accepts.
func parseGlobalFlags(raw []string) ([]string, Args) {
	var args Args
	var remaining []string

	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case "-q", "--quiet":
			args.Quiet = true
		case "-v", "--verbose":
			args.Verbose = true
		default:
			remaining = append(remaining, raw[i])
		}
	}
	return remaining, args
}

// parseAskArgs parses ask flags; everything else joins into the query.
func parseAskArgs(args *Args, remaining []string) {
	var queryParts []string

	for i := 0; i < len(remaining); i++ {
		switch remaining[i] {
		case "-f", "--file":
			if i+1 < len(remaining) {
				i++
				args.File = remaining[i]
			}
		case "-l", "--lang":
			if i+1 < len(remaining) {
				i++
				args.Language = remaining[i]
			}
		default:
			queryParts = append(queryParts, remaining[i])
		}
	}
	args.Query = strings.Join(queryParts, " ")
}

// HandleVersion prints version information.
func HandleVersion() {
	fmt.Printf("toolify %s (%s, %s, %s/%s)\n",
		Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
}

// HandleHelp prints usage.
func HandleHelp() {
	fmt.Print(usageText)
}
