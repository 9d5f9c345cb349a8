// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// Renderer renders assistant markdown for terminal display. Manuals and
// safety guides come back as markdown with headings and fenced code.
type Renderer struct {
	mu       sync.Mutex
	width    int
	renderer *glamour.TermRenderer
}

// NewRenderer creates a markdown renderer wrapped at the given width.
func NewRenderer(width int) *Renderer {
	r := &Renderer{}
	r.SetWidth(width)
	return r
}

// SetWidth rebuilds the renderer for a new wrap width. A failed rebuild
// leaves rendering in plain-text mode.
func (r *Renderer) SetWidth(width int) {
	if width < 20 {
		width = 20
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.renderer != nil && r.width == width {
		return
	}

	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		r.renderer = nil
		return
	}
	r.width = width
	r.renderer = tr
}

// Render renders markdown content. Returns the original content when the
// renderer is unavailable or rendering fails.
func (r *Renderer) Render(content string) string {
	r.mu.Lock()
	tr := r.renderer
	r.mu.Unlock()

	if tr == nil {
		return highlightFences(content)
	}
	rendered, err := tr.Render(content)
	if err != nil {
		return highlightFences(content)
	}
	return strings.TrimRight(rendered, "\n")
}

// highlightFences is the plain-text fallback: the markdown passes through
// untouched except fenced code blocks, which still get ANSI highlighting.
func highlightFences(content string) string {
	lines := strings.Split(content, "\n")
	var out []string
	var code []string
	var lang string
	inFence := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inFence {
				out = append(out, strings.TrimRight(HighlightCode(strings.Join(code, "\n"), lang), "\n"))
				code = code[:0]
				inFence = false
			} else {
				lang = strings.TrimPrefix(trimmed, "```")
				inFence = true
			}
			continue
		}
		if inFence {
			code = append(code, line)
		} else {
			out = append(out, line)
		}
	}
	if inFence {
		out = append(out, code...)
	}
	return strings.Join(out, "\n")
}

// =============================================================================
// SYNTAX HIGHLIGHTING
// =============================================================================

// HighlightCode applies syntax highlighting to a code snippet for ANSI
// terminal output. Falls back to plain text on any failure.
func HighlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}
