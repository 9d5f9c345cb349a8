// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
)

func TestHighlightFencesStripsMarkers(t *testing.T) {
	content := "Steps:\n```go\nx := 1\n```\ndone"
	out := highlightFences(content)

	if strings.Contains(out, "```") {
		t.Errorf("fence markers survived: %q", out)
	}
	if !strings.Contains(out, "Steps:") || !strings.Contains(out, "done") {
		t.Errorf("prose lines lost: %q", out)
	}
}

func TestHighlightFencesUnterminatedFence(t *testing.T) {
	content := "intro\n```\ncode without closing"
	out := highlightFences(content)

	if !strings.Contains(out, "code without closing") {
		t.Errorf("unterminated fence content lost: %q", out)
	}
}

func TestHighlightCodeNeverEmpty(t *testing.T) {
	for _, lang := range []string{"go", "python", "", "no-such-language"} {
		if out := HighlightCode("a = 1", lang); out == "" {
			t.Errorf("HighlightCode(%q) returned empty output", lang)
		}
	}
}
