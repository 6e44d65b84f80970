package channel

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitMessage_ShortTextUnchanged(t *testing.T) {
	chunks := splitMessage("hello", 100)
	if len(chunks) != 1 || chunks[0] != "hello" {
		t.Errorf("splitMessage = %q, want single chunk %q", chunks, "hello")
	}
}

func TestSplitMessage_PrefersLineBoundary(t *testing.T) {
	text := strings.Repeat("a", 60) + "\n" + strings.Repeat("b", 60)
	chunks := splitMessage(text, 100)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0] != strings.Repeat("a", 60) {
		t.Errorf("first chunk = %q, want the full first line", chunks[0])
	}
	if strings.Join(chunks, "") != text {
		t.Error("chunks do not rejoin to the original text")
	}
}

func TestSplitMessage_HardCutKeepsRunesIntact(t *testing.T) {
	// No newlines, all three-byte runes: a cut at maxLen=100 would land
	// mid-rune unless the split backs up to a rune boundary.
	text := strings.Repeat("世", 50) // 150 bytes
	chunks := splitMessage(text, 100)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 100 {
			t.Errorf("chunk %d is %d bytes, exceeds limit", i, len(chunk))
		}
		if !utf8.ValidString(chunk) {
			t.Errorf("chunk %d splits a rune: %q", i, chunk)
		}
	}
	if strings.Join(chunks, "") != text {
		t.Error("chunks do not rejoin to the original text")
	}
}

func TestSplitMessage_IgnoresEarlyNewline(t *testing.T) {
	// A newline in the first half of the window is too early to use.
	text := "x\n" + strings.Repeat("y", 200)
	chunks := splitMessage(text, 100)
	if len(chunks[0]) != 100 {
		t.Errorf("first chunk is %d bytes, want a hard cut at 100", len(chunks[0]))
	}
	if strings.Join(chunks, "") != text {
		t.Error("chunks do not rejoin to the original text")
	}
}
