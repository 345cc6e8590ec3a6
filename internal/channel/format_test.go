package channel

import (
	"strings"
	"testing"
)

func TestFormatForSlack_Bold(t *testing.T) {
	if got := FormatForSlack("This is **bold** text"); got != "This is *bold* text" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatForSlack_Italic(t *testing.T) {
	if got := FormatForSlack("This is *italic* text"); got != "This is _italic_ text" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatForSlack_BoldItalic(t *testing.T) {
	if got := FormatForSlack("***both***"); got != "*_both_*" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatForSlack_Heading(t *testing.T) {
	if got := FormatForSlack("# Heading\nbody"); got != "*Heading*\nbody" {
		t.Fatalf("got %q", got)
	}
	if got := FormatForSlack("### Deep Heading"); got != "*Deep Heading*" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatForSlack_Link(t *testing.T) {
	got := FormatForSlack("See [the docs](https://example.com/x) for more")
	if got != "See <https://example.com/x|the docs> for more" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatForSlack_CodeBlockUntouched(t *testing.T) {
	code := "```\nresult = a * b * c\n**not bold** here\n# not a heading\n```"
	got := FormatForSlack("Before\n" + code + "\nAfter **bold**")

	if !strings.Contains(got, code) {
		t.Fatalf("code block interior changed: %q", got)
	}
	if !strings.Contains(got, "After *bold*") {
		t.Fatalf("text outside code block not converted: %q", got)
	}
}

func TestFormatForSlack_InlineCodeUntouched(t *testing.T) {
	got := FormatForSlack("Use `*args` and **bold**")
	if !strings.Contains(got, "`*args`") {
		t.Fatalf("inline code changed: %q", got)
	}
	if !strings.Contains(got, "*bold*") {
		t.Fatalf("bold not converted: %q", got)
	}
}

func TestFormatForSlack_IdempotentOnPlainText(t *testing.T) {
	plain := "Nothing fancy here.\nJust plain prose with numbers 1. and dots."
	if got := FormatForSlack(plain); got != plain {
		t.Fatalf("plain text mutated: %q", got)
	}
}

func TestFormatForSlack_MixedDocument(t *testing.T) {
	in := "# Title\n\nSome **bold** and *italic* and [link](https://e.co).\n\n```\nkeep *this* alone\n```"
	got := FormatForSlack(in)

	for _, want := range []string{"*Title*", "*bold*", "_italic_", "<https://e.co|link>", "keep *this* alone"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}
