package jsonutil

import (
	"strings"
	"testing"
)

func TestMarshalNoEscapeKeepsArrows(t *testing.T) {
	out, err := MarshalNoEscape(map[string]string{"mermaid": "a --> b"})
	if err != nil {
		t.Fatalf("MarshalNoEscape: %v", err)
	}
	if strings.Contains(string(out), `>`) {
		t.Fatalf("output still HTML-escaped: %s", out)
	}
	if !strings.Contains(string(out), "a --> b") {
		t.Fatalf("arrow mangled: %s", out)
	}
	if strings.HasSuffix(string(out), "\n") {
		t.Fatalf("trailing newline not trimmed")
	}
}

func TestMarshalNoEscapeIndent(t *testing.T) {
	out, err := MarshalNoEscapeIndent(map[string]int{"n": 1}, "", "  ")
	if err != nil {
		t.Fatalf("MarshalNoEscapeIndent: %v", err)
	}
	if !strings.Contains(string(out), "\n  \"n\": 1") {
		t.Fatalf("not indented: %s", out)
	}
}
