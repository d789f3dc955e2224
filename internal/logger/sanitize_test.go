package logger

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizeString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"empty", "", 10, ""},
		{"control chars", "a\nb\x00c\rd", 10, "abcd"},
		{"truncate", "abcdef", 3, "abc..."},
		{"invalid utf8", "a\xffb", 10, "ab"},
		{"rune boundary", "héllo", 2, "h..."},
		{"default max", strings.Repeat("x", 10), 0, strings.Repeat("x", 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeString(tt.in, tt.max); got != tt.want {
				t.Errorf("SanitizeString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestSanitizeEmail(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, want string
	}{
		{"ada@example.com", "a***@example.com"},
		{"not-an-email", "***"},
		{"@example.com", "***"},
		{"", "***"},
	}
	for _, tt := range tests {
		if got := SanitizeEmail(tt.in); got != tt.want {
			t.Errorf("SanitizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()
	if got := SanitizeError(nil); got != "" {
		t.Errorf("SanitizeError(nil) = %q", got)
	}
	if got := SanitizeError(errors.New("bad\ninput")); got != "badinput" {
		t.Errorf("SanitizeError() = %q, want badinput", got)
	}
}
