package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxPathLength bounds URL paths in logs
	MaxPathLength = 500
	// MaxUserIDLength bounds user ids in logs
	MaxUserIDLength = 128
	// MaxErrorMessageLength bounds error messages in logs
	MaxErrorMessageLength = 1000
	// MaxQueryLength bounds search terms in logs
	MaxQueryLength = 200
	// MaxGeneralStringLength is the fallback bound
	MaxGeneralStringLength = 2000
)

// SanitizeString strips non-printable runes, repairs UTF-8 and truncates to maxLength
func SanitizeString(s string, maxLength int) string {
	if s == "" {
		return ""
	}
	if maxLength <= 0 {
		maxLength = MaxGeneralStringLength
	}
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsPrint(r) || r == ' ' || r == '\t' {
			b.WriteRune(r)
		}
	}
	s = b.String()
	if len(s) > maxLength {
		s = truncateRunes(s, maxLength) + "..."
	}
	return s
}

// truncateRunes cuts s to at most n bytes without splitting a rune
func truncateRunes(s string, n int) string {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// SanitizePath sanitizes a request path
func SanitizePath(path string) string {
	return SanitizeString(path, MaxPathLength)
}

// SanitizeQuery sanitizes a user-supplied search term
func SanitizeQuery(q string) string {
	return SanitizeString(q, MaxQueryLength)
}

// SanitizeError sanitizes an error message
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error(), MaxErrorMessageLength)
}

// SanitizeUserID sanitizes a user id
func SanitizeUserID(userID string) string {
	return SanitizeString(userID, MaxUserIDLength)
}

// SanitizeEmail keeps the first character of the local part and the domain: a***@example.com
func SanitizeEmail(email string) string {
	email = SanitizeString(email, MaxUserIDLength)
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return "***"
	}
	first, _ := utf8.DecodeRuneInString(local)
	return string(first) + "***@" + domain
}
