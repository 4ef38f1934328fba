package logutil

import (
	"log/slog"
	"strings"
	"unicode/utf8"
)

// Redacted replaces sensitive values in log output.
const Redacted = "[REDACTED]"

// IsSensitiveLogField returns true when a key likely contains sensitive data.
func IsSensitiveLogField(key string) bool {
	normalized := strings.ToLower(strings.TrimSpace(key))
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ReplaceAll(normalized, "_", "")

	switch {
	case strings.Contains(normalized, "password"):
		return true
	case strings.Contains(normalized, "passwd"):
		return true
	case strings.Contains(normalized, "digest"):
		return true
	case strings.Contains(normalized, "token"):
		return true
	case strings.Contains(normalized, "secret"):
		return true
	default:
		return false
	}
}

// RedactAttr is a slog ReplaceAttr hook that masks sensitive attribute values.
func RedactAttr(_ []string, attr slog.Attr) slog.Attr {
	if attr.Value.Kind() == slog.KindGroup {
		return attr
	}
	if IsSensitiveLogField(attr.Key) {
		return slog.String(attr.Key, Redacted)
	}
	return attr
}

// RedactArgs masks the argument positions that carry secrets for a shell command,
// e.g. the password in "login alice hunter2".
func RedactArgs(command string, args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	switch strings.ToLower(command) {
	case "adduser", "login":
		if len(out) >= 2 {
			out[1] = Redacted
		}
	}
	return out
}

// TruncateForLog returns a single-line truncated preview for unstructured values.
func TruncateForLog(value string, maxChars int) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	normalized := strings.ReplaceAll(trimmed, "\n", "\\n")
	if maxChars <= 0 || len(normalized) <= maxChars {
		return normalized
	}
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(normalized[cut]) {
		cut--
	}
	return normalized[:cut] + "... [truncated]"
}
