package logging

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/thoreinstein/claudeguard/internal/redact"
)

// redactValue renders v as text with secrets masked. Non-string values
// under a secret-looking key are masked too.
func redactValue(key string, v slog.Value) string {
	if v.Kind() == slog.KindString {
		return redact.Field(key, v.String())
	}
	s := fmt.Sprint(v.Any())
	if redact.ShouldMask(key) {
		return redact.MaskValue(s)
	}
	return s
}

// RedactAttr is a slog ReplaceAttr hook that masks secrets. It lets the
// stock JSON handler apply the same rules as the text handler.
func RedactAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		if masked := redact.Field(a.Key, a.Value.String()); masked != a.Value.String() {
			return slog.String(a.Key, masked)
		}
	case slog.KindGroup, slog.KindTime, slog.KindLogValuer:
	default:
		if redact.ShouldMask(a.Key) {
			return slog.String(a.Key, redact.MaskValue(a.Value.String()))
		}
	}
	return a
}

// NewJSONHandler returns a slog JSON handler that masks secrets.
func NewJSONHandler(out io.Writer, level slog.Leveler) slog.Handler {
	return slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: RedactAttr,
	})
}
