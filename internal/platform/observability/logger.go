// Package observability はロガーと Prometheus メトリクスを提供します。
package observability

import (
	"io"
	"log/slog"
	"strings"

	"github.com/ogurasousui/staff-directory/internal/platform/config"
)

// NewLogger は設定に従って slog.Logger を構築します。format が json なら JSON、それ以外はテキストです。
func NewLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
