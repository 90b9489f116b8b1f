package app

import (
	"context"
	"log/slog"
	"testing"
)

func TestLoggerHonorsLevel(t *testing.T) {
	ctx := context.Background()

	logger := NewLogger(&Config{LogLevel: "warn"})
	if logger.Enabled(ctx, slog.LevelInfo) {
		t.Fatal("info should be suppressed at warn level")
	}
	if !logger.Enabled(ctx, slog.LevelWarn) {
		t.Fatal("warn should be enabled at warn level")
	}

	logger = NewLogger(&Config{LogLevel: "nonsense"})
	if !logger.Enabled(ctx, slog.LevelInfo) {
		t.Fatal("unknown level should fall back to info")
	}
	if logger.Enabled(ctx, slog.LevelDebug) {
		t.Fatal("debug should be suppressed at the info fallback")
	}
}
