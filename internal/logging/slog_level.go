package logging

import (
	"io"
	"log/slog"

	"go.uber.org/zap/zapcore"
)

func newSlog(w io.Writer, lvl zapcore.Level) *slog.Logger {
	var sl slog.Level
	switch lvl {
	case zapcore.DebugLevel:
		sl = slog.LevelDebug
	case zapcore.WarnLevel:
		sl = slog.LevelWarn
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		sl = slog.LevelError
	default:
		sl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: sl}))
}
