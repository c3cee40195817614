// Package logging builds the zap logger every samplesite command logs through.
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger writing to w at level and above.
// It replaces zap's globals and redirects the standard library's log package into it,
// so enve's "falling back to default" notes show up in the same stream. Call the returned func to undo both.
func New(w io.Writer, level zapcore.Level) (*zap.Logger, func()) {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	logger := zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		zapcore.Lock(zapcore.AddSync(w)),
		level,
	))
	undoGlobals := zap.ReplaceGlobals(logger)
	undoStdLog := zap.RedirectStdLog(logger)
	return logger, func() {
		_ = logger.Sync()
		undoStdLog()
		undoGlobals()
	}
}
