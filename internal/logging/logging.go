// Package logging builds the server's zap logger. stdout is reserved for the
// framed LSP wire protocol, so every configuration writes to stderr only.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-style zap logger writing JSON lines to stderr.
// When debug is true, a more verbose development encoder is used instead.
func New(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

// Nop returns a logger that discards everything, used by tests and contexts
// where no caller-supplied logger was wired in.
func Nop() *zap.Logger {
	return zap.NewNop()
}
