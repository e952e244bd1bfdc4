// Package logging builds the zap loggers shared by the reasoning kernel and
// the distributed cluster. It mirrors the bootstrap idiom in codeNERD's
// cmd/nerd/main.go: a production config by default, switched to debug level
// under a verbose flag.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a *zap.Logger named for the given component. verbose lowers
// the level to Debug; otherwise Info and above are logged.
func New(component string, verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		// Fall back to a no-op logger rather than fail the caller; logging
		// is never load-bearing for correctness.
		logger = zap.NewNop()
	}
	return logger.Named(component)
}

// Nop returns a logger that discards everything, used as the default when a
// caller does not configure one explicitly.
func Nop() *zap.Logger {
	return zap.NewNop()
}
