package oracle

import (
	"context"
	"time"

	"github.com/navid-m/liger/internal/config"
)

// Location is a file:line:col tuple, the shape the compiler oracle's stdout
// is parsed into (spec.md §4.H).
type Location struct {
	File   string
	Line   int // 0-based
	Column int // 0-based
}

// Oracle is the pluggable interface to the external `crystal` compiler tool.
// Any failure — missing binary, non-zero exit, junk output, timeout —
// degrades to a zero-value "no answer" result; it never returns an error the
// caller must propagate as a request failure (spec.md §7).
type Oracle interface {
	// Implementations runs `crystal tool implementations` for the given
	// cursor position in file, optionally anchored to a main program file.
	Implementations(ctx context.Context, file string, line, col int, mainFile string) []Location

	// Context runs `crystal tool context` for the given cursor position and
	// returns the raw type-info text, or "" on any failure.
	Context(ctx context.Context, file string, line, col int, mainFile string) string

	// CrystalPathRoots discovers candidate stdlib roots from the compiler's
	// own `CRYSTAL_PATH` environment. The entries are not filtered here; the
	// workspace index keeps only roots that look like a stdlib source tree.
	CrystalPathRoots() ([]string, error)

	// Available reports whether the oracle binary was resolved on PATH.
	Available() bool
}

// withOracleTimeout wraps parent in a cfg.OracleTimeoutSeconds deadline when
// that setting is positive. Spec.md §4.H says "no explicit timeout by
// default": the default setting is zero, and with zero (or a negative value)
// parent is returned unchanged with a no-op cancel.
func withOracleTimeout(parent context.Context, cfg config.ServerConfig) (context.Context, context.CancelFunc) {
	if cfg.OracleTimeoutSeconds <= 0 {
		return parent, func() {}
	}
	return context.WithTimeout(parent, time.Duration(cfg.OracleTimeoutSeconds)*time.Second)
}
