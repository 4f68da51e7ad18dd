// Package analyzer implements component F: the semantic analyzer that
// orchestrates goto-definition, hover, completion, rename, prepare-rename,
// and find-references by layered fallback across the current file, the
// workspace index, and (last resort) the compiler oracle.
package analyzer

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/navid-m/liger/internal/config"
	"github.com/navid-m/liger/internal/document"
	"github.com/navid-m/liger/internal/oracle"
	"github.com/navid-m/liger/internal/position"
	"github.com/navid-m/liger/internal/protocol"
	"github.com/navid-m/liger/internal/workspace"
)

// Analyzer is the central orchestrator. All operations accept (uri, position)
// and consult the document store first, per spec.md §4.F.
type Analyzer struct {
	docs  *document.Store
	index *workspace.Index
	oraq  oracle.Oracle
	cfg   config.ServerConfig
	log   *zap.Logger
	root  string
}

// New constructs an Analyzer wired to the given document store, workspace
// index, compiler oracle, and ambient configuration.
func New(root string, docs *document.Store, index *workspace.Index, oraq oracle.Oracle, cfg config.ServerConfig, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{docs: docs, index: index, oraq: oraq, cfg: cfg, log: log, root: root}
}

var requireRe = regexp.MustCompile(`^(\s*)require\s+"([^"]*)"`)

// requireAtCursor reports whether the line at pos is a require statement and
// the cursor sits within the quoted path, returning the require path.
func requireAtCursor(line string, character int) (string, bool) {
	m := requireRe.FindStringSubmatchIndex(line)
	if m == nil {
		return "", false
	}
	// submatch 2 is the quoted path group; indices m[4], m[5].
	start, end := m[4], m[5]
	if character < start || character > end {
		return "", false
	}
	return line[start:end], true
}

func lineAt(text string, line int) string {
	lines := strings.Split(text, "\n")
	return position.LineAt(lines, line)
}

func currentFileSymbols(file, text string) []workspace.SymbolInfo {
	return workspace.Extract(file, text).Flat
}
