package analyzer

import (
	"strings"

	"github.com/navid-m/liger/internal/crystalscan"
	"github.com/navid-m/liger/internal/oracle"
	"github.com/navid-m/liger/internal/protocol"
)

// WorkspaceSymbol resolves workspace/symbol: a case-insensitive substring
// match over the full workspace index (project + lib/ + stdlib), per
// spec.md §6's advertised workspaceSymbolProvider capability.
func (a *Analyzer) WorkspaceSymbol(query string) []protocol.SymbolInformation {
	if a.index == nil {
		return nil
	}
	q := strings.ToLower(query)
	var out []protocol.SymbolInformation
	for _, s := range a.index.AllSymbols() {
		if q != "" && !strings.Contains(strings.ToLower(s.Name), q) {
			continue
		}
		out = append(out, protocol.SymbolInformation{
			Name: s.Name,
			Kind: crystalscan.LSPKind(s.Kind),
			Location: protocol.Location{
				URI:   oracle.PathToURI(s.File),
				Range: lineRange(s.Line),
			},
		})
	}
	return out
}
