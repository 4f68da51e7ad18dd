package crystalscan

import (
	"github.com/navid-m/liger/internal/protocol"
	"github.com/navid-m/liger/internal/workspace"
)

var kindToLSP = map[workspace.Kind]protocol.SymbolKind{
	workspace.KindClass:            protocol.SymbolKindClass,
	workspace.KindModule:           protocol.SymbolKindModule,
	workspace.KindStruct:           protocol.SymbolKindStruct,
	workspace.KindEnum:             protocol.SymbolKindEnum,
	workspace.KindEnumMember:       protocol.SymbolKindEnumMember,
	workspace.KindLib:              protocol.SymbolKindModule,
	workspace.KindFun:              protocol.SymbolKindFunction,
	workspace.KindMethod:           protocol.SymbolKindMethod,
	workspace.KindProperty:         protocol.SymbolKindProperty,
	workspace.KindGetter:           protocol.SymbolKindProperty,
	workspace.KindSetter:           protocol.SymbolKindProperty,
	workspace.KindInstanceVariable: protocol.SymbolKindField,
	workspace.KindVariable:         protocol.SymbolKindVariable,
	workspace.KindConstant:         protocol.SymbolKindConstant,
	workspace.KindAlias:            protocol.SymbolKindTypeParameter,
}

// DocumentSymbols projects the current-file-only symbol extraction tree
// (shared with the workspace indexer, §4.G) into the LSP DocumentSymbol
// nesting shape (spec.md §4.E).
func DocumentSymbols(file, text string) []protocol.DocumentSymbol {
	ex := workspace.Extract(file, text)
	out := make([]protocol.DocumentSymbol, 0, len(ex.Tree))
	for _, n := range ex.Tree {
		out = append(out, nodeToDocumentSymbol(n))
	}
	return out
}

func nodeToDocumentSymbol(n *workspace.Node) protocol.DocumentSymbol {
	endLine := n.EndLine
	if endLine < n.Line {
		endLine = n.Line
	}
	nameEnd := n.NameStart + len(n.Name)
	if n.NameStart < 0 {
		n.NameStart = 0
		nameEnd = len(n.Name)
	}
	sym := protocol.DocumentSymbol{
		Name:   n.Name,
		Detail: n.Type,
		Kind:   lspKind(n.Kind),
		Range: protocol.Range{
			Start: protocol.Position{Line: n.Line, Character: 0},
			End:   protocol.Position{Line: endLine, Character: 0},
		},
		SelectionRange: protocol.Range{
			Start: protocol.Position{Line: n.Line, Character: n.NameStart},
			End:   protocol.Position{Line: n.Line, Character: nameEnd},
		},
	}
	for _, c := range n.Children {
		sym.Children = append(sym.Children, nodeToDocumentSymbol(c))
	}
	return sym
}

func lspKind(k workspace.Kind) protocol.SymbolKind {
	if v, ok := kindToLSP[k]; ok {
		return v
	}
	return protocol.SymbolKindVariable
}

// LSPKind exposes the Kind -> SymbolKind mapping for workspace/symbol results,
// which are built from workspace.SymbolInfo rather than a document tree.
func LSPKind(k workspace.Kind) protocol.SymbolKind {
	return lspKind(k)
}
