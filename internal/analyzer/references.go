package analyzer

import (
	"github.com/navid-m/liger/internal/position"
	"github.com/navid-m/liger/internal/protocol"
)

// FindReferences implements textDocument/references for real: a whole-word,
// whole-document search across every document currently held open in the
// store (never across unopened workspace files — that stays out of scope
// per spec.md §1/§4.F). This resolves the capability/behavior mismatch the
// original spec's redesign flag called out, rather than leaving
// find_references advertised but unimplemented.
func (a *Analyzer) FindReferences(uri string, pos protocol.Position, includeDeclaration bool) []protocol.Location {
	doc := a.docs.Get(uri)
	if doc == nil {
		return nil
	}
	line := lineAt(doc.Text, pos.Line)
	word := position.WordAt(line, pos.Character)
	if !word.Found {
		return nil
	}

	var out []protocol.Location
	for _, d := range a.docs.All() {
		edits := wholeWordEdits(d.Lines(), word.Text, word.Text)
		for _, e := range edits {
			isCursorOccurrence := d.URI == uri && e.Range.Start.Line == pos.Line &&
				e.Range.Start.Character == word.Start
			if isCursorOccurrence && !includeDeclaration {
				continue
			}
			out = append(out, protocol.Location{URI: d.URI, Range: e.Range})
		}
	}
	return out
}
