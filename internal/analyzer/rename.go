package analyzer

import (
	"github.com/navid-m/liger/internal/position"
	"github.com/navid-m/liger/internal/protocol"
)

// Rename resolves textDocument/rename: extract oldName at the cursor, find
// every whole-word occurrence across the document's lines, and return one
// TextEdit per occurrence (spec.md §4.F). Returns nil if there is no word at
// the cursor or no occurrences are found.
func (a *Analyzer) Rename(uri string, pos protocol.Position, newName string) *protocol.WorkspaceEdit {
	doc := a.docs.Get(uri)
	if doc == nil {
		return nil
	}
	line := lineAt(doc.Text, pos.Line)
	word := position.WordAt(line, pos.Character)
	if !word.Found {
		return nil
	}

	edits := wholeWordEdits(doc.Lines(), word.Text, newName)
	if len(edits) == 0 {
		return nil
	}
	return &protocol.WorkspaceEdit{Changes: map[string][]protocol.TextEdit{uri: edits}}
}

// PrepareRename returns the range of the word at the cursor, or nil if the
// cursor is not on a word.
func (a *Analyzer) PrepareRename(uri string, pos protocol.Position) *protocol.Range {
	doc := a.docs.Get(uri)
	if doc == nil {
		return nil
	}
	line := lineAt(doc.Text, pos.Line)
	word := position.WordAt(line, pos.Character)
	if !word.Found {
		return nil
	}
	r := protocol.Range{
		Start: protocol.Position{Line: pos.Line, Character: word.Start},
		End:   protocol.Position{Line: pos.Line, Character: word.End},
	}
	return &r
}

// wholeWordEdits finds every whole-word occurrence of oldName across lines
// (surrounding characters must be non-word characters) and returns one
// TextEdit per occurrence replacing it with newName.
func wholeWordEdits(lines []string, oldName, newName string) []protocol.TextEdit {
	var edits []protocol.TextEdit
	for lineNum, line := range lines {
		runes := []rune(line)
		target := []rune(oldName)
		for i := 0; i+len(target) <= len(runes); i++ {
			if !runesEqual(runes[i:i+len(target)], target) {
				continue
			}
			if i > 0 && isWordRuneLocal(runes[i-1]) {
				continue
			}
			end := i + len(target)
			if end < len(runes) && isWordRuneLocal(runes[end]) {
				continue
			}
			edits = append(edits, protocol.TextEdit{
				Range: protocol.Range{
					Start: protocol.Position{Line: lineNum, Character: i},
					End:   protocol.Position{Line: lineNum, Character: end},
				},
				NewText: newName,
			})
		}
	}
	return edits
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isWordRuneLocal(r rune) bool {
	return r == '_' || r == '?' || r == '!' || r == '@' ||
		(r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
