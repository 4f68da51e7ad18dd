package analyzer

import (
	"context"
	"regexp"
	"strings"

	"github.com/navid-m/liger/internal/oracle"
	"github.com/navid-m/liger/internal/position"
	"github.com/navid-m/liger/internal/protocol"
	"github.com/navid-m/liger/internal/workspace"
)

// GotoDefinition resolves textDocument/definition by the seven-step layered
// fallback of spec.md §4.F. Returns nil if every step misses.
func (a *Analyzer) GotoDefinition(uri string, pos protocol.Position) []protocol.Location {
	doc := a.docs.Get(uri)
	if doc == nil {
		return nil
	}
	path, err := oracle.URIToPath(uri)
	if err != nil {
		path = uri
	}
	line := lineAt(doc.Text, pos.Line)

	// 1. require path
	if reqPath, ok := requireAtCursor(line, pos.Character); ok {
		res := a.resolveRequire(reqPath, path)
		if res.Path != "" {
			return []protocol.Location{{URI: oracle.PathToURI(res.Path), Range: zeroRange()}}
		}
	}

	word := position.WordAt(line, pos.Character)
	if !word.Found {
		return nil
	}

	// 2. fun extern self-reference
	for _, s := range currentFileSymbols(path, doc.Text) {
		if s.Kind == workspace.KindFun && s.Line == pos.Line && s.Name == word.Text {
			return []protocol.Location{{URI: uri, Range: lineRange(pos.Line)}}
		}
	}

	// 3. current-file declaration scan
	for _, s := range currentFileSymbols(path, doc.Text) {
		if s.Name == word.Text {
			return []protocol.Location{{URI: uri, Range: lineRange(s.Line)}}
		}
	}

	// 4. workspace index exact / qualified-name match
	if a.index != nil {
		if found := a.index.FindSymbolInfo(word.Text); len(found) > 0 {
			return symbolsToLocations(found)
		}
	}

	// 5. @ivar property lookup
	if strings.HasPrefix(word.Text, "@") && a.index != nil {
		if found := a.index.FindPropertyDefinition(word.Text); len(found) > 0 {
			return symbolsToLocations(found)
		}
	}

	// 6. receiver.method call
	if recv, method, ok := splitReceiverMethod(line, word); ok && a.index != nil {
		recvType := a.inferReceiverType(path, doc.Text, pos.Line, recv)
		if sym, ok := a.index.FindMethodDefinition(recvType, method); ok {
			return []protocol.Location{{URI: oracle.PathToURI(sym.File), Range: lineRange(sym.Line)}}
		}
	}

	// 7. compiler oracle last resort
	if a.oraq != nil && a.oraq.Available() {
		if err := syncForOracle(a.oraq, path, doc.Text); err == nil {
			mainFile := a.mainFileHint()
			locs := a.oraq.Implementations(context.Background(), path, pos.Line, pos.Character, mainFile)
			if len(locs) > 0 {
				out := make([]protocol.Location, 0, len(locs))
				for _, l := range locs {
					out = append(out, protocol.Location{
						URI:   oracle.PathToURI(l.File),
						Range: lineColRange(l.Line, l.Column),
					})
				}
				return out
			}
		}
	}

	return nil
}

func zeroRange() protocol.Range {
	return protocol.Range{Start: protocol.Position{Line: 0, Character: 0}, End: protocol.Position{Line: 0, Character: 0}}
}

func lineRange(line int) protocol.Range {
	return protocol.Range{Start: protocol.Position{Line: line, Character: 0}, End: protocol.Position{Line: line, Character: 0}}
}

func lineColRange(line, col int) protocol.Range {
	return protocol.Range{Start: protocol.Position{Line: line, Character: col}, End: protocol.Position{Line: line, Character: col}}
}

func symbolsToLocations(syms []workspace.SymbolInfo) []protocol.Location {
	out := make([]protocol.Location, 0, len(syms))
	for _, s := range syms {
		out = append(out, protocol.Location{URI: oracle.PathToURI(s.File), Range: lineRange(s.Line)})
	}
	return out
}

// splitReceiverMethod reports whether the word under the cursor is the
// method half of a `receiver.method` call on the given line.
func splitReceiverMethod(line string, word position.Word) (receiver, method string, ok bool) {
	if word.Start == 0 || line[word.Start-1] != '.' {
		return "", "", false
	}
	recvEnd := word.Start - 1
	recvStart := recvEnd
	for recvStart > 0 && isIdentByte(line[recvStart-1]) {
		recvStart--
	}
	if recvStart == recvEnd {
		return "", "", false
	}
	return line[recvStart:recvEnd], word.Text, true
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '@' || b == '?' || b == '!'
}

var assignRe = regexp.MustCompile(`^\s*(@?\w+)\s*=\s*(.+)$`)

// inferReceiverType walks the current file backward from line for a
// `<recv> = <expr>` assignment or `@<recv> : <Type>` declaration, per
// spec.md §4.F step 6 ("variable-assignment walk-back or instance-variable
// declaration"). Indexed (constant/property/ivar) symbols are tried first;
// local lowercase variable assignments, which the symbol extractor does not
// track, are resolved directly from the raw source text.
func (a *Analyzer) inferReceiverType(file, text string, fromLine int, recv string) string {
	for _, s := range currentFileSymbols(file, text) {
		if s.Line > fromLine {
			continue
		}
		if (s.Name == recv || s.Name == "@"+recv) && s.Type != "" {
			return s.Type
		}
	}

	lines := strings.Split(text, "\n")
	for i := fromLine; i >= 0; i-- {
		if i >= len(lines) {
			continue
		}
		m := assignRe.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		name := strings.TrimPrefix(m[1], "@")
		if name == recv {
			return workspace.InferExprType(m[2])
		}
	}
	return ""
}

func syncForOracle(o oracle.Oracle, path, text string) error {
	if po, ok := o.(*oracle.ProcessOracle); ok {
		return po.SyncDocument(path, text)
	}
	return nil
}

// mainFileHint always returns "": no main file is passed to the oracle, so
// ProcessOracle uses the current file as the compilation entry point. The
// shard.yml-based main-file discovery in the oracle package is not used here.
func (a *Analyzer) mainFileHint() string {
	return ""
}
