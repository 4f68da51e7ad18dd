package analyzer

import (
	"context"
	"regexp"
	"strings"

	"github.com/navid-m/liger/internal/crystalscan"
	"github.com/navid-m/liger/internal/oracle"
	"github.com/navid-m/liger/internal/protocol"
)

var receiverCompletionRe = regexp.MustCompile(`(\w+|@\w+)\.(\w*)$`)

// Completion resolves textDocument/completion per spec.md §4.F's
// prefix-dispatch rules, deduping by label before returning.
func (a *Analyzer) Completion(uri string, pos protocol.Position) protocol.CompletionList {
	doc := a.docs.Get(uri)
	if doc == nil {
		return protocol.CompletionList{}
	}
	path, err := oracle.URIToPath(uri)
	if err != nil {
		path = uri
	}
	line := lineAt(doc.Text, pos.Line)
	prefix := line
	if pos.Character <= len([]rune(line)) {
		prefix = string([]rune(line)[:pos.Character])
	}

	var items []protocol.CompletionItem

	switch {
	case receiverCompletionRe.MatchString(prefix):
		m := receiverCompletionRe.FindStringSubmatch(prefix)
		recv, partial := strings.TrimPrefix(m[1], "@"), m[2]
		recvType := a.inferReceiverType(path, doc.Text, pos.Line, recv)
		var methods []string
		if a.index != nil {
			methods = a.index.GetCompletionsForReceiver(recvType)
		}
		for _, name := range methods {
			if strings.HasPrefix(name, partial) {
				items = append(items, protocol.CompletionItem{Label: name, Kind: protocol.CompletionKindMethod})
			}
		}
		for _, name := range crystalscan.CommonMethods {
			if strings.HasPrefix(name, partial) {
				items = append(items, protocol.CompletionItem{Label: name, Kind: protocol.CompletionKindMethod})
			}
		}
		if a.cfg.OracleEnabled && a.oraq != nil && a.oraq.Available() {
			if err := syncForOracle(a.oraq, path, doc.Text); err == nil {
				if ctxText := a.oraq.Context(context.Background(), path, pos.Line, pos.Character, a.mainFileHint()); ctxText != "" {
					items = append(items, protocol.CompletionItem{Label: partial, Detail: ctxText, Kind: protocol.CompletionKindText})
				}
			}
		}

	case strings.Contains(prefix, "::"):
		for _, t := range crystalscan.BuiltinTypes {
			items = append(items, protocol.CompletionItem{Label: t, Kind: protocol.CompletionKindClass})
		}

	default:
		var before byte
		if pos.Character > 0 && pos.Character <= len(line) {
			before = line[pos.Character-1]
		}
		items = crystalscan.Completions(path, doc.Text, before)
		if a.index != nil {
			for _, s := range a.index.AllSymbols() {
				items = append(items, protocol.CompletionItem{Label: s.Name, Kind: protocol.CompletionKindVariable})
			}
		}
	}

	return protocol.CompletionList{IsIncomplete: false, Items: dedupItems(items)}
}

func dedupItems(items []protocol.CompletionItem) []protocol.CompletionItem {
	seen := map[string]bool{}
	out := make([]protocol.CompletionItem, 0, len(items))
	for _, it := range items {
		if seen[it.Label] {
			continue
		}
		seen[it.Label] = true
		out = append(out, it)
	}
	return out
}
