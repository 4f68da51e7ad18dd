package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/navid-m/liger/internal/oracle"
	"github.com/navid-m/liger/internal/position"
	"github.com/navid-m/liger/internal/protocol"
	"github.com/navid-m/liger/internal/workspace"
)

// Hover resolves textDocument/hover by the seven-step layered fallback of
// spec.md §4.F.
func (a *Analyzer) Hover(uri string, pos protocol.Position) *protocol.Hover {
	doc := a.docs.Get(uri)
	if doc == nil {
		return nil
	}
	path, err := oracle.URIToPath(uri)
	if err != nil {
		path = uri
	}
	line := lineAt(doc.Text, pos.Line)

	// 1. require-hover
	if reqPath, ok := requireAtCursor(line, pos.Character); ok {
		return markupHover(a.requireHoverText(reqPath, path))
	}

	word := position.WordAt(line, pos.Character)
	if !word.Found {
		return nil
	}

	// 2. fun-hover
	for _, s := range currentFileSymbols(path, doc.Text) {
		if s.Kind == workspace.KindFun && s.Line == pos.Line {
			if s.Name == word.Text {
				return markupHover(funHoverText(s, line))
			}
		}
	}

	// 3. current-file signature lookup
	for _, s := range currentFileSymbols(path, doc.Text) {
		if s.Name == word.Text && isHoverableKind(s.Kind) {
			return markupHover(signatureHoverText(s))
		}
	}

	// 4. workspace index lookup
	if a.index != nil {
		if found := a.index.FindSymbolInfo(word.Text); len(found) > 0 {
			return markupHover(a.indexHoverText(found[0]))
		}
	}

	// 5. workspace-inferred type annotation
	if a.index != nil {
		if typ, ok := a.index.GetTypeAtPosition(word.Text); ok {
			return markupHover(fmt.Sprintf("```crystal\n%s : %s\n```", word.Text, typ))
		}
	}

	// 7. optional compiler oracle Context (tried before returning the
	// generic fallback, since it's strictly more informative than "Type
	// information not available" when it succeeds)
	if a.cfg.OracleEnabled && a.oraq != nil && a.oraq.Available() {
		if err := syncForOracle(a.oraq, path, doc.Text); err == nil {
			ctxText := a.oraq.Context(context.Background(), path, pos.Line, pos.Character, a.mainFileHint())
			if ctxText != "" {
				return markupHover("```\n" + ctxText + "\n```")
			}
		}
	}

	// 6. fallback
	return markupHover(fmt.Sprintf("**%s**\n\nType information not available", word.Text))
}

func markupHover(value string) *protocol.Hover {
	return &protocol.Hover{Contents: protocol.MarkupContent{Kind: "markdown", Value: value}}
}

func isHoverableKind(k workspace.Kind) bool {
	switch k {
	case workspace.KindMethod, workspace.KindClass, workspace.KindModule, workspace.KindEnum,
		workspace.KindStruct, workspace.KindProperty, workspace.KindGetter, workspace.KindSetter,
		workspace.KindConstant, workspace.KindAlias:
		return true
	}
	return false
}

func signatureHoverText(s workspace.SymbolInfo) string {
	var b strings.Builder
	b.WriteString("```crystal\n")
	if s.Signature != "" {
		b.WriteString(s.Signature)
	} else {
		b.WriteString(s.Name)
	}
	b.WriteString("\n```")
	if s.Documentation != "" {
		b.WriteString("\n\n")
		b.WriteString(s.Documentation)
	}
	return b.String()
}

func funHoverText(s workspace.SymbolInfo, rawLine string) string {
	return fmt.Sprintf("```crystal\n%s\n```\n\nC extern: `%s`", s.Signature, strings.TrimSpace(rawLine))
}

func (a *Analyzer) requireHoverText(reqPath, currentFile string) string {
	res := a.resolveRequire(reqPath, currentFile)
	var b strings.Builder
	fmt.Fprintf(&b, "**require \"%s\"**\n\n", reqPath)
	fmt.Fprintf(&b, "Classification: `%s`\n", res.Classification)
	if res.Path != "" {
		fmt.Fprintf(&b, "\nResolved: `%s`\n", res.Path)
	}
	if res.Shard != nil {
		if res.Shard.Version != nil {
			fmt.Fprintf(&b, "\nShard: `%s %s`\n", res.Shard.Name, res.Shard.Version.String())
		} else {
			fmt.Fprintf(&b, "\nShard: `%s`\n", res.Shard.Name)
		}
	}
	return b.String()
}

func (a *Analyzer) indexHoverText(s workspace.SymbolInfo) string {
	var b strings.Builder
	b.WriteString("```crystal\n")
	if s.Signature != "" {
		b.WriteString(s.Signature)
	} else {
		b.WriteString(s.Name)
	}
	b.WriteString("\n```")

	switch s.Kind {
	case workspace.KindClass:
		members := a.index.GetClassMembers(s.Name)
		appendMembers(&b, members)
	case workspace.KindStruct:
		members := a.index.GetStructMembers(s.Name)
		appendMembers(&b, members)
	case workspace.KindEnum:
		values := a.index.GetEnumValues(s.Name)
		if len(values) > 0 {
			b.WriteString("\n\nValues: ")
			names := make([]string, 0, len(values))
			for _, v := range values {
				names = append(names, v.Name)
			}
			b.WriteString(strings.Join(names, ", "))
		}
	}
	if s.Documentation != "" {
		b.WriteString("\n\n")
		b.WriteString(s.Documentation)
	}
	return b.String()
}

func appendMembers(b *strings.Builder, members []workspace.SymbolInfo) {
	if len(members) == 0 {
		return
	}
	b.WriteString("\n\nMembers:\n")
	for _, m := range members {
		fmt.Fprintf(b, "- %s\n", m.Name)
	}
}
