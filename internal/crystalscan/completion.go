package crystalscan

import (
	"github.com/navid-m/liger/internal/protocol"
	"github.com/navid-m/liger/internal/workspace"
)

// Keywords is the fixed Crystal keyword list offered in non-receiver,
// non-namespace completion contexts (spec.md §4.E).
var Keywords = []string{
	"abstract", "alias", "as", "as?", "asm", "begin", "break", "case", "class",
	"def", "do", "else", "elsif", "end", "ensure", "enum", "extend", "false",
	"for", "fun", "if", "in", "include", "instance_sizeof", "is_a?", "lib",
	"macro", "module", "next", "nil", "nil?", "of", "out", "pointerof",
	"private", "protected", "require", "rescue", "responds_to?", "return",
	"select", "self", "sizeof", "struct", "super", "then", "true", "type",
	"typeof", "uninitialized", "union", "unless", "until", "when", "while",
	"with", "yield",
}

// BuiltinTypes is the fixed built-in type name list (spec.md §4.E, §4.F
// completion's `::`-prefix branch).
var BuiltinTypes = []string{
	"Nil", "Bool", "Char", "String", "Symbol", "Int8", "Int16", "Int32",
	"Int64", "Int128", "UInt8", "UInt16", "UInt32", "UInt64", "UInt128",
	"Float32", "Float64", "Array", "Hash", "Set", "Tuple", "NamedTuple",
	"Range", "Regex", "Proc", "Object", "Reference", "Struct", "Value",
	"Exception", "Time", "File", "IO", "Slice", "StaticArray",
}

// CommonMethods is the always-appended method set for receiver-style
// completion (spec.md §4.F completion, branch (b)).
var CommonMethods = []string{"to_s", "inspect", "class", "==", "!=", "hash", "dup", "clone", "nil?", "is_a?", "responds_to?"}

// Completions produces the file-local completion seed list: if
// charBeforeCursor is "." it returns CommonMethods, otherwise keywords,
// builtin types, and the names of classes/modules/methods extracted from
// the current file.
func Completions(file, text string, charBeforeCursor byte) []protocol.CompletionItem {
	if charBeforeCursor == '.' {
		return toItems(CommonMethods, protocol.CompletionKindMethod)
	}

	items := toItems(Keywords, protocol.CompletionKindKeyword)
	items = append(items, toItems(BuiltinTypes, protocol.CompletionKindClass)...)

	ex := workspace.Extract(file, text)
	seen := map[string]bool{}
	for _, s := range ex.Flat {
		if seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		switch s.Kind {
		case workspace.KindClass, workspace.KindModule, workspace.KindStruct, workspace.KindEnum:
			items = append(items, protocol.CompletionItem{Label: s.Name, Kind: protocol.CompletionKindClass, Detail: string(s.Kind)})
		case workspace.KindMethod, workspace.KindFun:
			items = append(items, protocol.CompletionItem{Label: s.Name, Kind: protocol.CompletionKindMethod, Detail: s.Signature})
		}
	}
	return dedupByLabel(items)
}

func toItems(names []string, kind protocol.CompletionItemKind) []protocol.CompletionItem {
	out := make([]protocol.CompletionItem, 0, len(names))
	for _, n := range names {
		out = append(out, protocol.CompletionItem{Label: n, Kind: kind})
	}
	return out
}

// dedupByLabel keeps the first occurrence of each label (spec.md §4.F:
// "Dedup by label before returning").
func dedupByLabel(items []protocol.CompletionItem) []protocol.CompletionItem {
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
