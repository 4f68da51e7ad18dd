// Package workspace implements component G: the lazily-populated symbol
// index over project sources, shard dependencies under lib/, and the
// Crystal standard library. Grounded on TimAnthonyAlexander-loom's
// internal/symbols/service.go (hash-gated per-file re-index, debounce via a
// last-scan timestamp, flat in-memory symbol map) generalized to the
// line-based regex extraction and namespace-qualification rules of
// SPEC_FULL.md §3/§4.G.
package workspace

// Kind enumerates the symbol classifications named in spec.md §3.
type Kind string

const (
	KindClass            Kind = "class"
	KindModule           Kind = "module"
	KindStruct           Kind = "struct"
	KindEnum             Kind = "enum"
	KindEnumMember       Kind = "enum_member"
	KindLib              Kind = "lib"
	KindFun              Kind = "fun"
	KindMethod           Kind = "method"
	KindProperty         Kind = "property"
	KindGetter           Kind = "getter"
	KindSetter           Kind = "setter"
	KindInstanceVariable Kind = "instance_variable"
	KindVariable         Kind = "variable"
	KindConstant         Kind = "constant"
	KindAlias            Kind = "alias"
)

// SymbolInfo is one indexed declaration, keyed into the caches by File.
type SymbolInfo struct {
	Name          string
	Type          string
	Kind          Kind
	File          string
	Line          int // 0-based
	Signature     string
	Documentation string
}

// IsNamespaceKind reports whether kind pushes onto the namespace stack during
// scanning (spec.md §3 glossary: "currently-open class/module/lib declarations").
func IsNamespaceKind(k Kind) bool {
	return k == KindClass || k == KindModule || k == KindLib
}
