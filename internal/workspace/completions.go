package workspace

// curatedReceiverMethods is the fixed completion list for Crystal's
// commonly-used core types. GetCompletionsForReceiver always offers it first
// for a matching receiver type, whether or not the type's own declaration
// has been indexed. Grounded on spec.md §4.G's
// "curated per-type completion list" requirement.
var curatedReceiverMethods = map[string][]string{
	"String": {
		"size", "length", "empty?", "blank?", "chars", "bytes", "upcase", "downcase",
		"capitalize", "strip", "lstrip", "rstrip", "chomp", "reverse", "split", "each_char",
		"each_line", "includes?", "starts_with?", "ends_with?", "index", "sub", "gsub",
		"to_i", "to_i64", "to_f", "to_f64", "to_s", "to_sym", "+", "*", "[]", "[]?", "==",
	},
	"Array": {
		"size", "empty?", "first", "first?", "last", "last?", "push", "pop", "shift",
		"unshift", "each", "each_with_index", "map", "map!", "select", "reject", "reduce",
		"sum", "min", "max", "sort", "sort!", "sort_by", "reverse", "reverse!", "includes?",
		"index", "delete", "delete_at", "concat", "flatten", "compact", "uniq", "join",
		"to_a", "to_s", "[]", "[]?", "<<",
	},
	"Hash": {
		"size", "empty?", "keys", "values", "each", "each_key", "each_value", "map",
		"select", "reject", "has_key?", "has_value?", "fetch", "delete", "merge", "merge!",
		"to_a", "to_h", "to_s", "[]", "[]?", "[]=",
	},
	"Int32": {
		"to_s", "to_i", "to_i64", "to_f", "to_f64", "to_u32", "abs", "times", "upto",
		"downto", "zero?", "positive?", "negative?", "even?", "odd?", "gcd", "lcm",
		"+", "-", "*", "/", "%", "**", "<=>",
	},
	"Int64": {
		"to_s", "to_i", "to_i32", "to_f", "to_f64", "abs", "times", "zero?", "positive?",
		"negative?", "even?", "odd?", "+", "-", "*", "/", "%",
	},
	"Float32": {"to_s", "to_f", "to_f64", "to_i", "round", "floor", "ceil", "abs", "nan?", "infinite?"},
	"Float64": {"to_s", "to_f", "to_f32", "to_i", "round", "floor", "ceil", "abs", "nan?", "infinite?"},
	"Bool":    {"to_s", "!", "&", "|", "^"},
	"Range": {
		"each", "map", "select", "includes?", "size", "begin", "end", "min", "max",
		"to_a", "sum", "step",
	},
	"Regex": {"match", "match?", "source", "=~", "matches?"},
	"Symbol": {"to_s", "to_proc", "=="},
	"Char":   {"to_s", "to_i", "ord", "upcase", "downcase", "alpha?", "digit?", "whitespace?"},
	"Time": {
		"to_s", "year", "month", "day", "hour", "minute", "second", "to_unix",
		"to_unix_ms", "+", "-", "<=>", "format",
	},
	"File": {
		"read", "write", "exists?", "delete", "basename", "dirname", "extension",
		"size", "each_line", "open", "close",
	},
	"IO": {"read", "write", "puts", "print", "gets", "each_line", "flush", "close"},
}

// GetCompletionsForReceiver returns method-name completions for a known
// static receiver type: curated core-type methods first, then any methods
// the workspace/lib/stdlib index has actually discovered for that type.
func (idx *Index) GetCompletionsForReceiver(receiverType string) []string {
	seen := map[string]bool{}
	var out []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, m := range curatedReceiverMethods[receiverType] {
		add(m)
	}
	for _, s := range idx.membersOfNamespace(receiverType) {
		if s.Kind == KindMethod || s.Kind == KindProperty || s.Kind == KindGetter {
			add(s.Name)
		}
	}
	return out
}
