package workspace

import (
	"regexp"
	"strconv"
	"strings"
)

// Compiled patterns. Extract handles an `end` line first (it only pops), then
// tries the rest in a fixed order: class, module, struct, enum, lib, fun,
// def, property, ivar, alias, constant (resolves spec.md §9's open question
// about overlapping "symbol at start of line" branches: the first match wins
// and there is no bare "any identifier = value" catch-all).
var (
	classRe  = regexp.MustCompile(`^(\s*)(?:abstract\s+)?class\s+([A-Z]\w*(?:::\w+)*)(?:\s*<\s*([A-Z][\w:]*))?`)
	moduleRe = regexp.MustCompile(`^(\s*)module\s+([A-Z]\w*(?:::\w+)*)`)
	structRe = regexp.MustCompile(`^(\s*)(?:abstract\s+)?struct\s+([A-Z]\w*(?:::\w+)*)`)
	enumRe   = regexp.MustCompile(`^(\s*)enum\s+([A-Z]\w*)`)
	libRe    = regexp.MustCompile(`^(\s*)lib\s+([A-Z]\w*)`)
	funRe    = regexp.MustCompile(`^(\s*)fun\s+(\w+)(?:\s*=\s*(\w+))?(?:\s*\(([^)]*)\))?(?:\s*:\s*([\w:\?\*]+))?`)
	defRe    = regexp.MustCompile(`^(\s*)(private\s+)?def\s+(?:self\.)?([\w?!=\[\]+\-*/<>%^&|~]+)\s*(?:\(([^)]*)\))?(?:\s*:\s*([\w:\?\*]+))?`)
	propRe   = regexp.MustCompile(`^(\s*)(property|getter|setter)[!?]?\s+(\w+)\s*(?::\s*([\w:\?\*\(\)\|]+))?`)
	ivarRe   = regexp.MustCompile(`^(\s*)@(\w+)\s*:\s*([\w:\?\*\(\)\|]+)`)
	constRe  = regexp.MustCompile(`^(\s*)([A-Z]\w*)\s*=\s*(.+)$`)
	aliasRe  = regexp.MustCompile(`^(\s*)alias\s+(\w+)\s*=\s*(.+)$`)
	endRe    = regexp.MustCompile(`^(\s*)end\s*$`)

	enumMemberRe = regexp.MustCompile(`^\s*([A-Z]\w*)\s*(?:=.*)?$`)
)

// nsFrame is one entry on the namespace stack: only class/module/lib push.
type nsFrame struct {
	name   string
	indent int
}

// Node is the nesting tree used to build textDocument/documentSymbol results,
// limited (per spec.md §4.E) to class/module/struct/enum/method/top-level
// variable declarations.
type Node struct {
	Name      string
	Kind      Kind
	Type      string
	Line      int
	EndLine   int
	NameStart int // rune column of the name token on Line
	Children  []*Node
}

// Extraction is the result of scanning one file: a flat, namespace-qualified
// symbol list (for the workspace caches) and a nesting tree (for document
// symbols).
type Extraction struct {
	Flat []SymbolInfo
	Tree []*Node
}

func indentOf(s string) int {
	n := 0
	for _, r := range s {
		if r == ' ' || r == '\t' {
			n++
			continue
		}
		break
	}
	return n
}

// Extract scans Crystal source text line by line and produces both the flat
// symbol list (with qualified-name duplication, spec.md §3) and the
// document-symbol nesting tree (spec.md §4.E).
func Extract(file, text string) *Extraction {
	lines := strings.Split(text, "\n")
	ex := &Extraction{}

	var nsStack []nsFrame
	var nodeStack []*Node // parallel stack of open tree nodes (class/module/struct/enum/def)

	emit := func(name, typ string, kind Kind, line int, sig string) {
		doc := precedingDoc(lines, line)
		ex.Flat = append(ex.Flat, SymbolInfo{
			Name: name, Type: typ, Kind: kind, File: file, Line: line,
			Signature: sig, Documentation: doc,
		})
		if len(nsStack) > 0 {
			qualified := qualifiedName(nsStack, name)
			ex.Flat = append(ex.Flat, SymbolInfo{
				Name: qualified, Type: typ, Kind: kind, File: file, Line: line,
				Signature: sig, Documentation: doc,
			})
		}
	}

	appendChild := func(n *Node) {
		if len(nodeStack) > 0 {
			top := nodeStack[len(nodeStack)-1]
			top.Children = append(top.Children, n)
		} else {
			ex.Tree = append(ex.Tree, n)
		}
	}

	for i, raw := range lines {
		indent := indentOf(raw)

		// Pop namespace stack on dedent-to-or-below an open frame's end.
		if m := endRe.FindStringSubmatch(raw); m != nil {
			endIndent := len(m[1])
			for len(nsStack) > 0 && endIndent <= nsStack[len(nsStack)-1].indent {
				nsStack = nsStack[:len(nsStack)-1]
			}
			for len(nodeStack) > 0 {
				top := nodeStack[len(nodeStack)-1]
				// Close any open tree node whose own line is at >= this indent level.
				if indentOf(lines[top.Line]) >= endIndent {
					top.EndLine = i
					nodeStack = nodeStack[:len(nodeStack)-1]
					continue
				}
				break
			}
			continue
		}

		switch {
		case classRe.MatchString(raw):
			m := classRe.FindStringSubmatch(raw)
			name := m[2]
			parent := m[3]
			typ := parent
			if typ == "" {
				typ = "Class"
			}
			emit(name, typ, KindClass, i, "class "+name)
			n := &Node{Name: name, Kind: KindClass, Type: typ, Line: i, EndLine: i, NameStart: strings.Index(raw, name)}
			appendChild(n)
			nodeStack = append(nodeStack, n)
			nsStack = append(nsStack, nsFrame{name: name, indent: indent})

		case moduleRe.MatchString(raw):
			m := moduleRe.FindStringSubmatch(raw)
			name := m[2]
			emit(name, "Module", KindModule, i, "module "+name)
			n := &Node{Name: name, Kind: KindModule, Type: "Module", Line: i, EndLine: i, NameStart: strings.Index(raw, name)}
			appendChild(n)
			nodeStack = append(nodeStack, n)
			nsStack = append(nsStack, nsFrame{name: name, indent: indent})

		case structRe.MatchString(raw):
			m := structRe.FindStringSubmatch(raw)
			name := m[2]
			emit(name, "Struct", KindStruct, i, "struct "+name)
			n := &Node{Name: name, Kind: KindStruct, Type: "Struct", Line: i, EndLine: i, NameStart: strings.Index(raw, name)}
			appendChild(n)
			nodeStack = append(nodeStack, n)

		case enumRe.MatchString(raw):
			m := enumRe.FindStringSubmatch(raw)
			name := m[2]
			emit(name, "Enum", KindEnum, i, "enum "+name)
			n := &Node{Name: name, Kind: KindEnum, Type: "Enum", Line: i, EndLine: i, NameStart: strings.Index(raw, name)}
			appendChild(n)
			nodeStack = append(nodeStack, n)

		case libRe.MatchString(raw):
			m := libRe.FindStringSubmatch(raw)
			name := m[2]
			emit(name, "Lib", KindLib, i, "lib "+name)
			nsStack = append(nsStack, nsFrame{name: name, indent: indent})

		case funRe.MatchString(raw):
			m := funRe.FindStringSubmatch(raw)
			name, cname, params, ret := m[2], m[3], m[4], m[5]
			sig := "fun " + name
			if cname != "" {
				sig += " = " + cname
			}
			sig += "(" + params + ")"
			if ret != "" {
				sig += " : " + ret
				emit(name, ret, KindFun, i, sig)
			} else {
				emit(name, "Void", KindFun, i, sig)
			}

		case defRe.MatchString(raw):
			m := defRe.FindStringSubmatch(raw)
			name, params, ret := m[3], m[4], m[5]
			retType := ret
			if retType == "" {
				retType = inferReturnTypeFromBody(lines, i, indent)
			}
			sig := "def " + name + "(" + params + ")"
			if ret != "" {
				sig += " : " + ret
			}
			emit(name, retType, KindMethod, i, sig)
			n := &Node{Name: name, Kind: KindMethod, Type: retType, Line: i, EndLine: i, NameStart: strings.Index(raw, name)}
			appendChild(n)
			nodeStack = append(nodeStack, n)

		case propRe.MatchString(raw):
			m := propRe.FindStringSubmatch(raw)
			accessor, name, typ := m[2], m[3], m[4]
			if typ == "" {
				typ = "Object"
			}
			var kind Kind
			switch accessor {
			case "getter":
				kind = KindGetter
			case "setter":
				kind = KindSetter
			default:
				kind = KindProperty
			}
			emit("@"+name, typ, kind, i, accessor+" "+name+" : "+typ)

		case ivarRe.MatchString(raw):
			m := ivarRe.FindStringSubmatch(raw)
			name, typ := m[2], m[3]
			emit("@"+name, typ, KindInstanceVariable, i, "@"+name+" : "+typ)

		case aliasRe.MatchString(raw):
			m := aliasRe.FindStringSubmatch(raw)
			name, target := m[2], m[3]
			emit(name, target, KindAlias, i, "alias "+name+" = "+target)

		case constRe.MatchString(raw):
			m := constRe.FindStringSubmatch(raw)
			name, expr := m[2], m[3]
			typ := inferType(expr)
			emit(name, typ, KindConstant, i, name+" = "+strings.TrimSpace(expr))
			if len(nodeStack) == 0 {
				// Top-level variable/constant assignment, per spec.md §4.E document symbols.
				ex.Tree = append(ex.Tree, &Node{Name: name, Kind: KindConstant, Type: typ, Line: i, EndLine: i, NameStart: strings.Index(raw, name)})
			}
		}
	}

	// Close any still-open nodes at end of file.
	for _, n := range nodeStack {
		if n.EndLine < len(lines)-1 {
			n.EndLine = len(lines) - 1
		}
	}

	return ex
}

func qualifiedName(stack []nsFrame, name string) string {
	parts := make([]string, 0, len(stack)+1)
	for _, f := range stack {
		parts = append(parts, f.name)
	}
	parts = append(parts, name)
	return strings.Join(parts, "::")
}

// precedingDoc collects the contiguous run of '#'-prefixed comment lines
// immediately above declLine, skipping a run of blank lines directly above
// the declaration before the comment block begins.
func precedingDoc(lines []string, declLine int) string {
	i := declLine - 1
	for i >= 0 && strings.TrimSpace(lines[i]) == "" {
		i--
	}
	var collected []string
	for i >= 0 {
		trimmed := strings.TrimSpace(lines[i])
		if strings.HasPrefix(trimmed, "#") {
			collected = append([]string{strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))}, collected...)
			i--
			continue
		}
		break
	}
	return strings.Join(collected, "\n")
}

var (
	newRe    = regexp.MustCompile(`^\s*([A-Z][\w:]*)\.new\b`)
	methodCallRe = regexp.MustCompile(`^\s*[\w@]+\.(to_s|to_i|to_f|size|empty\?|split|chars)\b`)
	fromJSONRe   = regexp.MustCompile(`^\s*([A-Z][\w:]*)\.from_json\b`)
	bareConstRe  = regexp.MustCompile(`^\s*([A-Z]\w*)\s*$`)
)

// InferExprType exposes inferType's value-expression heuristics to other
// packages (the analyzer's variable-assignment walk-back for receiver-type
// inference, spec.md §4.F step 6).
func InferExprType(expr string) string {
	return inferType(expr)
}

// inferType implements the value-expression type-inference heuristics of
// spec.md §4.G, used for constants and (elsewhere) variable assignments.
func inferType(expr string) string {
	e := strings.TrimSpace(expr)
	switch {
	case strings.HasPrefix(e, `"`) || strings.HasPrefix(e, "<<-"):
		return "String"
	case strings.HasPrefix(e, "["):
		return "Array"
	case strings.HasPrefix(e, "{"):
		return "Hash"
	case strings.HasPrefix(e, "/"):
		return "Regex"
	case strings.HasPrefix(e, ":"):
		return "Symbol"
	case strings.HasPrefix(e, "'"):
		return "Char"
	case e == "true" || e == "false":
		return "Bool"
	case e == "nil":
		return "Nil"
	case strings.Contains(e, ".."):
		return "Range"
	}
	if m := newRe.FindStringSubmatch(e); m != nil {
		return m[1]
	}
	if m := fromJSONRe.FindStringSubmatch(e); m != nil {
		return m[1]
	}
	if m := methodCallRe.FindStringSubmatch(e); m != nil {
		switch m[1] {
		case "to_s":
			return "String"
		case "to_i":
			return "Int32"
		case "to_f":
			return "Float64"
		case "size":
			return "Int32"
		case "empty?":
			return "Bool"
		case "split", "chars":
			return "Array"
		}
	}
	if isIntLiteral(e) {
		return "Int32"
	}
	if isFloatLiteral(e) {
		return "Float64"
	}
	if m := bareConstRe.FindStringSubmatch(e); m != nil {
		return m[1]
	}
	return "Object"
}

func isIntLiteral(s string) bool {
	if s == "" {
		return false
	}
	if _, err := strconv.Atoi(strings.ReplaceAll(s, "_", "")); err == nil {
		return true
	}
	return false
}

func isFloatLiteral(s string) bool {
	if _, err := strconv.ParseFloat(strings.ReplaceAll(s, "_", ""), 64); err == nil {
		return strings.Contains(s, ".")
	}
	return false
}

// inferReturnTypeFromBody is a shallow heuristic: scan the method body for a
// trailing bare expression or explicit return to guess a return type when no
// explicit `: T` annotation is present. Degrades to "Object" on ambiguity.
func inferReturnTypeFromBody(lines []string, defLine, defIndent int) string {
	for i := defLine + 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		indent := indentOf(lines[i])
		if indent <= defIndent && endRe.MatchString(lines[i]) {
			break
		}
		if strings.HasPrefix(trimmed, "return ") {
			return inferType(strings.TrimPrefix(trimmed, "return "))
		}
	}
	return "Object"
}

// FindEnumMember scans an enum body (between startLine+1 and the matching
// end) for a member declaration matching name.
func FindEnumMember(lines []string, startLine, startIndent int, name string) (int, bool) {
	for i := startLine + 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if indentOf(lines[i]) <= startIndent && endRe.MatchString(lines[i]) {
			return 0, false
		}
		if m := enumMemberRe.FindStringSubmatch(trimmed); m != nil && m[1] == name {
			return i, true
		}
	}
	return 0, false
}
