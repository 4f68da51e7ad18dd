// Package crystalscan implements component E: a line/indentation scanner
// over Crystal source for structural diagnostics, document symbols, and
// file-local completion seeds. A full Crystal grammar is out of scope (§1);
// this is the same regex/heuristic scanning idiom as the workspace indexer,
// reused here for single-file structure rather than cross-file extraction.
package crystalscan

import (
	"regexp"
	"strings"

	"github.com/navid-m/liger/internal/protocol"
)

var (
	blockOpenerRe = regexp.MustCompile(`\b(do|class|module|struct|enum|lib|if|unless|while|until|begin|case|def|fun)\b`)
	heredocStartRe = regexp.MustCompile(`<<-?(\w+)`)
)

// Diagnose performs a structural scan of text and reports unmatched `end`,
// unterminated strings/heredocs, and unbalanced do/end block nesting
// detected purely by keyword and indentation tracking (spec.md §4.E).
func Diagnose(text string) (diags []protocol.Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			diags = []protocol.Diagnostic{RecoverToParseError(r)}
		}
	}()

	lines := strings.Split(text, "\n")
	depth := 0
	var heredocTag string

	for i, raw := range lines {
		if heredocTag != "" {
			if strings.TrimSpace(raw) == heredocTag {
				heredocTag = ""
			}
			continue
		}
		if m := heredocStartRe.FindStringSubmatch(raw); m != nil {
			heredocTag = m[1]
			continue
		}
		if isUnterminatedString(raw) {
			col := len(raw)
			return []protocol.Diagnostic{unterminatedDiag(i, col, "unterminated string literal")}
		}

		trimmed := strings.TrimSpace(raw)
		if trimmed == "end" || strings.HasSuffix(trimmed, "; end") {
			depth--
			if depth < 0 {
				col := strings.Index(raw, "end")
				if col < 0 {
					col = 0
				}
				return []protocol.Diagnostic{unterminatedDiag(i, col, "unmatched 'end'")}
			}
			continue
		}
		if blockOpenerRe.MatchString(raw) && opensBlock(trimmed) {
			depth++
		}
	}

	if heredocTag != "" {
		return []protocol.Diagnostic{unterminatedDiag(len(lines)-1, 0, "unterminated heredoc <<-"+heredocTag)}
	}
	if depth > 0 {
		return []protocol.Diagnostic{unterminatedDiag(len(lines)-1, 0, "unbalanced block: missing 'end'")}
	}
	return nil
}

// opensBlock filters blockOpenerRe matches down to statements that actually
// open a block needing a matching `end` — excludes modifier-form `if`/
// `unless`/`while`/`until` (trailing-conditional statements) and inline
// single-line defs.
func opensBlock(trimmed string) bool {
	if strings.HasSuffix(trimmed, "end") {
		return false
	}
	for _, kw := range []string{"class ", "module ", "struct ", "enum ", "lib ", "def ", "fun "} {
		if strings.HasPrefix(trimmed, kw) || strings.HasPrefix(trimmed, "abstract "+kw) || strings.HasPrefix(trimmed, "private "+kw) {
			return true
		}
	}
	for _, kw := range []string{"if ", "unless ", "while ", "until ", "case ", "begin"} {
		if strings.HasPrefix(trimmed, kw) {
			return true
		}
	}
	if strings.Contains(trimmed, " do") && (strings.HasSuffix(trimmed, "do") || strings.HasSuffix(trimmed, "do |")) {
		return true
	}
	if strings.HasSuffix(trimmed, " do") || strings.Contains(trimmed, " do |") {
		return true
	}
	return false
}

func isUnterminatedString(line string) bool {
	inString := false
	var quote rune
	escaped := false
	for _, r := range line {
		if escaped {
			escaped = false
			continue
		}
		if inString {
			if r == '\\' {
				escaped = true
				continue
			}
			if r == quote {
				inString = false
			}
			continue
		}
		if r == '"' || r == '\'' {
			inString = true
			quote = r
		}
		if r == '#' && !inString {
			break // comment: rest of line is not code
		}
	}
	return inString
}

func unterminatedDiag(line, col int, msg string) protocol.Diagnostic {
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: col},
			End:   protocol.Position{Line: line, Character: col + 1},
		},
		Severity: protocol.SeverityError,
		Source:   "crystal",
		Message:  msg,
	}
}

// RecoverToParseError converts a recovered panic value into the spec's
// generic (0,0) "Parse error: " diagnostic. Call from a deferred recover in
// the caller if Diagnose's internal recover is bypassed by a caller-level
// wrapper that needs the panic value itself.
func RecoverToParseError(r any) protocol.Diagnostic {
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 0},
			End:   protocol.Position{Line: 0, Character: 1},
		},
		Severity: protocol.SeverityError,
		Source:   "crystal",
		Message:  "Parse error: " + toMessage(r),
	}
}

func toMessage(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	if s, ok := r.(string); ok {
		return s
	}
	return "unknown"
}
