// Package position implements component D: offset<->Position conversion and
// word-at-position lookups under Crystal's lexical rules. Byte offsets are
// converted to UTF-16 code-unit columns the way LSP positions require,
// generalized from the teacher's own token-offset helper (utf16_helper.go)
// into a standalone, document-shaped API.
package position

import (
	"unicode/utf8"

	"github.com/navid-m/liger/internal/protocol"
)

// OffsetAt converts a UTF-16 line/character position into a byte offset into text.
func OffsetAt(text string, pos protocol.Position) int {
	return offsetFromLineChar(text, pos.Line, pos.Character)
}

// PositionAt converts a byte offset into text into a UTF-16 line/character position.
func PositionAt(text string, offset int) protocol.Position {
	line, char := lineCharFromOffset(text, offset)
	return protocol.Position{Line: line, Character: char}
}

func lineCharFromOffset(text string, offset int) (line, char int) {
	if offset < 0 {
		return 0, 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	byteIdx := 0
	for byteIdx < offset {
		r, size := utf8.DecodeRuneInString(text[byteIdx:])
		if r == '\n' {
			line++
			char = 0
		} else if r <= 0xFFFF {
			char++
		} else {
			char += 2 // surrogate pair
		}
		byteIdx += size
	}
	return line, char
}

func offsetFromLineChar(text string, targetLine, targetChar int) int {
	line, char, byteIdx := 0, 0, 0
	for byteIdx < len(text) {
		if line == targetLine && char == targetChar {
			return byteIdx
		}
		r, size := utf8.DecodeRuneInString(text[byteIdx:])
		if r == '\n' {
			if line == targetLine && char <= targetChar {
				return byteIdx
			}
			line++
			char = 0
		} else if r <= 0xFFFF {
			char++
		} else {
			char += 2
		}
		byteIdx += size
	}
	if line == targetLine && char == targetChar {
		return byteIdx
	}
	return len(text)
}

// isWordRune reports whether r is a Crystal identifier constituent:
// alphanumeric, underscore, or the trailing predicate/bang markers.
func isWordRune(r rune) bool {
	return r == '_' || r == '?' || r == '!' ||
		(r >= '0' && r <= '9') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		r >= utf8.RuneSelf
}

// Word is the result of a word-at-position lookup.
type Word struct {
	Text  string
	Start int // rune-column start on the line
	End   int // rune-column end (exclusive) on the line
	Found bool
}

// WordAt expands outward from pos.Character over word-character runs on the
// line containing pos, admitting a leading '@' so instance variables are
// captured whole. Returns Found=false if pos does not land inside (or
// adjacent to) a word run, or if it lies past the end of the line.
func WordAt(line string, character int) Word {
	runes := []rune(line)
	if character < 0 {
		character = 0
	}
	if character > len(runes) {
		return Word{Found: false}
	}

	// If we're sitting just past the end of a word, or inside one, find the run.
	start, end := character, character
	for start > 0 && isWordRune(runes[start-1]) {
		start--
	}
	for end < len(runes) && isWordRune(runes[end]) {
		end++
	}
	if start == end {
		// Cursor sits directly on the '@' of an instance variable (no word
		// run to expand from): admit it explicitly so "@var" is still found.
		if character < len(runes) && runes[character] == '@' {
			j := character + 1
			for j < len(runes) && isWordRune(runes[j]) {
				j++
			}
			if j > character+1 {
				return Word{Text: string(runes[character:j]), Start: character, End: j, Found: true}
			}
		}
		return Word{Found: false}
	}
	if start > 0 && runes[start-1] == '@' {
		start--
	}
	return Word{
		Text:  string(runes[start:end]),
		Start: start,
		End:   end,
		Found: true,
	}
}

// LineAt returns the text of the given zero-based line, or "" if out of range.
func LineAt(lines []string, line int) string {
	if line < 0 || line >= len(lines) {
		return ""
	}
	return lines[line]
}
