// Package document implements component C: the in-memory mirror of every
// open source file, with full and incremental-edit application per
// SPEC_FULL.md §4.C. Generalized from the teacher's map[string]string
// doc-store embedded in Server, pulled out into its own type so it can be
// unit tested against the spec's invariants in isolation.
package document

import "strings"

// Document is one open text buffer.
type Document struct {
	URI        string
	LanguageID string
	Version    int
	Text       string
	lineIndex  []string
}

// Lines returns the cached line split of the document text.
func (d *Document) Lines() []string {
	return d.lineIndex
}

func splitLines(text string) []string {
	return strings.Split(text, "\n")
}

// Change describes one content change from textDocument/didChange.
// Range == nil means a full-document replace.
type Change struct {
	Range   *RangeSpan
	NewText string
}

// RangeSpan is a minimal 0-based line/character span, decoupled from the
// protocol package so document stays importable without a wire dependency.
type RangeSpan struct {
	StartLine, StartChar int
	EndLine, EndChar     int
}

// Store is the process-wide URI -> Document map (component C).
type Store struct {
	docs map[string]*Document
}

// NewStore creates an empty document store.
func NewStore() *Store {
	return &Store{docs: make(map[string]*Document)}
}

// Open creates or replaces the document for uri.
func (s *Store) Open(uri, languageID string, version int, text string) *Document {
	doc := &Document{
		URI:        uri,
		LanguageID: languageID,
		Version:    version,
		Text:       text,
		lineIndex:  splitLines(text),
	}
	s.docs[uri] = doc
	return doc
}

// Close removes the document for uri. No-op if uri is unknown.
func (s *Store) Close(uri string) {
	delete(s.docs, uri)
}

// Get returns the document for uri, or nil if unknown.
func (s *Store) Get(uri string) *Document {
	return s.docs[uri]
}

// All returns every open document, in arbitrary order.
func (s *Store) All() []*Document {
	out := make([]*Document, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d)
	}
	return out
}

// Change applies a batch of changes, in order, against the document for uri.
// No-op (does not create an entry) if uri is unknown, per spec.md's tolerance
// for didChange against documents the server never opened.
func (s *Store) Change(uri string, version int, changes []Change) {
	doc := s.docs[uri]
	if doc == nil {
		return
	}
	text := doc.Text
	for _, ch := range changes {
		if ch.Range == nil {
			text = ch.NewText
			continue
		}
		text = applyRangedEdit(text, *ch.Range, ch.NewText)
	}
	doc.Text = text
	doc.lineIndex = splitLines(text)
	doc.Version = version
}

// applyRangedEdit implements the spec's prefix/suffix incremental-edit
// algorithm exactly (spec.md §4.C):
//
//	prefix = join(lines[0..sL-1], '\n') + '\n' if sL > 0 else ""
//	         + lines[sL][0..sC-1]              if sL in range
//	suffix = lines[eL][eC..]                   if eL in range
//	         + '\n' + join(lines[eL+1..], '\n') if eL < last
//	newText = prefix + T + suffix
func applyRangedEdit(text string, r RangeSpan, newText string) string {
	lines := splitLines(text)
	last := len(lines) - 1

	var prefix string
	if r.StartLine > 0 && r.StartLine <= last+1 {
		upto := r.StartLine
		if upto > len(lines) {
			upto = len(lines)
		}
		prefix = strings.Join(lines[:upto], "\n") + "\n"
	}
	if r.StartLine >= 0 && r.StartLine <= last {
		line := lines[r.StartLine]
		sc := clamp(r.StartChar, 0, len([]rune(line)))
		prefix += string([]rune(line)[:sc])
	}

	var suffix string
	if r.EndLine >= 0 && r.EndLine <= last {
		line := lines[r.EndLine]
		runes := []rune(line)
		ec := clamp(r.EndChar, 0, len(runes))
		suffix = string(runes[ec:])
	}
	if r.EndLine < last {
		tailStart := r.EndLine + 1
		if tailStart < 0 {
			tailStart = 0
		}
		if tailStart <= last {
			suffix += "\n" + strings.Join(lines[tailStart:], "\n")
		}
	}

	return prefix + newText + suffix
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
