package document

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenAndGet(t *testing.T) {
	s := NewStore()
	doc := s.Open("file:///t.cr", "crystal", 1, "line 1\nline 2")
	require.NotNil(t, doc)
	require.Equal(t, []string{"line 1", "line 2"}, s.Get("file:///t.cr").Lines())
}

// Scenario 1 from spec.md §8: incremental edit.
func TestIncrementalEditScenario(t *testing.T) {
	s := NewStore()
	s.Open("file:///t.cr", "crystal", 1, "line 1\nline 2\nline 3")

	s.Change("file:///t.cr", 2, []Change{{
		Range:   &RangeSpan{StartLine: 1, StartChar: 0, EndLine: 1, EndChar: 6},
		NewText: "modified",
	}})

	doc := s.Get("file:///t.cr")
	require.Equal(t, "line 1\nmodified\nline 3", doc.Text)
	require.Equal(t, 2, doc.Version)
	require.Len(t, doc.Lines(), 3)
}

func TestFullReplaceChange(t *testing.T) {
	s := NewStore()
	s.Open("file:///t.cr", "crystal", 1, "old")
	s.Change("file:///t.cr", 2, []Change{{NewText: "new text\nsecond line"}})

	doc := s.Get("file:///t.cr")
	require.Equal(t, "new text\nsecond line", doc.Text)
	require.Equal(t, []string{"new text", "second line"}, doc.Lines())
}

func TestFullReplaceIdempotent(t *testing.T) {
	s := NewStore()
	s.Open("file:///t.cr", "crystal", 1, "old")
	s.Change("file:///t.cr", 2, []Change{{NewText: "new"}})
	first := s.Get("file:///t.cr").Text
	s.Change("file:///t.cr", 2, []Change{{NewText: "new"}})
	require.Equal(t, first, s.Get("file:///t.cr").Text)
}

func TestUnknownURIIsNoop(t *testing.T) {
	s := NewStore()
	require.NotPanics(t, func() {
		s.Change("file:///missing.cr", 1, []Change{{NewText: "x"}})
		s.Close("file:///missing.cr")
	})
	require.Nil(t, s.Get("file:///missing.cr"))
}

func TestCloseRemovesDocument(t *testing.T) {
	s := NewStore()
	s.Open("file:///t.cr", "crystal", 1, "x")
	s.Close("file:///t.cr")
	require.Nil(t, s.Get("file:///t.cr"))
}

func TestLineIndexInvariantAfterEachMutation(t *testing.T) {
	s := NewStore()
	s.Open("file:///t.cr", "crystal", 1, "a\nb\nc")
	edits := []Change{
		{Range: &RangeSpan{StartLine: 0, StartChar: 1, EndLine: 0, EndChar: 1}, NewText: "X"},
		{Range: &RangeSpan{StartLine: 2, StartChar: 0, EndLine: 2, EndChar: 1}, NewText: "ZZ"},
	}
	for i, e := range edits {
		s.Change("file:///t.cr", i+2, []Change{e})
		doc := s.Get("file:///t.cr")
		require.Equal(t, splitLinesForTest(doc.Text), doc.Lines())
	}
}

func splitLinesForTest(text string) []string {
	return splitLines(text)
}

func TestAllReturnsEveryDocument(t *testing.T) {
	s := NewStore()
	s.Open("file:///a.cr", "crystal", 1, "a")
	s.Open("file:///b.cr", "crystal", 1, "b")
	require.Len(t, s.All(), 2)
}
