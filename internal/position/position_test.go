package position

import (
	"testing"

	"github.com/navid-m/liger/internal/protocol"
	"github.com/stretchr/testify/require"
)

func TestOffsetPositionRoundTrip(t *testing.T) {
	text := "class Foo\n  def bar\n    1\n  end\nend\n"
	for offset := 0; offset <= len(text); offset++ {
		pos := PositionAt(text, offset)
		back := OffsetAt(text, pos)
		require.Equal(t, offset, back, "offset %d round-trips through position %+v", offset, pos)
	}
}

func TestPositionOffsetRoundTrip(t *testing.T) {
	text := "abc\ndef\nghi"
	for line := 0; line < 3; line++ {
		for char := 0; char <= 3; char++ {
			pos := protocol.Position{Line: line, Character: char}
			offset := OffsetAt(text, pos)
			back := PositionAt(text, offset)
			require.Equal(t, pos, back)
		}
	}
}

// Scenario 2 from spec.md §8: Crystal lexical word extraction.
func TestWordAtCrystalLexicals(t *testing.T) {
	line := "empty? nil! @var"
	w := WordAt(line, 2)
	require.True(t, w.Found)
	require.Equal(t, "empty?", w.Text)

	w = WordAt(line, 8)
	require.True(t, w.Found)
	require.Equal(t, "nil!", w.Text)

	w = WordAt(line, 12)
	require.True(t, w.Found)
	require.Equal(t, "@var", w.Text)
}

func TestWordAtWhitespaceReturnsNotFound(t *testing.T) {
	w := WordAt("foo   bar", 4)
	require.False(t, w.Found)
}

func TestWordAtPastEndOfLine(t *testing.T) {
	w := WordAt("foo", 100)
	require.False(t, w.Found)
}

func TestRangeContains(t *testing.T) {
	r := protocol.Range{
		Start: protocol.Position{Line: 1, Character: 0},
		End:   protocol.Position{Line: 3, Character: 5},
	}
	require.True(t, r.Contains(protocol.Position{Line: 2, Character: 0}))
	require.True(t, r.Contains(r.Start))
	require.True(t, r.Contains(r.End))
	require.False(t, r.Contains(protocol.Position{Line: 0, Character: 9}))
	require.False(t, r.Contains(protocol.Position{Line: 3, Character: 6}))
}
