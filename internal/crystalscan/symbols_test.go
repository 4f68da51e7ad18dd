package crystalscan

import (
	"testing"

	"github.com/navid-m/liger/internal/protocol"
	"github.com/stretchr/testify/require"
)

func TestDocumentSymbolsNestsClassAndMethod(t *testing.T) {
	src := "class Greeter\n  def hello\n  end\nend\n"
	syms := DocumentSymbols("t.cr", src)

	require.Len(t, syms, 1)
	require.Equal(t, "Greeter", syms[0].Name)
	require.Equal(t, protocol.SymbolKindClass, syms[0].Kind)
	require.Len(t, syms[0].Children, 1)
	require.Equal(t, "hello", syms[0].Children[0].Name)
	require.Equal(t, protocol.SymbolKindMethod, syms[0].Children[0].Kind)
}

func TestCompletionsAfterDotReturnsCommonMethods(t *testing.T) {
	items := Completions("t.cr", "", '.')
	labels := map[string]bool{}
	for _, it := range items {
		labels[it.Label] = true
	}
	require.True(t, labels["to_s"])
	require.True(t, labels["is_a?"])
}

func TestCompletionsIncludesKeywordsAndFileSymbols(t *testing.T) {
	src := "class Widget\nend\n"
	items := Completions("t.cr", src, 0)
	labels := map[string]bool{}
	for _, it := range items {
		labels[it.Label] = true
	}
	require.True(t, labels["def"])
	require.True(t, labels["String"])
	require.True(t, labels["Widget"])
}
