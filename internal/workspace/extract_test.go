package workspace

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractNestedDeclarationEmitsQualifiedName(t *testing.T) {
	src := "module M\n  class C\n    def m\n    end\n  end\nend\n"
	ex := Extract("t.cr", src)

	names := map[string]bool{}
	for _, s := range ex.Flat {
		names[s.Name] = true
	}
	require.True(t, names["M"])
	require.True(t, names["C"])
	require.True(t, names["M::C"])
	require.True(t, names["m"])
	require.True(t, names["M::C::m"])
}

// Scenario 4 from spec.md §8: document symbol nesting.
func TestExtractDocumentSymbolTree(t *testing.T) {
	src := "module M\n  class C\n    def m\n    end\n  end\nend\n"
	ex := Extract("t.cr", src)

	require.Len(t, ex.Tree, 1)
	mod := ex.Tree[0]
	require.Equal(t, "M", mod.Name)
	require.Equal(t, KindModule, mod.Kind)
	require.Len(t, mod.Children, 1)

	class := mod.Children[0]
	require.Equal(t, "C", class.Name)
	require.Equal(t, KindClass, class.Kind)
	require.Len(t, class.Children, 1)

	method := class.Children[0]
	require.Equal(t, "m", method.Name)
	require.Equal(t, KindMethod, method.Kind)
}

func TestExtractConstantTypeInference(t *testing.T) {
	src := "NAME = \"foo\"\nCOUNT = 3\nRATIO = 1.5\nLIST = [1, 2]\n"
	ex := Extract("t.cr", src)

	got := map[string]string{}
	for _, s := range ex.Flat {
		if s.Kind == KindConstant {
			got[s.Name] = s.Type
		}
	}
	require.Equal(t, "String", got["NAME"])
	require.Equal(t, "Int32", got["COUNT"])
	require.Equal(t, "Float64", got["RATIO"])
	require.Equal(t, "Array", got["LIST"])
}

func TestExtractInstanceVariableAndProperty(t *testing.T) {
	src := "class A\n  @x : Int32\n  property name : String\nend\n"
	ex := Extract("t.cr", src)

	var foundIvar, foundProp bool
	for _, s := range ex.Flat {
		if s.Name == "@x" && s.Kind == KindInstanceVariable {
			foundIvar = true
			require.Equal(t, "Int32", s.Type)
		}
		if s.Name == "@name" && s.Kind == KindProperty {
			foundProp = true
			require.Equal(t, "String", s.Type)
		}
	}
	require.True(t, foundIvar)
	require.True(t, foundProp)
}

func TestExtractFunSignature(t *testing.T) {
	src := "lib LibC\n  fun getpid : Int32\nend\n"
	ex := Extract("t.cr", src)
	var found bool
	for _, s := range ex.Flat {
		if s.Name == "getpid" && s.Kind == KindFun {
			found = true
			require.Equal(t, "Int32", s.Type)
		}
	}
	require.True(t, found)
}

func TestExtractAllSymbolsHaveValidLines(t *testing.T) {
	src := "class A\n  def foo\n  end\nend\n"
	ex := Extract("t.cr", src)
	lineCount := len(strings.Split(src, "\n"))
	for _, s := range ex.Flat {
		require.GreaterOrEqual(t, s.Line, 0)
		require.Less(t, s.Line, lineCount)
	}
}
