package analyzer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/navid-m/liger/internal/config"
	"github.com/navid-m/liger/internal/document"
	"github.com/navid-m/liger/internal/oracle"
	"github.com/navid-m/liger/internal/protocol"
	"github.com/navid-m/liger/internal/workspace"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer(t *testing.T, root string) (*Analyzer, *document.Store) {
	t.Helper()
	cfg := config.ServerConfig{ScanDebounceSeconds: 5, MaxProjectDepth: 10, MaxLibDepth: 3, MaxStdlibDepth: 2}
	idx := workspace.NewIndex(root, cfg, nil, nil)
	t.Cleanup(idx.Close)
	docs := document.NewStore()
	a := New(root, docs, idx, &oracle.NullOracle{}, cfg, nil)
	return a, docs
}

func TestGotoDefinitionResolvesCurrentFileMethod(t *testing.T) {
	root := t.TempDir()
	a, docs := newTestAnalyzer(t, root)

	src := "class Greeter\n  def hello\n  end\n\n  def run\n    hello\n  end\nend\n"
	uri := "file://" + filepath.Join(root, "g.cr")
	docs.Open(uri, "crystal", 1, src)

	locs := a.GotoDefinition(uri, protocol.Position{Line: 5, Character: 5})
	require.NotEmpty(t, locs)
	require.Equal(t, 1, locs[0].Range.Start.Line)
}

func TestHoverFallsBackToNotAvailable(t *testing.T) {
	root := t.TempDir()
	a, docs := newTestAnalyzer(t, root)
	src := "xyz_undefined\n"
	uri := "file://" + filepath.Join(root, "h.cr")
	docs.Open(uri, "crystal", 1, src)

	hover := a.Hover(uri, protocol.Position{Line: 0, Character: 2})
	require.NotNil(t, hover)
	require.Contains(t, hover.Contents.Value, "not available")
}

func TestHoverOnClassShowsClassName(t *testing.T) {
	root := t.TempDir()
	a, docs := newTestAnalyzer(t, root)
	src := "class Box\n  def open\n  end\nend\n\nb = Box.new\n"
	uri := "file://" + filepath.Join(root, "box.cr")
	docs.Open(uri, "crystal", 1, src)

	hover := a.Hover(uri, protocol.Position{Line: 0, Character: 7})
	require.NotNil(t, hover)
	require.Contains(t, hover.Contents.Value, "Box")
}

func TestRenameReplacesWholeWordOccurrencesOnly(t *testing.T) {
	root := t.TempDir()
	a, docs := newTestAnalyzer(t, root)
	src := "x = 1\nxy = 2\ny = x + 1\n"
	uri := "file://" + filepath.Join(root, "r.cr")
	docs.Open(uri, "crystal", 1, src)

	edit := a.Rename(uri, protocol.Position{Line: 0, Character: 0}, "renamed")
	require.NotNil(t, edit)
	edits := edit.Changes[uri]
	require.Len(t, edits, 2) // line 0 "x" and line 2 "x", not "xy"
}

func TestPrepareRenameReturnsWordRange(t *testing.T) {
	root := t.TempDir()
	a, docs := newTestAnalyzer(t, root)
	src := "foo = 1\n"
	uri := "file://" + filepath.Join(root, "p.cr")
	docs.Open(uri, "crystal", 1, src)

	r := a.PrepareRename(uri, protocol.Position{Line: 0, Character: 1})
	require.NotNil(t, r)
	require.Equal(t, 0, r.Start.Character)
	require.Equal(t, 3, r.End.Character)
}

func TestFindReferencesAcrossOpenDocuments(t *testing.T) {
	root := t.TempDir()
	a, docs := newTestAnalyzer(t, root)

	uri1 := "file://" + filepath.Join(root, "a.cr")
	uri2 := "file://" + filepath.Join(root, "b.cr")
	docs.Open(uri1, "crystal", 1, "widget = 1\n")
	docs.Open(uri2, "crystal", 1, "puts widget\n")

	refs := a.FindReferences(uri1, protocol.Position{Line: 0, Character: 0}, true)
	require.Len(t, refs, 2)

	refsNoDecl := a.FindReferences(uri1, protocol.Position{Line: 0, Character: 0}, false)
	require.Len(t, refsNoDecl, 1)
	require.Equal(t, uri2, refsNoDecl[0].URI)
}

func TestCompletionAfterDotUsesReceiverType(t *testing.T) {
	root := t.TempDir()
	a, docs := newTestAnalyzer(t, root)
	src := "s = \"hi\"\ns.\n"
	uri := "file://" + filepath.Join(root, "c.cr")
	docs.Open(uri, "crystal", 1, src)

	list := a.Completion(uri, protocol.Position{Line: 1, Character: 2})
	var labels []string
	for _, it := range list.Items {
		labels = append(labels, it.Label)
	}
	require.Contains(t, labels, "upcase")
}

func TestWorkspaceSymbolFiltersBySubstring(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.cr"), []byte("class Greeter\n  def hello\n  end\nend\n"), 0o644))
	a, _ := newTestAnalyzer(t, root)

	all := a.WorkspaceSymbol("")
	require.NotEmpty(t, all)

	greet := a.WorkspaceSymbol("greet")
	require.NotEmpty(t, greet)
	for _, s := range greet {
		require.Contains(t, strings.ToLower(s.Name), "greet")
	}

	none := a.WorkspaceSymbol("zzz_no_such_symbol")
	require.Empty(t, none)
}

func TestGotoDefinitionResolvesRelativeRequire(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "helper.cr"), []byte("def help\nend\n"), 0o644))
	a, docs := newTestAnalyzer(t, root)

	uri := "file://" + filepath.Join(root, "main.cr")
	docs.Open(uri, "crystal", 1, "require \"./helper\"\n")

	locs := a.GotoDefinition(uri, protocol.Position{Line: 0, Character: 12})
	require.NotEmpty(t, locs)
	require.Equal(t, "file://"+filepath.Join(root, "helper.cr"), locs[0].URI)
}
