package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/navid-m/liger/internal/config"
	"github.com/stretchr/testify/require"
)

func testIndex(t *testing.T, root string) *Index {
	t.Helper()
	cfg := config.ServerConfig{
		ScanDebounceSeconds: 5,
		MaxProjectDepth:     10,
		MaxLibDepth:         3,
		MaxStdlibDepth:      2,
	}
	idx := NewIndex(root, cfg, nil, nil)
	t.Cleanup(idx.Close)
	return idx
}

func TestIndexForceScanFindsProjectSymbols(t *testing.T) {
	dir := t.TempDir()
	src := "class Greeter\n  def hello : String\n    \"hi\"\n  end\nend\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greeter.cr"), []byte(src), 0o644))

	idx := testIndex(t, dir)
	idx.ForceScan()

	found := idx.FindSymbolInfo("Greeter")
	require.NotEmpty(t, found)
	require.Equal(t, KindClass, found[0].Kind)

	members := idx.GetClassMembers("Greeter")
	require.Len(t, members, 1)
	require.Equal(t, "hello", members[0].Name)
}

func TestIndexUpdateSourceRefreshesWithoutFullScan(t *testing.T) {
	dir := t.TempDir()
	idx := testIndex(t, dir)
	idx.ForceScan()
	require.Empty(t, idx.FindSymbolInfo("Widget"))

	path := filepath.Join(dir, "widget.cr")
	idx.UpdateSource("file://"+path, path, "class Widget\nend\n")

	found := idx.FindSymbolInfo("Widget")
	require.NotEmpty(t, found)
}

func TestIndexGetEnumValues(t *testing.T) {
	dir := t.TempDir()
	src := "enum Color\n  Red\n  Green\n  Blue = 5\nend\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "color.cr"), []byte(src), 0o644))

	idx := testIndex(t, dir)
	idx.ForceScan()

	values := idx.GetEnumValues("Color")
	names := map[string]bool{}
	for _, v := range values {
		names[v.Name] = true
	}
	require.True(t, names["Red"])
	require.True(t, names["Green"])
	require.True(t, names["Blue"])
}

func TestIndexFindMethodDefinitionPrefersReceiverType(t *testing.T) {
	dir := t.TempDir()
	src := "class A\n  def make : A\n  end\nend\nclass B\n  def make : B\n  end\nend\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ab.cr"), []byte(src), 0o644))

	idx := testIndex(t, dir)
	idx.ForceScan()

	sym, ok := idx.FindMethodDefinition("B", "make")
	require.True(t, ok)
	require.Equal(t, "B", sym.Type)
}

func TestParseShardYMLMissingFileReturnsNil(t *testing.T) {
	require.Nil(t, ParseShardYML(filepath.Join(t.TempDir(), "shard.yml")))
}

func TestParseShardYMLParsesNameVersionAndMain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shard.yml")
	content := "name: widget\nversion: 1.2.3\ntargets:\n  widget:\n    main: src/widget.cr\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m := ParseShardYML(path)
	require.NotNil(t, m)
	require.Equal(t, "widget", m.Name)
	require.NotNil(t, m.Version)
	require.Equal(t, "1.2.3", m.Version.String())
	require.Contains(t, m.MainFiles, "src/widget.cr")
}
