package oracle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/navid-m/liger/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDiscoverMainFileFallsBackToSrcBasenameCr(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	expected := filepath.Join(dir, "src", filepath.Base(dir)+".cr")
	require.NoError(t, os.WriteFile(expected, []byte("puts \"hi\"\n"), 0o644))

	require.Equal(t, expected, discoverMainFile(dir))
}

func TestDiscoverMainFileUsesShardYMLTarget(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	shardYML := "name: app\nversion: 0.1.0\ntargets:\n  app:\n    main: src/app.cr\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shard.yml"), []byte(shardYML), 0o644))
	mainPath := filepath.Join(dir, "src", "app.cr")
	require.NoError(t, os.WriteFile(mainPath, []byte("puts 1\n"), 0o644))

	require.Equal(t, mainPath, discoverMainFile(dir))
}

func TestDiscoverMainFileReturnsEmptyWhenNothingMatches(t *testing.T) {
	dir := t.TempDir()
	require.Equal(t, "", discoverMainFile(dir))
}

func TestWriteIfChangedSkipsIdenticalContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.cr")
	o := NewProcessOracle(config.ServerConfig{OracleEnabled: false}, nil)

	require.NoError(t, o.writeIfChanged(path, "class A\nend\n"))
	info1, err := os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, o.writeIfChanged(path, "class A\nend\n"))
	info2, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, info1.ModTime(), info2.ModTime())

	require.NoError(t, o.writeIfChanged(path, "class B\nend\n"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "class B\nend\n", string(data))
}

func TestNewProcessOracleDisabledIsNeverAvailable(t *testing.T) {
	o := NewProcessOracle(config.ServerConfig{OracleEnabled: false, OracleBinary: "crystal"}, nil)
	require.False(t, o.Available())
	require.Empty(t, o.Implementations(nil, "f.cr", 0, 0, ""))
	require.Empty(t, o.Context(nil, "f.cr", 0, 0, ""))
}
