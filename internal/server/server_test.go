package server

import (
	"bytes"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/navid-m/liger/internal/config"
)

func frame(body string) string {
	return "Content-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n" + body
}

// TestServerLifecycleInitializeOpenHoverShutdownExit drives a scripted
// client session through a real Server end to end, the way the teacher's
// lsp package is exercised by its own Run() integration test.
func TestServerLifecycleInitializeOpenHoverShutdownExit(t *testing.T) {
	root := t.TempDir()
	uri := "file://" + filepath.Join(root, "greeter.cr")
	src := "class Greeter\n  def hello\n  end\nend\n"

	didOpen := `{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{"textDocument":{"uri":"` + uri + `","languageId":"crystal","version":1,"text":"class Greeter\n  def hello\n  end\nend\n"}}}`
	hover := `{"jsonrpc":"2.0","id":2,"method":"textDocument/hover","params":{"textDocument":{"uri":"` + uri + `"},"position":{"line":1,"character":6}}}`

	in := frame(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"rootUri":"file://` + root + `"}}`) +
		frame(didOpen) +
		frame(hover) +
		frame(`{"jsonrpc":"2.0","id":3,"method":"shutdown"}`) +
		frame(`{"jsonrpc":"2.0","method":"exit"}`)

	var out bytes.Buffer
	cfg := config.ServerConfig{ScanDebounceSeconds: 5, MaxProjectDepth: 10, MaxLibDepth: 3, MaxStdlibDepth: 2, OracleEnabled: false}
	s := New(root, cfg, strings.NewReader(in), &out, nil)

	code := s.Run()
	require.Equal(t, 0, code)

	response := out.String()
	require.Contains(t, response, `"capabilities"`)
	require.Contains(t, response, `"publishDiagnostics"`)
	require.Contains(t, response, "def hello")
	_ = src
}

func TestServerRejectsHoverBeforeInitialize(t *testing.T) {
	root := t.TempDir()
	in := frame(`{"jsonrpc":"2.0","id":1,"method":"textDocument/hover","params":{}}`) +
		frame(`{"jsonrpc":"2.0","method":"exit"}`)

	var out bytes.Buffer
	cfg := config.ServerConfig{ScanDebounceSeconds: 5, MaxProjectDepth: 10, MaxLibDepth: 3, MaxStdlibDepth: 2, OracleEnabled: false}
	s := New(root, cfg, strings.NewReader(in), &out, nil)

	code := s.Run()
	require.Equal(t, 1, code)
	require.Contains(t, out.String(), "-32002")
}
