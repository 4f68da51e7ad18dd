package rpc

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func frame(body string) string {
	return "Content-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n" + body
}

func TestDispatcherRejectsRequestsBeforeInitialize(t *testing.T) {
	in := frame(`{"jsonrpc":"2.0","id":1,"method":"textDocument/hover"}`)
	var out bytes.Buffer
	d := NewDispatcher(NewCodec(strings.NewReader(in), &out), nil)
	d.HandleRequest("textDocument/hover", func(p json.RawMessage) (any, error) { return "ok", nil })

	code := d.Run()
	require.Equal(t, 1, code)
	require.Contains(t, out.String(), "-32002")
}

func TestDispatcherCleanShutdownExitSequence(t *testing.T) {
	in := frame(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`) +
		frame(`{"jsonrpc":"2.0","id":2,"method":"shutdown"}`) +
		frame(`{"jsonrpc":"2.0","method":"exit"}`)
	var out bytes.Buffer
	d := NewDispatcher(NewCodec(strings.NewReader(in), &out), nil)
	d.HandleRequest("initialize", func(p json.RawMessage) (any, error) { return map[string]any{"capabilities": map[string]any{}}, nil })
	d.HandleRequest("shutdown", func(p json.RawMessage) (any, error) { return nil, nil })

	code := d.Run()
	require.Equal(t, 0, code)
	require.Equal(t, StateExited, d.State())
}

func TestDispatcherExitWithoutShutdownReturnsOne(t *testing.T) {
	in := frame(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`) +
		frame(`{"jsonrpc":"2.0","method":"exit"}`)
	var out bytes.Buffer
	d := NewDispatcher(NewCodec(strings.NewReader(in), &out), nil)
	d.HandleRequest("initialize", func(p json.RawMessage) (any, error) { return map[string]any{}, nil })

	code := d.Run()
	require.Equal(t, 1, code)
}

func TestDispatcherRecoversFromHandlerPanic(t *testing.T) {
	in := frame(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`) +
		frame(`{"jsonrpc":"2.0","id":2,"method":"textDocument/hover"}`)
	var out bytes.Buffer
	d := NewDispatcher(NewCodec(strings.NewReader(in), &out), nil)
	d.HandleRequest("initialize", func(p json.RawMessage) (any, error) { return map[string]any{}, nil })
	d.HandleRequest("textDocument/hover", func(p json.RawMessage) (any, error) { panic("boom") })

	_ = d.Run()
	require.Contains(t, out.String(), "-32603")
}

func TestDispatcherMethodNotFound(t *testing.T) {
	in := frame(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`) +
		frame(`{"jsonrpc":"2.0","id":2,"method":"bogus/thing"}`)
	var out bytes.Buffer
	d := NewDispatcher(NewCodec(strings.NewReader(in), &out), nil)
	d.HandleRequest("initialize", func(p json.RawMessage) (any, error) { return map[string]any{}, nil })

	d.HandleRequest("shutdown", func(p json.RawMessage) (any, error) { return nil, nil })
	_ = d.Run()
	require.Contains(t, out.String(), "-32601")
}
