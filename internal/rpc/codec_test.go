package rpc

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodecWriteMessageFramesWithContentLength(t *testing.T) {
	var buf bytes.Buffer
	c := NewCodec(strings.NewReader(""), &buf)
	require.NoError(t, c.WriteMessage(map[string]string{"a": "b"}))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "Content-Length: "))
	require.Contains(t, out, "\r\n\r\n")
	require.True(t, strings.HasSuffix(out, `{"a":"b"}`))
}

func TestCodecReadMessageRoundTrip(t *testing.T) {
	body := `{"jsonrpc":"2.0","id":1,"method":"initialize"}`
	raw := "Content-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n" + body
	c := NewCodec(strings.NewReader(raw), &bytes.Buffer{})

	got, err := c.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, body, string(got))
}

func TestCodecReadMessageRejectsMissingContentLength(t *testing.T) {
	raw := "X-Custom: 1\r\n\r\n{}"
	c := NewCodec(strings.NewReader(raw), &bytes.Buffer{})
	_, err := c.ReadMessage()
	require.ErrorIs(t, err, ErrInvalidContentLength)
}
