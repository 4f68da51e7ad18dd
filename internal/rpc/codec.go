// Package rpc implements components A and B: the Content-Length framed
// JSON-RPC wire codec and the request/notification dispatch core, including
// the initialize/initialized/shutdown/exit lifecycle state machine.
// Grounded on the teacher's Server.Run() header-parsing loop (size caps,
// case-insensitive header parsing, streamed body decode) and its
// reply/replyError/write trio, generalized into a standalone Codec plus a
// registration-table Dispatcher instead of one giant method switch.
package rpc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/navid-m/liger/internal/protocol"
)

const (
	maxHeaderBytes   = 32 << 10
	maxHeaderLines   = 100
	maxContentLength = 8 << 20
)

// Codec reads and writes Content-Length framed JSON-RPC messages over a
// stream, mirroring LSP's base protocol framing exactly.
type Codec struct {
	in  *bufio.Reader
	out io.Writer
}

// NewCodec wraps r/w in a Codec.
func NewCodec(r io.Reader, w io.Writer) *Codec {
	return &Codec{in: bufio.NewReader(r), out: w}
}

// ErrHeadersTooLarge is returned by ReadMessage when the header block
// exceeds the configured safety limits.
var ErrHeadersTooLarge = fmt.Errorf("headers too large")

// ErrInvalidContentLength is returned when no valid, in-range Content-Length
// header was present.
var ErrInvalidContentLength = fmt.Errorf("invalid content length")

// ReadMessage reads one framed JSON-RPC message body. Returns io.EOF (or the
// underlying read error) when the stream ends — a transport-fatal condition
// the caller should treat as "terminate process" (spec.md §7).
func (c *Codec) ReadMessage() ([]byte, error) {
	contentLength := 0
	headerBytes := 0
	headerLines := 0

	for {
		line, err := c.in.ReadString('\n')
		if err != nil {
			return nil, err
		}
		headerBytes += len(line)
		headerLines++
		if headerBytes > maxHeaderBytes || headerLines > maxHeaderLines {
			return nil, ErrHeadersTooLarge
		}
		if line == "\r\n" || line == "\n" {
			break
		}
		if idx := strings.IndexByte(line, ':'); idx >= 0 {
			name := strings.TrimSpace(strings.ToLower(line[:idx]))
			if name == "content-length" {
				val := strings.TrimSpace(line[idx+1:])
				if n, err := strconv.Atoi(val); err == nil {
					contentLength = n
				}
			}
		}
	}

	if contentLength <= 0 || contentLength > maxContentLength {
		return nil, ErrInvalidContentLength
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(c.in, body); err != nil {
		return nil, err
	}
	return body, nil
}

// WriteMessage frames and writes v as a single Content-Length message.
func (c *Codec) WriteMessage(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(c.out, "Content-Length: "+strconv.Itoa(len(data))+"\r\n\r\n"); err != nil {
		return err
	}
	_, err = c.out.Write(data)
	return err
}

// WriteResponse frames a JSON-RPC response.
func (c *Codec) WriteResponse(resp protocol.Response) error {
	resp.JSONRPC = "2.0"
	return c.WriteMessage(resp)
}

// WriteNotification frames an outgoing notification (used for diagnostics).
func (c *Codec) WriteNotification(n protocol.Notification) error {
	n.JSONRPC = "2.0"
	return c.WriteMessage(n)
}
