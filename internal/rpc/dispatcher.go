package rpc

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/navid-m/liger/internal/protocol"
)

// State is the server lifecycle state machine named in spec.md §4.B.
type State int

const (
	StateCreated State = iota
	StateInitialized
	StateShuttingDown
	StateExited
)

// HandlerFunc answers one request, returning the JSON-marshalable result or
// a *protocol.ResponseError.
type HandlerFunc func(params json.RawMessage) (any, error)

// NotificationFunc handles one fire-and-forget notification.
type NotificationFunc func(params json.RawMessage)

// Dispatcher owns the Created→Initialized→ShuttingDown→Exited lifecycle and
// routes inbound messages to registered handlers by method name.
type Dispatcher struct {
	codec *Codec
	log   *zap.Logger

	state             State
	shutdownRequested bool

	requests      map[string]HandlerFunc
	notifications map[string]NotificationFunc
}

// NewDispatcher constructs an empty Dispatcher bound to codec.
func NewDispatcher(codec *Codec, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		codec:         codec,
		log:           log,
		requests:      make(map[string]HandlerFunc),
		notifications: make(map[string]NotificationFunc),
	}
}

// HandleRequest registers a handler for a request method (one that expects a response).
func (d *Dispatcher) HandleRequest(method string, fn HandlerFunc) {
	d.requests[method] = fn
}

// HandleNotification registers a handler for a notification method.
func (d *Dispatcher) HandleNotification(method string, fn NotificationFunc) {
	d.notifications[method] = fn
}

// State reports the current lifecycle state.
func (d *Dispatcher) State() State {
	return d.state
}

// Notify sends an outgoing notification (e.g. textDocument/publishDiagnostics).
func (d *Dispatcher) Notify(method string, params any) {
	if err := d.codec.WriteNotification(protocol.Notification{Method: method, Params: params}); err != nil {
		d.log.Warn("failed to write notification", zap.String("method", method), zap.Error(err))
	}
}

// Run drives the read-dispatch-reply loop until a transport-fatal condition
// (EOF, or the exit notification) ends it. Returns the process exit code
// per spec.md §6: 0 after clean shutdown, 1 if exit arrives without a
// preceding shutdown.
func (d *Dispatcher) Run() int {
	for {
		body, err := d.codec.ReadMessage()
		if err != nil {
			if err == io.EOF {
				d.log.Info("stdin closed, terminating")
				return d.exitCode()
			}
			if err == ErrHeadersTooLarge || err == ErrInvalidContentLength {
				d.replyError(nil, protocol.CodeInvalidRequest, err.Error())
				continue
			}
			d.log.Warn("transport read error, terminating", zap.Error(err))
			return d.exitCode()
		}

		var req protocol.Request
		if jsonErr := json.Unmarshal(body, &req); jsonErr != nil {
			d.replyError(nil, protocol.CodeParseError, "parse error")
			continue
		}

		if req.IsNotification() {
			d.dispatchNotification(req)
			if d.state == StateExited {
				return d.exitCode()
			}
			continue
		}
		d.dispatchRequest(req)
	}
}

func (d *Dispatcher) dispatchRequest(req protocol.Request) {
	if d.state == StateCreated && req.Method != "initialize" {
		d.replyError(req.ID, protocol.CodeServerNotInitialized, "server not initialized")
		return
	}
	if d.state == StateShuttingDown && req.Method != "shutdown" {
		d.replyError(req.ID, protocol.CodeInvalidRequest, "server is shutting down")
		return
	}

	fn, ok := d.requests[req.Method]
	if !ok {
		d.replyError(req.ID, protocol.CodeMethodNotFound, "method not found: "+req.Method)
		return
	}
	result, err := d.invokeRequest(fn, req.Params)
	if err != nil {
		if rerr, ok := err.(*protocol.ResponseError); ok {
			d.replyErrorObj(req.ID, rerr)
			return
		}
		d.replyErrorObj(req.ID, protocol.NewError(protocol.CodeInternalError, err.Error(), err.Error()))
		return
	}
	d.reply(req.ID, result)

	switch req.Method {
	case "initialize":
		d.state = StateInitialized
	case "shutdown":
		d.state = StateShuttingDown
		d.shutdownRequested = true
	}
}

func (d *Dispatcher) dispatchNotification(req protocol.Request) {
	if req.Method == "exit" {
		d.state = StateExited
		return
	}
	fn, ok := d.notifications[req.Method]
	if !ok {
		d.log.Debug("no handler for notification", zap.String("method", req.Method))
		return
	}
	d.invokeNotification(fn, req.Method, req.Params)
}

// invokeRequest calls fn with a recover guard: spec.md §7 requires that no
// unexpected panic escape dispatch, so a panicking handler is converted into
// an InternalError response instead of crashing the process.
func (d *Dispatcher) invokeRequest(fn HandlerFunc, params json.RawMessage) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("handler panicked", zap.Any("panic", r))
			err = protocol.NewError(protocol.CodeInternalError, fmt.Sprintf("internal error: %v", r), string(debug.Stack()))
		}
	}()
	return fn(params)
}

// invokeNotification mirrors invokeRequest's panic guard for notifications,
// which never produce a response but must not take the process down either.
func (d *Dispatcher) invokeNotification(fn NotificationFunc, method string, params json.RawMessage) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("notification handler panicked", zap.String("method", method), zap.Any("panic", r))
		}
	}()
	fn(params)
}

func (d *Dispatcher) reply(id json.RawMessage, result any) {
	if err := d.codec.WriteResponse(protocol.Response{ID: id, Result: result}); err != nil {
		d.log.Warn("failed to write response", zap.Error(err))
	}
}

func (d *Dispatcher) replyError(id json.RawMessage, code int, msg string) {
	d.replyErrorObj(id, protocol.NewError(code, msg, nil))
}

func (d *Dispatcher) replyErrorObj(id json.RawMessage, rerr *protocol.ResponseError) {
	if err := d.codec.WriteResponse(protocol.Response{ID: id, Error: rerr}); err != nil {
		d.log.Warn("failed to write error response", zap.Error(err))
	}
}

// exitCode implements spec.md §6: 0 after a clean shutdown (a "shutdown"
// request preceded "exit" or EOF), 1 if exit/EOF arrives without one.
func (d *Dispatcher) exitCode() int {
	if d.shutdownRequested {
		return 0
	}
	return 1
}
