// Package server wires the wire codec, dispatch core, document store,
// workspace index, compiler oracle, and semantic analyzer into one running
// LSP server — the glue the teacher keeps inline in Server.Run()'s method
// switch, here expressed as handler registration against internal/rpc's
// Dispatcher (spec.md §4.B).
package server

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/navid-m/liger/internal/analyzer"
	"github.com/navid-m/liger/internal/config"
	"github.com/navid-m/liger/internal/crystalscan"
	"github.com/navid-m/liger/internal/document"
	"github.com/navid-m/liger/internal/oracle"
	"github.com/navid-m/liger/internal/protocol"
	"github.com/navid-m/liger/internal/rpc"
	"github.com/navid-m/liger/internal/workspace"
)

// Server owns every component and the Dispatcher they're registered against.
type Server struct {
	cfg   config.ServerConfig
	log   *zap.Logger
	docs  *document.Store
	index *workspace.Index
	oraq  oracle.Oracle
	ana   *analyzer.Analyzer
	disp  *rpc.Dispatcher
	root  string
}

// New constructs a fully-wired Server reading/writing the given stdio
// streams for the given workspace root.
func New(root string, cfg config.ServerConfig, in io.Reader, out io.Writer, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Join(root, ".liger-cache"), 0o755); err != nil {
		log.Warn("could not create .liger-cache directory", zap.Error(err))
	}
	docs := document.NewStore()
	var oraq oracle.Oracle = oracle.NewProcessOracle(cfg, log)
	index := workspace.NewIndex(root, cfg, oraq.(*oracle.ProcessOracle), log)
	ana := analyzer.New(root, docs, index, oraq, cfg, log)
	codec := rpc.NewCodec(in, out)
	disp := rpc.NewDispatcher(codec, log)

	s := &Server{cfg: cfg, log: log, docs: docs, index: index, oraq: oraq, ana: ana, disp: disp, root: root}
	s.registerHandlers()
	return s
}

// Run drives the server's request loop and returns the process exit code.
func (s *Server) Run() int {
	defer s.index.Close()
	return s.disp.Run()
}

func (s *Server) registerHandlers() {
	s.disp.HandleRequest("initialize", s.handleInitialize)
	s.disp.HandleRequest("shutdown", func(json.RawMessage) (any, error) { return nil, nil })
	s.disp.HandleRequest("textDocument/definition", s.handleDefinition)
	s.disp.HandleRequest("textDocument/hover", s.handleHover)
	s.disp.HandleRequest("textDocument/completion", s.handleCompletion)
	s.disp.HandleRequest("textDocument/rename", s.handleRename)
	s.disp.HandleRequest("textDocument/prepareRename", s.handlePrepareRename)
	s.disp.HandleRequest("textDocument/references", s.handleReferences)
	s.disp.HandleRequest("textDocument/documentSymbol", s.handleDocumentSymbol)
	s.disp.HandleRequest("textDocument/signatureHelp", func(json.RawMessage) (any, error) { return nil, nil })
	s.disp.HandleRequest("workspace/symbol", s.handleWorkspaceSymbol)

	s.disp.HandleNotification("initialized", func(json.RawMessage) {})
	s.disp.HandleNotification("textDocument/didOpen", s.handleDidOpen)
	s.disp.HandleNotification("textDocument/didChange", s.handleDidChange)
	s.disp.HandleNotification("textDocument/didClose", s.handleDidClose)
	s.disp.HandleNotification("textDocument/didSave", s.handleDidSave)
}

func (s *Server) handleInitialize(params json.RawMessage) (any, error) {
	var p protocol.InitializeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, protocol.NewError(protocol.CodeInvalidParams, "invalid params: initialize", nil)
	}
	return map[string]any{
		"capabilities": map[string]any{
			"positionEncoding": "utf-16",
			"textDocumentSync": map[string]any{
				"openClose": true,
				"change":    1,
				"save":      true,
			},
			"completionProvider": map[string]any{
				"triggerCharacters": []string{".", ":", "@"},
				"resolveProvider":   false,
			},
			"hoverProvider":           true,
			"definitionProvider":      true,
			"referencesProvider":      true,
			"documentSymbolProvider":  true,
			"workspaceSymbolProvider": true,
			"renameProvider":          map[string]any{"prepareProvider": true},
			"signatureHelpProvider":   map[string]any{"triggerCharacters": []string{"(", ","}},
		},
		"serverInfo": map[string]any{"name": "liger", "version": config.Version},
	}, nil
}

func (s *Server) handleDidOpen(params json.RawMessage) {
	var p protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		return
	}
	doc := s.docs.Open(p.TextDocument.URI, p.TextDocument.LanguageID, p.TextDocument.Version, p.TextDocument.Text)
	if path, err := oracle.URIToPath(doc.URI); err == nil {
		s.index.UpdateSource(doc.URI, path, doc.Text)
	}
	s.publishDiagnostics(doc.URI, doc.Text)
}

func (s *Server) handleDidChange(params json.RawMessage) {
	var p protocol.DidChangeTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		return
	}
	changes := make([]document.Change, 0, len(p.ContentChanges))
	for _, c := range p.ContentChanges {
		ch := document.Change{NewText: c.Text}
		if c.Range != nil {
			ch.Range = &document.RangeSpan{
				StartLine: c.Range.Start.Line, StartChar: c.Range.Start.Character,
				EndLine: c.Range.End.Line, EndChar: c.Range.End.Character,
			}
		}
		changes = append(changes, ch)
	}
	s.docs.Change(p.TextDocument.URI, p.TextDocument.Version, changes)
	doc := s.docs.Get(p.TextDocument.URI)
	if doc == nil {
		return
	}
	if path, err := oracle.URIToPath(doc.URI); err == nil {
		s.index.UpdateSource(doc.URI, path, doc.Text)
	}
	s.publishDiagnostics(doc.URI, doc.Text)
}

func (s *Server) handleDidSave(params json.RawMessage) {
	var p protocol.DidCloseTextDocumentParams // didSave shares the same textDocument identifier shape
	if err := json.Unmarshal(params, &p); err != nil {
		return
	}
	doc := s.docs.Get(p.TextDocument.URI)
	if doc == nil {
		return
	}
	s.publishDiagnostics(doc.URI, doc.Text)
}

func (s *Server) handleDidClose(params json.RawMessage) {
	var p protocol.DidCloseTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		return
	}
	s.docs.Close(p.TextDocument.URI)
}

func (s *Server) publishDiagnostics(uri, text string) {
	diags := crystalscan.Diagnose(text)
	if diags == nil {
		diags = []protocol.Diagnostic{}
	}
	s.disp.Notify("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{URI: uri, Diagnostics: diags})
}

func (s *Server) handleDefinition(params json.RawMessage) (any, error) {
	var p protocol.TextDocumentPositionParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, protocol.NewError(protocol.CodeInvalidParams, "invalid params: definition", nil)
	}
	return s.ana.GotoDefinition(p.TextDocument.URI, p.Position), nil
}

func (s *Server) handleHover(params json.RawMessage) (any, error) {
	var p protocol.TextDocumentPositionParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, protocol.NewError(protocol.CodeInvalidParams, "invalid params: hover", nil)
	}
	return s.ana.Hover(p.TextDocument.URI, p.Position), nil
}

func (s *Server) handleCompletion(params json.RawMessage) (any, error) {
	var p protocol.TextDocumentPositionParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, protocol.NewError(protocol.CodeInvalidParams, "invalid params: completion", nil)
	}
	return s.ana.Completion(p.TextDocument.URI, p.Position), nil
}

func (s *Server) handleRename(params json.RawMessage) (any, error) {
	var p protocol.RenameParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, protocol.NewError(protocol.CodeInvalidParams, "invalid params: rename", nil)
	}
	return s.ana.Rename(p.TextDocument.URI, p.Position, p.NewName), nil
}

func (s *Server) handlePrepareRename(params json.RawMessage) (any, error) {
	var p protocol.TextDocumentPositionParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, protocol.NewError(protocol.CodeInvalidParams, "invalid params: prepareRename", nil)
	}
	return s.ana.PrepareRename(p.TextDocument.URI, p.Position), nil
}

func (s *Server) handleReferences(params json.RawMessage) (any, error) {
	var p protocol.ReferenceParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, protocol.NewError(protocol.CodeInvalidParams, "invalid params: references", nil)
	}
	refs := s.ana.FindReferences(p.TextDocument.URI, p.Position, p.Context.IncludeDeclaration)
	if refs == nil {
		refs = []protocol.Location{}
	}
	return refs, nil
}

func (s *Server) handleDocumentSymbol(params json.RawMessage) (any, error) {
	var p protocol.DocumentSymbolParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, protocol.NewError(protocol.CodeInvalidParams, "invalid params: documentSymbol", nil)
	}
	doc := s.docs.Get(p.TextDocument.URI)
	if doc == nil {
		return []protocol.DocumentSymbol{}, nil
	}
	path, err := oracle.URIToPath(doc.URI)
	if err != nil {
		path = doc.URI
	}
	return crystalscan.DocumentSymbols(path, doc.Text), nil
}

func (s *Server) handleWorkspaceSymbol(params json.RawMessage) (any, error) {
	var p protocol.WorkspaceSymbolParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, protocol.NewError(protocol.CodeInvalidParams, "invalid params: workspace/symbol", nil)
	}
	syms := s.ana.WorkspaceSymbol(p.Query)
	if syms == nil {
		syms = []protocol.SymbolInformation{}
	}
	return syms, nil
}
