// Package lspserver is the inbound LSP surface: it speaks framed JSON-RPC
// over this process's stdin and stdout. It owns the document store and job
// tracker, forwards text-document notifications to the former, and turns
// workspace/executeCommand requests into coordinator jobs.
package lspserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/lexcodex/agentlsp/internal/coordinator"
	"github.com/lexcodex/agentlsp/internal/docstore"
	"github.com/lexcodex/agentlsp/internal/jobtracker"
	"github.com/lexcodex/agentlsp/internal/locator"
)

const implFunctionCommand = "amp.implFunction"

// Server is the JSON-RPC handler plus the connection it is bound to. It is
// built in two phases: New wires the Document Store and Job Tracker, then
// SetCoordinator attaches the Edit Coordinator once constructed (the
// Coordinator takes the Server itself as its Notifier, so the Coordinator
// cannot be built before the Server exists).
type Server struct {
	docs     *docstore.Store
	jobs     *jobtracker.Tracker
	capacity int
	backend  string
	logger   *log.Logger

	mu            sync.Mutex
	conn          *jsonrpc2.Conn
	coord         *coordinator.Coordinator
	exitRequested bool
}

// New builds a Server without a Coordinator attached yet. Call
// SetCoordinator before Serve.
func New(docs *docstore.Store, jobs *jobtracker.Tracker, capacity int, backend string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{docs: docs, jobs: jobs, capacity: capacity, backend: backend, logger: logger}
}

// SetCoordinator attaches the Edit Coordinator. Must be called before Serve.
func (s *Server) SetCoordinator(coord *coordinator.Coordinator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coord = coord
}

// Serve runs the inbound message loop over stdin/stdout until the
// connection is closed.
func (s *Server) Serve(ctx context.Context) error {
	stream := jsonrpc2.NewBufferedStream(stdioReadWriteCloser{os.Stdin, os.Stdout}, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(s.handle))

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	<-conn.DisconnectNotify()

	s.mu.Lock()
	clean := s.exitRequested
	s.mu.Unlock()
	if !clean {
		return fmt.Errorf("transport closed without an exit notification")
	}
	return nil
}

func (s *Server) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(ctx)
	case "initialized":
		s.notify("agent/backendInfo", backendInfoParams{Name: s.backend})
		return nil, nil
	case "shutdown":
		return nil, nil
	case "exit":
		s.mu.Lock()
		s.exitRequested = true
		s.mu.Unlock()
		go func() { _ = conn.Close() }()
		return nil, nil
	case "textDocument/didOpen":
		return nil, s.handleDidOpen(req)
	case "textDocument/didChange":
		return nil, s.handleDidChange(req)
	case "textDocument/codeAction":
		return s.handleCodeAction(req)
	case "textDocument/completion":
		return nil, nil
	case "workspace/executeCommand":
		return s.handleExecuteCommand(ctx, req)
	default:
		if req.Notif {
			return nil, nil
		}
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: fmt.Sprintf("method not handled: %s", req.Method)}
	}
}

func (s *Server) handleInitialize(ctx context.Context) (interface{}, error) {
	result := protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncKindIncremental,
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{"."},
			},
			CodeActionProvider: &protocol.CodeActionOptions{
				CodeActionKinds: []protocol.CodeActionKind{protocol.QuickFix},
			},
			ExecuteCommandProvider: &protocol.ExecuteCommandOptions{
				Commands: []string{implFunctionCommand},
			},
		},
	}

	return result, nil
}

func (s *Server) handleDidOpen(req *jsonrpc2.Request) error {
	var params protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		return fmt.Errorf("decode didOpen: %w", err)
	}
	doc := params.TextDocument
	s.docs.Open(string(doc.URI), doc.Text, int32(doc.Version), string(doc.LanguageID))
	return nil
}

func (s *Server) handleDidChange(req *jsonrpc2.Request) error {
	var params didChangeParams
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		return fmt.Errorf("decode didChange: %w", err)
	}
	changes := make([]docstore.ContentChange, 0, len(params.ContentChanges))
	for _, c := range params.ContentChanges {
		if c.Range == nil {
			changes = append(changes, docstore.ContentChange{HasRange: false, Text: c.Text})
			continue
		}
		changes = append(changes, docstore.ContentChange{
			HasRange:  true,
			StartLine: int(c.Range.Start.Line), StartChar: int(c.Range.Start.Character),
			EndLine: int(c.Range.End.Line), EndChar: int(c.Range.End.Character),
			Text: c.Text,
		})
	}
	s.docs.ApplyChanges(params.TextDocument.URI, params.TextDocument.Version, changes)
	return nil
}

func (s *Server) handleCodeAction(req *jsonrpc2.Request) (interface{}, error) {
	var params protocol.CodeActionParams
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		return nil, fmt.Errorf("decode codeAction: %w", err)
	}
	uri := string(params.TextDocument.URI)
	doc, ok := s.docs.Get(uri)
	if !ok {
		return []protocol.CodeAction{}, nil
	}
	line := params.Range.Start.Line
	character := params.Range.Start.Character
	args := []interface{}{uri, line, character, doc.Version, doc.LanguageID}

	action := protocol.CodeAction{
		Title: "Implement function with Amp",
		Kind:  protocol.QuickFix,
		Command: &protocol.Command{
			Title:     "Implement function with Amp",
			Command:   implFunctionCommand,
			Arguments: args,
		},
	}
	return []protocol.CodeAction{action}, nil
}

func (s *Server) handleExecuteCommand(ctx context.Context, req *jsonrpc2.Request) (interface{}, error) {
	var raw struct {
		Command   string            `json:"command"`
		Arguments []json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(*req.Params, &raw); err != nil {
		return nil, invalidParams("malformed executeCommand request")
	}
	if raw.Command != implFunctionCommand {
		return nil, invalidParams(fmt.Sprintf("unknown command %q", raw.Command))
	}

	args, err := parseImplFunctionArgs(raw.Arguments)
	if err != nil {
		return nil, invalidParams(err.Error())
	}

	doc, ok := s.docs.Get(args.URI)
	if !ok {
		return nil, invalidParams(fmt.Sprintf("unknown document %q", args.URI))
	}

	if s.jobs.ActiveCount(args.URI) >= s.capacity {
		return nil, invalidParams(fmt.Sprintf("Maximum concurrent implementations (%d) reached for this file. Please wait.", s.capacity))
	}

	lines := splitLines(doc.Text)
	identifier := ""
	if startLine, ok := locator.FindStart(lines, int(args.Line)); ok {
		identifier = lines[startLine]
	}

	s.mu.Lock()
	coord := s.coord
	s.mu.Unlock()
	if coord == nil {
		return nil, invalidParams("server not ready")
	}

	coord.Spawn(ctx, coordinator.SpawnParams{
		JobID:              newJobID(),
		URI:                args.URI,
		FilePath:           uriToFilePath(args.URI),
		Line:               int(args.Line),
		Character:          int(args.Character),
		LanguageID:         args.LanguageID,
		DocText:            doc.Text,
		DocVersion:         doc.Version,
		FunctionIdentifier: identifier,
		PendingID:          args.PendingID,
	})

	return map[string]bool{"ok": true}, nil
}

// NotifyProgress implements coordinator.Notifier.
func (s *Server) NotifyProgress(uri, jobID string, line int, preview, pendingID string) {
	s.notify("amp/implFunctionProgress", progressParams{
		JobID: jobID, URI: uri, Line: uint32(line), Preview: preview, PendingID: pendingID,
	})
}

// NotifyJobCompleted implements coordinator.Notifier.
func (s *Server) NotifyJobCompleted(uri, jobID string, success bool, errMsg, pendingID string) {
	var errPtr *string
	if !success {
		errPtr = &errMsg
	}
	s.notify("amp/jobCompleted", jobCompletedParams{
		JobID: jobID, URI: uri, Success: success, Error: errPtr, PendingID: pendingID,
	})
}

// ApplyEdit implements coordinator.Notifier: it sends a whole-document
// workspace/applyEdit request versioned against the snapshot the worker
// used. Whole-file replacements compose under concurrent jobs where
// range-based edits would not.
func (s *Server) ApplyEdit(ctx context.Context, uri string, version int32, newText string) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("no active connection")
	}

	params := protocol.ApplyWorkspaceEditParams{
		Edit: protocol.WorkspaceEdit{
			DocumentChanges: []protocol.TextDocumentEdit{{
				TextDocument: protocol.OptionalVersionedTextDocumentIdentifier{
					TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
					Version:                &version,
				},
				Edits: []protocol.TextEdit{{
					Range:   wholeDocumentRange,
					NewText: newText,
				}},
			}},
		},
	}

	var result struct {
		Applied bool `json:"applied"`
	}
	if err := conn.Call(ctx, "workspace/applyEdit", params, &result); err != nil {
		return fmt.Errorf("applyEdit: %w", err)
	}
	return nil
}

func (s *Server) notify(method string, params interface{}) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}
	if err := conn.Notify(context.Background(), method, params); err != nil {
		s.logger.Printf("%s notify failed: %v", method, err)
	}
}

func invalidParams(msg string) *jsonrpc2.Error {
	return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: msg}
}
