// Package lsp implements a diagnostics-only language server: every
// textDocument/didOpen and didChange notification runs the lexer→parser→SSA
// pipeline over the document and republishes its CompilerError (if any) as
// a single LSP diagnostic. No hover, completion, or semantic tokens.
package lsp

import (
	"fmt"
	"log"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"kanso/internal/parser"
	"kanso/internal/types"
)

// KansoHandler implements the LSP server handlers for the kanso language.
type KansoHandler struct {
	mu      sync.RWMutex
	content map[string]string
}

// NewKansoHandler creates and returns a new KansoHandler instance.
func NewKansoHandler() *KansoHandler {
	return &KansoHandler{
		content: make(map[string]string),
	}
}

// Initialize responds to the LSP client's initialize request, advertising
// only text sync and diagnostics publishing.
func (h *KansoHandler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Println("LSP Initialize called")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
		},
	}, nil
}

// Initialized is called after the client completes initialization.
func (h *KansoHandler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Println("kanso LSP initialized")
	return nil
}

// Shutdown handles the LSP shutdown request.
func (h *KansoHandler) Shutdown(ctx *glsp.Context) error {
	log.Println("kanso LSP shutdown")
	return nil
}

// SetTrace handles the $/setTrace notification; tracing is not implemented.
func (h *KansoHandler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// TextDocumentDidOpen handles file open notifications from the editor.
func (h *KansoHandler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	log.Printf("opened file: %s\n", params.TextDocument.URI)
	h.recheck(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

// TextDocumentDidChange handles file change notifications from the editor.
func (h *KansoHandler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	log.Printf("changed file: %s\n", params.TextDocument.URI)

	if len(params.ContentChanges) == 0 {
		return nil
	}
	// TextDocumentSyncKindFull means each change event carries the entire
	// new document text.
	change, ok := params.ContentChanges[len(params.ContentChanges)-1].(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return fmt.Errorf("unsupported content change event for %s", params.TextDocument.URI)
	}
	h.recheck(ctx, params.TextDocument.URI, change.Text)
	return nil
}

// TextDocumentDidClose handles file close notifications from the editor.
func (h *KansoHandler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	log.Printf("closed file: %s\n", params.TextDocument.URI)

	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", params.TextDocument.URI, err)
	}

	h.mu.Lock()
	delete(h.content, path)
	h.mu.Unlock()
	return nil
}

// recheck parses text and publishes its diagnostics (an empty list clears
// any previously reported error).
func (h *KansoHandler) recheck(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	path, err := uriToPath(uri)
	if err != nil {
		log.Printf("failed to convert URI %s: %s\n", uri, err)
		return
	}

	h.mu.Lock()
	h.content[path] = text
	h.mu.Unlock()

	_, err = parser.Parse(types.NewContext(), strings.NewReader(text))
	diagnostics := ConvertError(err)
	sendDiagnosticNotification(ctx, uri, diagnostics)
}

func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path), nil
}

func sendDiagnosticNotification(ctx *glsp.Context, uri protocol.URI, diagnostics []protocol.Diagnostic) {
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
