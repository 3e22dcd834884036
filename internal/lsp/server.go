// Package lsp serves cognitive complexity diagnostics over the Language
// Server Protocol.
package lsp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/Sumatoshi-tech/cognit/internal/scan"
	"github.com/Sumatoshi-tech/cognit/pkg/lang"
	"github.com/Sumatoshi-tech/cognit/pkg/report"
	"github.com/Sumatoshi-tech/cognit/pkg/safeconv"
	"github.com/Sumatoshi-tech/cognit/pkg/version"
)

const serverName = "cognit"

// DefaultThreshold flags functions whose score reaches the high risk
// bucket.
const DefaultThreshold = 15

// DocumentStore is a thread-safe store for document contents keyed by URI.
type DocumentStore struct {
	documents map[string]string // URI -> content.
	mu        sync.RWMutex
}

// NewDocumentStore creates a new empty DocumentStore.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]string),
	}
}

// Set stores document content for the given URI.
func (ds *DocumentStore) Set(uri, content string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.documents[uri] = content
}

// Get retrieves document content by URI.
func (ds *DocumentStore) Get(uri string) (string, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	content, ok := ds.documents[uri]

	return content, ok
}

// Delete removes document content by URI.
func (ds *DocumentStore) Delete(uri string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	delete(ds.documents, uri)
}

// Options configures the server. Zero values select defaults.
type Options struct {
	// Threshold is the score at which a function gets a diagnostic.
	Threshold int

	// Registry supplies the languages to detect and parse. Nil selects
	// the built-in registry.
	Registry *lang.Registry

	// Logger receives scoring diagnostics. Nil selects the default
	// logger.
	Logger *slog.Logger
}

// Server publishes complexity diagnostics for open documents.
type Server struct {
	store     *DocumentStore
	handler   protocol.Handler
	threshold int
	registry  *lang.Registry
	logger    *slog.Logger
}

// NewServer creates a diagnostics server with default handlers.
func NewServer(opts Options) *Server {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	registry := opts.Registry
	if registry == nil {
		registry = lang.DefaultRegistry()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	srv := &Server{
		store:     NewDocumentStore(),
		threshold: threshold,
		registry:  registry,
		logger:    logger,
	}

	srv.handler = protocol.Handler{
		Initialize:            srv.initialize,
		Initialized:           srv.initialized,
		Shutdown:              srv.shutdown,
		SetTrace:              srv.setTrace,
		TextDocumentDidOpen:   srv.didOpen,
		TextDocumentDidChange: srv.didChange,
		TextDocumentDidSave:   srv.didSave,
		TextDocumentDidClose:  srv.didClose,
	}

	return srv
}

// Run serves on stdio until the stream closes.
func (srv *Server) Run() error {
	lspServer := server.NewServer(&srv.handler, serverName, false)

	return lspServer.RunStdio()
}

func (srv *Server) initialize(_ *glsp.Context, _ *protocol.InitializeParams) (any, error) {
	capabilities := srv.handler.CreateServerCapabilities()
	ver := version.Version

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &ver,
		},
	}, nil
}

func (srv *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	return nil
}

func (srv *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)

	return nil
}

func (srv *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)

	return nil
}

func (srv *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	srv.store.Set(uri, text)
	srv.publishDiagnostics(ctx, uri)

	return nil
}

func (srv *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	if len(params.ContentChanges) > 0 {
		if change, changeOK := params.ContentChanges[0].(map[string]any); changeOK {
			if text, textOK := change["text"].(string); textOK {
				srv.store.Set(uri, text)
				srv.publishDiagnostics(ctx, uri)
			}
		}
	}

	return nil
}

func (srv *Server) didSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI

	if _, ok := srv.store.Get(uri); ok {
		srv.publishDiagnostics(ctx, uri)
	}

	return nil
}

func (srv *Server) didClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	srv.store.Delete(uri)

	return nil
}

// publishDiagnostics rescores the document and pushes the result. An
// empty list clears previously published diagnostics.
func (srv *Server) publishDiagnostics(ctx *glsp.Context, uri string) {
	content, ok := srv.store.Get(uri)
	if !ok {
		return
	}

	ctx.Notify("textDocument/publishDiagnostics", &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: srv.diagnosticsFor(uri, content),
	})
}

// diagnosticsFor scores one document. Unsupported and unparsable
// documents report no diagnostics.
func (srv *Server) diagnosticsFor(uri, content string) []protocol.Diagnostic {
	path := pathFromURI(uri)

	language, ok := srv.registry.Detect(path, []byte(content))
	if !ok {
		return []protocol.Diagnostic{}
	}

	file, err := scan.ScoreBytes(context.Background(), language, path, []byte(content))
	if err != nil {
		srv.logger.Debug("scoring failed", "uri", uri, "error", err)

		return []protocol.Diagnostic{}
	}

	return diagnosticsOf(file, srv.threshold)
}

// diagnosticsOf flags every function at or over the threshold.
func diagnosticsOf(file report.File, threshold int) []protocol.Diagnostic {
	diagnostics := make([]protocol.Diagnostic, 0, len(file.Functions))

	for _, fn := range file.Functions {
		if fn.Complexity < threshold {
			continue
		}

		severity := protocol.DiagnosticSeverityWarning
		source := serverName
		message := fmt.Sprintf("%s has cognitive complexity %d (threshold %d, risk %s)",
			fn.Name, fn.Complexity, threshold, fn.Risk)

		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    rangeOf(fn),
			Severity: &severity,
			Source:   &source,
			Message:  message,
		})
	}

	return diagnostics
}

// rangeOf converts the function's 1-based line span to a protocol range.
func rangeOf(fn report.Function) protocol.Range {
	start := fn.StartLine - 1
	if start < 0 {
		start = 0
	}

	end := fn.EndLine - 1
	if end < start {
		end = start
	}

	return protocol.Range{
		Start: protocol.Position{Line: safeconv.MustIntToUint32(start), Character: 0},
		End:   protocol.Position{Line: safeconv.MustIntToUint32(end), Character: 0},
	}
}

// pathFromURI strips the file scheme so language detection sees a
// filesystem path.
func pathFromURI(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}
