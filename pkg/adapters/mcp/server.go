package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/catalog"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/runner"
	"github.com/aretw0/waypoint/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const templatesURI = "waypoint://templates"

// StateResponse is the structured result of the state-returning tools.
type StateResponse struct {
	State   *domain.Snapshot `json:"state" jsonschema_description:"The session state after the call"`
	Current *domain.Step     `json:"current,omitempty" jsonschema_description:"The step under the tour cursor"`
}

// IntentResponse is the structured result of the intent tool.
type IntentResponse struct {
	Intent  domain.Intent    `json:"intent"`
	Changed bool             `json:"changed" jsonschema_description:"False when the intent had nothing to do"`
	Pending bool             `json:"pending" jsonschema_description:"True while a delayed commit is outstanding"`
	Step    *domain.Step     `json:"step,omitempty" jsonschema_description:"The step created by submit"`
	State   *domain.Snapshot `json:"state"`
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

type intentArgs struct {
	SessionID string `json:"session_id"`
	Intent    string `json:"intent"`
	Wait      bool   `json:"wait"`
}

type draftArgs struct {
	SessionID string `json:"session_id"`
	Field     string `json:"field"`
	Value     string `json:"value"`
}

type templateArgs struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
}

type deleteArgs struct {
	SessionID string `json:"session_id"`
	StepID    string `json:"step_id"`
}

type reorderArgs struct {
	SessionID string `json:"session_id"`
	From      int    `json:"from"`
	To        int    `json:"to"`
}

// Server exposes tour sessions as an MCP server.
type Server struct {
	sessions  *session.Manager
	templates *catalog.Catalog
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(mgr *session.Manager, templates *catalog.Catalog, opts ...Option) *Server {
	s := &Server{
		sessions:  mgr,
		templates: templates,
		mcpServer: server.NewMCPServer("waypoint-mcp", strings.TrimSpace(waypoint.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.templates == nil {
		s.templates = catalog.Default()
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on the given port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))
	httpServer := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func intentNames() []string {
	names := make([]string, len(domain.Intents))
	for i, in := range domain.Intents {
		names[i] = string(in)
	}
	return names
}

func (s *Server) registerTools() {
	sessionID := mcp.WithString("session_id", mcp.Required(), mcp.Description("Tour session ID"))

	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Return the state of a tour session. Unknown IDs start a new session on the hero view."),
		sessionID,
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetState))

	s.mcpServer.AddTool(mcp.NewTool("intent",
		mcp.WithDescription("Apply a user intent: change view, move the cursor, submit or reset the draft."),
		sessionID,
		mcp.WithString("intent", mcp.Required(), mcp.Enum(intentNames()...), mcp.Description("Intent name")),
		mcp.WithBoolean("wait", mcp.Description("Wait for delayed commits before returning")),
		mcp.WithOutputSchema[IntentResponse](),
	), mcp.NewStructuredToolHandler(s.handleIntent))

	s.mcpServer.AddTool(mcp.NewTool("update_draft",
		mcp.WithDescription("Set one field of the editor draft."),
		sessionID,
		mcp.WithString("field", mcp.Required(), mcp.Enum("title", "description", "image", "category")),
		mcp.WithString("value", mcp.Required(), mcp.Description("New field value")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleUpdateDraft))

	s.mcpServer.AddTool(mcp.NewTool("select_template",
		mcp.WithDescription("Replace the editor draft with a quick template. Does not submit."),
		sessionID,
		mcp.WithString("name", mcp.Required(), mcp.Description("Template name, see list_templates")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleSelectTemplate))

	s.mcpServer.AddTool(mcp.NewTool("delete_step",
		mcp.WithDescription("Remove a step by ID. Unknown IDs are ignored."),
		sessionID,
		mcp.WithString("step_id", mcp.Required()),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleDeleteStep))

	s.mcpServer.AddTool(mcp.NewTool("reorder_steps",
		mcp.WithDescription("Move the step at position from to position to."),
		sessionID,
		mcp.WithNumber("from", mcp.Required()),
		mcp.WithNumber("to", mcp.Required()),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleReorder))

	s.mcpServer.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List the quick templates offered by the editor."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := json.Marshal(s.templates.List())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode templates: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})
}

func stateOf(app *runtime.App) StateResponse {
	snap := app.Snapshot()
	resp := StateResponse{State: snap}
	if snap.ViewState.View == domain.ViewTour {
		if step, ok := snap.CurrentStep(); ok {
			resp.Current = &step
		}
	}
	return resp
}

func required(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", name)
	}
	return nil
}

// mutate runs fn against an existing session and returns its state.
func (s *Server) mutate(ctx context.Context, id string, fn func(context.Context, *runtime.App) error) (StateResponse, error) {
	if err := required("session_id", id); err != nil {
		return StateResponse{}, err
	}
	var resp StateResponse
	err := s.sessions.Do(ctx, id, func(ctx context.Context, app *runtime.App) error {
		if err := fn(ctx, app); err != nil {
			return err
		}
		resp = stateOf(app)
		return nil
	})
	return resp, err
}

func (s *Server) handleGetState(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (StateResponse, error) {
	if err := required("session_id", args.SessionID); err != nil {
		return StateResponse{}, err
	}
	app, err := s.sessions.Open(ctx, args.SessionID)
	if err != nil {
		return StateResponse{}, err
	}
	return stateOf(app), nil
}

func (s *Server) handleIntent(ctx context.Context, _ mcp.CallToolRequest, args intentArgs) (IntentResponse, error) {
	if err := required("session_id", args.SessionID); err != nil {
		return IntentResponse{}, err
	}
	intent, err := domain.ParseIntent(args.Intent)
	if err != nil {
		return IntentResponse{}, err
	}

	var (
		out *runtime.Outcome
		app *runtime.App
	)
	err = s.sessions.Do(ctx, args.SessionID, func(ctx context.Context, a *runtime.App) error {
		var err error
		out, err = a.Dispatch(ctx, intent)
		app = a
		return err
	})
	if err != nil {
		s.logger.Debug("MCP intent rejected", "session_id", args.SessionID, "intent", intent, "err", err)
		return IntentResponse{}, err
	}
	if args.Wait {
		if err := out.Wait(ctx); err != nil {
			return IntentResponse{}, err
		}
	}

	snap := app.Snapshot()
	resp := IntentResponse{
		Intent:  out.Intent,
		Changed: out.Changed,
		Pending: snap.ViewState.Transitioning || snap.SubmitPending,
		State:   snap,
	}
	if step, ok := out.Step(); ok {
		resp.Step = &step
	}
	return resp, nil
}

func (s *Server) handleUpdateDraft(ctx context.Context, _ mcp.CallToolRequest, args draftArgs) (StateResponse, error) {
	value, err := runner.SanitizeField(args.Field, args.Value)
	if err != nil {
		s.logger.Warn("MCP update_draft: input rejected", "err", err, "size", len(args.Value))
		return StateResponse{}, fmt.Errorf("input rejected: %w", err)
	}
	return s.mutate(ctx, args.SessionID, func(ctx context.Context, app *runtime.App) error {
		return app.UpdateDraftField(ctx, args.Field, value)
	})
}

func (s *Server) handleSelectTemplate(ctx context.Context, _ mcp.CallToolRequest, args templateArgs) (StateResponse, error) {
	tmpl, err := s.templates.Lookup(args.Name)
	if err != nil {
		return StateResponse{}, err
	}
	return s.mutate(ctx, args.SessionID, func(ctx context.Context, app *runtime.App) error {
		app.SelectTemplate(ctx, tmpl)
		return nil
	})
}

func (s *Server) handleDeleteStep(ctx context.Context, _ mcp.CallToolRequest, args deleteArgs) (StateResponse, error) {
	return s.mutate(ctx, args.SessionID, func(ctx context.Context, app *runtime.App) error {
		app.Delete(ctx, args.StepID)
		return nil
	})
}

func (s *Server) handleReorder(ctx context.Context, _ mcp.CallToolRequest, args reorderArgs) (StateResponse, error) {
	return s.mutate(ctx, args.SessionID, func(ctx context.Context, app *runtime.App) error {
		return app.Reorder(ctx, args.From, args.To)
	})
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(templatesURI, "Quick templates",
		mcp.WithResourceDescription("Templates that prefill the step editor"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.templates.List())
		if err != nil {
			return nil, fmt.Errorf("failed to encode templates: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      templatesURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
