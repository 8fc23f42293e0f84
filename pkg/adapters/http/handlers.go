package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/runner"
	"github.com/go-chi/chi/v5"
	oapi "github.com/oapi-codegen/runtime"
)

func pathParam(r *http.Request, name string, dest any) error {
	err := oapi.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest, oapi.BindStyledParameterOptions{
		ParamLocation: oapi.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return fmt.Errorf("%w: parameter %s: %v", errBadRequest, name, err)
	}
	return nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) error {
	body := http.MaxBytesReader(w, r.Body, int64(runner.MaxInputSize())+1024)
	if err := json.NewDecoder(body).Decode(dest); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	return nil
}

// session runs fn against the session named in the path.
func (s *Server) session(r *http.Request, fn func(context.Context, *runtime.App) error) error {
	var id string
	if err := pathParam(r, "sessionId", &id); err != nil {
		return err
	}
	return s.Sessions.Do(r.Context(), id, fn)
}

// ListTemplates handles GET /templates.
func (s *Server) ListTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Templates.List(), s.logger)
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids, s.logger)
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	app, err := s.Sessions.Create(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap := app.Snapshot()
	s.Streams.Publish(snap)
	writeJSON(w, http.StatusCreated, snap, s.logger)
}

// GetSession handles GET /sessions/{sessionId}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	s.respondSnapshot(w, r, func(context.Context, *runtime.App) error { return nil })
}

// DeleteSession handles DELETE /sessions/{sessionId}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	var id string
	if err := pathParam(r, "sessionId", &id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.Sessions.Close(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.Streams.Forget(id)
	w.WriteHeader(http.StatusNoContent)
}

// DispatchIntent handles POST /sessions/{sessionId}/intents/{intent}.
// With wait=true the response is sent after any delayed commit.
func (s *Server) DispatchIntent(w http.ResponseWriter, r *http.Request) {
	var raw string
	if err := pathParam(r, "intent", &raw); err != nil {
		s.writeError(w, r, err)
		return
	}
	intent, err := domain.ParseIntent(raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var wait bool
	if err := oapi.BindQueryParameter("form", true, false, "wait", r.URL.Query(), &wait); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: parameter wait: %v", errBadRequest, err))
		return
	}

	var (
		out *runtime.Outcome
		app *runtime.App
	)
	err = s.session(r, func(ctx context.Context, a *runtime.App) error {
		var err error
		out, err = a.Dispatch(ctx, intent)
		app = a
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// Waiting happens outside the session lock so other requests keep flowing.
	if wait {
		if err := out.Wait(r.Context()); err != nil {
			s.writeError(w, r, err)
			return
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
	writeJSON(w, http.StatusOK, resp, s.logger)
}

// UpdateDraftField handles PUT /sessions/{sessionId}/draft/{field}.
func (s *Server) UpdateDraftField(w http.ResponseWriter, r *http.Request) {
	var field string
	if err := pathParam(r, "field", &field); err != nil {
		s.writeError(w, r, err)
		return
	}
	var body DraftFieldRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.Value == nil {
		s.writeError(w, r, fmt.Errorf("%w: value is required", errBadRequest))
		return
	}
	value, err := runner.SanitizeField(field, *body.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var draft domain.Draft
	err = s.session(r, func(ctx context.Context, app *runtime.App) error {
		if err := app.UpdateDraftField(ctx, field, value); err != nil {
			return err
		}
		draft = app.Draft()
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft, s.logger)
}

// SelectTemplate handles POST /sessions/{sessionId}/draft/template/{name}.
func (s *Server) SelectTemplate(w http.ResponseWriter, r *http.Request) {
	var name string
	if err := pathParam(r, "name", &name); err != nil {
		s.writeError(w, r, err)
		return
	}
	tmpl, err := s.Templates.Lookup(name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var draft domain.Draft
	err = s.session(r, func(ctx context.Context, app *runtime.App) error {
		app.SelectTemplate(ctx, tmpl)
		draft = app.Draft()
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft, s.logger)
}

// DeleteStep handles DELETE /sessions/{sessionId}/steps/{stepId}.
func (s *Server) DeleteStep(w http.ResponseWriter, r *http.Request) {
	var stepID string
	if err := pathParam(r, "stepId", &stepID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondSnapshot(w, r, func(ctx context.Context, app *runtime.App) error {
		app.Delete(ctx, stepID)
		return nil
	})
}

// ReorderSteps handles POST /sessions/{sessionId}/steps/reorder.
func (s *Server) ReorderSteps(w http.ResponseWriter, r *http.Request) {
	var body ReorderRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.From == nil || body.To == nil {
		s.writeError(w, r, fmt.Errorf("%w: from and to are required", errBadRequest))
		return
	}
	s.respondSnapshot(w, r, func(ctx context.Context, app *runtime.App) error {
		return app.Reorder(ctx, *body.From, *body.To)
	})
}

// GotoStep handles POST /sessions/{sessionId}/steps/goto/{index}.
func (s *Server) GotoStep(w http.ResponseWriter, r *http.Request) {
	var index int
	if err := pathParam(r, "index", &index); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondSnapshot(w, r, func(ctx context.Context, app *runtime.App) error {
		app.GoTo(ctx, index)
		return nil
	})
}

func (s *Server) respondSnapshot(w http.ResponseWriter, r *http.Request, fn func(context.Context, *runtime.App) error) {
	var snap *domain.Snapshot
	err := s.session(r, func(ctx context.Context, app *runtime.App) error {
		if err := fn(ctx, app); err != nil {
			return err
		}
		snap = app.Snapshot()
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap, s.logger)
}

// SubscribeEvents handles GET /sessions/{sessionId}/events (SSE).
// The first event carries the full state; later ones carry diffs.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	var watchRaw string
	if err := oapi.BindQueryParameter("form", true, false, "watch", r.URL.Query(), &watchRaw); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: parameter watch: %v", errBadRequest, err))
		return
	}
	watch := parseWatch(watchRaw)

	var id string
	if err := pathParam(r, "sessionId", &id); err != nil {
		s.writeError(w, r, err)
		return
	}

	// Subscribe before reading the state so no commit falls between the two.
	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()

	var snap *domain.Snapshot
	if err := s.Sessions.Do(r.Context(), id, func(_ context.Context, app *runtime.App) error {
		snap = app.Snapshot()
		return nil
	}); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("SSE: subscribed", "session_id", id, "watch", watchRaw)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	initial, _ := json.Marshal(domain.Diff(nil, snap))
	fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", initial)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "session_id", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg.diff.Revision <= snap.Revision || !msg.matches(watch) {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.event(), msg.data)
			flusher.Flush()
		}
	}
}
