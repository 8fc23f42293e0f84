package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/runner"
)

// statusFor maps domain errors to HTTP status codes and stable error codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, domain.ErrTemplateNotFound):
		return http.StatusNotFound, "template_not_found"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, "validation_failed"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, domain.ErrTransitionInFlight):
		return http.StatusConflict, "transition_in_flight"
	case errors.Is(err, domain.ErrSubmitPending):
		return http.StatusConflict, "submit_pending"
	case errors.Is(err, domain.ErrIndexOutOfRange):
		return http.StatusBadRequest, "index_out_of_range"
	case errors.Is(err, domain.ErrUnknownField):
		return http.StatusBadRequest, "unknown_field"
	case errors.Is(err, domain.ErrInvalidCategory):
		return http.StatusBadRequest, "invalid_category"
	case errors.Is(err, domain.ErrUnknownIntent):
		return http.StatusBadRequest, "unknown_intent"
	case errors.Is(err, runner.ErrInputTooLarge):
		return http.StatusRequestEntityTooLarge, "input_too_large"
	case errors.Is(err, runner.ErrInvalidUTF8), errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

var errBadRequest = errors.New("bad request")

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	resp := ErrorResponse{Error: err.Error(), Code: code}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		resp.Fields = ve.Fields
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, resp, s.logger)
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}
