package site

import (
	"encoding/json"
	"net/http"

	"walkintovoid/apperror"
	"walkintovoid/database"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderError answers with the status of err's kind and a {"error": ...} body.
// Only unexpected errors are logged; their cause never reaches the caller.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperror.KindOf(err)
	if kind == apperror.KindUnexpected {
		s.Logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	renderJSON(w, kind.Status(), errorResponse{Error: apperror.Message(err)})
}

// storeError maps a store failure onto the error taxonomy.
func storeError(err error, conflictMsg, notFoundMsg, unexpectedMsg string) error {
	switch {
	case database.IsUniqueViolation(err):
		return apperror.Conflict(err, conflictMsg)
	case database.IsNotFound(err):
		return apperror.NotFound(notFoundMsg)
	default:
		return apperror.Unexpected(err, unexpectedMsg)
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.Validation("invalid json")
	}
	return nil
}
