package site

import (
	"net/http"

	"walkintovoid/apperror"
	"walkintovoid/database"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.Store.ListUsers(r.Context())
	if err != nil {
		s.renderError(w, r, apperror.Unexpected(err, "Failed to fetch users"))
		return
	}
	renderJSON(w, http.StatusOK, users)
}

type roleRequest struct {
	Role database.Role `json:"role"`
}

func (s *Server) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := decodeJSON(r, &req); err != nil {
		s.renderError(w, r, err)
		return
	}
	if !req.Role.Valid() {
		s.renderError(w, r, apperror.Validation("Unknown role"))
		return
	}
	userID := chi.URLParam(r, "userID")
	if userID == getSignedInUserOrNil(r).ID && req.Role != database.RoleAdmin {
		s.renderError(w, r, apperror.Validation("Admins cannot demote themselves"))
		return
	}

	u, err := s.Store.UpdateUserRole(r.Context(), userID, req.Role)
	if err != nil {
		s.renderError(w, r, storeError(err, "", "User not found", "Failed to update role"))
		return
	}
	s.Logger.Info("user role changed", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	renderJSON(w, http.StatusOK, u)
}
