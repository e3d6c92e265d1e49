package site

import (
	"context"
	"net/http"
	"strings"

	"walkintovoid/apperror"
)

type nameRequest struct {
	Name string `json:"name"`
}

func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.Store.ListCategories(r.Context())
	if err != nil {
		s.renderError(w, r, apperror.Unexpected(err, "Failed to fetch categories"))
		return
	}
	renderJSON(w, http.StatusOK, categories)
}

func (s *Server) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.Store.ListTags(r.Context())
	if err != nil {
		s.renderError(w, r, apperror.Unexpected(err, "Failed to fetch tags"))
		return
	}
	renderJSON(w, http.StatusOK, tags)
}

// createNamed handles the identical create flows of categories and tags.
func (s *Server) createNamed(w http.ResponseWriter, r *http.Request, kind string, create func(ctx context.Context, name string) (any, error)) {
	var req nameRequest
	if err := decodeJSON(r, &req); err != nil {
		s.renderError(w, r, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		s.renderError(w, r, apperror.Validation(strings.ToUpper(kind[:1])+kind[1:]+" name is required"))
		return
	}
	created, err := create(r.Context(), name)
	if err != nil {
		s.renderError(w, r, storeError(err,
			"A "+kind+" with this name already exists.",
			"",
			"Failed to create "+kind))
		return
	}
	renderJSON(w, http.StatusCreated, created)
}

func (s *Server) CreateCategory(w http.ResponseWriter, r *http.Request) {
	s.createNamed(w, r, "category", func(ctx context.Context, name string) (any, error) {
		return s.Store.CreateCategory(ctx, name)
	})
}

func (s *Server) CreateTag(w http.ResponseWriter, r *http.Request) {
	s.createNamed(w, r, "tag", func(ctx context.Context, name string) (any, error) {
		return s.Store.CreateTag(ctx, name)
	})
}
