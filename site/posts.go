package site

import (
	"encoding/json"
	"net/http"
	"strings"

	"walkintovoid/apperror"
	"walkintovoid/auth"
	"walkintovoid/database"

	"github.com/go-chi/chi/v5"
	"github.com/gosimple/slug"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type createPostRequest struct {
	Title           string   `json:"title"`
	Slug            string   `json:"slug"`
	Content         string   `json:"content"`
	Excerpt         *string  `json:"excerpt"`
	BannerImage     *string  `json:"bannerImage"`
	CategoryID      string   `json:"categoryId"`
	TagIDs          []string `json:"tagIds"`
	IsFeatured      bool     `json:"isFeatured"`
	IsAdvertisement bool     `json:"isAdvertisement"`
}

func buildPostFromRequest(req createPostRequest, authorID string) (*database.Post, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.CategoryID = strings.TrimSpace(req.CategoryID)
	if req.Title == "" || strings.TrimSpace(req.Content) == "" || req.CategoryID == "" {
		return nil, apperror.Validation("Missing required fields")
	}
	postSlug := strings.TrimSpace(req.Slug)
	if postSlug == "" {
		postSlug = slug.Make(req.Title)
	}
	if postSlug == "" {
		return nil, apperror.Validation("Could not derive a slug from the title")
	}
	return &database.Post{
		Title:           req.Title,
		Slug:            postSlug,
		Content:         req.Content,
		Excerpt:         req.Excerpt,
		BannerImage:     req.BannerImage,
		Status:          database.PostStatusPending,
		AuthorID:        authorID,
		CategoryID:      req.CategoryID,
		IsFeatured:      req.IsFeatured,
		IsAdvertisement: req.IsAdvertisement,
	}, nil
}

// categoryExists turns a dangling categoryId into a validation error instead
// of a foreign key failure.
func (s *Server) categoryExists(r *http.Request, id string) error {
	if _, err := s.Store.CategoryByID(r.Context(), id); err != nil {
		if database.IsNotFound(err) {
			return apperror.Validation("Unknown category")
		}
		return apperror.Unexpected(err, "")
	}
	return nil
}

func (s *Server) CreatePost(w http.ResponseWriter, r *http.Request) {
	currentUser := getSignedInUserOrNil(r)

	var req createPostRequest
	if err := decodeJSON(r, &req); err != nil {
		s.renderError(w, r, err)
		return
	}
	post, err := buildPostFromRequest(req, currentUser.ID)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	if err := s.categoryExists(r, post.CategoryID); err != nil {
		s.renderError(w, r, err)
		return
	}

	if err := s.Store.CreatePost(r.Context(), post, req.TagIDs); err != nil {
		if errors.Is(err, database.ErrUnknownTag) {
			s.renderError(w, r, apperror.Validation("Unknown tag"))
			return
		}
		s.renderError(w, r, storeError(err, "A post with this slug already exists.", "", "Failed to create post"))
		return
	}
	s.Logger.Info("post created", zap.String("post_id", post.ID), zap.String("author_id", currentUser.ID))
	renderJSON(w, http.StatusCreated, post)
}

// loadOwnedPost fetches the post and checks the signed-in user may act on it.
func (s *Server) loadOwnedPost(r *http.Request) (*database.Post, error) {
	post, err := s.Store.PostByID(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		return nil, storeError(err, "", "Post not found", "")
	}
	if err := auth.Authorize(getSignedInUserOrNil(r), auth.Staff, post.AuthorID); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *Server) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.Store.PostByID(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		s.renderError(w, r, storeError(err, "", "Post not found", ""))
		return
	}
	renderJSON(w, http.StatusOK, post)
}

type updatePostRequest struct {
	Title           *string              `json:"title"`
	Slug            *string              `json:"slug"`
	Content         *string              `json:"content"`
	Excerpt         optionalText         `json:"excerpt"`
	BannerImage     optionalText         `json:"bannerImage"`
	CategoryID      *string              `json:"categoryId"`
	TagIDs          *[]string            `json:"tagIds"`
	IsFeatured      *bool                `json:"isFeatured"`
	IsAdvertisement *bool                `json:"isAdvertisement"`
	Status          *database.PostStatus `json:"status"`
}

// optionalText tells an omitted field apart from an explicit null.
type optionalText struct {
	Set   bool
	Value *string
}

func (o *optionalText) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

func (o optionalText) cleared() bool {
	return o.Set && o.Value == nil
}

func blank(s *string) bool {
	return s != nil && strings.TrimSpace(*s) == ""
}

func (req updatePostRequest) changes() (database.PostChanges, error) {
	if blank(req.Title) || blank(req.Slug) || blank(req.Content) || blank(req.CategoryID) {
		return database.PostChanges{}, apperror.Validation("title, slug, content and categoryId cannot be empty")
	}
	if req.Status != nil && !req.Status.Valid() {
		return database.PostChanges{}, apperror.Validation("Unknown status")
	}
	return database.PostChanges{
		Title:            req.Title,
		Slug:             req.Slug,
		Content:          req.Content,
		Excerpt:          req.Excerpt.Value,
		ClearExcerpt:     req.Excerpt.cleared(),
		BannerImage:      req.BannerImage.Value,
		ClearBannerImage: req.BannerImage.cleared(),
		CategoryID:       req.CategoryID,
		TagIDs:           req.TagIDs,
		IsFeatured:       req.IsFeatured,
		IsAdvertisement:  req.IsAdvertisement,
		Status:           req.Status,
	}, nil
}

func (s *Server) UpdatePost(w http.ResponseWriter, r *http.Request) {
	post, err := s.loadOwnedPost(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	var req updatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		s.renderError(w, r, err)
		return
	}
	changes, err := req.changes()
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	// status changes need an admin, even on their own post
	if changes.Status != nil && *changes.Status != post.Status {
		if err := auth.Authorize(getSignedInUserOrNil(r), auth.AdminsOnly, ""); err != nil {
			s.renderError(w, r, err)
			return
		}
	}
	if changes.CategoryID != nil {
		if err := s.categoryExists(r, *changes.CategoryID); err != nil {
			s.renderError(w, r, err)
			return
		}
	}

	updated, err := s.Store.UpdatePost(r.Context(), post.ID, changes)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrUnknownTag):
			s.renderError(w, r, apperror.Validation("Unknown tag"))
		case database.IsUniqueViolation(err):
			s.renderError(w, r, apperror.Conflict(err, "A post with this slug already exists."))
		default:
			s.renderError(w, r, apperror.Unexpected(err, "Failed to update post"))
		}
		return
	}
	renderJSON(w, http.StatusOK, updated)
}

func (s *Server) DeletePost(w http.ResponseWriter, r *http.Request) {
	post, err := s.loadOwnedPost(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	if err := s.Store.DeletePost(r.Context(), post.ID); err != nil {
		s.renderError(w, r, apperror.Unexpected(err, "Failed to delete post"))
		return
	}
	s.Logger.Info("post deleted", zap.String("post_id", post.ID), zap.String("by", getSignedInUserOrNil(r).ID))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setStatus(w http.ResponseWriter, r *http.Request, status database.PostStatus) {
	post, err := s.Store.SetPostStatus(r.Context(), chi.URLParam(r, "postID"), status)
	if err != nil {
		s.renderError(w, r, storeError(err, "", "Post not found", "Failed to update post"))
		return
	}
	s.Logger.Info("post moderated", zap.String("post_id", post.ID), zap.String("status", string(status)))
	renderJSON(w, http.StatusOK, post)
}

func (s *Server) PublishPost(w http.ResponseWriter, r *http.Request) {
	s.setStatus(w, r, database.PostStatusApproved)
}

func (s *Server) RejectPost(w http.ResponseWriter, r *http.Request) {
	s.setStatus(w, r, database.PostStatusRejected)
}

// ListAllPosts is the back-office listing across every status.
func (s *Server) ListAllPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.Store.ListAllPosts(r.Context())
	if err != nil {
		s.renderError(w, r, apperror.Unexpected(err, "Failed to fetch posts"))
		return
	}
	renderJSON(w, http.StatusOK, posts)
}
