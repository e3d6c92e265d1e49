package site

import (
	"net/http"
	"strings"

	"walkintovoid/apperror"
	"walkintovoid/auth"
	"walkintovoid/database"

	"github.com/go-chi/chi/v5"
)

func (s *Server) ListComments(w http.ResponseWriter, r *http.Request) {
	post, err := s.Store.PublicPostByID(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		s.renderError(w, r, storeError(err, "", "Post not found", "Failed to fetch comments"))
		return
	}
	comments, err := s.Store.CommentsForPost(r.Context(), post.ID)
	if err != nil {
		s.renderError(w, r, apperror.Unexpected(err, "Failed to fetch comments"))
		return
	}
	renderJSON(w, http.StatusOK, comments)
}

type createCommentRequest struct {
	Content string `json:"content"`
}

// CreateComment accepts comments from any signed-in user on a published post.
func (s *Server) CreateComment(w http.ResponseWriter, r *http.Request) {
	currentUser := getSignedInUserOrNil(r)
	if err := auth.Authorize(currentUser, auth.AnyUser, ""); err != nil {
		s.renderError(w, r, err)
		return
	}

	var req createCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.renderError(w, r, err)
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		s.renderError(w, r, apperror.Validation("Comment content is required"))
		return
	}

	post, err := s.Store.PublicPostByID(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		s.renderError(w, r, storeError(err, "", "Post not found", "Failed to create comment"))
		return
	}

	comment := &database.Comment{Content: content, PostID: post.ID, AuthorID: currentUser.ID}
	if err := s.Store.CreateComment(r.Context(), comment); err != nil {
		s.renderError(w, r, apperror.Unexpected(err, "Failed to create comment"))
		return
	}
	comment.Author = &database.User{UUIDKey: currentUser.UUIDKey, Name: currentUser.Name, Image: currentUser.Image}
	renderJSON(w, http.StatusCreated, comment)
}
