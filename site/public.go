package site

import (
	"net/http"
	"strconv"

	"walkintovoid/apperror"
	"walkintovoid/database"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

func (s *Server) ListPublicPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := database.PostFilter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Tag:      q.Get("tag"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			s.renderError(w, r, apperror.Validation("limit must be a positive number"))
			return
		}
		filter.Limit = limit
	}

	posts, err := s.Store.ListPublicPosts(r.Context(), filter)
	if err != nil {
		s.renderError(w, r, apperror.Unexpected(err, "Failed to fetch posts"))
		return
	}
	renderJSON(w, http.StatusOK, posts)
}

type homeResponse struct {
	Slider   []database.Post `json:"slider"`
	Featured []database.Post `json:"featured"`
	Bento    []database.Post `json:"bento"`
}

func (s *Server) HomePosts(w http.ResponseWriter, r *http.Request) {
	var resp homeResponse
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		resp.Slider, err = s.Store.SliderPosts(ctx)
		return err
	})
	g.Go(func() (err error) {
		resp.Featured, err = s.Store.FeaturedPosts(ctx)
		return err
	})
	g.Go(func() (err error) {
		resp.Bento, err = s.Store.BentoGridPosts(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.renderError(w, r, apperror.Unexpected(err, "Failed to fetch posts"))
		return
	}
	renderJSON(w, http.StatusOK, resp)
}

// PublicViewPost counts the view in the background; the response never waits on it.
func (s *Server) PublicViewPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.Store.PublicPostBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.renderError(w, r, storeError(err, "", "Post not found", "Failed to fetch post"))
		return
	}
	s.Views.Record(post.ID)
	renderJSON(w, http.StatusOK, post)
}
