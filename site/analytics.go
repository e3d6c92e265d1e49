package site

import (
	"net/http"

	"walkintovoid/apperror"
	"walkintovoid/constants"
	"walkintovoid/database"

	"golang.org/x/sync/errgroup"
)

type analyticsStats struct {
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Posts    int64 `json:"posts"`
	Comments int64 `json:"comments"`
}

type chartPoint struct {
	Name      string `json:"name"`
	PageViews int64  `json:"Page Views"`
}

type analyticsResponse struct {
	Stats        analyticsStats         `json:"stats"`
	ChartData    []chartPoint           `json:"chartData"`
	LatestPosts  []database.PostSummary `json:"latestPosts"`
	PendingPosts []database.PostSummary `json:"pendingPosts"`
}

// Analytics runs the dashboard queries concurrently.
func (s *Server) Analytics(w http.ResponseWriter, r *http.Request) {
	var (
		resp     analyticsResponse
		topPosts []database.PostViews
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		resp.Stats.Views, err = s.Store.SumViews(ctx)
		return err
	})
	g.Go(func() (err error) {
		resp.Stats.Likes, err = s.Store.SumLikes(ctx)
		return err
	})
	g.Go(func() (err error) {
		resp.Stats.Posts, err = s.Store.CountPosts(ctx)
		return err
	})
	g.Go(func() (err error) {
		resp.Stats.Comments, err = s.Store.CountComments(ctx)
		return err
	})
	g.Go(func() (err error) {
		topPosts, err = s.Store.TopPostsByViews(ctx, constants.ANALYTICS_TOP_POSTS)
		return err
	})
	g.Go(func() (err error) {
		resp.LatestPosts, err = s.Store.LatestPosts(ctx, constants.ANALYTICS_LIST_SIZE)
		return err
	})
	g.Go(func() (err error) {
		resp.PendingPosts, err = s.Store.OldestPendingPosts(ctx, constants.ANALYTICS_LIST_SIZE)
		return err
	})
	if err := g.Wait(); err != nil {
		s.renderError(w, r, apperror.Unexpected(err, "Failed to fetch dashboard stats"))
		return
	}

	resp.ChartData = make([]chartPoint, 0, len(topPosts))
	for _, p := range topPosts {
		resp.ChartData = append(resp.ChartData, chartPoint{Name: p.Title, PageViews: p.Views})
	}
	renderJSON(w, http.StatusOK, resp)
}
