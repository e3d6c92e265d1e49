package database

import (
	"context"
	"time"
)

type PostViews struct {
	Title string
	Views int64
}

type PostSummary struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Status    PostStatus `json:"status,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (s *Store) sumPostColumn(ctx context.Context, column string) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).
		Model(&Post{}).
		Select("COALESCE(SUM(" + column + "), 0)").
		Scan(&total).Error
	return total, err
}

func (s *Store) SumViews(ctx context.Context) (int64, error) {
	return s.sumPostColumn(ctx, "views")
}

func (s *Store) SumLikes(ctx context.Context) (int64, error) {
	return s.sumPostColumn(ctx, "likes")
}

func (s *Store) CountPosts(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Post{}).Count(&n).Error
	return n, err
}

func (s *Store) CountComments(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Comment{}).Count(&n).Error
	return n, err
}

// TopPostsByViews ranks approved posts only.
func (s *Store) TopPostsByViews(ctx context.Context, limit int) ([]PostViews, error) {
	var rows []PostViews
	err := s.db.WithContext(ctx).
		Model(&Post{}).
		Select("title", "views").
		Where("status = ?", PostStatusApproved).
		Order("views DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (s *Store) LatestPosts(ctx context.Context, limit int) ([]PostSummary, error) {
	var rows []PostSummary
	err := s.db.WithContext(ctx).
		Model(&Post{}).
		Select("id", "title", "status", "created_at").
		Order("created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// OldestPendingPosts is the moderation queue, oldest first.
func (s *Store) OldestPendingPosts(ctx context.Context, limit int) ([]PostSummary, error) {
	var rows []PostSummary
	err := s.db.WithContext(ctx).
		Model(&Post{}).
		Select("id", "title", "created_at").
		Where("status = ?", PostStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
