package database

import (
	"context"

	"gorm.io/gorm"
)

func (s *Store) CreateComment(ctx context.Context, c *Comment) error {
	return s.db.WithContext(ctx).Create(c).Error
}

// CommentsForPost lists comments newest first with the author's public fields.
func (s *Store) CommentsForPost(ctx context.Context, postID string) ([]Comment, error) {
	var comments []Comment
	err := s.db.WithContext(ctx).
		Preload("Author", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "image") }).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}
