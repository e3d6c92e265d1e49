package database

import (
	"context"

	"walkintovoid/constants"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var ErrUnknownTag = errors.New("unknown tag")

// PostChanges holds the fields of an update; nil means unchanged. The
// Clear flags set the optional text columns back to NULL.
type PostChanges struct {
	Title            *string
	Slug             *string
	Content          *string
	Excerpt          *string
	ClearExcerpt     bool
	BannerImage      *string
	ClearBannerImage bool
	CategoryID       *string
	TagIDs           *[]string
	IsFeatured       *bool
	IsAdvertisement  *bool
	Status           *PostStatus
}

func (c PostChanges) columns() map[string]any {
	cols := map[string]any{}
	if c.Title != nil {
		cols["title"] = *c.Title
	}
	if c.Slug != nil {
		cols["slug"] = *c.Slug
	}
	if c.Content != nil {
		cols["content"] = *c.Content
	}
	if c.Excerpt != nil {
		cols["excerpt"] = *c.Excerpt
	} else if c.ClearExcerpt {
		cols["excerpt"] = nil
	}
	if c.BannerImage != nil {
		cols["banner_image"] = *c.BannerImage
	} else if c.ClearBannerImage {
		cols["banner_image"] = nil
	}
	if c.CategoryID != nil {
		cols["category_id"] = *c.CategoryID
	}
	if c.IsFeatured != nil {
		cols["is_featured"] = *c.IsFeatured
	}
	if c.IsAdvertisement != nil {
		cols["is_advertisement"] = *c.IsAdvertisement
	}
	if c.Status != nil {
		cols["status"] = *c.Status
	}
	return cols
}

func withPostRelations(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Author", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "image") }).
		Preload("Category").
		Preload("Tags")
}

// ListPublicPosts returns approved posts matching f, newest first.
func (s *Store) ListPublicPosts(ctx context.Context, f PostFilter) ([]Post, error) {
	var posts []Post
	err := f.Apply(withPostRelations(s.db.WithContext(ctx).Model(&Post{}))).Find(&posts).Error
	return posts, err
}

// ListAllPosts is the back-office listing: every status, newest first.
func (s *Store) ListAllPosts(ctx context.Context) ([]Post, error) {
	var posts []Post
	err := withPostRelations(s.db.WithContext(ctx)).
		Order("created_at DESC").
		Limit(constants.MAX_POSTS_TO_SHOW).
		Find(&posts).Error
	return posts, err
}

func (s *Store) PostByID(ctx context.Context, id string) (*Post, error) {
	var p Post
	if err := withPostRelations(s.db.WithContext(ctx)).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &p, nil
}

// PublicPostBySlug only finds approved posts.
func (s *Store) PublicPostBySlug(ctx context.Context, slug string) (*Post, error) {
	var p Post
	err := withPostRelations(s.db.WithContext(ctx)).
		Where("slug = ? AND status = ?", slug, PostStatusApproved).
		First(&p).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &p, nil
}

func (s *Store) PublicPostByID(ctx context.Context, id string) (*Post, error) {
	var p Post
	err := s.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, PostStatusApproved).
		First(&p).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &p, nil
}

func (s *Store) homeSection(ctx context.Context, limit int, where string, args ...any) ([]Post, error) {
	var posts []Post
	err := withPostRelations(s.db.WithContext(ctx)).
		Where("status = ?", PostStatusApproved).
		Where(where, args...).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (s *Store) SliderPosts(ctx context.Context) ([]Post, error) {
	return s.homeSection(ctx, constants.SLIDER_POSTS, "is_featured = ?", false)
}

func (s *Store) FeaturedPosts(ctx context.Context) ([]Post, error) {
	return s.homeSection(ctx, constants.FEATURED_POSTS, "is_featured = ?", true)
}

func (s *Store) BentoGridPosts(ctx context.Context) ([]Post, error) {
	return s.homeSection(ctx, constants.BENTO_POSTS, "is_advertisement = ?", false)
}

func tagsByIDs(tx *gorm.DB, ids []string) ([]Tag, error) {
	if len(ids) == 0 {
		return []Tag{}, nil
	}
	var tags []Tag
	if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(uniqueStrings(ids)) {
		return nil, ErrUnknownTag
	}
	return tags, nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// CreatePost inserts p connected to the existing tags in tagIDs.
func (s *Store) CreatePost(ctx context.Context, p *Post, tagIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := tagsByIDs(tx, tagIDs)
		if err != nil {
			return err
		}
		p.Tags = tags
		return tx.Omit("Tags.*").Create(p).Error
	})
}

func (s *Store) UpdatePost(ctx context.Context, id string, c PostChanges) (*Post, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post := &Post{}
		if err := tx.Select("id").Where("id = ?", id).First(post).Error; err != nil {
			return notFoundOr(err)
		}
		if cols := c.columns(); len(cols) > 0 {
			if err := tx.Model(post).Updates(cols).Error; err != nil {
				return err
			}
		}
		if c.TagIDs != nil {
			tags, err := tagsByIDs(tx, *c.TagIDs)
			if err != nil {
				return err
			}
			if err := tx.Model(post).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.PostByID(ctx, id)
}

func (s *Store) SetPostStatus(ctx context.Context, id string, status PostStatus) (*Post, error) {
	return s.UpdatePost(ctx, id, PostChanges{Status: &status})
}

// DeletePost removes the post with its comments and tag links.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post := &Post{UUIDKey: UUIDKey{ID: id}}
		if err := tx.Model(post).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(post)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Store) IncrementViews(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).
		Model(&Post{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}
