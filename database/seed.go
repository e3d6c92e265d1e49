package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type samplePost struct {
	title, slug, content, excerpt string
	status                        PostStatus
}

var samplePosts = []samplePost{
	{
		title:   "Mastering Go Concurrency",
		slug:    "mastering-go-concurrency",
		content: "# Welcome to Go\n\nThis is a sample post about goroutines and channels.",
		excerpt: "A deep dive into goroutines, channels and context.",
		status:  PostStatusApproved,
	},
	{
		title:   "The Ultimate Guide to GORM",
		slug:    "ultimate-guide-to-gorm",
		content: "# GORM\n\nHere is how to model a blog with GORM.",
		excerpt: "Learn how GORM can speed up your database workflows.",
		status:  PostStatusPending,
	},
}

type SeedResult struct {
	Admin    *User
	Category *Category
	Posts    int
}

// Seed creates the admin account, a starter category and sample posts. Rows
// that already exist are left untouched, so it is safe to run repeatedly.
func (s *Store) Seed(ctx context.Context, adminEmail, hashedPassword string, now time.Time) (*SeedResult, error) {
	if adminEmail == "" {
		return nil, errors.New("admin email is required to seed")
	}

	res := &SeedResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin := User{
			Email:          adminEmail,
			Name:           "Admin User",
			HashedPassword: &hashedPassword,
			EmailVerified:  &now,
			Role:           RoleAdmin,
		}
		if err := tx.Where(User{Email: adminEmail}).Attrs(admin).FirstOrCreate(&admin).Error; err != nil {
			return errors.Wrap(err, "could not seed admin")
		}
		res.Admin = &admin

		category := Category{Name: "Technology"}
		if err := tx.Where(Category{Name: category.Name}).FirstOrCreate(&category).Error; err != nil {
			return errors.Wrap(err, "could not seed category")
		}
		res.Category = &category

		for _, sp := range samplePosts {
			var existing int64
			if err := tx.Model(&Post{}).Where("slug = ?", sp.slug).Count(&existing).Error; err != nil {
				return errors.Wrap(err, "could not check sample posts")
			}
			if existing > 0 {
				continue
			}
			excerpt := sp.excerpt
			post := Post{
				Title:      sp.title,
				Slug:       sp.slug,
				Content:    sp.content,
				Excerpt:    &excerpt,
				Status:     sp.status,
				AuthorID:   admin.ID,
				CategoryID: category.ID,
			}
			if err := tx.Create(&post).Error; err != nil {
				return errors.Wrapf(err, "could not seed post %s", sp.slug)
			}
			res.Posts++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
