package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gosimple/slug"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on"
	s, err := Open(Options{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type fixtures struct {
	author     *User
	technology *Category
	travel     *Category
	goTag      *Tag
	cloudTag   *Tag
}

func seedFixtures(t *testing.T, s *Store) fixtures {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	author := &User{Email: "author@example.com", Name: "Author", Role: RoleModerator, EmailVerified: &now}
	require.NoError(t, s.CreateUser(ctx, author))

	technology, err := s.CreateCategory(ctx, "Technology")
	require.NoError(t, err)
	travel, err := s.CreateCategory(ctx, "Travel")
	require.NoError(t, err)
	goTag, err := s.CreateTag(ctx, "go")
	require.NoError(t, err)
	cloudTag, err := s.CreateTag(ctx, "cloud")
	require.NoError(t, err)

	return fixtures{author: author, technology: technology, travel: travel, goTag: goTag, cloudTag: cloudTag}
}

type postSeed struct {
	title    string
	content  string
	status   PostStatus
	category *Category
	tags     []*Tag
	age      time.Duration
	featured bool
}

func (f fixtures) createPost(t *testing.T, s *Store, seed postSeed) *Post {
	t.Helper()
	p := &Post{
		Title:      seed.title,
		Slug:       slug.Make(seed.title),
		Content:    seed.content,
		Status:     seed.status,
		AuthorID:   f.author.ID,
		CategoryID: seed.category.ID,
		IsFeatured: seed.featured,
		CreatedAt:  time.Now().Add(-seed.age),
	}
	var tagIDs []string
	for _, tag := range seed.tags {
		tagIDs = append(tagIDs, tag.ID)
	}
	require.NoError(t, s.CreatePost(context.Background(), p, tagIDs))
	return p
}

func titles(posts []Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Title)
	}
	return out
}
