package database

import (
	"strings"

	"walkintovoid/constants"

	"gorm.io/gorm"
)

// PostFilter narrows the public listing. Empty fields impose nothing; the
// rest are AND-ed together on top of status = APPROVED.
type PostFilter struct {
	Search   string
	Category string
	Tag      string
	Limit    int
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func (f PostFilter) limit() int {
	if f.Limit <= 0 || f.Limit > constants.MAX_POSTS_TO_SHOW {
		return constants.MAX_POSTS_TO_SHOW
	}
	return f.Limit
}

// Apply adds the filter's conditions, ordering and cap to a query on posts.
func (f PostFilter) Apply(tx *gorm.DB) *gorm.DB {
	tx = tx.Where("posts.status = ?", PostStatusApproved)

	// Both sides are folded by the database so they always agree.
	if term := strings.TrimSpace(f.Search); term != "" {
		pattern := "%" + likeEscaper.Replace(term) + "%"
		tx = tx.Where(
			"(LOWER(posts.title) LIKE LOWER(?) ESCAPE '!' OR LOWER(posts.content) LIKE LOWER(?) ESCAPE '!' OR LOWER(COALESCE(posts.excerpt, '')) LIKE LOWER(?) ESCAPE '!')",
			pattern, pattern, pattern,
		)
	}
	if name := strings.TrimSpace(f.Category); name != "" {
		tx = tx.Where(
			"EXISTS (SELECT 1 FROM categories c WHERE c.id = posts.category_id AND LOWER(c.name) = LOWER(?))",
			name,
		)
	}
	if name := strings.TrimSpace(f.Tag); name != "" {
		tx = tx.Where(
			"EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id WHERE pt.post_id = posts.id AND LOWER(t.name) = LOWER(?))",
			name,
		)
	}

	return tx.Order("posts.created_at DESC").Limit(f.limit())
}
