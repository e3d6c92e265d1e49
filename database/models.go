package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleModerator Role = "MODERATOR"
	RoleUser      Role = "USER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

type PostStatus string

const (
	PostStatusPending  PostStatus = "PENDING"
	PostStatusApproved PostStatus = "APPROVED"
	PostStatusRejected PostStatus = "REJECTED"
)

func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusPending, PostStatusApproved, PostStatusRejected:
		return true
	}
	return false
}

// UUIDKey gives a model a random string primary key on first insert.
type UUIDKey struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`
}

func (k *UUIDKey) BeforeCreate(*gorm.DB) error {
	if k.ID == "" {
		k.ID = uuid.NewString()
	}
	return nil
}

type User struct {
	UUIDKey
	Email          string     `gorm:"uniqueIndex;size:255;not null" json:"email,omitempty"`
	Name           string     `gorm:"size:255" json:"name"`
	Image          *string    `json:"image,omitempty"`
	HashedPassword *string    `json:"-"`
	EmailVerified  *time.Time `json:"emailVerified,omitempty"`
	Role           Role       `gorm:"size:16;not null;default:'USER'" json:"role,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Account links a user to an OAuth identity.
type Account struct {
	UUIDKey
	UserID            string         `gorm:"size:36;index;not null" json:"userId"`
	Provider          string         `gorm:"size:64;not null;uniqueIndex:idx_account_provider" json:"provider"`
	ProviderAccountID string         `gorm:"size:255;not null;uniqueIndex:idx_account_provider" json:"providerAccountId"`
	Profile           datatypes.JSON `json:"-"`
	CreatedAt         time.Time      `json:"createdAt"`
}

// VerificationOtp is keyed by (email, token); the row is removed once used.
type VerificationOtp struct {
	UUIDKey
	Email     string    `gorm:"size:255;not null;uniqueIndex:idx_otp_email_token"`
	Token     string    `gorm:"size:6;not null;uniqueIndex:idx_otp_email_token"`
	Expires   time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

func (o *VerificationOtp) ExpiredAt(now time.Time) bool {
	return now.After(o.Expires)
}

type Category struct {
	UUIDKey
	Name      string    `gorm:"uniqueIndex;size:255;not null" json:"name"`
	CreatedAt time.Time `json:"-"`
}

type Tag struct {
	UUIDKey
	Name      string    `gorm:"uniqueIndex;size:255;not null" json:"name"`
	CreatedAt time.Time `json:"-"`
}

type Post struct {
	UUIDKey
	Title           string     `gorm:"size:255;not null" json:"title"`
	Slug            string     `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	Content         string     `gorm:"type:text;not null" json:"content"`
	Excerpt         *string    `gorm:"type:text" json:"excerpt"`
	BannerImage     *string    `json:"bannerImage"`
	Status          PostStatus `gorm:"size:16;index;not null;default:'PENDING'" json:"status"`
	AuthorID        string     `gorm:"size:36;index;not null" json:"authorId"`
	Author          *User      `json:"author,omitempty"`
	CategoryID      string     `gorm:"size:36;index;not null" json:"categoryId"`
	Category        *Category  `json:"category,omitempty"`
	Tags            []Tag      `gorm:"many2many:post_tags" json:"tags"`
	IsFeatured      bool       `gorm:"not null;default:false" json:"isFeatured"`
	IsAdvertisement bool       `gorm:"not null;default:false" json:"isAdvertisement"`
	Views           int64      `gorm:"not null;default:0" json:"views"`
	Likes           int64      `gorm:"not null;default:0" json:"likes"`
	CreatedAt       time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type Comment struct {
	UUIDKey
	Content   string    `gorm:"type:text;not null" json:"content"`
	PostID    string    `gorm:"size:36;index;not null" json:"postId"`
	Post      *Post     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AuthorID  string    `gorm:"size:36;index;not null" json:"authorId"`
	Author    *User     `json:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func allModels() []any {
	return []any{
		&User{},
		&Account{},
		&VerificationOtp{},
		&Category{},
		&Tag{},
		&Post{},
		&Comment{},
	}
}
