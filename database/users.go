package database

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func (s *Store) UserByID(ctx context.Context, id string) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &u, nil
}

// VerifiedUserByEmail only returns users whose email has been confirmed.
func (s *Store) VerifiedUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).
		Where("email = ? AND email_verified IS NOT NULL", email).
		First(&u).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := s.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error
	return users, err
}

func (s *Store) UpdateUserRole(ctx context.Context, id string, role Role) (*User, error) {
	u, err := s.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(u).Update("role", role).Error; err != nil {
		return nil, err
	}
	u.Role = role
	return u, nil
}

func (s *Store) AccountByProvider(ctx context.Context, provider, providerAccountID string) (*Account, error) {
	var a Account
	err := s.db.WithContext(ctx).
		Where("provider = ? AND provider_account_id = ?", provider, providerAccountID).
		First(&a).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &a, nil
}

// LinkAccount attaches an OAuth identity to an existing user.
func (s *Store) LinkAccount(ctx context.Context, userID, provider, providerAccountID string, profile []byte) error {
	return s.db.WithContext(ctx).Create(&Account{
		UserID:            userID,
		Provider:          provider,
		ProviderAccountID: providerAccountID,
		Profile:           datatypes.JSON(profile),
	}).Error
}

// CreateUserWithAccount inserts a user and its first OAuth identity together.
func (s *Store) CreateUserWithAccount(ctx context.Context, u *User, provider, providerAccountID string, profile []byte) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		return tx.Create(&Account{
			UserID:            u.ID,
			Provider:          provider,
			ProviderAccountID: providerAccountID,
			Profile:           datatypes.JSON(profile),
		}).Error
	})
}
