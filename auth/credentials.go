package auth

import (
	"context"

	"walkintovoid/apperror"
	"walkintovoid/database"

	"golang.org/x/crypto/bcrypt"
)

type UserFinder interface {
	UserByEmail(ctx context.Context, email string) (*database.User, error)
}

type Credentials struct {
	Store UserFinder
}

// Login checks an email and password. The checks run in a fixed order:
// registration, verification, then password.
func (c *Credentials) Login(ctx context.Context, email, password string) (*database.User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.Validation("Please enter your email and password.")
	}

	u, err := c.Store.UserByEmail(ctx, email)
	if err != nil && !database.IsNotFound(err) {
		return nil, apperror.Unexpected(err, "")
	}
	if u == nil || u.HashedPassword == nil {
		return nil, apperror.Unauthorized("This email is not registered with a password. Try signing in with Google.")
	}
	if u.EmailVerified == nil {
		return nil, apperror.Forbidden("Your email is not verified. Please complete the sign-up process.")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.HashedPassword), []byte(password)); err != nil {
		return nil, apperror.Unauthorized("Invalid password.")
	}
	return u, nil
}
