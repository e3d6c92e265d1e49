package auth

import (
	"context"
	"time"

	"walkintovoid/apperror"
	"walkintovoid/database"

	"go.uber.org/zap"
)

// OAuthProfile is what a provider tells us about the person signing in.
type OAuthProfile struct {
	Provider          string
	ProviderAccountID string
	Email             string
	EmailVerified     bool
	Name              string
	Image             string
	Raw               []byte
}

type OAuthStore interface {
	AccountByProvider(ctx context.Context, provider, providerAccountID string) (*database.Account, error)
	UserByID(ctx context.Context, id string) (*database.User, error)
	UserByEmail(ctx context.Context, email string) (*database.User, error)
	LinkAccount(ctx context.Context, userID, provider, providerAccountID string, profile []byte) error
	CreateUserWithAccount(ctx context.Context, u *database.User, provider, providerAccountID string, profile []byte) error
}

// OAuthAdapter maps provider identities onto local users. The configured
// admin email is promoted to ADMIN when its user is first created.
type OAuthAdapter struct {
	Store      OAuthStore
	AdminEmail string
	Logger     *zap.Logger
	Now        func() time.Time
}

func (a *OAuthAdapter) SignIn(ctx context.Context, p OAuthProfile) (*database.User, error) {
	if p.Provider == "" || p.ProviderAccountID == "" {
		return nil, apperror.Validation("Incomplete provider profile")
	}
	email := NormalizeEmail(p.Email)
	if email == "" {
		return nil, apperror.Validation("The provider did not share an email address")
	}

	acct, err := a.Store.AccountByProvider(ctx, p.Provider, p.ProviderAccountID)
	switch {
	case err == nil:
		u, err := a.Store.UserByID(ctx, acct.UserID)
		if err != nil {
			return nil, apperror.Unexpected(err, "")
		}
		return u, nil
	case !database.IsNotFound(err):
		return nil, apperror.Unexpected(err, "")
	}

	existing, err := a.Store.UserByEmail(ctx, email)
	switch {
	case err == nil:
		if !p.EmailVerified {
			return nil, apperror.Conflict(nil, "This email is already registered. Sign in with your password.")
		}
		if err := a.Store.LinkAccount(ctx, existing.ID, p.Provider, p.ProviderAccountID, p.Raw); err != nil {
			if database.IsUniqueViolation(err) {
				return nil, apperror.Conflict(err, "This account is already linked.")
			}
			return nil, apperror.Unexpected(err, "")
		}
		a.Logger.Info("linked oauth account", zap.String("user_id", existing.ID), zap.String("provider", p.Provider))
		return existing, nil
	case !database.IsNotFound(err):
		return nil, apperror.Unexpected(err, "")
	}

	now := a.Now()
	u := &database.User{
		Email:         email,
		Name:          p.Name,
		EmailVerified: &now,
		Role:          database.RoleUser,
	}
	if p.Image != "" {
		u.Image = &p.Image
	}
	if a.AdminEmail != "" && email == NormalizeEmail(a.AdminEmail) {
		u.Role = database.RoleAdmin
	}
	if err := a.Store.CreateUserWithAccount(ctx, u, p.Provider, p.ProviderAccountID, p.Raw); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict(err, "A user with this email already exists.")
		}
		return nil, apperror.Unexpected(err, "")
	}
	a.Logger.Info("created user from oauth sign-in",
		zap.String("user_id", u.ID),
		zap.String("provider", p.Provider),
		zap.String("role", string(u.Role)))
	return u, nil
}
