package auth

import (
	"context"
	"testing"
	"time"

	"walkintovoid/apperror"
	"walkintovoid/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialsLogin(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	hashed, err := cheapHash([]byte("correct horse"))
	require.NoError(t, err)
	hashedStr := string(hashed)
	now := time.Now()

	require.NoError(t, store.CreateUser(ctx, &database.User{Email: "verified@example.com", HashedPassword: &hashedStr, EmailVerified: &now, Role: database.RoleUser}))
	require.NoError(t, store.CreateUser(ctx, &database.User{Email: "pending@example.com", HashedPassword: &hashedStr, Role: database.RoleUser}))
	require.NoError(t, store.CreateUser(ctx, &database.User{Email: "google@example.com", EmailVerified: &now, Role: database.RoleUser}))

	c := &Credentials{Store: store}

	u, err := c.Login(ctx, "Verified@Example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "verified@example.com", u.Email)

	tests := []struct {
		email, password string
		kind            apperror.Kind
	}{
		{"", "x", apperror.KindValidation},
		{"nobody@example.com", "x", apperror.KindUnauthorized},
		{"google@example.com", "x", apperror.KindUnauthorized},
		{"pending@example.com", "correct horse", apperror.KindForbidden},
		{"verified@example.com", "wrong", apperror.KindUnauthorized},
	}
	for _, tt := range tests {
		_, err := c.Login(ctx, tt.email, tt.password)
		require.Error(t, err, tt.email)
		assert.Equal(t, tt.kind, apperror.KindOf(err), tt.email)
	}
}
