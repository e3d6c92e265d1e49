package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceOtpSupersedesEarlierCodes(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	expires := time.Now().Add(15 * time.Minute)

	require.NoError(t, s.ReplaceOtp(ctx, &VerificationOtp{Email: "a@b.com", Token: "111111", Expires: expires}))
	require.NoError(t, s.ReplaceOtp(ctx, &VerificationOtp{Email: "a@b.com", Token: "222222", Expires: expires}))
	require.NoError(t, s.ReplaceOtp(ctx, &VerificationOtp{Email: "c@d.com", Token: "111111", Expires: expires}))

	_, err := s.FindOtp(ctx, "a@b.com", "111111")
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := s.FindOtp(ctx, "a@b.com", "222222")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", got.Email)
	_, err = s.FindOtp(ctx, "c@d.com", "111111")
	assert.NoError(t, err)
}

func TestConsumeOtpAndCreateUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	otp := &VerificationOtp{Email: "a@b.com", Token: "123456", Expires: time.Now().Add(time.Minute)}
	require.NoError(t, s.ReplaceOtp(ctx, otp))

	now := time.Now()
	require.NoError(t, s.ConsumeOtpAndCreateUser(ctx, otp, &User{Email: "a@b.com", Name: "A", Role: RoleUser, EmailVerified: &now}))

	_, err := s.FindOtp(ctx, "a@b.com", "123456")
	assert.ErrorIs(t, err, ErrNotFound)
	u, err := s.VerifiedUserByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, u.Role)

	err = s.ConsumeOtpAndCreateUser(ctx, otp, &User{Email: "other@b.com", Name: "B", Role: RoleUser})
	assert.ErrorIs(t, err, ErrOtpConsumed)
	_, err = s.UserByEmail(ctx, "other@b.com")
	assert.ErrorIs(t, err, ErrNotFound, "the transaction must roll back the user")
}

func TestDeleteExpiredOtps(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, s.ReplaceOtp(ctx, &VerificationOtp{Email: "old@b.com", Token: "111111", Expires: now.Add(-time.Minute)}))
	require.NoError(t, s.ReplaceOtp(ctx, &VerificationOtp{Email: "new@b.com", Token: "222222", Expires: now.Add(time.Minute)}))

	n, err := s.DeleteExpiredOtps(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	_, err = s.FindOtp(ctx, "new@b.com", "222222")
	assert.NoError(t, err)
}

func TestDeleteExpiredOtpsAcrossUTCOffsets(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	east := time.FixedZone("UTC+5", 5*60*60)
	west := time.FixedZone("UTC-5", -5*60*60)
	issued := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.ReplaceOtp(ctx, &VerificationOtp{Email: "old@b.com", Token: "111111", Expires: issued.In(east)}))
	require.NoError(t, s.ReplaceOtp(ctx, &VerificationOtp{Email: "new@b.com", Token: "222222", Expires: issued.Add(2 * time.Minute).In(west)}))

	n, err := s.DeleteExpiredOtps(ctx, issued.Add(time.Minute).In(west))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = s.FindOtp(ctx, "old@b.com", "111111")
	assert.ErrorIs(t, err, ErrNotFound)
	live, err := s.FindOtp(ctx, "new@b.com", "222222")
	require.NoError(t, err)
	assert.True(t, live.Expires.Equal(issued.Add(2*time.Minute)))
}

func TestUserRolesAndAccounts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	u := &User{Email: "g@b.com", Name: "G", Role: RoleUser}
	require.NoError(t, s.CreateUserWithAccount(ctx, u, "google", "sub-1", []byte(`{"sub":"sub-1"}`)))
	acct, err := s.AccountByProvider(ctx, "google", "sub-1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, acct.UserID)

	err = s.LinkAccount(ctx, u.ID, "google", "sub-1", nil)
	assert.True(t, IsUniqueViolation(err))

	updated, err := s.UpdateUserRole(ctx, u.ID, RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, RoleModerator, updated.Role)

	_, err = s.UpdateUserRole(ctx, "missing", RoleAdmin)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.VerifiedUserByEmail(ctx, "g@b.com")
	assert.ErrorIs(t, err, ErrNotFound, "oauth users without a verified email are not found here")
}
