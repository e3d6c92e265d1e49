package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ErrOtpConsumed means the code disappeared between lookup and use.
var ErrOtpConsumed = errors.New("verification code already consumed")

// ReplaceOtp stores a fresh code for email; earlier codes for the same
// address stop working. Expiry is kept in UTC so the purge cutoff compares
// like with like.
func (s *Store) ReplaceOtp(ctx context.Context, otp *VerificationOtp) error {
	otp.Expires = otp.Expires.UTC()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", otp.Email).Delete(&VerificationOtp{}).Error; err != nil {
			return err
		}
		return tx.Create(otp).Error
	})
}

func (s *Store) FindOtp(ctx context.Context, email, token string) (*VerificationOtp, error) {
	var otp VerificationOtp
	err := s.db.WithContext(ctx).
		Where("email = ? AND token = ?", email, token).
		First(&otp).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &otp, nil
}

// ConsumeOtpAndCreateUser creates u and deletes otp in one transaction, so a
// code yields at most one account.
func (s *Store) ConsumeOtpAndCreateUser(ctx context.Context, otp *VerificationOtp, u *User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", otp.ID).Delete(&VerificationOtp{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOtpConsumed
		}
		return nil
	})
}

// DeleteExpiredOtps removes codes whose expiry is before now.
func (s *Store) DeleteExpiredOtps(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires < ?", now.UTC()).Delete(&VerificationOtp{})
	return res.RowsAffected, res.Error
}
