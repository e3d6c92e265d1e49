package auth

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"

	"walkintovoid/apperror"
	"walkintovoid/constants"
	"walkintovoid/database"
	"walkintovoid/mailer"
	"walkintovoid/metrics"
	templates "walkintovoid/templates_fancy"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type OtpStore interface {
	VerifiedUserByEmail(ctx context.Context, email string) (*database.User, error)
	ReplaceOtp(ctx context.Context, otp *database.VerificationOtp) error
	FindOtp(ctx context.Context, email, token string) (*database.VerificationOtp, error)
	ConsumeOtpAndCreateUser(ctx context.Context, otp *database.VerificationOtp, u *database.User) error
	DeleteExpiredOtps(ctx context.Context, now time.Time) (int64, error)
}

// OtpService proves control of an email address before an account with a
// password is created for it.
type OtpService struct {
	Store   OtpStore
	Mailer  mailer.Mailer
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	TTL     time.Duration
	From    string

	Now  func() time.Time
	Hash func(password []byte) ([]byte, error)
}

func NewOtpService(store OtpStore, m mailer.Mailer, logger *zap.Logger, met *metrics.Metrics) *OtpService {
	return &OtpService{
		Store:   store,
		Mailer:  m,
		Logger:  logger,
		Metrics: met,
		TTL:     constants.OTP_TTL,
		From:    constants.OTP_MAIL_SENDER,
		Now:     time.Now,
		Hash:    HashPassword,
	}
}

func HashPassword(password []byte) ([]byte, error) {
	return bcrypt.GenerateFromPassword(password, constants.BCRYPT_COST)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateCode returns a uniformly random code in [OTP_MIN, OTP_MAX].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(constants.OTP_MAX-constants.OTP_MIN+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+constants.OTP_MIN, 10), nil
}

// RequestOtp issues a fresh code for email and mails it. Any earlier code for
// the same address stops working.
func (s *OtpService) RequestOtp(ctx context.Context, email string) (err error) {
	defer func() {
		if s.Metrics != nil {
			s.Metrics.OtpRequests.WithLabelValues(metrics.Result(err)).Inc()
		}
	}()

	email = NormalizeEmail(email)
	if email == "" {
		return apperror.Validation("Email is required")
	}

	_, err = s.Store.VerifiedUserByEmail(ctx, email)
	switch {
	case err == nil:
		return apperror.Conflict(nil, "A verified user with this email already exists.")
	case !database.IsNotFound(err):
		return apperror.Unexpected(err, "Failed to send verification email.")
	}

	code, err := generateCode()
	if err != nil {
		return apperror.Unexpected(err, "Failed to send verification email.")
	}

	otp := &database.VerificationOtp{
		Email:   email,
		Token:   code,
		Expires: s.Now().Add(s.TTL),
	}
	if err := s.Store.ReplaceOtp(ctx, otp); err != nil {
		return apperror.Unexpected(err, "Failed to send verification email.")
	}

	body, err := templates.Render(templates.OtpEmail(code, s.TTL))
	if err != nil {
		return apperror.Unexpected(err, "Failed to send verification email.")
	}
	err = s.Mailer.Send(ctx, mailer.Message{
		From:     s.From,
		FromName: constants.APP_NAME,
		To:       email,
		Subject:  constants.OTP_MAIL_TITLE,
		Text:     templates.OtpEmailText(code, s.TTL),
		HTML:     body,
	})
	if err != nil {
		s.Logger.Error("could not send verification email", zap.String("email", email), zap.Error(err))
		return apperror.Unexpected(err, "Failed to send verification email.")
	}

	s.Logger.Info("verification code issued", zap.String("email", email), zap.Time("expires", otp.Expires))
	return nil
}

type Registration struct {
	Name     string
	Email    string
	Password string
	Otp      string
}

// VerifyOtp consumes the code and creates the verified user, returning its id.
func (s *OtpService) VerifyOtp(ctx context.Context, reg Registration) (userID string, err error) {
	defer func() {
		if s.Metrics != nil {
			s.Metrics.OtpVerifications.WithLabelValues(metrics.Result(err)).Inc()
		}
	}()

	reg.Email = NormalizeEmail(reg.Email)
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Otp = strings.TrimSpace(reg.Otp)
	if reg.Email == "" || reg.Password == "" || reg.Otp == "" || reg.Name == "" {
		return "", apperror.Validation("Missing required fields")
	}

	otp, err := s.Store.FindOtp(ctx, reg.Email, reg.Otp)
	if database.IsNotFound(err) {
		return "", apperror.Validation("Invalid OTP")
	}
	if err != nil {
		return "", apperror.Unexpected(err, "")
	}

	now := s.Now()
	if otp.ExpiredAt(now) {
		return "", apperror.Expired("OTP has expired")
	}

	hashed, err := s.Hash([]byte(reg.Password))
	if err != nil {
		return "", apperror.Unexpected(err, "")
	}
	hashedStr := string(hashed)

	u := &database.User{
		Email:          reg.Email,
		Name:           reg.Name,
		HashedPassword: &hashedStr,
		EmailVerified:  &now,
		Role:           database.RoleUser,
	}
	err = s.Store.ConsumeOtpAndCreateUser(ctx, otp, u)
	switch {
	case err == nil:
	case database.IsUniqueViolation(err):
		return "", apperror.Conflict(err, "A user with this email already exists.")
	case errors.Is(err, database.ErrOtpConsumed):
		return "", apperror.Validation("Invalid OTP")
	default:
		return "", apperror.Unexpected(err, "")
	}

	s.Logger.Info("user registered", zap.String("user_id", u.ID), zap.String("email", u.Email))
	return u.ID, nil
}

// PurgeExpired drops codes that can no longer be used.
func (s *OtpService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.Store.DeleteExpiredOtps(ctx, s.Now())
	if err != nil {
		return 0, apperror.Unexpected(err, "")
	}
	if n > 0 {
		s.Logger.Info("purged expired verification codes", zap.Int64("count", n))
	}
	return n, nil
}
