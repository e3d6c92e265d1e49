package auth

import (
	"context"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"walkintovoid/apperror"
	"walkintovoid/database"
	"walkintovoid/mailer"
	"walkintovoid/metrics"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

func (f *fakeMailer) lastCode(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "no mail was sent")
	code := codePattern.FindString(f.sent[len(f.sent)-1].Text)
	require.NotEmpty(t, code)
	return code
}

func openStore(t *testing.T) *database.Store {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "auth.db") + "?_foreign_keys=on"
	s, err := database.Open(database.Options{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func cheapHash(p []byte) ([]byte, error) {
	return bcrypt.GenerateFromPassword(p, bcrypt.MinCost)
}

func newTestOtpService(t *testing.T) (*OtpService, *database.Store, *fakeMailer, *clock) {
	t.Helper()
	store := openStore(t)
	fm := &fakeMailer{}
	clk := &clock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewOtpService(store, fm, zaptest.NewLogger(t), metrics.New())
	svc.Now = clk.Now
	svc.Hash = cheapHash
	return svc, store, fm, clk
}

func registration(email, code string) Registration {
	return Registration{Name: "Alice", Email: email, Password: "hunter22", Otp: code}
}

func TestRequestThenVerifyIsSingleUse(t *testing.T) {
	svc, store, fm, _ := newTestOtpService(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestOtp(ctx, "  Alice@Example.com "))
	require.Len(t, fm.sent, 1)
	assert.Equal(t, "alice@example.com", fm.sent[0].To)
	assert.Equal(t, "OTP for WalkIntoVoid Blogs", fm.sent[0].Subject)
	assert.Equal(t, "WalkIntoVoid@noobx.in", fm.sent[0].From)
	assert.Equal(t, "WalkIntoVoid", fm.sent[0].FromName)
	code := fm.lastCode(t)
	assert.Contains(t, fm.sent[0].HTML, code)

	id, err := svc.VerifyOtp(ctx, registration("alice@example.com", code))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	u, err := store.VerifiedUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, database.RoleUser, u.Role)
	require.NotNil(t, u.HashedPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*u.HashedPassword), []byte("hunter22")))

	_, err = svc.VerifyOtp(ctx, registration("alice@example.com", code))
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Equal(t, "Invalid OTP", apperror.Message(err))

	assert.Equal(t, 1.0, testutil.ToFloat64(svc.Metrics.OtpRequests.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.Metrics.OtpVerifications.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.Metrics.OtpVerifications.WithLabelValues("validation")))
}

func TestVerifyOtpExpired(t *testing.T) {
	svc, _, fm, clk := newTestOtpService(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestOtp(ctx, "bob@example.com"))
	code := fm.lastCode(t)

	clk.Advance(15*time.Minute + time.Second)
	_, err := svc.VerifyOtp(ctx, registration("bob@example.com", code))
	require.Error(t, err)
	assert.Equal(t, apperror.KindExpired, apperror.KindOf(err))
	assert.Equal(t, "OTP has expired", apperror.Message(err))
}

func TestVerifyOtpAtExactExpiryStillWorks(t *testing.T) {
	svc, _, fm, clk := newTestOtpService(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestOtp(ctx, "bob@example.com"))
	code := fm.lastCode(t)

	clk.Advance(15 * time.Minute)
	_, err := svc.VerifyOtp(ctx, registration("bob@example.com", code))
	assert.NoError(t, err)
}

func TestVerifyOtpWithAnotherEmailsCode(t *testing.T) {
	svc, _, fm, _ := newTestOtpService(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestOtp(ctx, "carol@example.com"))
	carolCode := fm.lastCode(t)
	require.NoError(t, svc.RequestOtp(ctx, "dave@example.com"))
	daveCode := fm.lastCode(t)
	if carolCode == daveCode {
		t.Skip("both addresses drew the same code")
	}

	_, err := svc.VerifyOtp(ctx, registration("dave@example.com", carolCode))
	require.Error(t, err)
	assert.Equal(t, "Invalid OTP", apperror.Message(err))

	_, err = svc.VerifyOtp(ctx, registration("dave@example.com", daveCode))
	assert.NoError(t, err)
}

func TestRequestOtpSupersedesEarlierCode(t *testing.T) {
	svc, _, fm, _ := newTestOtpService(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestOtp(ctx, "erin@example.com"))
	first := fm.lastCode(t)
	require.NoError(t, svc.RequestOtp(ctx, "erin@example.com"))
	second := fm.lastCode(t)
	if first != second {
		_, err := svc.VerifyOtp(ctx, registration("erin@example.com", first))
		assert.Equal(t, "Invalid OTP", apperror.Message(err))
	}

	_, err := svc.VerifyOtp(ctx, registration("erin@example.com", second))
	assert.NoError(t, err)
}

func TestRequestOtpForVerifiedUser(t *testing.T) {
	svc, _, fm, _ := newTestOtpService(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestOtp(ctx, "frank@example.com"))
	_, err := svc.VerifyOtp(ctx, registration("frank@example.com", fm.lastCode(t)))
	require.NoError(t, err)

	err = svc.RequestOtp(ctx, "FRANK@example.com")
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Len(t, fm.sent, 1, "no second mail")
}

func TestRequestOtpValidation(t *testing.T) {
	svc, _, fm, _ := newTestOtpService(t)

	err := svc.RequestOtp(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Equal(t, "Email is required", apperror.Message(err))
	assert.Empty(t, fm.sent)
}

func TestRequestOtpMailFailure(t *testing.T) {
	svc, _, fm, _ := newTestOtpService(t)
	fm.err = errors.New("smtp down")

	err := svc.RequestOtp(context.Background(), "gina@example.com")
	require.Error(t, err)
	assert.Equal(t, apperror.KindUnexpected, apperror.KindOf(err))
	assert.Equal(t, "Failed to send verification email.", apperror.Message(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.Metrics.OtpRequests.WithLabelValues("unexpected")))
}

func TestVerifyOtpMissingFields(t *testing.T) {
	svc, _, _, _ := newTestOtpService(t)
	ctx := context.Background()

	for _, reg := range []Registration{
		{Email: "a@b.com", Password: "x", Otp: "123456"},
		{Name: "A", Password: "x", Otp: "123456"},
		{Name: "A", Email: "a@b.com", Otp: "123456"},
		{Name: "A", Email: "a@b.com", Password: "x"},
	} {
		_, err := svc.VerifyOtp(ctx, reg)
		require.Error(t, err)
		assert.Equal(t, "Missing required fields", apperror.Message(err))
	}
}

func TestConcurrentVerifyCreatesOneUser(t *testing.T) {
	svc, store, fm, _ := newTestOtpService(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestOtp(ctx, "race@example.com"))
	code := fm.lastCode(t)

	// both callers must have found the code before either of them consumes it
	var arrived sync.WaitGroup
	arrived.Add(2)
	svc.Hash = func(p []byte) ([]byte, error) {
		arrived.Done()
		arrived.Wait()
		return cheapHash(p)
	}

	errs := make([]error, 2)
	ids := make([]string, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = svc.VerifyOtp(ctx, registration("race@example.com", code))
		}(i)
	}
	wg.Wait()

	var created, conflicts int
	for i, err := range errs {
		switch {
		case err == nil:
			created++
			assert.NotEmpty(t, ids[i])
		case apperror.Is(err, apperror.KindConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, conflicts)

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestPurgeExpired(t *testing.T) {
	svc, _, fm, clk := newTestOtpService(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestOtp(ctx, "old@example.com"))
	clk.Advance(10 * time.Minute)
	require.NoError(t, svc.RequestOtp(ctx, "new@example.com"))
	fresh := fm.lastCode(t)
	clk.Advance(6 * time.Minute)

	n, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = svc.VerifyOtp(ctx, registration("new@example.com", fresh))
	assert.NoError(t, err)
}
