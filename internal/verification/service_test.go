package verification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/database"
	"marketplace/internal/domain"
)

type captureSender struct {
	mu   sync.Mutex
	err  error
	to   []string
	body []string
}

func (s *captureSender) Send(_ context.Context, to, _ string, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.to = append(s.to, to)
	s.body = append(s.body, body)
	return nil
}

func newTestService(t *testing.T, email, whatsapp Sender) (*Service, *time.Time) {
	t.Helper()

	db, err := database.Connect(filepath.Join(t.TempDir(), "verification.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	svc := NewService(NewGormStore(db), email, whatsapp, Options{
		Pepper:         "pepper",
		CodeTTL:        10 * time.Minute,
		ResendCooldown: time.Minute,
		VerifiedWindow: 30 * time.Minute,
	})

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	svc.generate = func() (string, error) { return "123456", nil }
	return svc, &now
}

func TestSendAndVerifyEmail(t *testing.T) {
	ctx := context.Background()
	mail := &captureSender{}
	svc, _ := newTestService(t, mail, &captureSender{})

	res, err := svc.Send(ctx, domain.ChannelEmail, "  Amina@Example.MA ")
	require.NoError(t, err)
	assert.Equal(t, StatusSent, res.Status)
	assert.Empty(t, res.Code)
	require.Len(t, mail.to, 1)
	assert.Equal(t, "amina@example.ma", mail.to[0])
	assert.Contains(t, mail.body[0], "123456")

	ok, err := svc.IsVerified(ctx, domain.ChannelEmail, "amina@example.ma")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.Verify(ctx, domain.ChannelEmail, "amina@example.ma", "123456"))

	ok, err = svc.IsVerified(ctx, domain.ChannelEmail, "AMINA@example.ma")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_SingleUse(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &captureSender{}, &captureSender{})

	_, err := svc.Send(ctx, domain.ChannelEmail, "a@b.ma")
	require.NoError(t, err)
	require.NoError(t, svc.Verify(ctx, domain.ChannelEmail, "a@b.ma", "123456"))

	err = svc.Verify(ctx, domain.ChannelEmail, "a@b.ma", "123456")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestVerify_WrongCodeUntilLocked(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &captureSender{}, &captureSender{})

	_, err := svc.Send(ctx, domain.ChannelEmail, "a@b.ma")
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		assert.ErrorIs(t, svc.Verify(ctx, domain.ChannelEmail, "a@b.ma", "000000"), ErrInvalidCode)
	}
	assert.ErrorIs(t, svc.Verify(ctx, domain.ChannelEmail, "a@b.ma", "000000"), ErrTooManyAttempts)
	assert.ErrorIs(t, svc.Verify(ctx, domain.ChannelEmail, "a@b.ma", "123456"), ErrTooManyAttempts)
}

func TestVerify_Expired(t *testing.T) {
	ctx := context.Background()
	svc, now := newTestService(t, &captureSender{}, &captureSender{})

	_, err := svc.Send(ctx, domain.ChannelEmail, "a@b.ma")
	require.NoError(t, err)

	*now = now.Add(11 * time.Minute)
	assert.ErrorIs(t, svc.Verify(ctx, domain.ChannelEmail, "a@b.ma", "123456"), ErrCodeExpired)
}

func TestVerify_BadFormat(t *testing.T) {
	svc, _ := newTestService(t, &captureSender{}, &captureSender{})
	assert.ErrorIs(t, svc.Verify(context.Background(), domain.ChannelEmail, "a@b.ma", "12a456"), ErrInvalidCodeFormat)
	assert.ErrorIs(t, svc.Verify(context.Background(), domain.ChannelEmail, "a@b.ma", "12345"), ErrInvalidCodeFormat)
}

func TestSend_ResendCooldown(t *testing.T) {
	ctx := context.Background()
	svc, now := newTestService(t, &captureSender{}, &captureSender{})

	_, err := svc.Send(ctx, domain.ChannelEmail, "a@b.ma")
	require.NoError(t, err)

	_, err = svc.Send(ctx, domain.ChannelEmail, "a@b.ma")
	assert.ErrorIs(t, err, ErrRateLimited)

	*now = now.Add(61 * time.Second)
	_, err = svc.Send(ctx, domain.ChannelEmail, "a@b.ma")
	assert.NoError(t, err)
}

func TestSend_InvalidTarget(t *testing.T) {
	svc, _ := newTestService(t, &captureSender{}, &captureSender{})

	_, err := svc.Send(context.Background(), domain.ChannelEmail, "nope")
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = svc.Send(context.Background(), domain.ChannelPhone, "0512345678")
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestSendPhone_NormalizesAndDeliversE164(t *testing.T) {
	ctx := context.Background()
	wa := &captureSender{}
	svc, _ := newTestService(t, &captureSender{}, wa)

	res, err := svc.Send(ctx, domain.ChannelPhone, "06 12 34 56 78")
	require.NoError(t, err)
	assert.Equal(t, StatusSent, res.Status)
	require.Len(t, wa.to, 1)
	assert.Equal(t, "+212612345678", wa.to[0])

	require.NoError(t, svc.Verify(ctx, domain.ChannelPhone, "+212612345678", "123456"))
	ok, err := svc.IsVerified(ctx, domain.ChannelPhone, "0612345678")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSendPhone_DeliveryFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &captureSender{}, &captureSender{err: errors.New("gateway down")})

	res, err := svc.Send(ctx, domain.ChannelPhone, "0712345678")
	require.NoError(t, err)
	assert.Equal(t, StatusFallback, res.Status)
	assert.Equal(t, "123456", res.Code)

	assert.NoError(t, svc.Verify(ctx, domain.ChannelPhone, "0712345678", res.Code))
}

func TestSendEmail_DeliveryFailure(t *testing.T) {
	svc, _ := newTestService(t, &captureSender{err: errors.New("smtp down")}, &captureSender{})

	_, err := svc.Send(context.Background(), domain.ChannelEmail, "a@b.ma")
	assert.ErrorIs(t, err, ErrDeliveryFailed)
}

func TestIsVerified_WindowElapses(t *testing.T) {
	ctx := context.Background()
	svc, now := newTestService(t, &captureSender{}, &captureSender{})

	_, err := svc.Send(ctx, domain.ChannelEmail, "a@b.ma")
	require.NoError(t, err)
	require.NoError(t, svc.Verify(ctx, domain.ChannelEmail, "a@b.ma", "123456"))

	*now = now.Add(31 * time.Minute)
	ok, err := svc.IsVerified(ctx, domain.ChannelEmail, "a@b.ma")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCleanup(t *testing.T) {
	ctx := context.Background()
	svc, now := newTestService(t, &captureSender{}, &captureSender{})

	_, err := svc.Send(ctx, domain.ChannelEmail, "a@b.ma")
	require.NoError(t, err)

	n, err := svc.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	*now = now.Add(time.Hour)
	n, err = svc.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestWhatsAppSender(t *testing.T) {
	var got whatsAppMessage
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := NewWhatsAppSender(srv.URL, "tok").Send(context.Background(), "+212612345678", "", "code 123456")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, "+212612345678", got.To)
	assert.Equal(t, "code 123456", got.Text.Body)
}

func TestWhatsAppSender_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWhatsAppSender(srv.URL, "").Send(context.Background(), "+212612345678", "", "x")
	assert.Error(t, err)
}

func TestRecordTTL(t *testing.T) {
	now := time.Now()
	code := &domain.VerificationCode{ExpiresAt: now.Add(10 * time.Minute)}
	assert.InDelta(t, (10 * time.Minute).Seconds(), recordTTL(code, now).Seconds(), 1)

	until := now.Add(30 * time.Minute)
	code.VerifiedUntil = &until
	assert.InDelta(t, (30 * time.Minute).Seconds(), recordTTL(code, now).Seconds(), 1)

	code = &domain.VerificationCode{ExpiresAt: now.Add(-time.Hour)}
	assert.Equal(t, time.Minute, recordTTL(code, now))
}
