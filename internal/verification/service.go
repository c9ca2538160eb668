package verification

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/logger"
	"marketplace/internal/pkg/phone"
	"marketplace/internal/pkg/validator"
)

var codeRegex = regexp.MustCompile(`^\d{6}$`)

const (
	StatusSent     = "sent"
	StatusFallback = "fallback"

	defaultMaxAttempts = 5
)

type Options struct {
	Pepper         string
	CodeTTL        time.Duration
	ResendCooldown time.Duration
	// VerifiedWindow is how long a successful verification can be used by
	// registration or shop creation.
	VerifiedWindow time.Duration
	MaxAttempts    int
}

// SendResult tells the caller how the code travelled. Code is only set
// for the fallback path, when the messenger could not deliver it.
type SendResult struct {
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
}

type Service struct {
	store    Store
	senders  map[domain.VerificationChannel]Sender
	opts     Options
	now      func() time.Time
	generate func() (string, error)
}

func NewService(store Store, email, whatsapp Sender, opts Options) *Service {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	return &Service{
		store: store,
		senders: map[domain.VerificationChannel]Sender{
			domain.ChannelEmail: email,
			domain.ChannelPhone: whatsapp,
		},
		opts:     opts,
		now:      time.Now,
		generate: generateVerificationCode,
	}
}

// Normalize returns the canonical form of a contact value: lower-cased
// email, or the bare 9-digit national phone number.
func Normalize(channel domain.VerificationChannel, target string) (string, error) {
	switch channel {
	case domain.ChannelEmail:
		email := strings.ToLower(strings.TrimSpace(target))
		if !validator.Var(email, "required,email") {
			return "", ErrInvalidTarget
		}
		return email, nil
	case domain.ChannelPhone:
		n := phone.Normalize(target)
		if n == "" {
			return "", ErrInvalidTarget
		}
		return n, nil
	default:
		return "", ErrInvalidTarget
	}
}

// Send issues a fresh code for the target and delivers it. A failed
// WhatsApp delivery does not fail the call: the code is returned with
// StatusFallback so signup can continue.
func (s *Service) Send(ctx context.Context, channel domain.VerificationChannel, target string) (*SendResult, error) {
	normalized, err := Normalize(channel, target)
	if err != nil {
		return nil, err
	}

	now := s.now()
	row, err := s.store.Get(ctx, channel, normalized)
	switch {
	case errors.Is(err, ErrNotFound):
		row = &domain.VerificationCode{Channel: channel, Target: normalized, CreatedAt: now}
	case err != nil:
		return nil, err
	default:
		if row.LastSentAt.Add(s.opts.ResendCooldown).After(now) {
			return nil, ErrRateLimited
		}
	}

	code, err := s.generate()
	if err != nil {
		return nil, err
	}

	row.CodeHash = hashVerificationCode(code, s.opts.Pepper)
	row.Attempts = 0
	row.LastSentAt = now
	row.ExpiresAt = now.Add(s.opts.CodeTTL)
	row.UsedAt = nil
	row.VerifiedUntil = nil

	if err := s.store.Save(ctx, row); err != nil {
		return nil, err
	}

	if err := s.deliver(ctx, channel, normalized, code); err != nil {
		if channel == domain.ChannelPhone {
			logger.Warn().Err(err).Str("target", maskTarget(normalized)).Msg("whatsapp delivery failed, returning code directly")
			return &SendResult{Status: StatusFallback, Code: code}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	return &SendResult{Status: StatusSent}, nil
}

// Verify checks the code and, on success, marks the target verified for
// the configured window. Codes are single-use.
func (s *Service) Verify(ctx context.Context, channel domain.VerificationChannel, target, code string) error {
	code = strings.TrimSpace(code)
	if !codeRegex.MatchString(code) {
		return ErrInvalidCodeFormat
	}

	normalized, err := Normalize(channel, target)
	if err != nil {
		return err
	}

	row, err := s.store.Get(ctx, channel, normalized)
	if errors.Is(err, ErrNotFound) {
		return ErrInvalidCode
	}
	if err != nil {
		return err
	}

	now := s.now()
	if row.UsedAt != nil {
		return ErrInvalidCode
	}
	if row.Attempts >= s.opts.MaxAttempts {
		return ErrTooManyAttempts
	}
	if !row.ExpiresAt.After(now) {
		return ErrCodeExpired
	}

	if hashVerificationCode(code, s.opts.Pepper) != row.CodeHash {
		row.Attempts++
		if err := s.store.Save(ctx, row); err != nil {
			return err
		}
		if row.Attempts >= s.opts.MaxAttempts {
			return ErrTooManyAttempts
		}
		return ErrInvalidCode
	}

	until := now.Add(s.opts.VerifiedWindow)
	row.UsedAt = &now
	row.VerifiedUntil = &until
	return s.store.Save(ctx, row)
}

// IsVerified reports whether the target passed verification within the
// verified window.
func (s *Service) IsVerified(ctx context.Context, channel domain.VerificationChannel, target string) (bool, error) {
	normalized, err := Normalize(channel, target)
	if err != nil {
		return false, err
	}
	row, err := s.store.Get(ctx, channel, normalized)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return row.VerifiedUntil != nil && row.VerifiedUntil.After(s.now()), nil
}

// Cleanup removes records that expired before now.
func (s *Service) Cleanup(ctx context.Context) (int64, error) {
	return s.store.DeleteExpired(ctx, s.now())
}

func (s *Service) deliver(ctx context.Context, channel domain.VerificationChannel, target, code string) error {
	sender := s.senders[channel]
	if sender == nil {
		return errors.New("no sender configured")
	}
	switch channel {
	case domain.ChannelPhone:
		body := fmt.Sprintf("Your marketplace verification code is %s. It expires in %d minutes.", code, int(s.opts.CodeTTL.Minutes()))
		return sender.Send(ctx, phone.E164(target), "", body)
	default:
		body := fmt.Sprintf("Your verification code is %s.\nIt expires in %d minutes. If you did not request it, ignore this email.", code, int(s.opts.CodeTTL.Minutes()))
		return sender.Send(ctx, target, "Verify your email", body)
	}
}

func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func hashVerificationCode(code, pepper string) string {
	h := sha256.Sum256([]byte(code + pepper))
	return hex.EncodeToString(h[:])
}

func maskTarget(t string) string {
	if len(t) <= 3 {
		return "***"
	}
	return strings.Repeat("*", len(t)-3) + t[len(t)-3:]
}
