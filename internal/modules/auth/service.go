package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/logger"
	"marketplace/internal/pkg/phone"
	"marketplace/internal/repository"
	"marketplace/internal/verification"

	"golang.org/x/crypto/bcrypt"
)

type jwtService interface {
	GenerateToken(userID int64, role string) (string, error)
}

// ResetOptions configures password reset tokens.
type ResetOptions struct {
	Pepper  string
	TTL     time.Duration
	URLBase string
}

// Service contains all business logic for authentication and the current
// user's account.
type Service struct {
	users    UserRepositoryInterface
	resets   ResetTokenRepositoryInterface
	shops    ShopReader
	verifier Verifier
	jwt      jwtService
	mailer   verification.Sender
	reset    ResetOptions
	now      func() time.Time
}

type LoginResult struct {
	User  *domain.User
	Token string
}

func NewService(
	users UserRepositoryInterface,
	resets ResetTokenRepositoryInterface,
	shops ShopReader,
	verifier Verifier,
	jwt jwtService,
	mailer verification.Sender,
	reset ResetOptions,
) *Service {
	return &Service{
		users:    users,
		resets:   resets,
		shops:    shops,
		verifier: verifier,
		jwt:      jwt,
		mailer:   mailer,
		reset:    reset,
		now:      time.Now,
	}
}

// Register creates a customer account. The email must have passed code
// verification within the verified window.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	verified, err := s.verifier.IsVerified(ctx, domain.ChannelEmail, email)
	if err != nil {
		return nil, err
	}
	if !verified {
		return nil, ErrEmailNotVerified
	}

	if err := s.validateEmailUnique(ctx, email); err != nil {
		return nil, err
	}

	hashedPassword, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:         email,
		PasswordHash:  hashedPassword,
		Name:          strings.TrimSpace(req.Name),
		Address:       strings.TrimSpace(req.Address),
		Role:          domain.RoleCustomer,
		EmailVerified: true,
	}
	if req.Phone != "" {
		user.Phone = phone.Normalize(req.Phone)
		user.PhoneVerified, _ = s.verifier.IsVerified(ctx, domain.ChannelPhone, user.Phone)
	}

	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	token, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("user_id", user.ID).Msg("user registered")
	return &LoginResult{User: user, Token: token}, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	s.attachShop(ctx, user)
	return &LoginResult{User: user, Token: token}, nil
}

func (s *Service) SendCode(ctx context.Context, channel domain.VerificationChannel, target string) (*verification.SendResult, error) {
	return s.verifier.Send(ctx, channel, target)
}

func (s *Service) VerifyCode(ctx context.Context, channel domain.VerificationChannel, target, code string) error {
	return s.verifier.Verify(ctx, channel, target, code)
}

// ForgotPassword mails a reset link when the account exists. Unknown
// addresses are accepted silently.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil
		}
		return err
	}

	raw, hash, err := generateResetToken(s.reset.Pepper)
	if err != nil {
		return err
	}

	now := s.now()
	if err := s.resets.Create(ctx, &domain.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: now.Add(s.reset.TTL),
		CreatedAt: now,
	}); err != nil {
		return err
	}

	link := s.reset.URLBase + "?token=" + url.QueryEscape(raw)
	body := fmt.Sprintf("Hello %s,\n\nUse this link to choose a new password: %s\nThe link expires in %d minutes.", user.Name, link, int(s.reset.TTL.Minutes()))
	if err := s.mailer.Send(ctx, user.Email, "Reset your password", body); err != nil {
		return fmt.Errorf("%w: %v", verification.ErrDeliveryFailed, err)
	}
	return nil
}

// ResetPassword sets a new password using a single-use reset token.
func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	hash := hashTokenWithPepper(strings.TrimSpace(req.Token), s.reset.Pepper)
	token, err := s.resets.GetByHash(ctx, hash)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrInvalidResetToken
		}
		return err
	}

	now := s.now()
	if token.UsedAt != nil || !token.ExpiresAt.After(now) {
		return ErrInvalidResetToken
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrInvalidResetToken
		}
		return err
	}

	claimed, err := s.resets.MarkUsed(ctx, token.ID, now)
	if err != nil {
		return err
	}
	if !claimed {
		return ErrInvalidResetToken
	}

	hashed, err := s.hashPassword(req.Password)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	return s.users.Update(ctx, user)
}

func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.attachShop(ctx, user)
	return user, nil
}

// UpdateProfile applies the provided fields. A changed phone number loses
// its verified mark unless the new number has just been verified.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*domain.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		user.Address = strings.TrimSpace(*req.Address)
	}
	if req.Phone != nil {
		normalized := phone.Normalize(*req.Phone)
		if normalized != user.Phone {
			user.Phone = normalized
			user.PhoneVerified = false
			if normalized != "" {
				user.PhoneVerified, _ = s.verifier.IsVerified(ctx, domain.ChannelPhone, normalized)
			}
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.attachShop(ctx, user)
	return user, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrWrongPassword
	}
	hashed, err := s.hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	return s.users.Update(ctx, user)
}

// SetAvatar stores the new avatar URL and returns the previous one so the
// caller can remove the old file.
func (s *Service) SetAvatar(ctx context.Context, userID int64, avatarURL string) (*domain.User, string, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	old := user.AvatarURL
	user.AvatarURL = avatarURL
	if err := s.users.Update(ctx, user); err != nil {
		return nil, "", err
	}
	return user, old, nil
}

// DeleteAccount removes the user with everything they own.
func (s *Service) DeleteAccount(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	logger.Info().Int64("user_id", userID).Msg("account deleted")
	return user, nil
}

func (s *Service) getUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) attachShop(ctx context.Context, user *domain.User) {
	if user.Role != domain.RoleSeller || s.shops == nil {
		return
	}
	if shop, err := s.shops.GetByOwnerID(ctx, user.ID); err == nil {
		shop.Owner = nil
		user.Shop = shop
	}
}

func (s *Service) validateEmailUnique(ctx context.Context, email string) error {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return ErrEmailAlreadyExists
	}
	return nil
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func generateResetToken(pepper string) (raw string, hash string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(buf)
	hash = hashTokenWithPepper(raw, pepper)
	return raw, hash, nil
}

func hashTokenWithPepper(raw, pepper string) string {
	sum := sha256.Sum256([]byte(raw + pepper))
	return hex.EncodeToString(sum[:])
}
