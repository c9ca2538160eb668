package auth

import (
	"context"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/verification"
)

// UserRepositoryInterface — only the methods auth service uses
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id int64) error
}

// ResetTokenRepositoryInterface — storage for password reset tokens
type ResetTokenRepositoryInterface interface {
	Create(ctx context.Context, t *domain.PasswordResetToken) error
	GetByHash(ctx context.Context, hash string) (*domain.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id int64, at time.Time) (bool, error)
}

// ShopReader attaches the seller's shop to /users/me.
type ShopReader interface {
	GetByOwnerID(ctx context.Context, ownerID int64) (*domain.Shop, error)
}

// Verifier is the part of verification.Service auth depends on.
type Verifier interface {
	Send(ctx context.Context, channel domain.VerificationChannel, target string) (*verification.SendResult, error)
	Verify(ctx context.Context, channel domain.VerificationChannel, target, code string) error
	IsVerified(ctx context.Context, channel domain.VerificationChannel, target string) (bool, error)
}
