package shop

import (
	"context"

	"marketplace/internal/domain"

	"gorm.io/gorm"
)

type ShopRepositoryInterface interface {
	DB() *gorm.DB
	GetByID(ctx context.Context, id int64) (*domain.Shop, error)
	GetByOwnerID(ctx context.Context, ownerID int64) (*domain.Shop, error)
	Update(ctx context.Context, s *domain.Shop) error
	ListApproved(ctx context.Context) ([]domain.Shop, error)
	Delete(ctx context.Context, id int64) error
}

type ProductLister interface {
	ListByShop(ctx context.Context, shopID int64, activeOnly bool) ([]domain.Product, error)
}

type PhoneVerifier interface {
	IsVerified(ctx context.Context, channel domain.VerificationChannel, target string) (bool, error)
}

type jwtService interface {
	GenerateToken(userID int64, role string) (string, error)
}
