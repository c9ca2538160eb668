package admin

import (
	"context"

	"marketplace/internal/domain"

	"gorm.io/gorm"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, id int64) error
}

type ShopRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Shop, error)
	Update(ctx context.Context, s *domain.Shop) error
	ListWithOwners(ctx context.Context) ([]domain.Shop, error)
	Delete(ctx context.Context, id int64) error
	DB() *gorm.DB
}

type NotificationSender interface {
	NotifyShopApproved(ctx context.Context, ownerUserID, shopID int64) error
	NotifyShopRejected(ctx context.Context, ownerUserID, shopID int64, reason string) error
}
