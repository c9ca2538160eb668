package product

import (
	"context"

	"marketplace/internal/domain"
)

type ProductRepositoryInterface interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id int64) error
	AddReview(ctx context.Context, rv *domain.Review) error
}

type ShopReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Shop, error)
	GetByOwnerID(ctx context.Context, ownerID int64) (*domain.Shop, error)
}

type ReviewNotifier interface {
	NotifyNewReview(ctx context.Context, ownerUserID, productID int64, rating int) error
}
