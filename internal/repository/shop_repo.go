package repository

import (
	"context"

	"marketplace/internal/domain"

	"gorm.io/gorm"
)

type ShopRepository struct {
	db *gorm.DB
}

func NewShopRepository(db *gorm.DB) *ShopRepository {
	return &ShopRepository{db: db}
}

func (r *ShopRepository) DB() *gorm.DB { return r.db }

func (r *ShopRepository) Create(ctx context.Context, s *domain.Shop) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// GetByID fetches a shop with its owner.
func (r *ShopRepository) GetByID(ctx context.Context, id int64) (*domain.Shop, error) {
	var s domain.Shop
	err := r.db.WithContext(ctx).
		Preload("Owner").
		First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ShopRepository) GetByOwnerID(ctx context.Context, ownerID int64) (*domain.Shop, error) {
	var s domain.Shop
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ShopRepository) Update(ctx context.Context, s *domain.Shop) error {
	return r.db.WithContext(ctx).Omit("Owner").Save(s).Error
}

// ListApproved returns shops visible to the public, newest first.
func (r *ShopRepository) ListApproved(ctx context.Context) ([]domain.Shop, error) {
	var shops []domain.Shop
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.ShopApproved).
		Order("created_at DESC").
		Find(&shops).Error
	return shops, err
}

// ListWithOwners returns every shop with its owner for moderation.
func (r *ShopRepository) ListWithOwners(ctx context.Context) ([]domain.Shop, error) {
	var shops []domain.Shop
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Order("created_at DESC").
		Find(&shops).Error
	return shops, err
}

// Delete removes the shop and cascades to its products and their reviews.
func (r *ShopRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteShopTx(tx, id)
	})
}

func deleteShopTx(tx *gorm.DB, shopID int64) error {
	var productIDs []int64
	if err := tx.Model(&domain.Product{}).Where("shop_id = ?", shopID).Pluck("id", &productIDs).Error; err != nil {
		return err
	}
	if len(productIDs) > 0 {
		if err := tx.Where("product_id IN ?", productIDs).Delete(&domain.Review{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("shop_id = ?", shopID).Delete(&domain.Product{}).Error; err != nil {
		return err
	}
	res := tx.Delete(&domain.Shop{}, shopID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
