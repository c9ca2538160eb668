package repository

import (
	"context"

	"marketplace/internal/domain"

	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) DB() *gorm.DB { return r.db }

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Omit("Reviews").Create(p).Error
}

// GetByID fetches a product with its reviews and their authors.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Reviews.User").
		First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Omit("Reviews").Save(p).Error
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&domain.Review{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ListByShop returns a shop's products with reviews. When activeOnly is set
// inactive and pending items are left out.
func (r *ProductRepository) ListByShop(ctx context.Context, shopID int64, activeOnly bool) ([]domain.Product, error) {
	q := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID)
	if activeOnly {
		q = q.Where("status = ?", domain.ProductActive)
	}

	var products []domain.Product
	err := q.
		Preload("Reviews").
		Preload("Reviews.User").
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

// AddReview stores the review and refreshes the product's cached rating
// in one transaction.
func (r *ProductRepository) AddReview(ctx context.Context, rv *domain.Review) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User").Create(rv).Error; err != nil {
			return err
		}

		var avg float64
		if err := tx.Model(&domain.Review{}).
			Where("product_id = ?", rv.ProductID).
			Select("COALESCE(AVG(rating), 0)").
			Scan(&avg).Error; err != nil {
			return err
		}

		return tx.Model(&domain.Product{}).
			Where("id = ?", rv.ProductID).
			Update("ratings", avg).Error
	})
}
