package product

import (
	"context"
	"strings"

	"marketplace/internal/domain"
	"marketplace/internal/logger"
	"marketplace/internal/repository"
)

type Service struct {
	products ProductRepositoryInterface
	shops    ShopReader
	notifs   ReviewNotifier
}

func NewService(products ProductRepositoryInterface, shops ShopReader, notifs ReviewNotifier) *Service {
	return &Service{products: products, shops: shops, notifs: notifs}
}

// Create adds a product to the caller's own shop.
func (s *Service) Create(ctx context.Context, viewer domain.Viewer, req CreateProductRequest) (*domain.Product, error) {
	shop, err := s.shops.GetByOwnerID(ctx, viewer.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNoShop
		}
		return nil, err
	}

	p := &domain.Product{
		ShopID:        shop.ID,
		Kind:          domain.KindProduct,
		Name:          strings.TrimSpace(req.Name),
		Description:   strings.TrimSpace(req.Description),
		Category:      strings.TrimSpace(req.Category),
		OriginalPrice: req.OriginalPrice,
		DiscountPrice: req.DiscountPrice,
		Stock:         req.Stock,
		Status:        domain.ProductActive,
		Images:        req.Images,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
	}
	if req.Kind != "" {
		p.Kind = domain.ProductKind(req.Kind)
	}
	if req.Status != "" {
		p.Status = domain.ProductStatus(req.Status)
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if err := validate(p); err != nil {
		return nil, err
	}

	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	p.Reviews = []domain.Review{}
	logger.Debug().Int64("product_id", p.ID).Int64("shop_id", shop.ID).Msg("product created")
	return p, nil
}

// Get returns a product. Inactive products and products of unapproved
// shops are visible only to the owner and admins.
func (s *Service) Get(ctx context.Context, viewer domain.Viewer, id int64) (*domain.Product, error) {
	p, shop, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	public := p.Status == domain.ProductActive && shop.IsApproved()
	if !public && !viewer.CanManage(shop.OwnerID) {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, viewer domain.Viewer, id int64, req UpdateProductRequest) (*domain.Product, error) {
	p, err := s.manageable(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		p.Category = strings.TrimSpace(*req.Category)
	}
	if req.OriginalPrice != nil {
		p.OriginalPrice = *req.OriginalPrice
	}
	if req.DiscountPrice != nil {
		p.DiscountPrice = *req.DiscountPrice
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.Images != nil {
		p.Images = req.Images
	}
	if req.StartDate != nil {
		p.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		p.EndDate = req.EndDate
	}
	if err := validate(p); err != nil {
		return nil, err
	}

	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) SetStatus(ctx context.Context, viewer domain.Viewer, id int64, status domain.ProductStatus) (*domain.Product, error) {
	p, err := s.manageable(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	p.Status = status
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// AddImage appends an uploaded image URL to the product gallery.
func (s *Service) AddImage(ctx context.Context, viewer domain.Viewer, id int64, imageURL string) (*domain.Product, error) {
	p, err := s.manageable(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	p.Images = append(p.Images, imageURL)
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the product and returns it so the caller can drop images.
func (s *Service) Delete(ctx context.Context, viewer domain.Viewer, id int64) (*domain.Product, error) {
	p, err := s.manageable(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// AddReview records one review per user and product and refreshes the
// cached average.
func (s *Service) AddReview(ctx context.Context, viewer domain.Viewer, id int64, req CreateReviewRequest) (*domain.Product, error) {
	p, err := s.Get(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	shop, err := s.shops.GetByID(ctx, p.ShopID)
	if err != nil {
		return nil, err
	}
	if shop.OwnerID == viewer.UserID {
		return nil, ErrOwnProduct
	}

	rv := &domain.Review{
		ProductID: p.ID,
		UserID:    viewer.UserID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
	}
	if err := s.products.AddReview(ctx, rv); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}
	if s.notifs != nil {
		_ = s.notifs.NotifyNewReview(ctx, shop.OwnerID, p.ID, rv.Rating)
	}

	return s.products.GetByID(ctx, p.ID)
}

func (s *Service) manageable(ctx context.Context, viewer domain.Viewer, id int64) (*domain.Product, error) {
	p, shop, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.CanManage(shop.OwnerID) {
		return nil, ErrForbidden
	}
	return p, nil
}

func (s *Service) load(ctx context.Context, id int64) (*domain.Product, *domain.Shop, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, ErrProductNotFound
		}
		return nil, nil, err
	}
	shop, err := s.shops.GetByID(ctx, p.ShopID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, ErrProductNotFound
		}
		return nil, nil, err
	}
	return p, shop, nil
}

func validate(p *domain.Product) error {
	if p.DiscountPrice > 0 && p.DiscountPrice >= p.OriginalPrice {
		return ErrInvalidPrice
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return ErrInvalidDates
	}
	return nil
}
