package shop

import (
	"context"
	"strings"

	"marketplace/internal/domain"
	"marketplace/internal/logger"
	"marketplace/internal/pkg/phone"
	"marketplace/internal/repository"

	"gorm.io/gorm"
)

type Service struct {
	shops    ShopRepositoryInterface
	products ProductLister
	verifier PhoneVerifier
	jwt      jwtService
}

func NewService(shops ShopRepositoryInterface, products ProductLister, verifier PhoneVerifier, jwt jwtService) *Service {
	return &Service{
		shops:    shops,
		products: products,
		verifier: verifier,
		jwt:      jwt,
	}
}

// Create turns the caller into a seller with a pending shop. The shop phone
// must have passed code verification.
func (s *Service) Create(ctx context.Context, viewer domain.Viewer, req CreateShopRequest) (*CreateShopResponse, error) {
	shopPhone := phone.Normalize(req.Phone)
	verified, err := s.verifier.IsVerified(ctx, domain.ChannelPhone, shopPhone)
	if err != nil {
		return nil, err
	}
	if !verified {
		return nil, ErrPhoneNotVerified
	}

	if _, err := s.shops.GetByOwnerID(ctx, viewer.UserID); err == nil {
		return nil, ErrShopAlreadyExists
	} else if !repository.IsNotFound(err) {
		return nil, err
	}

	shop := &domain.Shop{
		OwnerID:     viewer.UserID,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Address:     strings.TrimSpace(req.Address),
		Phone:       shopPhone,
		ZipCode:     strings.TrimSpace(req.ZipCode),
		Telegram:    strings.TrimSpace(req.Telegram),
		Status:      domain.ShopPending,
	}

	role := domain.RoleSeller
	if viewer.IsAdmin() {
		role = domain.RoleAdmin
	}

	err = s.shops.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Owner").Create(shop).Error; err != nil {
			return err
		}
		return tx.Model(&domain.User{}).
			Where("id = ?", viewer.UserID).
			Updates(map[string]any{"role": role, "phone_verified": true}).Error
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrShopAlreadyExists
		}
		return nil, err
	}

	token, err := s.jwt.GenerateToken(viewer.UserID, string(role))
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("shop_id", shop.ID).Int64("owner_id", viewer.UserID).Msg("shop created, awaiting approval")
	return &CreateShopResponse{Shop: shop, Token: token}, nil
}

// Get returns an approved shop, or any shop to its owner and admins.
func (s *Service) Get(ctx context.Context, viewer domain.Viewer, id int64) (*domain.Shop, error) {
	shop, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !shop.IsApproved() && !viewer.CanManage(shop.OwnerID) {
		return nil, ErrShopNotFound
	}
	hideOwnerSecrets(shop)
	return shop, nil
}

func (s *Service) ListApproved(ctx context.Context) ([]domain.Shop, error) {
	return s.shops.ListApproved(ctx)
}

// Products lists a shop's catalogue. The public sees active products of
// approved shops only.
func (s *Service) Products(ctx context.Context, viewer domain.Viewer, id int64) ([]domain.Product, error) {
	shop, err := s.Get(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	return s.products.ListByShop(ctx, shop.ID, !viewer.CanManage(shop.OwnerID))
}

func (s *Service) Update(ctx context.Context, viewer domain.Viewer, id int64, req UpdateShopRequest) (*domain.Shop, error) {
	shop, err := s.manageable(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	if req.Phone != nil {
		newPhone := phone.Normalize(*req.Phone)
		if newPhone != shop.Phone {
			verified, err := s.verifier.IsVerified(ctx, domain.ChannelPhone, newPhone)
			if err != nil {
				return nil, err
			}
			if !verified {
				return nil, ErrPhoneNotVerified
			}
			shop.Phone = newPhone
		}
	}
	if req.Name != nil {
		shop.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		shop.Description = strings.TrimSpace(*req.Description)
	}
	if req.Address != nil {
		shop.Address = strings.TrimSpace(*req.Address)
	}
	if req.ZipCode != nil {
		shop.ZipCode = strings.TrimSpace(*req.ZipCode)
	}
	if req.Telegram != nil {
		shop.Telegram = strings.TrimSpace(*req.Telegram)
	}

	if err := s.shops.Update(ctx, shop); err != nil {
		return nil, err
	}
	hideOwnerSecrets(shop)
	return shop, nil
}

// SetBanner stores the new banner URL and returns the previous one.
func (s *Service) SetBanner(ctx context.Context, viewer domain.Viewer, id int64, bannerURL string) (*domain.Shop, string, error) {
	shop, err := s.manageable(ctx, viewer, id)
	if err != nil {
		return nil, "", err
	}
	old := shop.BannerURL
	shop.BannerURL = bannerURL
	if err := s.shops.Update(ctx, shop); err != nil {
		return nil, "", err
	}
	hideOwnerSecrets(shop)
	return shop, old, nil
}

// Delete removes the shop with its products and demotes the owner back to
// customer. It returns the removed shop so callers can clean up files.
func (s *Service) Delete(ctx context.Context, viewer domain.Viewer, id int64) (*domain.Shop, error) {
	shop, err := s.manageable(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if err := s.shops.Delete(ctx, shop.ID); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrShopNotFound
		}
		return nil, err
	}
	if err := s.shops.DB().WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ? AND role = ?", shop.OwnerID, domain.RoleSeller).
		Update("role", domain.RoleCustomer).Error; err != nil {
		return nil, err
	}
	logger.Info().Int64("shop_id", shop.ID).Int64("by", viewer.UserID).Msg("shop deleted")
	return shop, nil
}

func (s *Service) manageable(ctx context.Context, viewer domain.Viewer, id int64) (*domain.Shop, error) {
	shop, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.CanManage(shop.OwnerID) {
		return nil, ErrForbidden
	}
	return shop, nil
}

func (s *Service) get(ctx context.Context, id int64) (*domain.Shop, error) {
	shop, err := s.shops.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrShopNotFound
		}
		return nil, err
	}
	return shop, nil
}

// hideOwnerSecrets keeps the public owner card to name and avatar.
func hideOwnerSecrets(shop *domain.Shop) {
	if shop.Owner == nil {
		return
	}
	shop.Owner = &domain.User{
		ID:        shop.Owner.ID,
		Name:      shop.Owner.Name,
		AvatarURL: shop.Owner.AvatarURL,
		Role:      shop.Owner.Role,
		CreatedAt: shop.Owner.CreatedAt,
	}
}
