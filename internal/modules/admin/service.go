package admin

import (
	"context"
	"strings"

	"marketplace/internal/domain"
	"marketplace/internal/logger"
	"marketplace/internal/repository"
)

type Service struct {
	userRepo UserRepository
	shopRepo ShopRepository
	notifs   NotificationSender
}

func NewService(userRepo UserRepository, shopRepo ShopRepository, notifs NotificationSender) *Service {
	return &Service{
		userRepo: userRepo,
		shopRepo: shopRepo,
		notifs:   notifs,
	}
}

// -------------------- Users --------------------

// ListUsers returns every user, newest first, with the seller's shop
// attached. Filtering and sorting happen in the admin client.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	shops, err := s.shopRepo.ListWithOwners(ctx)
	if err != nil {
		return nil, err
	}

	byOwner := make(map[int64]*domain.Shop, len(shops))
	for i := range shops {
		shops[i].Owner = nil
		byOwner[shops[i].OwnerID] = &shops[i]
	}
	for i := range users {
		users[i].Shop = byOwner[users[i].ID]
	}
	return users, nil
}

// DeleteUser removes a user with their shop, products and reviews.
func (s *Service) DeleteUser(ctx context.Context, adminID, userID int64) error {
	if adminID == userID {
		return ErrCannotDeleteMe
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if repository.IsNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	logger.Info().Int64("admin_id", adminID).Int64("user_id", userID).Msg("user deleted by admin")
	return nil
}

// -------------------- Sellers --------------------

// ListSellers returns every shop with its owner, newest first.
func (s *Service) ListSellers(ctx context.Context) ([]domain.Shop, error) {
	return s.shopRepo.ListWithOwners(ctx)
}

// ApproveSeller publishes the shop and tells the owner.
func (s *Service) ApproveSeller(ctx context.Context, shopID, adminID int64) (*domain.Shop, error) {
	shop, err := s.getShop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	shop.Status = domain.ShopApproved
	shop.RejectReason = ""
	if err := s.shopRepo.Update(ctx, shop); err != nil {
		return nil, err
	}

	if s.notifs != nil {
		_ = s.notifs.NotifyShopApproved(ctx, shop.OwnerID, shop.ID)
	}
	logger.Info().Int64("admin_id", adminID).Int64("shop_id", shopID).Msg("seller approved")
	return shop, nil
}

// RejectSeller hides the shop and records the reason for the owner.
func (s *Service) RejectSeller(ctx context.Context, shopID, adminID int64, reason string) (*domain.Shop, error) {
	shop, err := s.getShop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	shop.Status = domain.ShopRejected
	shop.RejectReason = strings.TrimSpace(reason)
	if err := s.shopRepo.Update(ctx, shop); err != nil {
		return nil, err
	}

	if s.notifs != nil {
		_ = s.notifs.NotifyShopRejected(ctx, shop.OwnerID, shop.ID, shop.RejectReason)
	}
	logger.Info().Int64("admin_id", adminID).Int64("shop_id", shopID).Str("reason", shop.RejectReason).Msg("seller rejected")
	return shop, nil
}

// DeleteSeller removes the shop with its products and demotes the owner.
func (s *Service) DeleteSeller(ctx context.Context, shopID, adminID int64) error {
	shop, err := s.getShop(ctx, shopID)
	if err != nil {
		return err
	}
	if err := s.shopRepo.Delete(ctx, shopID); err != nil {
		if repository.IsNotFound(err) {
			return ErrShopNotFound
		}
		return err
	}
	if err := s.shopRepo.DB().WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ? AND role = ?", shop.OwnerID, domain.RoleSeller).
		Update("role", domain.RoleCustomer).Error; err != nil {
		return err
	}
	logger.Info().Int64("admin_id", adminID).Int64("shop_id", shopID).Msg("seller deleted by admin")
	return nil
}

// SetBadge grants or removes the verified badge.
func (s *Service) SetBadge(ctx context.Context, shopID int64, verified bool) (*domain.Shop, error) {
	shop, err := s.getShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	shop.Verified = verified
	if err := s.shopRepo.Update(ctx, shop); err != nil {
		return nil, err
	}
	return shop, nil
}

func (s *Service) getShop(ctx context.Context, id int64) (*domain.Shop, error) {
	shop, err := s.shopRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrShopNotFound
		}
		return nil, err
	}
	return shop, nil
}
