package account

import (
	"context"
	"fmt"
	"strings"

	"marketplace/internal/client"
	"marketplace/internal/notify"
	"marketplace/internal/pkg/phone"
)

// ShopForm is the become-seller form for a signed-in customer.
type ShopForm struct {
	Name        string `validate:"required,notblank,max=100"`
	Description string `validate:"required,notblank"`
	Address     string `validate:"required,notblank"`
	Phone       string `validate:"required,ma_phone"`
	ZipCode     string `validate:"required,notblank"`
	Telegram    string `validate:"max=64"`
}

func (f ShopForm) Validate() error {
	return validateStruct(f)
}

func (f ShopForm) input() client.ShopInput {
	return client.ShopInput{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Address:     strings.TrimSpace(f.Address),
		Phone:       phone.Normalize(f.Phone),
		ZipCode:     strings.TrimSpace(f.ZipCode),
		Telegram:    strings.TrimSpace(f.Telegram),
	}
}

// CreateShop submits the form. The shop phone must have been verified
// beforehand; on success the session gets the new seller token.
func (s *Service) CreateShop(ctx context.Context, f ShopForm) (*client.Shop, error) {
	if err := f.Validate(); err != nil {
		return nil, s.fail(err)
	}

	created, err := s.api.CreateShop(ctx, f.input())
	if err != nil {
		return nil, s.fail(fmt.Errorf("create shop: %w", err))
	}
	if err := s.session.SetToken(created.Token); err != nil {
		return nil, err
	}
	if u := s.session.User(); u != nil {
		u.Role = client.RoleSeller
		u.Shop = &client.ShopRef{ID: created.Shop.ID, Shop: &created.Shop}
		s.session.SetUser(u)
	}

	notify.Success(s.notify, "Shop created. It will be visible once an admin approves it.")
	return &created.Shop, nil
}

// UpdateShop sends only the fields that are set.
func (s *Service) UpdateShop(ctx context.Context, shopID int64, upd client.ShopUpdate) (*client.Shop, error) {
	if upd.Phone != nil {
		if !phone.IsValid(*upd.Phone) {
			return nil, s.fail(fmt.Errorf("%w: phone must be a valid Moroccan mobile number", ErrValidation))
		}
		n := phone.Normalize(*upd.Phone)
		upd.Phone = &n
	}
	for _, f := range []*string{upd.Name, upd.Description, upd.Address, upd.ZipCode} {
		if f != nil && strings.TrimSpace(*f) == "" {
			return nil, s.fail(fmt.Errorf("%w: required fields cannot be empty", ErrValidation))
		}
	}

	shop, err := s.api.UpdateShop(ctx, shopID, upd)
	if err != nil {
		return nil, s.fail(fmt.Errorf("update shop: %w", err))
	}
	notify.Success(s.notify, "Shop updated successfully")
	return shop, nil
}

func (s *Service) UploadBanner(ctx context.Context, shopID int64, file Upload) (*client.Shop, error) {
	if err := file.check(UploadBanner); err != nil {
		return nil, s.fail(err)
	}
	shop, err := s.api.UploadShopBanner(ctx, shopID, file.Name, file.reader())
	if err != nil {
		return nil, s.fail(fmt.Errorf("upload banner: %w", err))
	}
	notify.Success(s.notify, "Banner updated")
	return shop, nil
}

// DeleteShop deletes the shop and its products once confirmation equals
// ConfirmWord. The owner goes back to being a customer.
func (s *Service) DeleteShop(ctx context.Context, shopID int64, confirmation string) error {
	if err := Confirm(confirmation); err != nil {
		return s.fail(err)
	}
	if err := s.api.DeleteShop(ctx, shopID); err != nil {
		return s.fail(fmt.Errorf("delete shop: %w", err))
	}
	if u := s.session.User(); u != nil && u.Shop != nil && u.Shop.ID == shopID {
		u.Shop = nil
		if u.Role == client.RoleSeller {
			u.Role = client.RoleCustomer
		}
		s.session.SetUser(u)
	}
	notify.Success(s.notify, "Shop deleted")
	return nil
}
