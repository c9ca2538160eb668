package shop

import "marketplace/internal/domain"

type CreateShopRequest struct {
	Name        string `json:"name" binding:"required,notblank,max=100"`
	Description string `json:"description" binding:"required,notblank"`
	Address     string `json:"address" binding:"required,notblank"`
	Phone       string `json:"phone" binding:"required,ma_phone"`
	ZipCode     string `json:"zip_code" binding:"required,notblank"`
	Telegram    string `json:"telegram" binding:"omitempty,max=64"`
}

type UpdateShopRequest struct {
	Name        *string `json:"name" binding:"omitempty,notblank,max=100"`
	Description *string `json:"description" binding:"omitempty,notblank"`
	Address     *string `json:"address" binding:"omitempty,notblank"`
	Phone       *string `json:"phone" binding:"omitempty,ma_phone"`
	ZipCode     *string `json:"zip_code" binding:"omitempty,notblank"`
	Telegram    *string `json:"telegram" binding:"omitempty,max=64"`
}

// CreateShopResponse carries a fresh token because the owner's role
// changes to seller.
type CreateShopResponse struct {
	Shop  *domain.Shop `json:"shop"`
	Token string       `json:"token"`
}
