package domain

import "time"

type ShopStatus string

const (
	ShopPending  ShopStatus = "pending"
	ShopApproved ShopStatus = "approved"
	ShopRejected ShopStatus = "rejected"
)

type Shop struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	OwnerID      int64      `json:"owner_id" gorm:"uniqueIndex;not null"`
	Name         string     `json:"name" gorm:"not null"`
	Description  string     `json:"description"`
	Address      string     `json:"address"`
	Phone        string     `json:"phone"`
	ZipCode      string     `json:"zip_code"`
	Telegram     string     `json:"telegram,omitempty"`
	BannerURL    string     `json:"banner,omitempty"`
	Status       ShopStatus `json:"status" gorm:"index;not null"`
	Verified     bool       `json:"verified"`
	RejectReason string     `json:"reject_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Owner *User `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}

func (s *Shop) IsApproved() bool { return s.Status == ShopApproved }
