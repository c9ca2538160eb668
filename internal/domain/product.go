package domain

import "time"

type ProductKind string

const (
	KindProduct ProductKind = "product"
	KindEvent   ProductKind = "event"
)

type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
	ProductPending  ProductStatus = "pending"
)

type Product struct {
	ID            int64         `json:"id" gorm:"primaryKey"`
	ShopID        int64         `json:"shop_id" gorm:"index;not null"`
	Kind          ProductKind   `json:"kind" gorm:"not null"`
	Name          string        `json:"name" gorm:"not null"`
	Description   string        `json:"description"`
	Category      string        `json:"category,omitempty"`
	OriginalPrice float64       `json:"original_price"`
	DiscountPrice float64       `json:"discount_price"`
	Stock         int           `json:"stock"`
	SoldOut       int           `json:"sold_out"`
	Status        ProductStatus `json:"status" gorm:"index;not null"`
	Images        []string      `json:"images" gorm:"serializer:json"`
	Ratings       float64       `json:"ratings"`
	StartDate     *time.Time    `json:"start_date,omitempty"`
	EndDate       *time.Time    `json:"end_date,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	Reviews []Review `json:"reviews" gorm:"foreignKey:ProductID"`
}

type Review struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	ProductID int64     `json:"product_id" gorm:"uniqueIndex:idx_reviews_product_user;not null"`
	UserID    int64     `json:"user_id" gorm:"uniqueIndex:idx_reviews_product_user;not null"`
	Rating    int       `json:"rating" gorm:"not null"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
