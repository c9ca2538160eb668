package product

import "time"

type CreateProductRequest struct {
	Kind          string     `json:"kind" binding:"omitempty,oneof=product event"`
	Name          string     `json:"name" binding:"required,notblank,max=200"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	OriginalPrice float64    `json:"original_price" binding:"gt=0"`
	DiscountPrice float64    `json:"discount_price" binding:"gte=0"`
	Stock         int        `json:"stock" binding:"gte=0"`
	Status        string     `json:"status" binding:"omitempty,oneof=active inactive pending"`
	Images        []string   `json:"images"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
}

type UpdateProductRequest struct {
	Name          *string    `json:"name" binding:"omitempty,notblank,max=200"`
	Description   *string    `json:"description"`
	Category      *string    `json:"category"`
	OriginalPrice *float64   `json:"original_price" binding:"omitempty,gt=0"`
	DiscountPrice *float64   `json:"discount_price" binding:"omitempty,gte=0"`
	Stock         *int       `json:"stock" binding:"omitempty,gte=0"`
	Images        []string   `json:"images"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive pending"`
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}
