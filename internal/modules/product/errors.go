package product

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrNoShop          = errors.New("caller has no shop")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidPrice    = errors.New("discount price must be lower than the original price")
	ErrInvalidDates    = errors.New("event end date must follow start date")
	ErrOwnProduct      = errors.New("cannot review own product")
	ErrAlreadyReviewed = errors.New("product already reviewed by this user")
)
