package shop

import "errors"

var (
	ErrShopNotFound      = errors.New("shop not found")
	ErrShopAlreadyExists = errors.New("user already owns a shop")
	ErrPhoneNotVerified  = errors.New("shop phone not verified")
	ErrForbidden         = errors.New("forbidden")
)
