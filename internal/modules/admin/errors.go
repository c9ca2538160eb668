package admin

import "errors"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrShopNotFound   = errors.New("shop not found")
	ErrCannotDeleteMe = errors.New("admins cannot delete their own account here")
)
