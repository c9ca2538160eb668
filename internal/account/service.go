// Package account holds the signed-in user's forms: profile, password,
// shop creation and shop settings.
package account

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"marketplace/internal/client"
	"marketplace/internal/notify"
)

type API interface {
	Me(ctx context.Context) (*client.User, error)
	UpdateProfile(ctx context.Context, req client.ProfileUpdate) (*client.User, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error
	UploadAvatar(ctx context.Context, filename string, r io.Reader) (*client.User, error)
	DeleteAccount(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error

	CreateShop(ctx context.Context, req client.ShopInput) (*client.CreatedShop, error)
	UpdateShop(ctx context.Context, id int64, req client.ShopUpdate) (*client.Shop, error)
	UploadShopBanner(ctx context.Context, id int64, filename string, r io.Reader) (*client.Shop, error)
	DeleteShop(ctx context.Context, id int64) error
}

// Session is the part of session.Store the forms write to.
type Session interface {
	SetToken(token string) error
	SetUser(u *client.User)
	User() *client.User
	Clear() error
}

type Service struct {
	api     API
	session Session
	notify  notify.Notifier
}

func NewService(api API, session Session, n notify.Notifier) *Service {
	return &Service{api: api, session: session, notify: n}
}

// fail reports err and returns it; validation errors show their own text.
func (s *Service) fail(err error) error {
	notify.Error(s.notify, userMessage(err))
	return err
}

func userMessage(err error) string {
	if msg, ok := validationMessage(err); ok {
		return msg
	}
	return client.Message(err)
}

func validationMessage(err error) (string, bool) {
	if !errors.Is(err, ErrValidation) {
		return "", false
	}
	msg := strings.TrimPrefix(err.Error(), ErrValidation.Error()+": ")
	if msg == "" {
		return "", false
	}
	return strings.ToUpper(msg[:1]) + msg[1:], true
}

// Upload is a file picked by the user.
type Upload struct {
	Name string
	Data []byte
}

func (u Upload) check(kind UploadKind) error {
	if _, err := CheckImage(kind, u.Data); err != nil {
		return err
	}
	return nil
}

func (u Upload) reader() io.Reader { return bytes.NewReader(u.Data) }

// Refresh reloads the current user into the session.
func (s *Service) Refresh(ctx context.Context) (*client.User, error) {
	u, err := s.api.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	s.session.SetUser(u)
	return u, nil
}
