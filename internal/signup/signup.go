// Package signup drives account creation: email and WhatsApp verification,
// local validation and the customer or seller submission.
package signup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"marketplace/internal/account"
	"marketplace/internal/client"
	"marketplace/internal/notify"
	"marketplace/internal/pkg/phone"
)

// ErrPartialSignup means the account exists but a follow-up step (shop
// creation or avatar upload) failed. The session keeps the new token so
// the step can be retried later.
var ErrPartialSignup = errors.New("account created but signup did not complete")

// ValidationError is a local check that failed before any request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type API interface {
	VerificationAPI
	Register(ctx context.Context, req client.RegisterRequest) (*client.AuthResult, error)
	CreateShop(ctx context.Context, req client.ShopInput) (*client.CreatedShop, error)
	UploadAvatar(ctx context.Context, filename string, r io.Reader) (*client.User, error)
}

// Session receives the token and user after registration. The client used
// as API must read its bearer token from the same session.
type Session interface {
	SetToken(token string) error
	SetUser(u *client.User)
}

type Kind int

const (
	Customer Kind = iota
	Seller
)

// ShopFields are the seller-only inputs. The shop phone is the verified
// WhatsApp number.
type ShopFields struct {
	Name        string
	Description string
	Address     string
	ZipCode     string
	Telegram    string
}

// Form is one signup screen. Set the exported fields, edit contacts
// through Email and Phone, then Submit.
type Form struct {
	Kind     Kind
	Name     string
	Password string
	Confirm  string
	Address  string
	Shop     ShopFields
	// Avatar is optional and customer-only.
	Avatar *account.Upload

	Email *Channel
	Phone *Channel

	api     API
	session Session
	notify  notify.Notifier

	mu         sync.Mutex
	submitting bool
}

func NewForm(kind Kind, api API, session Session, n notify.Notifier) *Form {
	return &Form{
		Kind:    kind,
		Email:   newChannel(client.ChannelEmail, api, n),
		Phone:   newChannel(client.ChannelPhone, api, n),
		api:     api,
		session: session,
		notify:  n,
	}
}

// Validate returns the first failing rule as a *ValidationError.
func (f *Form) Validate() error {
	name := strings.TrimSpace(f.Name)
	if n := utf8.RuneCountInString(name); n < 3 || n > 50 {
		return &ValidationError{Field: "name", Message: "Name must be 3 to 50 characters"}
	}
	if utf8.RuneCountInString(f.Password) < 6 {
		return &ValidationError{Field: "password", Message: "Password must be at least 6 characters"}
	}
	if f.Password != f.Confirm {
		return &ValidationError{Field: "confirm", Message: "Passwords do not match"}
	}
	if !f.Email.Verified() {
		return &ValidationError{Field: "email", Message: "Please verify your email"}
	}
	if f.Kind != Seller {
		if f.Avatar != nil {
			if _, err := account.CheckImage(account.UploadAvatar, f.Avatar.Data); err != nil {
				return &ValidationError{Field: "avatar", Message: strings.TrimPrefix(err.Error(), account.ErrValidation.Error()+": ")}
			}
		}
		return nil
	}

	if !f.Phone.Verified() {
		return &ValidationError{Field: "phone", Message: "Please verify your WhatsApp number"}
	}
	required := []struct{ field, value string }{
		{"shop_name", f.Shop.Name},
		{"description", f.Shop.Description},
		{"shop_address", f.Shop.Address},
		{"phone", f.Phone.Value()},
		{"zip_code", f.Shop.ZipCode},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{Field: r.field, Message: "Please fill in all required shop fields"}
		}
	}
	return nil
}

// CanSubmit gates the submit button.
func (f *Form) CanSubmit() bool {
	return !f.Submitting() && f.Validate() == nil
}

func (f *Form) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Result is what Submit created. Shop is nil for customers and after a
// partial seller signup.
type Result struct {
	User  *client.User
	Shop  *client.Shop
	Token string
}

// Submit registers the user, then (sellers) creates the shop with the new
// token. The two calls are not atomic: a shop failure returns the result
// so far with ErrPartialSignup.
func (f *Form) Submit(ctx context.Context) (*Result, error) {
	if err := f.Validate(); err != nil {
		notify.Error(f.notify, err.Error())
		return nil, err
	}
	if !f.begin() {
		return nil, ErrNotReady
	}
	defer f.end()

	reg, err := f.api.Register(ctx, client.RegisterRequest{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email.Value()),
		Password: f.Password,
		Phone:    f.registerPhone(),
		Address:  strings.TrimSpace(f.Address),
	})
	if err != nil {
		notify.Error(f.notify, client.Message(err))
		return nil, fmt.Errorf("register: %w", err)
	}
	if err := f.session.SetToken(reg.Token); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	user := reg.User
	f.session.SetUser(&user)
	res := &Result{User: &user, Token: reg.Token}

	if f.Kind == Seller {
		return f.createShop(ctx, res)
	}
	if f.Avatar != nil {
		return f.uploadAvatar(ctx, res)
	}

	notify.Success(f.notify, "Account created successfully")
	return res, nil
}

func (f *Form) createShop(ctx context.Context, res *Result) (*Result, error) {
	created, err := f.api.CreateShop(ctx, client.ShopInput{
		Name:        strings.TrimSpace(f.Shop.Name),
		Description: strings.TrimSpace(f.Shop.Description),
		Address:     strings.TrimSpace(f.Shop.Address),
		Phone:       phone.Normalize(f.Phone.Value()),
		ZipCode:     strings.TrimSpace(f.Shop.ZipCode),
		Telegram:    strings.TrimSpace(f.Shop.Telegram),
	})
	if err != nil {
		notify.Error(f.notify, "Your account was created, but the shop could not be: "+client.Message(err))
		return res, fmt.Errorf("%w: create shop: %w", ErrPartialSignup, err)
	}

	if err := f.session.SetToken(created.Token); err != nil {
		return res, fmt.Errorf("save session: %w", err)
	}
	res.Token = created.Token
	res.Shop = &created.Shop
	res.User.Role = client.RoleSeller
	res.User.Shop = &client.ShopRef{ID: created.Shop.ID, Shop: res.Shop}
	f.session.SetUser(res.User)

	notify.Success(f.notify, "Seller account created. Your shop is waiting for admin approval.")
	return res, nil
}

func (f *Form) uploadAvatar(ctx context.Context, res *Result) (*Result, error) {
	u, err := f.api.UploadAvatar(ctx, f.Avatar.Name, bytes.NewReader(f.Avatar.Data))
	if err != nil {
		notify.Error(f.notify, "Your account was created, but the avatar upload failed: "+client.Message(err))
		return res, fmt.Errorf("%w: upload avatar: %w", ErrPartialSignup, err)
	}
	res.User = u
	f.session.SetUser(u)
	notify.Success(f.notify, "Account created successfully")
	return res, nil
}

// registerPhone sends the profile phone for sellers only; customers never
// verify one.
func (f *Form) registerPhone() string {
	if f.Kind != Seller {
		return ""
	}
	return phone.Normalize(f.Phone.Value())
}

func (f *Form) begin() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return false
	}
	f.submitting = true
	return true
}

func (f *Form) end() {
	f.mu.Lock()
	f.submitting = false
	f.mu.Unlock()
}
