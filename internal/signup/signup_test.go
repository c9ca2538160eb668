package signup

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketplace/internal/account"
	"marketplace/internal/client"
	"marketplace/internal/domain"
	"marketplace/internal/notify"
	"marketplace/internal/server/servertest"
	"marketplace/internal/session"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) SendCode(ctx context.Context, ch client.Channel, target string) (*client.SendCodeResult, error) {
	args := m.Called(ctx, ch, target)
	r, _ := args.Get(0).(*client.SendCodeResult)
	return r, args.Error(1)
}

func (m *mockAPI) VerifyCode(ctx context.Context, ch client.Channel, target, code string) error {
	return m.Called(ctx, ch, target, code).Error(0)
}

func (m *mockAPI) Register(ctx context.Context, req client.RegisterRequest) (*client.AuthResult, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*client.AuthResult)
	return r, args.Error(1)
}

func (m *mockAPI) CreateShop(ctx context.Context, req client.ShopInput) (*client.CreatedShop, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*client.CreatedShop)
	return r, args.Error(1)
}

func (m *mockAPI) UploadAvatar(ctx context.Context, name string, r io.Reader) (*client.User, error) {
	args := m.Called(ctx, name, r)
	u, _ := args.Get(0).(*client.User)
	return u, args.Error(1)
}

type memSession struct {
	token string
	user  *client.User
}

func (s *memSession) SetToken(t string) error { s.token = t; return nil }
func (s *memSession) SetUser(u *client.User) { s.user = u }

var sent = &client.SendCodeResult{Status: "sent"}

func verifiedChannel(t *testing.T, api *mockAPI, c *Channel, value string) {
	t.Helper()
	api.On("SendCode", mock.Anything, c.Kind(), value).Return(sent, nil).Once()
	api.On("VerifyCode", mock.Anything, c.Kind(), value, "123456").Return(nil).Once()

	c.SetValue(value)
	require.NoError(t, c.RequestCode(context.Background()))
	c.SetCode("123456")
	require.NoError(t, c.Verify(context.Background()))
	require.True(t, c.Verified())
}

func TestChannel_HappyPath(t *testing.T) {
	api := &mockAPI{}
	rec := &notify.Recorder{}
	c := newChannel(client.ChannelEmail, api, rec)
	ctx := context.Background()

	assert.Equal(t, Idle, c.State())
	assert.False(t, c.CanRequest())

	// code input is disabled until a code was sent
	c.SetCode("123456")
	assert.Empty(t, c.Code())
	assert.ErrorIs(t, c.Verify(ctx), ErrNotReady)

	c.SetValue("a@example.ma")
	assert.True(t, c.CanRequest())

	api.On("SendCode", mock.Anything, client.ChannelEmail, "a@example.ma").Return(sent, nil)
	require.NoError(t, c.RequestCode(ctx))
	assert.Equal(t, CodeSent, c.State())
	assert.Equal(t, notify.LevelSuccess, rec.Last().Level)

	c.SetCode("12a-34 5")
	assert.Equal(t, "12345", c.Code())
	assert.False(t, c.CanVerify())
	c.SetCode("1234567890")
	assert.Equal(t, "123456", c.Code())
	assert.True(t, c.CanVerify())

	api.On("VerifyCode", mock.Anything, client.ChannelEmail, "a@example.ma", "123456").Return(nil)
	require.NoError(t, c.Verify(ctx))
	assert.Equal(t, Verified, c.State())
	assert.ErrorIs(t, c.RequestCode(ctx), ErrNotReady)
}

func TestChannel_EditResets(t *testing.T) {
	api := &mockAPI{}
	c := newChannel(client.ChannelEmail, api, nil)
	verifiedChannel(t, api, c, "a@example.ma")

	// same value is not an edit
	c.SetValue("a@example.ma")
	assert.True(t, c.Verified())

	c.SetValue("b@example.ma")
	assert.Equal(t, Idle, c.State())
	assert.False(t, c.Verified())
	assert.Empty(t, c.Code())
}

func TestChannel_Failures(t *testing.T) {
	api := &mockAPI{}
	rec := &notify.Recorder{}
	c := newChannel(client.ChannelPhone, api, rec)
	ctx := context.Background()

	c.SetValue("0512345678")
	var verr *ValidationError
	require.ErrorAs(t, c.RequestCode(ctx), &verr)
	assert.Equal(t, "phone", verr.Field)
	api.AssertNotCalled(t, "SendCode", mock.Anything, mock.Anything, mock.Anything)

	c.SetValue("0612345678")
	api.On("SendCode", mock.Anything, client.ChannelPhone, "0612345678").
		Return(nil, &client.APIError{Status: 429, Code: "RATE_LIMITED", Message: "Please wait before requesting a new code"}).Once()
	require.Error(t, c.RequestCode(ctx))
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, notify.Entry{Level: notify.LevelError, Message: "Please wait before requesting a new code"}, rec.Last())

	// delivery failed: the code comes back and is prefilled
	api.On("SendCode", mock.Anything, client.ChannelPhone, "0612345678").
		Return(&client.SendCodeResult{Status: "fallback", Code: "654321"}, nil).Once()
	require.NoError(t, c.RequestCode(ctx))
	assert.Equal(t, CodeSent, c.State())
	assert.Equal(t, "654321", c.Code())
	assert.Equal(t, notify.LevelInfo, rec.Last().Level)
	assert.Contains(t, rec.Last().Message, "654321")

	api.On("VerifyCode", mock.Anything, client.ChannelPhone, "0612345678", "654321").
		Return(errors.New("connection reset")).Once()
	require.Error(t, c.Verify(ctx))
	assert.Equal(t, CodeSent, c.State())
	assert.Equal(t, client.FallbackMessage, rec.Last().Message)
}

func TestChannel_EditDuringRequestIsStale(t *testing.T) {
	api := &mockAPI{}
	c := newChannel(client.ChannelEmail, api, nil)
	c.SetValue("a@example.ma")

	api.On("SendCode", mock.Anything, client.ChannelEmail, "a@example.ma").
		Run(func(mock.Arguments) { c.SetValue("b@example.ma") }).
		Return(sent, nil)

	assert.ErrorIs(t, c.RequestCode(context.Background()), ErrStale)
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, "b@example.ma", c.Value())
}

func sellerForm(t *testing.T, api *mockAPI, sess Session) *Form {
	t.Helper()
	f := NewForm(Seller, api, sess, &notify.Recorder{})
	f.Name, f.Password, f.Confirm = "Youssef", "secret1", "secret1"
	f.Shop = ShopFields{Name: "Atlas", Description: "Rugs", Address: "Rabat", ZipCode: "10000"}
	return f
}

func TestCanSubmit_Seller(t *testing.T) {
	api := &mockAPI{}
	f := sellerForm(t, api, &memSession{})

	assert.False(t, f.CanSubmit(), "nothing verified")

	verifiedChannel(t, api, f.Email, "y@example.ma")
	assert.False(t, f.CanSubmit(), "phone not verified")

	verifiedChannel(t, api, f.Phone, "0612345678")
	assert.True(t, f.CanSubmit())

	f.Confirm = "secret2"
	assert.False(t, f.CanSubmit(), "password mismatch")
	f.Confirm = "secret1"

	f.Shop.ZipCode = "  "
	var verr *ValidationError
	require.ErrorAs(t, f.Validate(), &verr)
	assert.Equal(t, "zip_code", verr.Field)
	f.Shop.ZipCode = "10000"

	f.Name = "Yo"
	assert.False(t, f.CanSubmit(), "name too short")
	f.Name = "Youssef"

	f.Phone.SetValue("0712345678")
	assert.False(t, f.CanSubmit(), "phone edited after verification")
}

func TestCanSubmit_Customer(t *testing.T) {
	api := &mockAPI{}
	f := NewForm(Customer, api, &memSession{}, nil)
	f.Name, f.Password, f.Confirm = "Salma", "12345", "12345"
	verifiedChannel(t, api, f.Email, "s@example.ma")

	assert.False(t, f.CanSubmit(), "password too short")
	f.Password, f.Confirm = "123456", "123456"
	assert.True(t, f.CanSubmit(), "customers need no phone")

	f.Avatar = &account.Upload{Name: "a.txt", Data: []byte("not an image")}
	assert.False(t, f.CanSubmit())
}

func TestSubmit_PartialSellerSignup(t *testing.T) {
	api := &mockAPI{}
	sess := &memSession{}
	f := sellerForm(t, api, sess)
	verifiedChannel(t, api, f.Email, "y@example.ma")
	verifiedChannel(t, api, f.Phone, "0612345678")

	api.On("Register", mock.Anything, mock.MatchedBy(func(r client.RegisterRequest) bool {
		return r.Email == "y@example.ma" && r.Phone == "612345678"
	})).Return(&client.AuthResult{User: client.User{ID: 3, Role: client.RoleCustomer}, Token: "tok-1"}, nil)
	api.On("CreateShop", mock.Anything, mock.Anything).
		Return(nil, &client.APIError{Status: 500, Code: "INTERNAL", Message: "Internal error"})

	res, err := f.Submit(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPartialSignup)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.Status)

	// the account exists and the token is kept for a later retry
	require.NotNil(t, res)
	assert.Nil(t, res.Shop)
	assert.Equal(t, "tok-1", sess.token)
	assert.Equal(t, int64(3), sess.user.ID)
	assert.False(t, f.Submitting())
}

func TestSubmit_InvalidSendsNothing(t *testing.T) {
	api := &mockAPI{}
	rec := &notify.Recorder{}
	f := NewForm(Customer, api, &memSession{}, rec)
	f.Name, f.Password, f.Confirm = "Salma", "123456", "123456"

	_, err := f.Submit(context.Background())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)
	assert.Equal(t, "Please verify your email", rec.Last().Message)
	api.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestSellerSignup_AgainstServer(t *testing.T) {
	env := servertest.New(t)
	ctx := context.Background()

	sess, err := session.Open(t.TempDir())
	require.NoError(t, err)
	api := client.New(env.URL(), nil, sess)
	rec := &notify.Recorder{}

	f := NewForm(Seller, api, sess, rec)
	f.Name, f.Password, f.Confirm = "Youssef Alami", "secret1", "secret1"
	f.Shop = ShopFields{Name: "Atlas Crafts", Description: "Handmade rugs", Address: "Rabat", ZipCode: "10000"}

	f.Email.SetValue("youssef@example.ma")
	require.NoError(t, f.Email.RequestCode(ctx))
	f.Email.SetCode(env.Mail.LastCode("youssef@example.ma"))
	require.NoError(t, f.Email.Verify(ctx))

	// WhatsApp is down: the code is returned and prefilled
	env.WhatsApp.Fail = true
	f.Phone.SetValue("06 12 34 56 78")
	require.NoError(t, f.Phone.RequestCode(ctx))
	assert.Len(t, f.Phone.Code(), CodeLength)
	assert.Equal(t, notify.LevelInfo, rec.Last().Level)
	require.NoError(t, f.Phone.Verify(ctx))

	require.True(t, f.CanSubmit())
	res, err := f.Submit(ctx)
	require.NoError(t, err)
	require.NotNil(t, res.Shop)
	assert.Equal(t, client.ShopPending, res.Shop.Status)
	assert.Equal(t, client.RoleSeller, res.User.Role)
	assert.Equal(t, res.Token, sess.Token())

	me, err := api.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, client.RoleSeller, me.Role)
	assert.True(t, me.PhoneVerified)
	require.NotNil(t, me.Shop)
	assert.Equal(t, "Atlas Crafts", me.Shop.Name())

	// a second signup with the same email is refused by the server
	again := NewForm(Customer, api, sess, rec)
	again.Name, again.Password, again.Confirm = "Other", "secret1", "secret1"
	again.Email.SetValue("youssef@example.ma")
	again.Email.state = Verified
	_, err = again.Submit(ctx)
	assert.True(t, client.IsStatus(err, 409))
}

func TestCustomerSignupWithAvatar_AgainstServer(t *testing.T) {
	env := servertest.New(t)
	ctx := context.Background()

	sess, err := session.Open(t.TempDir())
	require.NoError(t, err)
	api := client.New(env.URL(), nil, sess)

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewGray(image.Rect(0, 0, 3, 3))))

	f := NewForm(Customer, api, sess, &notify.Recorder{})
	f.Name, f.Password, f.Confirm = "Salma", "secret1", "secret1"
	f.Avatar = &account.Upload{Name: "me.png", Data: img.Bytes()}

	f.Email.SetValue("salma@example.ma")
	require.NoError(t, f.Email.RequestCode(ctx))
	f.Email.SetCode(env.Mail.LastCode("salma@example.ma"))
	require.NoError(t, f.Email.Verify(ctx))

	res, err := f.Submit(ctx)
	require.NoError(t, err)
	assert.Nil(t, res.Shop)
	assert.Regexp(t, `^/uploads/avatars/`, string(res.User.Avatar))
	assert.Equal(t, client.RoleCustomer, sess.User().Role)

	var count int64
	require.NoError(t, env.DB.Model(&domain.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
