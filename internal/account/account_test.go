package account

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketplace/internal/client"
	"marketplace/internal/domain"
	"marketplace/internal/notify"
	"marketplace/internal/server/servertest"
	"marketplace/internal/session"
)

// mockAPI fails the test on any call that was not set up.
type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) Me(ctx context.Context) (*client.User, error) {
	args := m.Called(ctx)
	u, _ := args.Get(0).(*client.User)
	return u, args.Error(1)
}
func (m *mockAPI) UpdateProfile(ctx context.Context, req client.ProfileUpdate) (*client.User, error) {
	args := m.Called(ctx, req)
	u, _ := args.Get(0).(*client.User)
	return u, args.Error(1)
}
func (m *mockAPI) ChangePassword(ctx context.Context, o, n string) error {
	return m.Called(ctx, o, n).Error(0)
}
func (m *mockAPI) UploadAvatar(ctx context.Context, name string, r io.Reader) (*client.User, error) {
	args := m.Called(ctx, name, r)
	u, _ := args.Get(0).(*client.User)
	return u, args.Error(1)
}
func (m *mockAPI) DeleteAccount(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *mockAPI) ForgotPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
func (m *mockAPI) ResetPassword(ctx context.Context, token, password string) error {
	return m.Called(ctx, token, password).Error(0)
}
func (m *mockAPI) CreateShop(ctx context.Context, req client.ShopInput) (*client.CreatedShop, error) {
	args := m.Called(ctx, req)
	s, _ := args.Get(0).(*client.CreatedShop)
	return s, args.Error(1)
}
func (m *mockAPI) UpdateShop(ctx context.Context, id int64, req client.ShopUpdate) (*client.Shop, error) {
	args := m.Called(ctx, id, req)
	s, _ := args.Get(0).(*client.Shop)
	return s, args.Error(1)
}
func (m *mockAPI) UploadShopBanner(ctx context.Context, id int64, name string, r io.Reader) (*client.Shop, error) {
	args := m.Called(ctx, id, name, r)
	s, _ := args.Get(0).(*client.Shop)
	return s, args.Error(1)
}
func (m *mockAPI) DeleteShop(ctx context.Context, id int64) error { return m.Called(ctx, id).Error(0) }

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{G: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func openSession(t *testing.T) *session.Store {
	t.Helper()
	s, err := session.Open(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestConfirm(t *testing.T) {
	assert.NoError(t, Confirm("DELETE"))
	for _, in := range []string{"", "delete", "DELETE ", " DELETE", "DELET"} {
		assert.ErrorIs(t, Confirm(in), ErrConfirmationMismatch, in)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	api := &mockAPI{}
	rec := &notify.Recorder{}
	svc := NewService(api, openSession(t), rec)

	assert.ErrorIs(t, svc.DeleteShop(context.Background(), 1, "delete"), ErrConfirmationMismatch)
	assert.ErrorIs(t, svc.DeleteAccount(context.Background(), "DELETE!"), ErrConfirmationMismatch)
	assert.Equal(t, "Type DELETE to confirm", rec.Last().Message)

	// no request was issued
	api.AssertNotCalled(t, "DeleteShop", mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "DeleteAccount", mock.Anything)

	api.On("DeleteShop", mock.Anything, int64(1)).Return(nil).Once()
	require.NoError(t, svc.DeleteShop(context.Background(), 1, "DELETE"))
	api.AssertExpectations(t)
}

func TestCheckImage(t *testing.T) {
	img := pngBytes(t)

	mt, err := CheckImage(UploadAvatar, img)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mt)

	_, err = CheckImage(UploadAvatar, []byte("hello"))
	assert.ErrorIs(t, err, ErrNotAnImage)

	_, err = CheckImage(UploadAvatar, nil)
	assert.ErrorIs(t, err, ErrEmptyFile)

	big := append(append([]byte{}, img...), make([]byte, MaxAvatarSize)...)
	_, err = CheckImage(UploadAvatar, big)
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = CheckImage(UploadBanner, big)
	assert.NoError(t, err)
}

func TestShopFormValidate(t *testing.T) {
	f := ShopForm{Name: "Atlas", Description: "Rugs", Address: "Rabat", Phone: "0612345678", ZipCode: "10000"}
	require.NoError(t, f.Validate())

	f.ZipCode = "   "
	err := f.Validate()
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "zip code")

	f.ZipCode = "10000"
	f.Phone = "0512345678"
	assert.ErrorIs(t, f.Validate(), ErrValidation)
}

func TestPasswordValidation(t *testing.T) {
	api := &mockAPI{}
	rec := &notify.Recorder{}
	svc := NewService(api, openSession(t), rec)
	ctx := context.Background()

	assert.ErrorIs(t, svc.ChangePassword(ctx, PasswordChange{Old: "old", New: "12345", Confirm: "12345"}), ErrPasswordTooShort)
	assert.ErrorIs(t, svc.ChangePassword(ctx, PasswordChange{Old: "old", New: "123456", Confirm: "123457"}), ErrPasswordMismatch)
	assert.ErrorIs(t, svc.ResetPassword(ctx, ResetForm{Token: "t", Password: "abcdef", Confirm: "abcdeg"}), ErrPasswordMismatch)
	assert.Equal(t, "Passwords do not match", rec.Last().Message)
	api.AssertNotCalled(t, "ChangePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestBecomeSellerAndSettings(t *testing.T) {
	env := servertest.New(t)
	ctx := context.Background()

	u := env.CreateUser(t, "omar@example.ma", "secret1", "Omar", domain.RoleCustomer)
	sess := openSession(t)
	require.NoError(t, sess.SetToken(env.Token(t, u)))
	api := client.New(env.URL(), nil, sess)
	rec := &notify.Recorder{}
	svc := NewService(api, sess, rec)

	_, err := svc.Refresh(ctx)
	require.NoError(t, err)

	form := ShopForm{Name: "Souk", Description: "Spices", Address: "Fes", Phone: "06 12 34 56 78", ZipCode: "30000"}

	// phone not verified yet
	_, err = svc.CreateShop(ctx, form)
	require.Error(t, err)
	assert.True(t, client.IsStatus(err, 403))
	assert.Equal(t, notify.LevelError, rec.Last().Level)

	_, err = api.SendCode(ctx, client.ChannelPhone, form.Phone)
	require.NoError(t, err)
	require.NoError(t, api.VerifyCode(ctx, client.ChannelPhone, form.Phone, env.WhatsApp.LastCode("+212612345678")))

	oldToken := sess.Token()
	shop, err := svc.CreateShop(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, client.ShopPending, shop.Status)
	assert.Equal(t, "612345678", shop.Phone)
	assert.NotEqual(t, oldToken, sess.Token())
	assert.Equal(t, client.RoleSeller, sess.User().Role)

	name := "Souk Fes"
	updated, err := svc.UpdateShop(ctx, shop.ID, client.ShopUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Souk Fes", updated.Name)

	banner, err := svc.UploadBanner(ctx, shop.ID, Upload{Name: "b.png", Data: pngBytes(t)})
	require.NoError(t, err)
	assert.Regexp(t, `^/uploads/banners/`, banner.Banner)

	_, err = svc.UploadBanner(ctx, shop.ID, Upload{Name: "b.txt", Data: []byte("text")})
	assert.ErrorIs(t, err, ErrNotAnImage)

	require.NoError(t, svc.DeleteShop(ctx, shop.ID, "DELETE"))
	assert.Equal(t, client.RoleCustomer, sess.User().Role)
	_, err = api.Shop(ctx, shop.ID)
	assert.True(t, client.IsStatus(err, 404))
}

func TestProfileAndDeleteAccount(t *testing.T) {
	env := servertest.New(t)
	ctx := context.Background()

	u := env.CreateUser(t, "nadia@example.ma", "secret1", "Nadia", domain.RoleCustomer)
	sess := openSession(t)
	require.NoError(t, sess.SetToken(env.Token(t, u)))
	api := client.New(env.URL(), nil, sess)
	svc := NewService(api, sess, &notify.Recorder{})

	name := "Nadia Tazi"
	me, err := svc.UpdateProfile(ctx, client.ProfileUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, me.Name)
	assert.Equal(t, name, sess.User().Name)

	short := "Na"
	_, err = svc.UpdateProfile(ctx, client.ProfileUpdate{Name: &short})
	assert.ErrorIs(t, err, ErrValidation)

	me, err = svc.UploadAvatar(ctx, Upload{Name: "me.png", Data: pngBytes(t)})
	require.NoError(t, err)
	assert.NotEmpty(t, me.Avatar)

	err = svc.ChangePassword(ctx, PasswordChange{Old: "wrong", New: "secret2", Confirm: "secret2"})
	require.Error(t, err)
	assert.True(t, client.IsStatus(err, 400))
	require.NoError(t, svc.ChangePassword(ctx, PasswordChange{Old: "secret1", New: "secret2", Confirm: "secret2"}))

	require.NoError(t, svc.DeleteAccount(ctx, "DELETE"))
	assert.Empty(t, sess.Token())
	assert.Nil(t, sess.User())

	_, err = client.New(env.URL(), nil, nil).Login(ctx, "nadia@example.ma", "secret2")
	assert.True(t, client.IsStatus(err, 401))
}

var resetLink = regexp.MustCompile(`token=([0-9a-f]{64})`)

func TestForgotAndResetPassword(t *testing.T) {
	env := servertest.New(t)
	ctx := context.Background()
	env.CreateUser(t, "hind@example.ma", "secret1", "Hind", domain.RoleCustomer)

	api := client.New(env.URL(), nil, nil)
	svc := NewService(api, openSession(t), &notify.Recorder{})

	assert.ErrorIs(t, svc.ForgotPassword(ctx, "not-an-email"), ErrValidation)
	require.NoError(t, svc.ForgotPassword(ctx, "hind@example.ma"))

	msgs := env.Mail.Messages()
	require.NotEmpty(t, msgs)
	m := resetLink.FindStringSubmatch(msgs[len(msgs)-1].Body)
	require.NotNil(t, m)

	require.NoError(t, svc.ResetPassword(ctx, ResetForm{Token: m[1], Password: "newpass", Confirm: "newpass"}))
	_, err := api.Login(ctx, "hind@example.ma", "newpass")
	require.NoError(t, err)

	// single use
	err = svc.ResetPassword(ctx, ResetForm{Token: m[1], Password: "again1", Confirm: "again1"})
	require.Error(t, err)
	assert.True(t, client.IsStatus(err, 400))
}
