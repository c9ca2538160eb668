package shop

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/database"
	"marketplace/internal/domain"
	"marketplace/internal/pkg/jwt"
	"marketplace/internal/repository"
)

type stubVerifier map[string]bool

func (v stubVerifier) IsVerified(_ context.Context, _ domain.VerificationChannel, target string) (bool, error) {
	return v[target], nil
}

type fixture struct {
	svc      *Service
	users    *repository.UserRepository
	shops    *repository.ShopRepository
	products *repository.ProductRepository
	verified stubVerifier
	jwt      *jwt.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Connect(filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	f := &fixture{
		users:    repository.NewUserRepository(db),
		shops:    repository.NewShopRepository(db),
		products: repository.NewProductRepository(db),
		verified: stubVerifier{"612345678": true},
		jwt:      jwt.New("test-secret", time.Hour),
	}
	f.svc = NewService(f.shops, f.products, f.verified, f.jwt)
	return f
}

func (f *fixture) user(t *testing.T, email string, role domain.UserRole) domain.Viewer {
	t.Helper()
	u := &domain.User{Email: email, Name: "User " + email, Role: role, PasswordHash: "x"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return domain.Viewer{UserID: u.ID, Role: role}
}

func validRequest() CreateShopRequest {
	return CreateShopRequest{
		Name:        "Atlas Crafts",
		Description: "Handmade goods",
		Address:     "12 Rue Tarik, Rabat",
		Phone:       "0612345678",
		ZipCode:     "10000",
	}
}

func TestCreate_BecomesPendingSeller(t *testing.T) {
	f := newFixture(t)
	viewer := f.user(t, "a@example.ma", domain.RoleCustomer)

	res, err := f.svc.Create(context.Background(), viewer, validRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.ShopPending, res.Shop.Status)
	assert.Equal(t, "612345678", res.Shop.Phone)

	claims, err := f.jwt.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "seller", claims.Role)

	u, err := f.users.GetByID(context.Background(), viewer.UserID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSeller, u.Role)
	assert.True(t, u.PhoneVerified)
}

func TestCreate_RequiresVerifiedPhone(t *testing.T) {
	f := newFixture(t)
	viewer := f.user(t, "a@example.ma", domain.RoleCustomer)

	req := validRequest()
	req.Phone = "0712345678"
	_, err := f.svc.Create(context.Background(), viewer, req)
	assert.ErrorIs(t, err, ErrPhoneNotVerified)
}

func TestCreate_OneShopPerOwner(t *testing.T) {
	f := newFixture(t)
	viewer := f.user(t, "a@example.ma", domain.RoleCustomer)

	_, err := f.svc.Create(context.Background(), viewer, validRequest())
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), viewer, validRequest())
	assert.ErrorIs(t, err, ErrShopAlreadyExists)
}

func TestGet_PendingHiddenFromPublic(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "o@example.ma", domain.RoleCustomer)
	res, err := f.svc.Create(context.Background(), owner, validRequest())
	require.NoError(t, err)
	id := res.Shop.ID

	_, err = f.svc.Get(context.Background(), domain.Viewer{}, id)
	assert.ErrorIs(t, err, ErrShopNotFound)

	got, err := f.svc.Get(context.Background(), domain.Viewer{UserID: owner.UserID, Role: domain.RoleSeller}, id)
	require.NoError(t, err)
	assert.Equal(t, "Atlas Crafts", got.Name)
	require.NotNil(t, got.Owner)
	assert.Empty(t, got.Owner.Email)

	_, err = f.svc.Get(context.Background(), domain.Viewer{UserID: 999, Role: domain.RoleAdmin}, id)
	assert.NoError(t, err)

	shops, err := f.svc.ListApproved(context.Background())
	require.NoError(t, err)
	assert.Empty(t, shops)
}

func TestProducts_PublicSeesActiveOnly(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "o@example.ma", domain.RoleCustomer)
	res, err := f.svc.Create(context.Background(), owner, validRequest())
	require.NoError(t, err)
	shop := res.Shop
	shop.Status = domain.ShopApproved
	require.NoError(t, f.shops.Update(context.Background(), shop))

	for _, st := range []domain.ProductStatus{domain.ProductActive, domain.ProductInactive} {
		require.NoError(t, f.products.Create(context.Background(), &domain.Product{
			ShopID: shop.ID, Kind: domain.KindProduct, Name: string(st), Status: st, OriginalPrice: 10,
		}))
	}

	public, err := f.svc.Products(context.Background(), domain.Viewer{}, shop.ID)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "active", public[0].Name)

	own, err := f.svc.Products(context.Background(), domain.Viewer{UserID: owner.UserID, Role: domain.RoleSeller}, shop.ID)
	require.NoError(t, err)
	assert.Len(t, own, 2)
}

func TestUpdate_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "o@example.ma", domain.RoleCustomer)
	other := f.user(t, "x@example.ma", domain.RoleSeller)
	res, err := f.svc.Create(context.Background(), owner, validRequest())
	require.NoError(t, err)

	name := "Renamed"
	_, err = f.svc.Update(context.Background(), other, res.Shop.ID, UpdateShopRequest{Name: &name})
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := f.svc.Update(context.Background(), domain.Viewer{UserID: owner.UserID, Role: domain.RoleSeller}, res.Shop.ID, UpdateShopRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	unverified := "0799999999"
	_, err = f.svc.Update(context.Background(), domain.Viewer{UserID: owner.UserID, Role: domain.RoleSeller}, res.Shop.ID, UpdateShopRequest{Phone: &unverified})
	assert.ErrorIs(t, err, ErrPhoneNotVerified)
}

func TestDelete_CascadesAndDemotesOwner(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "o@example.ma", domain.RoleCustomer)
	res, err := f.svc.Create(context.Background(), owner, validRequest())
	require.NoError(t, err)
	p := &domain.Product{ShopID: res.Shop.ID, Kind: domain.KindProduct, Name: "Rug", Status: domain.ProductActive}
	require.NoError(t, f.products.Create(context.Background(), p))

	seller := domain.Viewer{UserID: owner.UserID, Role: domain.RoleSeller}
	_, err = f.svc.Delete(context.Background(), seller, res.Shop.ID)
	require.NoError(t, err)

	_, err = f.products.GetByID(context.Background(), p.ID)
	assert.True(t, repository.IsNotFound(err))

	u, err := f.users.GetByID(context.Background(), owner.UserID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, u.Role)

	_, err = f.svc.Delete(context.Background(), seller, res.Shop.ID)
	assert.ErrorIs(t, err, ErrShopNotFound)
}
