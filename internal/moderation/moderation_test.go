package moderation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketplace/internal/client"
	"marketplace/internal/domain"
	"marketplace/internal/notify"
	"marketplace/internal/server/servertest"
)

type mockSellerAPI struct {
	mock.Mock
}

func (m *mockSellerAPI) AdminSellers(ctx context.Context) ([]client.Shop, error) {
	args := m.Called(ctx)
	shops, _ := args.Get(0).([]client.Shop)
	return shops, args.Error(1)
}

func (m *mockSellerAPI) ApproveSeller(ctx context.Context, id int64) (*client.Shop, error) {
	args := m.Called(ctx, id)
	shop, _ := args.Get(0).(*client.Shop)
	return shop, args.Error(1)
}

func (m *mockSellerAPI) RejectSeller(ctx context.Context, id int64, reason string) (*client.Shop, error) {
	args := m.Called(ctx, id, reason)
	shop, _ := args.Get(0).(*client.Shop)
	return shop, args.Error(1)
}

func (m *mockSellerAPI) AdminDeleteSeller(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

var base = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func sellers() []client.Shop {
	return []client.Shop{
		{ID: 1, Name: "zeta", Status: client.ShopApproved, CreatedAt: base.Add(1 * time.Hour), Owner: &client.User{Email: "z@x.ma", Name: "Zineb"}},
		{ID: 2, Name: "Alpha", Status: client.ShopPending, CreatedAt: base.Add(2 * time.Hour), Owner: &client.User{Email: "a@x.ma", Name: "Amine"}},
		{ID: 3, Name: "beta", Status: client.ShopApproved, CreatedAt: base.Add(3 * time.Hour), Phone: "0612345678", Owner: &client.User{Email: "b@x.ma", Name: "Badr"}},
		{ID: 4, Name: "Beta", Status: client.ShopApproved, CreatedAt: base.Add(4 * time.Hour), Address: "Tanger", Owner: &client.User{Email: "c@x.ma", Name: "Chama"}},
		{ID: 5, Name: "gamma", Status: client.ShopRejected, CreatedAt: base.Add(5 * time.Hour)},
	}
}

func ids(shops []client.Shop) []int64 {
	out := make([]int64, 0, len(shops))
	for _, s := range shops {
		out = append(out, s.ID)
	}
	return out
}

func loadedSellerList(t *testing.T) (*SellerList, *mockSellerAPI, *notify.Recorder) {
	t.Helper()
	api := &mockSellerAPI{}
	api.On("AdminSellers", mock.Anything).Return(sellers(), nil)
	rec := &notify.Recorder{}
	l := NewSellerList(api, rec)
	require.NoError(t, l.Load(context.Background()))
	assert.False(t, l.Loading())
	return l, api, rec
}

func TestSellerView(t *testing.T) {
	l, _, _ := loadedSellerList(t)

	// approved only, by name, ties keep fetch order
	assert.Equal(t, []int64{3, 4, 1}, ids(l.View(Query{Status: "approved", Sort: SortName})))

	// default sort is newest first
	assert.Equal(t, []int64{5, 4, 3, 2, 1}, ids(l.View(Query{})))
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(l.View(Query{Status: FilterAll, Sort: SortOldest})))

	// empty search returns the current sorted set
	assert.Equal(t, ids(l.View(Query{Sort: SortEmail})), ids(l.View(Query{Search: "  ", Sort: SortEmail})))
	assert.Equal(t, []int64{5, 2, 3, 4, 1}, ids(l.View(Query{Sort: SortEmail})))

	// search spans shop name, owner, phone and address
	assert.Equal(t, []int64{3}, ids(l.View(Query{Search: "0612"})))
	assert.Equal(t, []int64{4}, ids(l.View(Query{Search: "tanger"})))
	assert.Equal(t, []int64{2}, ids(l.View(Query{Search: "AMINE"})))
	assert.Equal(t, []int64{4, 3}, ids(l.View(Query{Search: "beta"})))

	assert.Equal(t, map[client.ShopStatus]int{client.ShopApproved: 3, client.ShopPending: 1, client.ShopRejected: 1}, l.Counts())
}

func TestSellerApprove_ReloadsAfterResponse(t *testing.T) {
	l, api, rec := loadedSellerList(t)

	api.On("ApproveSeller", mock.Anything, int64(2)).Return(&client.Shop{ID: 2}, nil)

	require.NoError(t, l.Approve(context.Background(), 2))

	var order []string
	for _, c := range api.Calls {
		order = append(order, c.Method)
	}
	assert.Equal(t, []string{"AdminSellers", "ApproveSeller", "AdminSellers"}, order)
	assert.Equal(t, notify.Entry{Level: notify.LevelSuccess, Message: "Seller approved successfully"}, rec.Last())
	assert.False(t, l.Busy())
}

func TestSellerReject_ErrorSkipsReload(t *testing.T) {
	l, api, rec := loadedSellerList(t)

	api.On("RejectSeller", mock.Anything, int64(1), "no documents").
		Return(nil, &client.APIError{Status: 404, Code: "SHOP_NOT_FOUND", Message: "Shop not found"})

	err := l.Reject(context.Background(), 1, "  no documents ")
	require.Error(t, err)
	api.AssertNumberOfCalls(t, "AdminSellers", 1)
	assert.Equal(t, notify.Entry{Level: notify.LevelError, Message: "Shop not found"}, rec.Last())
	assert.False(t, l.Busy())
}

func TestSellerLoad_Error(t *testing.T) {
	api := &mockSellerAPI{}
	api.On("AdminSellers", mock.Anything).Return(nil, errors.New("connection reset"))
	rec := &notify.Recorder{}
	l := NewSellerList(api, rec)

	require.Error(t, l.Load(context.Background()))
	assert.False(t, l.Loading())
	assert.Equal(t, client.FallbackMessage, rec.Last().Message)
}

func TestUserList_AgainstServer(t *testing.T) {
	env := servertest.New(t)
	ctx := context.Background()

	admin := env.CreateUser(t, "admin@example.ma", "secret1", "Admin", domain.RoleAdmin)
	owner := env.CreateUser(t, "youssef@example.ma", "secret1", "Youssef", domain.RoleCustomer)
	env.CreateShop(t, owner, "Atlas Crafts", domain.ShopApproved)
	env.CreateUser(t, "hind@example.ma", "secret1", "Hind", domain.RoleCustomer)

	rec := &notify.Recorder{}
	l := NewUserList(client.New(env.URL(), nil, client.StaticToken(env.Token(t, admin))), rec)
	require.NoError(t, l.Load(ctx))
	require.Len(t, l.All(), 3)

	byName := l.View(Query{Sort: SortName})
	require.Len(t, byName, 3)
	assert.Equal(t, []string{"Admin", "Hind", "Youssef"}, []string{byName[0].Name, byName[1].Name, byName[2].Name})

	sellersOnly := l.View(Query{Role: "seller"})
	require.Len(t, sellersOnly, 1)
	assert.Equal(t, owner.ID, sellersOnly[0].ID)

	// shop name is searchable
	found := l.View(Query{Search: "atlas"})
	require.Len(t, found, 1)
	assert.Equal(t, owner.ID, found[0].ID)

	require.NoError(t, l.Delete(ctx, owner.ID))
	assert.Len(t, l.All(), 2)
	assert.Equal(t, notify.LevelSuccess, rec.Last().Level)

	// admins cannot delete themselves
	require.Error(t, l.Delete(ctx, admin.ID))
	assert.Equal(t, notify.LevelError, rec.Last().Level)
	assert.Len(t, l.All(), 2)
}
