package storefront

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/client"
	"marketplace/internal/domain"
	"marketplace/internal/server/servertest"
)

func withRatings(ratings ...int) client.Product {
	p := client.Product{}
	for _, r := range ratings {
		p.Reviews = append(p.Reviews, client.Review{Rating: r})
	}
	return p
}

func TestAverageRating(t *testing.T) {
	assert.Zero(t, AverageRating(nil))
	assert.Zero(t, AverageRating([]client.Product{withRatings()}))
	assert.Equal(t, 4.0, AverageRating([]client.Product{withRatings(3, 5)}))
	// flattened, not an average of averages
	assert.Equal(t, 4.0, AverageRating([]client.Product{withRatings(5, 5, 5), withRatings(1)}))
	assert.Equal(t, 4, TotalReviews([]client.Product{withRatings(5, 5, 5), withRatings(1)}))
}

func TestSummarize(t *testing.T) {
	a := withRatings(4)
	a.SoldOut = 3
	b := withRatings(2)
	b.SoldOut = 7

	assert.Equal(t, Stats{Products: 2, Sold: 10, Reviews: 2, Rating: 3}, Summarize([]client.Product{a, b}))
}

func TestProductCard(t *testing.T) {
	p := client.Product{ID: 1, Name: "Rug", OriginalPrice: 200, DiscountPrice: 150, Stock: 3, Images: []string{"/uploads/products/r.png"}}
	card := ProductCard(p, "http://localhost:8080/")
	assert.Equal(t, 150.0, card.Price)
	assert.Equal(t, 25, card.DiscountPercent)
	assert.True(t, card.OnSale())
	assert.Equal(t, "Only 3 left", card.Stock)
	assert.Equal(t, "http://localhost:8080/uploads/products/r.png", card.Image)

	// a discount above the original is ignored
	p.DiscountPrice = 250
	p.Stock = 0
	card = ProductCard(p, "http://localhost:8080")
	assert.Equal(t, 200.0, card.Price)
	assert.False(t, card.OnSale())
	assert.Equal(t, "Out of stock", card.Stock)

	assert.Equal(t, "In stock", StockLabel(40))
}

func TestLoadShopProfile(t *testing.T) {
	env := servertest.New(t)
	owner := env.CreateUser(t, "owner@example.ma", "secret1", "Owner", domain.RoleCustomer)
	shop := env.CreateShop(t, owner, "Atlas Crafts", domain.ShopApproved)
	env.CreateProduct(t, shop.ID, "Rug", 300, 3, 5)
	env.CreateProduct(t, shop.ID, "Pouf", 120)

	api := client.New(env.URL(), nil, nil)
	prof, err := LoadShopProfile(context.Background(), api, shop.ID)
	require.NoError(t, err)
	assert.Equal(t, "Atlas Crafts", prof.Shop.Name)
	assert.Len(t, prof.Products, 2)
	assert.Equal(t, 2, prof.Stats.Reviews)
	assert.Equal(t, 4.0, prof.Stats.Rating)

	_, err = LoadShopProfile(context.Background(), api, 9999)
	require.Error(t, err)
	assert.True(t, client.IsStatus(err, 404))
}
