// Package storefront derives what a shop page shows from its products.
package storefront

import (
	"context"
	"fmt"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"marketplace/internal/client"
)

// AverageRating is the mean over every review of every product, 0 when
// there are none.
func AverageRating(products []client.Product) float64 {
	sum, count := 0, 0
	for _, p := range products {
		for _, r := range p.Reviews {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return float64(sum) / float64(count)
}

func TotalReviews(products []client.Product) int {
	n := 0
	for _, p := range products {
		n += len(p.Reviews)
	}
	return n
}

type Stats struct {
	Products int
	Sold     int
	Reviews  int
	Rating   float64
}

func Summarize(products []client.Product) Stats {
	st := Stats{
		Products: len(products),
		Reviews:  TotalReviews(products),
		Rating:   AverageRating(products),
	}
	for _, p := range products {
		st.Sold += p.SoldOut
	}
	return st
}

type Card struct {
	ID              int64
	Name            string
	Image           string
	Price           float64
	OriginalPrice   float64
	DiscountPercent int
	Stock           string
	Rating          float64
	Sold            int
}

func (c Card) OnSale() bool { return c.DiscountPercent > 0 }

// ProductCard picks the display price: the discount price when it is set
// and below the original.
func ProductCard(p client.Product, origin string) Card {
	card := Card{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.OriginalPrice,
		OriginalPrice: p.OriginalPrice,
		Stock:         StockLabel(p.Stock),
		Rating:        p.Ratings,
		Sold:          p.SoldOut,
	}
	if p.DiscountPrice > 0 && p.DiscountPrice < p.OriginalPrice {
		card.Price = p.DiscountPrice
		card.DiscountPercent = int(math.Round((p.OriginalPrice - p.DiscountPrice) / p.OriginalPrice * 100))
	}
	if len(p.Images) > 0 {
		card.Image = absolute(p.Images[0], origin)
	}
	return card
}

func StockLabel(stock int) string {
	switch {
	case stock <= 0:
		return "Out of stock"
	case stock <= 5:
		return fmt.Sprintf("Only %d left", stock)
	default:
		return "In stock"
	}
}

func absolute(path, origin string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(origin, "/") + "/" + strings.TrimLeft(path, "/")
}

// API is what a shop page needs from the backend.
type API interface {
	Shop(ctx context.Context, id int64) (*client.Shop, error)
	ShopProducts(ctx context.Context, id int64) ([]client.Product, error)
}

type Profile struct {
	Shop     *client.Shop
	Products []client.Product
	Stats    Stats
}

// LoadShopProfile fetches the shop and its products concurrently. Each
// request fills its own field.
func LoadShopProfile(ctx context.Context, api API, shopID int64) (*Profile, error) {
	var prof Profile
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		shop, err := api.Shop(gctx, shopID)
		if err != nil {
			return fmt.Errorf("load shop: %w", err)
		}
		prof.Shop = shop
		return nil
	})
	g.Go(func() error {
		products, err := api.ShopProducts(gctx, shopID)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		prof.Products = products
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	prof.Stats = Summarize(prof.Products)
	return &prof, nil
}
