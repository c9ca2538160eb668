package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Shops lists approved shops.
func (c *Client) Shops(ctx context.Context) ([]Shop, error) {
	var out []Shop
	if err := c.doJSON(ctx, http.MethodGet, "/shops", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Shop(ctx context.Context, id int64) (*Shop, error) {
	var out Shop
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/shops/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ShopProducts lists the shop's products; the owner and admins also see
// inactive ones.
func (c *Client) ShopProducts(ctx context.Context, id int64) ([]Product, error) {
	var out []Product
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/shops/%d/products", id), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateShop turns the current user into a (pending) seller.
func (c *Client) CreateShop(ctx context.Context, req ShopInput) (*CreatedShop, error) {
	var out CreatedShop
	if err := c.doJSON(ctx, http.MethodPost, "/shops", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateShop(ctx context.Context, id int64, req ShopUpdate) (*Shop, error) {
	var out Shop
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/shops/%d", id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UploadShopBanner(ctx context.Context, id int64, filename string, r io.Reader) (*Shop, error) {
	var out Shop
	if err := c.upload(ctx, fmt.Sprintf("/shops/%d/banner", id), filename, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteShop(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/shops/%d", id), nil, nil)
}
