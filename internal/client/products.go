package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

func (c *Client) CreateProduct(ctx context.Context, req ProductInput) (*Product, error) {
	var out Product
	if err := c.doJSON(ctx, http.MethodPost, "/products", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Product(ctx context.Context, id int64) (*Product, error) {
	var out Product
	if err := c.doJSON(ctx, http.MethodGet, productPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, req ProductUpdate) (*Product, error) {
	var out Product
	if err := c.doJSON(ctx, http.MethodPut, productPath(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetProductStatus(ctx context.Context, id int64, status string) (*Product, error) {
	var out Product
	body := map[string]string{"status": status}
	if err := c.doJSON(ctx, http.MethodPatch, productPath(id)+"/status", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UploadProductImage(ctx context.Context, id int64, filename string, r io.Reader) (*Product, error) {
	var out Product
	if err := c.upload(ctx, productPath(id)+"/images", filename, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, productPath(id), nil, nil)
}

// AddReview posts a review and returns the product with its new rating.
func (c *Client) AddReview(ctx context.Context, id int64, req ReviewInput) (*Product, error) {
	var out Product
	if err := c.doJSON(ctx, http.MethodPost, productPath(id)+"/reviews", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func productPath(id int64) string { return fmt.Sprintf("/products/%d", id) }
