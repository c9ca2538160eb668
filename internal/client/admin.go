package client

import (
	"context"
	"fmt"
	"net/http"
)

// -------------------- Admin: users --------------------

func (c *Client) AdminUsers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.doJSON(ctx, http.MethodGet, "/admin/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AdminDeleteUser(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/admin/users/%d", id), nil, nil)
}

// -------------------- Admin: sellers (by shop id) --------------------

func (c *Client) AdminSellers(ctx context.Context) ([]Shop, error) {
	var out []Shop
	if err := c.doJSON(ctx, http.MethodGet, "/admin/sellers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ApproveSeller(ctx context.Context, shopID int64) (*Shop, error) {
	var out Shop
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/admin/sellers/%d/approve", shopID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RejectSeller(ctx context.Context, shopID int64, reason string) (*Shop, error) {
	var out Shop
	body := map[string]string{"reason": reason}
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/admin/sellers/%d/reject", shopID), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminDeleteSeller(ctx context.Context, shopID int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/admin/sellers/%d", shopID), nil, nil)
}

func (c *Client) SetShopBadge(ctx context.Context, shopID int64, verified bool) (*Shop, error) {
	var out Shop
	body := map[string]bool{"verified": verified}
	if err := c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/admin/shops/%d/badge", shopID), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
