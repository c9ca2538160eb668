package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// -------------------- Auth --------------------

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	var out AuthResult
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var out AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendCode asks the server to deliver a verification code to target.
func (c *Client) SendCode(ctx context.Context, ch Channel, target string) (*SendCodeResult, error) {
	var out SendCodeResult
	path := fmt.Sprintf("/auth/verification/%s/send", ch)
	if err := c.doJSON(ctx, http.MethodPost, path, map[string]string{string(ch): target}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyCode(ctx context.Context, ch Channel, target, code string) error {
	path := fmt.Sprintf("/auth/verification/%s/verify", ch)
	return c.doJSON(ctx, http.MethodPost, path, map[string]string{string(ch): target, "code": code}, nil)
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/password/forgot", map[string]string{"email": email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	body := map[string]string{"token": token, "password": password}
	return c.doJSON(ctx, http.MethodPost, "/auth/password/reset", body, nil)
}

// -------------------- Current user --------------------

func (c *Client) Me(ctx context.Context) (*User, error) {
	var out User
	if err := c.doJSON(ctx, http.MethodGet, "/users/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, req ProfileUpdate) (*User, error) {
	var out User
	if err := c.doJSON(ctx, http.MethodPut, "/users/me", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := map[string]string{"old_password": oldPassword, "new_password": newPassword}
	return c.doJSON(ctx, http.MethodPut, "/users/me/password", body, nil)
}

func (c *Client) UploadAvatar(ctx context.Context, filename string, r io.Reader) (*User, error) {
	var out User
	if err := c.upload(ctx, "/users/me/avatar", filename, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/users/me", nil, nil)
}
