package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

type ShopStatus string

const (
	ShopPending  ShopStatus = "pending"
	ShopApproved ShopStatus = "approved"
	ShopRejected ShopStatus = "rejected"
)

// Channel is a verification channel.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

type User struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	Role          Role      `json:"role"`
	EmailVerified bool      `json:"email_verified"`
	PhoneVerified bool      `json:"phone_verified"`
	Avatar        Avatar    `json:"avatar,omitempty"`
	Shop          *ShopRef  `json:"shop,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (u *User) IsAdmin() bool  { return u.Role == RoleAdmin }
func (u *User) IsSeller() bool { return u.Role == RoleSeller }

// Avatar accepts either a URL string or an object {"url": "..."}.
type Avatar string

func (a *Avatar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*a = ""
		return nil
	case len(b) > 0 && b[0] == '{':
		var obj struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		*a = Avatar(obj.URL)
		return nil
	default:
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("avatar: %w", err)
		}
		*a = Avatar(s)
		return nil
	}
}

// ShopRef is a user's shop, sent either as a bare id or embedded.
type ShopRef struct {
	ID   int64
	Shop *Shop
}

func (r *ShopRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var s Shop
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		r.ID, r.Shop = s.ID, &s
		return nil
	}
	r.Shop = nil
	return json.Unmarshal(b, &r.ID)
}

func (r ShopRef) MarshalJSON() ([]byte, error) {
	if r.Shop != nil {
		return json.Marshal(r.Shop)
	}
	return json.Marshal(r.ID)
}

// Name returns the embedded shop name, or "" when only the id is known.
func (r *ShopRef) Name() string {
	if r == nil || r.Shop == nil {
		return ""
	}
	return r.Shop.Name
}

type Shop struct {
	ID           int64      `json:"id"`
	OwnerID      int64      `json:"owner_id"`
	Owner        *User      `json:"owner,omitempty"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Address      string     `json:"address"`
	Phone        string     `json:"phone"`
	ZipCode      string     `json:"zip_code"`
	Telegram     string     `json:"telegram,omitempty"`
	Banner       string     `json:"banner,omitempty"`
	Status       ShopStatus `json:"status"`
	Verified     bool       `json:"verified"`
	RejectReason string     `json:"reject_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type Product struct {
	ID            int64      `json:"id"`
	ShopID        int64      `json:"shop_id"`
	Kind          string     `json:"kind"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Category      string     `json:"category,omitempty"`
	OriginalPrice float64    `json:"original_price"`
	DiscountPrice float64    `json:"discount_price"`
	Stock         int        `json:"stock"`
	SoldOut       int        `json:"sold_out"`
	Status        string     `json:"status"`
	Images        []string   `json:"images"`
	Ratings       float64    `json:"ratings"`
	Reviews       []Review   `json:"reviews"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type Review struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	User      *User     `json:"user,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// -------------------- requests / results --------------------

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// SendCodeResult is "sent", or "fallback" with the code when delivery
// failed.
type SendCodeResult struct {
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
}

func (r *SendCodeResult) IsFallback() bool { return r.Status == "fallback" && r.Code != "" }

type ProfileUpdate struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

type ShopInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	ZipCode     string `json:"zip_code"`
	Telegram    string `json:"telegram,omitempty"`
}

type ShopUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Address     *string `json:"address,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	ZipCode     *string `json:"zip_code,omitempty"`
	Telegram    *string `json:"telegram,omitempty"`
}

// CreatedShop carries a fresh token: the owner is a seller from now on.
type CreatedShop struct {
	Shop  Shop   `json:"shop"`
	Token string `json:"token"`
}

type ProductInput struct {
	Kind          string     `json:"kind,omitempty"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Category      string     `json:"category,omitempty"`
	OriginalPrice float64    `json:"original_price"`
	DiscountPrice float64    `json:"discount_price"`
	Stock         int        `json:"stock"`
	Status        string     `json:"status,omitempty"`
	Images        []string   `json:"images,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
}

type ProductUpdate struct {
	Name          *string    `json:"name,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Category      *string    `json:"category,omitempty"`
	OriginalPrice *float64   `json:"original_price,omitempty"`
	DiscountPrice *float64   `json:"discount_price,omitempty"`
	Stock         *int       `json:"stock,omitempty"`
	Images        []string   `json:"images,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
}

type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}
