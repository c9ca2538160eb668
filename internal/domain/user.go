package domain

import "time"

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleSeller   UserRole = "seller"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	Email         string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash  string    `json:"-"`
	Role          UserRole  `json:"role" gorm:"index;not null"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	AvatarURL     string    `json:"avatar,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	PhoneVerified bool      `json:"phone_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Shop is filled by services for sellers; it is not a gorm association.
	Shop *Shop `json:"shop,omitempty" gorm:"-"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
