package domain

import "time"

type VerificationChannel string

const (
	ChannelEmail VerificationChannel = "email"
	ChannelPhone VerificationChannel = "phone"
)

// VerificationCode is the server-held code for one contact value. Only the
// peppered hash of the code is stored.
type VerificationCode struct {
	ID            int64               `json:"id" gorm:"primaryKey"`
	Channel       VerificationChannel `json:"channel" gorm:"uniqueIndex:idx_verification_target;not null"`
	Target        string              `json:"target" gorm:"uniqueIndex:idx_verification_target;not null"`
	CodeHash      string              `json:"code_hash"`
	Attempts      int                 `json:"attempts"`
	LastSentAt    time.Time           `json:"last_sent_at"`
	ExpiresAt     time.Time           `json:"expires_at"`
	UsedAt        *time.Time          `json:"used_at,omitempty"`
	VerifiedUntil *time.Time          `json:"verified_until,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

type PasswordResetToken struct {
	ID        int64      `gorm:"primaryKey"`
	UserID    int64      `gorm:"index;not null"`
	TokenHash string     `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time  `gorm:"not null"`
	UsedAt    *time.Time
	CreatedAt time.Time
}
