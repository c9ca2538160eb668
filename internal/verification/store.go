package verification

import (
	"context"
	"errors"
	"time"

	"marketplace/internal/domain"

	"gorm.io/gorm"
)

// Store persists one code record per channel and target.
type Store interface {
	Get(ctx context.Context, channel domain.VerificationChannel, target string) (*domain.VerificationCode, error)
	Save(ctx context.Context, code *domain.VerificationCode) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(ctx context.Context, channel domain.VerificationChannel, target string) (*domain.VerificationCode, error) {
	var row domain.VerificationCode
	err := s.db.WithContext(ctx).
		Where("channel = ? AND target = ?", channel, target).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *GormStore) Save(ctx context.Context, code *domain.VerificationCode) error {
	if code.ID == 0 {
		return s.db.WithContext(ctx).Create(code).Error
	}
	return s.db.WithContext(ctx).Save(code).Error
}

// DeleteExpired drops codes that can neither be verified nor prove a
// verification any more.
func (s *GormStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at < ? AND (verified_until IS NULL OR verified_until < ?)", now, now).
		Delete(&domain.VerificationCode{})
	return res.RowsAffected, res.Error
}
