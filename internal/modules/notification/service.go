package notification

import (
	"context"
	"fmt"

	"marketplace/internal/domain"
	"marketplace/internal/logger"
	"marketplace/internal/verification"
)

type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Service mails account events to users. Delivery failures are logged and
// never fail the action that triggered them.
type Service struct {
	users  UserReader
	mailer verification.Sender
}

func NewService(users UserReader, mailer verification.Sender) *Service {
	return &Service{users: users, mailer: mailer}
}

func (s *Service) NotifyShopApproved(ctx context.Context, ownerUserID, shopID int64) error {
	return s.send(ctx, ownerUserID,
		"Your shop is approved",
		fmt.Sprintf("Good news: your shop #%d passed moderation and is now visible to buyers.", shopID),
	)
}

func (s *Service) NotifyShopRejected(ctx context.Context, ownerUserID, shopID int64, reason string) error {
	msg := fmt.Sprintf("Your shop #%d was not approved", shopID)
	if reason != "" {
		msg = msg + ". Reason: " + reason
	}
	return s.send(ctx, ownerUserID, "Your shop was not approved", msg)
}

func (s *Service) NotifyNewReview(ctx context.Context, ownerUserID, productID int64, rating int) error {
	return s.send(ctx, ownerUserID,
		"New review",
		fmt.Sprintf("Product #%d received a new review rated %d/5.", productID, rating),
	)
}

func (s *Service) send(ctx context.Context, userID int64, subject, body string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, user.Email, subject, body); err != nil {
		logger.Warn().Err(err).Int64("user_id", userID).Str("subject", subject).Msg("notification not delivered")
		return err
	}
	return nil
}
