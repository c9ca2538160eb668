package account

import (
	"context"
	"fmt"
	"strings"

	"marketplace/internal/client"
	"marketplace/internal/notify"
	"marketplace/internal/pkg/phone"
	"marketplace/internal/pkg/validator"
)

func (s *Service) UpdateProfile(ctx context.Context, upd client.ProfileUpdate) (*client.User, error) {
	if upd.Name != nil {
		n := strings.TrimSpace(*upd.Name)
		if len(n) < 3 || len(n) > 50 {
			return nil, s.fail(fmt.Errorf("%w: name must be 3 to 50 characters", ErrValidation))
		}
		upd.Name = &n
	}
	if upd.Phone != nil && !phone.IsValid(*upd.Phone) {
		return nil, s.fail(fmt.Errorf("%w: phone must be a valid Moroccan mobile number", ErrValidation))
	}

	u, err := s.api.UpdateProfile(ctx, upd)
	if err != nil {
		return nil, s.fail(fmt.Errorf("update profile: %w", err))
	}
	s.session.SetUser(u)
	notify.Success(s.notify, "Profile updated successfully")
	return u, nil
}

type PasswordChange struct {
	Old     string
	New     string
	Confirm string
}

func (s *Service) ChangePassword(ctx context.Context, pc PasswordChange) error {
	if pc.Old == "" {
		return s.fail(fmt.Errorf("%w: current password is required", ErrValidation))
	}
	if err := checkPassword(pc.New, pc.Confirm); err != nil {
		return s.fail(err)
	}
	if err := s.api.ChangePassword(ctx, pc.Old, pc.New); err != nil {
		return s.fail(fmt.Errorf("change password: %w", err))
	}
	notify.Success(s.notify, "Password updated successfully")
	return nil
}

func (s *Service) UploadAvatar(ctx context.Context, file Upload) (*client.User, error) {
	if err := file.check(UploadAvatar); err != nil {
		return nil, s.fail(err)
	}
	u, err := s.api.UploadAvatar(ctx, file.Name, file.reader())
	if err != nil {
		return nil, s.fail(fmt.Errorf("upload avatar: %w", err))
	}
	s.session.SetUser(u)
	notify.Success(s.notify, "Avatar updated")
	return u, nil
}

// DeleteAccount removes the account and logs out. Nothing is sent unless
// confirmation equals ConfirmWord.
func (s *Service) DeleteAccount(ctx context.Context, confirmation string) error {
	if err := Confirm(confirmation); err != nil {
		return s.fail(err)
	}
	if err := s.api.DeleteAccount(ctx); err != nil {
		return s.fail(fmt.Errorf("delete account: %w", err))
	}
	if err := s.session.Clear(); err != nil {
		return err
	}
	notify.Success(s.notify, "Account deleted")
	return nil
}

// -------------------- Password reset --------------------

func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !validator.Var(email, "required,email") {
		return s.fail(fmt.Errorf("%w: enter a valid email", ErrValidation))
	}
	if err := s.api.ForgotPassword(ctx, email); err != nil {
		return s.fail(fmt.Errorf("forgot password: %w", err))
	}
	notify.Success(s.notify, "If the account exists, a reset link has been sent")
	return nil
}

type ResetForm struct {
	Token    string
	Password string
	Confirm  string
}

func (s *Service) ResetPassword(ctx context.Context, f ResetForm) error {
	if strings.TrimSpace(f.Token) == "" {
		return s.fail(fmt.Errorf("%w: the reset link is invalid", ErrValidation))
	}
	if err := checkPassword(f.Password, f.Confirm); err != nil {
		return s.fail(err)
	}
	if err := s.api.ResetPassword(ctx, strings.TrimSpace(f.Token), f.Password); err != nil {
		return s.fail(fmt.Errorf("reset password: %w", err))
	}
	notify.Success(s.notify, "Password reset successfully. You can log in now.")
	return nil
}
