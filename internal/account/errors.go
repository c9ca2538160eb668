package account

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"marketplace/internal/pkg/validator"
)

// ConfirmWord must be typed exactly to confirm a destructive delete.
const ConfirmWord = "DELETE"

var (
	ErrValidation           = errors.New("validation failed")
	ErrConfirmationMismatch = fmt.Errorf("%w: type %s to confirm", ErrValidation, ConfirmWord)
	ErrPasswordMismatch     = fmt.Errorf("%w: passwords do not match", ErrValidation)
	ErrPasswordTooShort     = fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	ErrNotLoggedIn          = errors.New("please log in first")
)

// Confirm checks the delete confirmation text. No trimming, no case folding.
func Confirm(text string) error {
	if text != ConfirmWord {
		return ErrConfirmationMismatch
	}
	return nil
}

func checkPassword(password, confirm string) error {
	if len(password) < 6 {
		return ErrPasswordTooShort
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

var tagMessages = map[string]string{
	"required": "is required",
	"notblank": "is required",
	"ma_phone": "must be a valid Moroccan mobile number",
	"email":    "must be a valid email",
	"min":      "is too short",
	"max":      "is too long",
}

// validateStruct runs the shared validator and reports the first failing
// field, in field-name order.
func validateStruct(v any) error {
	fields := validator.Validate(v)
	if len(fields) == 0 {
		return nil
	}

	names := make([]string, 0, len(fields))
	for f := range fields {
		names = append(names, f)
	}
	sort.Strings(names)

	f := names[0]
	msg, ok := tagMessages[fields[f]]
	if !ok {
		msg = "is invalid"
	}
	return fmt.Errorf("%w: %s %s", ErrValidation, humanize(f), msg)
}

// humanize turns "ZipCode" into "zip code".
func humanize(field string) string {
	var b strings.Builder
	for i, r := range field {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
