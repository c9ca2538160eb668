package account

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

type UploadKind string

const (
	UploadAvatar  UploadKind = "avatar"
	UploadBanner  UploadKind = "banner"
	UploadProduct UploadKind = "product"
)

const (
	MaxAvatarSize = 5 << 20
	MaxImageSize  = 10 << 20
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var (
	ErrEmptyFile     = fmt.Errorf("%w: the file is empty", ErrValidation)
	ErrFileTooLarge  = fmt.Errorf("%w: the file is too large", ErrValidation)
	ErrNotAnImage    = fmt.Errorf("%w: only JPEG, PNG, GIF or WebP images are allowed", ErrValidation)
	ErrUnknownUpload = fmt.Errorf("%w: unknown upload kind", ErrValidation)
)

func (k UploadKind) MaxSize() int {
	switch k {
	case UploadAvatar:
		return MaxAvatarSize
	case UploadBanner, UploadProduct:
		return MaxImageSize
	default:
		return 0
	}
}

// CheckImage validates an upload before anything is sent and returns its
// detected MIME type.
func CheckImage(kind UploadKind, data []byte) (string, error) {
	limit := kind.MaxSize()
	if limit == 0 {
		return "", ErrUnknownUpload
	}
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if len(data) > limit {
		return "", fmt.Errorf("%w (max %d MB)", ErrFileTooLarge, limit>>20)
	}

	mt := mimetype.Detect(data)
	if !allowedImageTypes[mt.String()] {
		return "", ErrNotAnImage
	}
	return mt.String(), nil
}
