package upload

import (
	"errors"
	"net/http"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
	ErrInvalidMimeType = errors.New("file type is not allowed")
	ErrEmptyFile       = errors.New("file is empty")
)

// HTTPStatus maps storage errors to a status and error code.
func HTTPStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrEmptyFile):
		return http.StatusBadRequest, "EMPTY_FILE"
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"
	case errors.Is(err, ErrInvalidMimeType):
		return http.StatusUnsupportedMediaType, "INVALID_FILE_TYPE"
	default:
		return http.StatusInternalServerError, "UPLOAD_FAILED"
	}
}
