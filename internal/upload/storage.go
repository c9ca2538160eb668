package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	// FieldName is the multipart field every image upload uses.
	FieldName    = "image"
	MaxImageSize = 10 << 20
	PublicPrefix = "/uploads"
)

// AllowedImageTypes maps accepted MIME types to the stored extension.
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Storage keeps uploaded images on local disk under baseDir/<kind>/ and
// hands out URLs under /uploads/<kind>/.
type Storage struct {
	baseDir string
}

func NewStorage(baseDir string) *Storage {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	return &Storage{baseDir: baseDir}
}

func (s *Storage) BaseDir() string { return s.baseDir }

// SaveImage validates and stores one image, returning its public URL.
func (s *Storage) SaveImage(kind string, fh *multipart.FileHeader) (string, error) {
	if fh.Size == 0 {
		return "", ErrEmptyFile
	}
	if fh.Size > MaxImageSize {
		return "", ErrFileTooLarge
	}

	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	mt, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("detect type: %w", err)
	}
	ext, ok := AllowedImageTypes[mt.String()]
	if !ok {
		return "", ErrInvalidMimeType
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	dir := filepath.Join(s.baseDir, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	name := uuid.New().String() + ext
	absPath := filepath.Join(dir, name)
	dst, err := os.Create(absPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		_ = os.Remove(absPath)
		return "", fmt.Errorf("write file: %w", err)
	}

	return PublicPrefix + "/" + kind + "/" + name, nil
}

// Remove deletes a previously stored file by URL. Unknown URLs and files
// that are already gone are ignored.
func (s *Storage) Remove(url string) {
	rel := strings.TrimPrefix(url, PublicPrefix+"/")
	if rel == url || rel == "" || strings.Contains(rel, "..") {
		return
	}
	_ = os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(rel)))
}
