package httpx

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const maxUploadBytes = 5 << 20 // 5 MiB

var allowedImageExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// ImageStore keeps uploaded product images on local disk, served under
// /uploads/products/.
type ImageStore struct{ Dir string }

func (s *ImageStore) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExt[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(file, maxUploadBytes)); err != nil {
		return "", err
	}
	return "/uploads/products/" + name, nil
}

// Remove deletes a previously stored image; missing files are not an error.
func (s *ImageStore) Remove(imageURL string) {
	if !strings.HasPrefix(imageURL, "/uploads/products/") {
		return
	}
	name := strings.TrimPrefix(imageURL, "/uploads/products/")
	if name == "" {
		return
	}
	_ = os.Remove(filepath.Join(s.Dir, filepath.Base(name)))
}
