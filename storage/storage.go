package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"microtwit/config"
)

// BlobStore persists uploaded media and returns the path clients use to
// fetch it again.
type BlobStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// UniqueName keeps the uploaded file's base name and extension and puts a
// random UUID between them, e.g. "cat.png" becomes "cat_<uuid>.png".
func UniqueName(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	if base == "." || base == "/" {
		base = ""
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s_%s%s", stem, uuid.NewString(), ext)
}

// New returns the Cloudinary store when a Cloudinary URL is configured and a
// local directory store otherwise.
func New(cfg config.Config) (BlobStore, error) {
	if cfg.CloudinaryURL != "" {
		return NewCloudinaryStore(cfg.CloudinaryURL)
	}
	return NewLocalStore(cfg.MediaDir, cfg.MediaURLPrefix)
}

type LocalStore struct {
	dir    string
	prefix string
}

func NewLocalStore(dir, prefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory %s: %w", dir, err)
	}
	return &LocalStore{dir: dir, prefix: strings.TrimRight(prefix, "/")}, nil
}

func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name = filepath.Base(name)
	dst := filepath.Join(s.dir, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("failed to write %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to close %s: %w", dst, err)
	}

	return s.prefix + "/" + name, nil
}

const cloudinaryFolder = "microtwit/medias"

type CloudinaryStore struct {
	client *cloudinary.Cloudinary
}

func NewCloudinaryStore(url string) (*CloudinaryStore, error) {
	client, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryStore{client: client}, nil
}

func (s *CloudinaryStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	overwrite := false
	result, err := s.client.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:       cloudinaryFolder,
		PublicID:     strings.TrimSuffix(name, filepath.Ext(name)),
		ResourceType: "auto",
		Overwrite:    &overwrite,
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload failed: %w", err)
	}
	if result.Error.Message != "" {
		return "", errors.New("cloudinary upload failed: " + result.Error.Message)
	}
	return result.SecureURL, nil
}
