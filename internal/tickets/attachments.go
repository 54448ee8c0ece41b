package tickets

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Attachments persists ticket attachments and returns the public URL.
type Attachments interface {
	Save(ctx context.Context, originalName string, content io.Reader) (string, error)
	// Remove deletes a file previously returned by Save.
	Remove(ctx context.Context, url string) error
}

// DiskAttachments writes files under Dir with a uuid name and serves them
// from BaseURL/uploads.
type DiskAttachments struct {
	Dir     string
	BaseURL string
}

func (d DiskAttachments) Save(ctx context.Context, originalName string, content io.Reader) (string, error) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	// Only the extension survives from the client's filename.
	name := uuid.New().String() + strings.ToLower(filepath.Ext(originalName))
	dst, err := os.Create(filepath.Join(d.Dir, name))
	if err != nil {
		return "", fmt.Errorf("create attachment: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, content); err != nil {
		return "", fmt.Errorf("write attachment: %w", err)
	}
	return fmt.Sprintf("%s/uploads/%s", strings.TrimRight(d.BaseURL, "/"), name), nil
}

func (d DiskAttachments) Remove(ctx context.Context, url string) error {
	name := path.Base(url)
	if name == "." || name == "/" {
		return fmt.Errorf("attachment url %q has no file name", url)
	}
	if err := os.Remove(filepath.Join(d.Dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove attachment: %w", err)
	}
	return nil
}
