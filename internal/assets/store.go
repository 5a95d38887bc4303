package assets

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxUploadSize is enforced by the transport layer (body limit middleware)
// before an upload ever reaches the store.
const MaxUploadSize = 5 << 20

var ErrUnsupportedMedia = errors.New("only image files are allowed")

// Store keeps uploaded product images in a single directory and hands out
// references of the form /<base>/<generated-name>.
type Store struct {
	dir  string
	base string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, base: "/uploads"}, nil
}

func (s *Store) Dir() string { return s.dir }

// Save writes the uploaded part to disk under a generated unique name and
// returns its serving reference. Only image/* content is accepted; the check
// runs before anything touches the disk.
func (s *Store) Save(file *multipart.FileHeader) (string, error) {
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrUnsupportedMedia
	}

	name := fmt.Sprintf("image-%d-%s%s",
		time.Now().UnixMilli(), uuid.NewString(), filepath.Ext(file.Filename))

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("write %s: %w", name, err)
	}

	return path.Join(s.base, name), nil
}

// Remove unlinks the file a reference points at. Callers treat failure as
// best-effort cleanup: log it, never fail the request over it. An empty
// reference is a no-op.
func (s *Store) Remove(ref string) error {
	if ref == "" {
		return nil
	}
	name := path.Base(ref)
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

// Exists reports whether the referenced file is present on disk.
func (s *Store) Exists(ref string) bool {
	if ref == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(s.dir, path.Base(ref)))
	return err == nil
}
