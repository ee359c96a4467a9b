package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// rasterTypes are the image formats accepted for upload. SVG is left out:
// it is served from the site's own origin and can carry script.
var rasterTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp"}

// ErrNotImage is returned when an upload is not a recognised raster image.
var ErrNotImage = errors.New("upload a valid image: the file you uploaded was either not an image or a corrupted image")

// MediaStorage stores uploaded files and resolves their public URLs.
type MediaStorage interface {
	SaveImage(dir, filename string, r io.Reader) (string, error)
	URL(name string) string
}

// FileSystemStorage keeps uploads under a root directory on local disk.
type FileSystemStorage struct {
	root    string
	baseURL string
}

// NewFileSystemStorage serves files saved under root at baseURL (e.g. "/media/").
func NewFileSystemStorage(root, baseURL string) *FileSystemStorage {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &FileSystemStorage{root: root, baseURL: baseURL}
}

// SaveImage sniffs the content, rejects anything that is not a raster image and
// writes it to dir/filename. An existing name gets a random suffix. The
// returned name is relative to the storage root and uses forward slashes.
func (s *FileSystemStorage) SaveImage(dir, filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 || !mimetype.EqualsAny(mimetype.Detect(data).String(), rasterTypes...) {
		return "", ErrNotImage
	}

	if err := os.MkdirAll(filepath.Join(s.root, dir), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	base := sanitizeFilename(filename)
	name := path.Join(dir, base)
	for {
		f, err := os.OpenFile(filepath.Join(s.root, filepath.FromSlash(name)), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			ext := path.Ext(base)
			name = path.Join(dir, strings.TrimSuffix(base, ext)+"_"+uuid.NewString()[:7]+ext)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create media file: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", fmt.Errorf("write media file: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close media file: %w", err)
		}
		return name, nil
	}
}

func (s *FileSystemStorage) URL(name string) string {
	if name == "" {
		return ""
	}
	return s.baseURL + name
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r == '/' || r < 0x20:
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return uuid.NewString()
	}
	return name
}
