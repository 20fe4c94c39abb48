package media

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// URLPrefix is where the uploads directory is served from.
const URLPrefix = "/dashboard/uploads"

const (
	ThumbWidth  = 320
	ThumbHeight = 320
	webpQuality = 80
)

var (
	ErrNotImage = errors.New("only image files can be uploaded")
	ErrTooLarge = errors.New("file is too large")
)

// Stored describes a saved upload. Paths are URLs under URLPrefix.
type Stored struct {
	Filename     string
	OriginalName string
	MimeType     string
	Size         int64
	Path         string
	ThumbPath    string
	WebPPath     string
}

// Service writes uploaded images below root and derives thumbnails.
type Service struct {
	root   string
	limit  int64
	logger *slog.Logger
}

func NewService(root string, limit int64, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{root: root, limit: limit, logger: logger}
}

// Root is the uploads directory on disk.
func (s *Service) Root() string { return s.root }

// SaveImage stores fh under subdir with a random name. When thumb is true a resized
// thumbnail and a webp copy are written next to it; failures there are logged and the
// original upload is kept.
func (s *Service) SaveImage(fh *multipart.FileHeader, subdir, prefix string, thumb bool) (*Stored, error) {
	if s.limit > 0 && fh.Size > s.limit {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, fh.Size, s.limit)
	}
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	mimeType := http.DetectContentType(head[:n])
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, ErrNotImage
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	dir := filepath.Join(s.root, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	name := prefix + uuid.NewString() + ext
	dstPath := filepath.Join(dir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, err
	}
	size, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dstPath)
		return nil, err
	}

	st := &Stored{
		Filename:     name,
		OriginalName: fh.Filename,
		MimeType:     mimeType,
		Size:         size,
		Path:         path.Join(URLPrefix, subdir, name),
	}
	if thumb {
		thumbName, webpName, err := s.thumbnail(dstPath)
		if err != nil {
			s.logger.Warn("thumbnail failed", "file", name, "error", err)
		} else {
			st.ThumbPath = path.Join(URLPrefix, subdir, thumbName)
			st.WebPPath = path.Join(URLPrefix, subdir, webpName)
		}
	}
	return st, nil
}

func (s *Service) thumbnail(srcPath string) (thumbName, webpName string, err error) {
	img, err := imaging.Open(srcPath, imaging.AutoOrientation(true))
	if err != nil {
		return "", "", err
	}
	small := imaging.Fit(img, ThumbWidth, ThumbHeight, imaging.Lanczos)

	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	dir := filepath.Dir(srcPath)
	thumbName = base + "_thumb.png"
	if err := imaging.Save(small, filepath.Join(dir, thumbName)); err != nil {
		return "", "", err
	}
	webpName = base + ".webp"
	if err := writeWebP(filepath.Join(dir, webpName), img); err != nil {
		return "", "", err
	}
	return thumbName, webpName, nil
}

func writeWebP(p string, img image.Image) error {
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	if err := webp.Encode(f, img, &webp.Options{Quality: webpQuality}); err != nil {
		f.Close()
		os.Remove(p)
		return err
	}
	return f.Close()
}

// Remove deletes the files behind the given upload URLs. Empty and foreign URLs are ignored.
func (s *Service) Remove(urls ...string) {
	for _, u := range urls {
		p, ok := s.diskPath(u)
		if !ok {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("remove upload failed", "path", p, "error", err)
		}
	}
}

func (s *Service) diskPath(u string) (string, bool) {
	if !strings.HasPrefix(u, URLPrefix+"/") || strings.Contains(u, "..") {
		return "", false
	}
	rel := path.Clean(strings.TrimPrefix(u, URLPrefix))
	return filepath.Join(s.root, filepath.FromSlash(rel)), true
}
