package media

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("media_file", name)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write(content)
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("ParseMultipartForm: %v", err)
	}
	return req.MultipartForm.File["media_file"][0]
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestSaveImage_WithThumbnail(t *testing.T) {
	root := t.TempDir()
	s := NewService(root, 1<<20, nil)

	st, err := s.SaveImage(fileHeader(t, "Logo.PNG", pngBytes(t, 800, 400)), "cms", "", true)
	if err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	if st.MimeType != "image/png" {
		t.Errorf("MimeType = %q", st.MimeType)
	}
	if !strings.HasPrefix(st.Path, URLPrefix+"/cms/") || !strings.HasSuffix(st.Path, ".png") {
		t.Errorf("Path = %q", st.Path)
	}
	if st.ThumbPath == "" || st.WebPPath == "" {
		t.Fatalf("thumb paths missing: %+v", st)
	}
	for _, u := range []string{st.Path, st.ThumbPath, st.WebPPath} {
		p, _ := s.diskPath(u)
		if _, err := os.Stat(p); err != nil {
			t.Errorf("stat %s: %v", p, err)
		}
	}

	p, _ := s.diskPath(st.ThumbPath)
	f, _ := os.Open(p)
	cfg, _, err := image.DecodeConfig(f)
	f.Close()
	if err != nil {
		t.Fatalf("decode thumb: %v", err)
	}
	if cfg.Width != ThumbWidth || cfg.Height != ThumbHeight/2 {
		t.Errorf("thumb = %dx%d, want %dx%d", cfg.Width, cfg.Height, ThumbWidth, ThumbHeight/2)
	}

	s.Remove(st.Path, st.ThumbPath, st.WebPPath)
	entries, _ := os.ReadDir(filepath.Join(root, "cms"))
	if len(entries) != 0 {
		t.Errorf("files left after Remove: %d", len(entries))
	}
}

func TestSaveImage_Rejects(t *testing.T) {
	s := NewService(t.TempDir(), 64, nil)
	if _, err := s.SaveImage(fileHeader(t, "notes.txt", []byte("plain text body")), "cms", "", false); !errors.Is(err, ErrNotImage) {
		t.Errorf("text upload err = %v, want ErrNotImage", err)
	}
	if _, err := s.SaveImage(fileHeader(t, "big.png", pngBytes(t, 100, 100)), "cms", "", false); !errors.Is(err, ErrTooLarge) {
		t.Errorf("large upload err = %v, want ErrTooLarge", err)
	}
}

func TestDiskPath(t *testing.T) {
	s := NewService("/srv/uploads", 0, nil)
	if _, ok := s.diskPath("/elsewhere/x.png"); ok {
		t.Error("foreign url should be ignored")
	}
	if _, ok := s.diskPath(URLPrefix + "/../../etc/passwd"); ok {
		t.Error("traversal should be rejected")
	}
	p, ok := s.diskPath(URLPrefix + "/cms/a.png")
	if !ok || p != filepath.Join("/srv/uploads", "cms", "a.png") {
		t.Errorf("diskPath = %q, %v", p, ok)
	}
}
