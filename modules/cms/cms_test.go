package cms

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdash/core/module"
	"bizdash/core/module/moduletest"
	entity "bizdash/model/entity"
	cmsRepo "bizdash/model/repository/cms"
)

func newHarness(t *testing.T, enabled ...string) *moduletest.Harness {
	t.Helper()
	return moduletest.New(t, module.RouteTable{
		Name: {Dashboard: RegisterDashboardRoutes, Public: RegisterPublicRoutes},
	}, enabled...)
}

func repoOf(h *moduletest.Harness) *cmsRepo.CMSRepository {
	return cmsRepo.NewCMSRepository(h.Deps.DB, h.Deps.Cache, h.Deps.Logger)
}

func TestCreatePost_PublishedIsVisible(t *testing.T) {
	h := newHarness(t, Name)

	rec := h.Do(http.MethodPost, "/dashboard/cms/posts/create", url.Values{
		"title":   {"Yeni Ürün Çıktı"},
		"content": {"<p>Our new product is here.</p>"},
		"tags":    {"news, product ,"},
		"status":  {"published"},
	})
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())

	rec = h.Do(http.MethodGet, "/blog", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/blog/yeni-urun-cikti")

	rec = h.Do(http.MethodGet, "/blog/yeni-urun-cikti", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<p>Our new product is here.</p>")
	assert.Contains(t, body, "news, product")

	p, err := repoOf(h).PublishedPostBySlug(context.Background(), "yeni-urun-cikti")
	require.NoError(t, err)
	assert.Equal(t, []string{"news", "product"}, []string(p.Tags))
	assert.NotNil(t, p.PublishedAt)
	assert.Equal(t, "Our new product is here.", p.Excerpt)
}

func TestCreatePage_Validation(t *testing.T) {
	h := newHarness(t, Name)
	rec := h.Do(http.MethodPost, "/dashboard/cms/pages/create", url.Values{"title": {""}, "status": {"live"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "title cannot be blank")
}

func TestDraftPage_NotPublic(t *testing.T) {
	h := newHarness(t, Name)
	_, err := repoOf(h).CreatePage(context.Background(), cmsRepo.PageInput{Title: "About", Content: "Hi"})
	require.NoError(t, err)

	rec := h.Do(http.MethodGet, "/page/about", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.Do(http.MethodPost, "/dashboard/cms/pages/toggle-status/1", url.Values{})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard/cms/pages", rec.Header().Get(echo.HeaderLocation))

	rec = h.Do(http.MethodGet, "/page/about", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "About")
}

func TestTogglePost_JSON(t *testing.T) {
	h := newHarness(t, Name)
	_, err := repoOf(h).CreatePost(context.Background(), cmsRepo.PostInput{Title: "Hello"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/dashboard/cms/posts/toggle-status/1", nil)
	req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	h.Echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"status":"published","message":"Post marked as published"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/dashboard/cms/posts/toggle-status/9", nil)
	req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	h.Echo.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListing_InvalidatedOnWrite(t *testing.T) {
	h := newHarness(t, Name)
	repo := repoOf(h)
	_, err := repo.CreatePage(context.Background(), cmsRepo.PageInput{Title: "First"})
	require.NoError(t, err)

	rec := h.Do(http.MethodGet, "/dashboard/cms/pages", nil)
	require.Contains(t, rec.Body.String(), "First")

	rec = h.Do(http.MethodPost, "/dashboard/cms/pages/create", url.Values{"title": {"Second"}})
	require.Equal(t, http.StatusFound, rec.Code)

	rec = h.Do(http.MethodGet, "/dashboard/cms/pages", nil)
	assert.Contains(t, rec.Body.String(), "Second")
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		img.Set(x, 10, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func upload(h *moduletest.Harness, name string, data []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, _ := w.CreateFormFile("media_file", name)
	fw.Write(data)
	w.WriteField("alt_text", "logo")
	w.Close()
	req := httptest.NewRequest(http.MethodPost, "/dashboard/cms/media", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Echo.ServeHTTP(rec, req)
	return rec
}

func TestMedia_UploadAndDelete(t *testing.T) {
	h := newHarness(t, Name)

	rec := upload(h, "Logo.PNG", pngBytes(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	items, err := repoOf(h).AllMedia(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	m := items[0]
	assert.Equal(t, "Logo.PNG", m.OriginalName)
	assert.Equal(t, "image/png", m.MimeType)
	assert.True(t, strings.HasPrefix(m.Path, "/dashboard/uploads/cms/"))
	onDisk := filepath.Join(h.Deps.Media.Root(), MediaDir, m.Filename)
	_, err = os.Stat(onDisk)
	require.NoError(t, err)

	rec = h.Do(http.MethodPost, "/dashboard/cms/media/delete/1", url.Values{})
	assert.Equal(t, http.StatusFound, rec.Code)
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))
	_, err = repoOf(h).MediaByID(context.Background(), 1)
	assert.True(t, cmsRepo.IsNotFound(err))
}

func TestMedia_RejectsNonImage(t *testing.T) {
	h := newHarness(t, Name)
	rec := upload(h, "notes.txt", []byte("just some text"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	items, err := repoOf(h).AllMedia(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDisabled_PublicBlogIs404(t *testing.T) {
	h := newHarness(t)
	_, err := repoOf(h).CreatePost(context.Background(), cmsRepo.PostInput{Title: "Hello", Status: entity.StatusPublished})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, h.Do(http.MethodGet, "/blog/hello", nil).Code)
}
