package cms

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	entity "bizdash/model/entity"
	cmsRepo "bizdash/model/repository/cms"
	"bizdash/service/media"
)

// MediaDir is the uploads subdirectory holding library files.
const MediaDir = "cms"

func (h *handler) renderMedia(c echo.Context, code int, msg string, success bool) error {
	items, err := h.repo.AllMedia(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(code, "cms/media.html", h.deps.DashboardData(c, "Media", echo.Map{
		"Items":   items,
		"Message": msg,
		"Success": success,
	}))
}

func (h *handler) media(c echo.Context) error {
	return h.renderMedia(c, http.StatusOK, "", false)
}

func (h *handler) uploadMedia(c echo.Context) error {
	fh, err := c.FormFile("media_file")
	if err != nil {
		return h.renderMedia(c, http.StatusBadRequest, "Please choose a file to upload", false)
	}
	st, err := h.deps.Media.SaveImage(fh, MediaDir, "", true)
	switch {
	case errors.Is(err, media.ErrNotImage):
		return h.renderMedia(c, http.StatusUnprocessableEntity, "Only image files can be uploaded", false)
	case errors.Is(err, media.ErrTooLarge):
		return h.renderMedia(c, http.StatusRequestEntityTooLarge, "The file is too large", false)
	case err != nil:
		return err
	}
	m := &entity.Media{
		Filename:     st.Filename,
		OriginalName: st.OriginalName,
		MimeType:     st.MimeType,
		Size:         st.Size,
		Path:         st.Path,
		ThumbPath:    st.ThumbPath,
		AltText:      strings.TrimSpace(c.FormValue("alt_text")),
	}
	if err := h.repo.CreateMedia(c.Request().Context(), m); err != nil {
		h.deps.Media.Remove(st.Path, st.ThumbPath, st.WebPPath)
		return err
	}
	h.deps.Logger.Info("media uploaded", "id", m.ID, "file", m.Filename, "size", m.Size)
	return h.renderMedia(c, http.StatusOK, "File uploaded", true)
}

func (h *handler) deleteMedia(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return echo.ErrNotFound
	}
	ctx := c.Request().Context()
	m, err := h.repo.MediaByID(ctx, id)
	if cmsRepo.IsNotFound(err) {
		return c.Redirect(http.StatusFound, "/dashboard/cms/media")
	}
	if err != nil {
		return err
	}
	if err := h.repo.DeleteMedia(ctx, id); err != nil {
		return err
	}
	h.deps.Media.Remove(m.Path, m.ThumbPath, webpOf(m.Path))
	return c.Redirect(http.StatusFound, "/dashboard/cms/media")
}

func webpOf(u string) string {
	return strings.TrimSuffix(u, path.Ext(u)) + ".webp"
}
