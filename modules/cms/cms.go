package cms

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"bizdash/core/module"
	cmsRepo "bizdash/model/repository/cms"
)

const Name = "cms"

func init() {
	module.RegisterRoutes(Name, module.Routes{
		Dashboard: RegisterDashboardRoutes,
		Public:    RegisterPublicRoutes,
	})
}

type handler struct {
	deps *module.Deps
	repo *cmsRepo.CMSRepository
}

func newHandler(deps *module.Deps) *handler {
	return &handler{deps: deps, repo: cmsRepo.NewCMSRepository(deps.DB, deps.Cache, deps.Logger)}
}

// RegisterDashboardRoutes mounts content management under /dashboard/cms.
func RegisterDashboardRoutes(r *module.Router, deps *module.Deps) {
	h := newHandler(deps)
	r.GET("/cms", h.index)

	r.GET("/cms/pages", h.pages)
	r.GET("/cms/pages/create", h.newPage)
	r.POST("/cms/pages/create", h.createPage)
	r.GET("/cms/pages/edit/:id", h.editPage)
	r.POST("/cms/pages/edit/:id", h.updatePage)
	r.POST("/cms/pages/toggle-status/:id", h.togglePage)
	r.POST("/cms/pages/delete/:id", h.deletePage)

	r.GET("/cms/posts", h.posts)
	r.GET("/cms/posts/create", h.newPost)
	r.POST("/cms/posts/create", h.createPost)
	r.GET("/cms/posts/edit/:id", h.editPost)
	r.POST("/cms/posts/edit/:id", h.updatePost)
	r.POST("/cms/posts/toggle-status/:id", h.togglePost)
	r.POST("/cms/posts/delete/:id", h.deletePost)

	r.GET("/cms/media", h.media)
	r.POST("/cms/media", h.uploadMedia)
	r.POST("/cms/media/delete/:id", h.deleteMedia)
}

func (h *handler) index(c echo.Context) error {
	pages, posts, media, err := h.repo.Counts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "cms/index.html", h.deps.DashboardData(c, "Content", echo.Map{
		"Pages": pages,
		"Posts": posts,
		"Media": media,
	}))
}

func parseID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// wantsJSON is true for fetch/XHR callers of the toggle endpoints.
func wantsJSON(c echo.Context) bool {
	r := c.Request()
	return strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) ||
		r.Header.Get(echo.HeaderXRequestedWith) == "XMLHttpRequest"
}

// toggled answers a status toggle: JSON for XHR callers, a redirect to back otherwise.
func toggled(c echo.Context, kind, status string, err error, back string) error {
	if err != nil {
		code := http.StatusInternalServerError
		msg := "Status could not be changed"
		if cmsRepo.IsNotFound(err) {
			code = http.StatusNotFound
			msg = kind + " not found"
		}
		if wantsJSON(c) {
			return c.JSON(code, echo.Map{"success": false, "message": msg})
		}
		if code == http.StatusNotFound {
			return c.String(code, msg)
		}
		return err
	}
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"status":  status,
			"message": kind + " marked as " + status,
		})
	}
	return c.Redirect(http.StatusFound, back)
}

func splitTags(s string) []string {
	out := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
