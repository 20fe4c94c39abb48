package cms

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"bizdash/core/module"
	cmsRepo "bizdash/model/repository/cms"
)

// RegisterPublicRoutes mounts the blog and static pages.
func RegisterPublicRoutes(r *module.Router, deps *module.Deps) {
	h := newHandler(deps)
	r.GET("/blog", h.blog)
	r.GET("/blog/:slug", h.post)
	r.GET("/page/:slug", h.page)
}

func (h *handler) blog(c echo.Context) error {
	posts, err := h.repo.PublishedPosts(c.Request().Context(), 0)
	if err != nil {
		return err
	}
	return h.deps.RenderPublic(c, http.StatusOK, "blog.html", h.deps.PublicData(c, "Blog", echo.Map{"Posts": posts}))
}

func (h *handler) post(c echo.Context) error {
	p, err := h.repo.PublishedPostBySlug(c.Request().Context(), c.Param("slug"))
	if cmsRepo.IsNotFound(err) {
		return h.deps.NotFound(c)
	}
	if err != nil {
		return err
	}
	title := p.MetaTitle
	if title == "" {
		title = p.Title
	}
	return h.deps.RenderPublic(c, http.StatusOK, "post.html", h.deps.PublicData(c, title, echo.Map{
		"Post":            p,
		"MetaDescription": firstNonEmpty(p.MetaDescription, p.Excerpt),
	}))
}

func (h *handler) page(c echo.Context) error {
	p, err := h.repo.PublishedPageBySlug(c.Request().Context(), c.Param("slug"))
	if cmsRepo.IsNotFound(err) {
		return h.deps.NotFound(c)
	}
	if err != nil {
		return err
	}
	title := p.MetaTitle
	if title == "" {
		title = p.Title
	}
	return h.deps.RenderPublic(c, http.StatusOK, "page.html", h.deps.PublicData(c, title, echo.Map{
		"Page":            p,
		"MetaDescription": p.MetaDescription,
	}))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
