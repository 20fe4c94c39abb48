package cms

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	entity "bizdash/model/entity"
	cmsRepo "bizdash/model/repository/cms"
)

// postForm takes tags as one comma separated field.
type postForm struct {
	Title           string `form:"title" validate:"notblank,max=255"`
	Slug            string `form:"slug" validate:"max=255"`
	Content         string `form:"content"`
	Excerpt         string `form:"excerpt"`
	Tags            string `form:"tags"`
	MetaTitle       string `form:"meta_title" validate:"max=255"`
	MetaDescription string `form:"meta_description"`
	Status          string `form:"status" validate:"omitempty,oneof=draft published"`
}

func (f postForm) input() cmsRepo.PostInput {
	return cmsRepo.PostInput{
		Title:           f.Title,
		Slug:            f.Slug,
		Content:         f.Content,
		Excerpt:         strings.TrimSpace(f.Excerpt),
		MetaTitle:       f.MetaTitle,
		MetaDescription: f.MetaDescription,
		Tags:            splitTags(f.Tags),
		Status:          f.Status,
	}
}

func postFormOf(p *entity.Post) postForm {
	return postForm{
		Title:           p.Title,
		Slug:            p.Slug,
		Content:         p.Content,
		Excerpt:         p.Excerpt,
		Tags:            strings.Join(p.Tags, ", "),
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
		Status:          p.Status,
	}
}

func (h *handler) posts(c echo.Context) error {
	items, err := h.repo.AllPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "cms/posts.html", h.deps.DashboardData(c, "Posts", echo.Map{"Items": items}))
}

func (h *handler) renderPostForm(c echo.Context, code int, title, action string, form postForm, msg string) error {
	return c.Render(code, "cms/post-form.html", h.deps.DashboardData(c, title, echo.Map{
		"Action":  action,
		"Form":    form,
		"Message": msg,
	}))
}

func (h *handler) newPost(c echo.Context) error {
	return h.renderPostForm(c, http.StatusOK, "New post", "/dashboard/cms/posts/create", postForm{Status: entity.StatusDraft}, "")
}

func (h *handler) createPost(c echo.Context) error {
	const action = "/dashboard/cms/posts/create"
	var form postForm
	if err := c.Bind(&form); err != nil {
		return h.renderPostForm(c, http.StatusBadRequest, "New post", action, form, "Invalid form data")
	}
	if err := c.Validate(&form); err != nil {
		return h.renderPostForm(c, http.StatusUnprocessableEntity, "New post", action, form, h.deps.Validator.Message(err))
	}
	p, err := h.repo.CreatePost(c.Request().Context(), form.input())
	if err != nil {
		h.deps.Logger.Error("post create failed", "error", err)
		return h.renderPostForm(c, http.StatusInternalServerError, "New post", action, form, "The post could not be saved")
	}
	h.deps.Logger.Info("post created", "id", p.ID, "slug", p.Slug, "status", p.Status)
	return c.Redirect(http.StatusFound, "/dashboard/cms/posts")
}

func (h *handler) editPost(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return echo.ErrNotFound
	}
	p, err := h.repo.PostByID(c.Request().Context(), id)
	if cmsRepo.IsNotFound(err) {
		return c.String(http.StatusNotFound, "Post not found")
	}
	if err != nil {
		return err
	}
	return h.renderPostForm(c, http.StatusOK, "Edit post", postAction(id), postFormOf(p), "")
}

func (h *handler) updatePost(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return echo.ErrNotFound
	}
	var form postForm
	if err := c.Bind(&form); err != nil {
		return h.renderPostForm(c, http.StatusBadRequest, "Edit post", postAction(id), form, "Invalid form data")
	}
	if err := c.Validate(&form); err != nil {
		return h.renderPostForm(c, http.StatusUnprocessableEntity, "Edit post", postAction(id), form, h.deps.Validator.Message(err))
	}
	_, err := h.repo.UpdatePost(c.Request().Context(), id, form.input())
	if cmsRepo.IsNotFound(err) {
		return c.String(http.StatusNotFound, "Post not found")
	}
	if err != nil {
		h.deps.Logger.Error("post update failed", "id", id, "error", err)
		return h.renderPostForm(c, http.StatusInternalServerError, "Edit post", postAction(id), form, "The post could not be saved")
	}
	return c.Redirect(http.StatusFound, "/dashboard/cms/posts")
}

func (h *handler) togglePost(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return echo.ErrNotFound
	}
	status, err := h.repo.TogglePostStatus(c.Request().Context(), id)
	return toggled(c, "Post", status, err, "/dashboard/cms/posts")
}

func (h *handler) deletePost(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return echo.ErrNotFound
	}
	if err := h.repo.DeletePost(c.Request().Context(), id); err != nil && !cmsRepo.IsNotFound(err) {
		return err
	}
	return c.Redirect(http.StatusFound, "/dashboard/cms/posts")
}

func postAction(id uint) string {
	return fmt.Sprintf("/dashboard/cms/posts/edit/%d", id)
}
