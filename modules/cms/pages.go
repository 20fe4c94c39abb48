package cms

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	entity "bizdash/model/entity"
	cmsRepo "bizdash/model/repository/cms"
)

type pageForm struct {
	Title           string `form:"title" validate:"notblank,max=255"`
	Slug            string `form:"slug" validate:"max=255"`
	Content         string `form:"content"`
	MetaTitle       string `form:"meta_title" validate:"max=255"`
	MetaDescription string `form:"meta_description"`
	Status          string `form:"status" validate:"omitempty,oneof=draft published"`
}

func (f pageForm) input() cmsRepo.PageInput {
	return cmsRepo.PageInput{
		Title:           f.Title,
		Slug:            f.Slug,
		Content:         f.Content,
		MetaTitle:       f.MetaTitle,
		MetaDescription: f.MetaDescription,
		Status:          f.Status,
	}
}

func pageFormOf(p *entity.Page) pageForm {
	return pageForm{
		Title:           p.Title,
		Slug:            p.Slug,
		Content:         p.Content,
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
		Status:          p.Status,
	}
}

func (h *handler) pages(c echo.Context) error {
	items, err := h.repo.AllPages(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "cms/pages.html", h.deps.DashboardData(c, "Pages", echo.Map{"Items": items}))
}

func (h *handler) renderPageForm(c echo.Context, code int, title, action string, form pageForm, msg string) error {
	return c.Render(code, "cms/page-form.html", h.deps.DashboardData(c, title, echo.Map{
		"Action":  action,
		"Form":    form,
		"Message": msg,
	}))
}

func (h *handler) newPage(c echo.Context) error {
	return h.renderPageForm(c, http.StatusOK, "New page", "/dashboard/cms/pages/create", pageForm{Status: entity.StatusDraft}, "")
}

func (h *handler) createPage(c echo.Context) error {
	const action = "/dashboard/cms/pages/create"
	var form pageForm
	if err := c.Bind(&form); err != nil {
		return h.renderPageForm(c, http.StatusBadRequest, "New page", action, form, "Invalid form data")
	}
	if err := c.Validate(&form); err != nil {
		return h.renderPageForm(c, http.StatusUnprocessableEntity, "New page", action, form, h.deps.Validator.Message(err))
	}
	p, err := h.repo.CreatePage(c.Request().Context(), form.input())
	if err != nil {
		h.deps.Logger.Error("page create failed", "error", err)
		return h.renderPageForm(c, http.StatusInternalServerError, "New page", action, form, "The page could not be saved")
	}
	h.deps.Logger.Info("page created", "id", p.ID, "slug", p.Slug)
	return c.Redirect(http.StatusFound, "/dashboard/cms/pages")
}

func (h *handler) editPage(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return echo.ErrNotFound
	}
	p, err := h.repo.PageByID(c.Request().Context(), id)
	if cmsRepo.IsNotFound(err) {
		return c.String(http.StatusNotFound, "Page not found")
	}
	if err != nil {
		return err
	}
	return h.renderPageForm(c, http.StatusOK, "Edit page", pageAction(id), pageFormOf(p), "")
}

func (h *handler) updatePage(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return echo.ErrNotFound
	}
	var form pageForm
	if err := c.Bind(&form); err != nil {
		return h.renderPageForm(c, http.StatusBadRequest, "Edit page", pageAction(id), form, "Invalid form data")
	}
	if err := c.Validate(&form); err != nil {
		return h.renderPageForm(c, http.StatusUnprocessableEntity, "Edit page", pageAction(id), form, h.deps.Validator.Message(err))
	}
	_, err := h.repo.UpdatePage(c.Request().Context(), id, form.input())
	if cmsRepo.IsNotFound(err) {
		return c.String(http.StatusNotFound, "Page not found")
	}
	if err != nil {
		h.deps.Logger.Error("page update failed", "id", id, "error", err)
		return h.renderPageForm(c, http.StatusInternalServerError, "Edit page", pageAction(id), form, "The page could not be saved")
	}
	return c.Redirect(http.StatusFound, "/dashboard/cms/pages")
}

func (h *handler) togglePage(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return echo.ErrNotFound
	}
	status, err := h.repo.TogglePageStatus(c.Request().Context(), id)
	return toggled(c, "Page", status, err, "/dashboard/cms/pages")
}

func (h *handler) deletePage(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return echo.ErrNotFound
	}
	if err := h.repo.DeletePage(c.Request().Context(), id); err != nil && !cmsRepo.IsNotFound(err) {
		return err
	}
	return c.Redirect(http.StatusFound, "/dashboard/cms/pages")
}

func pageAction(id uint) string {
	return fmt.Sprintf("/dashboard/cms/pages/edit/%d", id)
}
