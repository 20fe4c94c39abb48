package proposals

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"bizdash/core/module"
	entity "bizdash/model/entity"
	proposalRepo "bizdash/model/repository/proposal"
	"bizdash/service/mail"
)

// RegisterDashboardRoutes mounts the proposal management pages under /dashboard.
func RegisterDashboardRoutes(r *module.Router, deps *module.Deps) {
	h := newHandler(deps)
	r.GET("/proposals", h.list)
	r.GET("/create-proposal", h.createForm)
	r.POST("/create-proposal", h.create)
	r.GET("/proposal/:id", h.detail)
	r.POST("/toggle-proposal/:id", h.toggle)
	r.POST("/delete-proposal/:id", h.delete)
	r.GET("/edit-proposal/:id", h.editForm)
	r.POST("/edit-proposal/:id", h.update)
}

func (h *handler) list(c echo.Context) error {
	items, err := h.repo.All(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "proposals/list.html", h.deps.DashboardData(c, "Proposals", echo.Map{
		"Proposals": items,
		"Deleted":   c.QueryParam("deleted") == "1",
	}))
}

func (h *handler) renderForm(c echo.Context, code int, title, action string, form proposalForm, msg string, success bool) error {
	return c.Render(code, "proposals/form.html", h.deps.DashboardData(c, title, echo.Map{
		"Action":  action,
		"Form":    form,
		"Message": msg,
		"Success": success,
	}))
}

func (h *handler) createForm(c echo.Context) error {
	return h.renderForm(c, http.StatusOK, "New proposal", "/dashboard/create-proposal", proposalForm{}, "", false)
}

func (h *handler) create(c echo.Context) error {
	var form proposalForm
	if err := c.Bind(&form); err != nil {
		return h.renderForm(c, http.StatusBadRequest, "New proposal", "/dashboard/create-proposal", form, "Invalid form data", false)
	}
	if err := c.Validate(&form); err != nil {
		return h.renderForm(c, http.StatusUnprocessableEntity, "New proposal", "/dashboard/create-proposal", form, h.deps.Validator.Message(err), false)
	}
	ctx := c.Request().Context()
	p, err := h.repo.Create(ctx, form.input())
	if err != nil {
		h.deps.Logger.Error("proposal create failed", "error", err)
		return h.renderForm(c, http.StatusInternalServerError, "New proposal", "/dashboard/create-proposal", form, "The proposal could not be saved", false)
	}
	h.deps.Logger.Info("proposal created", "id", p.ID, "customer", p.CustomerEmail)
	h.notifyCustomer(ctx, p)
	msg := fmt.Sprintf("Proposal created. ID: %d", p.ID)
	return h.renderForm(c, http.StatusOK, "New proposal", "/dashboard/create-proposal", proposalForm{}, msg, true)
}

// notifyCustomer mails the public link. Failures are logged; the proposal is already saved.
func (h *handler) notifyCustomer(ctx context.Context, p *entity.Proposal) {
	if h.deps.Mailer == nil {
		return
	}
	link := PublicURL(h.deps.Config.BaseURL, p.ID)
	msg := mail.Message{
		Subject: "New proposal: " + p.Title,
		Text: fmt.Sprintf("Hello %s,\n\nA new proposal has been prepared for you.\nView it at %s using this email address.\n",
			p.CustomerName, link),
		HTML: fmt.Sprintf(`<p>Hello %s,</p><p>A new proposal has been prepared for you.</p><p><a href="%s">View the proposal</a> using this email address.</p>`,
			p.CustomerName, link),
	}
	msg.To.Name = p.CustomerName
	msg.To.Address = p.CustomerEmail
	if err := h.deps.Mailer.Send(ctx, msg); err != nil {
		h.deps.Logger.Warn("proposal mail failed", "id", p.ID, "error", err)
	}
}

func (h *handler) detail(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return notFoundText(c)
	}
	ctx := c.Request().Context()
	p, err := h.repo.FindByID(ctx, id)
	if isNotFound(err) {
		return notFoundText(c)
	}
	if err != nil {
		return err
	}
	responses, err := h.repo.Responses(ctx, id)
	if err != nil {
		return err
	}
	msg := ""
	if c.QueryParam("updated") == "1" {
		msg = "Proposal updated."
	}
	return c.Render(http.StatusOK, "proposals/detail.html", h.deps.DashboardData(c, p.Title, echo.Map{
		"Proposal":  p,
		"Responses": responses,
		"PublicURL": PublicURL(h.deps.Config.BaseURL, p.ID),
		"Message":   msg,
		"Success":   msg != "",
	}))
}

func (h *handler) toggle(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return notFoundText(c)
	}
	ctx := c.Request().Context()
	p, err := h.repo.FindByID(ctx, id)
	if isNotFound(err) {
		return notFoundText(c)
	}
	if err != nil {
		return err
	}
	if err := h.repo.SetActive(ctx, id, !p.IsActive); err != nil {
		return err
	}
	detail := fmt.Sprintf("/dashboard/proposal/%d", id)
	if strings.Contains(c.Request().Referer(), detail) {
		return c.Redirect(http.StatusFound, detail)
	}
	return c.Redirect(http.StatusFound, "/dashboard/proposals")
}

func (h *handler) delete(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.Redirect(http.StatusFound, "/dashboard/proposals?error=not_found")
	}
	n, err := h.repo.Delete(c.Request().Context(), id)
	if err != nil {
		h.deps.Logger.Error("proposal delete failed", "id", id, "error", err)
		return c.Redirect(http.StatusFound, "/dashboard/proposals?error=delete_failed")
	}
	if n == 0 {
		return c.Redirect(http.StatusFound, "/dashboard/proposals?error=not_found")
	}
	return c.Redirect(http.StatusFound, "/dashboard/proposals?deleted=1")
}

func (h *handler) editForm(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return notFoundText(c)
	}
	p, err := h.repo.FindByID(c.Request().Context(), id)
	if isNotFound(err) {
		return notFoundText(c)
	}
	if err != nil {
		return err
	}
	form := formFrom(inputOf(p))
	return h.renderForm(c, http.StatusOK, "Edit proposal", editAction(id), form, "", false)
}

func (h *handler) update(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return notFoundText(c)
	}
	var form proposalForm
	if err := c.Bind(&form); err != nil {
		return h.renderForm(c, http.StatusBadRequest, "Edit proposal", editAction(id), form, "Invalid form data", false)
	}
	if err := c.Validate(&form); err != nil {
		return h.renderForm(c, http.StatusUnprocessableEntity, "Edit proposal", editAction(id), form, h.deps.Validator.Message(err), false)
	}
	err := h.repo.Update(c.Request().Context(), id, form.input())
	if isNotFound(err) {
		return notFoundText(c)
	}
	if err != nil {
		h.deps.Logger.Error("proposal update failed", "id", id, "error", err)
		return h.renderForm(c, http.StatusInternalServerError, "Edit proposal", editAction(id), form, "The proposal could not be updated", false)
	}
	return c.Redirect(http.StatusFound, fmt.Sprintf("/dashboard/proposal/%d?updated=1", id))
}

func editAction(id uint) string {
	return fmt.Sprintf("/dashboard/edit-proposal/%d", id)
}

func inputOf(p *entity.Proposal) proposalRepo.Input {
	return proposalRepo.Input{
		Title:         p.Title,
		Description:   p.Description,
		Price:         p.Price,
		Duration:      p.Duration,
		CustomerName:  p.CustomerName,
		CustomerEmail: p.CustomerEmail,
		CustomerPhone: p.CustomerPhone,
	}
}
