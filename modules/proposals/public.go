package proposals

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"bizdash/core/module"
	"bizdash/core/session"
	entity "bizdash/model/entity"
	"bizdash/service/mail"
)

var responseTypes = []string{entity.ResponseAccepted, entity.ResponseRejected, entity.ResponseQuestion}

// RegisterPublicRoutes mounts the customer pages: email verification, then the proposal and
// a one-time response form.
func RegisterPublicRoutes(r *module.Router, deps *module.Deps) {
	h := newHandler(deps)
	r.GET("/proposal/:id", h.show)
	r.POST("/proposal/:id/verify", h.verify)
	r.POST("/proposal/:id/response", h.respond)
}

func verifiedKey(id uint) string {
	return "verified_proposal:" + strconv.FormatUint(uint64(id), 10)
}

// verified reports whether this session proved it knows the customer email of p.
func verified(c echo.Context, p *entity.Proposal) bool {
	return session.Get(c).Get(verifiedKey(p.ID)) == p.CustomerEmail
}

// load resolves :id. A nil proposal with nil error means the caller already answered.
func (h *handler) load(c echo.Context) (*entity.Proposal, error) {
	id, ok := parseID(c)
	if !ok {
		return nil, h.deps.NotFound(c)
	}
	p, err := h.repo.FindByID(c.Request().Context(), id)
	if isNotFound(err) {
		return nil, h.deps.NotFound(c)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (h *handler) show(c echo.Context) error {
	p, err := h.load(c)
	if p == nil {
		return err
	}
	if !p.IsActive {
		return h.renderInactive(c)
	}
	if !verified(c, p) {
		return h.renderVerify(c, http.StatusOK, p, "")
	}
	responses, err := h.repo.Responses(c.Request().Context(), p.ID)
	if err != nil {
		return err
	}
	return h.renderProposal(c, http.StatusOK, p, latest(responses), "")
}

func (h *handler) verify(c echo.Context) error {
	p, err := h.load(c)
	if p == nil {
		return err
	}
	if !p.IsActive {
		return h.renderInactive(c)
	}
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	if email == "" || email != strings.ToLower(strings.TrimSpace(p.CustomerEmail)) {
		return h.renderVerify(c, http.StatusOK, p, "The email address does not match. Please enter the address this proposal was sent to.")
	}
	session.Get(c).Set(verifiedKey(p.ID), p.CustomerEmail)
	if err := h.deps.Sessions.Save(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, fmt.Sprintf("/proposal/%d", p.ID))
}

func (h *handler) respond(c echo.Context) error {
	p, err := h.load(c)
	if p == nil {
		return err
	}
	if !p.IsActive {
		return h.deps.NotFound(c)
	}
	if !verified(c, p) {
		return c.Redirect(http.StatusFound, fmt.Sprintf("/proposal/%d", p.ID))
	}
	ctx := c.Request().Context()
	responses, err := h.repo.Responses(ctx, p.ID)
	if err != nil {
		return err
	}
	if prev := latest(responses); prev != nil {
		return h.renderProposal(c, http.StatusConflict, p, prev, "A response has already been sent for this proposal.")
	}
	kind := c.FormValue("response_type")
	if !validResponse(kind) {
		return h.renderProposal(c, http.StatusUnprocessableEntity, p, nil, "Please choose one of the options.")
	}
	resp, err := h.repo.AddResponse(ctx, p.ID, kind, strings.TrimSpace(c.FormValue("message")))
	if err != nil {
		return err
	}
	h.deps.Logger.Info("proposal response received", "id", p.ID, "type", kind)
	h.notifyOwner(ctx, p, resp)
	return h.renderProposal(c, http.StatusOK, p, resp, "")
}

// notifyOwner mails the company contact address, if one is configured.
func (h *handler) notifyOwner(ctx context.Context, p *entity.Proposal, resp *entity.ProposalResponse) {
	if h.deps.Mailer == nil {
		return
	}
	to, err := h.deps.Settings.GetString(ctx, "general", "contact_email", "")
	if err != nil || to == "" {
		return
	}
	msg := mail.Message{
		Subject: fmt.Sprintf("Proposal #%d %s by %s", p.ID, resp.ResponseType, p.CustomerName),
		Text: fmt.Sprintf("%s responded to \"%s\" with %s.\n\n%s\n\n%s/dashboard/proposal/%d\n",
			p.CustomerName, p.Title, resp.ResponseType, resp.Message, strings.TrimRight(h.deps.Config.BaseURL, "/"), p.ID),
	}
	msg.To.Address = to
	if err := h.deps.Mailer.Send(ctx, msg); err != nil {
		h.deps.Logger.Warn("proposal response mail failed", "id", p.ID, "error", err)
	}
}

func (h *handler) renderInactive(c echo.Context) error {
	return h.deps.RenderPublic(c, http.StatusOK, "proposal-inactive.html", h.deps.PublicData(c, "Proposal unavailable", nil))
}

func (h *handler) renderVerify(c echo.Context, code int, p *entity.Proposal, msg string) error {
	return h.deps.RenderPublic(c, code, "proposal-verify.html", h.deps.PublicData(c, "View proposal", echo.Map{
		"ID":      p.ID,
		"Message": msg,
	}))
}

func (h *handler) renderProposal(c echo.Context, code int, p *entity.Proposal, resp *entity.ProposalResponse, msg string) error {
	return h.deps.RenderPublic(c, code, "proposal.html", h.deps.PublicData(c, p.Title, echo.Map{
		"Proposal": p,
		"Response": resp,
		"Message":  msg,
	}))
}

// latest picks the newest response; Responses returns them newest first.
func latest(rs []entity.ProposalResponse) *entity.ProposalResponse {
	if len(rs) == 0 {
		return nil
	}
	return &rs[0]
}

func validResponse(kind string) bool {
	for _, t := range responseTypes {
		if t == kind {
			return true
		}
	}
	return false
}
