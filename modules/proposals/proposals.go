package proposals

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"bizdash/core/module"
	proposalRepo "bizdash/model/repository/proposal"
)

const Name = "proposals"

func init() {
	module.RegisterRoutes(Name, module.Routes{
		Dashboard: RegisterDashboardRoutes,
		Public:    RegisterPublicRoutes,
	})
}

type handler struct {
	deps *module.Deps
	repo *proposalRepo.ProposalRepository
}

func newHandler(deps *module.Deps) *handler {
	return &handler{deps: deps, repo: proposalRepo.NewProposalRepository(deps.DB)}
}

// proposalForm is the create/edit form. Price is kept as text so the form can be re-rendered as typed.
type proposalForm struct {
	Title         string `form:"title" validate:"notblank"`
	Description   string `form:"description"`
	Price         string `form:"price" validate:"omitempty,numeric"`
	Duration      string `form:"duration"`
	CustomerName  string `form:"customer_name" validate:"notblank"`
	CustomerEmail string `form:"customer_email" validate:"required,email"`
	CustomerPhone string `form:"customer_phone"`
}

func (f proposalForm) input() proposalRepo.Input {
	in := proposalRepo.Input{
		Title:         strings.TrimSpace(f.Title),
		Description:   f.Description,
		Duration:      f.Duration,
		CustomerName:  strings.TrimSpace(f.CustomerName),
		CustomerEmail: strings.TrimSpace(f.CustomerEmail),
		CustomerPhone: f.CustomerPhone,
	}
	if p, err := strconv.ParseFloat(strings.TrimSpace(f.Price), 64); err == nil {
		in.Price = &p
	}
	return in
}

func formFrom(p proposalRepo.Input) proposalForm {
	f := proposalForm{
		Title:         p.Title,
		Description:   p.Description,
		Duration:      p.Duration,
		CustomerName:  p.CustomerName,
		CustomerEmail: p.CustomerEmail,
		CustomerPhone: p.CustomerPhone,
	}
	if p.Price != nil {
		f.Price = strconv.FormatFloat(*p.Price, 'f', -1, 64)
	}
	return f
}

func parseID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// PublicURL is the customer-facing link of a proposal.
func PublicURL(baseURL string, id uint) string {
	return fmt.Sprintf("%s/proposal/%d", strings.TrimRight(baseURL, "/"), id)
}

func notFoundText(c echo.Context) error {
	return c.String(http.StatusNotFound, "Proposal not found")
}
