package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dombarter/solar-api/internal/core/domain"
	"github.com/dombarter/solar-api/internal/core/ports"
)

// MoonHandler serves the role-gated demonstration endpoints.
type MoonHandler struct {
	accounts ports.AccountService
}

func NewMoonHandler(accounts ports.AccountService) *MoonHandler {
	return &MoonHandler{accounts: accounts}
}

// One returns a single random moon name. Requires the User role.
func (h *MoonHandler) One(c echo.Context) error {
	if _, _, err := ctxIdentity(c); err != nil {
		return err
	}
	return c.String(http.StatusOK, domain.RandomMoon())
}

// Two returns a pair of random moon names. Requires the Admin role.
func (h *MoonHandler) Two(c echo.Context) error {
	if _, _, err := ctxIdentity(c); err != nil {
		return err
	}
	return c.String(http.StatusOK, domain.RandomMoonPair())
}

// User returns the stored identity behind the caller's subject claim.
// This is the one protected route that re-queries the credential store.
func (h *MoonHandler) User(c echo.Context) error {
	username, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.accounts.CurrentUser(c.Request().Context(), username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
