package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dombarter/solar-api/internal/api/metrics"
	"github.com/dombarter/solar-api/internal/core/domain"
	"github.com/dombarter/solar-api/internal/core/ports"
)

// CookieConfig controls how the credential cookie is written at login.
type CookieConfig struct {
	Name string
	TTL  time.Duration
}

type AccountHandler struct {
	accounts ports.AccountService
	cookie   CookieConfig
}

func NewAccountHandler(accounts ports.AccountService, cookie CookieConfig) *AccountHandler {
	return &AccountHandler{accounts: accounts, cookie: cookie}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

type loginResponse struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// Register creates a new account and grants it the default User role.
// Success returns 200 with no body; policy violations and duplicates
// return 400 with an enumerated errors payload.
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if _, err := h.accounts.Register(c.Request().Context(), req.Email, req.Password); err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registerResult(err)).Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	return c.NoContent(http.StatusOK)
}

// Login verifies credentials and hands the minted credential back as an
// HTTP-only cookie. The body repeats the email and role list only; the
// token itself travels exclusively in the cookie.
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, user, err := h.accounts.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.Inc()

	cookie := &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
	// rememberMe upgrades the session cookie to a persistent one; the
	// token lifetime is unchanged either way.
	if req.RememberMe {
		cookie.MaxAge = int(h.cookie.TTL.Seconds())
	}
	c.SetCookie(cookie)

	return c.JSON(http.StatusOK, loginResponse{Email: user.Email, Roles: user.Roles})
}

// Logout clears the credential cookie. Previously issued tokens stay valid
// until natural expiry; there is no server-side revocation.
func (h *AccountHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
	return c.NoContent(http.StatusOK)
}

func registerResult(err error) string {
	var policyErr *domain.PasswordPolicyError
	switch {
	case errors.As(err, &policyErr):
		return "policy_violation"
	case errors.Is(err, domain.ErrUserExists):
		return "duplicate"
	default:
		return "error"
	}
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "locked_out"
	default:
		return "error"
	}
}
