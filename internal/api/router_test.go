package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/dombarter/solar-api/internal/core/domain"
	"github.com/dombarter/solar-api/internal/core/service"
	"github.com/dombarter/solar-api/internal/infrastructure/config"
)

// memoryUserRepo is an in-memory stand-in for the Postgres repository so the
// whole HTTP stack can be exercised without a database.
type memoryUserRepo struct {
	users map[string]*domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*domain.User)}
}

func (r *memoryUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	key := strings.ToLower(user.Username)
	if _, exists := r.users[key]; exists {
		return nil, domain.ErrUserExists
	}
	clone := *user
	r.users[key] = &clone
	returned := clone
	returned.Roles = append([]string(nil), clone.Roles...)
	return &returned, nil
}

func (r *memoryUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	u, exists := r.users[strings.ToLower(username)]
	if !exists {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	clone.Roles = append([]string(nil), u.Roles...)
	return &clone, nil
}

func (r *memoryUserRepo) AddToRole(_ context.Context, userID, role string) error {
	for _, u := range r.users {
		if u.ID == userID {
			u.Roles = append(u.Roles, role)
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (r *memoryUserRepo) EnsureRoles(_ context.Context, _ []string) error {
	return nil
}

func (r *memoryUserRepo) seed(t *testing.T, email, password string, roles ...string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	now := time.Now().UTC()
	r.users[strings.ToLower(email)] = &domain.User{
		ID:            uuid.NewString(),
		Username:      strings.ToLower(email),
		Email:         strings.ToLower(email),
		PasswordHash:  string(hash),
		SecurityStamp: uuid.NewString(),
		Roles:         roles,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Port: "8080",
		Env:  "test",
		JWT: config.JWTConfig{
			Key:        "test-secret",
			Issuer:     "solar-api",
			Audience:   "solar-clients",
			CookieName: "solar_token",
			TTL:        30 * time.Minute,
		},
		CORS: config.CORSConfig{Origin: "http://localhost:8080"},
		Password: config.PasswordConfig{
			MinLength:              8,
			RequireDigit:           true,
			RequireLowercase:       true,
			RequireUppercase:       true,
			RequireNonAlphanumeric: true,
		},
	}
}

func newTestRouter(repo *memoryUserRepo) *setup {
	deps := Deps{
		Config: testConfig(),
		Users:  repo,
		Log:    zerolog.Nop(),
	}
	return &setup{e: NewRouter(deps)}
}

type setup struct {
	e *echo.Echo
}

func (s *setup) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *setup) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	rec := s.do(http.MethodPost, "/user/login", `{"email":"`+email+`","password":"`+password+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "solar_token" {
			return c
		}
	}
	t.Fatalf("login did not set the credential cookie")
	return nil
}

func TestRouter_RegisterThenDuplicate(t *testing.T) {
	s := newTestRouter(newMemoryUserRepo())

	first := s.do(http.MethodPost, "/user/register", `{"email":"dom@email.com","password":"PA55word#"}`)
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", first.Code, first.Body.String())
	}

	second := s.do(http.MethodPost, "/user/register", `{"email":"dom@email.com","password":"PA55word#"}`)
	if second.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", second.Code)
	}
	if !strings.Contains(second.Body.String(), "DuplicateUserName") {
		t.Fatalf("expected DuplicateUserName code, got %s", second.Body.String())
	}
}

func TestRouter_RegisterWeakPassword(t *testing.T) {
	s := newTestRouter(newMemoryUserRepo())

	rec := s.do(http.MethodPost, "/user/register", `{"email":"user@email.com","password":"password"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp struct {
		Errors []domain.RuleViolation `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	codes := make(map[string]bool)
	for _, v := range resp.Errors {
		codes[v.Code] = true
	}
	if !codes["PasswordRequiresDigit"] || !codes["PasswordRequiresNonAlphanumeric"] {
		t.Fatalf("expected digit and non-alphanumeric violations, got %v", resp.Errors)
	}
}

func TestRouter_LoginReturnsRolesAndCookie(t *testing.T) {
	s := newTestRouter(newMemoryUserRepo())

	if rec := s.do(http.MethodPost, "/user/register", `{"email":"dom@email.com","password":"PA55word#"}`); rec.Code != http.StatusOK {
		t.Fatalf("register failed: %d", rec.Code)
	}

	rec := s.do(http.MethodPost, "/user/login", `{"email":"dom@email.com","password":"PA55word#"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Email string   `json:"email"`
		Roles []string `json:"roles"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Email != "dom@email.com" {
		t.Fatalf("unexpected email: %s", resp.Email)
	}
	if len(resp.Roles) != 1 || resp.Roles[0] != domain.RoleUser {
		t.Fatalf("expected roles [User], got %v", resp.Roles)
	}
}

func TestRouter_LoginFailuresIndistinguishable(t *testing.T) {
	s := newTestRouter(newMemoryUserRepo())

	if rec := s.do(http.MethodPost, "/user/register", `{"email":"dom@email.com","password":"PA55word#"}`); rec.Code != http.StatusOK {
		t.Fatalf("register failed: %d", rec.Code)
	}

	wrongPassword := s.do(http.MethodPost, "/user/login", `{"email":"dom@email.com","password":"WRONGpass1#"}`)
	noSuchUser := s.do(http.MethodPost, "/user/login", `{"email":"ghost@email.com","password":"PA55word#"}`)

	if wrongPassword.Code != http.StatusBadRequest || noSuchUser.Code != http.StatusBadRequest {
		t.Fatalf("expected 400/400, got %d/%d", wrongPassword.Code, noSuchUser.Code)
	}
	if wrongPassword.Body.String() != noSuchUser.Body.String() {
		t.Fatalf("failure responses must be identical: %q vs %q",
			wrongPassword.Body.String(), noSuchUser.Body.String())
	}
}

func TestRouter_MoonsRequireAuthentication(t *testing.T) {
	s := newTestRouter(newMemoryUserRepo())

	for _, path := range []string{"/moons/one", "/moons/two", "/moons/user"} {
		rec := s.do(http.MethodGet, path, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestRouter_MoonsRoleGates(t *testing.T) {
	repo := newMemoryUserRepo()
	repo.seed(t, "user@email.com", "PA55word#", domain.RoleUser)
	repo.seed(t, "admin@email.com", "PA55word#", domain.RoleAdmin)
	s := newTestRouter(repo)

	userCookie := s.login(t, "user@email.com", "PA55word#")
	adminCookie := s.login(t, "admin@email.com", "PA55word#")

	// User role: /moons/one allowed, /moons/two forbidden.
	if rec := s.do(http.MethodGet, "/moons/one", "", userCookie); rec.Code != http.StatusOK {
		t.Fatalf("user on /moons/one: expected 200, got %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/moons/two", "", userCookie); rec.Code != http.StatusForbidden {
		t.Fatalf("user on /moons/two: expected 403, got %d", rec.Code)
	}

	// Admin role: /moons/two allowed, /moons/one forbidden (no inheritance).
	if rec := s.do(http.MethodGet, "/moons/two", "", adminCookie); rec.Code != http.StatusOK {
		t.Fatalf("admin on /moons/two: expected 200, got %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/moons/one", "", adminCookie); rec.Code != http.StatusForbidden {
		t.Fatalf("admin on /moons/one: expected 403, got %d", rec.Code)
	}

	// Either role reaches /moons/user.
	for _, cookie := range []*http.Cookie{userCookie, adminCookie} {
		if rec := s.do(http.MethodGet, "/moons/user", "", cookie); rec.Code != http.StatusOK {
			t.Fatalf("/moons/user: expected 200, got %d", rec.Code)
		}
	}
}

func TestRouter_MoonsUserReturnsIdentity(t *testing.T) {
	repo := newMemoryUserRepo()
	repo.seed(t, "dom@email.com", "PA55word#", domain.RoleUser)
	s := newTestRouter(repo)

	cookie := s.login(t, "dom@email.com", "PA55word#")
	rec := s.do(http.MethodGet, "/moons/user", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["username"] != "dom@email.com" {
		t.Fatalf("unexpected identity payload: %+v", resp)
	}
}

func TestRouter_ExpiredTokenRejected(t *testing.T) {
	repo := newMemoryUserRepo()
	repo.seed(t, "dom@email.com", "PA55word#", domain.RoleUser)
	s := newTestRouter(repo)

	// Sign with the router's key but an expiry in the past.
	tokens := service.NewTokenService("test-secret", "solar-api", "solar-clients")
	expired, err := tokens.Issue(&domain.User{
		Username: "dom@email.com",
		Roles:    []string{domain.RoleUser},
	}, -time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/moons/one", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", rec.Code)
	}
}

func TestRouter_LogoutClearsCookie(t *testing.T) {
	s := newTestRouter(newMemoryUserRepo())

	rec := s.do(http.MethodPost, "/user/logout", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "solar_token" && c.Value == "" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("expected the credential cookie to be cleared")
	}
}

func TestRouter_Liveness(t *testing.T) {
	s := newTestRouter(newMemoryUserRepo())

	rec := s.do(http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
