package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/contactdesk/leadgate/internal/core/domain"
)

func testRules() []Rule {
	return []Rule{
		{Pattern: "/auth/**", Policy: Public()},
		{Method: http.MethodPost, Pattern: "/api/contact", Policy: Public()},
		{Pattern: "/api/admin/**", Policy: Role(domain.RoleAdmin)},
		{Pattern: "/public", Policy: Public()},
		{Pattern: "/private", Policy: Authenticated()},
		{Pattern: "/admin", Policy: Role(domain.RoleAdmin)},
		{Method: http.MethodGet, Pattern: "/docs/:page", Policy: Public()},
		{Pattern: "/docs/internal", Policy: Role(domain.RoleAdmin)},
		{Pattern: "/dup", Policy: Public()},
		{Pattern: "/dup", Policy: Role(domain.RoleAdmin)},
	}
}

func newTestGuard(t *testing.T) *Guard {
	t.Helper()
	g, err := NewGuard(testRules(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}
	return g
}

func TestGuard_Resolve(t *testing.T) {
	g := newTestGuard(t)

	cases := []struct {
		method, path, want string
	}{
		{http.MethodPost, "/auth/login", "PUBLIC"},
		{http.MethodPost, "/auth", "PUBLIC"},
		{http.MethodPost, "/api/contact", "PUBLIC"},
		{http.MethodGet, "/api/contact", "AUTHENTICATED"},
		{http.MethodGet, "/api/admin/leads/42", "ROLE(ADMIN)"},
		{http.MethodGet, "/private/", "AUTHENTICATED"},
		{http.MethodGet, "/unmapped", "AUTHENTICATED"},
		// exact beats parameterised, even when the parameterised rule is method-bound
		{http.MethodGet, "/docs/internal", "ROLE(ADMIN)"},
		{http.MethodGet, "/docs/intro", "PUBLIC"},
		{http.MethodPost, "/docs/intro", "AUTHENTICATED"},
		// first declared wins on a tie
		{http.MethodGet, "/dup", "PUBLIC"},
	}
	for _, tc := range cases {
		if got := g.Resolve(tc.method, tc.path).String(); got != tc.want {
			t.Errorf("%s %s: got %s, want %s", tc.method, tc.path, got, tc.want)
		}
	}
}

func TestGuard_MoreLiteralSegmentsWin(t *testing.T) {
	g, err := NewGuard([]Rule{
		{Pattern: "/**", Policy: Public()},
		{Pattern: "/api/**", Policy: Authenticated()},
		{Pattern: "/api/admin/**", Policy: Role(domain.RoleAdmin)},
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}

	if got := g.Resolve(http.MethodGet, "/anything").String(); got != "PUBLIC" {
		t.Errorf("/anything: got %s", got)
	}
	if got := g.Resolve(http.MethodGet, "/api/x").String(); got != "AUTHENTICATED" {
		t.Errorf("/api/x: got %s", got)
	}
	if got := g.Resolve(http.MethodGet, "/api/admin/leads").String(); got != "ROLE(ADMIN)" {
		t.Errorf("/api/admin/leads: got %s", got)
	}
}

func TestNewGuard_RejectsMalformedPatterns(t *testing.T) {
	for _, p := range []string{"api", "/api/**/leads", "/api/*.json"} {
		if _, err := NewGuard([]Rule{{Pattern: p, Policy: Public()}}, zerolog.Nop()); err == nil {
			t.Errorf("expected error for %q", p)
		}
	}
}

func TestPolicy_Check(t *testing.T) {
	admin := domain.Principal{Username: "root", Role: domain.RoleAdmin}
	user := domain.Principal{Username: "bob", Role: domain.RoleUser}

	cases := []struct {
		name   string
		policy Policy
		p      domain.Principal
		ok     bool
		want   error
	}{
		{"public anonymous", Public(), domain.Principal{}, false, nil},
		{"authenticated anonymous", Authenticated(), domain.Principal{}, false, domain.ErrUnauthorized},
		{"authenticated user", Authenticated(), user, true, nil},
		{"role anonymous", Role(domain.RoleAdmin), domain.Principal{}, false, domain.ErrUnauthorized},
		{"role wrong", Role(domain.RoleAdmin), user, true, domain.ErrForbidden},
		{"role match", Role(domain.RoleAdmin), admin, true, nil},
		{"no hierarchy", Role(domain.RoleUser), admin, true, domain.ErrForbidden},
	}
	for _, tc := range cases {
		if err := tc.policy.Check(tc.p, tc.ok); !errors.Is(err, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestGuard_Middleware(t *testing.T) {
	g := newTestGuard(t)
	e := echo.New()

	serve := func(path string, p *domain.Principal) error {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if p != nil {
			req = req.WithContext(domain.WithPrincipal(req.Context(), *p))
		}
		c := e.NewContext(req, httptest.NewRecorder())
		return g.Middleware()(func(c echo.Context) error { return nil })(c)
	}

	user := &domain.Principal{Username: "bob", Role: domain.RoleUser}
	admin := &domain.Principal{Username: "root", Role: domain.RoleAdmin}

	if err := serve("/public", nil); err != nil {
		t.Errorf("anonymous /public: %v", err)
	}
	if err := serve("/private", nil); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("anonymous /private: %v", err)
	}
	if err := serve("/admin", user); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("user /admin: %v", err)
	}
	if err := serve("/admin", admin); err != nil {
		t.Errorf("admin /admin: %v", err)
	}
}
