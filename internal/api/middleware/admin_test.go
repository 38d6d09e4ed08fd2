package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/access-control/internal/core/domain"
)

type stubAuth struct {
	sessions map[string]domain.Session
	got      string
}

func (s *stubAuth) Login(context.Context, string, string, domain.Role) (domain.Session, error) {
	return domain.Session{}, errors.New("not implemented")
}

func (s *stubAuth) Logout(context.Context, string) error { return nil }

func (s *stubAuth) AuthorizeAdmin(_ context.Context, token string) (domain.Session, error) {
	s.got = token
	if token == "" {
		return domain.Session{}, domain.Unauthorized(domain.CauseMissingToken)
	}
	sess, ok := s.sessions[token]
	if !ok {
		return domain.Session{}, domain.Unauthorized(domain.CauseUnknownToken)
	}
	if sess.Role != domain.RoleAdmin {
		return domain.Session{}, domain.Unauthorized(domain.CauseInsufficientRole)
	}
	return sess, nil
}

func newAdminStub() *stubAuth {
	return &stubAuth{sessions: map[string]domain.Session{
		"admin-token": {Token: "admin-token", Username: "admin1", Role: domain.RoleAdmin},
		"op-token":    {Token: "op-token", Username: "operator1", Role: domain.RoleOperator},
	}}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"":               "",
		"abc":            "abc",
		"Bearer abc":     "abc",
		"bearer   abc  ": "abc",
		"  abc  ":        "abc",
		"Bearer":         "Bearer",
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set(echo.HeaderAuthorization, header)
		}
		if got := BearerToken(req); got != want {
			t.Fatalf("BearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestAdminOnly_Allows(t *testing.T) {
	e := echo.New()
	auth := newAdminStub()
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set(echo.HeaderAuthorization, "admin-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := AdminOnly(auth)(func(c echo.Context) error {
		called = true
		sess, ok := c.Get(SessionKey).(domain.Session)
		if !ok || sess.Username != "admin1" {
			t.Fatalf("expected admin session in context, got %+v", c.Get(SessionKey))
		}
		return c.NoContent(http.StatusOK)
	})

	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("next handler was not called")
	}
	if auth.got != "admin-token" {
		t.Fatalf("expected token passed through, got %q", auth.got)
	}
}

func TestAdminOnly_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		header string
		cause  domain.UnauthorizedCause
	}{
		{"no header", "", domain.CauseMissingToken},
		{"unknown token", "forged", domain.CauseUnknownToken},
		{"operator session", "op-token", domain.CauseInsufficientRole},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			if tc.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			c := e.NewContext(req, httptest.NewRecorder())

			h := AdminOnly(newAdminStub())(func(echo.Context) error {
				t.Fatal("next handler must not run")
				return nil
			})

			err := h(c)
			var ue *domain.UnauthorizedError
			if !errors.As(err, &ue) || ue.Cause != tc.cause {
				t.Fatalf("expected cause %v, got %v", tc.cause, err)
			}
		})
	}
}
