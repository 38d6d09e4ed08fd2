package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/access-control/internal/core/ports"
	"github.com/99minutos/access-control/internal/core/service"
)

// SessionKey is the echo.Context key holding the authorised domain.Session.
const SessionKey = "session"

// BearerToken returns the opaque token from the Authorization header. The
// header carries the raw token; a "Bearer " scheme prefix is tolerated.
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get(echo.HeaderAuthorization))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return h
}

// AdminOnly rejects requests whose bearer token does not resolve to an admin
// session. The resolved session is stored under SessionKey and its username is
// attached to the request context as the acting user.
func AdminOnly(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			sess, err := auth.AuthorizeAdmin(req.Context(), BearerToken(req))
			if err != nil {
				return err
			}

			c.Set(SessionKey, sess)
			c.SetRequest(req.WithContext(service.WithActor(req.Context(), sess.Username)))
			return next(c)
		}
	}
}
