package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/access-control/internal/api/middleware"
	"github.com/99minutos/access-control/internal/core/domain"
	"github.com/99minutos/access-control/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

// Login authenticates a (username, password, role) triple and returns a bearer token.
// Logging in again with the same username and role returns the same token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sess, err := h.authService.Login(c.Request().Context(), req.Username, req.Password, domain.Role(req.Role))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Message:  "Login successful.",
		Username: sess.Username,
		Role:     sess.Role.String(),
		Token:    sess.Token,
	})
}

// Logout ends the session named by the Authorization header, if any. It always succeeds.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Param        Authorization  header    string  false  "Bearer token"
// @Success      200            {object}  messageResponse
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context(), middleware.BearerToken(c.Request())); err != nil {
		h.log.Error().Err(err).Msg("logout failed")
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out."})
}
