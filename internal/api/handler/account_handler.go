package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/access-control/internal/core/domain"
	"github.com/99minutos/access-control/internal/core/ports"
)

// AccountHandler serves the admin-only account registry endpoints. Routes
// must be mounted behind middleware.AdminOnly.
type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// List handles GET /users.
//
// @Summary      List accounts
// @Tags         users
// @Produce      json
// @Security     AdminToken
// @Success      200  {array}   accountResponse
// @Failure      403  {object}  errorResponse
// @Router       /users [get]
func (h *AccountHandler) List(c echo.Context) error {
	accounts, err := h.service.ListAccounts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountsResponse(accounts))
}

// Add handles POST /users.
//
// @Summary      Add an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     AdminToken
// @Param        body  body      addAccountRequest  true  "New account"
// @Success      200   {object}  accountsResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /users [post]
func (h *AccountHandler) Add(c echo.Context) error {
	var req addAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	accounts, err := h.service.AddAccount(c.Request().Context(), req.Username, req.Password, domain.Role(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountsResponse{Message: "User added.", Users: toAccountsResponse(accounts)})
}

// Update handles PUT /users/:username.
//
// @Summary      Update an account's password and/or role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     AdminToken
// @Param        username  path      string                true  "Username"
// @Param        body      body      updateAccountRequest  true  "Fields to change"
// @Success      200       {object}  accountUpdatedResponse
// @Failure      400       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /users/{username} [put]
func (h *AccountHandler) Update(c echo.Context) error {
	username, err := usernameParam(c)
	if err != nil {
		return err
	}

	var req updateAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.service.UpdateAccount(c.Request().Context(), username, req.patch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountUpdatedResponse{Message: "User updated.", User: toAccountResponse(account)})
}

// Delete handles DELETE /users/:username.
//
// @Summary      Delete an account
// @Tags         users
// @Produce      json
// @Security     AdminToken
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  accountsResponse
// @Failure      403       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /users/{username} [delete]
func (h *AccountHandler) Delete(c echo.Context) error {
	username, err := usernameParam(c)
	if err != nil {
		return err
	}

	accounts, err := h.service.DeleteAccount(c.Request().Context(), username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountsResponse{Message: "User deleted.", Users: toAccountsResponse(accounts)})
}

// usernameParam returns the :username segment. Echo routes on the decoded
// path unless the request carried an encoding it cannot round-trip (RawPath),
// in which case the segment is still escaped.
func usernameParam(c echo.Context) (string, error) {
	username := c.Param("username")
	if c.Request().URL.RawPath == "" {
		return username, nil
	}
	username, err := url.PathUnescape(username)
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid username")
	}
	return username, nil
}
