package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agriconnect/user-service/internal/core/domain"
	"github.com/agriconnect/user-service/internal/core/ports"
	"github.com/agriconnect/user-service/internal/pkg/metrics"
)

// AccountHandler handles HTTP requests for account operations.
type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// Register creates an account and its profile.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  domain.AccountResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/users/register [post]
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.service.Register(c.Request().Context(), req.toInput())
	if err != nil {
		return fail("register", err)
	}

	metrics.AccountsRegisteredTotal.WithLabelValues(string(account.Role)).Inc()
	return c.JSON(http.StatusCreated, domain.NewAccountResponse(account))
}

// GetByID returns a single account.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  domain.AccountResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/users/{id} [get]
func (h *AccountHandler) GetByID(c echo.Context) error {
	account, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail("get", err)
	}
	return c.JSON(http.StatusOK, domain.NewAccountResponse(account))
}

// GetByEmail returns the account registered with an email address.
//
// @Summary      Get a user by email
// @Tags         users
// @Produce      json
// @Param        email  path      string  true  "Email address"
// @Success      200    {object}  domain.AccountResponse
// @Failure      404    {object}  map[string]string
// @Router       /api/users/email/{email} [get]
func (h *AccountHandler) GetByEmail(c echo.Context) error {
	email, err := pathParam(c, "email")
	if err != nil {
		return err
	}
	account, err := h.service.GetByEmail(c.Request().Context(), email)
	if err != nil {
		return fail("get", err)
	}
	return c.JSON(http.StatusOK, domain.NewAccountResponse(account))
}

// ListByType lists active accounts of a role.
//
// @Summary      List active users by type
// @Tags         users
// @Produce      json
// @Param        userType  path      string  true  "FARMER, LABOUR or ADMIN"
// @Success      200       {array}   domain.AccountResponse
// @Failure      400       {object}  map[string]string
// @Router       /api/users/type/{userType} [get]
func (h *AccountHandler) ListByType(c echo.Context) error {
	role, err := pathRole(c)
	if err != nil {
		return err
	}
	accounts, err := h.service.ListByRole(c.Request().Context(), role)
	if err != nil {
		return fail("list", err)
	}
	return c.JSON(http.StatusOK, domain.NewAccountResponses(accounts))
}

// ListByLocationAndType lists accounts of a role whose profile location
// matches exactly, active or not.
//
// @Summary      List users by location and type
// @Tags         users
// @Produce      json
// @Param        location  path      string  true  "Profile location"
// @Param        userType  path      string  true  "FARMER, LABOUR or ADMIN"
// @Success      200       {array}   domain.AccountResponse
// @Failure      400       {object}  map[string]string
// @Router       /api/users/location/{location}/type/{userType} [get]
func (h *AccountHandler) ListByLocationAndType(c echo.Context) error {
	role, err := pathRole(c)
	if err != nil {
		return err
	}
	location, err := pathParam(c, "location")
	if err != nil {
		return err
	}
	accounts, err := h.service.ListByLocationAndRole(c.Request().Context(), location, role)
	if err != nil {
		return fail("list", err)
	}
	return c.JSON(http.StatusOK, domain.NewAccountResponses(accounts))
}

// UpdateProfile overwrites the account's name fields and upserts its profile.
//
// @Summary      Update a user's profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "Account id"
// @Param        body  body      updateProfileRequest  true  "Profile details"
// @Success      200   {object}  domain.AccountResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/users/{id}/profile [put]
func (h *AccountHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.service.UpdateProfile(c.Request().Context(), c.Param("id"), req.toInput())
	if err != nil {
		return fail("update_profile", err)
	}
	return c.JSON(http.StatusOK, domain.NewAccountResponse(account))
}

// Deactivate soft-deletes an account.
//
// @Summary      Deactivate a user
// @Tags         users
// @Param        id   path  string  true  "Account id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/users/{id} [delete]
func (h *AccountHandler) Deactivate(c echo.Context) error {
	if err := h.service.Deactivate(c.Request().Context(), c.Param("id")); err != nil {
		return fail("deactivate", err)
	}
	metrics.AccountsDeactivatedTotal.Inc()
	return c.NoContent(http.StatusNoContent)
}

// Health is the plain-text health check existing clients poll.
//
// @Summary      Service banner
// @Tags         health
// @Produce      plain
// @Success      200  {string}  string
// @Router       /api/users/health [get]
func (h *AccountHandler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "User Service is running")
}

// fail records the failed operation and hands err on to the HTTP error handler.
func fail(operation string, err error) error {
	metrics.AccountErrorsTotal.WithLabelValues(operation, reason(err)).Inc()
	return err
}

func reason(err error) string {
	switch {
	case errors.Is(err, domain.ErrAccountExists):
		return "already_exists"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "internal"
	}
}
