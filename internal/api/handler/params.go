package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/agriconnect/user-service/internal/core/domain"
)

// pathRole parses the :userType path parameter, rejecting unknown roles
// before any service call.
func pathRole(c echo.Context) (domain.Role, error) {
	role, err := domain.ParseRole(c.Param("userType"))
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "userType must be one of: FARMER LABOUR ADMIN")
	}
	return role, nil
}

// pathParam returns a path parameter in decoded form. Echo routes on
// URL.RawPath when the request carries one (escaped slashes and similar), and
// its parameters are then still escaped; otherwise they come from the decoded
// URL.Path and must not be decoded again.
func pathParam(c echo.Context, name string) (string, error) {
	v := c.Param(name)
	if c.Request().URL.RawPath == "" {
		return v, nil
	}
	decoded, err := url.PathUnescape(v)
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "malformed "+name)
	}
	return decoded, nil
}
