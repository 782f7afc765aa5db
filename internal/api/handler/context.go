package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/invoicehub/invoicing-system/internal/core/ports"
)

// sessionFromContext builds the explicit session passed to every service call
// from the claims the Auth middleware injected. A missing user id means the
// middleware did not run (or the token carried no subject); fail fast with 401
// before any service call.
func sessionFromContext(c echo.Context) (ports.Session, error) {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return ports.Session{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	labels, _ := c.Get("labels").([]string)
	return ports.Session{UserID: userID, Labels: labels}, nil
}

// bearerToken extracts the raw bearer token from the Authorization header,
// returning "" when absent or malformed. Used by the optional-auth endpoints
// (me, logout) that must not reject unauthenticated callers.
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
