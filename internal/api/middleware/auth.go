package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// RevocationChecker reports whether a token id has been revoked by sign-out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Auth validates the JWT, rejects revoked sessions, and injects the verified
// claims into context.
func Auth(jwtSecret string, revocations RevocationChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			if jti, _ := claims["jti"].(string); jti != "" && revocations != nil {
				revoked, err := revocations.IsRevoked(c.Request().Context(), jti)
				if err != nil {
					return echo.NewHTTPError(http.StatusServiceUnavailable, "session store unavailable")
				}
				if revoked {
					return echo.NewHTTPError(http.StatusUnauthorized, "session revoked")
				}
			}

			sub, _ := claims["sub"].(string)
			c.Set("user_id", sub)
			c.Set("labels", claimLabels(claims))
			c.Set("token", parts[1])

			return next(c)
		}
	}
}

// claimLabels normalises the labels claim, which arrives as []interface{}
// after JSON decoding.
func claimLabels(claims jwt.MapClaims) []string {
	raw, ok := claims["labels"].([]interface{})
	if !ok {
		return nil
	}
	labels := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			labels = append(labels, s)
		}
	}
	return labels
}
