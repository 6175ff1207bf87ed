package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/campusprint/print-service/internal/models"
	"github.com/campusprint/print-service/pkg/tokens"
)

type TokenGuard struct {
	JWTSecret []byte
}

// RequireLogin parses the Bearer token and injects user_id and role into the
// echo context.
func (g *TokenGuard) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return echo.NewHTTPError(http.StatusUnauthorized, "access token is required")
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		claims, err := tokens.AccessClaimsFromToken(raw, g.JWTSecret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return echo.NewHTTPError(http.StatusUnauthorized, "token has expired")
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		c.Set("user_id", claims.Subject)
		c.Set("role", claims.Role)
		return next(c)
	}
}

// RequireOperator allows only location operators through.
func (g *TokenGuard) RequireOperator(next echo.HandlerFunc) echo.HandlerFunc {
	return g.RequireLogin(func(c echo.Context) error {
		role, _ := c.Get("role").(string)
		if role != models.RoleOperator {
			return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
		}
		return next(c)
	})
}
