package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/userdeck/user-directory-api/internal/core/domain"
	"github.com/userdeck/user-directory-api/internal/core/ports"
)

// Auth extracts and verifies the bearer token and injects the resolved
// identity into the request context. A bad signature and an expired token
// are reported identically so callers cannot probe token validity.
func Auth(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return domain.ErrTokenMissing
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return domain.ErrTokenMissing
			}

			identity, err := tokens.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				return domain.ErrInvalidToken
			}

			setIdentity(c, identity)
			return next(c)
		}
	}
}
