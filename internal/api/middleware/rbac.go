package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/userdeck/user-directory-api/internal/core/domain"
)

// RequireRole denies with Forbidden unless the authenticated identity
// carries the expected role. A missing identity is also Forbidden: the
// "who are you" question is Auth's to answer, not this one's.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok || identity.Role != role {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

// RequireSelfOrRole allows the expected role, or the owner of the record
// addressed by the :id path parameter. On routes without :id the ownership
// half can never match, so only the expected role passes.
func RequireSelfOrRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return domain.ErrForbidden
			}
			if identity.Role == role || identity.Owns(c.Param("id")) {
				return next(c)
			}
			return domain.ErrForbidden
		}
	}
}
