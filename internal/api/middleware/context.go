package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/userdeck/user-directory-api/internal/core/domain"
)

const identityKey = "identity"

func setIdentity(c echo.Context, identity domain.Identity) {
	c.Set(identityKey, identity)
}

// IdentityFrom returns the authenticated identity attached by Auth, and
// whether one is present at all.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	identity, ok := c.Get(identityKey).(domain.Identity)
	return identity, ok
}
