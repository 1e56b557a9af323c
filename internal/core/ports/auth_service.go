package ports

import (
	"context"

	"github.com/userdeck/user-directory-api/internal/core/domain"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

// TokenService issues and verifies signed bearer tokens carrying identity
// claims. Verification failures are uniform: callers cannot tell a bad
// signature from an expired token.
type TokenService interface {
	Issue(identity domain.Identity) (string, error)
	Verify(token string) (domain.Identity, error)
}

// PasswordHasher is the one-way credential hashing adapter. Verify reports
// a mismatch as false, never as an error.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}
