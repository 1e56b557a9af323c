package service

import (
	"context"
	"errors"

	"github.com/userdeck/user-directory-api/internal/core/domain"
	"github.com/userdeck/user-directory-api/internal/core/ports"
)

// AuthService implements password login.
type AuthService struct {
	repo   ports.UserRepository
	tokens ports.TokenService
	hasher ports.PasswordHasher
}

func NewAuthService(repo ports.UserRepository, tokens ports.TokenService, hasher ports.PasswordHasher) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, hasher: hasher}
}

var _ ports.AuthService = (*AuthService)(nil)

// Login verifies the credentials and issues a bearer token. An unknown
// email and a wrong password both map to domain.ErrInvalidCredentials so
// the response never reveals whether the account exists.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(domain.Identity{ID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}
