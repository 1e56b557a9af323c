package service

import (
	"context"

	"github.com/userdeck/user-directory-api/internal/core/domain"
	"github.com/userdeck/user-directory-api/internal/core/ports"
)

// UserService implements the directory CRUD operations. Input arriving
// here is already validated and normalized by the handler schemas.
type UserService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
}

func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher) *UserService {
	return &UserService{repo: repo, hasher: hasher}
}

var _ ports.UserService = (*UserService)(nil)

// List returns one page of users plus pagination metadata.
func (s *UserService) List(ctx context.Context, in ports.ListUsersInput) ([]domain.User, ports.ListMeta, error) {
	filter := ports.ListFilter{
		Role:           in.Role,
		Search:         in.Search,
		OrderBy:        in.OrderBy,
		OrderDirection: in.OrderDirection,
		Offset:         (in.Page - 1) * in.PerPage,
		Limit:          in.PerPage,
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, ports.ListMeta{}, err
	}

	users, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, ports.ListMeta{}, err
	}

	totalPages := (total + in.PerPage - 1) / in.PerPage
	meta := ports.ListMeta{
		Total:       total,
		Page:        in.Page,
		PerPage:     in.PerPage,
		TotalPages:  totalPages,
		HasNextPage: in.Page < totalPages,
		HasPrevPage: in.Page > 1,
	}

	return users, meta, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Create hashes the password and inserts the record. An email collision
// surfaces as domain.ErrEmailTaken from the repository.
func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}

	user := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		AvatarURL:    in.AvatarURL,
	}

	return s.repo.Create(ctx, user)
}

// Update applies a partial update. The fetch-then-update sequence is not
// atomic against a concurrent delete; the repository reports that race as
// domain.ErrUserNotFound rather than corrupting state.
func (s *UserService) Update(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.User, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	record := ports.UpdateUserRecord{
		Name:        in.Name,
		Email:       in.Email,
		Role:        in.Role,
		AvatarURL:   in.AvatarURL,
		ClearAvatar: in.ClearAvatar,
	}

	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		record.PasswordHash = &hash
	}

	return s.repo.Update(ctx, id, record)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
