package ports

import (
	"context"

	"github.com/userdeck/user-directory-api/internal/core/domain"
)

// ListUsersInput is the validated, defaulted query of GET /users.
type ListUsersInput struct {
	Page           int
	PerPage        int
	OrderBy        string
	OrderDirection string
	Search         string
	Role           string
}

// ListMeta describes the page returned by a listing.
type ListMeta struct {
	Total       int  `json:"total"`
	Page        int  `json:"page"`
	PerPage     int  `json:"perPage"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// CreateUserInput is the validated body of POST /users. Password is still
// plaintext here; the service hashes it before anything is persisted.
type CreateUserInput struct {
	Name      string
	Email     string
	Password  string
	Role      string
	AvatarURL *string
}

// UpdateUserInput is the validated body of PATCH /users/:id. Nil pointers
// mean the field was absent; ClearAvatar records an explicit null.
type UpdateUserInput struct {
	Name        *string
	Email       *string
	Password    *string
	Role        *string
	AvatarURL   *string
	ClearAvatar bool
}

// Empty reports whether no field was provided at all.
func (in UpdateUserInput) Empty() bool {
	return in.Name == nil && in.Email == nil && in.Password == nil &&
		in.Role == nil && in.AvatarURL == nil && !in.ClearAvatar
}

type UserService interface {
	List(ctx context.Context, in ListUsersInput) ([]domain.User, ListMeta, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
	Update(ctx context.Context, id string, in UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
