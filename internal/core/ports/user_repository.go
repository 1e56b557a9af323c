package ports

import (
	"context"

	"github.com/userdeck/user-directory-api/internal/core/domain"
)

// ListFilter captures the WHERE/ORDER/paging clauses of a directory listing.
// Search matches name OR email case-insensitively as a substring.
type ListFilter struct {
	Role           string
	Search         string
	OrderBy        string
	OrderDirection string
	Offset         int
	Limit          int
}

// UpdateUserRecord carries a partial update; nil pointers mean "leave
// unchanged". ClearAvatar sets avatar_url to NULL and wins over AvatarURL.
type UpdateUserRecord struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *string
	AvatarURL    *string
	ClearAvatar  bool
}

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	Count(ctx context.Context, filter ListFilter) (int, error)
	List(ctx context.Context, filter ListFilter) ([]domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, id string, record UpdateUserRecord) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
