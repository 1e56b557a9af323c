package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/userdeck/user-directory-api/internal/core/domain"
	"github.com/userdeck/user-directory-api/internal/core/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var userColumns = []string{"id", "name", "email", "password_hash", "role", "avatar_url", "created_at", "updated_at"}

// orderColumns whitelists the sortable API fields against their column
// names; anything else falls back to created_at.
var orderColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"email":     "email",
}

// UserRepository is the PostgreSQL-backed implementation of
// ports.UserRepository against the "users" table.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ ports.UserRepository = (*UserRepository)(nil)

func filterConds(f ports.ListFilter) []sq.Sqlizer {
	var conds []sq.Sqlizer
	if f.Role != "" {
		conds = append(conds, sq.Eq{"role": f.Role})
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		conds = append(conds, sq.Or{
			sq.ILike{"name": pattern},
			sq.ILike{"email": pattern},
		})
	}
	return conds
}

func (r *UserRepository) Count(ctx context.Context, filter ports.ListFilter) (int, error) {
	builder := psql.Select("COUNT(*)").From("users")
	for _, cond := range filterConds(filter) {
		builder = builder.Where(cond)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}

func (r *UserRepository) List(ctx context.Context, filter ports.ListFilter) ([]domain.User, error) {
	column, ok := orderColumns[filter.OrderBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if filter.OrderDirection == "asc" {
		direction = "ASC"
	}

	builder := psql.Select(userColumns...).
		From("users").
		OrderBy(column + " " + direction).
		Offset(uint64(filter.Offset)).
		Limit(uint64(filter.Limit))
	for _, cond := range filterConds(filter) {
		builder = builder.Where(cond)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getBy(ctx, sq.Eq{"id": id})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, sq.Eq{"email": email})
}

func (r *UserRepository) getBy(ctx context.Context, cond sq.Eq) (*domain.User, error) {
	query, args, err := psql.Select(userColumns...).From("users").Where(cond).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}

	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// Create inserts a new user and returns the canonical database
// representation via RETURNING. A duplicate email surfaces as
// domain.ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query, args, err := psql.Insert("users").
		Columns("name", "email", "password_hash", "role", "avatar_url").
		Values(user.Name, user.Email, user.PasswordHash, user.Role, user.AvatarURL).
		Suffix(returningClause()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert query: %w", err)
	}

	created, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

// Update applies a partial update via RETURNING. Zero returned rows means
// the record vanished between fetch and update; that race is reported as
// domain.ErrUserNotFound, never as corrupted state.
func (r *UserRepository) Update(ctx context.Context, id string, record ports.UpdateUserRecord) (*domain.User, error) {
	builder := psql.Update("users").Set("updated_at", sq.Expr("now()"))
	if record.Name != nil {
		builder = builder.Set("name", *record.Name)
	}
	if record.Email != nil {
		builder = builder.Set("email", *record.Email)
	}
	if record.PasswordHash != nil {
		builder = builder.Set("password_hash", *record.PasswordHash)
	}
	if record.Role != nil {
		builder = builder.Set("role", *record.Role)
	}
	if record.ClearAvatar {
		builder = builder.Set("avatar_url", nil)
	} else if record.AvatarURL != nil {
		builder = builder.Set("avatar_url", *record.AvatarURL)
	}

	query, args, err := builder.Where(sq.Eq{"id": id}).Suffix(returningClause()).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update query: %w", err)
	}

	updated, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("users").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func returningClause() string {
	clause := "RETURNING"
	for i, col := range userColumns {
		if i > 0 {
			clause += ","
		}
		clause += " " + col
	}
	return clause
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	var avatar sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&avatar,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if avatar.Valid {
		user.AvatarURL = &avatar.String
	}
	return &user, nil
}
