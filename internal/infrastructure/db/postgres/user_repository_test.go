package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userdeck/user-directory-api/internal/core/domain"
	"github.com/userdeck/user-directory-api/internal/core/ports"
)

const (
	selectUsersSQL = "SELECT id, name, email, password_hash, role, avatar_url, created_at, updated_at FROM users"
	returningSQL   = "RETURNING id, name, email, password_hash, role, avatar_url, created_at, updated_at"
)

func newMockRepository(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewUserRepository(db), mock
}

func userRows(users ...domain.User) *sqlmock.Rows {
	rows := sqlmock.NewRows(userColumns)
	for _, u := range users {
		var avatar any
		if u.AvatarURL != nil {
			avatar = *u.AvatarURL
		}
		rows.AddRow(u.ID, u.Name, u.Email, u.PasswordHash, u.Role, avatar, u.CreatedAt, u.UpdatedAt)
	}
	return rows
}

func fixtureUser() domain.User {
	now := time.Date(2026, 5, 2, 17, 4, 11, 0, time.UTC)
	return domain.User{
		ID:           "2f9a1f6e-0d9e-4f3b-9a91-0b3c7c1f2a41",
		Name:         "Ana",
		Email:        "ana@x.com",
		PasswordHash: "$2a$10$hash",
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRepository_Count_WithFilters(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COUNT(*) FROM users WHERE role = $1 AND (name ILIKE $2 OR email ILIKE $3)")).
		WithArgs("user", "%ana%", "%ana%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	total, err := repo.Count(context.Background(), ports.ListFilter{Role: "user", Search: "ana"})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_List_OrderAndPaging(t *testing.T) {
	repo, mock := newMockRepository(t)
	user := fixtureUser()

	mock.ExpectQuery(regexp.QuoteMeta(
		selectUsersSQL+" WHERE role = $1 ORDER BY email ASC LIMIT 10 OFFSET 20")).
		WithArgs("user").
		WillReturnRows(userRows(user))

	users, err := repo.List(context.Background(), ports.ListFilter{
		Role:           "user",
		OrderBy:        "email",
		OrderDirection: "asc",
		Offset:         20,
		Limit:          10,
	})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, user.Email, users[0].Email)
	assert.Nil(t, users[0].AvatarURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Unsortable field names never reach the database; ordering falls back to
// the creation timestamp.
func TestUserRepository_List_UnknownOrderFallsBack(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		selectUsersSQL+" ORDER BY created_at DESC LIMIT 10 OFFSET 0")).
		WillReturnRows(userRows())

	users, err := repo.List(context.Background(), ports.ListFilter{
		OrderBy: "password_hash; DROP TABLE users",
		Limit:   10,
	})
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID(t *testing.T) {
	repo, mock := newMockRepository(t)
	user := fixtureUser()

	mock.ExpectQuery(regexp.QuoteMeta(selectUsersSQL+" WHERE id = $1")).
		WithArgs(user.ID).
		WillReturnRows(userRows(user))

	got, err := repo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, *got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectUsersSQL+" WHERE id = $1")).
		WithArgs("missing-id").
		WillReturnRows(userRows())

	_, err := repo.GetByID(context.Background(), "missing-id")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail(t *testing.T) {
	repo, mock := newMockRepository(t)
	user := fixtureUser()

	mock.ExpectQuery(regexp.QuoteMeta(selectUsersSQL+" WHERE email = $1")).
		WithArgs(user.Email).
		WillReturnRows(userRows(user))

	got, err := repo.GetByEmail(context.Background(), user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create(t *testing.T) {
	repo, mock := newMockRepository(t)
	user := fixtureUser()

	mock.ExpectQuery(regexp.QuoteMeta(
		"INSERT INTO users (name,email,password_hash,role,avatar_url) VALUES ($1,$2,$3,$4,$5) "+returningSQL)).
		WithArgs(user.Name, user.Email, user.PasswordHash, user.Role, nil).
		WillReturnRows(userRows(user))

	created, err := repo.Create(context.Background(), &domain.User{
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	repo, mock := newMockRepository(t)
	user := fixtureUser()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	_, err := repo.Create(context.Background(), &user)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update_PartialFields(t *testing.T) {
	repo, mock := newMockRepository(t)
	user := fixtureUser()
	newName := "Ana Rivera"

	mock.ExpectQuery(regexp.QuoteMeta(
		"UPDATE users SET updated_at = now(), name = $1 WHERE id = $2 "+returningSQL)).
		WithArgs(newName, user.ID).
		WillReturnRows(userRows(user))

	_, err := repo.Update(context.Background(), user.ID, ports.UpdateUserRecord{Name: &newName})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update_ClearAvatar(t *testing.T) {
	repo, mock := newMockRepository(t)
	user := fixtureUser()

	mock.ExpectQuery(regexp.QuoteMeta(
		"UPDATE users SET updated_at = now(), avatar_url = $1 WHERE id = $2 "+returningSQL)).
		WithArgs(nil, user.ID).
		WillReturnRows(userRows(user))

	_, err := repo.Update(context.Background(), user.ID, ports.UpdateUserRecord{ClearAvatar: true})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The record can vanish between the service's fetch and this update; zero
// RETURNING rows must surface as not-found, not as a scan error.
func TestUserRepository_Update_GoneRecord(t *testing.T) {
	repo, mock := newMockRepository(t)
	newName := "Ana Rivera"

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET")).
		WillReturnRows(userRows())

	_, err := repo.Update(context.Background(), "gone-id", ports.UpdateUserRecord{Name: &newName})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update_DuplicateEmail(t *testing.T) {
	repo, mock := newMockRepository(t)
	email := "taken@x.com"

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET")).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	_, err := repo.Update(context.Background(), fixtureUser().ID, ports.UpdateUserRecord{Email: &email})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Delete(t *testing.T) {
	repo, mock := newMockRepository(t)
	user := fixtureUser()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs(user.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), user.ID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Delete_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs("missing-id").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing-id")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
