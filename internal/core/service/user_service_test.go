package service

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/userdeck/user-directory-api/internal/core/domain"
	"github.com/userdeck/user-directory-api/internal/core/ports"
)

type stubUserRepo struct {
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.AvatarURL != nil {
		avatar := *u.AvatarURL
		clone.AvatarURL = &avatar
	}
	return &clone
}

func (r *stubUserRepo) matching(filter ports.ListFilter) []*domain.User {
	var out []*domain.User
	for _, u := range r.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(u.Name), needle) &&
				!strings.Contains(strings.ToLower(u.Email), needle) {
				continue
			}
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

func (r *stubUserRepo) Count(_ context.Context, filter ports.ListFilter) (int, error) {
	return len(r.matching(filter)), nil
}

func (r *stubUserRepo) List(_ context.Context, filter ports.ListFilter) ([]domain.User, error) {
	matched := r.matching(filter)
	if filter.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	out := make([]domain.User, 0, len(matched))
	for _, u := range matched {
		out = append(out, *cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	created := cloneUser(user)
	created.ID = uuid.NewString()
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now
	r.users[created.ID] = cloneUser(created)
	return created, nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, record ports.UpdateUserRecord) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if record.Email != nil {
		for otherID, other := range r.users {
			if otherID != id && other.Email == *record.Email {
				return nil, domain.ErrEmailTaken
			}
		}
		u.Email = *record.Email
	}
	if record.Name != nil {
		u.Name = *record.Name
	}
	if record.PasswordHash != nil {
		u.PasswordHash = *record.PasswordHash
	}
	if record.Role != nil {
		u.Role = *record.Role
	}
	if record.ClearAvatar {
		u.AvatarURL = nil
	} else if record.AvatarURL != nil {
		u.AvatarURL = record.AvatarURL
	}
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func seedUsers(t *testing.T, svc *UserService, n int) []*domain.User {
	t.Helper()
	out := make([]*domain.User, 0, n)
	for i := 0; i < n; i++ {
		u, err := svc.Create(context.Background(), ports.CreateUserInput{
			Name:     "User " + string(rune('A'+i)),
			Email:    strings.ToLower(string(rune('a'+i))) + "@example.com",
			Password: "12345678",
		})
		if err != nil {
			t.Fatalf("seed user %d: %v", i, err)
		}
		out = append(out, u)
	}
	return out
}

func TestUserService_Create_HashesPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, NewBcryptHasher(4))

	user, err := svc.Create(context.Background(), ports.CreateUserInput{
		Name:     "Ana",
		Email:    "ana@x.com",
		Password: "12345678",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if user.PasswordHash == "" || user.PasswordHash == "12345678" {
		t.Fatalf("expected password to be hashed, got %q", user.PasswordHash)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected default role %q, got %q", domain.RoleUser, user.Role)
	}
	if user.ID == "" {
		t.Fatal("expected generated id")
	}
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, NewBcryptHasher(4))

	in := ports.CreateUserInput{Name: "Ana", Email: "ana@x.com", Password: "12345678"}
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := svc.Create(context.Background(), in); err != domain.ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserService_List_Meta(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, NewBcryptHasher(4))
	seedUsers(t, svc, 7)

	users, meta, err := svc.List(context.Background(), ports.ListUsersInput{
		Page:           2,
		PerPage:        3,
		OrderBy:        "createdAt",
		OrderDirection: "desc",
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users on page 2, got %d", len(users))
	}
	if meta.Total != 7 || meta.TotalPages != 3 {
		t.Fatalf("unexpected meta: %+v", meta)
	}
	if !meta.HasNextPage || !meta.HasPrevPage {
		t.Fatalf("expected both page flags set, got %+v", meta)
	}

	_, lastMeta, err := svc.List(context.Background(), ports.ListUsersInput{
		Page: 3, PerPage: 3, OrderBy: "createdAt", OrderDirection: "desc",
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if lastMeta.HasNextPage {
		t.Fatalf("last page should not report a next page: %+v", lastMeta)
	}
}

func TestUserService_List_SearchAndRole(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, NewBcryptHasher(4))

	ctx := context.Background()
	_, _ = svc.Create(ctx, ports.CreateUserInput{Name: "Ana Souza", Email: "ana@x.com", Password: "12345678"})
	_, _ = svc.Create(ctx, ports.CreateUserInput{Name: "Bruno", Email: "bruno@x.com", Password: "12345678"})
	_, _ = svc.Create(ctx, ports.CreateUserInput{Name: "Root", Email: "root@x.com", Password: "12345678", Role: domain.RoleAdmin})

	users, meta, err := svc.List(ctx, ports.ListUsersInput{Page: 1, PerPage: 10, Search: "ANA"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if meta.Total != 1 || len(users) != 1 || users[0].Email != "ana@x.com" {
		t.Fatalf("search did not match expected user: %+v", users)
	}

	users, _, err = svc.List(ctx, ports.ListUsersInput{Page: 1, PerPage: 10, Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(users) != 1 || users[0].Email != "root@x.com" {
		t.Fatalf("role filter did not match expected user: %+v", users)
	}
}

func TestUserService_Update_RehashesPassword(t *testing.T) {
	repo := newStubUserRepo()
	hasher := NewBcryptHasher(4)
	svc := NewUserService(repo, hasher)

	created := seedUsers(t, svc, 1)[0]
	oldHash := repo.users[created.ID].PasswordHash

	newPassword := "другойпароль"
	updated, err := svc.Update(context.Background(), created.ID, ports.UpdateUserInput{Password: &newPassword})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.PasswordHash == oldHash || updated.PasswordHash == newPassword {
		t.Fatalf("expected password to be re-hashed")
	}
	if !hasher.Verify(newPassword, updated.PasswordHash) {
		t.Fatalf("new hash does not verify against new password")
	}
}

func TestUserService_Update_NotFound(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, NewBcryptHasher(4))

	name := "Ghost"
	if _, err := svc.Update(context.Background(), uuid.NewString(), ports.UpdateUserInput{Name: &name}); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_Update_ClearAvatar(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, NewBcryptHasher(4))

	avatar := "https://cdn.example.com/a.png"
	created, err := svc.Create(context.Background(), ports.CreateUserInput{
		Name: "Ana", Email: "ana@x.com", Password: "12345678", AvatarURL: &avatar,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.Update(context.Background(), created.ID, ports.UpdateUserInput{ClearAvatar: true})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.AvatarURL != nil {
		t.Fatalf("expected avatar cleared, got %v", *updated.AvatarURL)
	}
}

func TestUserService_Delete_Twice(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, NewBcryptHasher(4))
	created := seedUsers(t, svc, 1)[0]

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("first delete failed: %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound on second delete, got %v", err)
	}
}
