package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sarisari-pos/sarisari/internal/shared"
)

type memoryUserRepo struct {
	users  map[int64]*User
	nextID int64
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[int64]*User)}
}

func (r *memoryUserRepo) CreateUser(ctx context.Context, user User) (*User, error) {
	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, ErrUsernameTaken
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = &user
	return &user, nil
}

func (r *memoryUserRepo) GetUserByID(ctx context.Context, id int64) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (r *memoryUserRepo) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memoryUserRepo) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *memoryUserRepo) DeleteUser(ctx context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func newTestAuth() (*Service, *memoryUserRepo) {
	repo := newMemoryUserRepo()
	svc := NewService(repo, "test-secret", time.Hour)
	return svc, repo
}

func TestCreateUserAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuth()

	user, err := svc.CreateUser(ctx, CreateUserInput{Username: "aling-nena", Password: "tindahan123", Role: RoleAdmin})
	require.NoError(t, err)
	require.NotEqual(t, "tindahan123", user.PasswordHash)

	token, logged, err := svc.Login(ctx, "aling-nena", "tindahan123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, user.ID, logged.ID)

	actor, err := svc.Verify(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, actor.ID)
	require.Equal(t, "aling-nena", actor.Username)
	require.True(t, actor.IsAdmin())
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuth()

	_, err := svc.CreateUser(ctx, CreateUserInput{Username: "kassy", Password: "cashier-pw", Role: RoleCashier})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "kassy", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody", "whatever")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryUserRepo()
	issued := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	svc := NewService(repo, "test-secret", time.Hour).WithNow(func() time.Time { return issued })

	_, err := svc.CreateUser(ctx, CreateUserInput{Username: "kassy", Password: "cashier-pw", Role: RoleCashier})
	require.NoError(t, err)
	token, _, err := svc.Login(ctx, "kassy", "cashier-pw")
	require.NoError(t, err)

	svc.WithNow(func() time.Time { return issued.Add(2 * time.Hour) })
	_, err = svc.Verify(token)
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuth()

	_, err := svc.CreateUser(ctx, CreateUserInput{Username: "kassy", Password: "cashier-pw", Role: RoleCashier})
	require.NoError(t, err)
	token, _, err := svc.Login(ctx, "kassy", "cashier-pw")
	require.NoError(t, err)

	other := NewService(newMemoryUserRepo(), "different-secret", time.Hour)
	_, err = other.Verify(token)
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestCreateUserValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuth()

	_, err := svc.CreateUser(ctx, CreateUserInput{Username: "x", Password: "pw", Role: "owner"})
	require.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.CreateUser(ctx, CreateUserInput{Username: "dup", Password: "pw123456", Role: RoleCashier})
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, CreateUserInput{Username: "dup", Password: "pw123456", Role: RoleCashier})
	require.ErrorIs(t, err, ErrUsernameTaken)
}
