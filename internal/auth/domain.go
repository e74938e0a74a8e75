package auth

import (
	"errors"
	"time"

	"github.com/sarisari-pos/sarisari/internal/shared"
)

// User roles.
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

var (
	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken indicates the username is already registered.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidRole indicates an unknown role name.
	ErrInvalidRole = errors.New("role must be admin or cashier")
)

func init() {
	shared.RegisterUserSafe(ErrUserNotFound, ErrUsernameTaken, ErrInvalidRole)
}

// User model. PasswordHash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CreateUserInput for registering users.
type CreateUserInput struct {
	Username string
	Password string
	Role     string
}
