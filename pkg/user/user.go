package user

import (
	"context"
	"errors"
	"time"

	"gatherguru/pkg/claims"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusBlocked  Status = "blocked"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive || s == StatusBlocked
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrAccountBlocked     = errors.New("account is blocked")
	ErrValidation         = errors.New("validation error")
)

type User struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Password     string      `json:"-"`
	Role         claims.Role `json:"role"`
	Status       Status      `json:"status"`
	ProfileImage string      `json:"profileImage,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
}

func (u *User) Claims() claims.UserClaims {
	return claims.UserClaims{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
	SetStatus(ctx context.Context, id string, status Status) error
	List(ctx context.Context, role claims.Role) ([]*User, error)
	CountByRole(ctx context.Context, role claims.Role) (int, error)
}
