package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"gatherguru/pkg/claims"
	"gatherguru/pkg/generator"
	"gatherguru/pkg/image"
	"gatherguru/pkg/session"
)

const minPasswordLen = 6

type ServiceInterface interface {
	Register(ctx context.Context, name, email, password string, role claims.Role) (*User, error)
	Login(ctx context.Context, email, password string, role claims.Role) (*User, error)
	Logout(ctx context.Context, userID string) error
	Profile(ctx context.Context, userID string) (*User, error)
	UpdateProfile(ctx context.Context, userID, name, profileImage string) (*User, error)
	SetStatus(ctx context.Context, userID string, status Status) error
	List(ctx context.Context, role claims.Role) ([]*User, error)
	CountByRole(ctx context.Context, role claims.Role) (int, error)
}

type Service struct {
	Repo    Repository
	Session session.Repository
}

func NewService(repo Repository, session session.Repository) *Service {
	return &Service{Repo: repo, Session: session}
}

func validate(name, email, password string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: name is required", ErrValidation)
	case !strings.Contains(email, "@"):
		return fmt.Errorf("%w: email is invalid", ErrValidation)
	case len(password) < minPasswordLen:
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}
	return nil
}

// Register creates an attendee or organizer account. Admin accounts are provisioned out of band.
func (s *Service) Register(ctx context.Context, name, email, password string, role claims.Role) (*User, error) {
	if role != claims.RoleUser && role != claims.RoleOrganizer {
		return nil, fmt.Errorf("%w: cannot register as %q", ErrValidation, role.String())
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate(name, email, password); err != nil {
		return nil, err
	}

	user, err := s.create(ctx, name, email, password, role)
	if err != nil {
		return nil, err
	}

	if err = s.openSession(ctx, user.ID); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) create(ctx context.Context, name, email, password string, role claims.Role) (*User, error) {
	exist, err := s.Repo.FindByEmail(ctx, email)
	if exist != nil && err == nil {
		return nil, ErrUserExists
	}
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password error: %w", err)
	}

	userID, err := generator.GenerateRandomID(24)
	if err != nil {
		return nil, fmt.Errorf("UserID gen error: %w", err)
	}

	user := &User{
		ID:        userID,
		Name:      strings.TrimSpace(name),
		Email:     email,
		Password:  string(hashedPassword),
		Role:      role,
		Status:    StatusActive,
		CreatedAt: time.Now().UTC(),
	}
	if err = s.Repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// EnsureAdmin provisions the bootstrap admin account. It reports false when the account exists.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate(name, email, password); err != nil {
		return false, err
	}
	_, err := s.create(ctx, name, email, password, claims.RoleAdmin)
	if errors.Is(err, ErrUserExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Login checks credentials against the login page's role: an organizer cannot use the attendee form.
func (s *Service) Login(ctx context.Context, email, password string, role claims.Role) (*User, error) {
	user, err := s.Repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, ErrUserNotFound
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Role != role {
		return nil, ErrInvalidCredentials
	}
	if err = StatusError(user.Status); err != nil {
		return nil, err
	}

	if err = s.openSession(ctx, user.ID); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) openSession(ctx context.Context, userID string) error {
	sessionID, err := generator.GenerateRandomID(24)
	if err != nil {
		return fmt.Errorf("SessionID gen error: %w", err)
	}
	if _, err = s.Session.Create(ctx, userID, sessionID, claims.TokenTTL); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.Session.Invalidate(ctx, userID)
}

func (s *Service) Profile(ctx context.Context, userID string) (*User, error) {
	return s.Repo.FindByID(ctx, userID)
}

// UpdateProfile changes only the fields given; an empty value keeps the stored one.
func (s *Service) UpdateProfile(ctx context.Context, userID, name, profileImage string) (*User, error) {
	user, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name != "" {
		user.Name = name
	}
	if profileImage != "" {
		if err = image.Validate(profileImage); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
		}
		user.ProfileImage = profileImage
	}
	if err = s.Repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetStatus changes an account's status; leaving "active" also ends the user's server session.
func (s *Service) SetStatus(ctx context.Context, userID string, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	if err := s.Repo.SetStatus(ctx, userID, status); err != nil {
		return err
	}
	if status != StatusActive {
		return s.Session.Invalidate(ctx, userID)
	}
	return nil
}

func (s *Service) List(ctx context.Context, role claims.Role) ([]*User, error) {
	return s.Repo.List(ctx, role)
}

func (s *Service) CountByRole(ctx context.Context, role claims.Role) (int, error) {
	return s.Repo.CountByRole(ctx, role)
}

// StatusError maps an account status to the error reported to its holder, nil for active accounts.
func StatusError(s Status) error {
	switch s {
	case StatusInactive:
		return ErrAccountInactive
	case StatusBlocked:
		return ErrAccountBlocked
	}
	return nil
}
