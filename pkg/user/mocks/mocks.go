package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gatherguru/pkg/claims"
	"gatherguru/pkg/user"
)

func userOrNil(args mock.Arguments) (*user.User, error) {
	if u := args.Get(0); u != nil {
		return u.(*user.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func usersOrNil(args mock.Arguments) ([]*user.User, error) {
	if u := args.Get(0); u != nil {
		return u.([]*user.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type Repository struct {
	mock.Mock
}

func (m *Repository) Create(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *Repository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return userOrNil(m.Called(ctx, email))
}

func (m *Repository) FindByID(ctx context.Context, id string) (*user.User, error) {
	return userOrNil(m.Called(ctx, id))
}

func (m *Repository) Update(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *Repository) SetStatus(ctx context.Context, id string, status user.Status) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *Repository) List(ctx context.Context, role claims.Role) ([]*user.User, error) {
	return usersOrNil(m.Called(ctx, role))
}

func (m *Repository) CountByRole(ctx context.Context, role claims.Role) (int, error) {
	args := m.Called(ctx, role)
	return args.Int(0), args.Error(1)
}

type Service struct {
	mock.Mock
}

func (m *Service) Register(ctx context.Context, name, email, password string, role claims.Role) (*user.User, error) {
	return userOrNil(m.Called(ctx, name, email, password, role))
}

func (m *Service) Login(ctx context.Context, email, password string, role claims.Role) (*user.User, error) {
	return userOrNil(m.Called(ctx, email, password, role))
}

func (m *Service) Logout(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *Service) Profile(ctx context.Context, userID string) (*user.User, error) {
	return userOrNil(m.Called(ctx, userID))
}

func (m *Service) UpdateProfile(ctx context.Context, userID, name, profileImage string) (*user.User, error) {
	return userOrNil(m.Called(ctx, userID, name, profileImage))
}

func (m *Service) SetStatus(ctx context.Context, userID string, status user.Status) error {
	return m.Called(ctx, userID, status).Error(0)
}

func (m *Service) List(ctx context.Context, role claims.Role) ([]*user.User, error) {
	return usersOrNil(m.Called(ctx, role))
}

func (m *Service) CountByRole(ctx context.Context, role claims.Role) (int, error) {
	args := m.Called(ctx, role)
	return args.Int(0), args.Error(1)
}
