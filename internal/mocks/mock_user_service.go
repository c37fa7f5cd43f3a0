package mocks

import (
	"context"

	"github.com/you/accountsvc/domain"
)

// MockUserService implements domain.UserService for testing
type MockUserService struct {
	ProfileByUsernameFunc func(ctx context.Context, username string) (*domain.User, error)
	UpdateProfileFunc     func(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error)
}

// NewMockUserService creates a new MockUserService with default behaviors
func NewMockUserService() *MockUserService {
	return &MockUserService{}
}

// ProfileByUsername looks up a public profile
func (m *MockUserService) ProfileByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.ProfileByUsernameFunc != nil {
		return m.ProfileByUsernameFunc(ctx, username)
	}
	return nil, domain.ErrUserNotFound
}

// UpdateProfile applies a self-service profile update
func (m *MockUserService) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, userID, update)
	}
	return nil, domain.ErrUserNotFound
}
