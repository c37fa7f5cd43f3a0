package mocks

import (
	"context"

	"github.com/you/accountsvc/domain"
)

// MockOTPRepository implements domain.OTPRepository for testing
type MockOTPRepository struct {
	SaveFunc          func(ctx context.Context, code *domain.OTPCode) error
	FindValidFunc     func(ctx context.Context, email, code string, purpose domain.OTPPurpose) (*domain.OTPCode, error)
	DeleteFunc        func(ctx context.Context, email string, purpose domain.OTPPurpose) error
	DeleteExpiredFunc func(ctx context.Context) error
}

// NewMockOTPRepository creates a new MockOTPRepository with default behaviors
func NewMockOTPRepository() *MockOTPRepository {
	return &MockOTPRepository{}
}

// Save stores a verification code
func (m *MockOTPRepository) Save(ctx context.Context, code *domain.OTPCode) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, code)
	}
	return nil
}

// FindValid looks up a live code by exact (email, code, purpose)
func (m *MockOTPRepository) FindValid(ctx context.Context, email, code string, purpose domain.OTPPurpose) (*domain.OTPCode, error) {
	if m.FindValidFunc != nil {
		return m.FindValidFunc(ctx, email, code, purpose)
	}
	// Default behavior: invalid
	return nil, domain.ErrOTPInvalid
}

// Delete removes all codes for (email, purpose)
func (m *MockOTPRepository) Delete(ctx context.Context, email string, purpose domain.OTPPurpose) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, email, purpose)
	}
	return nil
}

// DeleteExpired drops all expired codes
func (m *MockOTPRepository) DeleteExpired(ctx context.Context) error {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx)
	}
	return nil
}
