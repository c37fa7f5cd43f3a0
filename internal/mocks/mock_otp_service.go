package mocks

import (
	"context"
	"time"

	"github.com/you/accountsvc/domain"
)

// MockOTPService implements domain.OTPService for testing
type MockOTPService struct {
	IssueFunc   func(ctx context.Context, email string, purpose domain.OTPPurpose) (*domain.OTPCode, error)
	CheckFunc   func(ctx context.Context, email, code string, purpose domain.OTPPurpose) (*domain.OTPCode, error)
	ConsumeFunc func(ctx context.Context, email string, purpose domain.OTPPurpose) error
}

// NewMockOTPService creates a new MockOTPService with default behaviors
func NewMockOTPService() *MockOTPService {
	return &MockOTPService{}
}

// Issue generates and delivers a code
func (m *MockOTPService) Issue(ctx context.Context, email string, purpose domain.OTPPurpose) (*domain.OTPCode, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, email, purpose)
	}
	// Default behavior: fixed code, ten minutes out
	return &domain.OTPCode{
		Email:     email,
		Code:      "123456",
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}, nil
}

// Check validates a code without consuming it
func (m *MockOTPService) Check(ctx context.Context, email, code string, purpose domain.OTPPurpose) (*domain.OTPCode, error) {
	if m.CheckFunc != nil {
		return m.CheckFunc(ctx, email, code, purpose)
	}
	// Default behavior: invalid
	return nil, domain.ErrOTPInvalid
}

// Consume deletes a code
func (m *MockOTPService) Consume(ctx context.Context, email string, purpose domain.OTPPurpose) error {
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, email, purpose)
	}
	return nil
}
