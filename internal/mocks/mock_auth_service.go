package mocks

import (
	"context"

	"github.com/you/accountsvc/domain"
)

// MockAuthService implements domain.AuthService for testing
type MockAuthService struct {
	PasswordLoginFunc     func(ctx context.Context, email, password string) (*domain.AuthResult, error)
	RequestOTPFunc        func(ctx context.Context, email string) (*domain.OTPIssued, error)
	VerifyOTPLoginFunc    func(ctx context.Context, email, code string) (*domain.AuthResult, error)
	VerifyRegisterOTPFunc func(ctx context.Context, email, code string) error
	RegisterFunc          func(ctx context.Context, email, username, password, avatar string) (*domain.AuthResult, error)
	LogoutFunc            func(ctx context.Context, sessionID string) error
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

// PasswordLogin authenticates with email and password
func (m *MockAuthService) PasswordLogin(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	if m.PasswordLoginFunc != nil {
		return m.PasswordLoginFunc(ctx, email, password)
	}
	return nil, domain.ErrUserNotFound
}

// RequestOTP issues a verification code for the email
func (m *MockAuthService) RequestOTP(ctx context.Context, email string) (*domain.OTPIssued, error) {
	if m.RequestOTPFunc != nil {
		return m.RequestOTPFunc(ctx, email)
	}
	return &domain.OTPIssued{Email: email, Purpose: domain.PurposeLogin}, nil
}

// VerifyOTPLogin authenticates with a login-purpose code
func (m *MockAuthService) VerifyOTPLogin(ctx context.Context, email, code string) (*domain.AuthResult, error) {
	if m.VerifyOTPLoginFunc != nil {
		return m.VerifyOTPLoginFunc(ctx, email, code)
	}
	return nil, domain.ErrOTPInvalid
}

// VerifyRegisterOTP validates a register-purpose code without consuming it
func (m *MockAuthService) VerifyRegisterOTP(ctx context.Context, email, code string) error {
	if m.VerifyRegisterOTPFunc != nil {
		return m.VerifyRegisterOTPFunc(ctx, email, code)
	}
	return domain.ErrOTPInvalid
}

// Register completes account creation
func (m *MockAuthService) Register(ctx context.Context, email, username, password, avatar string) (*domain.AuthResult, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email, username, password, avatar)
	}
	return nil, domain.ErrEmailTaken
}

// Logout deletes the server-side session
func (m *MockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, sessionID)
	}
	return nil
}
