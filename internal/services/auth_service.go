package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/you/accountsvc/domain"
)

// AuthServiceImpl implements domain.AuthService. The protocol is stateless
// between requests: every step re-derives its legality from the stores.
type AuthServiceImpl struct {
	userRepo    domain.UserRepository
	sessionRepo domain.SessionRepository
	passwordSvc domain.PasswordService
	otpSvc      domain.OTPService
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	sessionRepo domain.SessionRepository,
	passwordSvc domain.PasswordService,
	otpSvc domain.OTPService,
) domain.AuthService {
	return &AuthServiceImpl{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		passwordSvc: passwordSvc,
		otpSvc:      otpSvc,
	}
}

// PasswordLogin implements domain.AuthService
func (s *AuthServiceImpl) PasswordLogin(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	user := s.userByEmail(ctx, email)
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if !user.HasPassword() {
		return nil, domain.ErrPasswordNotSet
	}
	if !s.passwordSvc.Verify(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}
	return s.finishLogin(ctx, user)
}

// RequestOTP implements domain.AuthService. The purpose is derived from
// whether an account already exists for the email.
func (s *AuthServiceImpl) RequestOTP(ctx context.Context, email string) (*domain.OTPIssued, error) {
	user := s.userByEmail(ctx, email)
	purpose := domain.PurposeLogin
	if user == nil {
		purpose = domain.PurposeRegister
	}

	otp, err := s.otpSvc.Issue(ctx, email, purpose)
	if err != nil {
		return nil, err
	}

	return &domain.OTPIssued{
		Email:     email,
		Purpose:   purpose,
		IsNewUser: user == nil,
		ExpiresAt: otp.ExpiresAt,
	}, nil
}

// VerifyOTPLogin implements domain.AuthService. This path is login-only; a
// code for an unknown email must go through registration instead.
func (s *AuthServiceImpl) VerifyOTPLogin(ctx context.Context, email, code string) (*domain.AuthResult, error) {
	user := s.userByEmail(ctx, email)
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	if _, err := s.otpSvc.Check(ctx, email, code, domain.PurposeLogin); err != nil {
		return nil, err
	}

	result, err := s.finishLogin(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.otpSvc.Consume(ctx, email, domain.PurposeLogin); err != nil {
		log.Warn().Err(err).Str("email", email).Msg("failed to delete consumed login code")
	}
	return result, nil
}

// VerifyRegisterOTP implements domain.AuthService. The code is validated but
// deliberately NOT consumed: it stays redeemable until the registration
// completes, so an abandoned browser between "email verified" and "profile
// completed" does not force re-verification.
func (s *AuthServiceImpl) VerifyRegisterOTP(ctx context.Context, email, code string) error {
	if user := s.userByEmail(ctx, email); user != nil {
		return domain.ErrEmailTaken
	}
	_, err := s.otpSvc.Check(ctx, email, code, domain.PurposeRegister)
	return err
}

// Register implements domain.AuthService
func (s *AuthServiceImpl) Register(ctx context.Context, email, username, password, avatar string) (*domain.AuthResult, error) {
	if !ValidateEmail(email) {
		return nil, domain.ErrInvalidEmail
	}
	// Registration constrains only the length; the stricter character-set
	// rule applies when a username is changed later.
	if n := utf8.RuneCountInString(username); n < 2 || n > 20 {
		return nil, domain.ErrInvalidUsername
	}
	if !ValidatePassword(password) {
		return nil, domain.ErrPasswordTooShort
	}

	if existing := s.userByEmail(ctx, email); existing != nil {
		return nil, domain.ErrEmailTaken
	}
	if existing, err := s.userRepo.FindByUsername(ctx, username); err == nil && existing != nil {
		return nil, domain.ErrUsernameTaken
	}

	hash, err := s.passwordSvc.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Avatar:       avatar,
		IsVerified:   true,
		LastLoginAt:  time.Now(),
	}

	// The unique indexes catch registrations that raced past the checks above.
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) || errors.Is(err, domain.ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	session := &domain.Session{UserID: user.ID, Email: user.Email}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := s.otpSvc.Consume(ctx, email, domain.PurposeRegister); err != nil {
		log.Warn().Err(err).Str("email", email).Msg("failed to delete register code")
	}

	return &domain.AuthResult{User: user, Session: session}, nil
}

// Logout implements domain.AuthService; deleting an absent session succeeds.
func (s *AuthServiceImpl) Logout(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Delete(ctx, sessionID)
}

// userByEmail treats any store failure as absence, per the store contract:
// unreadable state is empty state, never an internal error.
func (s *AuthServiceImpl) userByEmail(ctx context.Context, email string) *domain.User {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			log.Warn().Err(err).Str("email", email).Msg("user lookup failed, treating as absent")
		}
		return nil
	}
	return user
}

// finishLogin stamps last_login_at and opens a fresh session. Existing
// sessions for the user stay valid; concurrent sessions are allowed.
func (s *AuthServiceImpl) finishLogin(ctx context.Context, user *domain.User) (*domain.AuthResult, error) {
	now := time.Now()
	updated, err := s.userRepo.Update(ctx, user.ID, domain.UserPatch{LastLoginAt: &now})
	if err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}

	session := &domain.Session{UserID: updated.ID, Email: updated.Email}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &domain.AuthResult{User: updated, Session: session}, nil
}
