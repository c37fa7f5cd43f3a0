package domain

import (
	"context"
	"io"
)

// UserRepository defines user data access operations
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, id string, patch UserPatch) (*User, error)
}

// OTPRepository defines verification-code data access operations.
// Save replaces any live code sharing (email, purpose).
type OTPRepository interface {
	Save(ctx context.Context, code *OTPCode) error
	FindValid(ctx context.Context, email, code string, purpose OTPPurpose) (*OTPCode, error)
	Delete(ctx context.Context, email string, purpose OTPPurpose) error
	DeleteExpired(ctx context.Context) error
}

// SessionRepository defines session data access operations
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindValid(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteExpired(ctx context.Context) error
}

// AuthService defines the login/registration step dispatch
type AuthService interface {
	PasswordLogin(ctx context.Context, email, password string) (*AuthResult, error)
	RequestOTP(ctx context.Context, email string) (*OTPIssued, error)
	VerifyOTPLogin(ctx context.Context, email, code string) (*AuthResult, error)
	VerifyRegisterOTP(ctx context.Context, email, code string) error
	Register(ctx context.Context, email, username, password, avatar string) (*AuthResult, error)
	Logout(ctx context.Context, sessionID string) error
}

// OTPService defines code issuance and consumption
type OTPService interface {
	Issue(ctx context.Context, email string, purpose OTPPurpose) (*OTPCode, error)
	Check(ctx context.Context, email, code string, purpose OTPPurpose) (*OTPCode, error)
	Consume(ctx context.Context, email string, purpose OTPPurpose) error
}

// UserService defines profile lookup and self-service updates
type UserService interface {
	ProfileByUsername(ctx context.Context, username string) (*User, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*User, error)
}

// PasswordService defines password operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// Mailer defines the OTP delivery contract; transport details are out of scope
type Mailer interface {
	SendOTPCode(to, code string, purpose OTPPurpose) error
}

// AvatarStore persists uploaded avatar images and returns their public URI
type AvatarStore interface {
	Save(userID, filename string, r io.Reader) (string, error)
}
