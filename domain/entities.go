package domain

import "time"

// OTPPurpose partitions verification codes so a code issued for one flow
// cannot be replayed in the other.
type OTPPurpose string

const (
	PurposeLogin    OTPPurpose = "login"
	PurposeRegister OTPPurpose = "register"
)

// User represents an account in the system
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string // empty for code-only accounts
	Avatar       string
	IsVerified   bool
	CreatedAt    time.Time
	LastLoginAt  time.Time
}

// HasPassword reports whether a password has ever been set for the account.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// UserPatch enumerates the mutable user fields for partial updates.
// Protected fields (id, email, created_at) have no patch slot on purpose.
type UserPatch struct {
	Username     *string
	Avatar       *string
	PasswordHash *string
	LastLoginAt  *time.Time
}

// IsEmpty reports whether the patch carries no changes.
func (p UserPatch) IsEmpty() bool {
	return p.Username == nil && p.Avatar == nil && p.PasswordHash == nil && p.LastLoginAt == nil
}

// OTPCode is an ephemeral email-verification code scoped by (email, purpose).
// At most one live code exists per key; saving a new one supersedes the old.
type OTPCode struct {
	Email     string
	Code      string
	Purpose   OTPPurpose
	ExpiresAt time.Time
}

// Session is server-held proof of authentication, referenced by an opaque
// bearer token carried in the "session" cookie.
type Session struct {
	ID        string
	UserID    string
	Email     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// AuthResult represents a successful authentication outcome
type AuthResult struct {
	User    *User
	Session *Session
}

// OTPIssued describes a freshly issued code for the request-otp step.
type OTPIssued struct {
	Email     string
	Purpose   OTPPurpose
	IsNewUser bool
	ExpiresAt time.Time
}

// ProfileUpdate carries the fields a user may change on their own profile.
type ProfileUpdate struct {
	Username string // empty means unchanged
	Avatar   string // URI from the upload collaborator; empty means unchanged
}
