package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/you/accountsvc/domain"
)

// MinPasswordLength is enforced on registration; the client mirrors it.
const MinPasswordLength = 6

var (
	// Permissive single-@ check, intentionally not RFC-exhaustive.
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// 2-20 runes: CJK ideographs, ASCII letters, digits, underscore.
	usernamePattern = regexp.MustCompile(`^[\x{4e00}-\x{9fa5}A-Za-z0-9_]{2,20}$`)
)

// ValidateEmail reports whether s looks like an email address.
func ValidateEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidateUsername reports whether s is an acceptable username.
func ValidateUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// ValidatePassword reports whether s meets the minimum length.
func ValidatePassword(s string) bool {
	return utf8.RuneCountInString(s) >= MinPasswordLength
}

// Validator answers uniqueness questions that need the user store.
type Validator struct {
	userRepo domain.UserRepository
}

// NewValidator creates a new validator
func NewValidator(userRepo domain.UserRepository) *Validator {
	return &Validator{userRepo: userRepo}
}

// IsUsernameTaken reports whether any user other than excludeUserID holds the
// username. Store lookup failures count as "not taken"; the unique index is
// the backstop.
func (v *Validator) IsUsernameTaken(ctx context.Context, username, excludeUserID string) bool {
	user, err := v.userRepo.FindByUsername(ctx, username)
	if err != nil || user == nil {
		return false
	}
	return user.ID != excludeUserID
}

// UniqueUsername synthesizes a placeholder username from the email's local
// part, retrying with a counter suffix and falling back to a random suffix so
// it always terminates.
func (v *Validator) UniqueUsername(ctx context.Context, email string) string {
	localPart := strings.SplitN(email, "@", 2)[0]
	stamp := lastDigits(time.Now().UnixMilli(), 4)
	candidate := fmt.Sprintf("user_%s_%s", localPart, stamp)

	for counter := 1; v.IsUsernameTaken(ctx, candidate, ""); counter++ {
		if counter > 999 {
			return fmt.Sprintf("user_%d_%s", time.Now().UnixMilli(), randomSuffix())
		}
		candidate = fmt.Sprintf("user_%s_%s_%d", localPart, stamp, counter)
	}
	return candidate
}

func lastDigits(n int64, count int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) > count {
		return s[len(s)-count:]
	}
	return s
}

func randomSuffix() string {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano()%1000000)
	}
	return hex.EncodeToString(buf)
}
