package domain

import (
	"errors"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		expectedMsg string
	}{
		{name: "ErrUserNotFound", err: ErrUserNotFound, expectedMsg: "user not found"},
		{name: "ErrUserAlreadyExists", err: ErrUserAlreadyExists, expectedMsg: "user already exists"},
		{name: "ErrInvalidCredentials", err: ErrInvalidCredentials, expectedMsg: "invalid credentials"},
		{name: "ErrPasswordNotSet", err: ErrPasswordNotSet, expectedMsg: "account has no password"},
		{name: "ErrOTPInvalid", err: ErrOTPInvalid, expectedMsg: "verification code invalid or expired"},
		{name: "ErrSessionNotFound", err: ErrSessionNotFound, expectedMsg: "session not found"},
		{name: "ErrEmailTaken", err: ErrEmailTaken, expectedMsg: "email already registered"},
		{name: "ErrUsernameTaken", err: ErrUsernameTaken, expectedMsg: "username already taken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expectedMsg {
				t.Errorf("error message = %q, want %q", tt.err.Error(), tt.expectedMsg)
			}
		})
	}
}

func TestErrorWrapping(t *testing.T) {
	wrapped := errors.Join(errors.New("store failure"), ErrUserNotFound)
	if !errors.Is(wrapped, ErrUserNotFound) {
		t.Error("expected wrapped error to match ErrUserNotFound")
	}
	if errors.Is(ErrEmailTaken, ErrUsernameTaken) {
		t.Error("conflict errors must be distinguishable")
	}
}
