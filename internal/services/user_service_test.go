package services

import (
	"context"
	"errors"
	"testing"

	"github.com/you/accountsvc/domain"
	"github.com/you/accountsvc/internal/mocks"
)

func newUserServiceFixture(current *domain.User) (*mocks.MockUserRepository, domain.UserService) {
	userRepo := mocks.NewMockUserRepository()
	if current != nil {
		userRepo.FindByIDFunc = func(ctx context.Context, id string) (*domain.User, error) {
			if id == current.ID {
				u := *current
				return &u, nil
			}
			return nil, domain.ErrUserNotFound
		}
		userRepo.UpdateFunc = func(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
			u := *current
			if patch.Username != nil {
				u.Username = *patch.Username
			}
			if patch.Avatar != nil {
				u.Avatar = *patch.Avatar
			}
			return &u, nil
		}
	}
	return userRepo, NewUserService(userRepo, NewValidator(userRepo))
}

func TestUserServiceImpl_ProfileByUsername(t *testing.T) {
	ctx := context.Background()
	userRepo, svc := newUserServiceFixture(nil)
	userRepo.FindByUsernameFunc = func(ctx context.Context, username string) (*domain.User, error) {
		if username == "alice" {
			return &domain.User{ID: "user-1", Username: "alice", Avatar: "/a.png"}, nil
		}
		return nil, domain.ErrUserNotFound
	}

	user, err := svc.ProfileByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("ProfileByUsername() error = %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("user = %+v", user)
	}

	if _, err := svc.ProfileByUsername(ctx, "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
}

func TestUserServiceImpl_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	current := &domain.User{ID: "user-1", Email: "alice@example.com", Username: "alice", Avatar: "/a.png"}

	t.Run("username change", func(t *testing.T) {
		_, svc := newUserServiceFixture(current)
		updated, err := svc.UpdateProfile(ctx, "user-1", domain.ProfileUpdate{Username: "alice_2"})
		if err != nil {
			t.Fatalf("UpdateProfile() error = %v", err)
		}
		if updated.Username != "alice_2" {
			t.Errorf("username = %q", updated.Username)
		}
	})

	t.Run("avatar change", func(t *testing.T) {
		_, svc := newUserServiceFixture(current)
		updated, err := svc.UpdateProfile(ctx, "user-1", domain.ProfileUpdate{Avatar: "/b.png"})
		if err != nil {
			t.Fatalf("UpdateProfile() error = %v", err)
		}
		if updated.Avatar != "/b.png" {
			t.Errorf("avatar = %q", updated.Avatar)
		}
	})

	t.Run("rename enforces the character set", func(t *testing.T) {
		_, svc := newUserServiceFixture(current)
		if _, err := svc.UpdateProfile(ctx, "user-1", domain.ProfileUpdate{Username: "bad name"}); !errors.Is(err, domain.ErrInvalidUsername) {
			t.Errorf("error = %v, want ErrInvalidUsername", err)
		}
	})

	t.Run("rename to taken username", func(t *testing.T) {
		userRepo, svc := newUserServiceFixture(current)
		userRepo.FindByUsernameFunc = func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{ID: "user-2", Username: username}, nil
		}
		if _, err := svc.UpdateProfile(ctx, "user-1", domain.ProfileUpdate{Username: "held"}); !errors.Is(err, domain.ErrUsernameTaken) {
			t.Errorf("error = %v, want ErrUsernameTaken", err)
		}
	})

	t.Run("same username is not a change", func(t *testing.T) {
		_, svc := newUserServiceFixture(current)
		if _, err := svc.UpdateProfile(ctx, "user-1", domain.ProfileUpdate{Username: "alice"}); !errors.Is(err, domain.ErrNothingToUpdate) {
			t.Errorf("error = %v, want ErrNothingToUpdate", err)
		}
	})

	t.Run("empty update", func(t *testing.T) {
		_, svc := newUserServiceFixture(current)
		if _, err := svc.UpdateProfile(ctx, "user-1", domain.ProfileUpdate{}); !errors.Is(err, domain.ErrNothingToUpdate) {
			t.Errorf("error = %v, want ErrNothingToUpdate", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		_, svc := newUserServiceFixture(current)
		if _, err := svc.UpdateProfile(ctx, "ghost", domain.ProfileUpdate{Username: "alice_2"}); !errors.Is(err, domain.ErrUserNotFound) {
			t.Errorf("error = %v, want ErrUserNotFound", err)
		}
	})
}

func TestJanitor_Sweep(t *testing.T) {
	ctx := context.Background()
	otpRepo := mocks.NewMockOTPRepository()
	sessionRepo := mocks.NewMockSessionRepository()

	otpSwept, sessionSwept := false, false
	otpRepo.DeleteExpiredFunc = func(ctx context.Context) error {
		otpSwept = true
		return nil
	}
	sessionRepo.DeleteExpiredFunc = func(ctx context.Context) error {
		sessionSwept = true
		return nil
	}

	NewJanitor(otpRepo, sessionRepo, 0).Sweep(ctx)
	if !otpSwept || !sessionSwept {
		t.Errorf("sweep coverage: otp=%v session=%v", otpSwept, sessionSwept)
	}
}

func TestJanitor_SweepContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	otpRepo := mocks.NewMockOTPRepository()
	sessionRepo := mocks.NewMockSessionRepository()

	otpRepo.DeleteExpiredFunc = func(ctx context.Context) error {
		return errors.New("database is locked")
	}
	sessionSwept := false
	sessionRepo.DeleteExpiredFunc = func(ctx context.Context) error {
		sessionSwept = true
		return nil
	}

	NewJanitor(otpRepo, sessionRepo, 0).Sweep(ctx)
	if !sessionSwept {
		t.Error("session sweep skipped after code sweep failure")
	}
}
