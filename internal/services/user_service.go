package services

import (
	"context"

	"github.com/you/accountsvc/domain"
)

// UserServiceImpl implements domain.UserService
type UserServiceImpl struct {
	userRepo  domain.UserRepository
	validator *Validator
}

// NewUserService creates a new user service
func NewUserService(userRepo domain.UserRepository, validator *Validator) domain.UserService {
	return &UserServiceImpl{
		userRepo:  userRepo,
		validator: validator,
	}
}

// ProfileByUsername implements domain.UserService
func (s *UserServiceImpl) ProfileByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.userRepo.FindByUsername(ctx, username)
}

// UpdateProfile implements domain.UserService. Only username and avatar are
// user-editable; an update that changes nothing is rejected.
func (s *UserServiceImpl) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error) {
	current, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var patch domain.UserPatch

	if update.Username != "" && update.Username != current.Username {
		if !ValidateUsername(update.Username) {
			return nil, domain.ErrInvalidUsername
		}
		if s.validator.IsUsernameTaken(ctx, update.Username, userID) {
			return nil, domain.ErrUsernameTaken
		}
		username := update.Username
		patch.Username = &username
	}

	if update.Avatar != "" {
		avatar := update.Avatar
		patch.Avatar = &avatar
	}

	if patch.IsEmpty() {
		return nil, domain.ErrNothingToUpdate
	}

	return s.userRepo.Update(ctx, userID, patch)
}
