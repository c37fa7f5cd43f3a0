package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/you/accountsvc/domain"
	"github.com/you/accountsvc/internal/http/middleware"
)

const maxAvatarBytes = 5 * 1024 * 1024

var allowedAvatarTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// UserHandlers handles profile HTTP requests
type UserHandlers struct {
	userSvc     domain.UserService
	avatarStore domain.AvatarStore
}

// NewUserHandlers creates new user handlers
func NewUserHandlers(userSvc domain.UserService, avatarStore domain.AvatarStore) *UserHandlers {
	return &UserHandlers{
		userSvc:     userSvc,
		avatarStore: avatarStore,
	}
}

// Me returns the profile of the authenticated user.
func (h *UserHandlers) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		fail(c, http.StatusUnauthorized, "not logged in")
		return
	}

	ok(c, http.StatusOK, "profile fetched", gin.H{"user": gin.H{
		"id":          user.ID,
		"email":       user.Email,
		"username":    user.Username,
		"avatar":      user.Avatar,
		"createdAt":   user.CreatedAt,
		"lastLoginAt": user.LastLoginAt,
	}})
}

// ProfileLookupRequest represents a lookup-by-username request
type ProfileLookupRequest struct {
	Username string `json:"username"`
}

// ProfileLookup returns the public subset of another user's profile.
func (h *UserHandlers) ProfileLookup(c *gin.Context) {
	var req ProfileLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" {
		fail(c, http.StatusBadRequest, "username is required")
		return
	}

	user, err := h.userSvc.ProfileByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			fail(c, http.StatusNotFound, "user not found")
			return
		}
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	ok(c, http.StatusOK, "profile fetched", gin.H{"user": gin.H{
		"id":       user.ID,
		"username": user.Username,
		"avatar":   user.Avatar,
	}})
}

// UpdateProfile changes the authenticated user's username and/or avatar.
// The avatar arrives as a multipart file and is handed to the upload
// collaborator; only the resulting URI is stored on the user.
func (h *UserHandlers) UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		fail(c, http.StatusUnauthorized, "not logged in")
		return
	}

	update := domain.ProfileUpdate{Username: c.PostForm("username")}

	if file, err := c.FormFile("avatar"); err == nil && file.Size > 0 {
		if !allowedAvatarTypes[file.Header.Get("Content-Type")] {
			fail(c, http.StatusBadRequest, "avatar must be a JPG, PNG, GIF or WebP image")
			return
		}
		if file.Size > maxAvatarBytes {
			fail(c, http.StatusBadRequest, "avatar must be 5MB or smaller")
			return
		}

		src, err := file.Open()
		if err != nil {
			fail(c, http.StatusInternalServerError, "avatar upload failed")
			return
		}
		uri, err := h.avatarStore.Save(user.ID, file.Filename, src)
		src.Close()
		if err != nil {
			log.Error().Err(err).Str("user_id", user.ID).Msg("avatar upload failed")
			fail(c, http.StatusInternalServerError, "avatar upload failed")
			return
		}
		update.Avatar = uri
	}

	updated, err := h.userSvc.UpdateProfile(c.Request.Context(), user.ID, update)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidUsername):
			fail(c, http.StatusBadRequest, "username must be 2-20 characters: letters, digits, underscore or CJK")
		case errors.Is(err, domain.ErrUsernameTaken):
			fail(c, http.StatusBadRequest, "username already taken")
		case errors.Is(err, domain.ErrNothingToUpdate):
			fail(c, http.StatusBadRequest, "nothing to update")
		default:
			fail(c, http.StatusInternalServerError, "update failed")
		}
		return
	}

	ok(c, http.StatusOK, "profile updated", gin.H{"user": gin.H{
		"id":       updated.ID,
		"email":    updated.Email,
		"username": updated.Username,
		"avatar":   updated.Avatar,
	}})
}
