package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/you/accountsvc/domain"
	"github.com/you/accountsvc/internal/services"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "session"

// Login steps dispatched by the client-supplied step tag. The server keeps no
// step state of its own; legality is re-derived from the stores each call.
const (
	StepPasswordLogin     = "password-login"
	StepRequestOTP        = "request-otp"
	StepVerifyOTP         = "verify-otp"
	StepVerifyRegisterOTP = "verify-register-otp"
)

// AuthHandlers handles authentication HTTP requests
type AuthHandlers struct {
	authSvc       domain.AuthService
	sessionTTL    time.Duration
	secureCookies bool
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService, sessionTTL time.Duration, secureCookies bool) *AuthHandlers {
	return &AuthHandlers{
		authSvc:       authSvc,
		sessionTTL:    sessionTTL,
		secureCookies: secureCookies,
	}
}

// LoginRequest represents the login state-machine request
type LoginRequest struct {
	Email    string `json:"email"`
	Step     string `json:"step"`
	OTP      string `json:"otp,omitempty"`
	Password string `json:"password,omitempty"`
	Username string `json:"username,omitempty"`
}

// RegisterRequest represents the registration completion request
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Avatar   string `json:"avatar"`
}

// Login dispatches on the step tag
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if !services.ValidateEmail(req.Email) {
		fail(c, http.StatusBadRequest, "invalid email address")
		return
	}

	switch req.Step {
	case StepPasswordLogin:
		h.passwordLogin(c, req)
	case StepRequestOTP:
		h.requestOTP(c, req)
	case StepVerifyOTP:
		h.verifyOTP(c, req)
	case StepVerifyRegisterOTP:
		h.verifyRegisterOTP(c, req)
	default:
		fail(c, http.StatusBadRequest, "invalid request step")
	}
}

func (h *AuthHandlers) passwordLogin(c *gin.Context, req LoginRequest) {
	if req.Password == "" {
		fail(c, http.StatusBadRequest, "password is required")
		return
	}

	result, err := h.authSvc.PasswordLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			fail(c, http.StatusBadRequest, "user not found")
		case errors.Is(err, domain.ErrPasswordNotSet):
			fail(c, http.StatusBadRequest, "account has no password, use a verification code to log in")
		case errors.Is(err, domain.ErrInvalidCredentials):
			fail(c, http.StatusBadRequest, "incorrect password")
		default:
			fail(c, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.setSessionCookie(c, result.Session.ID)
	log.Info().Str("user_id", result.User.ID).Str("method", "password").Msg("login")
	ok(c, http.StatusOK, "login successful", gin.H{"user": publicUser(result.User)})
}

func (h *AuthHandlers) requestOTP(c *gin.Context, req LoginRequest) {
	issued, err := h.authSvc.RequestOTP(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrMailDelivery) {
			fail(c, http.StatusInternalServerError, "failed to send verification code, try again later")
			return
		}
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	ok(c, http.StatusOK, fmt.Sprintf("verification code sent to %s", req.Email), gin.H{
		"isNewUser": issued.IsNewUser,
		"purpose":   issued.Purpose,
	})
}

func (h *AuthHandlers) verifyOTP(c *gin.Context, req LoginRequest) {
	if req.OTP == "" {
		fail(c, http.StatusBadRequest, "verification code is required")
		return
	}

	result, err := h.authSvc.VerifyOTPLogin(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			fail(c, http.StatusBadRequest, "user not found, please register first")
		case errors.Is(err, domain.ErrOTPInvalid):
			fail(c, http.StatusBadRequest, "verification code invalid or expired")
		default:
			fail(c, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.setSessionCookie(c, result.Session.ID)
	log.Info().Str("user_id", result.User.ID).Str("method", "otp").Msg("login")
	ok(c, http.StatusOK, "login successful", gin.H{"user": publicUser(result.User)})
}

func (h *AuthHandlers) verifyRegisterOTP(c *gin.Context, req LoginRequest) {
	if req.OTP == "" {
		fail(c, http.StatusBadRequest, "verification code is required")
		return
	}

	err := h.authSvc.VerifyRegisterOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			fail(c, http.StatusBadRequest, "email already registered, please log in")
		case errors.Is(err, domain.ErrOTPInvalid):
			fail(c, http.StatusBadRequest, "verification code invalid or expired")
		default:
			fail(c, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	ok(c, http.StatusOK, "verification code accepted", nil)
}

// Register completes account creation after the email was verified.
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Username == "" || req.Password == "" || req.Avatar == "" {
		fail(c, http.StatusBadRequest, "all fields are required")
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), req.Email, req.Username, req.Password, req.Avatar)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidEmail):
			fail(c, http.StatusBadRequest, "invalid email address")
		case errors.Is(err, domain.ErrInvalidUsername):
			fail(c, http.StatusBadRequest, "username must be 2-20 characters")
		case errors.Is(err, domain.ErrPasswordTooShort):
			fail(c, http.StatusBadRequest, "password must be at least 6 characters")
		case errors.Is(err, domain.ErrEmailTaken):
			fail(c, http.StatusBadRequest, "email already registered")
		case errors.Is(err, domain.ErrUsernameTaken):
			fail(c, http.StatusBadRequest, "username already taken")
		default:
			fail(c, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.setSessionCookie(c, result.Session.ID)
	log.Info().Str("user_id", result.User.ID).Str("email", result.User.Email).Msg("registered")
	ok(c, http.StatusOK, "registration successful", gin.H{"user": fullUser(result.User)})
}

// Logout deletes the server-side session and clears the cookie. Both steps
// run no matter what; a second logout with a dead cookie still succeeds.
func (h *AuthHandlers) Logout(c *gin.Context) {
	if sessionID, err := c.Cookie(SessionCookieName); err == nil && sessionID != "" {
		if err := h.authSvc.Logout(c.Request.Context(), sessionID); err != nil {
			log.Warn().Err(err).Msg("failed to delete session on logout")
		}
	}

	h.clearSessionCookie(c)
	ok(c, http.StatusOK, "logged out", nil)
}

func (h *AuthHandlers) setSessionCookie(c *gin.Context, sessionID string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, sessionID, int(h.sessionTTL.Seconds()), "/", "", h.secureCookies, true)
}

func (h *AuthHandlers) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", h.secureCookies, true)
}

// publicUser is the minimal payload returned on login.
func publicUser(u *domain.User) gin.H {
	return gin.H{
		"id":       u.ID,
		"email":    u.Email,
		"username": u.Username,
		"avatar":   u.Avatar,
	}
}

// fullUser is the payload returned on registration and /user/me.
func fullUser(u *domain.User) gin.H {
	return gin.H{
		"id":          u.ID,
		"email":       u.Email,
		"username":    u.Username,
		"avatar":      u.Avatar,
		"createdAt":   u.CreatedAt,
		"lastLoginAt": u.LastLoginAt,
		"isVerified":  u.IsVerified,
	}
}
