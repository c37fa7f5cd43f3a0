package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/you/accountsvc/domain"
	"github.com/you/accountsvc/internal/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(authSvc domain.AuthService) *gin.Engine {
	h := NewAuthHandlers(authSvc, 7*24*time.Hour, false)
	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.POST("/auth/register", h.Register)
	r.POST("/auth/logout", h.Logout)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return resp
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == SessionCookieName {
			return cookie
		}
	}
	return nil
}

func sampleResult() *domain.AuthResult {
	return &domain.AuthResult{
		User: &domain.User{
			ID:       "user-1",
			Email:    "alice@example.com",
			Username: "alice",
			Avatar:   "/a.png",
		},
		Session: &domain.Session{
			ID:        "token-abc",
			UserID:    "user-1",
			Email:     "alice@example.com",
			ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
		},
	}
}

func TestAuthHandlers_Login_RequestValidation(t *testing.T) {
	r := newAuthRouter(mocks.NewMockAuthService())

	tests := []struct {
		name    string
		body    any
		status  int
		message string
	}{
		{
			name:    "malformed json",
			body:    nil,
			status:  http.StatusBadRequest,
			message: "invalid request body",
		},
		{
			name:    "invalid email",
			body:    LoginRequest{Email: "not-an-email", Step: StepPasswordLogin, Password: "x"},
			status:  http.StatusBadRequest,
			message: "invalid email address",
		},
		{
			name:    "unknown step",
			body:    LoginRequest{Email: "a@example.com", Step: "frobnicate"},
			status:  http.StatusBadRequest,
			message: "invalid request step",
		},
		{
			name:    "password step without password",
			body:    LoginRequest{Email: "a@example.com", Step: StepPasswordLogin},
			status:  http.StatusBadRequest,
			message: "password is required",
		},
		{
			name:    "verify step without code",
			body:    LoginRequest{Email: "a@example.com", Step: StepVerifyOTP},
			status:  http.StatusBadRequest,
			message: "verification code is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w *httptest.ResponseRecorder
			if tt.body == nil {
				req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("{not json"))
				w = httptest.NewRecorder()
				r.ServeHTTP(w, req)
			} else {
				w = postJSON(t, r, "/auth/login", tt.body)
			}

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			resp := decodeEnvelope(t, w)
			if resp.Success || resp.Message != tt.message {
				t.Errorf("envelope = %+v, want failure %q", resp, tt.message)
			}
		})
	}
}

func TestAuthHandlers_PasswordLogin(t *testing.T) {
	t.Run("success sets cookie", func(t *testing.T) {
		authSvc := mocks.NewMockAuthService()
		authSvc.PasswordLoginFunc = func(ctx context.Context, email, password string) (*domain.AuthResult, error) {
			return sampleResult(), nil
		}
		r := newAuthRouter(authSvc)

		w := postJSON(t, r, "/auth/login", LoginRequest{
			Email: "alice@example.com", Step: StepPasswordLogin, Password: "secret123",
		})

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		resp := decodeEnvelope(t, w)
		if !resp.Success || resp.Message != "login successful" {
			t.Errorf("envelope = %+v", resp)
		}

		cookie := sessionCookie(w)
		if cookie == nil {
			t.Fatal("no session cookie set")
		}
		if cookie.Value != "token-abc" || !cookie.HttpOnly || cookie.Path != "/" {
			t.Errorf("cookie = %+v", cookie)
		}
		if cookie.MaxAge != int((7 * 24 * time.Hour).Seconds()) {
			t.Errorf("cookie maxAge = %d, want session ttl in seconds", cookie.MaxAge)
		}
	})

	t.Run("error mapping", func(t *testing.T) {
		tests := []struct {
			name    string
			err     error
			status  int
			message string
		}{
			{"unknown user", domain.ErrUserNotFound, http.StatusBadRequest, "user not found"},
			{"no password set", domain.ErrPasswordNotSet, http.StatusBadRequest, "account has no password, use a verification code to log in"},
			{"wrong password", domain.ErrInvalidCredentials, http.StatusBadRequest, "incorrect password"},
			{"store failure", context.DeadlineExceeded, http.StatusInternalServerError, "internal server error"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				authSvc := mocks.NewMockAuthService()
				authSvc.PasswordLoginFunc = func(ctx context.Context, email, password string) (*domain.AuthResult, error) {
					return nil, tt.err
				}
				r := newAuthRouter(authSvc)

				w := postJSON(t, r, "/auth/login", LoginRequest{
					Email: "alice@example.com", Step: StepPasswordLogin, Password: "secret123",
				})

				if w.Code != tt.status {
					t.Errorf("status = %d, want %d", w.Code, tt.status)
				}
				resp := decodeEnvelope(t, w)
				if resp.Success || resp.Message != tt.message {
					t.Errorf("envelope = %+v, want %q", resp, tt.message)
				}
				if sessionCookie(w) != nil {
					t.Error("failed login set a cookie")
				}
			})
		}
	})
}

func TestAuthHandlers_RequestOTP(t *testing.T) {
	t.Run("reports purpose and novelty", func(t *testing.T) {
		authSvc := mocks.NewMockAuthService()
		authSvc.RequestOTPFunc = func(ctx context.Context, email string) (*domain.OTPIssued, error) {
			return &domain.OTPIssued{Email: email, Purpose: domain.PurposeRegister, IsNewUser: true}, nil
		}
		r := newAuthRouter(authSvc)

		w := postJSON(t, r, "/auth/login", LoginRequest{Email: "new@example.com", Step: StepRequestOTP})

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		resp := decodeEnvelope(t, w)
		if !resp.Success || resp.Message != "verification code sent to new@example.com" {
			t.Errorf("envelope = %+v", resp)
		}
		data, _ := resp.Data.(map[string]any)
		if data["isNewUser"] != true || data["purpose"] != "register" {
			t.Errorf("data = %+v", data)
		}
	})

	t.Run("delivery failure", func(t *testing.T) {
		authSvc := mocks.NewMockAuthService()
		authSvc.RequestOTPFunc = func(ctx context.Context, email string) (*domain.OTPIssued, error) {
			return nil, domain.ErrMailDelivery
		}
		r := newAuthRouter(authSvc)

		w := postJSON(t, r, "/auth/login", LoginRequest{Email: "new@example.com", Step: StepRequestOTP})

		if w.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", w.Code)
		}
		resp := decodeEnvelope(t, w)
		if resp.Success || resp.Message != "failed to send verification code, try again later" {
			t.Errorf("envelope = %+v", resp)
		}
	})
}

func TestAuthHandlers_VerifyOTP(t *testing.T) {
	t.Run("success sets cookie", func(t *testing.T) {
		authSvc := mocks.NewMockAuthService()
		authSvc.VerifyOTPLoginFunc = func(ctx context.Context, email, code string) (*domain.AuthResult, error) {
			if code != "123456" {
				return nil, domain.ErrOTPInvalid
			}
			return sampleResult(), nil
		}
		r := newAuthRouter(authSvc)

		w := postJSON(t, r, "/auth/login", LoginRequest{
			Email: "alice@example.com", Step: StepVerifyOTP, OTP: "123456",
		})

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		if cookie := sessionCookie(w); cookie == nil || cookie.Value != "token-abc" {
			t.Errorf("cookie = %+v", cookie)
		}
	})

	t.Run("invalid code", func(t *testing.T) {
		r := newAuthRouter(mocks.NewMockAuthService())

		w := postJSON(t, r, "/auth/login", LoginRequest{
			Email: "alice@example.com", Step: StepVerifyOTP, OTP: "999999",
		})

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
		resp := decodeEnvelope(t, w)
		if resp.Message != "verification code invalid or expired" {
			t.Errorf("message = %q", resp.Message)
		}
	})

	t.Run("unknown user directed to register", func(t *testing.T) {
		authSvc := mocks.NewMockAuthService()
		authSvc.VerifyOTPLoginFunc = func(ctx context.Context, email, code string) (*domain.AuthResult, error) {
			return nil, domain.ErrUserNotFound
		}
		r := newAuthRouter(authSvc)

		w := postJSON(t, r, "/auth/login", LoginRequest{
			Email: "ghost@example.com", Step: StepVerifyOTP, OTP: "123456",
		})

		resp := decodeEnvelope(t, w)
		if w.Code != http.StatusBadRequest || resp.Message != "user not found, please register first" {
			t.Errorf("status = %d, message = %q", w.Code, resp.Message)
		}
	})
}

func TestAuthHandlers_VerifyRegisterOTP(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"accepted", nil, http.StatusOK, "verification code accepted"},
		{"email taken", domain.ErrEmailTaken, http.StatusBadRequest, "email already registered, please log in"},
		{"invalid code", domain.ErrOTPInvalid, http.StatusBadRequest, "verification code invalid or expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authSvc := mocks.NewMockAuthService()
			authSvc.VerifyRegisterOTPFunc = func(ctx context.Context, email, code string) error {
				return tt.err
			}
			r := newAuthRouter(authSvc)

			w := postJSON(t, r, "/auth/login", LoginRequest{
				Email: "new@example.com", Step: StepVerifyRegisterOTP, OTP: "123456",
			})

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			resp := decodeEnvelope(t, w)
			if resp.Message != tt.message {
				t.Errorf("message = %q, want %q", resp.Message, tt.message)
			}
			// Verification never opens a session.
			if sessionCookie(w) != nil {
				t.Error("verify step set a cookie")
			}
		})
	}
}

func TestAuthHandlers_Register(t *testing.T) {
	validReq := RegisterRequest{
		Email: "new@example.com", Username: "newbie", Password: "secret123", Avatar: "/a.png",
	}

	t.Run("success", func(t *testing.T) {
		authSvc := mocks.NewMockAuthService()
		authSvc.RegisterFunc = func(ctx context.Context, email, username, password, avatar string) (*domain.AuthResult, error) {
			result := sampleResult()
			result.User.Email = email
			result.User.Username = username
			result.User.IsVerified = true
			return result, nil
		}
		r := newAuthRouter(authSvc)

		w := postJSON(t, r, "/auth/register", validReq)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		resp := decodeEnvelope(t, w)
		if !resp.Success || resp.Message != "registration successful" {
			t.Errorf("envelope = %+v", resp)
		}
		data, _ := resp.Data.(map[string]any)
		user, _ := data["user"].(map[string]any)
		if user["username"] != "newbie" || user["isVerified"] != true {
			t.Errorf("user payload = %+v", user)
		}
		if cookie := sessionCookie(w); cookie == nil || cookie.Value != "token-abc" {
			t.Errorf("cookie = %+v", cookie)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		r := newAuthRouter(mocks.NewMockAuthService())
		for _, body := range []RegisterRequest{
			{Username: "newbie", Password: "secret123", Avatar: "/a.png"},
			{Email: "new@example.com", Password: "secret123", Avatar: "/a.png"},
			{Email: "new@example.com", Username: "newbie", Avatar: "/a.png"},
			{Email: "new@example.com", Username: "newbie", Password: "secret123"},
		} {
			w := postJSON(t, r, "/auth/register", body)
			resp := decodeEnvelope(t, w)
			if w.Code != http.StatusBadRequest || resp.Message != "all fields are required" {
				t.Errorf("body %+v: status = %d, message = %q", body, w.Code, resp.Message)
			}
		}
	})

	t.Run("error mapping", func(t *testing.T) {
		tests := []struct {
			name    string
			err     error
			status  int
			message string
		}{
			{"invalid email", domain.ErrInvalidEmail, http.StatusBadRequest, "invalid email address"},
			{"invalid username", domain.ErrInvalidUsername, http.StatusBadRequest, "username must be 2-20 characters"},
			{"short password", domain.ErrPasswordTooShort, http.StatusBadRequest, "password must be at least 6 characters"},
			{"email taken", domain.ErrEmailTaken, http.StatusBadRequest, "email already registered"},
			{"username taken", domain.ErrUsernameTaken, http.StatusBadRequest, "username already taken"},
			{"store failure", context.DeadlineExceeded, http.StatusInternalServerError, "internal server error"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				authSvc := mocks.NewMockAuthService()
				authSvc.RegisterFunc = func(ctx context.Context, email, username, password, avatar string) (*domain.AuthResult, error) {
					return nil, tt.err
				}
				r := newAuthRouter(authSvc)

				w := postJSON(t, r, "/auth/register", validReq)
				resp := decodeEnvelope(t, w)
				if w.Code != tt.status || resp.Message != tt.message {
					t.Errorf("status = %d message = %q, want %d %q", w.Code, resp.Message, tt.status, tt.message)
				}
			})
		}
	})
}

func TestAuthHandlers_Logout(t *testing.T) {
	t.Run("deletes session and clears cookie", func(t *testing.T) {
		authSvc := mocks.NewMockAuthService()
		var deleted string
		authSvc.LogoutFunc = func(ctx context.Context, sessionID string) error {
			deleted = sessionID
			return nil
		}
		r := newAuthRouter(authSvc)

		w := postJSON(t, r, "/auth/logout", gin.H{}, &http.Cookie{Name: SessionCookieName, Value: "token-abc"})

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if deleted != "token-abc" {
			t.Errorf("deleted = %q", deleted)
		}
		cookie := sessionCookie(w)
		if cookie == nil || cookie.Value != "" || cookie.MaxAge >= 0 {
			t.Errorf("cookie not cleared: %+v", cookie)
		}
	})

	t.Run("idempotent without cookie", func(t *testing.T) {
		r := newAuthRouter(mocks.NewMockAuthService())

		for i := 0; i < 2; i++ {
			w := postJSON(t, r, "/auth/logout", gin.H{})
			resp := decodeEnvelope(t, w)
			if w.Code != http.StatusOK || !resp.Success || resp.Message != "logged out" {
				t.Errorf("logout %d: status = %d, envelope = %+v", i, w.Code, resp)
			}
		}
	})

	t.Run("server-side failure still clears the client", func(t *testing.T) {
		authSvc := mocks.NewMockAuthService()
		authSvc.LogoutFunc = func(ctx context.Context, sessionID string) error {
			return context.DeadlineExceeded
		}
		r := newAuthRouter(authSvc)

		w := postJSON(t, r, "/auth/logout", gin.H{}, &http.Cookie{Name: SessionCookieName, Value: "token-abc"})

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
		if cookie := sessionCookie(w); cookie == nil || cookie.MaxAge >= 0 {
			t.Errorf("cookie not cleared: %+v", cookie)
		}
	})
}
