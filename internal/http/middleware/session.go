package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/accountsvc/domain"
)

const (
	sessionCookieName = "session"

	ctxSessionKey = "session"
	ctxUserKey    = "user"
)

// SessionMW resolves the session cookie against the stores for protected routes
type SessionMW struct {
	sessionRepo domain.SessionRepository
	userRepo    domain.UserRepository
}

// NewSessionMW creates new session middleware
func NewSessionMW(sessionRepo domain.SessionRepository, userRepo domain.UserRepository) *SessionMW {
	return &SessionMW{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
	}
}

// RequireSession aborts with 401 unless the request carries a cookie that
// resolves to a live session AND an existing user. A session whose user
// record has vanished counts as an authentication failure, not a crash.
func (mw *SessionMW) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(sessionCookieName)
		if err != nil || sessionID == "" {
			abortUnauthenticated(c)
			return
		}

		session, err := mw.sessionRepo.FindValid(c.Request.Context(), sessionID)
		if err != nil || session == nil {
			abortUnauthenticated(c)
			return
		}

		user, err := mw.userRepo.FindByID(c.Request.Context(), session.UserID)
		if err != nil || user == nil {
			abortUnauthenticated(c)
			return
		}

		c.Set(ctxSessionKey, session)
		c.Set(ctxUserKey, user)
		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": "not logged in",
	})
}

// CurrentUser returns the authenticated user set by RequireSession, or nil.
func CurrentUser(c *gin.Context) *domain.User {
	if v, exists := c.Get(ctxUserKey); exists {
		if user, ok := v.(*domain.User); ok {
			return user
		}
	}
	return nil
}

// CurrentSession returns the session set by RequireSession, or nil.
func CurrentSession(c *gin.Context) *domain.Session {
	if v, exists := c.Get(ctxSessionKey); exists {
		if session, ok := v.(*domain.Session); ok {
			return session
		}
	}
	return nil
}
