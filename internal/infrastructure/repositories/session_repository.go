package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/you/accountsvc/domain"
	"github.com/you/accountsvc/internal/infrastructure/auth"
)

// SessionRepositoryImpl implements domain.SessionRepository using GORM
type SessionRepositoryImpl struct {
	db  *gorm.DB
	ttl time.Duration
}

// DBSession represents the database model for Session
type DBSession struct {
	ID        string `gorm:"primaryKey;size:128"`
	UserID    string `gorm:"index;size:64"`
	Email     string `gorm:"size:255"`
	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBSession) TableName() string {
	return "sessions"
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *gorm.DB, ttl time.Duration) domain.SessionRepository {
	return &SessionRepositoryImpl{db: db, ttl: ttl}
}

// Create implements domain.SessionRepository. The store assigns the token
// and the expiry window; callers only supply the owning user and email.
func (r *SessionRepositoryImpl) Create(ctx context.Context, session *domain.Session) error {
	if session.ID == "" {
		token, err := auth.NewSessionToken()
		if err != nil {
			return err
		}
		session.ID = token
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if session.ExpiresAt.IsZero() {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}

	return r.db.WithContext(ctx).Create(&DBSession{
		ID:        session.ID,
		UserID:    session.UserID,
		Email:     session.Email,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	}).Error
}

// FindValid implements domain.SessionRepository. Expiry is lazy: a session
// whose expires_at has passed is simply never returned.
func (r *SessionRepositoryImpl) FindValid(ctx context.Context, sessionID string) (*domain.Session, error) {
	var row DBSession
	err := r.db.WithContext(ctx).
		Where("id = ? AND expires_at > ?", sessionID, time.Now()).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return &domain.Session{
		ID:        row.ID,
		UserID:    row.UserID,
		Email:     row.Email,
		CreatedAt: row.CreatedAt,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

// Delete implements domain.SessionRepository; idempotent.
func (r *SessionRepositoryImpl) Delete(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).Where("id = ?", sessionID).Delete(&DBSession{}).Error
}

// DeleteExpired implements domain.SessionRepository
func (r *SessionRepositoryImpl) DeleteExpired(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&DBSession{}).Error
}
