package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/you/accountsvc/domain"
)

// OTPRepositoryImpl implements domain.OTPRepository using GORM
type OTPRepositoryImpl struct {
	db *gorm.DB
}

// DBOTPCode represents the database model for OTPCode
type DBOTPCode struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"index:idx_otp_key;size:255"`
	Purpose   string    `gorm:"index:idx_otp_key;size:16"`
	Code      string    `gorm:"size:8"`
	ExpiresAt time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBOTPCode) TableName() string {
	return "otp_codes"
}

// NewOTPRepository creates a new OTP code repository
func NewOTPRepository(db *gorm.DB) domain.OTPRepository {
	return &OTPRepositoryImpl{db: db}
}

// Save implements domain.OTPRepository. Any live code for the same
// (email, purpose) is removed first, so at most one code per key exists.
func (r *OTPRepositoryImpl) Save(ctx context.Context, code *domain.OTPCode) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ? AND purpose = ?", code.Email, string(code.Purpose)).
			Delete(&DBOTPCode{}).Error; err != nil {
			return err
		}
		return tx.Create(&DBOTPCode{
			Email:     code.Email,
			Purpose:   string(code.Purpose),
			Code:      code.Code,
			ExpiresAt: code.ExpiresAt,
		}).Error
	})
}

// FindValid implements domain.OTPRepository. A match requires the exact code
// string, the matching purpose and an expiry strictly in the future.
func (r *OTPRepositoryImpl) FindValid(ctx context.Context, email, code string, purpose domain.OTPPurpose) (*domain.OTPCode, error) {
	var row DBOTPCode
	err := r.db.WithContext(ctx).
		Where("email = ? AND code = ? AND purpose = ? AND expires_at > ?",
			email, code, string(purpose), time.Now()).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOTPInvalid
		}
		return nil, err
	}
	return &domain.OTPCode{
		Email:     row.Email,
		Code:      row.Code,
		Purpose:   domain.OTPPurpose(row.Purpose),
		ExpiresAt: row.ExpiresAt,
	}, nil
}

// Delete implements domain.OTPRepository; removing an absent key is not an error.
func (r *OTPRepositoryImpl) Delete(ctx context.Context, email string, purpose domain.OTPPurpose) error {
	return r.db.WithContext(ctx).
		Where("email = ? AND purpose = ?", email, string(purpose)).
		Delete(&DBOTPCode{}).Error
}

// DeleteExpired implements domain.OTPRepository
func (r *OTPRepositoryImpl) DeleteExpired(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&DBOTPCode{}).Error
}
