package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/you/accountsvc/domain"
)

// OTPServiceImpl implements domain.OTPService
type OTPServiceImpl struct {
	otpRepo domain.OTPRepository
	mailer  domain.Mailer
	ttl     time.Duration
}

// NewOTPService creates a new OTP service
func NewOTPService(otpRepo domain.OTPRepository, mailer domain.Mailer, ttl time.Duration) domain.OTPService {
	return &OTPServiceImpl{
		otpRepo: otpRepo,
		mailer:  mailer,
		ttl:     ttl,
	}
}

// Issue implements domain.OTPService. The new code supersedes any live code
// for the same (email, purpose). If the mail cannot be sent the stored code
// is removed again so the step has no effect at all.
func (s *OTPServiceImpl) Issue(ctx context.Context, email string, purpose domain.OTPPurpose) (*domain.OTPCode, error) {
	code, err := s.generateCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification code: %w", err)
	}

	otp := &domain.OTPCode{
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(s.ttl),
	}

	if err := s.otpRepo.Save(ctx, otp); err != nil {
		return nil, fmt.Errorf("failed to store verification code: %w", err)
	}

	if err := s.mailer.SendOTPCode(email, code, purpose); err != nil {
		if delErr := s.otpRepo.Delete(ctx, email, purpose); delErr != nil {
			log.Warn().Err(delErr).Str("email", email).Msg("failed to remove code after send failure")
		}
		return nil, errors.Join(domain.ErrMailDelivery, err)
	}

	return otp, nil
}

// Check implements domain.OTPService. It validates without consuming, which
// is what the register flow needs between email verification and profile
// completion. Store read failures degrade to "invalid".
func (s *OTPServiceImpl) Check(ctx context.Context, email, code string, purpose domain.OTPPurpose) (*domain.OTPCode, error) {
	otp, err := s.otpRepo.FindValid(ctx, email, code, purpose)
	if err != nil {
		if !errors.Is(err, domain.ErrOTPInvalid) {
			log.Warn().Err(err).Str("email", email).Msg("otp lookup failed, treating as invalid")
		}
		return nil, domain.ErrOTPInvalid
	}
	return otp, nil
}

// Consume implements domain.OTPService; deleting an already-consumed or
// absent key is not an error.
func (s *OTPServiceImpl) Consume(ctx context.Context, email string, purpose domain.OTPPurpose) error {
	return s.otpRepo.Delete(ctx, email, purpose)
}

// generateCode draws a 6-digit code uniformly from [100000, 999999], so the
// leading digit is never zero.
func (s *OTPServiceImpl) generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", 100000+n.Int64()), nil
}
