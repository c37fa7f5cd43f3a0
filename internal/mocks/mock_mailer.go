package mocks

import (
	"sync"

	"github.com/you/accountsvc/domain"
)

// SentMail records one delivered code for assertions.
type SentMail struct {
	To      string
	Code    string
	Purpose domain.OTPPurpose
}

// MockMailer implements domain.Mailer for testing and records every send.
type MockMailer struct {
	SendOTPCodeFunc func(to, code string, purpose domain.OTPPurpose) error

	mu   sync.Mutex
	Sent []SentMail
}

// NewMockMailer creates a new MockMailer with default behaviors
func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

// SendOTPCode delivers a verification code
func (m *MockMailer) SendOTPCode(to, code string, purpose domain.OTPPurpose) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, SentMail{To: to, Code: code, Purpose: purpose})
	m.mu.Unlock()

	if m.SendOTPCodeFunc != nil {
		return m.SendOTPCodeFunc(to, code, purpose)
	}
	return nil
}

// LastSent returns the most recent delivery, or nil.
func (m *MockMailer) LastSent() *SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return nil
	}
	last := m.Sent[len(m.Sent)-1]
	return &last
}
