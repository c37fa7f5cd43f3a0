package mocks

import "io"

// MockAvatarStore implements domain.AvatarStore for testing
type MockAvatarStore struct {
	SaveFunc func(userID, filename string, r io.Reader) (string, error)
}

// NewMockAvatarStore creates a new MockAvatarStore with default behaviors
func NewMockAvatarStore() *MockAvatarStore {
	return &MockAvatarStore{}
}

// Save persists an uploaded avatar and returns its URI
func (m *MockAvatarStore) Save(userID, filename string, r io.Reader) (string, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(userID, filename, r)
	}
	// Default behavior: discard the bytes, return a stable URI
	if r != nil {
		_, _ = io.Copy(io.Discard, r)
	}
	return "/uploads/avatars/" + userID + "_test.png", nil
}
