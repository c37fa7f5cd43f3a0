package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/you/accountsvc/domain"
)

// LocalAvatarStore implements domain.AvatarStore on the local filesystem.
type LocalAvatarStore struct {
	dir     string
	baseURL string
}

// NewLocalAvatarStore creates a disk-backed avatar store
func NewLocalAvatarStore(dir, baseURL string) domain.AvatarStore {
	return &LocalAvatarStore{dir: dir, baseURL: baseURL}
}

// Save implements domain.AvatarStore. The stored name embeds the owning user
// id and a timestamp so consecutive uploads never collide.
func (s *LocalAvatarStore) Save(userID, filename string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	ext := filepath.Ext(filename)
	name := fmt.Sprintf("%s_%d%s", userID, time.Now().UnixMilli(), ext)

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create avatar file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write avatar file: %w", err)
	}

	return s.baseURL + "/" + name, nil
}
