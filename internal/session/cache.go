package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// TokenCache persists the refresh token between process runs, the
// browser-localStorage analog for this client. The file is owner-readable
// only.
type TokenCache struct {
	path string
}

// NewTokenCache builds a cache rooted at path. Parent directories are created
// on first Save.
func NewTokenCache(path string) *TokenCache {
	return &TokenCache{path: path}
}

type cachedSession struct {
	RefreshToken string `json:"refresh_token"`
}

// Load returns the persisted refresh token, or empty when none is stored.
func (c *TokenCache) Load() (string, error) {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read session cache: %w", err)
	}
	var stored cachedSession
	if err := json.Unmarshal(raw, &stored); err != nil {
		return "", fmt.Errorf("decode session cache: %w", err)
	}
	return stored.RefreshToken, nil
}

// Save writes the refresh token with 0600 permissions.
func (c *TokenCache) Save(refreshToken string) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("create session cache dir: %w", err)
	}
	payload, err := json.Marshal(cachedSession{RefreshToken: refreshToken})
	if err != nil {
		return fmt.Errorf("encode session cache: %w", err)
	}
	if err := os.WriteFile(c.path, payload, 0o600); err != nil {
		return fmt.Errorf("write session cache: %w", err)
	}
	return nil
}

// Clear removes the persisted token. Missing files are not an error.
func (c *TokenCache) Clear() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session cache: %w", err)
	}
	return nil
}
