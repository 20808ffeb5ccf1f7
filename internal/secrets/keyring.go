// Package secrets stores the JWT signing secret in the OS keychain,
// with a plain-file fallback for headless hosts that have no keyring
// daemon.
package secrets

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
)

const keySigningSecret = "jwt-signing-secret"

// ErrNotFound reports that no secret has been stored yet.
var ErrNotFound = keyring.ErrNotFound

// Store wraps the OS keychain with an optional file fallback.
type Store struct {
	service      string
	fallbackPath string
	mu           sync.Mutex
}

// NewStore creates a secret store under the given keychain service name.
func NewStore(serviceName, fallbackPath string) *Store {
	if strings.TrimSpace(serviceName) == "" {
		serviceName = "zoltaran-speaks"
	}
	return &Store{service: serviceName, fallbackPath: fallbackPath}
}

// SetSigningSecret stores the JWT signing secret.
func (s *Store) SetSigningSecret(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("secrets: signing secret is empty")
	}
	if err := keyring.Set(s.service, keySigningSecret, value); err == nil {
		return nil
	} else if !isKeyringUnavailable(err) {
		return fmt.Errorf("secrets: keyring set: %w", err)
	}
	return s.setFallback(keySigningSecret, value)
}

// SigningSecret returns the stored JWT signing secret.
func (s *Store) SigningSecret() (string, error) {
	val, err := keyring.Get(s.service, keySigningSecret)
	if err == nil {
		return val, nil
	}
	if !isKeyringUnavailable(err) && !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("secrets: keyring get: %w", err)
	}

	fallback, ferr := s.getFallback(keySigningSecret)
	if ferr == nil {
		return fallback, nil
	}
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	return "", ferr
}

// EnsureSigningSecret returns the stored secret, generating and storing
// a fresh random one on first use.
func (s *Store) EnsureSigningSecret() (string, error) {
	val, err := s.SigningSecret()
	if err == nil {
		return val, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("secrets: generate signing secret: %w", err)
	}
	generated := hex.EncodeToString(buf[:])
	if err := s.SetSigningSecret(generated); err != nil {
		return "", err
	}
	return generated, nil
}

// Delete removes the stored secret from both backends.
func (s *Store) Delete() error {
	err := keyring.Delete(s.service, keySigningSecret)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) && !isKeyringUnavailable(err) {
		return fmt.Errorf("secrets: keyring delete: %w", err)
	}
	return s.deleteFallback(keySigningSecret)
}

func isKeyringUnavailable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "secret service") ||
		strings.Contains(msg, "dbus") ||
		strings.Contains(msg, "no keychain") ||
		strings.Contains(msg, "keyring backend not available")
}

func (s *Store) setFallback(key, value string) error {
	if strings.TrimSpace(s.fallbackPath) == "" {
		return fmt.Errorf("secrets: keyring unavailable and no fallback path configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.readFallbackUnlocked()
	if err != nil {
		return err
	}
	data[key] = value
	return s.writeFallbackUnlocked(data)
}

func (s *Store) getFallback(key string) (string, error) {
	if strings.TrimSpace(s.fallbackPath) == "" {
		return "", fmt.Errorf("secrets: fallback path not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.readFallbackUnlocked()
	if err != nil {
		return "", err
	}
	val, ok := data[key]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

func (s *Store) deleteFallback(key string) error {
	if strings.TrimSpace(s.fallbackPath) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.readFallbackUnlocked()
	if err != nil {
		return err
	}
	delete(data, key)
	return s.writeFallbackUnlocked(data)
}

func (s *Store) readFallbackUnlocked() (map[string]string, error) {
	out := map[string]string{}
	raw, err := os.ReadFile(s.fallbackPath)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("secrets: read fallback file: %w", err)
	}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("secrets: decode fallback file: %w", err)
	}
	return out, nil
}

func (s *Store) writeFallbackUnlocked(data map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.fallbackPath), 0o700); err != nil {
		return fmt.Errorf("secrets: mkdir fallback dir: %w", err)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("secrets: encode fallback file: %w", err)
	}
	if err := os.WriteFile(s.fallbackPath, raw, 0o600); err != nil {
		return fmt.Errorf("secrets: write fallback file: %w", err)
	}
	return nil
}
