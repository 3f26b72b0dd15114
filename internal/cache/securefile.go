package cache

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

const saltSize = 16

// SecureFileStore is the secure tier: a single encrypted file holding a
// key/value map. The file layout is salt | nonce | AEAD ciphertext; the
// encryption key is derived from the device passphrase with scrypt.
type SecureFileStore struct {
	mu   sync.Mutex
	path string
	salt []byte
	key  []byte
}

// NewSecureFileStore opens or creates the encrypted store at path. The salt
// is read from an existing file so the same passphrase keeps working across
// restarts.
func NewSecureFileStore(path, passphrase string) (*SecureFileStore, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("secure store passphrase must not be empty")
	}

	salt := make([]byte, saltSize)
	data, err := os.ReadFile(path)
	switch {
	case err == nil && len(data) >= saltSize:
		copy(salt, data[:saltSize])
	case err == nil || os.IsNotExist(err):
		if _, err := rand.Read(salt); err != nil {
			return nil, fmt.Errorf("failed to generate salt: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to read secure store: %w", err)
	}

	key, err := scrypt.Key([]byte(passphrase), salt, 1<<15, 8, 1, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	s := &SecureFileStore{path: path, salt: salt, key: key}

	// Fail fast on a wrong passphrase instead of on the first Get.
	if err == nil && len(data) > saltSize {
		if _, err := s.load(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *SecureFileStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", err
	}
	value, ok := values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (s *SecureFileStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value
	return s.save(values)
}

func (s *SecureFileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	delete(values, key)
	return s.save(values)
}

func (s *SecureFileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read secure store: %w", err)
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	if len(data) < saltSize+aead.NonceSize() {
		return nil, fmt.Errorf("secure store file is truncated")
	}

	nonce := data[saltSize : saltSize+aead.NonceSize()]
	plaintext, err := aead.Open(nil, nonce, data[saltSize+aead.NonceSize():], nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt secure store: %w", err)
	}

	values := map[string]string{}
	if err := json.Unmarshal(plaintext, &values); err != nil {
		return nil, fmt.Errorf("failed to decode secure store: %w", err)
	}
	return values, nil
}

func (s *SecureFileStore) save(values map[string]string) error {
	plaintext, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode secure store: %w", err)
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	data := make([]byte, 0, saltSize+len(nonce)+len(plaintext)+aead.Overhead())
	data = append(data, s.salt...)
	data = append(data, nonce...)
	data = aead.Seal(data, nonce, plaintext, nil)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create secure store directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write secure store: %w", err)
	}
	return nil
}
