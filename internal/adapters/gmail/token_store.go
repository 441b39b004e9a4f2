package gmail

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/99designs/keyring"
	"golang.org/x/oauth2"
)

// ErrTokenNotFound is returned when no token has been stored yet
var ErrTokenNotFound = errors.New("oauth token not found")

const keyringTokenKey = "gmail-oauth-token"

// TokenStore persists the OAuth token between runs
type TokenStore interface {
	Load() (*oauth2.Token, error)
	Save(token *oauth2.Token) error
}

// FileTokenStore keeps the token gob-encoded in a file readable only by the owner
type FileTokenStore struct {
	path string
}

// NewFileTokenStore creates a token store backed by path
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Load reads the token from disk
func (s *FileTokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	return decodeToken(data)
}

// Save writes the token with mode 0600
func (s *FileTokenStore) Save(token *oauth2.Token) error {
	data, err := encodeToken(token)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	// WriteFile keeps the mode of an existing file
	if err := os.Chmod(s.path, 0o600); err != nil {
		return fmt.Errorf("failed to restrict token file: %w", err)
	}
	return nil
}

// KeyringTokenStore keeps the token in the operating system keyring
type KeyringTokenStore struct {
	ring keyring.Keyring
}

// NewKeyringTokenStore opens the system keyring under service
func NewKeyringTokenStore(service string) (*KeyringTokenStore, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: service,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
		},
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewKeyringTokenStoreFromRing(ring), nil
}

// NewKeyringTokenStoreFromRing wraps an already opened keyring
func NewKeyringTokenStoreFromRing(ring keyring.Keyring) *KeyringTokenStore {
	return &KeyringTokenStore{ring: ring}
}

// Load reads the token from the keyring
func (s *KeyringTokenStore) Load() (*oauth2.Token, error) {
	item, err := s.ring.Get(keyringTokenKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("getting token from keyring: %w", err)
	}
	return decodeToken(item.Data)
}

// Save stores the token in the keyring
func (s *KeyringTokenStore) Save(token *oauth2.Token) error {
	data, err := encodeToken(token)
	if err != nil {
		return err
	}
	err = s.ring.Set(keyring.Item{
		Key:   keyringTokenKey,
		Data:  data,
		Label: "Gmail OAuth token",
	})
	if err != nil {
		return fmt.Errorf("setting token in keyring: %w", err)
	}
	return nil
}

func encodeToken(token *oauth2.Token) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(token); err != nil {
		return nil, fmt.Errorf("failed to encode token: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeToken(data []byte) (*oauth2.Token, error) {
	var token oauth2.Token
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return &token, nil
}
