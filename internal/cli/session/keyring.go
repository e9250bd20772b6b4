package session

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "folio-cli"

// KeyringStore keeps tokens in the OS keychain/credential manager
type KeyringStore struct{}

func keyringKey(server string) string {
	return fmt.Sprintf("jwt-%s", server)
}

// SaveToken persists the token in the keychain
func (KeyringStore) SaveToken(server, token string) error {
	if err := keyring.Set(keyringService, keyringKey(server), token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// LoadToken retrieves the token from the keychain
func (KeyringStore) LoadToken(server string) (string, error) {
	token, err := keyring.Get(keyringService, keyringKey(server))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// DeleteToken removes the token from the keychain
func (KeyringStore) DeleteToken(server string) error {
	if err := keyring.Delete(keyringService, keyringKey(server)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
