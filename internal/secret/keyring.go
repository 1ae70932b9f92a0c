package secret

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// _keyringPrefix is prepended to service names in the system keyring.
const _keyringPrefix = "bbs:"

// Keyring is a [Stash] backed by the system keyring:
// the macOS Keychain, the Secret Service on Linux,
// or the Windows Credential Manager.
type Keyring struct{}

var _ Stash = (*Keyring)(nil)

// SaveSecret stores a secret in the system keyring.
func (*Keyring) SaveSecret(service, key, secret string) error {
	if err := keyring.Set(_keyringPrefix+service, key, secret); err != nil {
		return fmt.Errorf("save secret: %w", err)
	}
	return nil
}

// LoadSecret retrieves a secret from the system keyring.
func (*Keyring) LoadSecret(service, key string) (string, error) {
	secret, err := keyring.Get(_keyringPrefix+service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("load secret: %w", err)
	}
	return secret, nil
}

// DeleteSecret removes a secret from the system keyring.
func (*Keyring) DeleteSecret(service, key string) error {
	if err := keyring.Delete(_keyringPrefix+service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("delete secret: %w", err)
	}
	return nil
}
