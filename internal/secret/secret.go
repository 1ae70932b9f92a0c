// Package secret stores credentials outside the project configuration.
package secret

import (
	"errors"
	"sync"
)

// ErrNotFound is returned by [Stash.LoadSecret]
// when there is no secret for the given service and key.
var ErrNotFound = errors.New("secret not found")

// Stash stores and retrieves secrets.
type Stash interface {
	// SaveSecret stores a secret, replacing any existing value.
	SaveSecret(service, key, secret string) error

	// LoadSecret retrieves a secret.
	// It returns ErrNotFound if the secret does not exist.
	LoadSecret(service, key string) (string, error)

	// DeleteSecret removes a secret.
	// It does nothing if the secret does not exist.
	DeleteSecret(service, key string) error
}

// MemoryStash is a [Stash] that holds secrets in memory.
// The zero value is ready to use.
type MemoryStash struct {
	mu      sync.Mutex
	secrets map[secretKey]string
}

var _ Stash = (*MemoryStash)(nil)

type secretKey struct{ service, key string }

// SaveSecret stores a secret in memory.
func (m *MemoryStash) SaveSecret(service, key, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.secrets == nil {
		m.secrets = make(map[secretKey]string)
	}
	m.secrets[secretKey{service, key}] = secret
	return nil
}

// LoadSecret retrieves a secret from memory.
func (m *MemoryStash) LoadSecret(service, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	secret, ok := m.secrets[secretKey{service, key}]
	if !ok {
		return "", ErrNotFound
	}
	return secret, nil
}

// DeleteSecret removes a secret from memory.
func (m *MemoryStash) DeleteSecret(service, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.secrets, secretKey{service, key})
	return nil
}
