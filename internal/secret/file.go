package secret

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStash is a [Stash] that keeps secrets in a YAML file
// readable only by the current user.
//
// It is meant for systems without a keyring, such as CI containers.
type FileStash struct {
	Path string // required

	mu sync.Mutex
}

var _ Stash = (*FileStash)(nil)

// fileSecrets maps service to key to secret.
type fileSecrets map[string]map[string]string

func (f *FileStash) read() (fileSecrets, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(fileSecrets), nil
		}
		return nil, fmt.Errorf("read secrets: %w", err)
	}

	secrets := make(fileSecrets)
	if err := yaml.Unmarshal(data, &secrets); err != nil {
		return nil, fmt.Errorf("parse %v: %w", f.Path, err)
	}
	return secrets, nil
}

func (f *FileStash) write(secrets fileSecrets) error {
	data, err := yaml.Marshal(secrets)
	if err != nil {
		return fmt.Errorf("marshal secrets: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("create secrets directory: %w", err)
	}
	if err := os.WriteFile(f.Path, data, 0o600); err != nil {
		return fmt.Errorf("write secrets: %w", err)
	}
	return nil
}

// SaveSecret stores a secret in the file.
func (f *FileStash) SaveSecret(service, key, secret string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	secrets, err := f.read()
	if err != nil {
		return err
	}
	if secrets[service] == nil {
		secrets[service] = make(map[string]string)
	}
	secrets[service][key] = secret
	return f.write(secrets)
}

// LoadSecret retrieves a secret from the file.
func (f *FileStash) LoadSecret(service, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	secrets, err := f.read()
	if err != nil {
		return "", err
	}
	secret, ok := secrets[service][key]
	if !ok {
		return "", ErrNotFound
	}
	return secret, nil
}

// DeleteSecret removes a secret from the file.
func (f *FileStash) DeleteSecret(service, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	secrets, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := secrets[service][key]; !ok {
		return nil
	}

	delete(secrets[service], key)
	if len(secrets[service]) == 0 {
		delete(secrets, service)
	}
	return f.write(secrets)
}
