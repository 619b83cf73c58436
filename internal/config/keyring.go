package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/quocvuong92/johnathan-agent/internal/constants"
)

// KeyringService is the keyring service the API key is stored under.
const KeyringService = constants.AppName

// ErrKeyNotFound indicates that no API key is stored in the keyring.
var ErrKeyNotFound = errors.New("API key not found in keyring")

// LoadAPIKey reads the API key from the system keyring.
func LoadAPIKey() (string, error) {
	secret, err := keyring.Get(KeyringService, EnvAPIKey)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("read API key from keyring: %w", err)
	}
	return secret, nil
}

// SaveAPIKey stores the API key in the system keyring.
func SaveAPIKey(key string) error {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return errors.New("API key cannot be empty")
	}
	if err := keyring.Set(KeyringService, EnvAPIKey, trimmed); err != nil {
		return fmt.Errorf("store API key in keyring: %w", err)
	}
	return nil
}

// DeleteAPIKey removes the API key from the system keyring.
func DeleteAPIKey() error {
	if err := keyring.Delete(KeyringService, EnvAPIKey); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrKeyNotFound
		}
		return fmt.Errorf("delete API key from keyring: %w", err)
	}
	return nil
}

// HasAPIKey reports whether an API key is stored in the keyring.
func HasAPIKey() bool {
	_, err := LoadAPIKey()
	return err == nil
}
