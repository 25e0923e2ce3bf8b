// Package credentials keeps the CLI's signed-in identity in the OS keyring.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
)

const service = "babycare"

var (
	// ErrNotFound is returned when no identity is stored for the server.
	ErrNotFound = errors.New("no stored session")
	// ErrKeyringUnavailable is returned when the OS keyring cannot be used.
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Store saves one identity per server URL.
type Store struct {
	server string
}

func NewStore(serverURL string) *Store {
	return &Store{server: serverURL}
}

func (s *Store) Save(identity *internal.Identity) error {
	if identity == nil || identity.Token == "" {
		return errors.New("identity has no token")
	}
	raw, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	if err := keyring.Set(service, s.server, string(raw)); err != nil {
		return fmt.Errorf("failed to store session in keyring: %w", err)
	}
	return nil
}

func (s *Store) Load() (*internal.Identity, error) {
	raw, err := keyring.Get(service, s.server)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	var identity internal.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return nil, fmt.Errorf("stored session is corrupt: %w", err)
	}
	return &identity, nil
}

// Clear removes the stored identity. A missing entry is not an error.
func (s *Store) Clear() error {
	err := keyring.Delete(service, s.server)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete session from keyring: %w", err)
	}
	return nil
}
