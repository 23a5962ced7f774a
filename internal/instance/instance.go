package instance

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Manager hands out the identifier of this client installation.
type Manager struct{}

// NewManager creates a new instance manager
func NewManager() *Manager {
	return &Manager{}
}

// GetOrGenerateID returns existingID when it is set, otherwise a fresh
// random identifier. The caller is expected to store a generated id so the
// next run reuses it.
func (m *Manager) GetOrGenerateID(existingID string) (id string, generated bool, err error) {
	existingID = strings.TrimSpace(existingID)
	if existingID != "" {
		if err := validateID(existingID); err != nil {
			return "", false, err
		}
		return existingID, false, nil
	}

	newUUID, err := uuid.NewRandom()
	if err != nil {
		return "", false, fmt.Errorf("failed to generate instance id: %w", err)
	}
	return newUUID.String(), true, nil
}

// SlotKey is the snapshot slot name owned by the instance.
func SlotKey(id string) string {
	return "timer:" + id
}

// Ids end up inside slot keys and file names.
func validateID(id string) error {
	if len(id) > 64 {
		return fmt.Errorf("instance id too long: %d characters", len(id))
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			return fmt.Errorf("instance id %q contains invalid character %q", id, r)
		}
	}
	return nil
}
