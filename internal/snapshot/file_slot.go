package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrSlotLocked is returned when another process already owns the slot.
var ErrSlotLocked = errors.New("snapshot slot is locked by another process")

// FileSlot keeps the blob in a single file. The file is replaced atomically
// on every save and a sibling lock file is held exclusively while the slot
// is open.
type FileSlot struct {
	path string

	mu   sync.Mutex
	lock *os.File
}

// OpenFileSlot takes ownership of the slot at path, creating its directory
// if needed.
func OpenFileSlot(path string) (*FileSlot, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create slot directory: %w", err)
	}

	lock, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open slot lock: %w", err)
	}
	if err := lockFile(lock); err != nil {
		lock.Close()
		return nil, err
	}

	return &FileSlot{path: path, lock: lock}, nil
}

func (s *FileSlot) Load() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read slot: %w", err)
	}
	return data, nil
}

func (s *FileSlot) Save(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write slot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace slot: %w", err)
	}
	return nil
}

// Close releases the lock. It is safe to call more than once.
func (s *FileSlot) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lock == nil {
		return nil
	}
	unlockErr := unlockFile(s.lock)
	closeErr := s.lock.Close()
	s.lock = nil
	if unlockErr != nil {
		return fmt.Errorf("failed to unlock slot: %w", unlockErr)
	}
	return closeErr
}
