package vault

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"dcat-go/internal/snapshot"
)

// ErrNotFound is returned (wrapped) when a vault holds no item under the
// requested host and name.
var ErrNotFound = errors.New("not found in vault")

// MemoryVault keeps snapshots in memory, making it useful for testing.
// This implementation is safe for concurrent use.
type MemoryVault struct {
	name     string
	items    map[string][]byte // "hostID/name" -> data
	versions map[string]int64  // "hostID/name" -> version
	mu       sync.RWMutex
}

// NewMemoryVault creates a new in-memory vault with the given name.
func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:     name,
		items:    make(map[string][]byte),
		versions: make(map[string]int64),
	}
}

func itemKey(hostID, name string) string {
	return hostID + "/" + name
}

// PutMetadata stores a named item for a specific host.
func (m *MemoryVault) PutMetadata(hostID string, name string, r io.Reader, size int64, version int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}

	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := itemKey(hostID, name)
	m.items[key] = data
	m.versions[key] = version
	return nil
}

// GetMetadataVersion returns 0 if nothing has been stored for this host/name.
func (m *MemoryVault) GetMetadataVersion(hostID string, name string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.versions[itemKey(hostID, name)], nil
}

// GetMetadata retrieves a named item for a specific host.
func (m *MemoryVault) GetMetadata(hostID string, name string, w io.Writer) error {
	m.mu.RLock()
	data, ok := m.items[itemKey(hostID, name)]
	m.mu.RUnlock()

	if !ok {
		return fmt.Errorf("metadata %q for host %s: %w", name, hostID, ErrNotFound)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	return nil
}

// ValidateSetup always succeeds for in-memory vault.
func (m *MemoryVault) ValidateSetup() error {
	return nil
}

// Compile-time check that MemoryVault implements snapshot.Vault
var _ snapshot.Vault = (*MemoryVault)(nil)
