package cart

import "sync"

// MemoryStorage is an in-process Storage implementation. It backs carts that
// live only for the duration of a request, and deterministic tests.
type MemoryStorage struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryStorage returns an empty in-memory storage port.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Load returns the last saved payload, or nil when nothing was saved.
func (m *MemoryStorage) Load() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data, nil
}

// Save replaces the stored payload.
func (m *MemoryStorage) Save(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	return nil
}
