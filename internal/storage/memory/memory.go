// internal/storage/memory/memory.go
package memory

import (
	"context"
	"sync"

	"card-assistant/internal/storage"
)

// KV is an in-process key-value store. Used in tests and for sessions
// running without a database.
type KV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func New() *KV {
	return &KV{data: make(map[string][]byte)}
}

func (k *KV) Get(ctx context.Context, key string) ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	raw, ok := k.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func (k *KV) Set(ctx context.Context, key string, value []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	k.data[key] = stored
	return nil
}

func (k *KV) Remove(ctx context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.data, key)
	return nil
}
