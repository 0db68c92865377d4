// internal/storage/storage.go
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by KV.Get when the key has never been set.
var ErrNotFound = errors.New("storage: key not found")

// KV is the persisted key-value contract. Values are raw JSON.
// Writes are last-write-wins; concurrent writers are tolerated.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Keys of the persisted entries.
const (
	KeyCards           = "cards"
	KeyCardsLegacy     = "creditCards"
	KeyTransactions    = "transactions"
	KeySettings        = "settings"
	KeyLastCartAmount  = "lastCartAmount"
	maxStoredTransacts = 1000
)
