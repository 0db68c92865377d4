// internal/storage/store.go
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"card-assistant/internal/domain"
)

// Store is the typed layer over the KV contract.
//
// Reads never fail: a torn-down bridge or a malformed stored value is
// treated the same as an absent key and degrades to an empty default,
// so no pipeline step ever has to handle a storage error.
type Store struct {
	kv KV
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

func (s *Store) getJSON(ctx context.Context, key string, out any) bool {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Warn("storage read degraded to default", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		slog.Warn("malformed stored value, using default", "key", key, "error", err)
		return false
	}
	return true
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Cards returns the stored cards. Cards stored under the legacy
// creditCards key are migrated on first read.
func (s *Store) Cards(ctx context.Context) []domain.Card {
	var cards []domain.Card
	if s.getJSON(ctx, KeyCards, &cards) && len(cards) > 0 {
		return cards
	}

	var legacy []domain.Card
	if s.getJSON(ctx, KeyCardsLegacy, &legacy) && len(legacy) > 0 {
		if err := s.setJSON(ctx, KeyCards, legacy); err == nil {
			_ = s.kv.Remove(ctx, KeyCardsLegacy)
		}
		return legacy
	}

	return nil
}

// SaveCard inserts or replaces a card by id.
func (s *Store) SaveCard(ctx context.Context, card domain.Card) error {
	cards := s.Cards(ctx)
	replaced := false
	for i := range cards {
		if cards[i].ID == card.ID {
			cards[i] = card
			replaced = true
			break
		}
	}
	if !replaced {
		cards = append(cards, card)
	}
	return s.setJSON(ctx, KeyCards, cards)
}

func (s *Store) DeleteCard(ctx context.Context, cardID string) error {
	cards := s.Cards(ctx)
	kept := cards[:0]
	for _, c := range cards {
		if c.ID != cardID {
			kept = append(kept, c)
		}
	}
	return s.setJSON(ctx, KeyCards, kept)
}

func (s *Store) Transactions(ctx context.Context) []domain.Transaction {
	var txs []domain.Transaction
	s.getJSON(ctx, KeyTransactions, &txs)
	return txs
}

// SaveTransaction appends a transaction, keeping only the most recent
// 1000 to bound storage growth.
func (s *Store) SaveTransaction(ctx context.Context, tx domain.Transaction) error {
	txs := append(s.Transactions(ctx), tx)
	if len(txs) > maxStoredTransacts {
		txs = txs[len(txs)-maxStoredTransacts:]
	}
	return s.setJSON(ctx, KeyTransactions, txs)
}

func (s *Store) Settings(ctx context.Context) domain.Settings {
	settings := domain.DefaultSettings()
	s.getJSON(ctx, KeySettings, &settings)
	return settings
}

func (s *Store) SaveSettings(ctx context.Context, settings domain.Settings) error {
	return s.setJSON(ctx, KeySettings, settings)
}

// CartAmount returns the last snapshotted cart total, or nil when none
// was ever written. Freshness is the caller's concern.
func (s *Store) CartAmount(ctx context.Context) *domain.CachedCartAmount {
	var cached domain.CachedCartAmount
	if !s.getJSON(ctx, KeyLastCartAmount, &cached) {
		return nil
	}
	return &cached
}

func (s *Store) SaveCartAmount(ctx context.Context, cached domain.CachedCartAmount) error {
	return s.setJSON(ctx, KeyLastCartAmount, cached)
}

// UpdateCardCapUsage adds confirmed spend to the matching rule's cap.
// Called after a transaction is logged, never during estimation.
func (s *Store) UpdateCardCapUsage(ctx context.Context, cardID string, category domain.Category, amount float64) error {
	cards := s.Cards(ctx)
	for i := range cards {
		if cards[i].ID != cardID {
			continue
		}
		for j := range cards[i].RewardStructure {
			rule := &cards[i].RewardStructure[j]
			if rule.Category == category && rule.Cap != nil {
				rule.Cap.CurrentUsage += amount
				return s.setJSON(ctx, KeyCards, cards)
			}
		}
		return nil
	}
	return nil
}

// ResetCapUsage zeroes cap usage for every rule on the given period.
// Run at period boundaries by an external scheduler.
func (s *Store) ResetCapUsage(ctx context.Context, period domain.CapPeriod) error {
	cards := s.Cards(ctx)
	changed := false
	for i := range cards {
		for j := range cards[i].RewardStructure {
			rule := &cards[i].RewardStructure[j]
			if rule.Cap != nil && rule.Cap.Period == period {
				rule.Cap.CurrentUsage = 0
				changed = true
			}
		}
	}
	if !changed {
		return nil
	}
	return s.setJSON(ctx, KeyCards, cards)
}
