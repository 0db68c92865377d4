// internal/savings/tracker.go
package savings

import (
	"context"
	"time"

	"card-assistant/internal/domain"
	"card-assistant/internal/storage"
)

// MonthStats holds one month's saved/missed reward totals.
type MonthStats struct {
	Month  string  `json:"month"` // e.g. "Apr 2026"
	Saved  float64 `json:"saved"`
	Missed float64 `json:"missed"`
}

type Stats struct {
	TotalSaved   float64      `json:"totalSaved"`
	TotalMissed  float64      `json:"totalMissed"`
	MonthlyStats []MonthStats `json:"monthlyStats"`
}

// Tracker aggregates logged transactions into savings figures. A
// transaction where the used card equals the recommended card counts
// its potential savings as saved, otherwise as missed.
type Tracker struct {
	store *storage.Store
	now   func() time.Time
}

func NewTracker(store *storage.Store) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// Log records a confirmed transaction and, when a used card is known,
// consumes cap for the spend.
func (t *Tracker) Log(ctx context.Context, tx domain.Transaction) error {
	if err := t.store.SaveTransaction(ctx, tx); err != nil {
		return err
	}
	if tx.CardUsed != "" {
		return t.store.UpdateCardCapUsage(ctx, tx.CardUsed, tx.Category, tx.Amount)
	}
	return nil
}

// Stats returns lifetime totals plus buckets for the last six months,
// oldest first.
func (t *Tracker) Stats(ctx context.Context) Stats {
	txs := t.store.Transactions(ctx)
	now := t.now()

	byMonth := make(map[string]*MonthStats)
	var stats Stats
	for _, tx := range txs {
		key := tx.Timestamp.Format("2006-01")
		bucket := byMonth[key]
		if bucket == nil {
			bucket = &MonthStats{}
			byMonth[key] = bucket
		}
		if tx.CardUsed != "" && tx.CardUsed == tx.RecommendedCard {
			stats.TotalSaved += tx.PotentialSavings
			bucket.Saved += tx.PotentialSavings
		} else {
			stats.TotalMissed += tx.PotentialSavings
			bucket.Missed += tx.PotentialSavings
		}
	}

	for i := 5; i >= 0; i-- {
		month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		entry := MonthStats{Month: month.Format("Jan 2006")}
		if bucket, ok := byMonth[month.Format("2006-01")]; ok {
			entry.Saved = bucket.Saved
			entry.Missed = bucket.Missed
		}
		stats.MonthlyStats = append(stats.MonthlyStats, entry)
	}
	return stats
}

// CurrentMonth returns this month's saved and missed totals.
func (t *Tracker) CurrentMonth(ctx context.Context) (saved, missed float64) {
	now := t.now()
	for _, tx := range t.store.Transactions(ctx) {
		if tx.Timestamp.Year() != now.Year() || tx.Timestamp.Month() != now.Month() {
			continue
		}
		if tx.CardUsed != "" && tx.CardUsed == tx.RecommendedCard {
			saved += tx.PotentialSavings
		} else {
			missed += tx.PotentialSavings
		}
	}
	return saved, missed
}
