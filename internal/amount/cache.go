// internal/amount/cache.go
package amount

import (
	"context"
	"log/slog"
	"time"

	"card-assistant/internal/domain"
	"card-assistant/internal/page"
)

// CartCacheTTL is the freshness window for a snapshotted cart total.
const CartCacheTTL = 10 * time.Minute

// SnapshotCartAmount runs the passes against an intermediate cart view
// and persists the total for later checkout-step fallback. Cart views
// are visited often, so this is best-effort and never surfaces errors.
func (e *Estimator) SnapshotCartAmount(ctx context.Context, p *page.Page) {
	amt := e.EstimateOnce(p)
	if amt <= 0 {
		return
	}
	err := e.store.SaveCartAmount(ctx, domain.CachedCartAmount{
		Amount:    amt,
		Timestamp: time.Now(),
		URL:       p.URL,
	})
	if err != nil {
		slog.Debug("cart amount not cached", "error", err)
		return
	}
	slog.Debug("cart amount cached", "amount", amt, "url", p.URL)
}

func (e *Estimator) freshCartAmount(ctx context.Context) float64 {
	cached := e.store.CartAmount(ctx)
	if cached == nil || cached.Amount <= 0 {
		return 0
	}
	if time.Since(cached.Timestamp) >= CartCacheTTL {
		return 0
	}
	return cached.Amount
}
