// internal/amount/retry.go
package amount

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"card-assistant/internal/merchant"
	"card-assistant/internal/page"
)

var errNoAmount = errors.New("no plausible amount on page")

// Source yields the freshest snapshot of the monitored page. Totals
// that render asynchronously show up in later snapshots, which is why
// the retry wrapper re-reads the source on every attempt.
type Source interface {
	Page(ctx context.Context) (*page.Page, error)
}

// retryProfile tunes attempts per merchant. Slow-rendering sites get
// more attempts; the early strict attempts refuse figures that look
// like a partially rendered line item instead of a full total.
type retryProfile struct {
	domain      string
	delays      []time.Duration // delay before each re-attempt
	strictEarly int             // attempts that require > strictMin
}

const strictMin = 10 // dollars; below this an early attempt keeps waiting

var retryProfiles = []retryProfile{
	{
		domain: "amazon.com",
		delays: []time.Duration{
			500 * time.Millisecond, 500 * time.Millisecond, 500 * time.Millisecond,
			500 * time.Millisecond, 500 * time.Millisecond, 500 * time.Millisecond,
			500 * time.Millisecond, 500 * time.Millisecond, 500 * time.Millisecond,
		},
	},
	{
		domain:      "safeway.com",
		delays:      []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 4 * time.Second},
		strictEarly: 2,
	},
}

var defaultProfile = retryProfile{
	delays: []time.Duration{time.Second, 2 * time.Second},
}

func profileFor(hostname string) retryProfile {
	host := merchant.Normalize(hostname)
	for _, p := range retryProfiles {
		if strings.Contains(host, p.domain) {
			return p
		}
	}
	return defaultProfile
}

// scheduleBackoff walks a fixed delay schedule, then stops.
func scheduleBackoff(delays []time.Duration) retry.Backoff {
	i := 0
	return retry.BackoffFunc(func() (time.Duration, bool) {
		if i >= len(delays) {
			return 0, true
		}
		d := delays[i]
		i++
		return d, false
	})
}

// Estimate runs the passes through the bounded retry wrapper and
// always returns a positive amount: live passes, then the cart cache,
// then the fixed default.
func (e *Estimator) Estimate(ctx context.Context, hostname string, src Source) float64 {
	prof := profileFor(hostname)

	attempt := 0
	var found float64
	err := retry.Do(ctx, scheduleBackoff(prof.delays), func(ctx context.Context) error {
		attempt++
		p, err := src.Page(ctx)
		if err != nil {
			return retry.RetryableError(err)
		}

		got := e.EstimateOnce(p)
		if got <= 0 {
			return retry.RetryableError(errNoAmount)
		}
		if attempt <= prof.strictEarly && got <= strictMin {
			// Probably a fee or single item on a half-rendered
			// page; wait for the real total.
			return retry.RetryableError(errNoAmount)
		}
		found = got
		return nil
	})
	if err == nil && found > 0 {
		return found
	}

	if cached := e.freshCartAmount(ctx); cached > 0 {
		slog.Debug("estimation fell back to cached cart amount", "amount", cached)
		return cached
	}
	return DefaultAmount
}

// EstimateSnapshot is the one-shot form: a single run of the passes
// against one snapshot, then the cache, then the default. Used where
// no fresher snapshot can ever arrive.
func (e *Estimator) EstimateSnapshot(ctx context.Context, p *page.Page) float64 {
	if amt := e.EstimateOnce(p); amt > 0 {
		return amt
	}
	if cached := e.freshCartAmount(ctx); cached > 0 {
		return cached
	}
	return DefaultAmount
}
