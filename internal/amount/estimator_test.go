// internal/amount/estimator_test.go
package amount

import (
	"context"
	"errors"
	"testing"
	"time"

	"card-assistant/internal/domain"
	"card-assistant/internal/page"
	"card-assistant/internal/storage"
	"card-assistant/internal/storage/memory"
)

func newTestEstimator() (*Estimator, *storage.Store) {
	store := storage.NewStore(memory.New())
	return NewEstimator(store), store
}

func mustPage(t *testing.T, url, html string) *page.Page {
	t.Helper()
	p, err := page.Parse(url, html)
	if err != nil {
		t.Fatalf("Parse(%q): %v", url, err)
	}
	return p
}

func TestTextPassPriority(t *testing.T) {
	e, _ := newTestEstimator()

	tests := []struct {
		name string
		html string
		want float64
	}{
		{
			"estimated total beats item price",
			`<html><body><span>Deluxe widget $4.99</span><div>Estimated total: $17.23</div></body></html>`,
			17.23,
		},
		{
			"order total",
			`<html><body><div>Order Total: $123.45</div></body></html>`,
			123.45,
		},
		{
			"grand total with thousands separator",
			`<html><body><div>Grand total $1,234.56</div></body></html>`,
			1234.56,
		},
		{
			"amount due",
			`<html><body><p>Amount due: $55.00</p></body></html>`,
			55,
		},
		{
			"amount near the word total",
			`<html><body><div>$89.99 is your total today</div></body></html>`,
			89.99,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustPage(t, "https://shop.example.com/checkout", tt.html)
			if got := e.EstimateOnce(p); got != tt.want {
				t.Errorf("EstimateOnce = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEstimateOnceBounds(t *testing.T) {
	e, _ := newTestEstimator()

	tests := []struct {
		name string
		html string
	}{
		{"empty page", `<html><body></body></html>`},
		{"no currency", `<html><body><div>Thanks for shopping with us</div></body></html>`},
		{"above plausible bound", `<html><body><div>Total: $15,000.00</div></body></html>`},
		{"at lower bound", `<html><body><div>Total: $1.00</div></body></html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustPage(t, "https://shop.example.com/checkout", tt.html)
			if got := e.EstimateOnce(p); got != 0 {
				t.Errorf("EstimateOnce = %v, want 0", got)
			}
		})
	}
}

func TestSelectorPass(t *testing.T) {
	e, _ := newTestEstimator()

	t.Run("generic class selector", func(t *testing.T) {
		p := mustPage(t, "https://shop.example.com/checkout",
			`<html><body><div class="grand-total">$89.10</div></body></html>`)
		if got := e.EstimateOnce(p); got != 89.10 {
			t.Errorf("EstimateOnce = %v, want 89.10", got)
		}
	})

	t.Run("aria-label fallback", func(t *testing.T) {
		p := mustPage(t, "https://shop.example.com/checkout",
			`<html><body><span class="order-total" aria-label="$45.67"></span></body></html>`)
		if got := e.EstimateOnce(p); got != 45.67 {
			t.Errorf("EstimateOnce = %v, want 45.67", got)
		}
	})

	t.Run("merchant selector on amazon", func(t *testing.T) {
		p := mustPage(t, "https://www.amazon.com/gp/buy/spc/",
			`<html><body><span class="grand-total-price">$210.40</span></body></html>`)
		if got := e.EstimateOnce(p); got != 210.40 {
			t.Errorf("EstimateOnce = %v, want 210.40", got)
		}
	})

	t.Run("looser upper bound than text pass", func(t *testing.T) {
		p := mustPage(t, "https://shop.example.com/checkout",
			`<html><body><div class="order-total">$12,500.00</div></body></html>`)
		if got := e.EstimateOnce(p); got != 12500 {
			t.Errorf("EstimateOnce = %v, want 12500", got)
		}
	})

	t.Run("code-looking element skipped", func(t *testing.T) {
		p := mustPage(t, "https://shop.example.com/checkout",
			`<html><body><div class="total">var total = getTotal(); return total;</div></body></html>`)
		if got := e.EstimateOnce(p); got != 0 {
			t.Errorf("EstimateOnce = %v, want 0", got)
		}
	})
}

func TestScoredPass(t *testing.T) {
	e, _ := newTestEstimator()

	t.Run("keyword weight beats bare figure", func(t *testing.T) {
		p := mustPage(t, "https://shop.example.com/pay",
			`<html><body><p>Gift wrap $5.00</p><p>Order total $20.00</p></body></html>`)
		best := e.scoredPass(p)
		if best == nil || best.Amount != 20 {
			t.Fatalf("scoredPass = %+v, want amount 20", best)
		}
	})

	t.Run("tie goes to larger amount", func(t *testing.T) {
		p := mustPage(t, "https://shop.example.com/pay",
			`<html><body><p>Subtotal $18.00</p><p>Subtotal $24.00</p></body></html>`)
		best := e.scoredPass(p)
		if best == nil || best.Amount != 24 {
			t.Fatalf("scoredPass = %+v, want amount 24", best)
		}
	})

	t.Run("tiny amounts penalized", func(t *testing.T) {
		p := mustPage(t, "https://shop.example.com/pay",
			`<html><body><p>Fee $1.50</p><p>Shipping $16.00</p></body></html>`)
		best := e.scoredPass(p)
		if best == nil || best.Amount != 16 {
			t.Fatalf("scoredPass = %+v, want amount 16", best)
		}
	})
}

func TestScoreCandidate(t *testing.T) {
	// "estimated total" also contains "total", so both bonuses stack.
	stacked := scoreCandidate("Estimated total $42.00", 42)
	plain := scoreCandidate("Total $42.00", 42)
	if stacked <= plain {
		t.Errorf("stacked score %d not above plain %d", stacked, plain)
	}

	bare := scoreCandidate("$42.00", 42)
	if bare >= plain {
		t.Errorf("no-keyword score %d not below keyword score %d", bare, plain)
	}
}

func TestEstimateSnapshotFallbacks(t *testing.T) {
	ctx := context.Background()
	empty := func(t *testing.T) *page.Page {
		return mustPage(t, "https://shop.example.com/checkout", `<html><body></body></html>`)
	}

	t.Run("default when nothing found", func(t *testing.T) {
		e, _ := newTestEstimator()
		if got := e.EstimateSnapshot(ctx, empty(t)); got != DefaultAmount {
			t.Errorf("EstimateSnapshot = %v, want %v", got, DefaultAmount)
		}
	})

	t.Run("fresh cart cache wins over default", func(t *testing.T) {
		e, store := newTestEstimator()
		if err := store.SaveCartAmount(ctx, domain.CachedCartAmount{
			Amount:    37.50,
			Timestamp: time.Now().Add(-time.Minute),
			URL:       "https://shop.example.com/cart",
		}); err != nil {
			t.Fatalf("SaveCartAmount: %v", err)
		}
		if got := e.EstimateSnapshot(ctx, empty(t)); got != 37.50 {
			t.Errorf("EstimateSnapshot = %v, want 37.50", got)
		}
	})

	t.Run("stale cache ignored", func(t *testing.T) {
		e, store := newTestEstimator()
		if err := store.SaveCartAmount(ctx, domain.CachedCartAmount{
			Amount:    37.50,
			Timestamp: time.Now().Add(-CartCacheTTL - time.Minute),
			URL:       "https://shop.example.com/cart",
		}); err != nil {
			t.Fatalf("SaveCartAmount: %v", err)
		}
		if got := e.EstimateSnapshot(ctx, empty(t)); got != DefaultAmount {
			t.Errorf("EstimateSnapshot = %v, want %v", got, DefaultAmount)
		}
	})

	t.Run("live amount wins over cache", func(t *testing.T) {
		e, store := newTestEstimator()
		if err := store.SaveCartAmount(ctx, domain.CachedCartAmount{
			Amount:    37.50,
			Timestamp: time.Now(),
			URL:       "https://shop.example.com/cart",
		}); err != nil {
			t.Fatalf("SaveCartAmount: %v", err)
		}
		p := mustPage(t, "https://shop.example.com/checkout",
			`<html><body><div>Order total: $84.20</div></body></html>`)
		if got := e.EstimateSnapshot(ctx, p); got != 84.20 {
			t.Errorf("EstimateSnapshot = %v, want 84.20", got)
		}
	})
}

func TestSnapshotCartAmount(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEstimator()

	p := mustPage(t, "https://shop.example.com/cart",
		`<html><body><div>Cart total: $52.80</div></body></html>`)
	e.SnapshotCartAmount(ctx, p)

	cached := store.CartAmount(ctx)
	if cached == nil || cached.Amount != 52.80 {
		t.Fatalf("CartAmount = %+v, want 52.80", cached)
	}
	if cached.URL != p.URL {
		t.Errorf("cached URL = %q, want %q", cached.URL, p.URL)
	}

	// Nothing extractable leaves the cache untouched.
	e2, store2 := newTestEstimator()
	e2.SnapshotCartAmount(ctx, mustPage(t, "https://shop.example.com/cart", `<html><body></body></html>`))
	if cached := store2.CartAmount(ctx); cached != nil {
		t.Errorf("CartAmount = %+v, want nil", cached)
	}
}

type staticSource struct {
	pages []*page.Page
	err   error
	calls int
}

func (s *staticSource) Page(ctx context.Context) (*page.Page, error) {
	if s.err != nil {
		return nil, s.err
	}
	i := s.calls
	if i >= len(s.pages) {
		i = len(s.pages) - 1
	}
	s.calls++
	return s.pages[i], nil
}

func TestEstimateFirstAttemptSuccess(t *testing.T) {
	e, _ := newTestEstimator()
	src := &staticSource{pages: []*page.Page{
		mustPage(t, "https://shop.example.com/checkout",
			`<html><body><div>Order total: $61.75</div></body></html>`),
	}}

	got := e.Estimate(context.Background(), "shop.example.com", src)
	if got != 61.75 {
		t.Errorf("Estimate = %v, want 61.75", got)
	}
	if src.calls != 1 {
		t.Errorf("source read %d times, want 1", src.calls)
	}
}

func TestEstimateExhaustionFallsBack(t *testing.T) {
	// Cancelled context stops the retry schedule without waiting out
	// the delays, exercising the fallback chain directly.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	t.Run("to default", func(t *testing.T) {
		e, _ := newTestEstimator()
		src := &staticSource{err: errors.New("snapshot unavailable")}
		if got := e.Estimate(ctx, "shop.example.com", src); got != DefaultAmount {
			t.Errorf("Estimate = %v, want %v", got, DefaultAmount)
		}
	})

	t.Run("to fresh cart cache", func(t *testing.T) {
		e, store := newTestEstimator()
		if err := store.SaveCartAmount(context.Background(), domain.CachedCartAmount{
			Amount:    29.95,
			Timestamp: time.Now(),
			URL:       "https://shop.example.com/cart",
		}); err != nil {
			t.Fatalf("SaveCartAmount: %v", err)
		}
		src := &staticSource{err: errors.New("snapshot unavailable")}
		if got := e.Estimate(ctx, "shop.example.com", src); got != 29.95 {
			t.Errorf("Estimate = %v, want 29.95", got)
		}
	})
}

func TestRetryProfiles(t *testing.T) {
	amazon := profileFor("www.amazon.com")
	if len(amazon.delays) != 9 {
		t.Errorf("amazon delays = %d, want 9", len(amazon.delays))
	}
	if amazon.strictEarly != 0 {
		t.Errorf("amazon strictEarly = %d, want 0", amazon.strictEarly)
	}

	safeway := profileFor("safeway.com")
	if len(safeway.delays) != 4 || safeway.strictEarly != 2 {
		t.Errorf("safeway profile = %+v", safeway)
	}

	def := profileFor("unknown.example")
	if len(def.delays) != 2 {
		t.Errorf("default delays = %d, want 2", len(def.delays))
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"17.23", 17.23, true},
		{"1,234.56", 1234.56, true},
		{"42", 42, true},
		{"0", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseAmount(tt.raw)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseAmount(%q) = (%v, %v), want (%v, %v)", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLooksLikeCode(t *testing.T) {
	if !looksLikeCode("function getTotal() { return 42; }") {
		t.Error("script text not flagged")
	}
	if looksLikeCode("Order total: $42.00") {
		t.Error("plain total text flagged as code")
	}
}
