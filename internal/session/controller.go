// internal/session/controller.go
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"card-assistant/internal/amount"
	"card-assistant/internal/checkout"
	"card-assistant/internal/domain"
	"card-assistant/internal/merchant"
	"card-assistant/internal/page"
	"card-assistant/internal/reward"
	"card-assistant/internal/storage"
)

// Surface receives fire-and-forget presentation requests. A nil
// recommendation means "checkout detected but nothing to recommend"
// (no cards, or no matching rule). No response is ever awaited.
type Surface interface {
	ShowRecommendation(ctx context.Context, rec *domain.Recommendation)
	Hide(ctx context.Context)
}

// Options for one monitored page session.
type Options struct {
	PollInterval  time.Duration // pipeline re-run cadence
	URLCheckEvery time.Duration // SPA navigation watch cadence
	RecheckDelay  time.Duration // wait after a URL change before re-running
	Cooldown      time.Duration // minimum gap between two surfaced recommendations
}

func DefaultOptions() Options {
	return Options{
		PollInterval:  3 * time.Second,
		URLCheckEvery: time.Second,
		RecheckDelay:  time.Second,
		Cooldown:      30 * time.Second,
	}
}

// Controller owns one monitored page context. It buffers the latest
// snapshot posted by the client, drives classifier, estimator and
// engine on a timer, and manages the display lifecycle.
type Controller struct {
	id         string
	opts       Options
	store      *storage.Store
	resolver   *merchant.Resolver
	classifier *checkout.Classifier
	estimator  *amount.Estimator
	engine     *reward.Engine
	surface    Surface

	wake chan struct{}

	mu           sync.Mutex
	current      *page.Page
	lastSeenURL  string
	shown        bool
	creating     bool
	lastShownAt  time.Time
	lastRec      *domain.Recommendation
	recheckTimer *time.Timer

	cancel context.CancelFunc
	done   chan struct{}
}

func NewController(id string, store *storage.Store, resolver *merchant.Resolver, classifier *checkout.Classifier, estimator *amount.Estimator, engine *reward.Engine, surface Surface, opts Options) *Controller {
	return &Controller{
		id:         id,
		opts:       opts,
		store:      store,
		resolver:   resolver,
		classifier: classifier,
		estimator:  estimator,
		engine:     engine,
		surface:    surface,
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
}

// Start launches the polling loop. Close tears it down.
func (c *Controller) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	go c.run(ctx)
}

// Close cancels every pending timer for this session and waits for the
// loop to exit. Safe to call more than once after Start.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.recheckTimer != nil {
		c.recheckTimer.Stop()
		c.recheckTimer = nil
	}
	c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		<-c.done
	}
}

// UpdatePage replaces the buffered snapshot and shortcuts the next
// scheduled poll, standing in for the page-mutation subscription: the
// wake never decides anything by itself, the pipeline still does.
func (c *Controller) UpdatePage(rawURL, rawHTML string) error {
	p, err := page.Parse(rawURL, rawHTML)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.current = p
	c.mu.Unlock()

	c.wakeUp()
	return nil
}

// Page implements the estimator's snapshot source: every retry attempt
// re-reads the freshest buffered snapshot.
func (c *Controller) Page(ctx context.Context) (*page.Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, nil
}

// Recommendation returns the currently surfaced recommendation, nil
// when none is shown.
func (c *Controller) Recommendation() *domain.Recommendation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRec
}

// Dismiss hides the surface on explicit user request. The cooldown
// keeps it from reappearing immediately.
func (c *Controller) Dismiss(ctx context.Context) {
	c.mu.Lock()
	wasShown := c.shown
	c.shown = false
	c.lastRec = nil
	c.mu.Unlock()
	if wasShown {
		c.surface.Hide(ctx)
	}
}

func (c *Controller) wakeUp() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Controller) run(ctx context.Context) {
	defer close(c.done)

	poll := time.NewTicker(c.opts.PollInterval)
	defer poll.Stop()
	urlWatch := time.NewTicker(c.opts.URLCheckEvery)
	defer urlWatch.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-poll.C:
			c.check(ctx)
		case <-urlWatch.C:
			c.watchURL()
		case <-c.wake:
			c.check(ctx)
		}
	}
}

// watchURL catches single-page-app navigation: on a changed address it
// schedules a delayed re-check so the new content has time to render.
func (c *Controller) watchURL() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.URL == c.lastSeenURL {
		return
	}
	c.lastSeenURL = c.current.URL
	if c.recheckTimer != nil {
		c.recheckTimer.Stop()
	}
	c.recheckTimer = time.AfterFunc(c.opts.RecheckDelay, c.wakeUp)
}

// check is one pipeline cycle: classify, maybe snapshot the cart
// total, then surface, refresh or hide the recommendation.
func (c *Controller) check(ctx context.Context) {
	c.mu.Lock()
	p := c.current
	shown := c.shown
	c.mu.Unlock()
	if p == nil {
		return
	}

	res := c.classifier.Classify(p)

	if res.IsCartView {
		c.estimator.SnapshotCartAmount(ctx, p)
	}

	switch {
	case res.IsCheckout && !shown:
		c.surfaceRecommendation(ctx, p)
	case !res.IsCheckout && shown:
		slog.Debug("left checkout, hiding recommendation", "session", c.id)
		c.mu.Lock()
		c.shown = false
		c.lastRec = nil
		c.mu.Unlock()
		c.surface.Hide(ctx)
	case res.IsCheckout && shown:
		c.refreshShown(ctx, p)
	}
}

func (c *Controller) surfaceRecommendation(ctx context.Context, p *page.Page) {
	c.mu.Lock()
	if c.creating || time.Since(c.lastShownAt) < c.opts.Cooldown {
		c.mu.Unlock()
		return
	}
	c.creating = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.creating = false
		c.mu.Unlock()
	}()

	rec := c.evaluate(ctx, p, true)

	c.mu.Lock()
	c.lastRec = rec
	c.shown = true
	c.lastShownAt = time.Now()
	c.mu.Unlock()

	if c.store.Settings(ctx).EnableNotifications {
		c.surface.ShowRecommendation(ctx, rec)
	}
	if rec != nil {
		slog.Info("recommendation surfaced",
			"session", c.id, "card", rec.Card.Name,
			"reward", rec.RewardAmount, "amount", rec.EstimatedAmount)
	} else {
		slog.Info("checkout detected, no applicable card", "session", c.id)
	}
}

// refreshShown re-estimates against the freshest snapshot and updates
// the surfaced recommendation when a better amount appeared.
func (c *Controller) refreshShown(ctx context.Context, p *page.Page) {
	c.mu.Lock()
	prev := c.lastRec
	c.mu.Unlock()
	if prev == nil {
		return
	}

	rec := c.evaluate(ctx, p, false)
	if rec == nil || rec.EstimatedAmount == prev.EstimatedAmount {
		return
	}

	c.mu.Lock()
	c.lastRec = rec
	c.mu.Unlock()
	if c.store.Settings(ctx).EnableNotifications {
		c.surface.ShowRecommendation(ctx, rec)
	}
}

// evaluate runs estimator and engine for a checkout snapshot.
func (c *Controller) evaluate(ctx context.Context, p *page.Page, withRetry bool) *domain.Recommendation {
	cards := c.store.Cards(ctx)
	if len(cards) == 0 {
		return nil
	}

	name := merchant.Normalize(p.Hostname)
	category := domain.CategoryGeneral
	if m := c.resolver.Resolve(p.Hostname); m != nil {
		name = m.Name
		category = m.Category
	}

	var amt float64
	if withRetry {
		amt = c.estimator.Estimate(ctx, p.Hostname, c)
	} else {
		amt = c.estimator.EstimateSnapshot(ctx, p)
	}

	rec := c.engine.Recommend(cards, category, amt)
	if rec == nil {
		return nil
	}
	rec.EstimatedAmount = amt
	rec.MerchantName = name
	rec.Category = category
	return rec
}
