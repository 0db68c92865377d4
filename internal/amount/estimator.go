// internal/amount/estimator.go
package amount

import (
	"regexp"
	"strings"

	"card-assistant/internal/merchant"
	"card-assistant/internal/page"
	"card-assistant/internal/storage"
)

// DefaultAmount is returned when every pass and the cache come up empty.
const DefaultAmount = 100

// Candidate is one extracted, scored guess at the transaction total.
// Only the best one survives a pass.
type Candidate struct {
	Amount     float64
	SourceText string
	Score      int
}

// Pass 1: ordered text patterns, highest semantic priority first.
var textPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)estimated total[:\s]*\$` + moneyGroup),
	regexp.MustCompile(`(?i)order total[:\s]*\$` + moneyGroup),
	regexp.MustCompile(`(?i)grand total[:\s]*\$` + moneyGroup),
	regexp.MustCompile(`(?i)final total[:\s]*\$` + moneyGroup),
	regexp.MustCompile(`(?i)cart total[:\s]*\$` + moneyGroup),
	regexp.MustCompile(`(?i)checkout total[:\s]*\$` + moneyGroup),
	regexp.MustCompile(`(?i)amount due[:\s]*\$` + moneyGroup),
	regexp.MustCompile(`(?i)total[:\s]+\$` + moneyGroup),
	// amount within a short window of the word "total", either side
	regexp.MustCompile(`(?i)\$` + moneyGroup + `.{0,50}total`),
	regexp.MustCompile(`(?i)total.{0,50}\$` + moneyGroup),
}

// Pass 2: element selectors. Per-merchant lists first, generic after.
var merchantSelectors = map[string][]page.Selector{
	"amazon.com": {
		{ClassContains: "a-offscreen"},
		{ClassContains: "grand-total-price"},
		{ClassContains: "a-price-whole"},
		{IDContains: "subtotals-marketplace"},
		{AttrContains: map[string]string{"data-testid": "order-total"}},
		{ClassContains: "order-total"},
	},
	"walmart.com": {
		{AttrContains: map[string]string{"data-automation-id": "order-total"}},
		{AttrContains: map[string]string{"data-testid": "subtotal-value"}},
		{ClassContains: "order-total-line"},
		{ClassContains: "subtotal-amount"},
	},
	"target.com": {
		{AttrContains: map[string]string{"data-test": "order-summary-total"}},
		{AttrContains: map[string]string{"data-test": "total-price"}},
		{ClassContains: "order-total"},
	},
	"safeway.com": {
		{AttrContains: map[string]string{"data-testid": "estimated-total"}},
		{ClassContains: "estimated-total"},
		{ClassContains: "order-total"},
		{ClassContains: "grand-total"},
		{ClassContains: "checkout-total"},
		{ClassContains: "summary-total"},
		{ClassContains: "total"},
		{IDContains: "total"},
		{AttrContains: map[string]string{"data-automation-id": "total"}},
	},
	"bestbuy.com": {
		{ClassContains: "order-summary__total"},
		{ClassContains: "order-total"},
	},
}

var genericSelectors = []page.Selector{
	{ClassContains: "grand-total"},
	{ClassContains: "order-total"},
	{ClassContains: "checkout-total"},
	{ClassContains: "estimated-total"},
	{ClassContains: "total"},
	{IDContains: "total"},
	{AttrContains: map[string]string{"data-testid": "total"}},
	{AttrContains: map[string]string{"data-test": "total"}},
	{AttrContains: map[string]string{"data-qa": "total"}},
	{AttrContains: map[string]string{"data-automation-id": "total"}},
	{AttrContains: map[string]string{"data-testid": "amount"}},
	{ClassContains: "amount"},
	{ClassContains: "price"},
	{IDContains: "amount"},
	{ClassContains: "subtotal"},
	{ClassContains: "summary"},
}

var (
	currencyPattern    = regexp.MustCompile(`\$\s*` + moneyGroup)
	bareDecimalPattern = regexp.MustCompile(`(\d{1,3}(?:,\d{3})*\.\d{2})`)
)

var elementPatterns = []*regexp.Regexp{
	currencyPattern,
	regexp.MustCompile(moneyGroup + `\s*\$`),
	regexp.MustCompile(`(?i)total[:\s]*\$?\s*` + moneyGroup),
	bareDecimalPattern,
	regexp.MustCompile(`\$\s*(\d+)`),
}

// Pass 3 keyword bonuses, cumulative the way substring hits stack up
// ("estimated total" also contains "total").
var keywordBonuses = []struct {
	keyword string
	bonus   int
}{
	{"estimated total", 2000},
	{"order total", 1200},
	{"grand total", 1100},
	{"final total", 1000},
	{"cart total", 900},
	{"checkout total", 850},
	{"amount due", 700},
	{"total", 600},
	{"subtotal", 450},
	{"summary", 350},
}

const noKeywordPenalty = 400

// Estimator extracts a believable transaction total from a snapshot.
// Estimation never fails; the worst case is the fixed default.
type Estimator struct {
	store *storage.Store

	// Plausible total bounds for the text and scored passes. The
	// selector pass runs with a looser upper bound since trusted
	// elements rarely carry junk figures.
	MinPlausible         float64
	MaxPlausible         float64
	SelectorMaxPlausible float64
}

func NewEstimator(store *storage.Store) *Estimator {
	return &Estimator{
		store:                store,
		MinPlausible:         1,
		MaxPlausible:         10000,
		SelectorMaxPlausible: 50000,
	}
}

func (e *Estimator) plausible(amount float64) bool {
	return amount > e.MinPlausible && amount < e.MaxPlausible
}

// EstimateOnce runs passes 1-3 against a single snapshot and returns
// the extracted total, or 0 when nothing plausible was found.
func (e *Estimator) EstimateOnce(p *page.Page) float64 {
	if p == nil {
		return 0
	}
	if amt := e.textPass(p); amt > 0 {
		return amt
	}
	if amt := e.selectorPass(p); amt > 0 {
		return amt
	}
	if best := e.scoredPass(p); best != nil {
		return best.Amount
	}
	return 0
}

// textPass applies the ordered pattern list over the full visible
// text. First plausible match wins.
func (e *Estimator) textPass(p *page.Page) float64 {
	text := p.VisibleText()
	for _, pattern := range textPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if amt, ok := parseAmount(m[1]); ok && e.plausible(amt) {
			return amt
		}
	}
	return 0
}

// selectorPass queries the merchant's selector list, then the generic
// one, and parses the first numeric match out of each element.
func (e *Estimator) selectorPass(p *page.Page) float64 {
	selectors := genericSelectors
	host := merchant.Normalize(p.Hostname)
	for domain, list := range merchantSelectors {
		if strings.Contains(host, domain) {
			selectors = list
			break
		}
	}

	for _, sel := range selectors {
		for _, el := range p.Query(sel) {
			text := el.Text
			if text == "" {
				text = el.Attr("aria-label")
			}
			if text == "" || looksLikeCode(text) {
				continue
			}
			for _, pattern := range elementPatterns {
				m := pattern.FindStringSubmatch(text)
				if m == nil {
					continue
				}
				if amt, ok := parseAmount(m[1]); ok && amt > 0 && amt < e.SelectorMaxPlausible {
					return amt
				}
			}
		}
	}
	return 0
}

// scoredPass scans every short element containing a currency marker
// and keeps the highest-scoring candidate. Ties go to the larger
// amount, favoring full-order totals over line items.
func (e *Estimator) scoredPass(p *page.Page) *Candidate {
	var best *Candidate
	for _, el := range p.Elements() {
		text := el.Text
		if len(text) >= 200 || !strings.Contains(text, "$") || looksLikeCode(text) {
			continue
		}

		m := currencyPattern.FindStringSubmatch(text)
		if m == nil {
			m = bareDecimalPattern.FindStringSubmatch(text)
		}
		if m == nil {
			continue
		}
		amt, ok := parseAmount(m[1])
		if !ok || !e.plausible(amt) {
			continue
		}

		cand := &Candidate{Amount: amt, SourceText: text, Score: scoreCandidate(text, amt)}
		if best == nil || cand.Score > best.Score ||
			(cand.Score == best.Score && cand.Amount > best.Amount) {
			best = cand
		}
	}
	return best
}

func scoreCandidate(text string, amt float64) int {
	lower := strings.ToLower(text)
	score := 0
	matched := false
	for _, kb := range keywordBonuses {
		if strings.Contains(lower, kb.keyword) {
			score += kb.bonus
			matched = true
		}
	}
	if !matched {
		score -= noKeywordPenalty
	}

	// Magnitude bonus: small figures are almost always per-item
	// prices or fees, not order totals.
	switch {
	case amt >= 15:
		score += 250
	case amt >= 10:
		score += 150
	case amt >= 5:
		score += 100
	}
	if amt < 3 {
		score -= 1000
	}
	return score
}
