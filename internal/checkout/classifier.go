// internal/checkout/classifier.go
package checkout

import (
	"strings"

	"card-assistant/internal/merchant"
	"card-assistant/internal/page"
)

// Result of classifying one page snapshot.
//
// IsCartView marks an intermediate cart/bag view: not a payment step,
// but a safe point to snapshot the running total for later reuse.
type Result struct {
	IsCheckout bool
	IsCartView bool
}

// Pages that reuse checkout vocabulary but are never a payment step.
// The exclusion filter runs before every inclusion rule.
var excludePatterns = []string{
	"signin", "sign-in", "login", "auth", "register", "signup", "sign-up",
	"forgot-password", "reset-password", "verify", "confirmation",
	"oauth", "sso", "account", "profile", "settings",
}

// Elements that mark a real checkout flow on an otherwise generic cart URL.
var checkoutAffordances = []page.Selector{
	{ClassContains: "checkout-button"},
	{AttrContains: map[string]string{"data-testid": "checkout"}},
	{ClassContains: "payment-section"},
	{ClassContains: "place-order"},
	{ClassContains: "complete-order"},
}

// siteRule is an authoritative per-merchant override. Large retailers
// with idiosyncratic URL schemes get one; everyone else falls through
// to the generic heuristics.
type siteRule struct {
	domain   string
	classify func(url string, p *page.Page) Result
}

var siteRules = []siteRule{
	{
		domain: "amazon.com",
		classify: func(url string, p *page.Page) Result {
			isCart := strings.Contains(url, "/gp/cart/")
			isFinal := strings.Contains(url, "/gp/buy/spc/") ||
				strings.Contains(url, "/checkout/p/") ||
				(strings.Contains(url, "/checkout/") && !isCart) ||
				strings.Contains(url, "pipelinetype=chewbacca")
			if isFinal && !isCart {
				return Result{IsCheckout: true}
			}
			return Result{IsCartView: isCart}
		},
	},
	{
		domain: "costco.com",
		classify: func(url string, p *page.Page) Result {
			ok := strings.Contains(url, "/checkout") &&
				!strings.Contains(url, "/cart") &&
				!strings.Contains(url, "signin")
			return Result{IsCheckout: ok, IsCartView: strings.Contains(url, "/cart")}
		},
	},
	{
		domain: "safeway.com",
		classify: func(url string, p *page.Page) Result {
			return Result{IsCheckout: strings.Contains(url, "/checkout") || strings.Contains(url, "/payment")}
		},
	},
	{
		domain: "walmart.com",
		classify: func(url string, p *page.Page) Result {
			return Result{IsCheckout: strings.Contains(url, "/checkout") || strings.Contains(url, "/pay")}
		},
	},
	{
		domain: "target.com",
		classify: func(url string, p *page.Page) Result {
			return Result{IsCheckout: strings.Contains(url, "/checkout") || strings.Contains(url, "/payment")}
		},
	},
}

type Classifier struct {
	resolver *merchant.Resolver
}

func NewClassifier(resolver *merchant.Resolver) *Classifier {
	return &Classifier{resolver: resolver}
}

// Classify decides whether the snapshot is a genuine payment step.
// Stateless: the same snapshot always yields the same result.
func (c *Classifier) Classify(p *page.Page) Result {
	url := strings.ToLower(p.URL)
	hostname := strings.ToLower(p.Hostname)

	if isExcluded(hostname, url) {
		return Result{}
	}

	// Per-merchant rules are authoritative.
	for _, rule := range siteRules {
		if strings.Contains(hostname, rule.domain) {
			return rule.classify(url, p)
		}
	}

	// Generic fallback: explicit checkout vocabulary in the path.
	for _, keyword := range []string{"checkout", "payment", "billing"} {
		if strings.Contains(url, "/"+keyword) || strings.Contains(url, keyword+"/") {
			return Result{IsCheckout: true}
		}
	}

	// A bare cart URL only counts when the page carries a real
	// checkout affordance; plain cart views trigger far too often.
	if strings.Contains(url, "/cart") {
		if p.QueryAny(checkoutAffordances) {
			return Result{IsCheckout: true, IsCartView: true}
		}
		return Result{IsCartView: true}
	}

	return Result{}
}

func isExcluded(hostname, url string) bool {
	for _, pattern := range excludePatterns {
		if strings.Contains(hostname, pattern) ||
			strings.Contains(url, "/"+pattern) ||
			strings.Contains(url, pattern+".") {
			return true
		}
	}
	return false
}
