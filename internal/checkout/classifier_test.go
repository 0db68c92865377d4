// internal/checkout/classifier_test.go
package checkout

import (
	"testing"

	"card-assistant/internal/merchant"
	"card-assistant/internal/page"
)

func mustPage(t *testing.T, url, html string) *page.Page {
	t.Helper()
	p, err := page.Parse(url, html)
	if err != nil {
		t.Fatalf("Parse(%q): %v", url, err)
	}
	return p
}

func TestClassifyExclusions(t *testing.T) {
	c := NewClassifier(merchant.NewResolver())

	urls := []string{
		"https://www.amazon.com/ap/signin?openid.return_to=checkout",
		"https://store.example.com/login",
		"https://store.example.com/account/payment-methods",
		"https://auth.example.com/checkout",
		"https://store.example.com/checkout/register",
		// Exclusion patterns win even when the path screams checkout.
		"https://checkout.example.com/account/signin?redirect=/checkout",
	}
	for _, url := range urls {
		p := mustPage(t, url, "<html><body>Checkout</body></html>")
		if got := c.Classify(p); got.IsCheckout {
			t.Errorf("Classify(%q).IsCheckout = true, want false", url)
		}
	}
}

func TestClassifyAmazon(t *testing.T) {
	c := NewClassifier(merchant.NewResolver())

	tests := []struct {
		url          string
		wantCheckout bool
		wantCartView bool
	}{
		{"https://www.amazon.com/gp/buy/spc/handlers/display.html", true, false},
		{"https://www.amazon.com/checkout/p/p-123/spc", true, false},
		{"https://www.amazon.com/gp/buy?pipelineType=chewbacca", true, false},
		{"https://www.amazon.com/gp/cart/view.html", false, true},
		{"https://www.amazon.com/dp/B0TEST", false, false},
	}

	for _, tt := range tests {
		p := mustPage(t, tt.url, "<html><body></body></html>")
		got := c.Classify(p)
		if got.IsCheckout != tt.wantCheckout || got.IsCartView != tt.wantCartView {
			t.Errorf("Classify(%q) = %+v, want checkout=%v cartView=%v",
				tt.url, got, tt.wantCheckout, tt.wantCartView)
		}
	}
}

func TestClassifySiteRules(t *testing.T) {
	c := NewClassifier(merchant.NewResolver())

	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.costco.com/checkout/shipping", true},
		{"https://www.costco.com/cart", false},
		{"https://www.safeway.com/erums/checkout", true},
		{"https://www.walmart.com/checkout/review-order", true},
		{"https://www.target.com/checkout/payment", true},
		{"https://www.target.com/p/some-product", false},
	}

	for _, tt := range tests {
		p := mustPage(t, tt.url, "<html><body></body></html>")
		if got := c.Classify(p); got.IsCheckout != tt.want {
			t.Errorf("Classify(%q).IsCheckout = %v, want %v", tt.url, got.IsCheckout, tt.want)
		}
	}
}

func TestClassifyGenericKeywords(t *testing.T) {
	c := NewClassifier(merchant.NewResolver())

	tests := []struct {
		url  string
		want bool
	}{
		{"https://shop.example.com/checkout", true},
		{"https://shop.example.com/payment/review", true},
		{"https://shop.example.com/billing", true},
		{"https://shop.example.com/products/widget", false},
	}

	for _, tt := range tests {
		p := mustPage(t, tt.url, "<html><body></body></html>")
		if got := c.Classify(p); got.IsCheckout != tt.want {
			t.Errorf("Classify(%q).IsCheckout = %v, want %v", tt.url, got.IsCheckout, tt.want)
		}
	}
}

func TestClassifyCartNeedsAffordance(t *testing.T) {
	c := NewClassifier(merchant.NewResolver())

	// Bare cart view: total visible on screen but no way to pay yet.
	bare := mustPage(t, "https://shop.example.com/cart",
		`<html><body><div class="cart-total">Total: $42.00</div></body></html>`)
	got := c.Classify(bare)
	if got.IsCheckout {
		t.Error("bare cart classified as checkout")
	}
	if !got.IsCartView {
		t.Error("bare cart not flagged as cart view")
	}

	withButton := mustPage(t, "https://shop.example.com/cart",
		`<html><body><button class="checkout-button">Proceed to checkout</button></body></html>`)
	got = c.Classify(withButton)
	if !got.IsCheckout {
		t.Error("cart with checkout button not classified as checkout")
	}

	withTestID := mustPage(t, "https://shop.example.com/cart",
		`<html><body><a data-testid="checkout-link">Pay now</a></body></html>`)
	if got := c.Classify(withTestID); !got.IsCheckout {
		t.Error("cart with data-testid checkout affordance not classified as checkout")
	}
}

func TestClassifyStateless(t *testing.T) {
	c := NewClassifier(merchant.NewResolver())
	p := mustPage(t, "https://shop.example.com/checkout", "<html><body></body></html>")
	first := c.Classify(p)
	for i := 0; i < 5; i++ {
		if got := c.Classify(p); got != first {
			t.Fatalf("Classify not stable: %+v then %+v", first, got)
		}
	}
}
