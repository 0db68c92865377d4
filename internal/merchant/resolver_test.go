// internal/merchant/resolver_test.go
package merchant

import (
	"testing"

	"card-assistant/internal/domain"
)

func TestResolve(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		hostname string
		wantName string
	}{
		{"amazon.com", "Amazon"},
		{"www.amazon.com", "Amazon"},
		{"smile.amazon.com", "Amazon"},
		{"WWW.COSTCO.COM", "Costco"},
		{"safeway.com", "Safeway"},
		{"bestbuy.com", "Best Buy"},
		{"doordash.com", "DoorDash"},
	}

	for _, tt := range tests {
		m := r.Resolve(tt.hostname)
		if m == nil {
			t.Errorf("Resolve(%q) = nil, want %q", tt.hostname, tt.wantName)
			continue
		}
		if m.Name != tt.wantName {
			t.Errorf("Resolve(%q) = %q, want %q", tt.hostname, m.Name, tt.wantName)
		}
	}
}

func TestResolveUnknown(t *testing.T) {
	r := NewResolver()
	if m := r.Resolve("example.com"); m != nil {
		t.Errorf("Resolve(example.com) = %+v, want nil", m)
	}
	if m := r.Resolve(""); m != nil {
		t.Errorf("Resolve(\"\") = %+v, want nil", m)
	}
}

func TestCategoryOf(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		hostname string
		want     domain.Category
	}{
		{"safeway.com", domain.CategoryGroceries},
		{"amazon.com", domain.CategoryOnline},
		{"walmart.com", domain.CategoryGeneral},
		{"target.com", domain.CategoryDepartmentStores},
		{"shell.com", domain.CategoryGas},
		{"unknown-store.example", domain.CategoryGeneral},
	}

	for _, tt := range tests {
		if got := r.CategoryOf(tt.hostname); got != tt.want {
			t.Errorf("CategoryOf(%q) = %q, want %q", tt.hostname, got, tt.want)
		}
	}
}

func TestAddCustomMerchant(t *testing.T) {
	r := NewResolver()
	r.Add(domain.Merchant{Name: "Corner Shop", Domain: "cornershop.example", Category: domain.CategoryGroceries})

	m := r.Resolve("cornershop.example")
	if m == nil || m.Name != "Corner Shop" {
		t.Fatalf("Resolve(cornershop.example) = %+v, want Corner Shop", m)
	}

	// Static entries take precedence over custom ones.
	r.Add(domain.Merchant{Name: "Fake Amazon", Domain: "amazon.com", Category: domain.CategoryGas})
	if m := r.Resolve("amazon.com"); m == nil || m.Name != "Amazon" {
		t.Errorf("Resolve(amazon.com) = %+v, want static Amazon entry", m)
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("WWW.Amazon.COM"); got != "amazon.com" {
		t.Errorf("Normalize = %q, want amazon.com", got)
	}
}
