// internal/merchant/resolver.go
package merchant

import (
	"strings"
	"sync"

	"card-assistant/internal/domain"
)

// Known retailers, first match wins.
var merchants = []domain.Merchant{
	// Groceries
	{Name: "Safeway", Domain: "safeway.com", Category: domain.CategoryGroceries},
	{Name: "Kroger", Domain: "kroger.com", Category: domain.CategoryGroceries},
	{Name: "Whole Foods", Domain: "wholefoodsmarket.com", Category: domain.CategoryGroceries},

	// General / online
	{Name: "Amazon", Domain: "amazon.com", Category: domain.CategoryOnline},
	{Name: "Walmart", Domain: "walmart.com", Category: domain.CategoryGeneral},

	// Electronics
	{Name: "Best Buy", Domain: "bestbuy.com", Category: domain.CategoryElectronics},
	{Name: "Newegg", Domain: "newegg.com", Category: domain.CategoryElectronics},

	// Department stores
	{Name: "Target", Domain: "target.com", Category: domain.CategoryDepartmentStores},
	{Name: "Macy's", Domain: "macys.com", Category: domain.CategoryDepartmentStores},

	// Warehouse clubs
	{Name: "Costco", Domain: "costco.com", Category: domain.CategoryWarehouseClubs},

	// Gas
	{Name: "Shell", Domain: "shell.com", Category: domain.CategoryGas},

	// Travel
	{Name: "Expedia", Domain: "expedia.com", Category: domain.CategoryTravel},
	{Name: "Southwest Airlines", Domain: "southwest.com", Category: domain.CategoryTravel},

	// Dining
	{Name: "DoorDash", Domain: "doordash.com", Category: domain.CategoryDining},
	{Name: "Uber Eats", Domain: "ubereats.com", Category: domain.CategoryDining},

	// Pharmacy
	{Name: "CVS", Domain: "cvs.com", Category: domain.CategoryPharmacy},
	{Name: "Walgreens", Domain: "walgreens.com", Category: domain.CategoryPharmacy},
}

// Resolver maps hostnames to known merchants. Lookup over the static
// table, plus any custom merchants appended at runtime. Safe for
// concurrent use; sessions read while the API may append.
type Resolver struct {
	mu    sync.RWMutex
	table []domain.Merchant
}

func NewResolver() *Resolver {
	table := make([]domain.Merchant, len(merchants))
	copy(table, merchants)
	return &Resolver{table: table}
}

// Add appends a custom merchant after the static table.
func (r *Resolver) Add(m domain.Merchant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table = append(r.table, m)
}

// Normalize lowercases a hostname and strips the www. prefix.
func Normalize(hostname string) string {
	return strings.TrimPrefix(strings.ToLower(hostname), "www.")
}

// Resolve returns the merchant for a hostname, or nil when unknown.
// Matching is bidirectional substring containment so subdomains like
// smile.amazon.com still resolve.
func (r *Resolver) Resolve(hostname string) *domain.Merchant {
	host := Normalize(hostname)
	if host == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.table {
		m := r.table[i]
		if strings.Contains(host, m.Domain) || strings.Contains(m.Domain, host) {
			return &m
		}
	}
	return nil
}

// CategoryOf returns the merchant category for a hostname, defaulting
// to general when the hostname is unknown.
func (r *Resolver) CategoryOf(hostname string) domain.Category {
	if m := r.Resolve(hostname); m != nil {
		return m.Category
	}
	return domain.CategoryGeneral
}

// All returns a copy of the merchant table.
func (r *Resolver) All() []domain.Merchant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Merchant, len(r.table))
	copy(out, r.table)
	return out
}
