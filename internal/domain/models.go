// internal/domain/models.go
package domain

import "time"

// Category is a merchant spending category.
type Category string

const (
	CategoryGeneral          Category = "general"
	CategoryGroceries        Category = "groceries"
	CategoryGas              Category = "gas"
	CategoryTravel           Category = "travel"
	CategoryDining           Category = "dining"
	CategoryOnline           Category = "online"
	CategoryDepartmentStores Category = "department_stores"
	CategoryElectronics      Category = "electronics"
	CategoryPharmacy         Category = "pharmacy"
	CategoryWarehouseClubs   Category = "warehouse_clubs"
)

// Categories lists every known category, used by validation.
var Categories = []Category{
	CategoryGeneral, CategoryGroceries, CategoryGas, CategoryTravel,
	CategoryDining, CategoryOnline, CategoryDepartmentStores,
	CategoryElectronics, CategoryPharmacy, CategoryWarehouseClubs,
}

type CapPeriod string

const (
	CapMonthly   CapPeriod = "monthly"
	CapQuarterly CapPeriod = "quarterly"
	CapYearly    CapPeriod = "yearly"
)

// Cap is a periodic ceiling on how much spend earns the stated rate.
// CurrentUsage may exceed Amount, meaning the cap is reached.
type Cap struct {
	Amount       float64   `json:"amount"`
	Period       CapPeriod `json:"period"`
	CurrentUsage float64   `json:"currentUsage"`
}

// RewardRule — категория + ставка, with an optional cap.
type RewardRule struct {
	Category   Category `json:"category"`
	RewardRate float64  `json:"rewardRate"` // as decimal, 0.05 = 5%
	Cap        *Cap     `json:"cap,omitempty"`
}

type Card struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	RewardStructure []RewardRule `json:"rewardStructure"`
	IsActive        bool         `json:"isActive"`
	CreatedAt       time.Time    `json:"createdAt"`
}

type Merchant struct {
	Name     string   `json:"name"`
	Domain   string   `json:"domain"`
	Category Category `json:"category"`
}

// Transaction is a confirmed purchase logged against a recommendation.
type Transaction struct {
	ID               string    `json:"id"`
	MerchantName     string    `json:"merchantName"`
	Category         Category  `json:"category"`
	Amount           float64   `json:"amount"`
	CardUsed         string    `json:"cardUsed,omitempty"` // card id
	RecommendedCard  string    `json:"recommendedCard"`    // card id
	PotentialSavings float64   `json:"potentialSavings"`
	Timestamp        time.Time `json:"timestamp"`
}

type Settings struct {
	EnableNotifications bool `json:"enableNotifications"`
	TrackSpending       bool `json:"trackSpending"`
	DarkMode            bool `json:"darkMode"`
}

func DefaultSettings() Settings {
	return Settings{EnableNotifications: true, TrackSpending: true, DarkMode: false}
}

// CachedCartAmount is the last total snapshotted on an intermediate
// cart view, kept around as the estimator's fallback.
type CachedCartAmount struct {
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
	URL       string    `json:"url"`
}

// Recommendation is recomputed on every pipeline cycle, never stored.
type Recommendation struct {
	Card            Card     `json:"card"`
	RewardRate      float64  `json:"rewardRate"`
	RewardAmount    float64  `json:"rewardAmount"`
	Reasoning       string   `json:"reasoning"`
	IsCapReached    bool     `json:"isCapReached"`
	RemainingCap    *float64 `json:"remainingCap,omitempty"`
	EstimatedAmount float64  `json:"estimatedAmount"`
	MerchantName    string   `json:"merchantName"`
	Category        Category `json:"category"`
}
