// internal/reward/engine.go
package reward

import (
	"fmt"
	"sort"
	"strconv"

	"card-assistant/internal/domain"
)

// Engine picks the card with the highest reward for a category and
// amount. It never mutates cards or caps; cap bookkeeping belongs to
// confirmed transactions, not to estimation.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Recommend returns the best recommendation across all active cards,
// or nil when no active card has an applicable rule. Ties keep input
// order: the first card encountered wins.
func (e *Engine) Recommend(cards []domain.Card, category domain.Category, amount float64) *domain.Recommendation {
	recs := e.AllRecommendations(cards, category, amount)
	if len(recs) == 0 {
		return nil
	}
	return &recs[0]
}

// AllRecommendations evaluates every active card with a matching rule,
// sorted by reward descending. The sort is stable so equal rewards
// stay in input order.
func (e *Engine) AllRecommendations(cards []domain.Card, category domain.Category, amount float64) []domain.Recommendation {
	var recs []domain.Recommendation
	for _, card := range cards {
		if !card.IsActive {
			continue
		}
		rule := bestRule(card, category)
		if rule == nil {
			continue
		}
		recs = append(recs, buildRecommendation(card, rule, amount))
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].RewardAmount > recs[j].RewardAmount
	})
	return recs
}

// Compare returns the best card, up to two alternatives, and the
// reward spread between the best and worst candidate.
func (e *Engine) Compare(cards []domain.Card, category domain.Category, amount float64) (*domain.Recommendation, []domain.Recommendation, float64) {
	recs := e.AllRecommendations(cards, category, amount)
	if len(recs) == 0 {
		return nil, nil, 0
	}
	best := &recs[0]
	alternatives := recs[1:min(len(recs), 3)]
	spread := best.RewardAmount - recs[len(recs)-1].RewardAmount
	return best, alternatives, spread
}

// PotentialSavings is how much reward was left on the table by using a
// different card than the recommended one.
func PotentialSavings(actualReward, optimalReward float64) float64 {
	if optimalReward <= actualReward {
		return 0
	}
	return optimalReward - actualReward
}

// bestRule matches exact category first, then general, then online —
// the online fallback applies to general purchases only.
func bestRule(card domain.Card, category domain.Category) *domain.RewardRule {
	for i := range card.RewardStructure {
		if card.RewardStructure[i].Category == category {
			return &card.RewardStructure[i]
		}
	}
	for i := range card.RewardStructure {
		if card.RewardStructure[i].Category == domain.CategoryGeneral {
			return &card.RewardStructure[i]
		}
	}
	if category == domain.CategoryGeneral {
		for i := range card.RewardStructure {
			if card.RewardStructure[i].Category == domain.CategoryOnline {
				return &card.RewardStructure[i]
			}
		}
	}
	return nil
}

func buildRecommendation(card domain.Card, rule *domain.RewardRule, amount float64) domain.Recommendation {
	rec := domain.Recommendation{
		Card:       card,
		RewardRate: rule.RewardRate,
		Reasoning:  fmt.Sprintf("%.1f%% back on %s", rule.RewardRate*100, rule.Category),
	}

	effective := amount
	if rule.Cap != nil {
		remaining := rule.Cap.Amount - rule.Cap.CurrentUsage
		if remaining < 0 {
			remaining = 0
		}
		rec.RemainingCap = &remaining

		switch {
		case remaining <= 0:
			// Cap exhausted: this rule earns nothing more.
			effective = 0
			rec.IsCapReached = true
			rec.Reasoning += fmt.Sprintf(" (cap reached: $%s %s)", fmtDollar(rule.Cap.Amount), rule.Cap.Period)
		case amount > remaining:
			// Partial reward up to the cap boundary only.
			effective = remaining
			rec.Reasoning += fmt.Sprintf(" (partial: $%.2f until $%s %s cap)", effective, fmtDollar(rule.Cap.Amount), rule.Cap.Period)
		default:
			usageAfter := rule.Cap.CurrentUsage + amount
			rec.Reasoning += fmt.Sprintf(" ($%.2f of $%s %s cap used)", usageAfter, fmtDollar(rule.Cap.Amount), rule.Cap.Period)
		}
	}

	rec.RewardAmount = effective * rule.RewardRate
	return rec
}

func fmtDollar(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
