package billing

import "strings"

// Plan identifiers known to the catalog.
const (
	PlanBasic   = "basic"
	PlanPremium = "premium"
)

// Plan is one entry of the static plan catalog. Rank imposes the total
// order used for entitlement comparison; ids are never compared directly.
type Plan struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Rank       int      `json:"-"`
	PriceCents int64    `json:"price_cents"`
	Currency   string   `json:"currency"`
	Interval   string   `json:"interval"`
	Features   []string `json:"features"`
}

var planCatalog = []Plan{
	{
		ID:         PlanBasic,
		Name:       "Basic Plan",
		Rank:       1,
		PriceCents: 999,
		Currency:   "usd",
		Interval:   "month",
		Features: []string{
			"Access to basic content library",
			"HD streaming quality",
			"Watch on 1 device",
			"Cancel anytime",
		},
	},
	{
		ID:         PlanPremium,
		Name:       "Premium Plan",
		Rank:       2,
		PriceCents: 1999,
		Currency:   "usd",
		Interval:   "month",
		Features: []string{
			"Access to full content library",
			"4K Ultra HD streaming",
			"Watch on 4 devices simultaneously",
			"Download for offline viewing",
			"Priority support",
			"Cancel anytime",
		},
	},
}

// Plans returns the catalog in rank order.
func Plans() []Plan {
	out := make([]Plan, len(planCatalog))
	copy(out, planCatalog)
	return out
}

// PlanByID looks up a plan by identifier.
func PlanByID(id string) (Plan, bool) {
	id = normalizePlanID(id)
	for _, p := range planCatalog {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// PlanRank returns the entitlement rank for a plan id, 0 for unknown plans.
func PlanRank(id string) int {
	if p, ok := PlanByID(id); ok {
		return p.Rank
	}
	return 0
}

func normalizePlanID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
