// Package complexity scores a project request by keyword matching and
// renders the advisory reply shown on the intake form. It is a plain
// deterministic heuristic with no model or external call behind it.
package complexity

import (
	"strings"
)

type Tier string

const (
	TierLow    Tier = "Low"
	TierMedium Tier = "Medium"
	TierHigh   Tier = "High"
)

// Label is the Indonesian word used in replies.
func (t Tier) Label() string {
	switch t {
	case TierLow:
		return "rendah"
	case TierMedium:
		return "sedang"
	case TierHigh:
		return "tinggi"
	}
	return string(t)
}

// Budget tiers offered by the intake form.
const (
	BudgetLessThan5  = "less-than-5jt"
	Budget5To10      = "5jt-10jt"
	Budget10To25     = "10jt-25jt"
	Budget25To50     = "25jt-50jt"
	BudgetMoreThan50 = "more-than-50jt"
	BudgetNotSure    = "not-sure"
)

// Band maps a minimum score to a tier and cost range.
type Band struct {
	MinScore  int
	Tier      Tier
	CostRange string
}

// Rules is the keyword data behind Classify. Bands must be sorted by
// MinScore descending; the last band should have MinScore 0.
type Rules struct {
	HighKeywords   []string
	MediumKeywords []string
	HighWeight     int
	MediumWeight   int
	Bands          []Band
	Timelines      map[Tier]string
}

func DefaultRules() Rules {
	return Rules{
		HighKeywords: []string{
			"login", "register", "authenticat", "payment", "payment gateway",
			"real-time", "database", "admin panel", "dashboard", "api",
			"integrat", "ecommerce", "chat", "notification", "push",
			"cloud", "machine learning", "ai", "ml", "data analysis",
			"report", "analytics", "multi user", "role", "permission",
			"payment integration", "login system", "user management",
		},
		MediumKeywords: []string{
			"form", "database", "multi", "responsive", "mobile",
			"web app", "application", "search", "filter", "sort",
		},
		HighWeight:   2,
		MediumWeight: 1,
		Bands: []Band{
			{MinScore: 10, Tier: TierHigh, CostRange: "> Rp 50.000.000"},
			{MinScore: 6, Tier: TierHigh, CostRange: "Rp 25.000.000 - Rp 50.000.000"},
			{MinScore: 3, Tier: TierMedium, CostRange: "Rp 10.000.000 - Rp 25.000.000"},
			{MinScore: 0, Tier: TierLow, CostRange: "< Rp 10.000.000"},
		},
		Timelines: map[Tier]string{
			TierLow:    "2-4 minggu",
			TierMedium: "1-3 bulan",
			TierHigh:   "3-6 bulan",
		},
	}
}

// Assessment is the outcome of Classify.
type Assessment struct {
	Score     int    `json:"score"`
	Tier      Tier   `json:"tier"`
	CostRange string `json:"cost_range"`
	// Estimate is CostRange, or an advisory when the budget does not fit.
	Estimate string `json:"estimate"`
	Advisory bool   `json:"advisory"`
	Timeline string `json:"timeline"`
	Budget   string `json:"budget"`
}

// Score counts keyword hits in features and description, case-insensitively.
// Each keyword counts once no matter how often it appears.
func Score(rules Rules, features, description string) int {
	f := strings.ToLower(features)
	d := strings.ToLower(description)
	score := 0
	for _, kw := range rules.HighKeywords {
		if strings.Contains(f, kw) || strings.Contains(d, kw) {
			score += rules.HighWeight
		}
	}
	for _, kw := range rules.MediumKeywords {
		if strings.Contains(f, kw) || strings.Contains(d, kw) {
			score += rules.MediumWeight
		}
	}
	return score
}

// Classify is pure: equal inputs give equal assessments.
func Classify(rules Rules, features, description, budget string) Assessment {
	score := Score(rules, features, description)

	band := Band{Tier: TierLow}
	for _, b := range rules.Bands {
		if score >= b.MinScore {
			band = b
			break
		}
	}

	a := Assessment{
		Score:     score,
		Tier:      band.Tier,
		CostRange: band.CostRange,
		Estimate:  band.CostRange,
		Timeline:  rules.Timelines[band.Tier],
		Budget:    budget,
	}
	if advice, ok := budgetAdvice(a.Tier, a.CostRange, budget); ok {
		a.Estimate = advice
		a.Advisory = true
	}
	return a
}

func budgetAdvice(tier Tier, costRange, budget string) (string, bool) {
	switch {
	case budget == BudgetLessThan5 && tier != TierLow:
		return "Kami menyarankan anggaran yang lebih tinggi untuk proyek dengan kompleksitas " + tier.Label() + ".", true
	case budget == BudgetNotSure:
		return "Berdasarkan fitur yang Anda inginkan, perkiraan biaya yang sesuai adalah " + costRange, true
	case tier == TierHigh && budget == Budget5To10:
		return "Proyek dengan kompleksitas tinggi biasanya membutuhkan anggaran di atas Rp 25.000.000. Kami menyarankan untuk menyesuaikan anggaran Anda.", true
	}
	return "", false
}

// FormatBudget renders a budget tier key for display. Unknown keys pass through.
func FormatBudget(key string) string {
	switch key {
	case BudgetLessThan5:
		return "< Rp 5.000.000"
	case Budget5To10:
		return "Rp 5.000.000 - Rp 10.000.000"
	case Budget10To25:
		return "Rp 10.000.000 - Rp 25.000.000"
	case Budget25To50:
		return "Rp 25.000.000 - Rp 50.000.000"
	case BudgetMoreThan50:
		return "> Rp 50.000.000"
	case BudgetNotSure:
		return "Belum pasti"
	}
	return key
}
