package pricing

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Tier is the severity band a single score falls into
type Tier string

const (
	TierRed   Tier = "red"
	TierAmber Tier = "amber"
	TierGreen Tier = "green"
)

// Tier boundaries. A score below AmberThreshold is red, below GreenThreshold amber, otherwise green.
const (
	AmberThreshold = 50.0
	GreenThreshold = 90.0
)

// Severity describes the tier of one score together with its base price
type Severity struct {
	Tier        Tier    `json:"tier"`
	Name        string  `json:"name"`
	BasePrice   float64 `json:"basePrice"`
	ProblemText string  `json:"problemText"`
}

// Category names one of the three scored Lighthouse categories
type Category string

const (
	CategoryPerformance   Category = "performance"
	CategorySEO           Category = "seo"
	CategoryAccessibility Category = "accessibility"
)

// Categories lists the scored categories in display order
var Categories = []Category{CategoryPerformance, CategorySEO, CategoryAccessibility}

// Title returns the human readable category name
func (c Category) Title() string {
	switch c {
	case CategorySEO:
		return "SEO"
	case CategoryAccessibility:
		return "Accessibility"
	default:
		return "Performance"
	}
}

// Scores holds the three category scores offers are derived from
type Scores struct {
	Performance   float64 `json:"performance"`
	SEO           float64 `json:"seo"`
	Accessibility float64 `json:"accessibility"`
}

// Get returns the score of the given category
func (s Scores) Get(c Category) float64 {
	switch c {
	case CategorySEO:
		return s.SEO
	case CategoryAccessibility:
		return s.Accessibility
	default:
		return s.Performance
	}
}

// Size is the client-declared size of the website
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// ParseSize accepts small, medium or large in any case
func ParseSize(s string) (Size, error) {
	switch Size(strings.ToLower(strings.TrimSpace(s))) {
	case SizeSmall:
		return SizeSmall, nil
	case SizeMedium:
		return SizeMedium, nil
	case SizeLarge:
		return SizeLarge, nil
	}
	return "", fmt.Errorf("unknown site size %q", s)
}

const customQuoteLabel = "Custom Quote"

// Price is either a concrete amount or the Custom Quote sentinel.
// The zero value is an amount of 0.
type Price struct {
	amount float64
	custom bool
}

// Amount returns a numeric price
func Amount(v float64) Price {
	return Price{amount: v}
}

// CustomQuote returns the sentinel used when no numeric price can be given
func CustomQuote() Price {
	return Price{custom: true}
}

// IsCustomQuote reports whether p carries no numeric value
func (p Price) IsCustomQuote() bool {
	return p.custom
}

// Value returns the amount and false for a Custom Quote
func (p Price) Value() (float64, bool) {
	if p.custom {
		return 0, false
	}
	return p.amount, true
}

// Format renders the price with the given currency symbol
func (p Price) Format(currency string) string {
	if p.custom {
		return customQuoteLabel
	}
	return currency + strconv.FormatFloat(p.amount, 'f', 2, 64)
}

func (p Price) String() string {
	return p.Format(DefaultCurrency)
}

// MarshalJSON encodes amounts as numbers and the sentinel as "Custom Quote"
func (p Price) MarshalJSON() ([]byte, error) {
	if p.custom {
		return json.Marshal(customQuoteLabel)
	}
	return json.Marshal(p.amount)
}

func (p *Price) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		if label != customQuoteLabel {
			return fmt.Errorf("invalid price %q", label)
		}
		*p = CustomQuote()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid price: %w", err)
	}
	*p = Amount(v)
	return nil
}

// ServiceOffer is one purchasable service, either for a category or a bundle of all three
type ServiceOffer struct {
	Name     string   `json:"name"`
	Category Category `json:"category,omitempty"`
	Tier     Tier     `json:"tier"`
	Bundle   bool     `json:"bundle"`
	Price    Price    `json:"price"`
	Details  []string `json:"details"`
}

// DIYPlan is self-service advice for sites on hosted builders, where most fixes are in the owner's hands
type DIYPlan struct {
	Title     string   `json:"title"`
	Problems  []string `json:"problems"`
	Steps     []string `json:"steps"`
	AuditFrom Price    `json:"auditFrom"`
}

// OfferSet is everything the pricing engine recommends for one set of scores.
// Bundle is set only when all three categories share a tier; Offers is then empty.
type OfferSet struct {
	Bundle  *ServiceOffer     `json:"bundle,omitempty"`
	Offers  []ServiceOffer    `json:"offers"`
	DIYPlan *DIYPlan          `json:"diyPlan,omitempty"`
	Praise  []string          `json:"praise"`
	Tiers   map[Category]Tier `json:"tiers"`
}
