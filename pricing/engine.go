package pricing

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrUnknownService is returned when a requested service names neither a category nor the bundle
	ErrUnknownService = errors.New("unknown service")
	// ErrOfferUnavailable is returned when the requested service is not offered for the given scores
	ErrOfferUnavailable = errors.New("service is not offered for these scores")
)

// ServiceBundle is the service name that selects the combined offer
const ServiceBundle = "bundle"

const wordPress = "wordpress"

// hostedBuilders are platforms whose owners get a DIYPlan alongside the offers
var hostedBuilders = map[string]string{
	"shopify":     "Shopify",
	"wix":         "Wix",
	"squarespace": "Squarespace",
}

type tierCopy struct {
	name    string
	problem string
	details map[Category][]string
	bundle  []string
}

var tierText = map[Tier]tierCopy{
	TierRed: {
		name:    "Red Zone Rescue",
		problem: "Critical issues are costing you visitors and search ranking.",
		details: map[Category][]string{
			CategoryPerformance: {
				"Full performance audit with a prioritised remediation plan",
				"Minification and deferral of render-blocking CSS and JavaScript",
				"Image optimisation and caching setup",
				"Server response time review",
			},
			CategorySEO: {
				"Technical SEO audit",
				"Rewritten page titles and meta descriptions",
				"Crawlability and indexing fixes",
				"Structured data setup",
			},
			CategoryAccessibility: {
				"WCAG 2.1 AA audit",
				"Colour contrast and font sizing fixes",
				"Alt text for every image",
				"Keyboard navigation and ARIA labelling",
			},
		},
		bundle: []string{
			"Everything in the Performance, SEO and Accessibility rescue packages",
			"A single prioritised plan covering all three areas",
		},
	},
	TierAmber: {
		name:    "Amber Zone Audit",
		problem: "Noticeable issues are holding your site back.",
		details: map[Category][]string{
			CategoryPerformance: {
				"Caching plugin installation and configuration",
				"Optimisation of existing images and automatic optimisation of new uploads",
				"Database cleanup",
			},
			CategorySEO: {
				"Meta tag review",
				"Heading structure fixes",
				"Sitemap and robots.txt check",
			},
			CategoryAccessibility: {
				"Contrast and alt text review",
				"Form label fixes",
				"ARIA landmark check",
			},
		},
		bundle: []string{
			"Everything in the Performance, SEO and Accessibility audit packages",
		},
	},
	TierGreen: {
		name:    "Green Zone Polish",
		problem: "Your site is already in great shape.",
		bundle: []string{
			"Quarterly health check across performance, SEO and accessibility",
			"Fine-tuning of the remaining minor issues",
		},
	},
}

// Engine turns scores into severities, prices and offers using one catalog
type Engine struct {
	catalog Catalog
}

// NewEngine creates an engine for the given catalog
func NewEngine(catalog Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// Catalog returns the price list the engine was built with
func (e *Engine) Catalog() Catalog {
	return e.catalog
}

// Clamp limits a score to [0, 100]
func Clamp(score float64) float64 {
	switch {
	case math.IsNaN(score), score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}

// TierFor returns the tier of a score after clamping it
func TierFor(score float64) Tier {
	score = Clamp(score)
	switch {
	case score < AmberThreshold:
		return TierRed
	case score < GreenThreshold:
		return TierAmber
	default:
		return TierGreen
	}
}

// Severity maps one score to its tier and base price
func (e *Engine) Severity(score float64) Severity {
	tier := TierFor(score)
	text := tierText[tier]
	return Severity{
		Tier:        tier,
		Name:        text.name,
		BasePrice:   e.catalog.BasePrices.For(tier),
		ProblemText: text.problem,
	}
}

// CalculatePrice applies size and platform multipliers to a base price.
// Large sites always get a Custom Quote. Sizes that ParseSize would reject are priced as small.
func (e *Engine) CalculatePrice(basePrice float64, size Size, platform string) Price {
	if size == SizeLarge {
		return CustomQuote()
	}
	return Amount(roundCents(basePrice * e.sizeMultiplier(size) * e.platformMultiplier(platform)))
}

func (e *Engine) sizeMultiplier(size Size) float64 {
	if size == SizeMedium {
		return e.catalog.SizeMultipliers.Medium
	}
	return e.catalog.SizeMultipliers.Small
}

func (e *Engine) platformMultiplier(platform string) float64 {
	if strings.EqualFold(strings.TrimSpace(platform), wordPress) {
		return 1
	}
	return e.catalog.OtherPlatformMultiplier
}

// BuildOffers derives the offers for a set of scores.
// When all three categories share a tier a single bundle replaces the individual offers.
func (e *Engine) BuildOffers(scores Scores, size Size, platform string) OfferSet {
	set := OfferSet{
		Offers: []ServiceOffer{},
		Praise: []string{},
		Tiers:  make(map[Category]Tier, len(Categories)),
	}
	for _, c := range Categories {
		set.Tiers[c] = TierFor(scores.Get(c))
	}
	if name, ok := hostedBuilders[strings.ToLower(strings.TrimSpace(platform))]; ok {
		if set.Tiers[CategoryPerformance] == TierGreen {
			set.Praise = append(set.Praise, fmt.Sprintf("Your %s site is performing well. Continue to follow best practices for content and images.", name))
		} else {
			set.DIYPlan = e.diyPlan(name)
		}
	}

	if tier, ok := sharedTier(set.Tiers); ok {
		bundle := e.bundleOffer(tier, size, platform)
		set.Bundle = &bundle
		if tier == TierGreen {
			set.Praise = append(set.Praise, "Every category is in the green zone. Keep up the good work!")
		}
		return set
	}

	for _, c := range Categories {
		severity := e.Severity(scores.Get(c))
		if severity.Tier == TierGreen {
			set.Praise = append(set.Praise, fmt.Sprintf("%s is in the green zone. Keep up the good work!", c.Title()))
			continue
		}
		set.Offers = append(set.Offers, ServiceOffer{
			Name:     severity.Name + ": " + c.Title(),
			Category: c,
			Tier:     severity.Tier,
			Price:    e.CalculatePrice(severity.BasePrice, size, platform),
			Details:  append([]string{severity.ProblemText}, tierText[severity.Tier].details[c]...),
		})
	}
	return set
}

// OfferFor builds the single offer a user asked for. service is either ServiceBundle or a category name.
func (e *Engine) OfferFor(service string, scores Scores, size Size, platform string) (ServiceOffer, error) {
	service = strings.ToLower(strings.TrimSpace(service))
	set := e.BuildOffers(scores, size, platform)

	if service == ServiceBundle {
		if set.Bundle == nil {
			return ServiceOffer{}, fmt.Errorf("%w: %s", ErrOfferUnavailable, service)
		}
		return *set.Bundle, nil
	}

	category := Category(service)
	if _, ok := set.Tiers[category]; !ok {
		return ServiceOffer{}, fmt.Errorf("%w: %q", ErrUnknownService, service)
	}
	for _, offer := range set.Offers {
		if offer.Category == category {
			return offer, nil
		}
	}
	return ServiceOffer{}, fmt.Errorf("%w: %s", ErrOfferUnavailable, service)
}

func (e *Engine) bundleOffer(tier Tier, size Size, platform string) ServiceOffer {
	text := tierText[tier]
	offer := ServiceOffer{
		Name:    text.name + " Bundle",
		Tier:    tier,
		Bundle:  true,
		Details: append([]string{}, text.bundle...),
	}

	if tier == TierGreen {
		offer.Price = Amount(e.catalog.GreenBundlePrice)
		return offer
	}

	discount := e.catalog.BundleDiscounts.For(tier)
	summed := e.catalog.BasePrices.For(tier) * float64(len(Categories))
	offer.Price = e.CalculatePrice(summed*(1-discount), size, platform)
	offer.Details = append(offer.Details, fmt.Sprintf("%.0f%% off the individual packages", discount*100))
	return offer
}

func (e *Engine) diyPlan(name string) *DIYPlan {
	return &DIYPlan{
		Title: name + " Performance Plan",
		Problems: []string{
			fmt.Sprintf("Unoptimised images are the most common cause of slow %s sites.", name),
			"Too many apps or custom scripts can bog down performance.",
			"Large videos or custom fonts can increase load times.",
		},
		Steps: []string{
			"Compress all images before uploading them.",
			"Regularly review and remove unused apps.",
			"Use platform-native features wherever possible instead of third-party code.",
		},
		AuditFrom: Amount(e.catalog.BasePrices.Amber),
	}
}

func sharedTier(tiers map[Category]Tier) (Tier, bool) {
	first := tiers[Categories[0]]
	for _, c := range Categories[1:] {
		if tiers[c] != first {
			return "", false
		}
	}
	return first, true
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
