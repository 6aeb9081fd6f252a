package pricing

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultCurrency is the symbol prices are formatted with unless the catalog overrides it
const DefaultCurrency = "£"

// TierPrices holds one price per tier
type TierPrices struct {
	Red   float64 `yaml:"red"`
	Amber float64 `yaml:"amber"`
	Green float64 `yaml:"green"`
}

// For returns the price configured for t
func (p TierPrices) For(t Tier) float64 {
	switch t {
	case TierRed:
		return p.Red
	case TierAmber:
		return p.Amber
	default:
		return p.Green
	}
}

// SizeMultipliers scales prices by site size. Large sites are always quoted individually.
type SizeMultipliers struct {
	Small  float64 `yaml:"small"`
	Medium float64 `yaml:"medium"`
}

// Catalog carries every number the engine prices with
type Catalog struct {
	Currency                string          `yaml:"currency"`
	BasePrices              TierPrices      `yaml:"basePrices"`
	SizeMultipliers         SizeMultipliers `yaml:"sizeMultipliers"`
	OtherPlatformMultiplier float64         `yaml:"otherPlatformMultiplier"`
	BundleDiscounts         TierPrices      `yaml:"bundleDiscounts"`
	GreenBundlePrice        float64         `yaml:"greenBundlePrice"`
}

// DefaultCatalog returns the standard price list
func DefaultCatalog() Catalog {
	return Catalog{
		Currency: DefaultCurrency,
		BasePrices: TierPrices{
			Red:   300,
			Amber: 150,
			Green: 75,
		},
		SizeMultipliers: SizeMultipliers{
			Small:  1,
			Medium: 1.5,
		},
		OtherPlatformMultiplier: 0.75,
		BundleDiscounts: TierPrices{
			Red:   0.15,
			Amber: 0.10,
		},
		GreenBundlePrice: 99,
	}
}

// LoadCatalog reads a YAML price list. Fields absent from the file keep their default values.
func LoadCatalog(path string) (Catalog, error) {
	catalog := DefaultCatalog()

	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to read pricing file: %w", err)
	}
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return Catalog{}, fmt.Errorf("failed to parse pricing file %s: %w", path, err)
	}
	if err := catalog.Validate(); err != nil {
		return Catalog{}, fmt.Errorf("invalid pricing file %s: %w", path, err)
	}
	return catalog, nil
}

// Validate rejects catalogs that would produce negative or nonsensical prices
func (c Catalog) Validate() error {
	var errs []error
	for _, t := range []Tier{TierRed, TierAmber, TierGreen} {
		if c.BasePrices.For(t) <= 0 {
			errs = append(errs, fmt.Errorf("base price for %s must be positive", t))
		}
		if d := c.BundleDiscounts.For(t); d < 0 || d >= 1 {
			errs = append(errs, fmt.Errorf("bundle discount for %s must be in [0, 1)", t))
		}
	}
	if c.SizeMultipliers.Small <= 0 || c.SizeMultipliers.Medium <= 0 {
		errs = append(errs, errors.New("size multipliers must be positive"))
	}
	if c.OtherPlatformMultiplier <= 0 {
		errs = append(errs, errors.New("otherPlatformMultiplier must be positive"))
	}
	if c.GreenBundlePrice <= 0 {
		errs = append(errs, errors.New("greenBundlePrice must be positive"))
	}
	return errors.Join(errs...)
}
