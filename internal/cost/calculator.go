package cost

// Rates holds per-call pricing in USD for each upstream.
type Rates struct {
	PlacesTextSearch float64 `yaml:"places_text_search" mapstructure:"places_text_search"`
	PlacesDetails    float64 `yaml:"places_details" mapstructure:"places_details"`
	PageSpeed        float64 `yaml:"pagespeed" mapstructure:"pagespeed"`
}

// Usage counts upstream calls made during one run.
type Usage struct {
	TextSearches int `json:"text_searches"`
	Details      int `json:"details"`
	Analyses     int `json:"analyses"`
}

// Calculator computes costs for API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Estimate returns the USD cost of the given usage.
func (c *Calculator) Estimate(u Usage) float64 {
	return float64(u.TextSearches)*c.rates.PlacesTextSearch +
		float64(u.Details)*c.rates.PlacesDetails +
		float64(u.Analyses)*c.rates.PageSpeed
}

// WorstCase returns the cost upper bound for a run over industries
// industries with at most maxPerIndustry candidates each.
func (c *Calculator) WorstCase(industries, maxPerIndustry int) float64 {
	if industries <= 0 {
		return 0
	}
	if maxPerIndustry < 0 {
		maxPerIndustry = 0
	}
	n := industries * maxPerIndustry
	return c.Estimate(Usage{TextSearches: industries, Details: n, Analyses: n})
}

// DefaultRates returns the default pricing rates.
func DefaultRates() Rates {
	return Rates{
		PlacesTextSearch: 0.032,
		PlacesDetails:    0.017,
		PageSpeed:        0,
	}
}
