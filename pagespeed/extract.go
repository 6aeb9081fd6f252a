package pagespeed

import (
	"encoding/json"

	"github.com/health-checker/backend/pricing"
)

const firstContentfulPaint = "first-contentful-paint"

// Extract decodes one runPagespeed response body into a Report.
// Every category score and the first-contentful-paint audit are required; nothing is defaulted.
func Extract(body []byte) (*Report, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, &ExtractionError{Field: "body", Err: err}
	}
	if p.LighthouseResult == nil {
		return nil, &ExtractionError{Field: "lighthouseResult"}
	}
	lr := p.LighthouseResult

	performance, err := categoryScore(lr, "performance")
	if err != nil {
		return nil, err
	}
	seo, err := categoryScore(lr, "seo")
	if err != nil {
		return nil, err
	}
	accessibility, err := categoryScore(lr, "accessibility")
	if err != nil {
		return nil, err
	}

	fcp, ok := lr.Audits[firstContentfulPaint]
	if !ok || fcp == nil || fcp.DisplayValue == "" {
		return nil, &ExtractionError{Field: "lighthouseResult.audits." + firstContentfulPaint + ".displayValue"}
	}

	finalURL := p.ID
	if finalURL == "" {
		finalURL = lr.FinalURL
	}
	if finalURL == "" {
		return nil, &ExtractionError{Field: "id"}
	}

	return &Report{
		Scores: ScoreSet{
			Performance:          performance,
			SEO:                  seo,
			Accessibility:        accessibility,
			FirstContentfulPaint: fcp.DisplayValue,
		},
		FinalURL: finalURL,
	}, nil
}

func categoryScore(lr *lighthouseResult, name string) (float64, error) {
	c, ok := lr.Categories[name]
	if !ok || c == nil || c.Score == nil {
		return 0, &ExtractionError{Field: "lighthouseResult.categories." + name + ".score"}
	}
	return pricing.Clamp(*c.Score * 100), nil
}
