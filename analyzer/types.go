package analyzer

import (
	"errors"
	"fmt"

	"github.com/health-checker/backend/pagespeed"
	"github.com/health-checker/backend/pricing"
)

// AnalysisResult represents the complete analysis of a website
type AnalysisResult struct {
	Mobile   pagespeed.ScoreSet `json:"mobile"`
	Desktop  pagespeed.ScoreSet `json:"desktop"`
	FinalURL string             `json:"finalUrl"`
	Platform string             `json:"platform,omitempty"`
}

var (
	// ErrInvalidURL is returned before any outbound call for a missing or malformed URL
	ErrInvalidURL = errors.New("invalid URL")
	// ErrNotConfigured is returned before any outbound call when an API key is missing
	ErrNotConfigured = errors.New("API key is not configured")
)

// UpstreamError wraps the failure of one outbound fetch. It fails the whole analysis.
type UpstreamError struct {
	Source string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Source, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// CombineScores averages the mobile and desktop scores per category
func CombineScores(mobile, desktop pagespeed.ScoreSet) pricing.Scores {
	return pricing.Scores{
		Performance:   pricing.Clamp((mobile.Performance + desktop.Performance) / 2),
		SEO:           pricing.Clamp((mobile.SEO + desktop.SEO) / 2),
		Accessibility: pricing.Clamp((mobile.Accessibility + desktop.Accessibility) / 2),
	}
}
