package pagespeed

import (
	"fmt"
	"strings"
)

// Strategy is the device PageSpeed emulates for a run
type Strategy string

const (
	StrategyMobile  Strategy = "mobile"
	StrategyDesktop Strategy = "desktop"
)

func (s Strategy) param() string {
	return strings.ToUpper(string(s))
}

// ScoreSet holds the category scores of one strategy, scaled to [0, 100]
type ScoreSet struct {
	Performance          float64 `json:"performance"`
	SEO                  float64 `json:"seo"`
	Accessibility        float64 `json:"accessibility"`
	FirstContentfulPaint string  `json:"firstContentfulPaint"`
}

// Report is the extracted result of one PageSpeed run
type Report struct {
	Strategy Strategy
	Scores   ScoreSet
	FinalURL string
}

// ExtractionError reports a payload that does not carry a required field
type ExtractionError struct {
	Field string
	Err   error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid pagespeed payload at %s: %v", e.Field, e.Err)
	}
	return "pagespeed payload is missing " + e.Field
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// StatusError is returned when the API answers with a non-200 status
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("pagespeed returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("pagespeed returned status %d", e.StatusCode)
}

// Wire shapes. Pointers distinguish absent or null fields from zero scores.
type payload struct {
	ID               string            `json:"id"`
	LighthouseResult *lighthouseResult `json:"lighthouseResult"`
}

type lighthouseResult struct {
	FinalURL   string               `json:"finalUrl"`
	Categories map[string]*category `json:"categories"`
	Audits     map[string]*audit    `json:"audits"`
}

type category struct {
	Score *float64 `json:"score"`
}

type audit struct {
	DisplayValue string `json:"displayValue"`
}

type errorPayload struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
