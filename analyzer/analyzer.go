package analyzer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/health-checker/backend/config"
	"github.com/health-checker/backend/pagespeed"
	"github.com/health-checker/backend/techdetect"
)

// Analyzer runs the PageSpeed and platform lookups for one URL
type Analyzer struct {
	cfg       *config.Config
	pageSpeed pagespeed.Client
	detector  techdetect.Detector
}

// New creates an Analyzer. detector may be nil to skip platform detection.
func New(cfg *config.Config, pageSpeed pagespeed.Client, detector techdetect.Detector) *Analyzer {
	return &Analyzer{
		cfg:       cfg,
		pageSpeed: pageSpeed,
		detector:  detector,
	}
}

// FromConfig builds the outbound clients described by cfg on top of httpClient
func FromConfig(cfg *config.Config, httpClient *http.Client) *Analyzer {
	var detector techdetect.Detector
	switch cfg.TechDetection {
	case techdetect.ModeAPI:
		detector = techdetect.NewAPIDetector(cfg.TechAPIBaseURL, cfg.TechAPIKey, httpClient)
	case techdetect.ModeHTML:
		detector = techdetect.NewHTMLDetector(httpClient, cfg.TechAllowPrivate)
	}
	return New(cfg, pagespeed.NewClient(cfg.PageSpeedBaseURL, cfg.PageSpeedAPIKey, httpClient), detector)
}

// ValidateURL trims raw and accepts only absolute http(s) URLs
func ValidateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: URL is required", ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not an http(s) URL", ErrInvalidURL, raw)
	}
	return u.String(), nil
}

// Analyze fetches the mobile and desktop reports and the platform concurrently.
// It returns a complete result or an error; partial results are never returned.
func (a *Analyzer) Analyze(ctx context.Context, rawURL string) (*AnalysisResult, error) {
	target, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}
	if missing := a.cfg.MissingCredentials(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotConfigured, strings.Join(missing, ", "))
	}

	var (
		mobile   *pagespeed.Report
		desktop  *pagespeed.Report
		platform string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		report, err := a.pageSpeed.Run(gctx, target, pagespeed.StrategyMobile)
		if err != nil {
			return &UpstreamError{Source: "pagespeed mobile", Err: err}
		}
		mobile = report
		return nil
	})
	g.Go(func() error {
		report, err := a.pageSpeed.Run(gctx, target, pagespeed.StrategyDesktop)
		if err != nil {
			return &UpstreamError{Source: "pagespeed desktop", Err: err}
		}
		desktop = report
		return nil
	})
	if a.detector != nil {
		g.Go(func() error {
			name, err := a.detector.Detect(gctx, target)
			if err != nil {
				return &UpstreamError{Source: "technology detection", Err: err}
			}
			platform = name
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"url":      target,
		"finalUrl": mobile.FinalURL,
		"platform": platform,
	}).Info("Analysis completed")

	return &AnalysisResult{
		Mobile:   mobile.Scores,
		Desktop:  desktop.Scores,
		FinalURL: mobile.FinalURL,
		Platform: platform,
	}, nil
}
