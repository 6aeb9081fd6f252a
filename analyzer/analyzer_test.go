package analyzer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/health-checker/backend/config"
	"github.com/health-checker/backend/pagespeed"
	"github.com/health-checker/backend/techdetect"
)

type fakePageSpeed struct {
	calls   atomic.Int32
	reports map[pagespeed.Strategy]*pagespeed.Report
	errs    map[pagespeed.Strategy]error
}

func (f *fakePageSpeed) Run(ctx context.Context, targetURL string, strategy pagespeed.Strategy) (*pagespeed.Report, error) {
	f.calls.Add(1)
	if err := f.errs[strategy]; err != nil {
		return nil, err
	}
	return f.reports[strategy], nil
}

type fakeDetector struct {
	name string
	err  error
}

func (f *fakeDetector) Detect(ctx context.Context, targetURL string) (string, error) {
	return f.name, f.err
}

func newFakePageSpeed() *fakePageSpeed {
	return &fakePageSpeed{
		reports: map[pagespeed.Strategy]*pagespeed.Report{
			pagespeed.StrategyMobile: {
				Strategy: pagespeed.StrategyMobile,
				Scores:   pagespeed.ScoreSet{Performance: 40, SEO: 90, Accessibility: 80, FirstContentfulPaint: "3.0 s"},
				FinalURL: "https://www.example.com/",
			},
			pagespeed.StrategyDesktop: {
				Strategy: pagespeed.StrategyDesktop,
				Scores:   pagespeed.ScoreSet{Performance: 80, SEO: 92, Accessibility: 84, FirstContentfulPaint: "0.9 s"},
				FinalURL: "https://www.example.com/",
			},
		},
		errs: map[pagespeed.Strategy]error{},
	}
}

func testConfig() *config.Config {
	return &config.Config{PageSpeedAPIKey: "key", TechDetection: techdetect.ModeOff}
}

func TestAnalyze(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ps := newFakePageSpeed()
		a := New(testConfig(), ps, nil)

		result, err := a.Analyze(context.Background(), " https://www.example.com ")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if result.Mobile.Performance != 40 || result.Desktop.Performance != 80 {
			t.Errorf("Scores not taken from the right strategy: %+v", result)
		}
		if result.FinalURL != "https://www.example.com/" {
			t.Errorf("Unexpected final URL %q", result.FinalURL)
		}
		if result.Platform != "" {
			t.Errorf("Expected no platform with detection off, got %q", result.Platform)
		}
		if ps.calls.Load() != 2 {
			t.Errorf("Expected 2 pagespeed calls, got %d", ps.calls.Load())
		}
	})

	t.Run("WithPlatform", func(t *testing.T) {
		cfg := testConfig()
		cfg.TechDetection = techdetect.ModeHTML
		a := New(cfg, newFakePageSpeed(), &fakeDetector{name: "WordPress"})

		result, err := a.Analyze(context.Background(), "https://www.example.com")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if result.Platform != "WordPress" {
			t.Errorf("Expected WordPress, got %q", result.Platform)
		}
	})

	t.Run("InvalidURL", func(t *testing.T) {
		ps := newFakePageSpeed()
		a := New(testConfig(), ps, nil)

		for _, raw := range []string{"", "   ", "example.com", "ftp://example.com", "https://"} {
			_, err := a.Analyze(context.Background(), raw)
			if !errors.Is(err, ErrInvalidURL) {
				t.Errorf("Analyze(%q): expected ErrInvalidURL, got %v", raw, err)
			}
		}
		if ps.calls.Load() != 0 {
			t.Errorf("Expected no outbound calls, got %d", ps.calls.Load())
		}
	})

	t.Run("MissingKey", func(t *testing.T) {
		ps := newFakePageSpeed()
		cfg := testConfig()
		cfg.PageSpeedAPIKey = ""
		a := New(cfg, ps, nil)

		_, err := a.Analyze(context.Background(), "https://www.example.com")
		if !errors.Is(err, ErrNotConfigured) {
			t.Errorf("Expected ErrNotConfigured, got %v", err)
		}
		if ps.calls.Load() != 0 {
			t.Errorf("Expected no outbound calls, got %d", ps.calls.Load())
		}
	})

	t.Run("MissingTechKey", func(t *testing.T) {
		cfg := testConfig()
		cfg.TechDetection = techdetect.ModeAPI
		a := New(cfg, newFakePageSpeed(), &fakeDetector{})

		_, err := a.Analyze(context.Background(), "https://www.example.com")
		if !errors.Is(err, ErrNotConfigured) {
			t.Errorf("Expected ErrNotConfigured, got %v", err)
		}
	})

	t.Run("OneStrategyFails", func(t *testing.T) {
		ps := newFakePageSpeed()
		ps.errs[pagespeed.StrategyDesktop] = &pagespeed.StatusError{StatusCode: 500}
		a := New(testConfig(), ps, nil)

		result, err := a.Analyze(context.Background(), "https://www.example.com")
		if result != nil {
			t.Errorf("Expected no partial result, got %+v", result)
		}
		var upstream *UpstreamError
		if !errors.As(err, &upstream) {
			t.Fatalf("Expected UpstreamError, got %v", err)
		}
		if upstream.Source != "pagespeed desktop" {
			t.Errorf("Unexpected source %q", upstream.Source)
		}
	})

	t.Run("ExtractionFailureFailsAnalysis", func(t *testing.T) {
		ps := newFakePageSpeed()
		ps.errs[pagespeed.StrategyMobile] = &pagespeed.ExtractionError{Field: "lighthouseResult.categories.accessibility.score"}
		a := New(testConfig(), ps, nil)

		result, err := a.Analyze(context.Background(), "https://www.example.com")
		if result != nil {
			t.Errorf("Expected no result, got %+v", result)
		}
		var extractionErr *pagespeed.ExtractionError
		if !errors.As(err, &extractionErr) {
			t.Errorf("Expected ExtractionError in chain, got %v", err)
		}
	})

	t.Run("DetectionFails", func(t *testing.T) {
		cfg := testConfig()
		cfg.TechDetection = techdetect.ModeHTML
		a := New(cfg, newFakePageSpeed(), &fakeDetector{err: errors.New("connection reset")})

		if _, err := a.Analyze(context.Background(), "https://www.example.com"); err == nil {
			t.Error("Expected detection failure to fail the analysis")
		}
	})

	t.Run("ConcurrentRequests", func(t *testing.T) {
		a := New(testConfig(), newFakePageSpeed(), nil)

		var wg sync.WaitGroup
		errChan := make(chan error, 20)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := a.Analyze(context.Background(), "https://www.example.com"); err != nil {
					errChan <- err
				}
			}()
		}
		wg.Wait()
		close(errChan)

		for err := range errChan {
			t.Errorf("Concurrent analysis error: %v", err)
		}
	})
}

func TestCombineScores(t *testing.T) {
	scores := CombineScores(
		pagespeed.ScoreSet{Performance: 40, SEO: 90, Accessibility: 80},
		pagespeed.ScoreSet{Performance: 80, SEO: 92, Accessibility: 84},
	)
	if scores.Performance != 60 || scores.SEO != 91 || scores.Accessibility != 82 {
		t.Errorf("Unexpected combined scores %+v", scores)
	}
}
