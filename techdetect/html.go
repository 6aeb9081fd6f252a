package techdetect

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"gopkg.in/resty.v1"
)

// NewHTMLDetector creates a detector that fetches the page itself and looks for platform fingerprints.
// Unless allowPrivate is set, connections to loopback, private and link-local addresses are refused.
func NewHTMLDetector(httpClient *http.Client, allowPrivate bool) Detector {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if !allowPrivate {
		httpClient = publicOnly(httpClient)
	}
	client := resty.NewWithClient(httpClient)
	// Set user agent to avoid being blocked by some websites
	client.SetHeader("User-Agent", "HealthChecker/1.0")
	return &htmlDetector{client: client}
}

type htmlDetector struct {
	client *resty.Client
}

func (d *htmlDetector) Detect(ctx context.Context, targetURL string) (string, error) {
	resp, err := d.client.R().SetContext(ctx).Get(targetURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", targetURL, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return "", &StatusError{Source: targetURL, StatusCode: resp.StatusCode()}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", targetURL, err)
	}
	return fingerprint(doc, resp.Header()), nil
}

// fingerprint returns the first platform whose markers appear in the document or headers
func fingerprint(doc *goquery.Document, header http.Header) string {
	var generators []string
	doc.Find("meta[name='generator']").Each(func(_ int, s *goquery.Selection) {
		if content, exists := s.Attr("content"); exists {
			generators = append(generators, strings.ToLower(content))
		}
	})

	var assets []string
	doc.Find("script[src], link[href], img[src]").Each(func(_ int, s *goquery.Selection) {
		if src, exists := s.Attr("src"); exists {
			assets = append(assets, strings.ToLower(src))
		}
		if href, exists := s.Attr("href"); exists {
			assets = append(assets, strings.ToLower(href))
		}
	})

	webflowSite := doc.Find("html[data-wf-site]").Length() > 0

	for _, p := range platforms {
		if p.name == "Webflow" && webflowSite {
			return p.name
		}
		for _, h := range p.headers {
			if header.Get(h) != "" {
				return p.name
			}
		}
		if containsAny(generators, p.generators) || containsAny(assets, p.assets) {
			return p.name
		}
	}
	return ""
}

func containsAny(values, markers []string) bool {
	for _, v := range values {
		for _, m := range markers {
			if strings.Contains(v, m) {
				return true
			}
		}
	}
	return false
}
