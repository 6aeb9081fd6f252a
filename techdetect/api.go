package techdetect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/resty.v1"
)

// DefaultAPIBaseURL is the Wappalyzer lookup API host
const DefaultAPIBaseURL = "https://api.wappalyzer.com"

const lookupPath = "/v2/lookup/"

type lookupResult struct {
	URL          string       `json:"url"`
	Technologies []technology `json:"technologies"`
}

type technology struct {
	Slug       string `json:"slug"`
	Name       string `json:"name"`
	Categories []struct {
		Slug string `json:"slug"`
	} `json:"categories"`
}

// NewAPIDetector creates a detector backed by a Wappalyzer-compatible lookup API
func NewAPIDetector(baseURL, apiKey string, httpClient *http.Client) Detector {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	client := resty.NewWithClient(httpClient)
	client.SetHeader("x-api-key", apiKey)
	client.SetHeader("Accept", "application/json")
	return &apiDetector{baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

type apiDetector struct {
	baseURL string
	client  *resty.Client
}

func (d *apiDetector) Detect(ctx context.Context, targetURL string) (string, error) {
	resp, err := d.client.R().
		SetContext(ctx).
		SetQueryParam("urls", targetURL).
		Get(d.baseURL + lookupPath)
	if err != nil {
		return "", fmt.Errorf("failed to look up technologies for %s: %w", targetURL, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", &StatusError{Source: "technology lookup", StatusCode: resp.StatusCode()}
	}

	var results []lookupResult
	if err := json.Unmarshal(resp.Body(), &results); err != nil {
		return "", fmt.Errorf("failed to decode technology lookup response: %w", err)
	}

	for _, result := range results {
		for _, tech := range result.Technologies {
			if name, ok := platformForSlug(tech.Slug); ok {
				return name, nil
			}
		}
	}

	log.WithField("url", targetURL).Debug("No known platform in technology lookup")
	return "", nil
}
