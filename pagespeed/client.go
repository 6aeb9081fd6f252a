package pagespeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/resty.v1"
)

// DefaultBaseURL is the Google APIs host serving PageSpeed Insights
const DefaultBaseURL = "https://www.googleapis.com"

const runPagespeedPath = "/pagespeedonline/v5/runPagespeed"

var categories = []string{"PERFORMANCE", "SEO", "ACCESSIBILITY"}

// Client runs PageSpeed Insights reports
type Client interface {
	Run(ctx context.Context, targetURL string, strategy Strategy) (*Report, error)
}

// NewClient creates a client for the runPagespeed endpoint. httpClient may be nil.
func NewClient(baseURL, apiKey string, httpClient *http.Client) Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &clientImpl{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  resty.NewWithClient(httpClient),
	}
}

type clientImpl struct {
	baseURL string
	apiKey  string
	client  *resty.Client
}

func (c *clientImpl) Run(ctx context.Context, targetURL string, strategy Strategy) (*Report, error) {
	params := url.Values{}
	params.Set("url", targetURL)
	params.Set("strategy", strategy.param())
	params.Set("key", c.apiKey)
	for _, category := range categories {
		params.Add("category", category)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetMultiValueQueryParams(params).
		Get(c.baseURL + runPagespeedPath)
	if err != nil {
		// url.Error carries the request URL, which includes the API key
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("failed to run pagespeed for %s (%s): %w", targetURL, strategy, err)
	}
	if resp.StatusCode() != http.StatusOK {
		statusErr := &StatusError{StatusCode: resp.StatusCode()}
		var body errorPayload
		if json.Unmarshal(resp.Body(), &body) == nil {
			statusErr.Message = body.Error.Message
		}
		return nil, statusErr
	}

	report, err := Extract(resp.Body())
	if err != nil {
		return nil, err
	}
	report.Strategy = strategy

	log.WithFields(log.Fields{
		"url":         targetURL,
		"strategy":    strategy,
		"performance": report.Scores.Performance,
	}).Debug("PageSpeed run completed")
	return report, nil
}
