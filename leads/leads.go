package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gopkg.in/resty.v1"

	"github.com/health-checker/backend/pricing"
)

// ErrNotConfigured is returned when no forms endpoint has been set
var ErrNotConfigured = errors.New("forms endpoint is not configured")

// Lead is one contact request together with the offer it asks about
type Lead struct {
	Reference    string
	Name         string
	Email        string
	URL          string
	Platform     string
	Size         pricing.Size
	MobileScore  float64
	DesktopScore float64
	Offer        pricing.ServiceOffer
}

// FormError carries the messages a forms service rejected a submission with
type FormError struct {
	StatusCode int
	Messages   []string
}

func (e *FormError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("there was a problem submitting the form (status %d)", e.StatusCode)
	}
	return strings.Join(e.Messages, ", ")
}

// Sender delivers leads to whoever follows them up
type Sender interface {
	Send(ctx context.Context, lead *Lead) error
}

// NewFormsSender posts leads to a Formspree-compatible endpoint.
// Prices in the form are rendered with currency.
func NewFormsSender(endpoint, currency string, httpClient *http.Client) Sender {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &formsSender{
		endpoint: endpoint,
		currency: currency,
		client:   resty.NewWithClient(httpClient),
	}
}

type formsSender struct {
	endpoint string
	currency string
	client   *resty.Client
}

type formErrors struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Send assigns a reference when the lead has none and submits it
func (s *formsSender) Send(ctx context.Context, lead *Lead) error {
	if s.endpoint == "" {
		return ErrNotConfigured
	}
	if lead.Reference == "" {
		lead.Reference = uuid.NewString()
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetFormData(s.formData(lead)).
		Post(s.endpoint)
	if err != nil {
		return fmt.Errorf("failed to submit lead %s: %w", lead.Reference, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		formErr := &FormError{StatusCode: resp.StatusCode()}
		var body formErrors
		if json.Unmarshal(resp.Body(), &body) == nil {
			for _, e := range body.Errors {
				formErr.Messages = append(formErr.Messages, e.Message)
			}
		}
		return formErr
	}

	log.WithFields(log.Fields{
		"reference": lead.Reference,
		"service":   lead.Offer.Name,
	}).Info("Lead submitted")
	return nil
}

func (s *formsSender) formData(lead *Lead) map[string]string {
	return map[string]string{
		"reference":     lead.Reference,
		"name":          lead.Name,
		"email":         lead.Email,
		"url":           lead.URL,
		"platform":      lead.Platform,
		"size":          string(lead.Size),
		"mobile_score":  strconv.FormatFloat(lead.MobileScore, 'f', 0, 64),
		"desktop_score": strconv.FormatFloat(lead.DesktopScore, 'f', 0, 64),
		"service":       lead.Offer.Name,
		"price":         lead.Offer.Price.Format(s.currency),
		"details":       strings.Join(lead.Offer.Details, "\n"),
	}
}
