package techdetect

import (
	"context"
	"fmt"
	"strings"
)

// Detector finds the site builder or CMS a website runs on.
// An empty name with a nil error means no known platform was recognised.
type Detector interface {
	Detect(ctx context.Context, targetURL string) (string, error)
}

// Mode selects which Detector the service uses
type Mode string

const (
	ModeOff  Mode = "off"
	ModeAPI  Mode = "api"
	ModeHTML Mode = "html"
)

// ParseMode accepts off, api or html. An empty string means off.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeOff:
		return ModeOff, nil
	case ModeAPI:
		return ModeAPI, nil
	case ModeHTML:
		return ModeHTML, nil
	}
	return "", fmt.Errorf("unknown technology detection mode %q", s)
}

// StatusError is returned when the detection source answers with a non-200 status
type StatusError struct {
	Source     string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Source, e.StatusCode)
}

type platform struct {
	name       string
	slugs      []string
	generators []string
	assets     []string
	headers    []string
}

// Order matters: hosted builders are checked before generic CMS markers.
var platforms = []platform{
	{
		name:    "Shopify",
		slugs:   []string{"shopify"},
		assets:  []string{"cdn.shopify.com", "shopifycdn.com"},
		headers: []string{"X-Shopid", "X-Shopify-Stage"},
	},
	{
		name:       "Wix",
		slugs:      []string{"wix"},
		generators: []string{"wix.com"},
		assets:     []string{"static.wixstatic.com", "static.parastorage.com"},
		headers:    []string{"X-Wix-Request-Id"},
	},
	{
		name:       "Squarespace",
		slugs:      []string{"squarespace"},
		generators: []string{"squarespace"},
		assets:     []string{"static1.squarespace.com", "squarespace-cdn.com"},
	},
	{
		name:       "Webflow",
		slugs:      []string{"webflow"},
		generators: []string{"webflow"},
		assets:     []string{"assets.website-files.com", "uploads-ssl.webflow.com"},
	},
	{
		name:       "WordPress",
		slugs:      []string{"wordpress", "woocommerce"},
		generators: []string{"wordpress", "woocommerce"},
		assets:     []string{"/wp-content/", "/wp-includes/"},
	},
	{
		name:       "Drupal",
		slugs:      []string{"drupal"},
		generators: []string{"drupal"},
		assets:     []string{"/sites/default/files/"},
		headers:    []string{"X-Drupal-Cache"},
	},
	{
		name:       "Joomla",
		slugs:      []string{"joomla"},
		generators: []string{"joomla"},
	},
}

func platformForSlug(slug string) (string, bool) {
	slug = strings.ToLower(slug)
	for _, p := range platforms {
		for _, s := range p.slugs {
			if s == slug {
				return p.name, true
			}
		}
	}
	return "", false
}
