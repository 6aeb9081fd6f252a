package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/health-checker/backend/analyzer"
	"github.com/health-checker/backend/leads"
	"github.com/health-checker/backend/logging"
	"github.com/health-checker/backend/pagespeed"
	"github.com/health-checker/backend/pricing"
	"github.com/health-checker/backend/stats"
)

// Analyzer is the part of analyzer.Analyzer the handlers depend on
type Analyzer interface {
	Analyze(ctx context.Context, rawURL string) (*analyzer.AnalysisResult, error)
}

// Handler serves the health checker API
type Handler struct {
	Analyzer Analyzer
	Pricing  *pricing.Engine
	Leads    leads.Sender
	Stats    *stats.Counters
	DevMode  bool
}

type CheckRequest struct {
	URL string `json:"url"`
}

// ScoreInput is one strategy's scores as submitted by a client. Every category must be present.
type ScoreInput struct {
	Performance   *float64 `json:"performance" binding:"required,min=0,max=100"`
	SEO           *float64 `json:"seo" binding:"required,min=0,max=100"`
	Accessibility *float64 `json:"accessibility" binding:"required,min=0,max=100"`
}

// ScoreSet converts validated input; it must only be called after binding succeeded
func (s *ScoreInput) ScoreSet() pagespeed.ScoreSet {
	return pagespeed.ScoreSet{
		Performance:   *s.Performance,
		SEO:           *s.SEO,
		Accessibility: *s.Accessibility,
	}
}

type OffersRequest struct {
	Mobile   *ScoreInput `json:"mobile" binding:"required"`
	Desktop  *ScoreInput `json:"desktop" binding:"required"`
	Size     string      `json:"size" binding:"required"`
	Platform string      `json:"platform"`
}

type OffersResponse struct {
	Scores   pricing.Scores `json:"scores"`
	Currency string         `json:"currency"`
	pricing.OfferSet
}

type LeadRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	URL      string      `json:"url" binding:"required,url"`
	Platform string      `json:"platform"`
	Size     string      `json:"size" binding:"required"`
	Service  string      `json:"service" binding:"required"`
	Mobile   *ScoreInput `json:"mobile" binding:"required"`
	Desktop  *ScoreInput `json:"desktop" binding:"required"`
}

type LeadResponse struct {
	Reference string               `json:"reference"`
	Offer     pricing.ServiceOffer `json:"offer"`
}

// Register mounts every endpoint under group
func (h *Handler) Register(group *gin.RouterGroup) {
	group.GET("/health", h.Health)
	group.POST("/check", h.Check)
	group.POST("/offers", h.Offers)
	group.POST("/leads", h.SubmitLead)
	group.GET("/statistics", h.Statistics)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Check runs a full analysis for one URL
func (h *Handler) Check(c *gin.Context) {
	var request CheckRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.Stats.RecordAnalysis(stats.OutcomeInvalid)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if strings.TrimSpace(request.URL) == "" {
		h.Stats.RecordAnalysis(stats.OutcomeInvalid)
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL is required"})
		return
	}

	result, err := h.Analyzer.Analyze(c.Request.Context(), request.URL)
	if err != nil {
		status, message, outcome := classify(err)
		h.Stats.RecordAnalysis(outcome)
		entry := logging.FromContext(c).WithError(err).WithField("url", request.URL)
		if status >= http.StatusInternalServerError {
			entry.Error("Analysis failed")
		} else {
			entry.Info("Analysis rejected")
		}
		c.JSON(status, gin.H{"error": message})
		return
	}

	h.Stats.RecordAnalysis(stats.OutcomeSuccess)
	c.JSON(http.StatusOK, result)
}

func classify(err error) (int, string, stats.Outcome) {
	var upstream *analyzer.UpstreamError
	switch {
	case errors.Is(err, analyzer.ErrInvalidURL):
		return http.StatusBadRequest, "Please enter a valid URL (e.g., https://www.example.com)", stats.OutcomeInvalid
	case errors.Is(err, analyzer.ErrNotConfigured):
		return http.StatusInternalServerError, "API key is not configured", stats.OutcomeNotConfigured
	case errors.As(err, &upstream):
		return http.StatusInternalServerError, "Failed to analyze the website. Please try again later.", stats.OutcomeUpstream
	default:
		return http.StatusInternalServerError, "An unexpected error occurred.", stats.OutcomeError
	}
}

// Offers prices the services recommended for a pair of score sets
func (h *Handler) Offers(c *gin.Context) {
	var request OffersRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offer request: performance, seo and accessibility scores (0-100) and a site size are required"})
		return
	}
	size, err := pricing.ParseSize(request.Size)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scores := analyzer.CombineScores(request.Mobile.ScoreSet(), request.Desktop.ScoreSet())
	set := h.Pricing.BuildOffers(scores, size, request.Platform)
	h.Stats.RecordOffers(set.Bundle != nil)

	c.JSON(http.StatusOK, OffersResponse{
		Scores:   scores,
		Currency: h.Pricing.Catalog().Currency,
		OfferSet: set,
	})
}

// SubmitLead rebuilds the requested offer from the submitted scores and forwards the contact request
func (h *Handler) SubmitLead(c *gin.Context) {
	var request LeadRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide your name, a valid email, the analysed URL, a site size and a service"})
		return
	}
	size, err := pricing.ParseSize(request.Size)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scores := analyzer.CombineScores(request.Mobile.ScoreSet(), request.Desktop.ScoreSet())
	offer, err := h.Pricing.OfferFor(request.Service, scores, size, request.Platform)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lead := &leads.Lead{
		Name:         request.Name,
		Email:        request.Email,
		URL:          request.URL,
		Platform:     request.Platform,
		Size:         size,
		MobileScore:  *request.Mobile.Performance,
		DesktopScore: *request.Desktop.Performance,
		Offer:        offer,
	}
	if err := h.Leads.Send(c.Request.Context(), lead); err != nil {
		logging.FromContext(c).WithError(err).Error("Failed to submit lead")

		var formErr *leads.FormError
		switch {
		case errors.Is(err, leads.ErrNotConfigured):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Contact form is not configured"})
		case errors.As(err, &formErr):
			c.JSON(http.StatusInternalServerError, gin.H{"error": formErr.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Oops! There was a problem submitting your form"})
		}
		return
	}

	h.Stats.RecordLead()
	c.JSON(http.StatusOK, LeadResponse{Reference: lead.Reference, Offer: offer})
}

// Statistics returns the current month's counters, and every month in development mode
func (h *Handler) Statistics(c *gin.Context) {
	response := gin.H{
		"current": h.Stats.GetCurrentStats(),
	}
	if h.DevMode {
		months := gin.H{}
		for _, month := range h.Stats.GetAllMonths() {
			if monthly, ok := h.Stats.GetMonthlyStats(month); ok {
				months[month] = monthly
			}
		}
		response["months"] = months
	}
	c.JSON(http.StatusOK, response)
}
