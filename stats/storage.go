package stats

import (
	"sort"
	"sync"
	"time"
)

// Outcome classifies how an analysis request ended
type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomeInvalid       Outcome = "invalid"
	OutcomeNotConfigured Outcome = "not_configured"
	OutcomeUpstream      Outcome = "upstream"
	OutcomeError         Outcome = "error"
)

// MonthlyStats represents statistics for a specific month
type MonthlyStats struct {
	Analyses         int       `json:"analyses"`
	Succeeded        int       `json:"succeeded"`
	InvalidRequests  int       `json:"invalid_requests"`
	ConfigErrors     int       `json:"config_errors"`
	UpstreamFailures int       `json:"upstream_failures"`
	UnexpectedErrors int       `json:"unexpected_errors"`
	OfferRequests    int       `json:"offer_requests"`
	Bundles          int       `json:"bundles"`
	Leads            int       `json:"leads"`
	LastUpdated      time.Time `json:"last_updated"`
}

// Counters keeps request statistics in memory, keyed by month
type Counters struct {
	mutex sync.RWMutex
	stats map[string]*MonthlyStats // key: "YYYY-MM"
	now   func() time.Time
}

// NewCounters creates an empty statistics store
func NewCounters() *Counters {
	return &Counters{
		stats: make(map[string]*MonthlyStats),
		now:   time.Now,
	}
}

// current returns the entry for this month. Callers must hold the write lock.
func (c *Counters) current() *MonthlyStats {
	month := c.now().Format("2006-01")
	stats, exists := c.stats[month]
	if !exists {
		stats = &MonthlyStats{}
		c.stats[month] = stats
	}
	stats.LastUpdated = c.now()
	return stats
}

// RecordAnalysis counts one analysis request and its outcome
func (c *Counters) RecordAnalysis(outcome Outcome) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	stats := c.current()
	stats.Analyses++
	switch outcome {
	case OutcomeSuccess:
		stats.Succeeded++
	case OutcomeInvalid:
		stats.InvalidRequests++
	case OutcomeNotConfigured:
		stats.ConfigErrors++
	case OutcomeUpstream:
		stats.UpstreamFailures++
	default:
		stats.UnexpectedErrors++
	}
}

// RecordOffers counts one offer calculation
func (c *Counters) RecordOffers(bundle bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	stats := c.current()
	stats.OfferRequests++
	if bundle {
		stats.Bundles++
	}
}

// RecordLead counts one submitted lead
func (c *Counters) RecordLead() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.current().Leads++
}

// GetCurrentStats returns statistics for the current month
func (c *Counters) GetCurrentStats() MonthlyStats {
	month := c.now().Format("2006-01")

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if stats, exists := c.stats[month]; exists {
		return *stats
	}
	return MonthlyStats{}
}

// GetMonthlyStats returns statistics for a specific month
func (c *Counters) GetMonthlyStats(yearMonth string) (MonthlyStats, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if stats, exists := c.stats[yearMonth]; exists {
		return *stats, true
	}
	return MonthlyStats{}, false
}

// GetAllMonths returns a sorted list of all months that have statistics
func (c *Counters) GetAllMonths() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	months := make([]string, 0, len(c.stats))
	for month := range c.stats {
		months = append(months, month)
	}

	// Sort months in descending order (newest first)
	sort.Sort(sort.Reverse(sort.StringSlice(months)))

	return months
}

// Cleanup drops every month older than the most recent retainMonths, counting the current one
func (c *Counters) Cleanup(retainMonths int) {
	if retainMonths < 1 {
		retainMonths = 1
	}
	now := c.now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	keep := make(map[string]bool, retainMonths)
	for i := 0; i < retainMonths; i++ {
		keep[firstOfMonth.AddDate(0, -i, 0).Format("2006-01")] = true
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	for key := range c.stats {
		if !keep[key] {
			delete(c.stats, key)
		}
	}
}
