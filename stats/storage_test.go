package stats

import (
	"testing"
	"time"
)

func TestCounters(t *testing.T) {
	counters := NewCounters()
	counters.now = func() time.Time {
		return time.Date(2026, time.March, 31, 12, 0, 0, 0, time.UTC)
	}

	t.Run("RecordAnalysis", func(t *testing.T) {
		counters.RecordAnalysis(OutcomeSuccess)
		counters.RecordAnalysis(OutcomeUpstream)
		counters.RecordAnalysis(OutcomeInvalid)
		counters.RecordAnalysis(OutcomeNotConfigured)
		counters.RecordAnalysis(Outcome("boom"))
		stats := counters.GetCurrentStats()

		if stats.Analyses != 5 {
			t.Errorf("Expected 5 analyses, got %d", stats.Analyses)
		}
		if stats.Succeeded != 1 || stats.UpstreamFailures != 1 || stats.InvalidRequests != 1 || stats.ConfigErrors != 1 {
			t.Errorf("Unexpected outcome counts %+v", stats)
		}
		if stats.UnexpectedErrors != 1 {
			t.Errorf("Expected unknown outcome to count as unexpected, got %d", stats.UnexpectedErrors)
		}
	})

	t.Run("RecordOffersAndLeads", func(t *testing.T) {
		counters.RecordOffers(true)
		counters.RecordOffers(false)
		counters.RecordLead()
		stats := counters.GetCurrentStats()

		if stats.OfferRequests != 2 || stats.Bundles != 1 {
			t.Errorf("Unexpected offer counts %+v", stats)
		}
		if stats.Leads != 1 {
			t.Errorf("Expected 1 lead, got %d", stats.Leads)
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		counters.stats["2026-02"] = &MonthlyStats{Analyses: 7}
		counters.stats["2025-12"] = &MonthlyStats{Analyses: 100}

		counters.Cleanup(2)

		if _, exists := counters.GetMonthlyStats("2025-12"); exists {
			t.Error("Old stats should have been cleaned up")
		}
		if _, exists := counters.GetMonthlyStats("2026-02"); !exists {
			t.Error("Previous month should have been retained")
		}
		months := counters.GetAllMonths()
		if len(months) != 2 || months[0] != "2026-03" {
			t.Errorf("Expected [2026-03 2026-02], got %v", months)
		}
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		fresh := NewCounters()
		done := make(chan bool)
		for i := 0; i < 10; i++ {
			go func() {
				for j := 0; j < 100; j++ {
					fresh.RecordAnalysis(OutcomeSuccess)
					fresh.GetCurrentStats()
				}
				done <- true
			}()
		}

		// Wait for all goroutines to complete
		for i := 0; i < 10; i++ {
			<-done
		}

		if stats := fresh.GetCurrentStats(); stats.Succeeded != 1000 {
			t.Errorf("Expected 1000 successes, got %d", stats.Succeeded)
		}
	})
}
