package metrics

import (
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestLatencyTracker(t *testing.T) {
	tracker := NewLatencyTracker(0.01)

	operations := []string{"fetch", "store_get"}
	for _, op := range operations {
		tracker.Record(op, 1*time.Millisecond)
		tracker.Record(op, 5*time.Millisecond)
		tracker.Record(op, 10*time.Millisecond)
		tracker.Record(op, 50*time.Millisecond)
		tracker.Record(op, 100*time.Millisecond)
	}

	for _, op := range operations {
		stats, err := tracker.GetStats(op)
		if err != nil {
			t.Errorf("Failed to get stats for %s: %v", op, err)
			continue
		}
		if stats.Count != 5 {
			t.Errorf("Expected count 5 for %s, got %d", op, stats.Count)
		}
		if stats.Min < 0.9 || stats.Min > 1.1 {
			t.Errorf("Expected min ~1ms for %s, got %.2fms", op, stats.Min)
		}
		if stats.Max < 99 || stats.Max > 101 {
			t.Errorf("Expected max ~100ms for %s, got %.2fms", op, stats.Max)
		}
		if stats.P50 < 5 || stats.P50 > 15 {
			t.Errorf("Expected p50 ~10ms for %s, got %.2fms", op, stats.P50)
		}
	}

	all := tracker.GetAllStats()
	if len(all) != len(operations) {
		t.Fatalf("Expected %d operations in GetAllStats, got %d", len(operations), len(all))
	}
	if all[0].Operation != "fetch" {
		t.Errorf("Expected sorted output, got %s first", all[0].Operation)
	}

	if _, err := tracker.GetStats("unknown"); err == nil {
		t.Error("Expected error for unknown operation")
	}

	if s := all[0].String(); !strings.Contains(s, "fetch (n=5)") {
		t.Errorf("Unexpected String() output: %s", s)
	}
}

func TestLatencyTracker_Nil(t *testing.T) {
	var tracker *LatencyTracker
	tracker.Record("fetch", time.Millisecond)
	if stats := tracker.GetAllStats(); stats != nil {
		t.Errorf("Expected nil stats from nil tracker, got %v", stats)
	}
}

func TestRequestCounters(t *testing.T) {
	var counters RequestCounters
	counters.Observe(http.StatusOK, 10*time.Millisecond)
	counters.Observe(http.StatusBadGateway, 30*time.Millisecond)

	snap := counters.Snapshot()
	if snap["request_count"].(int64) != 2 {
		t.Errorf("Expected 2 requests, got %v", snap["request_count"])
	}
	if snap["request_errors"].(int64) != 1 {
		t.Errorf("Expected 1 error, got %v", snap["request_errors"])
	}
	if snap["avg_duration_ms"].(float64) != 20 {
		t.Errorf("Expected avg 20ms, got %v", snap["avg_duration_ms"])
	}

	counters.Reset()
	if counters.Snapshot()["request_count"].(int64) != 0 {
		t.Error("Expected counters reset")
	}
}
