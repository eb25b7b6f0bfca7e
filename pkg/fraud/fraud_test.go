package fraud

import (
	"fmt"
	"testing"
	"time"
)

func TestExceedsClickVelocity(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name   string
		clicks int
		window time.Duration
		want   bool
	}{
		{"60 clicks in 1 hour", 60, time.Hour, true},
		{"30 clicks in 1 hour", 30, time.Hour, false},
		{"100 clicks in 2 hours", 100, 2 * time.Hour, false},
		{"exactly at limit", 50, time.Hour, false},
		{"51 clicks in 1 hour", 51, time.Hour, true},
		{"zero window", 500, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := th.ExceedsClickVelocity(tt.clicks, tt.window); got != tt.want {
				t.Fatalf("ExceedsClickVelocity(%d, %s) = %v, want %v", tt.clicks, tt.window, got, tt.want)
			}
		})
	}
}

func TestConfigurableVelocityThreshold(t *testing.T) {
	th := DefaultThresholds()
	th.MaxClicksPerHour = 20
	if !th.ExceedsClickVelocity(30, time.Hour) {
		t.Fatal("expected 30 clicks/hour to exceed a limit of 20")
	}
}

func TestExceedsSameIP(t *testing.T) {
	th := DefaultThresholds()
	var batch []Click
	for i := 0; i < 15; i++ {
		batch = append(batch, Click{IPAddress: "192.168.1.1"})
	}
	for i := 0; i < 10; i++ {
		batch = append(batch, Click{IPAddress: "10.0.0.2"})
	}
	batch = append(batch, Click{IPAddress: ""})

	counts := SameIPCounts(batch)
	if counts["192.168.1.1"] != 15 || counts["10.0.0.2"] != 10 {
		t.Fatalf("unexpected counts: %v", counts)
	}
	if _, ok := counts[""]; ok {
		t.Fatal("empty ip should not be counted")
	}

	offenders := th.ExceedsSameIP(counts)
	if len(offenders) != 1 || offenders[0] != "192.168.1.1" {
		t.Fatalf("offenders = %v", offenders)
	}
}

func TestDetectorEvaluate(t *testing.T) {
	d, err := NewDetector(DefaultThresholds(), 0.5)
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	var batch []Click
	for i := 0; i < 60; i++ {
		ip := fmt.Sprintf("10.0.0.%d", i%30)
		if i < 12 {
			ip = "203.0.113.9"
		}
		batch = append(batch, Click{
			EventID:    fmt.Sprintf("evt-%02d", i),
			IPAddress:  ip,
			OccurredAt: now.Add(-time.Duration(59-i) * time.Minute),
		})
	}

	findings := d.Evaluate(batch)
	if len(findings) != 2 {
		t.Fatalf("expected velocity and same-ip findings, got %+v", findings)
	}

	velocity := findings[0]
	if velocity.Rule != RuleClickVelocity || velocity.ClickCount != 60 || velocity.LatestEventID != "evt-59" {
		t.Fatalf("unexpected velocity finding: %+v", velocity)
	}
	if velocity.Score != 0.6 || velocity.RecommendedAction != "manual_review" {
		t.Fatalf("unexpected velocity score/action: %+v", velocity)
	}

	sameIP := findings[1]
	if sameIP.Rule != RuleSameIP || sameIP.IPAddress != "203.0.113.9" || sameIP.ClickCount != 12 {
		t.Fatalf("unexpected same-ip finding: %+v", sameIP)
	}
	if sameIP.LatestEventID != "evt-11" {
		t.Fatalf("latest event = %s", sameIP.LatestEventID)
	}
}

func TestDetectorIgnoresClicksOutsideWindow(t *testing.T) {
	d, err := NewDetector(DefaultThresholds(), 0.5)
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}

	now := time.Now()
	var batch []Click
	for i := 0; i < 100; i++ {
		// Spread over roughly 2 hours: only about half fall in the last hour.
		batch = append(batch, Click{
			EventID:    fmt.Sprintf("evt-%d", i),
			IPAddress:  fmt.Sprintf("198.51.100.%d", i),
			OccurredAt: now.Add(-time.Duration(i) * 72 * time.Second),
		})
	}

	if findings := d.Evaluate(batch); len(findings) != 0 {
		t.Fatalf("expected no findings, got %+v", findings)
	}
}

func TestNewDetectorRejectsBadThresholds(t *testing.T) {
	if _, err := NewDetector(Thresholds{MaxClicksPerHour: 0, MaxClicksPerIP: 10, Window: time.Hour}, 0.5); err == nil {
		t.Fatal("expected error for zero velocity threshold")
	}
	if _, err := NewDetector(DefaultThresholds(), 1.5); err == nil {
		t.Fatal("expected error for review threshold above 1")
	}
}
