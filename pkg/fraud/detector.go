package fraud

import (
	"fmt"
	"math"
	"sort"
	"time"
)

type Finding struct {
	Rule              string   `json:"rule"`
	Score             float64  `json:"score"`
	RiskLevel         string   `json:"risk_level"`
	RecommendedAction string   `json:"recommended_action"`
	Reasons           []string `json:"reasons"`
	// LatestEventID is the most recent click that contributed to the finding.
	LatestEventID string `json:"latest_event_id,omitempty"`
	IPAddress     string `json:"ip_address,omitempty"`
	ClickCount    int    `json:"click_count"`
}

type Detector struct {
	thresholds      Thresholds
	reviewThreshold float64
}

func NewDetector(thresholds Thresholds, reviewThreshold float64) (*Detector, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	if reviewThreshold < 0 || reviewThreshold > 1 {
		return nil, fmt.Errorf("review threshold %.2f outside [0,1]", reviewThreshold)
	}
	return &Detector{thresholds: thresholds, reviewThreshold: reviewThreshold}, nil
}

func (d *Detector) Thresholds() Thresholds {
	return d.thresholds
}

// Evaluate runs every rule over a batch of clicks for one link. Clicks outside
// the observation window ending at the newest click are ignored.
func (d *Detector) Evaluate(batch []Click) []Finding {
	clicks := d.withinWindow(batch)
	if len(clicks) == 0 {
		return nil
	}

	var findings []Finding

	if d.thresholds.ExceedsClickVelocity(len(clicks), d.thresholds.Window) {
		rate := ClicksPerHour(len(clicks), d.thresholds.Window)
		score := excessScore(rate, d.thresholds.MaxClicksPerHour)
		findings = append(findings, Finding{
			Rule:              RuleClickVelocity,
			Score:             score,
			RiskLevel:         categorizeRisk(score),
			RecommendedAction: d.recommendedAction(score),
			Reasons: []string{
				fmt.Sprintf("%.1f clicks per hour exceeds limit of %.1f", rate, d.thresholds.MaxClicksPerHour),
			},
			LatestEventID: clicks[len(clicks)-1].EventID,
			ClickCount:    len(clicks),
		})
	}

	counts := SameIPCounts(clicks)
	for _, ip := range d.thresholds.ExceedsSameIP(counts) {
		score := excessScore(float64(counts[ip]), float64(d.thresholds.MaxClicksPerIP))
		findings = append(findings, Finding{
			Rule:              RuleSameIP,
			Score:             score,
			RiskLevel:         categorizeRisk(score),
			RecommendedAction: d.recommendedAction(score),
			Reasons: []string{
				fmt.Sprintf("%d clicks from %s exceeds limit of %d", counts[ip], ip, d.thresholds.MaxClicksPerIP),
			},
			LatestEventID: latestFromIP(clicks, ip),
			IPAddress:     ip,
			ClickCount:    counts[ip],
		})
	}

	return findings
}

func (d *Detector) withinWindow(batch []Click) []Click {
	if len(batch) == 0 {
		return nil
	}

	clicks := make([]Click, len(batch))
	copy(clicks, batch)
	sort.SliceStable(clicks, func(i, j int) bool {
		return clicks[i].OccurredAt.Before(clicks[j].OccurredAt)
	})

	cutoff := clicks[len(clicks)-1].OccurredAt.Add(-d.thresholds.Window)
	start := sort.Search(len(clicks), func(i int) bool {
		return clicks[i].OccurredAt.After(cutoff)
	})
	return clicks[start:]
}

// A value just over the limit scores 0.5; twice the limit or more scores 1.
func excessScore(value, limit float64) float64 {
	if limit <= 0 || value <= limit {
		return 0
	}
	score := 0.5 + (value-limit)/(2*limit)
	return math.Round(math.Min(score, 1.0)*100) / 100
}

func latestFromIP(clicks []Click, ip string) string {
	for i := len(clicks) - 1; i >= 0; i-- {
		if clicks[i].IPAddress == ip {
			return clicks[i].EventID
		}
	}
	return ""
}

func categorizeRisk(score float64) string {
	if score >= 0.8 {
		return "very_high"
	} else if score >= 0.6 {
		return "high"
	} else if score >= 0.4 {
		return "medium"
	} else if score >= 0.2 {
		return "low"
	}
	return "very_low"
}

func (d *Detector) recommendedAction(score float64) string {
	if score >= d.reviewThreshold {
		return "manual_review"
	}
	return "monitor"
}

// Since returns the start of the observation window ending at now.
func (d *Detector) Since(now time.Time) time.Time {
	return now.Add(-d.thresholds.Window)
}
