// Package fraud holds the click heuristics used to flag referral links for
// manual review. Everything here is pure: callers load the click batch and
// decide what to do with the findings.
package fraud

import (
	"errors"
	"sort"
	"time"
)

const (
	RuleClickVelocity = "click_velocity"
	RuleSameIP        = "same_ip"
)

type Thresholds struct {
	MaxClicksPerHour float64       `json:"max_clicks_per_hour"`
	MaxClicksPerIP   int           `json:"max_clicks_per_ip"`
	Window           time.Duration `json:"window"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxClicksPerHour: 50,
		MaxClicksPerIP:   10,
		Window:           time.Hour,
	}
}

func (t Thresholds) Validate() error {
	if t.MaxClicksPerHour <= 0 {
		return errors.New("max clicks per hour must be positive")
	}
	if t.MaxClicksPerIP <= 0 {
		return errors.New("max clicks per ip must be positive")
	}
	if t.Window <= 0 {
		return errors.New("observation window must be positive")
	}
	return nil
}

// Click is one recorded click as seen by the heuristics.
type Click struct {
	EventID    string    `json:"event_id"`
	IPAddress  string    `json:"ip_address"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ClicksPerHour normalizes a click count observed over window to an hourly
// rate. A non-positive window yields zero.
func ClicksPerHour(clicks int, window time.Duration) float64 {
	if window <= 0 {
		return 0
	}
	return float64(clicks) / window.Hours()
}

// ExceedsClickVelocity reports whether clicks observed over window exceed the
// hourly threshold. The comparison is strict.
func (t Thresholds) ExceedsClickVelocity(clicks int, window time.Duration) bool {
	return ClicksPerHour(clicks, window) > t.MaxClicksPerHour
}

// SameIPCounts counts clicks per IP address. Clicks without an address are
// not attributed to any IP.
func SameIPCounts(batch []Click) map[string]int {
	counts := make(map[string]int)
	for _, click := range batch {
		if click.IPAddress == "" {
			continue
		}
		counts[click.IPAddress]++
	}
	return counts
}

// ExceedsSameIP returns the addresses with more than MaxClicksPerIP clicks,
// sorted for stable output.
func (t Thresholds) ExceedsSameIP(counts map[string]int) []string {
	var offenders []string
	for ip, count := range counts {
		if count > t.MaxClicksPerIP {
			offenders = append(offenders, ip)
		}
	}
	sort.Strings(offenders)
	return offenders
}
