package config

import (
	"time"
)

type FraudConfig struct {
	MaxClicksPerHour float64       `yaml:"max_clicks_per_hour"`
	MaxClicksPerIP   int           `yaml:"max_clicks_per_ip"`
	Window           time.Duration `yaml:"window"`
	ReviewThreshold  float64       `yaml:"review_threshold"`
}

func loadFraudConfig() *FraudConfig {
	return &FraudConfig{
		MaxClicksPerHour: getEnvAsFloat64("FRAUD_MAX_CLICKS_PER_HOUR", 50),
		MaxClicksPerIP:   getEnvAsInt("FRAUD_MAX_CLICKS_PER_IP", 10),
		Window:           getEnvAsDuration("FRAUD_WINDOW", 1*time.Hour),
		ReviewThreshold:  getEnvAsFloat64("FRAUD_REVIEW_THRESHOLD", 0.5),
	}
}
