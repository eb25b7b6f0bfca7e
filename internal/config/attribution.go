package config

import (
	"time"
)

type AttributionConfig struct {
	CookieName     string        `yaml:"cookie_name"`
	CookieTTL      time.Duration `yaml:"cookie_ttl"`
	CookieDomain   string        `yaml:"cookie_domain"`
	CookieSecure   bool          `yaml:"cookie_secure"`
	ClickTimeout   time.Duration `yaml:"click_timeout"`
	LinkCacheTTL   time.Duration `yaml:"link_cache_ttl"`
	CodeLength     int           `yaml:"code_length"`
	CodeMaxRetries int           `yaml:"code_max_retries"`
}

func loadAttributionConfig() *AttributionConfig {
	return &AttributionConfig{
		CookieName:     getEnv("ATTRIBUTION_COOKIE_NAME", "ref_code"),
		CookieTTL:      getEnvAsDuration("ATTRIBUTION_COOKIE_TTL", 30*24*time.Hour),
		CookieDomain:   getEnv("ATTRIBUTION_COOKIE_DOMAIN", ""),
		CookieSecure:   getEnvAsBool("ATTRIBUTION_COOKIE_SECURE", false),
		ClickTimeout:   getEnvAsDuration("ATTRIBUTION_CLICK_TIMEOUT", 5*time.Second),
		LinkCacheTTL:   getEnvAsDuration("ATTRIBUTION_LINK_CACHE_TTL", 10*time.Minute),
		CodeLength:     getEnvAsInt("REFERRAL_CODE_LENGTH", 6),
		CodeMaxRetries: getEnvAsInt("REFERRAL_CODE_MAX_RETRIES", 5),
	}
}
