package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App         *AppConfig         `yaml:"app"`
	Database    *DatabaseConfig    `yaml:"database"`
	Redis       *RedisConfig       `yaml:"redis"`
	SMS         *SMSConfig         `yaml:"sms"`
	Storage     *StorageConfig     `yaml:"storage"`
	WebSocket   *WebSocketConfig   `yaml:"websocket"`
	Security    *SecurityConfig    `yaml:"security"`
	Attribution *AttributionConfig `yaml:"attribution"`
	Fraud       *FraudConfig       `yaml:"fraud"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
	Port        int    `yaml:"port"`
	Host        string `yaml:"host"`
	BaseURL     string `yaml:"base_url"`
	Debug       bool   `yaml:"debug"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	LogOutput   string `yaml:"log_output"`
	Currency    string `yaml:"currency"`
}

type SecurityConfig struct {
	JWTSecret          string   `yaml:"jwt_secret"`
	JWTIssuer          string   `yaml:"jwt_issuer"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	TrustedProxies     []string `yaml:"trusted_proxies"`
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and finally environment variables. Values present in the
// environment always win over the file.
func Load() (*Config, error) {
	config := &Config{
		App:         loadAppConfig(),
		Database:    loadDatabaseConfig(),
		Redis:       loadRedisConfig(),
		SMS:         loadSMSConfig(),
		Storage:     loadStorageConfig(),
		WebSocket:   loadWebSocketConfig(),
		Security:    loadSecurityConfig(),
		Attribution: loadAttributionConfig(),
		Fraud:       loadFraudConfig(),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := config.overlayFile(path); err != nil {
			return nil, err
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// overlayFile decodes the YAML file on top of the defaults and then re-applies
// the environment so that explicit env values keep precedence.
func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	env := &Config{
		App:         loadAppConfig(),
		Database:    loadDatabaseConfig(),
		Redis:       loadRedisConfig(),
		SMS:         loadSMSConfig(),
		Storage:     loadStorageConfig(),
		WebSocket:   loadWebSocketConfig(),
		Security:    loadSecurityConfig(),
		Attribution: loadAttributionConfig(),
		Fraud:       loadFraudConfig(),
	}
	c.applyEnvOverrides(env)

	return nil
}

func (c *Config) applyEnvOverrides(env *Config) {
	if os.Getenv("APP_PORT") != "" {
		c.App.Port = env.App.Port
	}
	if os.Getenv("APP_ENV") != "" {
		c.App.Environment = env.App.Environment
	}
	if os.Getenv("LOG_LEVEL") != "" {
		c.App.LogLevel = env.App.LogLevel
	}
	if os.Getenv("MONGODB_URI") != "" {
		c.Database.URI = env.Database.URI
	}
	if os.Getenv("MONGODB_DATABASE") != "" {
		c.Database.Database = env.Database.Database
	}
	if os.Getenv("REDIS_HOST") != "" {
		c.Redis.Host = env.Redis.Host
	}
	if os.Getenv("REDIS_PASSWORD") != "" {
		c.Redis.Password = env.Redis.Password
	}
	if os.Getenv("JWT_SECRET") != "" {
		c.Security.JWTSecret = env.Security.JWTSecret
	}
	if os.Getenv("FRAUD_MAX_CLICKS_PER_HOUR") != "" {
		c.Fraud.MaxClicksPerHour = env.Fraud.MaxClicksPerHour
	}
	if os.Getenv("FRAUD_MAX_CLICKS_PER_IP") != "" {
		c.Fraud.MaxClicksPerIP = env.Fraud.MaxClicksPerIP
	}
	if os.Getenv("FRAUD_WINDOW") != "" {
		c.Fraud.Window = env.Fraud.Window
	}
}

func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("invalid app port: %d", c.App.Port)
	}
	if c.Database.URI == "" {
		return fmt.Errorf("database uri is required")
	}
	if c.Fraud.MaxClicksPerHour <= 0 || c.Fraud.MaxClicksPerIP <= 0 || c.Fraud.Window <= 0 {
		return fmt.Errorf("fraud thresholds must be positive")
	}
	if c.Attribution.CookieTTL <= 0 {
		return fmt.Errorf("attribution cookie ttl must be positive")
	}
	if IsProduction() && c.Security.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	return nil
}

func loadAppConfig() *AppConfig {
	return &AppConfig{
		Name:        getEnv("APP_NAME", "ReferralHub"),
		Version:     getEnv("APP_VERSION", "1.0.0"),
		Environment: getEnv("APP_ENV", "development"),
		Port:        getEnvAsInt("APP_PORT", 8080),
		Host:        getEnv("APP_HOST", "localhost"),
		BaseURL:     getEnv("APP_BASE_URL", "http://localhost:8080"),
		Debug:       getEnvAsBool("APP_DEBUG", true),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		LogOutput:   getEnv("LOG_OUTPUT", "stdout"),
		Currency:    getEnv("APP_CURRENCY", "USD"),
	}
}

const defaultJWTSecret = "your-super-secret-jwt-key"

func loadSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		JWTSecret:          getEnv("JWT_SECRET", defaultJWTSecret),
		JWTIssuer:          getEnv("JWT_ISSUER", ""),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", []string{}),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func IsProduction() bool {
	return getEnv("APP_ENV", "development") == "production"
}

func IsDevelopment() bool {
	return getEnv("APP_ENV", "development") == "development"
}

func IsTest() bool {
	return getEnv("APP_ENV", "development") == "test"
}
