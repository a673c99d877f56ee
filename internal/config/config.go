// Package config loads application settings from configs/app.env and the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	DBSource       string        `mapstructure:"DB_SOURCE"`
	ServerAddress  string        `mapstructure:"SERVER_ADDRESS"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	LogFormat      string        `mapstructure:"LOG_FORMAT"`
	AdminUser      string        `mapstructure:"ADMIN_USER"`
	AdminPassword  string        `mapstructure:"ADMIN_PASSWORD"`
	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	RedisPassword  string        `mapstructure:"REDIS_PASSWORD"`
	RedisChannel   string        `mapstructure:"REDIS_CHANNEL"`
	RegistryMaxAge time.Duration `mapstructure:"REGISTRY_MAX_AGE"`
	MigrateOnStart bool          `mapstructure:"MIGRATE_ON_START"`

	// TrustedProxies lists the proxy IPs or CIDRs allowed to set X-Forwarded-For.
	// Empty means the peer address is the client address.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES"`

	RateValidatePerMin int `mapstructure:"RATE_VALIDATE_PER_MIN"`
	RateAreasPerMin    int `mapstructure:"RATE_AREAS_PER_MIN"`
	RateWaitlistPerMin int `mapstructure:"RATE_WAITLIST_PER_MIN"`
}

var defaults = map[string]any{
	"DB_SOURCE":             "",
	"SERVER_ADDRESS":        "0.0.0.0:8080",
	"LOG_LEVEL":             "info",
	"LOG_FORMAT":            "json",
	"ADMIN_USER":            "",
	"ADMIN_PASSWORD":        "",
	"REDIS_ADDR":            "",
	"REDIS_PASSWORD":        "",
	"REDIS_CHANNEL":         "service-areas:invalidate",
	"REGISTRY_MAX_AGE":      "0s",
	"MIGRATE_ON_START":      false,
	"TRUSTED_PROXIES":       "",
	"RATE_VALIDATE_PER_MIN": 10,
	"RATE_AREAS_PER_MIN":    30,
	"RATE_WAITLIST_PER_MIN": 3,
}

// LoadConfig reads app.env from path. Environment variables override file values and
// a missing file is not an error.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("config: failed to read config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("config: failed to decode config: %w", err)
	}

	if err = config.validate(); err != nil {
		return config, err
	}
	return config, nil
}

func (c Config) validate() error {
	if c.DBSource == "" {
		return fmt.Errorf("config: DB_SOURCE is required")
	}
	if c.RateValidatePerMin <= 0 || c.RateAreasPerMin <= 0 || c.RateWaitlistPerMin <= 0 {
		return fmt.Errorf("config: rate limits must be positive")
	}
	if c.RegistryMaxAge < 0 {
		return fmt.Errorf("config: REGISTRY_MAX_AGE cannot be negative")
	}
	for _, proxy := range c.TrustedProxies {
		if !validProxy(proxy) {
			return fmt.Errorf("config: TRUSTED_PROXIES entry %q is not an IP or CIDR", proxy)
		}
	}
	return nil
}

// AdminEnabled reports whether admin credentials are configured.
func (c Config) AdminEnabled() bool {
	return c.AdminUser != "" && c.AdminPassword != ""
}

func validProxy(s string) bool {
	if strings.Contains(s, "/") {
		_, _, err := net.ParseCIDR(s)
		return err == nil
	}
	return net.ParseIP(s) != nil
}
