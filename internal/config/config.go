package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Upper bound for the rules cache so administrator edits show up within seconds.
const maxRulesCacheTTL = 30 * time.Second

type Config struct {
	Port             string        `mapstructure:"PORT"`
	Env              string        `mapstructure:"ENV"`
	DBDriver         string        `mapstructure:"DB_DRIVER"`
	DatabaseURL      string        `mapstructure:"DATABASE_URL"`
	RedisURL         string        `mapstructure:"REDIS_URL"`
	ORSAPIKey        string        `mapstructure:"ORS_API_KEY"`
	ORSBaseURL       string        `mapstructure:"ORS_BASE_URL"`
	ORSCountry       string        `mapstructure:"ORS_COUNTRY"`
	DistanceProvider string        `mapstructure:"DISTANCE_PROVIDER"`
	DefaultKm        float64       `mapstructure:"DEFAULT_DISTANCE_KM"`
	ProviderTimeout  time.Duration `mapstructure:"PROVIDER_TIMEOUT"`
	RulesCacheTTL    time.Duration `mapstructure:"RULES_CACHE_TTL"`
	SeedPath         string        `mapstructure:"SEED_PATH"`
}

var defaults = map[string]any{
	"PORT":                "8080",
	"ENV":                 "production",
	"DB_DRIVER":           "pgx",
	"DATABASE_URL":        "",
	"REDIS_URL":           "",
	"ORS_API_KEY":         "",
	"ORS_BASE_URL":        "https://api.openrouteservice.org",
	"ORS_COUNTRY":         "CL",
	"DISTANCE_PROVIDER":   "ors",
	"DEFAULT_DISTANCE_KM": 20.0,
	"PROVIDER_TIMEOUT":    "10s",
	"RULES_CACHE_TTL":     "5s",
	"SEED_PATH":           "data/seeds/config.json",
}

// Load reads an optional .env file, then the process environment.
// It reports whether a .env file was found so callers can log it.
func Load() (Config, bool, error) {
	foundEnvFile := godotenv.Load() == nil

	cfg, err := fromViper(viper.New())
	return cfg, foundEnvFile, err
}

func fromViper(v *viper.Viper) (Config, error) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	c.DistanceProvider = strings.ToLower(strings.TrimSpace(c.DistanceProvider))
	if c.DistanceProvider != "ors" && c.DistanceProvider != "haversine" {
		return fmt.Errorf("DISTANCE_PROVIDER must be ors or haversine (got %q)", c.DistanceProvider)
	}

	if c.DBDriver != "pgx" && c.DBDriver != "sqlite" {
		return fmt.Errorf("DB_DRIVER must be pgx or sqlite (got %q)", c.DBDriver)
	}

	if c.DefaultKm < 0 {
		return errors.New("DEFAULT_DISTANCE_KM must not be negative")
	}

	if c.ProviderTimeout <= 0 {
		return errors.New("PROVIDER_TIMEOUT must be positive")
	}

	if c.RulesCacheTTL < 0 {
		return errors.New("RULES_CACHE_TTL must not be negative")
	}
	if c.RulesCacheTTL > maxRulesCacheTTL {
		c.RulesCacheTTL = maxRulesCacheTTL
	}

	return nil
}
