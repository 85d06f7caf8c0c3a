package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "pgx", cfg.DBDriver)
	assert.Equal(t, "ors", cfg.DistanceProvider)
	assert.Equal(t, 20.0, cfg.DefaultKm)
	assert.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 5*time.Second, cfg.RulesCacheTTL)
}

func TestFromViperEnvironmentOverrides(t *testing.T) {
	t.Setenv("DISTANCE_PROVIDER", "Haversine")
	t.Setenv("DEFAULT_DISTANCE_KM", "35.5")
	t.Setenv("RULES_CACHE_TTL", "10m")

	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "haversine", cfg.DistanceProvider)
	assert.Equal(t, 35.5, cfg.DefaultKm)
	assert.Equal(t, maxRulesCacheTTL, cfg.RulesCacheTTL)
}

func TestFromViperRejectsUnknownProvider(t *testing.T) {
	t.Setenv("DISTANCE_PROVIDER", "google")

	_, err := fromViper(viper.New())
	assert.Error(t, err)
}
