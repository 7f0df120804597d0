package config

import (
	"testing"
	"time"

	"shiftmatch/internal/domain/matching"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.Set("APP_NAME", "shiftmatch")
	v.Set("APP_ENV", "test")
	v.Set("HTTP_PORT", "8080")
	v.Set("DB_HOST", "localhost")
	v.Set("DB_PORT", "5432")
	v.Set("DB_NAME", "shiftmatch")
	v.Set("DB_USER", "postgres")
	v.Set("JWT_ACCESS_SECRET", "secret")
	return v
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(baseViper())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.HTTPPort)
	assert.False(t, cfg.App.DemoMode)
	assert.Equal(t, DefaultDemoWorkerID, cfg.App.DemoWorkerID.String())
	assert.Equal(t, matching.DefaultWeights(), cfg.Matching.Weights())
	assert.Equal(t, 5, cfg.Matching.TopN)
	assert.Equal(t, 50.0, cfg.Matching.MinScore)
	assert.Equal(t, 5*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, time.UTC, cfg.Matching.Location())
}

func TestLoadFrom_MissingRequired(t *testing.T) {
	v := baseViper()
	v.Set("APP_NAME", "")
	v.Set("DB_HOST", "  ")

	_, err := LoadFrom(v)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errMissingRequiredEnv))
	assert.Contains(t, err.Error(), "APP_NAME")
	assert.Contains(t, err.Error(), "DB_HOST")
}

func TestLoadFrom_RejectsBadWeights(t *testing.T) {
	v := baseViper()
	v.Set("MATCHING_WEIGHT_SKILL", 0.9)

	_, err := LoadFrom(v)
	require.Error(t, err)
	assert.True(t, errors.Is(err, matching.ErrInvalidWeights))
}

func TestLoadFrom_RejectsBadTimeZoneAndDemoID(t *testing.T) {
	v := baseViper()
	v.Set("MATCHING_TIME_ZONE", "Mars/Olympus")
	_, err := LoadFrom(v)
	assert.True(t, errors.Is(err, errInvalidValue))

	v = baseViper()
	v.Set("APP_DEMO_WORKER_ID", "not-a-uuid")
	_, err = LoadFrom(v)
	assert.True(t, errors.Is(err, errInvalidValue))
}

func TestMatchingLocation(t *testing.T) {
	m := MatchingConfig{TimeZone: "Mars/Olympus"}
	assert.Equal(t, time.UTC, m.Location())

	m.TimeZone = ""
	assert.Equal(t, time.UTC, m.Location())
}
