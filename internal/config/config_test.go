package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(envOf(map[string]string{
		"DATABASE_URL": "postgres://localhost/rewards",
		"JWT_SECRET":   "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, int64(5), cfg.Rewards.DailyReward)
	assert.Equal(t, int64(25), cfg.Rewards.ReferralReward)
	assert.Equal(t, 5*time.Minute, cfg.JanitorInterval)
	assert.Equal(t, "http://localhost:5173", cfg.ReferralBaseURL)
}

func TestParse_MemoryDriverNeedsNoDatabase(t *testing.T) {
	cfg, err := Parse(envOf(map[string]string{
		"STORE_DRIVER":      "memory",
		"JWT_SECRET":        "secret",
		"DAILY_REWARD":      "7",
		"REFERRAL_BASE_URL": "https://app.example.com/",
		"REDIS_DB":          "not-a-number",
	}))
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, int64(7), cfg.Rewards.DailyReward)
	assert.Equal(t, "https://app.example.com", cfg.ReferralBaseURL)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestParse_MissingRequired(t *testing.T) {
	_, err := Parse(envOf(map[string]string{"JWT_SECRET": "secret"}))
	assert.ErrorContains(t, err, "DATABASE_URL")

	_, err = Parse(envOf(map[string]string{"STORE_DRIVER": "memory"}))
	assert.ErrorContains(t, err, "JWT_SECRET")

	_, err = Parse(envOf(map[string]string{"STORE_DRIVER": "mysql", "JWT_SECRET": "x"}))
	assert.ErrorContains(t, err, "STORE_DRIVER")
}
