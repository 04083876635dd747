package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "http://localhost:5173", cfg.CORSOrigin)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL.Std())
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL.Std())
	assert.Equal(t, "task_manager", cfg.Mongo.Database)
	assert.Equal(t, 4, cfg.Audit.Workers)
	assert.False(t, cfg.IsProduction())
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT":                   "8081",
		"JWT_ACCESS_EXPIRES_IN":  "1h",
		"JWT_REFRESH_EXPIRES_IN": "30d",
		"AUTH_RATE_LIMIT_RPS":    "0.5",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, time.Hour, cfg.JWT.AccessTTL.Std())
	assert.Equal(t, 30*24*time.Hour, cfg.JWT.RefreshTTL.Std())
	assert.InDelta(t, 0.5, cfg.RateLimit.RPS, 1e-9)
}

func TestLoadWith_Rejects(t *testing.T) {
	cases := map[string]map[string]string{
		"equal secrets": {
			"JWT_ACCESS_SECRET":  "same",
			"JWT_REFRESH_SECRET": "same",
		},
		"refresh not longer than access": {
			"JWT_ACCESS_EXPIRES_IN":  "2h",
			"JWT_REFRESH_EXPIRES_IN": "1h",
		},
		"dev secrets in production": {
			"ENV": "production",
		},
		"bad duration": {
			"JWT_REFRESH_EXPIRES_IN": "sevendays",
		},
		"admin without password": {
			"ADMIN_EMAIL": "root@example.com",
		},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadWith(context.Background(), envconfig.MapLookuper(env))
			assert.Error(t, err)
		})
	}
}

func TestLoadWith_ProductionWithRealSecrets(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":                "production",
		"JWT_ACCESS_SECRET":  "a-long-random-access-secret",
		"JWT_REFRESH_SECRET": "a-long-random-refresh-secret",
	}))
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestDuration_EnvDecode(t *testing.T) {
	var d Duration
	require.NoError(t, d.EnvDecode("15m"))
	assert.Equal(t, 15*time.Minute, d.Std())

	require.NoError(t, d.EnvDecode("7d"))
	assert.Equal(t, 7*24*time.Hour, d.Std())

	assert.Error(t, d.EnvDecode("xd"))
	assert.Error(t, d.EnvDecode("later"))
}
