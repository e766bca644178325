package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "NATS_URL", "SIMULATOR_SEED", "CORS_ALLOWED_ORIGINS", "SERVER_WRITE_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 120*time.Second, cfg.ServerWriteTimeout)
	assert.False(t, cfg.TapEnabled())
	assert.Equal(t, "feedback.responses", cfg.NATSSubjectPrefix)
	assert.Zero(t, cfg.SimulatorSeed)
	assert.Equal(t, []string{"https://*", "http://*"}, cfg.CORSAllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("NATS_URL", "nats://nats:4222")
	t.Setenv("SIMULATOR_SEED", "42")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://localhost:3000, ,https://demo.example.com ")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("TRACING_ENABLED", "true")

	cfg := Load()
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.True(t, cfg.TapEnabled())
	assert.Equal(t, uint64(42), cfg.SimulatorSeed)
	assert.Equal(t, []string{"http://localhost:3000", "https://demo.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	assert.True(t, cfg.TracingEnabled)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SIMULATOR_SEED", "-1")
	t.Setenv("RATE_LIMIT_REQUESTS", "many")
	t.Setenv("SERVER_READ_TIMEOUT", "soon")
	t.Setenv("CORS_ALLOWED_ORIGINS", " , ")

	cfg := Load()
	assert.Zero(t, cfg.SimulatorSeed)
	assert.Equal(t, 60, cfg.RateLimitRequests)
	assert.Equal(t, 30*time.Second, cfg.ServerReadTimeout)
	assert.Equal(t, []string{"https://*", "http://*"}, cfg.CORSAllowedOrigins)
}
