package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/ihute")
	t.Setenv("JWT_SECRET", "secret")

	cfg := FromEnv()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, 30, cfg.Booking.CutoffMinutes)
	assert.Equal(t, 30*time.Minute, cfg.Booking.Cutoff())
	assert.Equal(t, 15*time.Minute, cfg.Booking.HoldTTL)
	assert.Equal(t, "Africa/Kigali", cfg.Booking.Location().String())
	assert.Empty(t, cfg.Redis.URL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/ihute")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("BOOKING_HOLD_TTL", "5m")
	t.Setenv("REDIS_AVAILABILITY_TTL", "90")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://ihute.rw, https://admin.ihute.rw ,")

	cfg := FromEnv()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Booking.HoldTTL)
	assert.Equal(t, 90*time.Second, cfg.Redis.AvailabilityTTL)
	assert.Equal(t, []string{"https://ihute.rw", "https://admin.ihute.rw"}, cfg.CORS.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/ihute")
	t.Setenv("JWT_SECRET", "secret")
	base := FromEnv

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"missing database url", func(c *Config) { c.Database.URL = "" }, "DATABASE_URL"},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }, "DATABASE_DRIVER"},
		{"missing jwt secret", func(c *Config) { c.JWT.Secret = "" }, "JWT_SECRET"},
		{"negative cutoff", func(c *Config) { c.Booking.CutoffMinutes = -1 }, "BOOKING_CUTOFF_MINUTES"},
		{"zero hold ttl", func(c *Config) { c.Booking.HoldTTL = 0 }, "BOOKING_HOLD_TTL"},
		{"bad timezone", func(c *Config) { c.Booking.Timezone = "Mars/Olympus" }, "BOOKING_TIMEZONE"},
		{"production sms without url", func(c *Config) { c.SMS.Mode = "production" }, "SMS_API_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
