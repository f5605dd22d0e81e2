package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_NAME", "vetclinic")
	t.Setenv("DB_USER", "postgres")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "4000", cfg.Port)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, 30*24*time.Hour, cfg.JWTExpiry())
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CORSOrigins)
	assert.True(t, cfg.SchedulerEnabled)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.EmailEnabled())
	assert.False(t, cfg.TwilioEnabled())
	assert.Equal(t, "52", cfg.TwilioCountryCode)
	assert.Equal(t, "America/Mexico_City", cfg.Location().String())
	assert.Contains(t, cfg.DSN(), "dbname=vetclinic")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("PORT", "8080")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("SCHEDULER_ENABLED", "false")
	t.Setenv("EMAIL_HOST", "smtp.example.com")
	t.Setenv("EMAIL_FROM", "clinica@example.com")
	t.Setenv("CLINIC_TIMEZONE", "UTC")
	t.Setenv("TWILIO_DEFAULT_COUNTRY_CODE", "1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.False(t, cfg.SchedulerEnabled)
	assert.True(t, cfg.EmailEnabled())
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Equal(t, "1", cfg.TwilioCountryCode)
}

func TestValidate(t *testing.T) {
	valid := Config{JWTSecret: "s", DBName: "db", DBUser: "u", JWTExpiryHours: 1, ClinicTimezone: "UTC"}
	require.NoError(t, valid.Validate())

	tests := map[string]func(c *Config){
		"missing secret":   func(c *Config) { c.JWTSecret = "" },
		"missing db name":  func(c *Config) { c.DBName = "" },
		"missing db user":  func(c *Config) { c.DBUser = "" },
		"zero expiry":      func(c *Config) { c.JWTExpiryHours = 0 },
		"unknown timezone": func(c *Config) { c.ClinicTimezone = "Marte/Olympus" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
