package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.TimeoutRead)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "0 8 * * *", cfg.Scheduler.PendingDigestCron)
	assert.True(t, cfg.Scheduler.EnablePendingDigest)
}

func TestLoadReadsPrefixedVariables(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_MAX_OPEN_CONNS", "3")
	t.Setenv("DB_SSL_MODE", "disable")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SCHEDULER_PENDING_DIGEST_CRON", "*/10 * * * *")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 3, cfg.Database.MaxOpenConns)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "*/10 * * * *", cfg.Scheduler.PendingDigestCron)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			JWT:       JWTConfig{Secret: "s"},
			App:       AppConfig{Env: "development"},
			Scheduler: SchedulerConfig{PendingDigestCron: "0 8 * * *", EnablePendingDigest: true},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing secret", func(c *Config) { c.JWT.Secret = "" }, true},
		{"production without db password", func(c *Config) { c.App.Env = "production" }, true},
		{"bad cron", func(c *Config) { c.Scheduler.PendingDigestCron = "every day" }, true},
		{"bad cron ignored when disabled", func(c *Config) {
			c.Scheduler.PendingDigestCron = "every day"
			c.Scheduler.EnablePendingDigest = false
		}, false},
		{"bootstrap username without password", func(c *Config) { c.Bootstrap.Username = "root" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", cfg.DSN())
}
