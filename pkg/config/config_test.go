package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("OVERDUE_CHECK_HOUR", "31")
	t.Setenv("PREVENTIVE_LOOKAHEAD", "garbage")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, EnvDevelopment, cfg.Env)
	require.Equal(t, "/api/v1", cfg.APIPrefix)
	require.Equal(t, 8, cfg.Scheduler.OverdueCheckHour)
	require.Equal(t, 6, cfg.Scheduler.PreventiveGenerateHour)
	require.Equal(t, 30*24*time.Hour, cfg.Scheduler.PreventiveLookahead)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	require.Equal(t, 10*time.Minute, cfg.Jobs.LockTTL)
	require.Equal(t, 100, cfg.Requests.MaxPageSize)
}

func TestParseDurationFallback(t *testing.T) {
	require.Equal(t, time.Second, parseDuration("", time.Second))
	require.Equal(t, time.Second, parseDuration("nope", time.Second))
	require.Equal(t, 2*time.Minute, parseDuration("2m", time.Second))
}
