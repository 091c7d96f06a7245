package app

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/firststore/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DOTENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "FirstStore", cfg.OTPIssuer)
	require.Empty(t, cfg.DatabaseFile)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, time.Second, cfg.CountdownInterval)
	require.Equal(t, 5*time.Minute, cfg.HousekeepingInterval)
	require.Equal(t, 30*time.Minute, cfg.SessionTTL)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
	require.Equal(t, 5, cfg.RateLimits.OTP.RequestsPerWindow)
}

func TestLoadConfigFromDotEnv(t *testing.T) {
	file := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(file, []byte("SESSION_TTL=45\nRATELIMIT_OTP_REQUESTS=9\nPORT=7070\n"), 0o600))

	t.Setenv("DOTENV_FILE", file)
	t.Setenv("PORT", "9090")
	t.Setenv("COUNTDOWN_INTERVAL", "250ms")

	// Registered with t.Setenv so the values loaded from the file are
	// rolled back after the test.
	for _, key := range []string{"SESSION_TTL", "RATELIMIT_OTP_REQUESTS"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Port, "environment wins over the file")
	require.Equal(t, 250*time.Millisecond, cfg.CountdownInterval)
	require.Equal(t, 45*time.Second, cfg.SessionTTL)
	require.Equal(t, 9, cfg.RateLimits.OTP.RequestsPerWindow)
}

func TestGetEnvDurationOrDefault(t *testing.T) {
	t.Setenv("SIGNUP_TEST_DURATION", "nonsense")
	require.Equal(t, time.Minute, getEnvDurationOrDefault("SIGNUP_TEST_DURATION", time.Minute))

	t.Setenv("SIGNUP_TEST_DURATION", "-5s")
	require.Equal(t, time.Minute, getEnvDurationOrDefault("SIGNUP_TEST_DURATION", time.Minute))

	t.Setenv("SIGNUP_TEST_DURATION", "90")
	require.Equal(t, 90*time.Second, getEnvDurationOrDefault("SIGNUP_TEST_DURATION", time.Minute))
}

func TestNewServesRoutes(t *testing.T) {
	t.Setenv("DOTENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	cfg, err := LoadConfig()
	require.NoError(t, err)
	cfg.LogLevel = "error"

	application, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = application.db.Close()
		slog.SetDefault(slogx.Discard())
	})

	rec := httptest.NewRecorder()
	application.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	application.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/signup/sessions", nil))
	require.Equal(t, http.StatusCreated, rec.Code)
}
