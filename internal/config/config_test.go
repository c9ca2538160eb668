package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 24*time.Hour, cfg.Auth.JWTTTL)
	assert.Equal(t, 10*time.Minute, cfg.Auth.VerifyCodeTTL)
	assert.Equal(t, 60*time.Second, cfg.Auth.VerifyResendCooldown)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_ProdRejectsDefaultSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DEV_CONSOLE_DELIVERY", "false")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_ProdWithSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("JWT_SECRET", "a-real-secret")
	t.Setenv("VERIFICATION_CODE_PEPPER", "a-real-pepper")
	t.Setenv("DEV_CONSOLE_DELIVERY", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProd())
}

func TestValidate_NonPositiveTTL(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Auth.VerifyCodeTTL = 0
	assert.Error(t, cfg.Validate())
}

func TestLoadClient_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("MARKETPLACE_URL", "")
	dir := t.TempDir()

	cfg, err := LoadClient(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, dir, cfg.SessionDir)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
}

func TestLoadClient_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: https://shop.example.ma/\ntimeout: 3s\n"), 0o600))

	t.Setenv("MARKETPLACE_URL", "")
	cfg, err := LoadClient(path)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.ma", cfg.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)

	t.Setenv("MARKETPLACE_URL", "http://127.0.0.1:9000")
	cfg, err = LoadClient(path)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.BaseURL)
}

func TestSaveClient_RoundTrip(t *testing.T) {
	t.Setenv("MARKETPLACE_URL", "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, SaveClient(path, &Client{BaseURL: "http://api.local", SessionDir: "/tmp/s", Timeout: 5 * time.Second}))

	cfg, err := LoadClient(path)
	require.NoError(t, err)
	assert.Equal(t, "http://api.local", cfg.BaseURL)
	assert.Equal(t, "/tmp/s", cfg.SessionDir)
}
