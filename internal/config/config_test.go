package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lorrc/voice2ticket/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(config.ConfigFileEnv, "")
	t.Setenv("SESSION_DIR", t.TempDir())

	cfg, err := config.Load("")

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "audio/", cfg.Storage.Prefix)
	assert.Equal(t, "file", cfg.Session.Backend)
	assert.Equal(t, 10, cfg.Console.PageSize)
	assert.Equal(t, "ffmpeg", cfg.Capture.Command)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "v2t.yaml")
	yamlDoc := `
ticket_api:
  base_url: https://api.example.com/prod
  timeout: 3s
storage:
  bucket: yaml-bucket
  region: eu-west-1
  identity_pool_id: eu-west-1:abc-123
session:
  backend: redis
  redis_addr: redis:6379
console:
  page_size: 25
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o600))
	t.Setenv("S3_BUCKET", "env-bucket")

	cfg, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/prod", cfg.TicketAPI.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.TicketAPI.Timeout)
	assert.Equal(t, "env-bucket", cfg.Storage.Bucket, "env wins over yaml")
	assert.Equal(t, "eu-west-1", cfg.Storage.Region)
	assert.Equal(t, "redis", cfg.Session.Backend)
	assert.Equal(t, 25, cfg.Console.PageSize)
	assert.Equal(t, "audio/", cfg.Storage.Prefix, "unset keys keep defaults")
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{"defaults are valid", func(c *config.Config) {}, ""},
		{"relative api base", func(c *config.Config) { c.TicketAPI.BaseURL = "/tickets" }, "API_BASE"},
		{"unknown session backend", func(c *config.Config) { c.Session.Backend = "sqlite" }, "SESSION_BACKEND"},
		{"half static keys", func(c *config.Config) { c.Storage.AccessKeyID = "AK" }, "S3_SECRET_ACCESS_KEY"},
		{"zero page size", func(c *config.Config) { c.Console.PageSize = 0 }, "CONSOLE_PAGE_SIZE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			cfg.Session.Dir = "/tmp/v2t"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateServer(t *testing.T) {
	cfg := config.Defaults()
	assert.ErrorContains(t, cfg.ValidateServer(), "CONSOLE_TOKEN_SECRET is required")

	cfg.Console.TokenSecret = "short"
	cfg.App.Environment = "production"
	err := cfg.ValidateServer()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")
	assert.Contains(t, err.Error(), "WS_ALLOWED_ORIGINS")
}

func TestString_RedactsSecrets(t *testing.T) {
	cfg := config.Defaults()
	cfg.Storage.IdentityPoolID = "us-east-1:secret-pool"
	cfg.Storage.AccessKeyID = "AKIASECRET"
	cfg.Session.RedisPassword = "hunter2"
	cfg.Console.TokenSecret = "token-secret"

	s := cfg.String()

	assert.NotContains(t, s, "secret-pool")
	assert.NotContains(t, s, "AKIASECRET")
	assert.NotContains(t, s, "hunter2")
	assert.NotContains(t, s, "token-secret")
	assert.Contains(t, s, "[REDACTED]")
}
