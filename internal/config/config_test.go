package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("TG_SESSION_DIR", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TG_AUTH_METHOD", "")
	t.Setenv("UPDATE_BUFFER", "")
	t.Setenv("CHAT_PAGE_SIZE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, AuthMethodPhone, cfg.TGAuthMethod)
	assert.Equal(t, "./sessions/default", cfg.SessionDir)
	assert.Equal(t, filepath.Join("./sessions/default", "session.db"), cfg.DatabaseURL)
	assert.Equal(t, 256, cfg.UpdateBuffer)
	assert.Equal(t, 100, cfg.ChatPageSize)
}

func TestConfig_FromEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("TG_API_ID", "12345")
	t.Setenv("TG_API_HASH", "hash")
	t.Setenv("TG_PHONE", "+10000000000")
	t.Setenv("TG_USE_TEST_DC", "true")
	t.Setenv("TG_AUTH_METHOD", "QR")
	t.Setenv("HTTP_PORT", "3100")
	t.Setenv("TG_SESSION_STRING", "1AAAA")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 12345, cfg.TGApiID)
	assert.Equal(t, "hash", cfg.TGApiHash)
	assert.True(t, cfg.TGUseTestDC)
	assert.Equal(t, AuthMethodQR, cfg.TGAuthMethod)
	assert.Equal(t, 3100, cfg.HTTPPort)
	assert.Equal(t, "1AAAA", cfg.TGSessionString)
}

func TestConfig_YAMLFileOverriddenByEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "api_id: 1\napi_hash: from-file\nphone: \"+1\"\nchat_page_size: 20\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("TG_API_HASH", "from-env")
	t.Setenv("TG_API_ID", "")
	t.Setenv("CHAT_PAGE_SIZE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.TGApiID)
	assert.Equal(t, "from-env", cfg.TGApiHash)
	assert.Equal(t, 20, cfg.ChatPageSize)
}

func TestConfig_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()

	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		TGApiID:      1,
		TGApiHash:    "hash",
		TGPhone:      "+1",
		TGAuthMethod: AuthMethodPhone,
		UpdateBuffer: 1,
		ChatPageSize: 1,
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing api id", mutate: func(c *Config) { c.TGApiID = 0 }, wantErr: "TG_API_ID"},
		{name: "missing api hash", mutate: func(c *Config) { c.TGApiHash = "" }, wantErr: "TG_API_HASH"},
		{name: "missing phone", mutate: func(c *Config) { c.TGPhone = "" }, wantErr: "TG_PHONE"},
		{name: "qr needs no phone", mutate: func(c *Config) { c.TGPhone = ""; c.TGAuthMethod = AuthMethodQR }},
		{name: "unknown method", mutate: func(c *Config) { c.TGAuthMethod = "sms" }, wantErr: "TG_AUTH_METHOD"},
		{name: "zero page size", mutate: func(c *Config) { c.ChatPageSize = 0 }, wantErr: "CHAT_PAGE_SIZE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

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
