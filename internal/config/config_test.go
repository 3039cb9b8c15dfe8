package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"ADVISOR_CONFIG", "ADVISOR_HTTP_PORT", "ADVISOR_ENV", "ADVISOR_LOG_LEVEL", "ADVISOR_CATALOG_FILE",
	"MODEL_PROVIDER", "OPENAI_API_KEY", "OPENAI_BASE_URL", "GEMINI_API_KEY",
	"ADVISOR_STACK_MODEL", "ADVISOR_CHAT_MODEL",
	"MODEL_MAX_ATTEMPTS", "MODEL_RETRY_BASE_DELAY", "MODEL_TIMEOUT",
	"ADVISOR_GRPC_PORT", "CLICKHOUSE_DSN", "POSTGRES_DSN", "ADVISOR_ADMIN_TOKEN_HASH", "ADVISOR_ADMIN_CACHE_TTL",
}

// isolate blanks every recognized variable and runs from an empty directory
// so that no developer .env leaks into the test.
func isolate(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "advisor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Empty(t, cfg.GRPCPort, "grpc health is opt-in")
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ProviderOpenAI, cfg.Model.Provider)
	assert.Equal(t, "https://api.openai.com/v1", cfg.Model.OpenAIBaseURL)
	assert.Equal(t, "gpt-4o", cfg.Model.StackModel)
	assert.Equal(t, "gpt-4o-mini", cfg.Model.ChatModel)
	assert.Equal(t, 3, cfg.Model.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Model.RetryBaseDelay.Duration)
	assert.Equal(t, 60*time.Second, cfg.Model.Timeout.Duration)
	assert.Equal(t, 30*time.Second, cfg.Admin.CacheTTL.Duration)
	assert.Empty(t, cfg.Model.APIKey())
	assert.Equal(t, "OPENAI_API_KEY", cfg.Model.CredentialName())
	assert.False(t, cfg.Production())
}

func TestLoad_ProductionLogLevel(t *testing.T) {
	isolate(t)
	t.Setenv("ADVISOR_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Production())
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_FileThenEnv(t *testing.T) {
	isolate(t)
	t.Setenv("FILE_KEY", "sk-from-file")
	path := writeConfig(t, `
http_port: "9000"
log_level: warn
model:
  provider: openai
  openai_api_key: ${FILE_KEY}
  stack_model: gpt-4.1
  max_attempts: 5
  retry_base_delay: 250ms
storage:
  clickhouse_dsn: clickhouse://localhost:9000/default
admin:
  cache_ttl: 2m
`)
	t.Setenv("ADVISOR_CONFIG", path)
	t.Setenv("ADVISOR_HTTP_PORT", "9100")
	t.Setenv("MODEL_TIMEOUT", "15s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.HTTPPort, "env overrides file")
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "sk-from-file", cfg.Model.APIKey())
	assert.Equal(t, "gpt-4.1", cfg.Model.StackModel)
	assert.Equal(t, "gpt-4o-mini", cfg.Model.ChatModel)
	assert.Equal(t, 5, cfg.Model.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Model.RetryBaseDelay.Duration)
	assert.Equal(t, 15*time.Second, cfg.Model.Timeout.Duration)
	assert.Equal(t, "clickhouse://localhost:9000/default", cfg.Storage.ClickHouseDSN)
	assert.Equal(t, 2*time.Minute, cfg.Admin.CacheTTL.Duration)
}

func TestLoad_Gemini(t *testing.T) {
	isolate(t)
	t.Setenv("MODEL_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, cfg.Model.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.Model.StackModel)
	assert.Equal(t, "gemini-2.5-flash", cfg.Model.ChatModel)
	assert.Equal(t, "g-key", cfg.Model.APIKey())
	assert.Equal(t, "GEMINI_API_KEY", cfg.Model.CredentialName())
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(".env", []byte("ADVISOR_HTTP_PORT=7777\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("ADVISOR_HTTP_PORT") })
	// godotenv does not override variables that are already set, even to "".
	require.NoError(t, os.Unsetenv("ADVISOR_HTTP_PORT"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7777", cfg.HTTPPort)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		is   error
	}{
		{"unknown provider", map[string]string{"MODEL_PROVIDER": "anthropic"}, ErrUnknownProvider},
		{"bad log level", map[string]string{"ADVISOR_LOG_LEVEL": "verbose"}, nil},
		{"bad attempts", map[string]string{"MODEL_MAX_ATTEMPTS": "many"}, nil},
		{"bad duration", map[string]string{"MODEL_TIMEOUT": "soon"}, nil},
		{"negative attempts", map[string]string{"MODEL_MAX_ATTEMPTS": "-1"}, nil},
		{"missing file", map[string]string{"ADVISOR_CONFIG": "/nonexistent/advisor.yaml"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestDuration_InvalidYAML(t *testing.T) {
	isolate(t)
	t.Setenv("ADVISOR_CONFIG", writeConfig(t, "model:\n  timeout: forever\n"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid duration "forever"`)
}
