// Package config loads advisor settings from .env, an optional YAML file and
// the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrUnknownProvider is returned when model.provider is not openai or gemini.
var ErrUnknownProvider = errors.New("config: unknown model provider")

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	EnvProduction = "production"
)

// Duration wraps time.Duration with YAML unmarshaling from strings like "500ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// Config is the top-level advisor configuration. An empty GRPCPort leaves
// the gRPC health service off.
type Config struct {
	HTTPPort    string        `yaml:"http_port"`
	GRPCPort    string        `yaml:"grpc_port"`
	Env         string        `yaml:"env"`
	LogLevel    string        `yaml:"log_level"`
	CatalogFile string        `yaml:"catalog_file"`
	Model       ModelConfig   `yaml:"model"`
	Storage     StorageConfig `yaml:"storage"`
	Admin       AdminConfig   `yaml:"admin"`
}

type ModelConfig struct {
	Provider       string   `yaml:"provider"`
	OpenAIAPIKey   string   `yaml:"openai_api_key"`
	OpenAIBaseURL  string   `yaml:"openai_base_url"`
	GeminiAPIKey   string   `yaml:"gemini_api_key"`
	StackModel     string   `yaml:"stack_model"`
	ChatModel      string   `yaml:"chat_model"`
	MaxAttempts    int      `yaml:"max_attempts"`
	RetryBaseDelay Duration `yaml:"retry_base_delay"`
	Timeout        Duration `yaml:"timeout"`
}

type StorageConfig struct {
	ClickHouseDSN string `yaml:"clickhouse_dsn"`
	PostgresDSN   string `yaml:"postgres_dsn"`
}

// AdminConfig guards the analytics endpoints. An empty TokenHash disables them.
type AdminConfig struct {
	TokenHash string   `yaml:"token_hash"`
	CacheTTL  Duration `yaml:"cache_ttl"`
}

const (
	defaultHTTPPort       = "8080"
	defaultEnv            = "development"
	defaultOpenAIBaseURL  = "https://api.openai.com/v1"
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 500 * time.Millisecond
	defaultModelTimeout   = 60 * time.Second
	defaultAdminCacheTTL  = 30 * time.Second
)

var defaultModels = map[string]struct{ stack, chat string }{
	ProviderOpenAI: {"gpt-4o", "gpt-4o-mini"},
	ProviderGemini: {"gemini-2.5-pro", "gemini-2.5-flash"},
}

// Load reads .env (if present), the YAML file named by ADVISOR_CONFIG (if
// set), then applies environment overrides and defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path := os.Getenv("ADVISOR_CONFIG"); path != "" {
		if err := readFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.HTTPPort, "ADVISOR_HTTP_PORT")
	setString(&cfg.GRPCPort, "ADVISOR_GRPC_PORT")
	setString(&cfg.Env, "ADVISOR_ENV")
	setString(&cfg.LogLevel, "ADVISOR_LOG_LEVEL")
	setString(&cfg.CatalogFile, "ADVISOR_CATALOG_FILE")

	setString(&cfg.Model.Provider, "MODEL_PROVIDER")
	setString(&cfg.Model.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&cfg.Model.OpenAIBaseURL, "OPENAI_BASE_URL")
	setString(&cfg.Model.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&cfg.Model.StackModel, "ADVISOR_STACK_MODEL")
	setString(&cfg.Model.ChatModel, "ADVISOR_CHAT_MODEL")

	setString(&cfg.Storage.ClickHouseDSN, "CLICKHOUSE_DSN")
	setString(&cfg.Storage.PostgresDSN, "POSTGRES_DSN")
	setString(&cfg.Admin.TokenHash, "ADVISOR_ADMIN_TOKEN_HASH")

	var errs []error
	if v := os.Getenv("MODEL_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("MODEL_MAX_ATTEMPTS: %w", err))
		}
		cfg.Model.MaxAttempts = n
	}
	errs = append(errs,
		setDuration(&cfg.Model.RetryBaseDelay, "MODEL_RETRY_BASE_DELAY"),
		setDuration(&cfg.Model.Timeout, "MODEL_TIMEOUT"),
		setDuration(&cfg.Admin.CacheTTL, "ADVISOR_ADMIN_CACHE_TTL"),
	)
	return errors.Join(errs...)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	dst.Duration = d
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTPPort == "" {
		cfg.HTTPPort = defaultHTTPPort
	}
	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
		if cfg.Production() {
			cfg.LogLevel = "info"
		}
	}

	m := &cfg.Model
	m.Provider = strings.ToLower(strings.TrimSpace(m.Provider))
	if m.Provider == "" {
		m.Provider = ProviderOpenAI
	}
	if m.OpenAIBaseURL == "" {
		m.OpenAIBaseURL = defaultOpenAIBaseURL
	}
	if d, ok := defaultModels[m.Provider]; ok {
		if m.StackModel == "" {
			m.StackModel = d.stack
		}
		if m.ChatModel == "" {
			m.ChatModel = d.chat
		}
	}
	if m.MaxAttempts == 0 {
		m.MaxAttempts = defaultMaxAttempts
	}
	if m.RetryBaseDelay.Duration == 0 {
		m.RetryBaseDelay.Duration = defaultRetryBaseDelay
	}
	if m.Timeout.Duration == 0 {
		m.Timeout.Duration = defaultModelTimeout
	}
	if cfg.Admin.CacheTTL.Duration == 0 {
		cfg.Admin.CacheTTL.Duration = defaultAdminCacheTTL
	}
}

func validate(cfg *Config) error {
	var errs []error

	if _, ok := defaultModels[cfg.Model.Provider]; !ok {
		errs = append(errs, fmt.Errorf("%w %q", ErrUnknownProvider, cfg.Model.Provider))
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level must be debug, info, warn or error, got %q", cfg.LogLevel))
	}
	if cfg.Model.MaxAttempts < 1 {
		errs = append(errs, errors.New("model.max_attempts must be at least 1"))
	}
	if cfg.Model.RetryBaseDelay.Duration < 0 || cfg.Model.Timeout.Duration < 0 {
		errs = append(errs, errors.New("model durations must not be negative"))
	}

	return errors.Join(errs...)
}

// Production reports whether the service runs in the production environment.
func (c *Config) Production() bool {
	return c.Env == EnvProduction
}

// APIKey returns the credential for the configured provider, possibly empty.
func (m ModelConfig) APIKey() string {
	if m.Provider == ProviderGemini {
		return m.GeminiAPIKey
	}
	return m.OpenAIAPIKey
}

// CredentialName is the environment variable that holds APIKey.
func (m ModelConfig) CredentialName() string {
	if m.Provider == ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "OPENAI_API_KEY"
}
