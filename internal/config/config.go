// Package config provides application configuration management with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.carebot/config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - Agent: Bedrock agent identifiers, region, streaming tunables
//   - Attributes: prefill values for the per-session overrides record
//   - Session: backend selection (memory or redis) and lifetime
//   - Serve: rate limiting and OTLP tracing (see tracing.go)
//
// The agent identifiers keep the environment variable names of the original
// deployment (AGENT_ID, AGENT_ALIAS_ID, AWS_REGION, ...) so existing
// environments keep working unchanged.
//
// Error Handling:
//   - Sentinel errors for errors.Is() checks
//   - Wrapped with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/carebyte/carebot/internal/attrs"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAgentID indicates the Bedrock agent id is not set.
	ErrMissingAgentID = errors.New("missing agent id")

	// ErrMissingAgentAliasID indicates the Bedrock agent alias id is not set.
	ErrMissingAgentAliasID = errors.New("missing agent alias id")

	// ErrInvalidRegion indicates the AWS region is invalid.
	ErrInvalidRegion = errors.New("invalid region")

	// ErrInvalidGuardrailInterval indicates the guardrail interval is out of range.
	ErrInvalidGuardrailInterval = errors.New("invalid guardrail interval")

	// ErrInvalidLanguage indicates the language is not supported.
	ErrInvalidLanguage = errors.New("invalid language")

	// ErrInvalidGoodwillSize indicates the goodwill size default is out of range.
	ErrInvalidGoodwillSize = errors.New("invalid goodwill size")

	// ErrInvalidBrand indicates the brand is empty.
	ErrInvalidBrand = errors.New("invalid brand")

	// ErrInvalidChannel indicates the channel is empty.
	ErrInvalidChannel = errors.New("invalid channel")

	// ErrInvalidSessionBackend indicates the session backend is not supported.
	ErrInvalidSessionBackend = errors.New("invalid session backend")

	// ErrInvalidSessionTTL indicates the session lifetime is invalid.
	ErrInvalidSessionTTL = errors.New("invalid session ttl")

	// ErrInvalidRateLimit indicates a rate limit value is invalid.
	ErrInvalidRateLimit = errors.New("invalid rate limit")
)

// Session backend identifiers used in Config.SessionBackend.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

const (
	// DefaultGuardrailInterval is the default guardrail application interval
	// in characters for streamed responses.
	DefaultGuardrailInterval int32 = 50

	// defaultCustomerOUID is the demo customer prefilled into new sessions
	// when DEFAULT_CUSTOMER_OUID is not set.
	defaultCustomerOUID = "1E5A1F564E180BD3EBF02D7D5007DB28"
)

// Config stores application configuration.
// SECURITY: Sensitive fields are explicitly masked in MarshalJSON().
// When adding new sensitive fields (URLs with credentials, tokens), update MarshalJSON.
type Config struct {
	// Bedrock agent target
	AgentID      string `mapstructure:"agent_id" json:"agent_id"`
	AgentAliasID string `mapstructure:"agent_alias_id" json:"agent_alias_id"`
	Region       string `mapstructure:"region" json:"region"`

	// Streaming tunables forwarded on every invocation
	StreamFinalResponse    bool  `mapstructure:"stream_final_response" json:"stream_final_response"`
	ApplyGuardrailInterval int32 `mapstructure:"apply_guardrail_interval" json:"apply_guardrail_interval"`

	// Prefill values for new session override records
	DefaultCustomerOUID   string `mapstructure:"default_customer_ouid" json:"default_customer_ouid"`
	Brand                 string `mapstructure:"brand" json:"brand"`
	Channel               string `mapstructure:"channel" json:"channel"`
	Language              string `mapstructure:"language" json:"language"`
	DefaultGoodwillSizeGB int    `mapstructure:"default_goodwill_size_gb" json:"default_goodwill_size_gb"`
	DefaultGoodwillReason string `mapstructure:"default_goodwill_reason" json:"default_goodwill_reason"`

	// Session store configuration
	SessionBackend string        `mapstructure:"session_backend" json:"session_backend"`
	RedisURL       string        `mapstructure:"redis_url" json:"redis_url"` // SENSITIVE: may carry credentials, masked in MarshalJSON
	SessionTTL     time.Duration `mapstructure:"session_ttl" json:"session_ttl"`

	// Serve mode rate limiting (0 = server default)
	RateRPS   float64 `mapstructure:"rate_rps" json:"rate_rps"`
	RateBurst int     `mapstructure:"rate_burst" json:"rate_burst"`

	// Observability configuration (see tracing.go)
	Tracing TracingConfig `mapstructure:"tracing" json:"tracing"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	// Configuration directory: ~/.carebot/
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".carebot")

	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".") // Also support current directory

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."},
			"config_name", "config.yaml")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// Identifiers arrive from env with incidental whitespace often enough
	// that the original deployment trimmed them; keep doing that.
	cfg.AgentID = strings.TrimSpace(cfg.AgentID)
	cfg.AgentAliasID = strings.TrimSpace(cfg.AgentAliasID)

	// CRITICAL: Validate immediately (fail-fast)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults() {
	// Agent defaults: identifiers have no sensible default, they must be provided
	viper.SetDefault("agent_id", "")
	viper.SetDefault("agent_alias_id", "")
	viper.SetDefault("region", "eu-west-1")
	viper.SetDefault("stream_final_response", true)
	viper.SetDefault("apply_guardrail_interval", DefaultGuardrailInterval)

	// Override record prefills
	viper.SetDefault("default_customer_ouid", defaultCustomerOUID)
	viper.SetDefault("brand", "carebot")
	viper.SetDefault("channel", "chat")
	viper.SetDefault("language", attrs.DefaultLanguage)
	viper.SetDefault("default_goodwill_size_gb", attrs.DefaultGoodwillGB)
	viper.SetDefault("default_goodwill_reason", attrs.DefaultGoodwillReason)

	// Session store defaults
	viper.SetDefault("session_backend", SessionBackendMemory)
	viper.SetDefault("redis_url", "redis://localhost:6379/0")
	viper.SetDefault("session_ttl", "24h")

	// Serve mode defaults
	viper.SetDefault("rate_rps", 5.0)
	viper.SetDefault("rate_burst", 10)

	// Tracing defaults
	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.endpoint", "localhost:4318")
	viper.SetDefault("tracing.environment", "dev")
	viper.SetDefault("tracing.service_name", "carebot")
}

// bindEnvVariables binds environment variables explicitly.
// The agent-facing set keeps the original deployment's names (AGENT_ID,
// AGENT_ALIAS_ID, AWS_REGION, STREAM_FINAL_RESPONSE, APPLY_GUARDRAIL_INTERVAL,
// DEFAULT_CUSTOMER_OUID); everything added on the Go side is namespaced
// under CAREBOT_*.
func bindEnvVariables() {
	// Helper to panic on unexpected bind errors (hardcoded strings can't fail)
	// If this panics, it's a BUG in our code, not a runtime error
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("agent_id", "AGENT_ID")
	mustBind("agent_alias_id", "AGENT_ALIAS_ID")
	mustBind("region", "AWS_REGION")
	mustBind("stream_final_response", "STREAM_FINAL_RESPONSE")
	mustBind("apply_guardrail_interval", "APPLY_GUARDRAIL_INTERVAL")
	mustBind("default_customer_ouid", "DEFAULT_CUSTOMER_OUID")

	mustBind("brand", "CAREBOT_BRAND")
	mustBind("channel", "CAREBOT_CHANNEL")
	mustBind("language", "CAREBOT_LANGUAGE")

	mustBind("session_backend", "CAREBOT_SESSION_BACKEND")
	mustBind("redis_url", "CAREBOT_REDIS_URL")
	mustBind("session_ttl", "CAREBOT_SESSION_TTL")

	mustBind("rate_rps", "CAREBOT_RATE_RPS")
	mustBind("rate_burst", "CAREBOT_RATE_BURST")

	mustBind("tracing.enabled", "CAREBOT_TRACING_ENABLED")
	mustBind("tracing.endpoint", "CAREBOT_TRACING_ENDPOINT")
	mustBind("tracing.environment", "CAREBOT_TRACING_ENV")
	mustBind("tracing.service_name", "CAREBOT_TRACING_SERVICE")
}

// maskedValue is the placeholder for masked sensitive data.
// Full-width blocks (U+2588) so a masked value can never substring-match
// the secret it replaced.
const maskedValue = "████████"

// maskSecret masks a secret string for safe logging.
// Secrets of 8 characters or fewer are fully masked; longer ones keep the
// first and last 2 characters for debug utility.
//
// THREAT MODEL: defends against accidental logging of real secrets, nothing
// more. If logs are compromised, rotate the secrets.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	prefix := make([]byte, 2)
	suffix := make([]byte, 2)
	copy(prefix, s[:2])
	copy(suffix, s[len(s)-2:])
	return string(prefix) + "<" + maskedValue + ">" + string(suffix)
}

// MarshalJSON implements json.Marshaler with explicit sensitive field masking.
//
// Sensitive fields masked:
//   - RedisURL (may embed credentials in the userinfo part)
//
// When adding new sensitive fields, update this method.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.RedisURL = maskSecret(a.RedisURL)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}

// AttributeSeed returns the prefill values new session records start from.
func (c *Config) AttributeSeed() attrs.Seed {
	return attrs.Seed{
		CustomerOUID:   c.DefaultCustomerOUID,
		GoodwillSizeGB: c.DefaultGoodwillSizeGB,
		GoodwillReason: c.DefaultGoodwillReason,
		Language:       c.Language,
		Brand:          c.Brand,
		Channel:        c.Channel,
	}
}

// Baseline returns the routing attributes used when a session has overrides
// disabled.
func (c *Config) Baseline() map[string]string {
	return attrs.Baseline(c.Brand, c.Channel, c.Language)
}
