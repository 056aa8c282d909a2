package config

import (
	"fmt"

	"github.com/carebyte/carebot/internal/attrs"
)

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
//
// A failure here is fatal to the whole session surface: without valid agent
// identifiers no invocation can ever succeed, so the application refuses to
// start instead of failing on the first turn.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	// 1. Agent target validation (required for every invocation)
	if c.AgentID == "" {
		return fmt.Errorf("%w: set AGENT_ID or agent_id in config.yaml", ErrMissingAgentID)
	}
	if c.AgentAliasID == "" {
		return fmt.Errorf("%w: set AGENT_ALIAS_ID or agent_alias_id in config.yaml", ErrMissingAgentAliasID)
	}
	if c.Region == "" {
		return fmt.Errorf("%w: region cannot be empty", ErrInvalidRegion)
	}

	// Guardrails are applied every N characters of streamed output; zero or
	// negative would disable them silently server-side.
	if c.ApplyGuardrailInterval < 1 {
		return fmt.Errorf("%w: must be at least 1, got %d", ErrInvalidGuardrailInterval, c.ApplyGuardrailInterval)
	}

	// 2. Override record prefill validation
	if !attrs.ValidLanguage(c.Language) {
		return fmt.Errorf("%w: %q is not supported, must be one of %v",
			ErrInvalidLanguage, c.Language, attrs.Languages())
	}
	if c.DefaultGoodwillSizeGB < attrs.MinGoodwillGB || c.DefaultGoodwillSizeGB > attrs.MaxGoodwillGB {
		return fmt.Errorf("%w: must be between %d and %d, got %d",
			ErrInvalidGoodwillSize, attrs.MinGoodwillGB, attrs.MaxGoodwillGB, c.DefaultGoodwillSizeGB)
	}
	if c.Brand == "" {
		return fmt.Errorf("%w: brand cannot be empty", ErrInvalidBrand)
	}
	if c.Channel == "" {
		return fmt.Errorf("%w: channel cannot be empty", ErrInvalidChannel)
	}

	// 3. Session store validation
	switch c.SessionBackend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%w: redis backend requires redis_url", ErrInvalidSessionBackend)
		}
	default:
		return fmt.Errorf("%w: %q is not supported, must be %q or %q",
			ErrInvalidSessionBackend, c.SessionBackend, SessionBackendMemory, SessionBackendRedis)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("%w: must be positive, got %s", ErrInvalidSessionTTL, c.SessionTTL)
	}

	// 4. Serve mode validation (0 falls back to the server defaults)
	if c.RateRPS < 0 {
		return fmt.Errorf("%w: rate_rps cannot be negative, got %g", ErrInvalidRateLimit, c.RateRPS)
	}
	if c.RateBurst < 0 {
		return fmt.Errorf("%w: rate_burst cannot be negative, got %d", ErrInvalidRateLimit, c.RateBurst)
	}

	return nil
}
