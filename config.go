package authgate

import (
	"errors"
	"time"
)

// KeyConfig holds the Redis key namespaces used by the engine. The
// prefixes are injected into each component at construction time and must
// not collide with one another or with anything else in the shared store.
type KeyConfig struct {
	// JWTDenyList prefixes revoked token identifiers.
	JWTDenyList string
	// VerifyCodeData prefixes stored verification codes, further scoped by
	// purpose and email.
	VerifyCodeData string
	// VerifyCodeLimit prefixes the single-shot cooldown locks for code
	// requests, scoped by purpose and client IP.
	VerifyCodeLimit string
	// FlowCounter prefixes the per-IP fixed-window request counters.
	FlowCounter string
	// FlowBlock prefixes the per-IP punitive block flags.
	FlowBlock string
}

// JWTConfig holds token signing parameters.
type JWTConfig struct {
	// Secret is the shared HMAC-SHA256 signing key.
	Secret []byte
	// ExpireDays is the token lifetime, in days.
	ExpireDays int
}

// VerifyCodeConfig tunes the verification code workflow.
type VerifyCodeConfig struct {
	// TTL bounds how long an issued code stays valid.
	TTL time.Duration
	// RequestCooldown is the minimum interval between code requests from
	// the same client for the same purpose.
	RequestCooldown time.Duration
}

// FlowConfig tunes the per-IP request flow limiter.
type FlowConfig struct {
	// MaxRequests is the ceiling per counting window.
	MaxRequests int
	// Window is the fixed counting window.
	Window time.Duration
	// Block is the punitive cooldown applied once the ceiling is exceeded.
	Block time.Duration
}

// MailConfig tunes the asynchronous mail dispatcher.
type MailConfig struct {
	// BufferSize is the dispatch channel capacity.
	BufferSize int
	// DropIfFull makes Publish non-blocking: messages that do not fit in
	// the buffer are counted and dropped. Delivery is at most once either
	// way; consumers must tolerate duplicates and gaps.
	DropIfFull bool
}

// Config is the top-level engine configuration. Obtain a baseline from
// [DefaultConfig] and override what the deployment needs.
type Config struct {
	JWT        JWTConfig
	VerifyCode VerifyCodeConfig
	Flow       FlowConfig
	Mail       MailConfig
	Keys       KeyConfig
}

// DefaultConfig returns the baseline configuration: 1-day tokens, 3-minute
// codes with a 60-second request cooldown, and a 10 requests / 3 seconds
// flow window with a 30-second block. The signing secret has no default and
// must be set by the caller.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			ExpireDays: 1,
		},
		VerifyCode: VerifyCodeConfig{
			TTL:             3 * time.Minute,
			RequestCooldown: 60 * time.Second,
		},
		Flow: FlowConfig{
			MaxRequests: 10,
			Window:      3 * time.Second,
			Block:       30 * time.Second,
		},
		Mail: MailConfig{
			BufferSize: 64,
			DropIfFull: true,
		},
		Keys: KeyConfig{
			JWTDenyList:     "jwt:blacklist:",
			VerifyCodeData:  "verify:email:data:",
			VerifyCodeLimit: "verify:email:limit:",
			FlowCounter:     "flow:counter:",
			FlowBlock:       "flow:block:",
		},
	}
}

func validateConfig(cfg Config) error {
	if len(cfg.JWT.Secret) == 0 {
		return errors.New("config: JWT.Secret is required")
	}
	if cfg.JWT.ExpireDays <= 0 {
		return errors.New("config: JWT.ExpireDays must be positive")
	}
	if cfg.VerifyCode.TTL <= 0 {
		return errors.New("config: VerifyCode.TTL must be positive")
	}
	if cfg.VerifyCode.RequestCooldown <= 0 {
		return errors.New("config: VerifyCode.RequestCooldown must be positive")
	}
	if cfg.Flow.MaxRequests <= 0 {
		return errors.New("config: Flow.MaxRequests must be positive")
	}
	if cfg.Flow.Window <= 0 || cfg.Flow.Block <= 0 {
		return errors.New("config: Flow.Window and Flow.Block must be positive")
	}
	if cfg.Mail.BufferSize <= 0 {
		return errors.New("config: Mail.BufferSize must be positive")
	}
	return validateKeys(cfg.Keys)
}

func validateKeys(keys KeyConfig) error {
	prefixes := []string{
		keys.JWTDenyList,
		keys.VerifyCodeData,
		keys.VerifyCodeLimit,
		keys.FlowCounter,
		keys.FlowBlock,
	}

	seen := make(map[string]struct{}, len(prefixes))
	for _, prefix := range prefixes {
		if prefix == "" {
			return errors.New("config: every key prefix must be set")
		}
		if _, dup := seen[prefix]; dup {
			return errors.New("config: key prefixes must not collide")
		}
		seen[prefix] = struct{}{}
	}

	return nil
}
