package authgate

import (
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/valinor-labs/authgate/internal/rate"
	"github.com/valinor-labs/authgate/internal/stores"
	"github.com/valinor-labs/authgate/jwt"
)

// Builder assembles an [Engine]. Construction is allocation-only until
// Build; no I/O happens before the first Engine method call.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	sink   MailSink
	log    zerolog.Logger
	hasLog bool
	built  bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithSecret sets the JWT signing secret without replacing the rest of the
// configuration.
func (b *Builder) WithSecret(secret []byte) *Builder {
	b.config.JWT.Secret = secret
	return b
}

// WithRedis sets the shared store client. Required.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithMailSink sets the consumer side of the mail channel. Without one,
// published messages are discarded.
func (b *Builder) WithMailSink(sink MailSink) *Builder {
	b.sink = sink
	return b
}

// WithLogger sets the structured logger. The default logger is disabled.
func (b *Builder) WithLogger(log zerolog.Logger) *Builder {
	b.log = log
	b.hasLog = true
	return b
}

// Build validates the configuration and wires the engine components.
// A Builder can build at most one Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.redis == nil {
		return nil, errors.New("redis client is required")
	}
	if err := validateConfig(b.config); err != nil {
		return nil, err
	}

	log := b.log
	if !b.hasLog {
		log = zerolog.Nop()
	}

	tokens, err := jwt.NewManager(b.redis, jwt.Config{
		Secret:         b.config.JWT.Secret,
		ExpireDays:     b.config.JWT.ExpireDays,
		DenyListPrefix: b.config.Keys.JWTDenyList,
	})
	if err != nil {
		return nil, err
	}

	b.built = true

	return &Engine{
		config: b.config,
		log:    log,
		tokens: tokens,
		limiter: rate.New(b.redis, rate.Config{
			CounterPrefix: b.config.Keys.FlowCounter,
			BlockPrefix:   b.config.Keys.FlowBlock,
		}),
		codes: stores.NewCodeStore(b.redis, b.config.Keys.VerifyCodeData),
		mail:  newMailDispatcher(b.config.Mail, b.sink, log),
	}, nil
}
