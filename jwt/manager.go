package jwt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrInvalidToken covers every verification failure a caller should
	// treat as "unauthenticated": missing Bearer prefix, bad signature,
	// malformed structure, missing claims, or natural expiry.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenRevoked reports that the token's identifier is already on
	// the deny-list.
	ErrTokenRevoked = errors.New("token already revoked")
	// ErrRedisUnavailable wraps deny-list store failures. These are
	// infrastructure errors, not credential errors.
	ErrRedisUnavailable = errors.New("token deny-list redis unavailable")
)

// Config holds the signing parameters for a [Manager].
//
// A single shared symmetric secret is assumed; there is no key rotation or
// multi-key distribution.
type Config struct {
	// Secret is the HMAC-SHA256 signing key. Required.
	Secret []byte
	// ExpireDays is the token lifetime in days. Required, must be positive.
	ExpireDays int
	// DenyListPrefix namespaces revoked token identifiers in Redis.
	DenyListPrefix string
}

// Claims is the payload carried by every issued token. Consumers must treat
// a token missing any of these claims as invalid.
type Claims struct {
	UserID      int      `json:"id"`
	Name        string   `json:"name"`
	Authorities []string `json:"authorities"`
	jwt.RegisteredClaims
}

// Identity is the minimal principal reconstructed from token claims alone,
// without any store or database access. The credential is always the
// placeholder "***": passwords never travel inside tokens.
type Identity struct {
	UserID      int
	Username    string
	Password    string
	Authorities []string
}

// Identity rebuilds the request principal from the claims. It performs no
// I/O, which is what keeps per-request authentication stateless.
func (c *Claims) Identity() Identity {
	return Identity{
		UserID:      c.UserID,
		Username:    c.Name,
		Password:    "***",
		Authorities: c.Authorities,
	}
}

// Manager issues, verifies, and revokes signed bearer tokens. Tokens are
// self-contained; the only server-side state is a TTL-bounded deny-list of
// revoked token identifiers, so the store's working set stays proportional
// to active revocations rather than total issuances.
type Manager struct {
	redis  redis.UniversalClient
	config Config
}

// NewManager validates cfg and creates a [Manager] backed by the given
// Redis client for deny-list bookkeeping.
func NewManager(redisClient redis.UniversalClient, cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("jwt: signing secret is required")
	}
	if cfg.ExpireDays <= 0 {
		return nil, errors.New("jwt: token lifetime must be positive")
	}
	if cfg.DenyListPrefix == "" {
		return nil, errors.New("jwt: deny-list prefix is required")
	}

	return &Manager{
		redis:  redisClient,
		config: cfg,
	}, nil
}

// Issue creates a signed token for the given user. The token carries the
// user id, username, and authority list, a freshly generated unique token
// identifier, and issued-at/expires-at timestamps. Issue has no side
// effects: it is a pure function of its inputs and the clock.
func (m *Manager) Issue(userID int, username string, authorities []string) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID:      userID,
		Name:        username,
		Authorities: authorities,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.lifetime())),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.config.Secret)
}

// Verify authenticates a raw Authorization header value. It strips the
// "Bearer " prefix (absence means no credentials, no signature work is
// attempted), checks the signature and structure, rejects deny-listed and
// expired tokens, and requires every claim of [Claims] to be present.
// There is no partial success: either the full claim set comes back, or
// [ErrInvalidToken].
func (m *Manager) Verify(ctx context.Context, headerValue string) (*Claims, error) {
	token, ok := bearerToken(headerValue)
	if !ok {
		return nil, ErrInvalidToken
	}

	claims, err := m.parse(token)
	if err != nil {
		return nil, err
	}

	denied, err := m.isDenied(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if denied {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Revoke negates a token's validity for the rest of its natural lifetime by
// recording its identifier on the deny-list with TTL = expires-at − now.
// The entry therefore never outlives the token it denies.
//
// A malformed, unsigned, or already-expired header value cannot be revoked
// and returns [ErrInvalidToken]. Revoking a token whose identifier is
// already deny-listed returns [ErrTokenRevoked]; the net effect (denied) is
// unchanged, but the double revoke is reported as a failure.
func (m *Manager) Revoke(ctx context.Context, headerValue string) error {
	token, ok := bearerToken(headerValue)
	if !ok {
		return ErrInvalidToken
	}

	claims, err := m.parse(token)
	if err != nil {
		return err
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		return ErrInvalidToken
	}

	// SET NX keeps the insert-if-absent atomic under concurrent revokes.
	ok, err = m.redis.SetNX(ctx, m.denyKey(claims.ID), "", remaining).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if !ok {
		return ErrTokenRevoked
	}

	return nil
}

func (m *Manager) parse(token string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	parsed, err := parser.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID <= 0 || claims.Name == "" || claims.Authorities == nil || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (m *Manager) isDenied(ctx context.Context, jti string) (bool, error) {
	n, err := m.redis.Exists(ctx, m.denyKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return n > 0, nil
}

func (m *Manager) denyKey(jti string) string {
	return m.config.DenyListPrefix + jti
}

func (m *Manager) lifetime() time.Duration {
	return time.Duration(m.config.ExpireDays) * 24 * time.Hour
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
