package authgate

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/valinor-labs/authgate/internal/rate"
	"github.com/valinor-labs/authgate/internal/stores"
	"github.com/valinor-labs/authgate/jwt"
)

// Engine is the public surface of authgate. It bundles the token lifecycle
// manager, the rate limiter, the verification code workflow, and the mail
// dispatcher behind one construction point ([Builder.Build]).
//
// All shared mutable state lives in Redis; the Engine itself holds only
// immutable configuration and clients, so its methods are safe to call from
// any number of goroutines.
type Engine struct {
	config  Config
	log     zerolog.Logger
	tokens  *jwt.Manager
	limiter *rate.Limiter
	codes   *stores.CodeStore
	mail    *mailDispatcher
}

// IssueToken creates a signed bearer token for a successfully authenticated
// user. Credential checking itself happens upstream; the engine only mints
// the token.
func (e *Engine) IssueToken(userID int, username string, authorities []string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	return e.tokens.Issue(userID, username, authorities)
}

// Authenticate verifies a raw Authorization header value and returns the
// token claims. Every credential failure — absent or malformed Bearer
// prefix, bad signature, revoked identifier, expiry, missing claims — comes
// back as [ErrUnauthenticated]; infrastructure failures of the deny-list
// store are returned as-is so the boundary can abort with a generic error
// instead of treating the request as merely anonymous.
func (e *Engine) Authenticate(ctx context.Context, headerValue string) (*jwt.Claims, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.tokens.Verify(ctx, headerValue)
	if err != nil {
		if errors.Is(err, jwt.ErrInvalidToken) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	return claims, nil
}

// Logout revokes the presented token for the rest of its natural lifetime.
// An invalid or expired token cannot be revoked; revoking twice reports
// [jwt.ErrTokenRevoked].
func (e *Engine) Logout(ctx context.Context, headerValue string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	return e.tokens.Revoke(ctx, headerValue)
}

// AllowRequest applies the per-IP flow ceiling to one inbound request.
// It returns false when the client is inside a counting window that already
// reached the ceiling, or inside the punitive block period that follows.
// Store failures are returned and callers are expected to deny.
func (e *Engine) AllowRequest(ctx context.Context, ip string) (bool, error) {
	if e == nil {
		return false, ErrEngineNotReady
	}
	return e.limiter.AllowWindowed(ctx, ip,
		e.config.Flow.MaxRequests, e.config.Flow.Window, e.config.Flow.Block)
}

// MailDropped reports how many mail messages have been dropped because the
// dispatch buffer was full.
func (e *Engine) MailDropped() uint64 {
	if e == nil || e.mail == nil {
		return 0
	}
	return e.mail.Dropped()
}

// Close stops the mail dispatcher after draining buffered messages.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.mail != nil {
		e.mail.Close()
	}
}
