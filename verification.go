package authgate

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/valinor-labs/authgate/internal"
	"github.com/valinor-labs/authgate/internal/stores"
)

// RequestVerifyCode starts a one-time-code exchange for the given purpose
// and email address. The request is gated by a single-shot cooldown keyed
// by (purpose, client IP): at most one code request per cooldown period per
// client, refused with [ErrTooManyRequests].
//
// On acceptance a uniformly random six-digit code is generated, published
// on the asynchronous mail channel (fire-and-forget: this method never
// waits for delivery), and stored under (purpose, email) with the
// configured TTL. A new code overwrites any prior one, so at most one code
// is active per address and purpose.
func (e *Engine) RequestVerifyCode(ctx context.Context, purpose, email, ip string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	allowed, err := e.limiter.AllowOnce(ctx, e.verifyLimitKey(purpose, ip), e.config.VerifyCode.RequestCooldown)
	if err != nil {
		// Store trouble is not a user error, but we fail closed: a limiter
		// that allows on outage is no limiter at all.
		return err
	}
	if !allowed {
		return ErrTooManyRequests
	}

	code, err := internal.NewVerifyCode()
	if err != nil {
		return fmt.Errorf("generate verification code: %w", err)
	}

	e.mail.Publish(ctx, MailMessage{
		Type:  purpose,
		Email: email,
		Code:  code,
	})

	if err := e.codes.Save(ctx, purpose, email, strconv.Itoa(code), e.config.VerifyCode.TTL); err != nil {
		return err
	}

	e.log.Debug().
		Str("purpose", purpose).
		Str("email", email).
		Msg("verification code issued")

	return nil
}

// ConfirmVerifyCode validates a submitted code against the stored one for
// (purpose, email). No active code returns [ErrCodeNotRequested]; a
// mismatch returns [ErrCodeMismatch] and leaves the stored code in place so
// the user may retry. On success the record is also retained: the caller
// deletes it with [Engine.CompleteVerifyCode] once the umbrella action
// (registration, password reset) has finished.
//
// The comparison is an exact string match, no normalization.
func (e *Engine) ConfirmVerifyCode(ctx context.Context, purpose, email, code string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	stored, err := e.codes.Get(ctx, purpose, email)
	if err != nil {
		if errors.Is(err, stores.ErrCodeNotFound) {
			return ErrCodeNotRequested
		}
		return err
	}

	if stored != code {
		return ErrCodeMismatch
	}

	return nil
}

// CompleteVerifyCode consumes the code record for (purpose, email) after
// the multi-step action it protected has completed. Completing an absent
// record is not an error.
func (e *Engine) CompleteVerifyCode(ctx context.Context, purpose, email string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	return e.codes.Delete(ctx, purpose, email)
}

func (e *Engine) verifyLimitKey(purpose, ip string) string {
	return e.config.Keys.VerifyCodeLimit + purpose + ":" + ip
}
