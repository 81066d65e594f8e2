package authgate

import (
	"context"
	"fmt"
)

// Purposes recognized by the mail renderer. A message with any other type
// is silently dropped by the consumer; no error surfaces back to the
// requester across the fire-and-forget boundary.
const (
	PurposeRegister = "register"
	PurposeReset    = "reset"
)

// MailMessage is the payload published on the asynchronous delivery
// channel. Delivery is at most once and unordered across purposes;
// consumers must be idempotent-tolerant.
type MailMessage struct {
	Type  string `json:"type"`
	Email string `json:"email"`
	Code  int    `json:"code"`
}

// MailContent is a rendered, ready-to-send message.
type MailContent struct {
	To      string
	Subject string
	Body    string
}

// RenderMail turns a channel message into purpose-specific content.
// Unrecognized purposes return ok=false and produce no mail.
func RenderMail(msg MailMessage) (MailContent, bool) {
	switch msg.Type {
	case PurposeRegister:
		return MailContent{
			To:      msg.Email,
			Subject: "Welcome! Confirm your registration",
			Body: fmt.Sprintf("Your registration verification code is %d. "+
				"It is valid for 3 minutes. For your security, never share this code with anyone.", msg.Code),
		}, true
	case PurposeReset:
		return MailContent{
			To:      msg.Email,
			Subject: "Your password reset code",
			Body: fmt.Sprintf("You requested a password reset. Verification code: %d. "+
				"It is valid for 3 minutes. If this was not you, please ignore this message.", msg.Code),
		}, true
	default:
		return MailContent{}, false
	}
}

// MailSink consumes published messages. Implementations render and deliver
// the mail; the engine never waits on them.
type MailSink interface {
	Send(ctx context.Context, msg MailMessage)
}

// NoOpSink discards every message.
type NoOpSink struct{}

func (NoOpSink) Send(context.Context, MailMessage) {}

// ChannelSink exposes published messages on a Go channel, for consumers
// that bridge to an external broker or for tests.
type ChannelSink struct {
	messages chan MailMessage
}

// NewChannelSink creates a sink with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		messages: make(chan MailMessage, buffer),
	}
}

func (s *ChannelSink) Send(ctx context.Context, msg MailMessage) {
	select {
	case s.messages <- msg:
	case <-ctx.Done():
	}
}

// Messages returns the receive side of the sink.
func (s *ChannelSink) Messages() <-chan MailMessage {
	return s.messages
}
