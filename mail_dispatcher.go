package authgate

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// mailDispatcher decouples code issuance from mail delivery: Publish hands
// a message to a buffered channel and returns immediately, a background
// worker feeds the sink. Delivery is fire-and-forget; a full buffer either
// drops the message (DropIfFull) or blocks until the request context is
// done.
type mailDispatcher struct {
	cfg       MailConfig
	sink      MailSink
	log       zerolog.Logger
	ch        chan MailMessage
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func newMailDispatcher(cfg MailConfig, sink MailSink, log zerolog.Logger) *mailDispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &mailDispatcher{
		cfg:  cfg,
		sink: sink,
		log:  log,
		ch:   make(chan MailMessage, cfg.BufferSize),
		done: make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *mailDispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case msg := <-d.ch:
			d.sink.Send(context.Background(), msg)
		case <-d.done:
			// Drain whatever is already buffered before exiting.
			for {
				select {
				case msg := <-d.ch:
					d.sink.Send(context.Background(), msg)
				default:
					return
				}
			}
		}
	}
}

func (d *mailDispatcher) Publish(ctx context.Context, msg MailMessage) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- msg:
		case <-d.done:
		default:
			d.dropped.Add(1)
			d.log.Warn().
				Str("type", msg.Type).
				Str("email", msg.Email).
				Msg("mail dispatch buffer full, message dropped")
		}
		return
	}

	select {
	case d.ch <- msg:
	case <-ctx.Done():
	case <-d.done:
	}
}

func (d *mailDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

func (d *mailDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
