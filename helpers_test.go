package authgate

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*Engine, *miniredis.Miniredis, *ChannelSink) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "miniredis run")
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	sink := NewChannelSink(16)

	engine, err := New().
		WithSecret([]byte("0123456789abcdef0123456789abcdef")).
		WithRedis(rdb).
		WithMailSink(sink).
		Build()
	require.NoError(t, err, "build engine")
	t.Cleanup(engine.Close)

	return engine, mr, sink
}

func receiveMail(t *testing.T, sink *ChannelSink) MailMessage {
	t.Helper()

	select {
	case msg := <-sink.Messages():
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no mail message published within 2s")
		return MailMessage{}
	}
}
