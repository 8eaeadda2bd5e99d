package producer

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"idcard/internal/platform/kafka"
)

func TestMessageRecordSortsHeaders(t *testing.T) {
	msg := &Message{
		Topic:   "idcard.citizen.events",
		Key:     []byte("rec-1"),
		Value:   []byte(`{}`),
		Headers: map[string]string{"event_type": "citizen.registered", "aggregate_id": "rec-1"},
	}
	r := msg.record()
	assert.Equal(t, "idcard.citizen.events", r.Topic)
	assert.Equal(t, []kgo.RecordHeader{
		{Key: "aggregate_id", Value: []byte("rec-1")},
		{Key: "event_type", Value: []byte("citizen.registered")},
	}, r.Headers)
}

func TestAcksFor(t *testing.T) {
	assert.Equal(t, kgo.NoAck(), acksFor("none"))
	assert.Equal(t, kgo.LeaderAck(), acksFor("1"))
	assert.Equal(t, kgo.AllISRAcks(), acksFor("all"))
	assert.Equal(t, kgo.AllISRAcks(), acksFor(""))
}

func TestNewRequiresBrokers(t *testing.T) {
	_, err := New(kafka.DefaultProducerConfig(" "), nil)
	assert.ErrorIs(t, err, kafka.ErrNoBrokers)
}

// kgo does not dial until the first request, so a closed producer can be
// exercised without a broker.
func TestProduceAfterClose(t *testing.T) {
	p, err := New(kafka.DefaultProducerConfig("127.0.0.1:1"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	err = p.Produce(context.Background(), &Message{Topic: "t"})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestNoopProducer(t *testing.T) {
	p := NewNoopProducer(nil)
	assert.NoError(t, p.Produce(context.Background(), &Message{Topic: "t", Headers: map[string]string{}}))
	assert.NoError(t, p.Close())
}
