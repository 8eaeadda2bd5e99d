// Package producer publishes outbox messages to Kafka.
package producer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"idcard/internal/platform/kafka"
)

var ErrClosed = errors.New("kafka producer closed")

const flushTimeout = 30 * time.Second

// Message is one record to publish.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// record converts m; headers are sorted so identical messages serialise identically.
func (m *Message) record() *kgo.Record {
	keys := make([]string, 0, len(m.Headers))
	for k := range m.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	headers := make([]kgo.RecordHeader, len(keys))
	for i, k := range keys {
		headers[i] = kgo.RecordHeader{Key: k, Value: []byte(m.Headers[k])}
	}
	return &kgo.Record{Topic: m.Topic, Key: m.Key, Value: m.Value, Headers: headers}
}

// Producer publishes synchronously; the outbox worker marks an entry
// processed only after the broker acknowledged it.
type Producer struct {
	client *kgo.Client
	logger *slog.Logger
	closed atomic.Bool
}

func acksFor(setting string) kgo.Acks {
	switch setting {
	case "none", "0":
		return kgo.NoAck()
	case "leader", "1":
		return kgo.LeaderAck()
	default:
		return kgo.AllISRAcks()
	}
}

func options(cfg kafka.ProducerConfig) []kgo.Opt {
	acks := acksFor(cfg.Acks)
	opts := []kgo.Opt{
		kgo.SeedBrokers(kafka.Seeds(cfg.Brokers)...),
		kgo.RequiredAcks(acks),
		kgo.RecordRetries(cfg.Retries),
		kgo.AllowAutoTopicCreation(),
	}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}
	if cfg.Linger > 0 {
		opts = append(opts, kgo.ProducerLinger(cfg.Linger))
	}
	if cfg.DeliveryTimeout > 0 {
		opts = append(opts, kgo.RecordDeliveryTimeout(cfg.DeliveryTimeout))
	}
	// franz-go only allows idempotent writes with acks=all.
	if acks != kgo.AllISRAcks() {
		opts = append(opts, kgo.DisableIdempotentWrite())
	}
	return opts
}

func New(cfg kafka.ProducerConfig, logger *slog.Logger) (*Producer, error) {
	if len(kafka.Seeds(cfg.Brokers)) == 0 {
		return nil, kafka.ErrNoBrokers
	}
	if logger == nil {
		logger = slog.Default()
	}
	client, err := kgo.NewClient(options(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return &Producer{client: client, logger: logger}, nil
}

// Produce blocks until the broker acknowledges msg or ctx ends.
func (p *Producer) Produce(ctx context.Context, msg *Message) error {
	if p.closed.Load() {
		return ErrClosed
	}
	if err := p.client.ProduceSync(ctx, msg.record()).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", msg.Topic, err)
	}
	return nil
}

// Close flushes buffered records and releases the client. Safe to call twice.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := p.client.Flush(ctx); err != nil {
		p.logger.Warn("kafka producer closed with unflushed records", "error", err)
	}
	p.client.Close()
	return nil
}

// NoopProducer logs and drops messages. The server uses it when no brokers
// are configured so outbox entries are still marked processed and purged.
type NoopProducer struct {
	logger *slog.Logger
}

func NewNoopProducer(logger *slog.Logger) *NoopProducer {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopProducer{logger: logger}
}

func (p *NoopProducer) Produce(ctx context.Context, msg *Message) error {
	p.logger.DebugContext(ctx, "kafka disabled, event dropped",
		"topic", msg.Topic,
		"key", string(msg.Key),
		"event_type", msg.Headers["event_type"],
	)
	return nil
}

func (p *NoopProducer) Close() error { return nil }
