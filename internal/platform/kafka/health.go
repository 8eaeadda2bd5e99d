package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

var ErrNoBrokers = errors.New("kafka brokers not configured")

// HealthChecker asks the cluster for broker metadata. A TCP listener that is
// not a Kafka broker does not pass.
type HealthChecker struct {
	seeds   []string
	timeout time.Duration
}

func NewHealthChecker(brokers string, timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthChecker{seeds: Seeds(brokers), timeout: timeout}
}

// Check returns nil when the cluster reports at least one broker.
func (h *HealthChecker) Check(ctx context.Context) error {
	if len(h.seeds) == 0 {
		return ErrNoBrokers
	}
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	client, err := kgo.NewClient(
		kgo.SeedBrokers(h.seeds...),
		kgo.DialTimeout(h.timeout),
		kgo.RequestRetries(0),
	)
	if err != nil {
		return fmt.Errorf("kafka client: %w", err)
	}
	defer client.Close()

	meta, err := kadm.NewClient(client).BrokerMetadata(ctx)
	if err != nil {
		return fmt.Errorf("kafka unreachable: %w", err)
	}
	if len(meta.Brokers) == 0 {
		return errors.New("kafka reported no brokers")
	}
	return nil
}
