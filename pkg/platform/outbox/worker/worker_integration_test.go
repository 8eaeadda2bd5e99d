//go:build integration

package worker_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"idcard/internal/citizen/models"
	"idcard/internal/platform/kafka"
	"idcard/internal/platform/kafka/producer"
	id "idcard/pkg/domain"
	"idcard/pkg/platform/outbox"
	outboxpostgres "idcard/pkg/platform/outbox/postgres"
	"idcard/pkg/platform/outbox/worker"
	"idcard/pkg/testutil/containers"
)

type WorkerIntegrationSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	kafka    *containers.KafkaContainer
	store    *outboxpostgres.Store
	producer *producer.Producer
}

func TestWorkerIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(WorkerIntegrationSuite))
}

func (s *WorkerIntegrationSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.kafka = mgr.GetKafka(s.T())
	s.store = outboxpostgres.New(s.postgres.DB)

	cfg := kafka.DefaultProducerConfig(s.kafka.Brokers)
	cfg.DeliveryTimeout = 10 * time.Second
	prod, err := producer.New(cfg, nil)
	s.Require().NoError(err)
	s.producer = prod
}

func (s *WorkerIntegrationSuite) TearDownSuite() {
	if s.producer != nil {
		_ = s.producer.Close()
	}
}

func (s *WorkerIntegrationSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(context.Background()))
}

// Events appended to the outbox reach Kafka keyed by record id and are marked processed.
func (s *WorkerIntegrationSuite) TestStatusChangeReachesKafka() {
	ctx := context.Background()
	topic := "test-citizen-events"
	s.Require().NoError(s.kafka.EnsureTopic(ctx, topic))

	recordID := id.NewCitizenID()
	entry, err := outbox.NewEventEntry(models.AggregateCitizen, recordID.String(), models.EventCitizenStatusChanged,
		models.CitizenStatusChanged{
			RecordID:  recordID,
			CitizenID: "ET-100200",
			From:      models.StatusWaiting,
			To:        models.StatusPending,
			ChangedBy: "reg-1",
			At:        time.Now().UTC(),
		}, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Append(ctx, entry))

	w := worker.New(s.store, s.producer,
		worker.WithTopic(topic),
		worker.WithPollInterval(50*time.Millisecond),
	)
	w.Start()

	s.Eventually(func() bool {
		n, _ := s.store.CountPending(ctx)
		return n == 0
	}, 10*time.Second, 50*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	s.Require().NoError(w.Stop(stopCtx))

	readCtx, cancelRead := context.WithTimeout(ctx, 10*time.Second)
	defer cancelRead()
	record, err := s.kafka.FirstMatch(readCtx, topic, func(r *kgo.Record) bool {
		return string(r.Key) == recordID.String()
	})
	s.Require().NoError(err)

	headers := make(map[string]string)
	for _, h := range record.Headers {
		headers[h.Key] = string(h.Value)
	}
	s.Equal(models.EventCitizenStatusChanged, headers["event_type"])
	s.Equal(entry.ID.String(), headers["event_id"])

	var got models.CitizenStatusChanged
	s.Require().NoError(json.Unmarshal(record.Value, &got))
	s.Equal(models.StatusPending, got.To)
	s.Equal(recordID, got.RecordID)
}
