//go:build integration

// Package containers provides Postgres and Kafka for integration tests. A
// container starts on first use and is shared by every suite in the test
// binary; Ryuk removes it when the process exits.
package containers

import (
	"sync"
	"testing"
)

// Manager hands out the shared containers.
type Manager struct {
	pgOnce    sync.Once
	postgres  *PostgresContainer
	kafkaOnce sync.Once
	kafka     *KafkaContainer
}

var shared = sync.OnceValue(func() *Manager { return new(Manager) })

func GetManager() *Manager { return shared() }

// GetPostgres returns the migrated Postgres container.
func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	m.pgOnce.Do(func() { m.postgres = NewPostgresContainer(t) })
	if m.postgres == nil {
		t.Fatal("postgres container failed to start earlier in this run")
	}
	return m.postgres
}

// GetKafka returns the single-broker Kafka container.
func (m *Manager) GetKafka(t *testing.T) *KafkaContainer {
	t.Helper()
	m.kafkaOnce.Do(func() { m.kafka = NewKafkaContainer(t) })
	if m.kafka == nil {
		t.Fatal("kafka container failed to start earlier in this run")
	}
	return m.kafka
}
