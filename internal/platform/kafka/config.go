// Package kafka holds broker configuration shared by the producer and the
// readiness check.
package kafka

import (
	"strings"
	"time"
)

// ProducerConfig configures the lifecycle event producer.
type ProducerConfig struct {
	// Brokers is a comma-separated seed list.
	Brokers         string
	ClientID        string
	Acks            string
	Retries         int
	Linger          time.Duration
	DeliveryTimeout time.Duration
}

// DefaultProducerConfig favours durability: all in-sync replicas must ack.
func DefaultProducerConfig(brokers string) ProducerConfig {
	return ProducerConfig{
		Brokers:         brokers,
		ClientID:        "idcard",
		Acks:            "all",
		Retries:         3,
		Linger:          5 * time.Millisecond,
		DeliveryTimeout: 30 * time.Second,
	}
}

// Seeds splits a comma-separated broker list, dropping blanks.
func Seeds(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
