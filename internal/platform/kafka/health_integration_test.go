//go:build integration

package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"idcard/pkg/testutil/containers"
)

func TestHealthCheckerAgainstBroker(t *testing.T) {
	k := containers.GetManager().GetKafka(t)
	assert.NoError(t, NewHealthChecker(k.Brokers, 5*time.Second).Check(context.Background()))
}
