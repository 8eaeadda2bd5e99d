package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker() (*Breaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := New("redis", WithFailureThreshold(3), WithSuccessThreshold(2), WithCooldown(time.Second), WithClock(clock.now))
	return b, clock
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b, _ := newTestBreaker()

	assert.Equal(t, StateChange{}, b.RecordFailure())
	assert.Equal(t, StateChange{}, b.RecordFailure())
	b.RecordSuccess()
	assert.Equal(t, StateChange{}, b.RecordFailure(), "a success resets the count")
	b.RecordFailure()
	assert.Equal(t, StateChange{Opened: true}, b.RecordFailure())
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	b, clock := newTestBreaker()
	for range 3 {
		b.RecordFailure()
	}

	clock.advance(999 * time.Millisecond)
	assert.False(t, b.Allow())
	clock.advance(time.Millisecond)
	assert.True(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())

	assert.Equal(t, StateChange{}, b.RecordSuccess())
	assert.Equal(t, StateChange{Closed: true}, b.RecordSuccess())
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerProbeFailureReopens(t *testing.T) {
	b, clock := newTestBreaker()
	for range 3 {
		b.RecordFailure()
	}
	clock.advance(time.Second)
	assert.True(t, b.Allow())

	assert.Equal(t, StateChange{Opened: true}, b.RecordFailure())
	assert.False(t, b.Allow(), "cooldown restarts from the failed probe")
	clock.advance(time.Second)
	assert.True(t, b.Allow())
}

func TestBreakerReset(t *testing.T) {
	b, _ := newTestBreaker()
	for range 3 {
		b.RecordFailure()
	}
	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
	assert.Equal(t, "redis", b.Name())
	assert.Equal(t, "half_open", StateHalfOpen.String())
}
