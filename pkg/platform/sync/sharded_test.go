package sync

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestShardedMutexSameKeySerializes(t *testing.T) {
	m := NewShardedMutex()
	key := uuid.NewString()
	counter := 0

	var wg sync.WaitGroup
	for range 200 {
		wg.Go(func() {
			m.Lock(key)
			defer m.Unlock(key)
			counter++
		})
	}
	wg.Wait()

	assert.Equal(t, 200, counter)
}

func TestShardedMutexDistributesRecordIDs(t *testing.T) {
	m := NewShardedMutex()
	seen := make(map[int]struct{})
	for range 50 {
		seen[m.shardFor(uuid.NewString())] = struct{}{}
	}
	assert.GreaterOrEqual(t, len(seen), 10)
}

func TestShardedMutexStableAndBounded(t *testing.T) {
	m := NewShardedMutexN(0)
	assert.Len(t, m.shards, 1)
	assert.Equal(t, 0, m.shardFor("anything"))

	m = NewShardedMutexN(8)
	assert.Equal(t, 0, m.shardFor(""))
	assert.Equal(t, m.shardFor("ET-100200"), m.shardFor("ET-100200"))
	assert.Less(t, m.shardFor("ET-100200"), 8)
}
