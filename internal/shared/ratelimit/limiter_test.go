package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(max int, win time.Duration) (*Limiter, *time.Time) {
	current := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	l := New(map[Bucket]Limit{
		BucketGeneration: {MaxRequests: max, Window: win},
		BucketImage:      {MaxRequests: 2, Window: win},
	})
	l.now = func() time.Time { return current }
	return l, &current
}

func TestCheckRejectsBeyondMax(t *testing.T) {
	l, _ := newTestLimiter(10, time.Minute)

	for i := 0; i < 10; i++ {
		res := l.Check("user-1", BucketGeneration)
		require.True(t, res.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 10-(i+1), res.Remaining)
	}

	res := l.Check("user-1", BucketGeneration)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
}

func TestWindowResets(t *testing.T) {
	l, current := newTestLimiter(10, time.Minute)

	for i := 0; i < 10; i++ {
		l.Check("user-1", BucketGeneration)
	}
	require.False(t, l.Check("user-1", BucketGeneration).Allowed)

	// Past the window the next call starts a fresh one.
	*current = current.Add(time.Minute + time.Millisecond)

	res := l.Check("user-1", BucketGeneration)
	assert.True(t, res.Allowed)
	assert.Equal(t, 9, res.Remaining)
	assert.Equal(t, current.Add(time.Minute), res.ResetAt)
}

func TestActorsAndBucketsAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)

	require.True(t, l.Check("user-1", BucketGeneration).Allowed)
	require.False(t, l.Check("user-1", BucketGeneration).Allowed)

	// Other actor, same bucket.
	assert.True(t, l.Check("user-2", BucketGeneration).Allowed)

	// Same actor, other bucket.
	assert.True(t, l.Check("user-1", BucketImage).Allowed)
}

func TestUnconfiguredBucketNotThrottled(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)

	for i := 0; i < 100; i++ {
		assert.True(t, l.Check("user-1", BucketExport).Allowed)
	}
}

func TestConcurrentChecksNeverExceedMax(t *testing.T) {
	l := New(map[Bucket]Limit{
		BucketGeneration: {MaxRequests: 10, Window: time.Minute},
	})

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Check("user-1", BucketGeneration).Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, allowed)
}
