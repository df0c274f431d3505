// Package ratelimit implements a fixed-window request throttle keyed by
// (actor, bucket).
//
// State is per-process and never persisted: each instance bounds its own
// cost, there is no global guarantee across replicas. That is a known,
// deliberate limitation - the limiter dampens abuse, it does not promise
// exactness. There is no sliding window and no burst credit. Once a request
// is counted it stays counted even if the downstream call is later aborted;
// throttling is about call attempts, not successes.
package ratelimit

import (
	"sync"
	"time"
)

// Bucket is an operation class with its own (max, window) pair.
type Bucket string

const (
	BucketGeneration Bucket = "generation"
	BucketImage      Bucket = "image"
	BucketResearch   Bucket = "research"
	BucketExport     Bucket = "export"
)

// Limit is the static configuration of one bucket.
type Limit struct {
	MaxRequests int
	Window      time.Duration
}

// Result reports the outcome of a Check call.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

// Limiter is an injectable fixed-window limiter. Counters are shared
// process-wide but partitioned by actor+bucket; a single mutex guards the
// map, which is fine at the request rates this bounds.
type Limiter struct {
	mu      sync.Mutex
	limits  map[Bucket]Limit
	windows map[string]*window
	now     func() time.Time
}

func New(limits map[Bucket]Limit) *Limiter {
	return &Limiter{
		limits:  limits,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Check counts one request attempt for (actorID, bucket). The first request
// in a window starts the window; requests beyond the bucket max are
// rejected until ResetAt.
func (l *Limiter) Check(actorID string, bucket Bucket) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	limit, ok := l.limits[bucket]
	if !ok {
		// Unconfigured buckets are not throttled.
		return Result{Allowed: true, Remaining: -1, ResetAt: l.now()}
	}

	key := actorID + ":" + string(bucket)
	now := l.now()

	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{count: 0, resetAt: now.Add(limit.Window)}
		l.windows[key] = w
	}

	if w.count >= limit.MaxRequests {
		return Result{Allowed: false, Remaining: 0, ResetAt: w.resetAt}
	}

	w.count++
	return Result{
		Allowed:   true,
		Remaining: limit.MaxRequests - w.count,
		ResetAt:   w.resetAt,
	}
}

// Reset drops all counters. Test hook; production code has no reason to
// call it.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.windows = make(map[string]*window)
}
