package cache

import (
	"context"
	"sync"
	"time"
)

type entry[T any] struct {
	branchID  string
	value     T
	expiresAt time.Time
}

// BranchCache holds per-session values that belong to one branch. An entry is
// only served while the session still reads the branch it was stored for,
// and a session's entries are dropped whenever its active branch changes.
type BranchCache[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]map[string]entry[T] // sessionID -> key -> entry
}

func NewBranchCache[T any](ttl time.Duration) *BranchCache[T] {
	return &BranchCache[T]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]map[string]entry[T]),
	}
}

func (c *BranchCache[T]) Get(sessionID, branchID, key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	e, ok := c.entries[sessionID][key]
	if !ok {
		return zero, false
	}
	if e.branchID != branchID || (c.ttl > 0 && c.now().After(e.expiresAt)) {
		delete(c.entries[sessionID], key)
		if len(c.entries[sessionID]) == 0 {
			delete(c.entries, sessionID)
		}
		return zero, false
	}
	return e.value, true
}

func (c *BranchCache[T]) Set(sessionID, branchID, key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bucket, ok := c.entries[sessionID]
	if !ok {
		bucket = make(map[string]entry[T])
		c.entries[sessionID] = bucket
	}
	bucket[key] = entry[T]{
		branchID:  branchID,
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

// PurgeSession drops everything cached for sessionID.
func (c *BranchCache[T]) PurgeSession(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, sessionID)
}

// PurgeBranch drops every entry stored for branchID, across sessions.
func (c *BranchCache[T]) PurgeBranch(branchID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for sessionID, bucket := range c.entries {
		for key, e := range bucket {
			if e.branchID == branchID {
				delete(bucket, key)
			}
		}
		if len(bucket) == 0 {
			delete(c.entries, sessionID)
		}
	}
}

// OnBranchSwitch matches branchctx.SwitchListener.
func (c *BranchCache[T]) OnBranchSwitch(_ context.Context, sessionID, _, _ string) {
	c.PurgeSession(sessionID)
}

// Sweep drops expired entries and empty session buckets. It returns the
// number of entries removed.
func (c *BranchCache[T]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.now()
	for sessionID, bucket := range c.entries {
		for key, e := range bucket {
			if c.ttl > 0 && now.After(e.expiresAt) {
				delete(bucket, key)
				removed++
			}
		}
		if len(bucket) == 0 {
			delete(c.entries, sessionID)
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval until the returned stop func is
// called or ctx is done.
func (c *BranchCache[T]) StartSweeper(ctx context.Context, interval time.Duration) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Sweep()
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// Sessions returns the number of sessions holding at least one entry.
func (c *BranchCache[T]) Sessions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *BranchCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, bucket := range c.entries {
		n += len(bucket)
	}
	return n
}
