package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBranchCache_GetSet(t *testing.T) {
	c := NewBranchCache[[]string](time.Minute)

	c.Set("s1", "B1", "products", []string{"iPhone 15"})

	got, ok := c.Get("s1", "B1", "products")
	assert.True(t, ok)
	assert.Equal(t, []string{"iPhone 15"}, got)

	_, ok = c.Get("s2", "B1", "products")
	assert.False(t, ok, "other sessions do not share entries")

	_, ok = c.Get("s1", "B2", "products")
	assert.False(t, ok, "entry of another branch is not served")
	assert.Equal(t, 0, c.Len(), "mismatched entry is evicted")
}

func TestBranchCache_Expiry(t *testing.T) {
	c := NewBranchCache[int](time.Minute)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("s1", "B1", "count", 3)
	now = now.Add(2 * time.Minute)

	_, ok := c.Get("s1", "B1", "count")
	assert.False(t, ok)
}

func TestBranchCache_SwitchPurgesSession(t *testing.T) {
	c := NewBranchCache[int](time.Minute)
	c.Set("s1", "B1", "a", 1)
	c.Set("s1", "B1", "b", 2)
	c.Set("s2", "B1", "a", 3)

	c.OnBranchSwitch(context.Background(), "s1", "B1", "B2")

	_, ok := c.Get("s1", "B1", "a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestBranchCache_PurgeBranch(t *testing.T) {
	c := NewBranchCache[int](0)
	c.Set("s1", "B1", "a", 1)
	c.Set("s1", "B2", "b", 2)
	c.Set("s2", "B1", "a", 3)

	c.PurgeBranch("B1")

	assert.Equal(t, 1, c.Len())
	v, ok := c.Get("s1", "B2", "b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestBranchCache_SweepDropsExpiredSessions(t *testing.T) {
	c := NewBranchCache[int](time.Minute)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("abandoned", "B1", "a", 1)
	c.Set("abandoned", "B1", "b", 2)
	now = now.Add(50 * time.Second)
	c.Set("active", "B1", "a", 3)

	now = now.Add(20 * time.Second)
	assert.Equal(t, 2, c.Sweep())
	assert.Equal(t, 1, c.Sessions(), "empty bucket of the abandoned session is dropped")
	assert.Equal(t, 1, c.Len())

	now = now.Add(time.Minute)
	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 0, c.Sessions())
}

func TestBranchCache_SweepKeepsEntriesWithoutTTL(t *testing.T) {
	c := NewBranchCache[int](0)
	c.Set("s1", "B1", "a", 1)

	assert.Equal(t, 0, c.Sweep())
	assert.Equal(t, 1, c.Len())
}

func TestBranchCache_StartSweeper(t *testing.T) {
	c := NewBranchCache[int](time.Minute)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	c.Set("s1", "B1", "a", 1)
	c.now = func() time.Time { return now.Add(time.Hour) }

	stop := c.StartSweeper(context.Background(), 5*time.Millisecond)
	defer stop()

	assert.Eventually(t, func() bool { return c.Sessions() == 0 }, time.Second, 5*time.Millisecond)
}

func TestBranchCache_MismatchDropsEmptyBucket(t *testing.T) {
	c := NewBranchCache[int](time.Minute)
	c.Set("s1", "B1", "a", 1)

	_, ok := c.Get("s1", "B2", "a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Sessions())
}
