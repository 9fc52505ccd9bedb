package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := New(time.Hour, 0)
	c.Set("key", "value")

	got, ok := c.Get("key")
	if !ok {
		t.Fatal("expected to retrieve cached value")
	}
	if got != "value" {
		t.Fatalf("expected value, got %v", got)
	}
	if c.Size() != 1 {
		t.Fatalf("expected size 1, got %d", c.Size())
	}
}

func TestCacheGetAbsent(t *testing.T) {
	c := New(time.Hour, 0)
	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss for never-set key")
	}
}

func TestCacheExpiration(t *testing.T) {
	c := New(time.Hour, 0)
	c.SetTTL("key", "value", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("key"); ok {
		t.Fatal("expected entry to expire")
	}
	// lazy eviction removed the entry on read
	if c.Size() != 0 {
		t.Fatalf("expected expired entry to be removed on read, size %d", c.Size())
	}
}

func TestCacheSetOverwritesAndResetsTTL(t *testing.T) {
	c := New(time.Hour, 0)
	c.SetTTL("key", "old", 10*time.Millisecond)
	c.SetTTL("key", "new", time.Hour)
	time.Sleep(20 * time.Millisecond)

	got, ok := c.Get("key")
	if !ok || got != "new" {
		t.Fatalf("expected overwrite to reset TTL, got %v ok=%v", got, ok)
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := New(time.Hour, 0)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected deleted key to be absent")
	}

	// deleting an absent key must not panic or error
	c.Delete("never_set")

	c.Clear()
	if c.Size() != 0 {
		t.Fatalf("expected empty cache after clear, got %d", c.Size())
	}
}

func TestCacheSweepExpired(t *testing.T) {
	c := New(time.Hour, 0)
	c.SetTTL("stale1", 1, -time.Second)
	c.SetTTL("stale2", 2, -time.Second)
	c.Set("fresh", 3)

	if removed := c.SweepExpired(); removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if c.Size() != 1 {
		t.Fatalf("expected 1 entry to survive sweep, got %d", c.Size())
	}
}

func TestCacheEvictsOldestWhenFull(t *testing.T) {
	c := New(time.Hour, 10)

	for i := 0; i < 15; i++ {
		c.SetTTL(fmt.Sprintf("key%d", i), i, time.Hour)
		time.Sleep(time.Millisecond) // distinct stored-at timestamps
	}

	if c.Size() > 10 {
		t.Fatalf("expected at most 10 entries, got %d", c.Size())
	}

	for i := 0; i < 5; i++ {
		if _, ok := c.Get(fmt.Sprintf("key%d", i)); ok {
			t.Fatalf("expected oldest key%d to be evicted", i)
		}
	}
	for i := 10; i < 15; i++ {
		if _, ok := c.Get(fmt.Sprintf("key%d", i)); !ok {
			t.Fatalf("expected newest key%d to survive eviction", i)
		}
	}
}

func TestCacheStats(t *testing.T) {
	c := New(time.Hour, 0)
	c.Set("key", "value")

	c.Get("key")
	c.Get("missing")

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Fatalf("expected 1 hit and 1 miss, got %+v", stats)
	}
	if stats.Entries != 1 {
		t.Fatalf("expected 1 entry, got %d", stats.Entries)
	}
}

func TestCacheSweeperLifecycle(t *testing.T) {
	c := New(time.Hour, 0)
	c.SetTTL("stale", 1, -time.Second)

	c.StartSweeper(5 * time.Millisecond)
	c.StartSweeper(5 * time.Millisecond) // second start is a no-op

	time.Sleep(25 * time.Millisecond)
	c.StopSweeper()
	c.StopSweeper() // stop after stop is a no-op

	if c.Size() != 0 {
		t.Fatalf("expected sweeper to remove stale entry, size %d", c.Size())
	}
}
