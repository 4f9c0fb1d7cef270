package cache

import (
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func newTestCache(ttl time.Duration) (*Cache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	return New(ttl, WithClock[string](clock.Now)), clock
}

func TestCache_SetAndGet(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	defer c.Close()

	c.Set("alice", "token-1")

	val, found := c.Get("alice")
	if !found {
		t.Fatal("Expected to find alice")
	}
	if val != "token-1" {
		t.Errorf("Expected token-1, got %v", val)
	}
}

func TestCache_MissReturnsZero(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	defer c.Close()

	val, found := c.Get("nobody")
	if found || val != "" {
		t.Errorf("Expected zero miss, got %q %v", val, found)
	}
}

func TestCache_Expiration(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	defer c.Close()

	c.Set("alice", "token-1")

	clock.Advance(59 * time.Second)
	if _, found := c.Get("alice"); !found {
		t.Error("Expected alice before the lifetime ends")
	}

	clock.Advance(time.Second)
	if _, found := c.Get("alice"); found {
		t.Error("Expected alice to be expired")
	}
	if c.Len() != 0 {
		t.Errorf("Expected expired entry removed on read, got %d entries", c.Len())
	}
}

func TestCache_SetRefreshesLifetime(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	defer c.Close()

	c.Set("alice", "token-1")
	clock.Advance(45 * time.Second)
	c.Set("alice", "token-2")
	clock.Advance(45 * time.Second)

	val, found := c.Get("alice")
	if !found || val != "token-2" {
		t.Errorf("Expected refreshed token-2, got %q %v", val, found)
	}
}

func TestCache_Sweep(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	defer c.Close()

	c.Set("old", "a")
	clock.Advance(30 * time.Second)
	c.Set("new", "b")
	clock.Advance(45 * time.Second)

	if n := c.Sweep(); n != 1 {
		t.Errorf("Expected 1 entry swept, got %d", n)
	}
	if _, found := c.Get("new"); !found {
		t.Error("Expected live entry to survive the sweep")
	}
}

func TestCache_Delete(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	defer c.Close()

	c.Set("alice", "token-1")
	c.Delete("alice")

	if _, found := c.Get("alice"); found {
		t.Error("Expected alice to be deleted")
	}
}

func TestCache_CloseTwice(t *testing.T) {
	c := New[int](time.Second)
	c.Close()
	c.Close()
}
