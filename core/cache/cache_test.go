package cache

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(opts ...Option) (*Cache, *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewCache(append([]Option{WithClock(clk.Now)}, opts...)...), clk
}

func TestNewCache(t *testing.T) {
	c := NewCache()
	if c == nil {
		t.Fatal("NewCache returned nil")
	}
	if s := c.Stats(); s.MaxSize != DefaultMaxSize {
		t.Errorf("MaxSize = %d, want %d", s.MaxSize, DefaultMaxSize)
	}
}

func TestSet_Get(t *testing.T) {
	c := NewCache()
	c.Set("k", "val", 0)
	got, ok := c.Get("k")
	if !ok {
		t.Fatal("Get: want true")
	}
	if got != "val" {
		t.Errorf("Get = %v, want val", got)
	}
}

func TestGet_Missing(t *testing.T) {
	c := NewCache()
	if _, ok := c.Get("nonexistent-key-xyz"); ok {
		t.Error("Get missing key: want false")
	}
}

func TestGet_ExpiredRealClock(t *testing.T) {
	c := NewCache()
	c.Set("short", 1, 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	if v, ok := c.Get("short"); ok || v != nil {
		t.Errorf("Get after ttl = %v, %v; want nil, false", v, ok)
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be removed on read, Len = %d", c.Len())
	}
}

func TestGet_DefaultTTL(t *testing.T) {
	c, clk := newTestCache()
	c.Set("k", "v", 0)
	clk.Advance(DefaultTTL - time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry should still be live before default ttl")
	}
	clk.Advance(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("entry should expire after default ttl")
	}
}

func TestDelete(t *testing.T) {
	c := NewCache()
	c.Set("k", "x", 0)
	if !c.Delete("k") {
		t.Error("Delete existing: want true")
	}
	if c.Delete("k") {
		t.Error("Delete missing: want false")
	}
	if _, ok := c.Get("k"); ok {
		t.Error("Delete: key should be gone")
	}
}

func TestRemember(t *testing.T) {
	c := NewCache()
	calls := 0
	load := func() (interface{}, error) {
		calls++
		return []string{"a"}, nil
	}
	for i := 0; i < 3; i++ {
		if _, err := c.Remember("pages:all", time.Minute, load); err != nil {
			t.Fatalf("Remember: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("load called %d times, want 1", calls)
	}

	boom := errors.New("boom")
	if _, err := c.Remember("fails", time.Minute, func() (interface{}, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Errorf("Remember err = %v, want boom", err)
	}
	if _, ok := c.Get("fails"); ok {
		t.Error("failed load must not be cached")
	}
}

func TestDeletePattern(t *testing.T) {
	c := NewCache()
	c.Set("pages:all", 1, 0)
	c.Set("pages:slug:about", 2, 0)
	c.Set("posts:all", 3, 0)

	n, err := c.DeletePattern("^pages:")
	if err != nil {
		t.Fatalf("DeletePattern: %v", err)
	}
	if n != 2 {
		t.Errorf("DeletePattern count = %d, want 2", n)
	}
	if _, ok := c.Get("posts:all"); !ok {
		t.Error("posts:all should survive")
	}
	if _, err := c.DeletePattern("("); err == nil {
		t.Error("invalid pattern: want error")
	}
}

func TestCleanup_RemovesExpired(t *testing.T) {
	c, clk := newTestCache()
	c.Set("a", 1, time.Second)
	c.Set("b", 2, time.Hour)
	clk.Advance(2 * time.Second)

	if s := c.Stats(); s.Expired != 1 || s.Active != 1 {
		t.Errorf("Stats = %+v, want 1 expired 1 active", s)
	}
	if n := c.Cleanup(); n != 1 {
		t.Errorf("Cleanup = %d, want 1", n)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestSet_AtCapacityEvictsOldestTenPercent(t *testing.T) {
	c, clk := newTestCache(WithMaxSize(20))
	for i := 0; i < 20; i++ {
		c.Set(fmt.Sprintf("k%02d", i), i, time.Hour)
		clk.Advance(time.Millisecond)
	}
	c.Set("new", "v", time.Hour)

	// 10% of 20 = 2 oldest removed, then "new" added.
	if c.Len() != 19 {
		t.Fatalf("Len = %d, want 19", c.Len())
	}
	for _, k := range []string{"k00", "k01"} {
		if _, ok := c.Get(k); ok {
			t.Errorf("%s should have been evicted", k)
		}
	}
	for _, k := range []string{"k02", "k19", "new"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s should be present", k)
		}
	}
}

func TestSet_AtCapacityPrefersExpired(t *testing.T) {
	c, clk := newTestCache(WithMaxSize(10))
	for i := 0; i < 10; i++ {
		ttl := time.Hour
		if i == 5 {
			ttl = time.Second
		}
		c.Set(fmt.Sprintf("k%d", i), i, ttl)
	}
	clk.Advance(2 * time.Second)
	c.Set("new", "v", time.Hour)

	if c.Len() != 10 {
		t.Fatalf("Len = %d, want 10", c.Len())
	}
	if _, ok := c.Get("k0"); !ok {
		t.Error("k0 should survive when an expired entry freed space")
	}
}

func TestClear(t *testing.T) {
	c := NewCache()
	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", c.Len())
	}
}
