package cache

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/growth90/internal/store"
)

func openTestStore(t *testing.T, now func() time.Time) *store.Store {
	t.Helper()
	opts := []store.Option{}
	if now != nil {
		opts = append(opts, store.WithClock(now))
	}
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), opts...)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCacheSetGetWithinTTL(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := base
	now := func() time.Time { return clock }
	c := NewContentCache(openTestStore(t, now)).WithClock(now)
	ctx := context.Background()

	if err := c.Set(ctx, "k", "lesson", "v", 10*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || got != "v" {
		t.Errorf("get = (%v, %v), want (v, true)", got, ok)
	}
}

func TestCacheExpiryDeletesOnRead(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := base
	now := func() time.Time { return clock }
	st := openTestStore(t, now)
	c := NewContentCache(st).WithClock(now)
	ctx := context.Background()

	if err := c.Set(ctx, "k", "lesson", "v", 10*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}

	clock = base.Add(20 * time.Millisecond)
	_, ok, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Error("expired entry served")
	}

	rec, err := st.Get(ctx, store.ContentCache, "k")
	if err != nil {
		t.Fatalf("store get: %v", err)
	}
	if rec != nil {
		t.Error("expired entry not deleted from store on read")
	}
}

func TestCacheStoreFallbackRehydratesMemory(t *testing.T) {
	st := openTestStore(t, nil)
	ctx := context.Background()

	warm := NewContentCache(st)
	if err := warm.Set(ctx, "k", "lesson", "v", time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}

	// Fresh cache: memory tier is cold, store tier holds the entry.
	cold := NewContentCache(st)
	got, ok, err := cold.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || got != "v" {
		t.Fatalf("get = (%v, %v), want (v, true)", got, ok)
	}
	if cold.MemoryLen() != 1 {
		t.Errorf("memory entries = %d, want 1 after rehydration", cold.MemoryLen())
	}
}

func TestCacheEvictsOldestFirst(t *testing.T) {
	c := NewContentCache(openTestStore(t, nil))
	ctx := context.Background()

	for i := 0; i < MaxMemoryEntries+5; i++ {
		key := fmt.Sprintf("k%03d", i)
		if err := c.Set(ctx, key, "lesson", i+1, time.Hour); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}

	if c.MemoryLen() != MaxMemoryEntries {
		t.Errorf("memory entries = %d, want %d", c.MemoryLen(), MaxMemoryEntries)
	}

	// Evicted keys are still served from the store tier.
	got, ok, err := c.Get(ctx, "k000")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || got != float64(1) {
		t.Errorf("store-tier read = (%v, %v), want (1, true)", got, ok)
	}
}

func TestCacheRejectsEmptyValues(t *testing.T) {
	c := NewContentCache(openTestStore(t, nil))
	ctx := context.Background()

	empties := []any{
		nil,
		"",
		[]string{},
		map[string]any{},
		map[string]any{"a": "", "b": []any{}},
	}
	for i, v := range empties {
		key := fmt.Sprintf("e%d", i)
		if err := c.Set(ctx, key, "lesson", v, time.Hour); err != nil {
			t.Fatalf("set: %v", err)
		}
		if _, ok, _ := c.Get(ctx, key); ok {
			t.Errorf("empty value %d was cached: %v", i, v)
		}
	}

	if err := c.Set(ctx, "zero", "lesson", 0, time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "zero"); !ok {
		t.Error("numeric zero should be cacheable")
	}
}

func TestDurableKVRoundTrip(t *testing.T) {
	kv := NewDurableKV(openTestStore(t, nil))
	ctx := context.Background()

	if err := kv.Set(ctx, "selectedTopic", "negotiation"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := kv.Get(ctx, "selectedTopic")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || got != "negotiation" {
		t.Errorf("get = (%v, %v), want (negotiation, true)", got, ok)
	}

	if err := kv.Delete(ctx, "selectedTopic"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "selectedTopic"); ok {
		t.Error("value survived delete")
	}
}

func TestDurableKVExpiryDeletesOnRead(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := base
	now := func() time.Time { return clock }
	st := openTestStore(t, now)
	kv := NewDurableKV(st).WithClock(now)
	ctx := context.Background()

	if err := kv.SetTTL(ctx, "token", "abc", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	clock = base.Add(2 * time.Minute)
	if _, ok, _ := kv.Get(ctx, "token"); ok {
		t.Error("expired value served")
	}

	rec, _ := st.Get(ctx, store.Settings, "growth90_local_token")
	if rec != nil {
		t.Error("expired envelope not deleted")
	}
}

func TestSessionKV(t *testing.T) {
	kv := NewSessionKV()

	kv.Set("selectedDay", 12)
	got, ok := kv.Get("selectedDay")
	if !ok || got != 12 {
		t.Errorf("get = (%v, %v), want (12, true)", got, ok)
	}

	kv.Delete("selectedDay")
	if _, ok := kv.Get("selectedDay"); ok {
		t.Error("value survived delete")
	}

	kv.Set("selectedPath", "p1")
	kv.Reset()
	if _, ok := kv.Get("selectedPath"); ok {
		t.Error("value survived reset")
	}
}
