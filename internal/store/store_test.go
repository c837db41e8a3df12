package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/growth90/internal/events"
)

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), opts...)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db handle")
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := Record{"id": "u1", "email": "u@x.com", "nickname": "Sam"}
	stamped, err := s.Put(ctx, UserProfiles, rec)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if stamped["createdAt"] == nil || stamped["updatedAt"] == nil {
		t.Error("expected createdAt and updatedAt stamps")
	}

	got, err := s.Get(ctx, UserProfiles, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected record")
	}
	if got["email"] != "u@x.com" {
		t.Errorf("email = %v, want u@x.com", got["email"])
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	s := openTestStore(t)
	got, err := s.Get(context.Background(), UserProfiles, "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("got = %v, want nil", got)
	}
}

func TestPutIdempotentByPrimaryKey(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := Record{"id": "u1", "email": "u@x.com"}
	for i := 0; i < 2; i++ {
		if _, err := s.Put(ctx, UserProfiles, rec); err != nil {
			t.Fatalf("put %d: %v", i, err)
		}
	}

	all, err := s.GetAll(ctx, UserProfiles, nil)
	if err != nil {
		t.Fatalf("getAll: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("records = %d, want 1", len(all))
	}
}

func TestPutPreservesCreatedAt(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := base
	s := openTestStore(t, WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	first, err := s.Put(ctx, UserProfiles, Record{"id": "u1", "email": "a@x.com"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	clock = base.Add(time.Hour)
	second, err := s.Put(ctx, UserProfiles, first)
	if err != nil {
		t.Fatalf("second put: %v", err)
	}

	if second["createdAt"] != first["createdAt"] {
		t.Errorf("createdAt changed: %v -> %v", first["createdAt"], second["createdAt"])
	}
	if second["updatedAt"] == first["updatedAt"] {
		t.Error("updatedAt did not advance")
	}
}

func TestUnknownStoreIsSchemaError(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Put(context.Background(), "bogus", Record{"id": "x"})
	if !IsKind(err, KindSchema) {
		t.Errorf("err = %v, want schema kind", err)
	}
	_, err = s.QueryItems(context.Background(), UserProfiles, Query{Index: "bogus"})
	if !IsKind(err, KindSchema) {
		t.Errorf("err = %v, want schema kind for unknown index", err)
	}
}

func TestUniqueIndexRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Put(ctx, UserProfiles, Record{"id": "u1", "email": "dup@x.com"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	_, err := s.Put(ctx, UserProfiles, Record{"id": "u2", "email": "dup@x.com"})
	if err == nil {
		t.Fatal("expected unique email violation")
	}
	if !IsKind(err, KindBackend) {
		t.Errorf("err = %v, want backend kind", err)
	}
}

func TestQueryByIndexWithRangeAndLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, p := range []Record{
		{"id": "p1", "userId": "u1", "status": "archived"},
		{"id": "p2", "userId": "u1", "status": "active"},
		{"id": "p3", "userId": "u2", "status": "active"},
		{"id": "p4", "userId": "u1", "status": "active"},
	} {
		if _, err := s.Put(ctx, LearningPaths, p); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	got, err := s.QueryItems(ctx, LearningPaths, Query{
		Index: "userId",
		Range: &Range{Only: "u1"},
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("records = %d, want 3", len(got))
	}

	limited, err := s.QueryItems(ctx, LearningPaths, Query{
		Index:     "userId",
		Range:     &Range{Only: "u1"},
		Direction: "desc",
		Limit:     2,
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limited records = %d, want 2", len(limited))
	}
}

func TestQueryTieBreakPrimaryKeyAscending(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"p3", "p1", "p2"} {
		if _, err := s.Put(ctx, LearningPaths, Record{"id": id, "status": "active"}); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	got, err := s.QueryItems(ctx, LearningPaths, Query{Index: "status"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	want := []string{"p1", "p2", "p3"}
	for i, rec := range got {
		if rec["id"] != want[i] {
			t.Errorf("record %d id = %v, want %s", i, rec["id"], want[i])
		}
	}
}

func TestIndexExcludesRecordsWithoutKey(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Put(ctx, LearningPaths, Record{"id": "p1", "status": "active"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := s.Put(ctx, LearningPaths, Record{"id": "p2"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.QueryItems(ctx, LearningPaths, Query{Index: "status"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("records = %d, want 1 (p2 has no status key)", len(got))
	}
}

func TestDeleteIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Put(ctx, UserProfiles, Record{"id": "u1", "email": "a@x.com"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := s.Delete(ctx, UserProfiles, "u1"); err != nil {
			t.Fatalf("delete %d: %v", i, err)
		}
	}
	got, _ := s.Get(ctx, UserProfiles, "u1")
	if got != nil {
		t.Error("record still present after delete")
	}
}

func TestClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if _, err := s.Put(ctx, Settings, Record{"key": id, "value": 1}); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	if err := s.Clear(ctx, Settings); err != nil {
		t.Fatalf("clear: %v", err)
	}
	all, err := s.GetAll(ctx, Settings, nil)
	if err != nil {
		t.Fatalf("getAll: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("records after clear = %d, want 0", len(all))
	}
}

func TestBatchAtomicity(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.Batch(ctx, []Op{
		{Type: OpPut, Store: UserProfiles, Record: Record{"id": "u1", "email": "a@x.com"}},
		{Type: OpPut, Store: UserProfiles, Record: Record{"email": "no-key.com"}}, // missing id
	})
	if err == nil {
		t.Fatal("expected batch failure")
	}

	all, _ := s.GetAll(ctx, UserProfiles, nil)
	if len(all) != 0 {
		t.Errorf("records = %d, want 0 (batch must abort whole)", len(all))
	}
}

func TestBatchAcrossStores(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.Batch(ctx, []Op{
		{Type: OpPut, Store: UserProfiles, Record: Record{"id": "u1", "email": "a@x.com"}},
		{Type: OpPut, Store: LearningPaths, Record: Record{"id": "p1", "userId": "u1", "status": "active"}},
		{Type: OpPut, Store: Settings, Record: Record{"key": "growth90_local_day", "value": 3}},
	})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}

	for _, tc := range []struct{ store, key string }{
		{UserProfiles, "u1"}, {LearningPaths, "p1"}, {Settings, "growth90_local_day"},
	} {
		got, err := s.Get(ctx, tc.store, tc.key)
		if err != nil || got == nil {
			t.Errorf("%s/%s missing after batch (err=%v)", tc.store, tc.key, err)
		}
	}
}

func TestExportImportRestores(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Put(ctx, UserProfiles, Record{"id": "u1", "email": "a@x.com"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := s.Put(ctx, LearningPaths, Record{"id": "p1", "userId": "u1", "status": "active"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	snap, err := s.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	for _, name := range []string{UserProfiles, LearningPaths} {
		if err := s.Clear(ctx, name); err != nil {
			t.Fatalf("clear %s: %v", name, err)
		}
	}

	if err := s.Import(ctx, snap); err != nil {
		t.Fatalf("import: %v", err)
	}

	got, err := s.Get(ctx, UserProfiles, "u1")
	if err != nil || got == nil {
		t.Fatalf("profile missing after import (err=%v)", err)
	}
	if got["email"] != "a@x.com" {
		t.Errorf("email = %v, want a@x.com", got["email"])
	}
	path, _ := s.Get(ctx, LearningPaths, "p1")
	if path == nil || path["status"] != "active" {
		t.Errorf("path not restored: %v", path)
	}
}

func TestSnapshotSerializeRoundTrip(t *testing.T) {
	snap := &Snapshot{Version: 1, Stores: map[string][]Record{
		UserProfiles: {{"id": "u1"}},
	}}
	b, err := MarshalSnapshot(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := UnmarshalSnapshot(b)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Version != 1 || len(got.Stores[UserProfiles]) != 1 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestMaintenanceSweepsExpiredCache(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := base
	s := openTestStore(t, WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	expired := Record{"id": "old", "type": "lesson", "value": "v", "expiresAt": float64(base.Add(-time.Minute).UnixMilli())}
	fresh := Record{"id": "new", "type": "lesson", "value": "v", "expiresAt": float64(base.Add(time.Hour).UnixMilli())}
	for _, rec := range []Record{expired, fresh} {
		if _, err := s.Put(ctx, ContentCache, rec); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	stats, err := s.Maintenance(ctx)
	if err != nil {
		t.Fatalf("maintenance: %v", err)
	}
	if stats.ExpiredCacheEntries != 1 {
		t.Errorf("expired = %d, want 1", stats.ExpiredCacheEntries)
	}

	if got, _ := s.Get(ctx, ContentCache, "old"); got != nil {
		t.Error("expired entry survived sweep")
	}
	if got, _ := s.Get(ctx, ContentCache, "new"); got == nil {
		t.Error("fresh entry removed by sweep")
	}
}

func TestMaintenancePrunesOldAnalytics(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := base.Add(-40 * 24 * time.Hour)
	s := openTestStore(t, WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	if err := s.AppendEvent(ctx, "u1", "old:event", nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	clock = base
	if err := s.AppendEvent(ctx, "u1", "new:event", nil); err != nil {
		t.Fatalf("append: %v", err)
	}

	stats, err := s.Maintenance(ctx)
	if err != nil {
		t.Fatalf("maintenance: %v", err)
	}
	if stats.PrunedAnalytics != 1 {
		t.Errorf("pruned = %d, want 1", stats.PrunedAnalytics)
	}

	all, _ := s.GetAll(ctx, Analytics, nil)
	if len(all) != 1 || all[0]["event"] != "new:event" {
		t.Errorf("surviving analytics = %v", all)
	}
}

func TestStorageEventsEmitted(t *testing.T) {
	bus := events.NewBus()
	var names []string
	for _, n := range []string{events.StorageItemSet, events.StorageItemDeleted, events.StorageCleared} {
		name := n
		bus.On(name, func(any) { names = append(names, name) })
	}

	s := openTestStore(t, WithBus(bus))
	ctx := context.Background()

	if _, err := s.Put(ctx, UserProfiles, Record{"id": "u1", "email": "a@x.com"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Delete(ctx, UserProfiles, "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Clear(ctx, UserProfiles); err != nil {
		t.Fatalf("clear: %v", err)
	}

	want := []string{events.StorageItemSet, events.StorageItemDeleted, events.StorageCleared}
	if len(names) != len(want) {
		t.Fatalf("events = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestOpenRejectsNewerDiskVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.DB().Exec(`UPDATE schema_meta SET version = ? WHERE id = 1`, SchemaVersion+1); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	s.Close()

	_, err = Open(path)
	if !IsKind(err, KindUpgrade) {
		t.Errorf("err = %v, want upgrade kind", err)
	}
}

func TestAutoKeyStoreAppends(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.AppendEvent(ctx, "u1", "lesson:completed", map[string]any{"day": i}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	got, err := s.QueryItems(ctx, Analytics, Query{Index: "event", Range: &Range{Only: "lesson:completed"}})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("events = %d, want 3", len(got))
	}
}
