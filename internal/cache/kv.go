package cache

import (
	"context"
	"sync"
	"time"

	"github.com/abhisek/growth90/internal/store"
)

// Key namespaces. Durable keys live in the settings store; session keys
// are process-local and die with the session.
const (
	localPrefix   = "growth90_local_"
	sessionPrefix = "growth90_session_"
)

// DurableKV is the namespaced durable key-value helper over the
// settings store. Values are envelopes with a write timestamp and an
// optional expiry.
type DurableKV struct {
	store *store.Store
	now   func() time.Time
}

// NewDurableKV creates a DurableKV over the given store.
func NewDurableKV(st *store.Store) *DurableKV {
	return &DurableKV{store: st, now: time.Now}
}

// WithClock overrides the clock. Used in tests.
func (kv *DurableKV) WithClock(now func() time.Time) *DurableKV {
	kv.now = now
	return kv
}

// Set writes value under key with no expiry.
func (kv *DurableKV) Set(ctx context.Context, key string, value any) error {
	return kv.put(ctx, key, value, 0)
}

// SetTTL writes value under key, expiring after ttl.
func (kv *DurableKV) SetTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	return kv.put(ctx, key, value, ttl)
}

func (kv *DurableKV) put(ctx context.Context, key string, value any, ttl time.Duration) error {
	rec := store.Record{
		"key":       localPrefix + key,
		"value":     value,
		"timestamp": kv.now().UTC().Format(time.RFC3339),
	}
	if ttl > 0 {
		rec["expiresAt"] = float64(kv.now().Add(ttl).UnixMilli())
	}
	_, err := kv.store.Put(ctx, store.Settings, rec)
	return err
}

// Get returns the stored value, or (nil, false) when the key is absent
// or expired. An expired entry is deleted on read.
func (kv *DurableKV) Get(ctx context.Context, key string) (any, bool, error) {
	rec, err := kv.store.Get(ctx, store.Settings, localPrefix+key)
	if err != nil {
		return nil, false, err
	}
	if rec == nil {
		return nil, false, nil
	}

	if millis, ok := rec["expiresAt"].(float64); ok {
		if !kv.now().Before(time.UnixMilli(int64(millis))) {
			if err := kv.store.Delete(ctx, store.Settings, localPrefix+key); err != nil {
				return nil, false, err
			}
			return nil, false, nil
		}
	}
	return rec["value"], true, nil
}

// Delete removes key. Missing keys are a no-op.
func (kv *DurableKV) Delete(ctx context.Context, key string) error {
	return kv.store.Delete(ctx, store.Settings, localPrefix+key)
}

// SessionKV holds transient per-session state: the selected day, the
// selected path, the milestone announcement guard. It is process-local
// and cleared on session end.
type SessionKV struct {
	mu     sync.Mutex
	values map[string]any
}

// NewSessionKV creates an empty SessionKV.
func NewSessionKV() *SessionKV {
	return &SessionKV{values: make(map[string]any)}
}

// Set stores value under key for the current session.
func (kv *SessionKV) Set(key string, value any) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.values[sessionPrefix+key] = value
}

// Get returns the session value for key.
func (kv *SessionKV) Get(key string) (any, bool) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	v, ok := kv.values[sessionPrefix+key]
	return v, ok
}

// Delete removes key from the session.
func (kv *SessionKV) Delete(key string) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	delete(kv.values, sessionPrefix+key)
}

// Reset clears all session state.
func (kv *SessionKV) Reset() {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.values = make(map[string]any)
}
