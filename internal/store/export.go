package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Snapshot is a whole-database export: store name to records in
// insertion order.
type Snapshot struct {
	Version int                 `json:"version"`
	Stores  map[string][]Record `json:"stores"`
}

// Export captures every store in one snapshot.
func (s *Store) Export(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{
		Version: SchemaVersion,
		Stores:  make(map[string][]Record),
	}
	for _, def := range Schema() {
		recs, err := s.GetAll(ctx, def.Name, nil)
		if err != nil {
			return nil, err
		}
		snap.Stores[def.Name] = recs
	}
	return snap, nil
}

// Import restores a snapshot as one batch of puts. Existing records with
// matching keys are overwritten; nothing is cleared first.
func (s *Store) Import(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return schemaErr("import", "", fmt.Errorf("nil snapshot"))
	}
	if snap.Version > SchemaVersion {
		return &StorageError{
			Kind: KindUpgrade,
			Op:   "import",
			Err:  fmt.Errorf("snapshot version %d is newer than code version %d", snap.Version, SchemaVersion),
		}
	}

	var ops []Op
	for name, recs := range snap.Stores {
		if _, ok := s.defs[name]; !ok {
			return schemaErr("import", name, fmt.Errorf("unknown store"))
		}
		for _, rec := range recs {
			ops = append(ops, Op{Type: OpPut, Store: name, Record: rec})
		}
	}
	return s.Batch(ctx, ops)
}

// MarshalSnapshot serializes a snapshot for file export.
func MarshalSnapshot(snap *Snapshot) ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}

// UnmarshalSnapshot parses a serialized snapshot.
func UnmarshalSnapshot(b []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &snap, nil
}
