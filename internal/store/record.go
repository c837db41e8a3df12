package store

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Record is a stored object: a JSON document addressed by its primary key.
type Record map[string]any

// ToRecord converts any JSON-serializable value to a Record.
func ToRecord(v any) (Record, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("record is not an object: %w", err)
	}
	return rec, nil
}

// FromRecord decodes a Record into a typed value.
func FromRecord(rec Record, out any) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}

// extractPath resolves a dot-separated key path in a record.
// Returns nil when any segment is missing.
func extractPath(rec Record, path string) any {
	var cur any = map[string]any(rec)
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return cur
}

// indexValue converts an extracted value to a form the SQL driver accepts
// for an index column. Unsupported shapes index as NULL.
func indexValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return x
	case float64:
		return x
	case bool:
		if x {
			return int64(1)
		}
		return int64(0)
	case int:
		return int64(x)
	case int64:
		return x
	default:
		return nil
	}
}
