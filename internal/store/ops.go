package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abhisek/growth90/internal/events"
)

// Range bounds an index scan. Only takes precedence over Lower/Upper.
type Range struct {
	Only      any
	Lower     any
	Upper     any
	LowerOpen bool
	UpperOpen bool
}

// Query configures GetAll and QueryItems.
type Query struct {
	Index     string // secondary index name; empty scans the primary key
	Range     *Range
	Direction string // "asc" (default) or "desc"
	Limit     int    // 0 = unlimited
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Put upserts a record by its primary key. It stamps createdAt when
// absent and always stamps updatedAt. Returns the stamped record.
func (s *Store) Put(ctx context.Context, store string, rec Record) (Record, error) {
	def, ok := s.defs[store]
	if !ok {
		return nil, schemaErr("put", store, fmt.Errorf("unknown store"))
	}

	stamped, err := s.putOne(ctx, s.db, def, rec)
	if err != nil {
		return nil, err
	}

	s.emit(events.StorageItemSet, ItemEvent{Store: store, Key: recordKey(def, stamped)})
	return stamped, nil
}

// ItemEvent is the payload of storage:item:set and storage:item:deleted.
type ItemEvent struct {
	Store string
	Key   string
}

func recordKey(def StoreDef, rec Record) string {
	if def.AutoKey {
		return ""
	}
	k, _ := extractPath(rec, def.KeyPath).(string)
	return k
}

func (s *Store) putOne(ctx context.Context, q execer, def StoreDef, rec Record) (Record, error) {
	stamped := make(Record, len(rec)+2)
	for k, v := range rec {
		stamped[k] = v
	}
	now := s.now().UTC().Format(time.RFC3339)
	if _, ok := stamped["createdAt"]; !ok {
		stamped["createdAt"] = now
	}
	stamped["updatedAt"] = now

	data, err := json.Marshal(stamped)
	if err != nil {
		return nil, backendErr("put", def.Name, err)
	}

	cols := `data`
	placeholders := `?`
	args := []any{string(data)}
	for _, idx := range def.Indices {
		cols += fmt.Sprintf(`, %q`, indexColumn(idx.Name))
		placeholders += `, ?`
		args = append(args, indexValue(extractPath(stamped, idx.KeyPath)))
	}

	var stmt string
	if def.AutoKey {
		stmt = fmt.Sprintf(`INSERT INTO %q (%s) VALUES (%s)`, def.Name, cols, placeholders)
	} else {
		key := extractPath(stamped, def.KeyPath)
		ks, ok := key.(string)
		if !ok || ks == "" {
			return nil, schemaErr("put", def.Name, fmt.Errorf("record missing key path %q", def.KeyPath))
		}
		updates := `data = excluded.data`
		for _, idx := range def.Indices {
			col := indexColumn(idx.Name)
			updates += fmt.Sprintf(`, %q = excluded.%q`, col, col)
		}
		stmt = fmt.Sprintf(`INSERT INTO %q (k, %s) VALUES (?, %s)
			ON CONFLICT(k) DO UPDATE SET %s`, def.Name, cols, placeholders, updates)
		args = append([]any{ks}, args...)
	}

	if _, err := q.ExecContext(ctx, stmt, args...); err != nil {
		return nil, backendErr("put", def.Name, err)
	}
	return stamped, nil
}

// Get returns the record with the given primary key, or nil when absent.
// "Not found" is not an error.
func (s *Store) Get(ctx context.Context, store, key string) (Record, error) {
	def, ok := s.defs[store]
	if !ok {
		return nil, schemaErr("get", store, fmt.Errorf("unknown store"))
	}

	var data string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT data FROM %q WHERE k = ?`, def.Name), key,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, backendErr("get", store, err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, backendErr("get", store, err)
	}
	return rec, nil
}

// GetAll returns all records: insertion order for the base store, index
// order for an index lookup.
func (s *Store) GetAll(ctx context.Context, store string, q *Query) ([]Record, error) {
	if q == nil {
		q = &Query{}
	}
	return s.scan(ctx, "getAll", store, *q, false)
}

// QueryItems performs a cursor-style range scan: ordered by the
// (indexed) key and Direction, ties broken by primary key ascending,
// at most Limit records.
func (s *Store) QueryItems(ctx context.Context, store string, q Query) ([]Record, error) {
	return s.scan(ctx, "query", store, q, true)
}

func (s *Store) scan(ctx context.Context, op, store string, q Query, ordered bool) ([]Record, error) {
	def, ok := s.defs[store]
	if !ok {
		return nil, schemaErr(op, store, fmt.Errorf("unknown store"))
	}

	col := ""
	if q.Index != "" {
		found := false
		for _, idx := range def.Indices {
			if idx.Name == q.Index {
				col = indexColumn(idx.Name)
				found = true
				break
			}
		}
		if !found {
			return nil, schemaErr(op, store, fmt.Errorf("unknown index %q", q.Index))
		}
	}

	stmt := fmt.Sprintf(`SELECT data FROM %q`, def.Name)
	var where []string
	var args []any

	if col != "" {
		// Records without an index key are absent from the index.
		where = append(where, fmt.Sprintf(`%q IS NOT NULL`, col))
	}

	rangeCol := col
	if rangeCol == "" {
		rangeCol = "k"
	}
	if r := q.Range; r != nil {
		switch {
		case r.Only != nil:
			where = append(where, fmt.Sprintf(`%q = ?`, rangeCol))
			args = append(args, indexValue(r.Only))
		default:
			if r.Lower != nil {
				cmp := ">="
				if r.LowerOpen {
					cmp = ">"
				}
				where = append(where, fmt.Sprintf(`%q %s ?`, rangeCol, cmp))
				args = append(args, indexValue(r.Lower))
			}
			if r.Upper != nil {
				cmp := "<="
				if r.UpperOpen {
					cmp = "<"
				}
				where = append(where, fmt.Sprintf(`%q %s ?`, rangeCol, cmp))
				args = append(args, indexValue(r.Upper))
			}
		}
	}

	for i, w := range where {
		if i == 0 {
			stmt += " WHERE " + w
		} else {
			stmt += " AND " + w
		}
	}

	switch {
	case ordered:
		dir := "ASC"
		if q.Direction == "desc" {
			dir = "DESC"
		}
		stmt += fmt.Sprintf(` ORDER BY %q %s, k ASC`, rangeCol, dir)
	case col != "":
		stmt += fmt.Sprintf(` ORDER BY %q ASC, k ASC`, col)
	default:
		stmt += ` ORDER BY rowid ASC`
	}

	if ordered && q.Limit > 0 {
		stmt += fmt.Sprintf(` LIMIT %d`, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, backendErr(op, store, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, backendErr(op, store, err)
		}
		var rec Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, backendErr(op, store, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, backendErr(op, store, err)
	}
	return out, nil
}

// Delete removes a record by primary key. Removing a missing key is a no-op.
func (s *Store) Delete(ctx context.Context, store, key string) error {
	def, ok := s.defs[store]
	if !ok {
		return schemaErr("delete", store, fmt.Errorf("unknown store"))
	}

	if _, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %q WHERE k = ?`, def.Name), key,
	); err != nil {
		return backendErr("delete", store, err)
	}

	s.emit(events.StorageItemDeleted, ItemEvent{Store: store, Key: key})
	return nil
}

// Clear drops all records in one store.
func (s *Store) Clear(ctx context.Context, store string) error {
	def, ok := s.defs[store]
	if !ok {
		return schemaErr("clear", store, fmt.Errorf("unknown store"))
	}

	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %q`, def.Name)); err != nil {
		return backendErr("clear", store, err)
	}

	s.emit(events.StorageCleared, ItemEvent{Store: store})
	return nil
}

// OpType selects the kind of a batch operation.
type OpType string

const (
	OpPut    OpType = "put"
	OpDelete OpType = "delete"
	OpClear  OpType = "clear"
)

// Op is a single operation inside a Batch.
type Op struct {
	Type   OpType
	Store  string
	Record Record // for OpPut
	Key    string // for OpDelete
}

// Batch applies all operations in one transaction. Partial failure
// aborts the whole batch.
func (s *Store) Batch(ctx context.Context, ops []Op) error {
	for _, op := range ops {
		if _, ok := s.defs[op.Store]; !ok {
			return schemaErr("batch", op.Store, fmt.Errorf("unknown store"))
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return backendErr("batch", "", err)
	}
	defer tx.Rollback()

	for _, op := range ops {
		def := s.defs[op.Store]
		switch op.Type {
		case OpPut:
			if _, err := s.putOne(ctx, tx, def, op.Record); err != nil {
				return err
			}
		case OpDelete:
			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf(`DELETE FROM %q WHERE k = ?`, def.Name), op.Key,
			); err != nil {
				return backendErr("batch", op.Store, err)
			}
		case OpClear:
			if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %q`, def.Name)); err != nil {
				return backendErr("batch", op.Store, err)
			}
		default:
			return schemaErr("batch", op.Store, fmt.Errorf("unknown op type %q", op.Type))
		}
	}

	if err := tx.Commit(); err != nil {
		return backendErr("batch", "", err)
	}

	// Events fire only once the whole batch is durable.
	for _, op := range ops {
		def := s.defs[op.Store]
		switch op.Type {
		case OpPut:
			s.emit(events.StorageItemSet, ItemEvent{Store: op.Store, Key: recordKey(def, op.Record)})
		case OpDelete:
			s.emit(events.StorageItemDeleted, ItemEvent{Store: op.Store, Key: op.Key})
		case OpClear:
			s.emit(events.StorageCleared, ItemEvent{Store: op.Store})
		}
	}
	return nil
}

// AppendEvent appends an analytics event record. Used as the engines'
// durable event log.
func (s *Store) AppendEvent(ctx context.Context, userID, event string, data map[string]any) error {
	rec := Record{
		"userId":    userID,
		"event":     event,
		"timestamp": s.now().UTC().Format(time.RFC3339),
	}
	if data != nil {
		rec["data"] = data
	}
	_, err := s.Put(ctx, Analytics, rec)
	return err
}
