package store

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a storage failure.
type Kind string

const (
	// KindBackend covers transaction conflicts, I/O and driver failures.
	// The operation aborted; the caller decides whether to retry.
	KindBackend Kind = "backend"

	// KindSchema is a programmer error: an unknown store or index name.
	KindSchema Kind = "schema"

	// KindUpgrade means the on-disk version is newer than the code
	// version and cannot be reconciled.
	KindUpgrade Kind = "upgrading"

	// KindQuota means the database hit a disk-full condition.
	KindQuota Kind = "quota"
)

// StorageError is the error type returned by all Store operations.
type StorageError struct {
	Kind  Kind
	Op    string
	Store string
	Err   error
}

func (e *StorageError) Error() string {
	if e.Store != "" {
		return fmt.Sprintf("storage %s [%s %s]: %v", e.Kind, e.Op, e.Store, e.Err)
	}
	return fmt.Sprintf("storage %s [%s]: %v", e.Kind, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsKind reports whether err is a StorageError of the given kind.
func IsKind(err error, kind Kind) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Kind == kind
}

func backendErr(op, store string, err error) error {
	kind := KindBackend
	if err != nil && strings.Contains(err.Error(), "database or disk is full") {
		kind = KindQuota
	}
	return &StorageError{Kind: kind, Op: op, Store: store, Err: err}
}

func schemaErr(op, store string, err error) error {
	return &StorageError{Kind: KindSchema, Op: op, Store: store, Err: err}
}
