// Package storage defines the key-value contract the record store persists
// through. It mirrors the browser's localStorage: string keys, string values,
// whole-value reads and writes.
package storage

import (
	"fmt"
	"strings"

	"github.com/Makepad-fr/dashboard/internal/storage/jsonstore"
	"github.com/Makepad-fr/dashboard/internal/storage/memstore"
	"github.com/Makepad-fr/dashboard/internal/storage/sqlitestore"
)

// Storage is a string key-value store.
//
// GetItem reports ok=false for a missing key; err is reserved for backend
// failures (I/O, corrupt files, database errors).
type Storage interface {
	GetItem(key string) (value string, ok bool, err error)
	SetItem(key, value string) error
	RemoveItem(key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open returns the backend named by backend, rooted at path.
// path is ignored for the memory backend.
func Open(backend, path string) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendJSON, "":
		return jsonstore.Open(path)
	case BackendSQLite:
		return sqlitestore.Open(path)
	case BackendMemory:
		return memstore.New(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q (want json, sqlite or memory)", backend)
}

var (
	_ Storage = (*jsonstore.Store)(nil)
	_ Storage = (*sqlitestore.Store)(nil)
	_ Storage = (*memstore.Store)(nil)
)
