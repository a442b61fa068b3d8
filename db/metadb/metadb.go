// Package metadb opens a db.Database by backend name.
package metadb

import (
	"fmt"
	"os"
	"testing"

	"go.vocdoni.io/hub/db"
	"go.vocdoni.io/hub/db/badgerdb"
	"go.vocdoni.io/hub/db/pebbledb"
)

// New opens a database of the given type at dir.
func New(typ, dir string) (db.Database, error) {
	opts := db.Options{Path: dir}
	switch typ {
	case db.TypePebble:
		return pebbledb.New(opts)
	case db.TypeBadger:
		return badgerdb.New(opts)
	default:
		return nil, fmt.Errorf("invalid dbType: %q. Available types: %q %q",
			typ, db.TypePebble, db.TypeBadger)
	}
}

// ForTest returns the backend used by tests, $HUB_DB_TYPE or pebble.
func ForTest() string {
	if typ := os.Getenv("HUB_DB_TYPE"); typ != "" {
		return typ
	}
	return db.TypePebble
}

// NewTest opens a temporary database closed at the end of the test.
func NewTest(tb testing.TB) db.Database {
	database, err := New(ForTest(), tb.TempDir())
	if err != nil {
		tb.Fatal(err)
	}
	tb.Cleanup(func() { database.Close() })
	return database
}
