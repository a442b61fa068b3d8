package prefixeddb

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/hub/db"
	"go.vocdoni.io/hub/db/internal/dbtest"
	"go.vocdoni.io/hub/db/pebbledb"
)

func TestPrefixed(t *testing.T) {
	database, err := pebbledb.New(db.Options{Path: t.TempDir()})
	qt.Assert(t, err, qt.IsNil)
	defer database.Close()

	db1 := NewPrefixedDatabase(database, []byte("one"))
	db2 := NewPrefixedDatabase(database, []byte("two"))

	wTx := db1.WriteTx()
	qt.Assert(t, wTx.Set([]byte("a"), []byte("1")), qt.IsNil)
	qt.Assert(t, wTx.Set([]byte("b"), []byte("2")), qt.IsNil)
	qt.Assert(t, wTx.Commit(), qt.IsNil)

	// nested write tx joins the prefixes
	wTx = NewPrefixedWriteTx(db2.WriteTx(), []byte("/x/"))
	qt.Assert(t, wTx.Set([]byte("c"), []byte("3")), qt.IsNil)
	qt.Assert(t, wTx.Commit(), qt.IsNil)

	v, err := database.Get([]byte("onea"))
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, v, qt.DeepEquals, []byte("1"))

	v, err = database.Get([]byte("two/x/c"))
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, v, qt.DeepEquals, []byte("3"))

	_, err = db2.Get([]byte("a"))
	qt.Assert(t, err, qt.ErrorIs, db.ErrKeyNotFound)

	keys := []string{}
	err = db1.Iterate(nil, func(k, _ []byte) bool {
		keys = append(keys, string(k))
		return true
	})
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, keys, qt.DeepEquals, []string{"a", "b"})
}

func TestPrefixedSuite(t *testing.T) {
	database, err := pebbledb.New(db.Options{Path: t.TempDir()})
	qt.Assert(t, err, qt.IsNil)
	defer database.Close()

	dbtest.TestWriteTx(t, NewPrefixedDatabase(database, []byte("p/")))
	dbtest.TestIterate(t, NewPrefixedDatabase(database, []byte("q/")))
}
