// Package dbtest holds a shared test suite that every db.Database backend
// must pass.
package dbtest

import (
	"bytes"
	"strconv"
	"testing"

	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/hub/db"
)

// TestWriteTx checks read-your-writes, commit visibility and discard.
func TestWriteTx(t *testing.T, database db.Database) {
	wTx := database.WriteTx()

	_, err := wTx.Get([]byte("a"))
	qt.Assert(t, err, qt.ErrorIs, db.ErrKeyNotFound)

	qt.Assert(t, wTx.Set([]byte("a"), []byte("b")), qt.IsNil)

	v, err := wTx.Get([]byte("a"))
	qt.Assert(t, err, qt.IsNil)
	if !bytes.Equal(v, []byte("b")) {
		t.Errorf("expected v (%v) to be equal to %v", v, []byte("b"))
	}

	// not visible outside the tx until committed
	_, err = database.Get([]byte("a"))
	qt.Assert(t, err, qt.ErrorIs, db.ErrKeyNotFound)

	qt.Assert(t, wTx.Commit(), qt.IsNil)
	// Discard after commit should not give any problem
	wTx.Discard()

	v, err = database.Get([]byte("a"))
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, v, qt.DeepEquals, []byte("b"))

	// discarded writes never land
	wTx = database.WriteTx()
	qt.Assert(t, wTx.Set([]byte("c"), []byte("d")), qt.IsNil)
	qt.Assert(t, wTx.Delete([]byte("a")), qt.IsNil)
	wTx.Discard()

	_, err = database.Get([]byte("c"))
	qt.Assert(t, err, qt.ErrorIs, db.ErrKeyNotFound)
	v, err = database.Get([]byte("a"))
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, v, qt.DeepEquals, []byte("b"))
}

// TestIterate checks prefix iteration on the database and inside a WriteTx.
func TestIterate(t *testing.T, d db.Database) {
	prefix0 := []byte("a")
	prefix0NumKeys := 20
	prefix1 := []byte("b")
	prefix1NumKeys := 30

	wTx := d.WriteTx()
	for i := 0; i < prefix0NumKeys; i++ {
		qt.Assert(t, wTx.Set(append([]byte("a"), []byte(strconv.Itoa(i))...), []byte(strconv.Itoa(i))), qt.IsNil)
	}
	for i := 0; i < prefix1NumKeys; i++ {
		qt.Assert(t, wTx.Set(append([]byte("b"), []byte(strconv.Itoa(i))...), []byte(strconv.Itoa(i))), qt.IsNil)
	}
	qt.Assert(t, wTx.Commit(), qt.IsNil)

	count := func(r db.Reader, prefix []byte) int {
		n := 0
		err := r.Iterate(prefix, func(k, v []byte) bool {
			// keys are returned without the prefix
			qt.Assert(t, string(k), qt.Equals, string(v))
			n++
			return true
		})
		qt.Assert(t, err, qt.IsNil)
		return n
	}
	qt.Assert(t, count(d, prefix0), qt.Equals, prefix0NumKeys)
	qt.Assert(t, count(d, prefix1), qt.Equals, prefix1NumKeys)

	wTx = d.WriteTx()
	defer wTx.Discard()
	qt.Assert(t, wTx.Set([]byte("a99"), []byte("99")), qt.IsNil)
	qt.Assert(t, count(wTx, prefix0), qt.Equals, prefix0NumKeys+1)

	// early stop
	seen := 0
	err := d.Iterate(prefix1, func(k, v []byte) bool {
		seen++
		return seen < 5
	})
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, seen, qt.Equals, 5)
}

// TestCounters checks the counter helpers on top of a backend.
func TestCounters(t *testing.T, d db.Database) {
	key := []byte("nonce")
	wTx := d.WriteTx()
	n, err := db.GetUint64(wTx, key)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, n, qt.Equals, uint64(0))

	ok, err := db.CompareAndIncrementUint64(wTx, key, 1)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, ok, qt.IsFalse)

	ok, err = db.CompareAndIncrementUint64(wTx, key, 0)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, ok, qt.IsTrue)

	n, err = db.IncrementUint64(wTx, key)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, n, qt.Equals, uint64(2))
	qt.Assert(t, wTx.Commit(), qt.IsNil)

	n, err = db.GetUint64(d, key)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, n, qt.Equals, uint64(2))
}

// TestClose checks a database can be closed more than once, as happens when
// both a test cleanup and the code under test own it.
func TestClose(t *testing.T, d db.Database) {
	wTx := d.WriteTx()
	qt.Assert(t, wTx.Set([]byte("k"), []byte("v")), qt.IsNil)
	qt.Assert(t, wTx.Commit(), qt.IsNil)

	qt.Assert(t, d.Close(), qt.IsNil)
	qt.Assert(t, d.Close(), qt.IsNil)
}
