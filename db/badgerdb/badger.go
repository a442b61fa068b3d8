package badgerdb

import (
	"errors"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"go.vocdoni.io/hub/db"
)

// MemTableSize defines the BadgerDB maximum size in bytes for memtable table.
// Hub transitions are small, the default 64MB is plenty.
const MemTableSize = 64 << 20

// WriteTx implements the interface db.WriteTx
type WriteTx struct {
	tx *badger.Txn
}

// check that WriteTx implements the db.WriteTx interface
var _ db.WriteTx = (*WriteTx)(nil)

// Get implements the db.WriteTx.Get interface method
func (tx WriteTx) Get(k []byte) ([]byte, error) {
	item, err := tx.tx.Get(k)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, db.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

// Iterate implements the db.WriteTx.Iterate interface method
func (tx WriteTx) Iterate(prefix []byte, callback func(k, v []byte) bool) error {
	return iterate(tx.tx, prefix, callback)
}

// Set implements the db.WriteTx.Set interface method
func (tx WriteTx) Set(k, v []byte) error {
	return mapErr(tx.tx.Set(k, v))
}

// Delete implements the db.WriteTx.Delete interface method
func (tx WriteTx) Delete(k []byte) error {
	return mapErr(tx.tx.Delete(k))
}

// Commit implements the db.WriteTx.Commit interface method
func (tx WriteTx) Commit() error {
	// badger's Txn.Commit does not discard when there are no pending
	// writes, so always discard.
	defer tx.tx.Discard()
	return mapErr(tx.tx.Commit())
}

// Discard implements the db.WriteTx.Discard interface method
func (tx WriteTx) Discard() {
	tx.tx.Discard()
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, badger.ErrTxnTooBig):
		return db.ErrTxnTooBig
	case errors.Is(err, badger.ErrConflict):
		return db.ErrConflict
	default:
		return err
	}
}

func iterate(txn *badger.Txn, prefix []byte, callback func(k, v []byte) bool) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		stop := false
		err := item.Value(func(v []byte) error {
			stop = !callback(item.Key()[len(prefix):], v)
			return nil
		})
		if err != nil {
			return err
		}
		if stop {
			break
		}
	}
	return nil
}

// BadgerDB implements db.Database interface
type BadgerDB struct {
	db *badger.DB

	closeOnce sync.Once
	closeErr  error
}

// check that BadgerDB implements the db.Database interface
var _ db.Database = (*BadgerDB)(nil)

// New returns a BadgerDB using the given Options, which implements the
// db.Database interface
func New(opts db.Options) (*BadgerDB, error) {
	if err := os.MkdirAll(opts.Path, os.ModePerm); err != nil {
		return nil, err
	}
	badgerOpts := badger.DefaultOptions(opts.Path).
		WithLogger(nil).
		WithSyncWrites(true).
		WithNumMemtables(1)
	badgerOpts.MemTableSize = MemTableSize
	bdb, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}
	return &BadgerDB{db: bdb}, nil
}

// Get implements the db.Database.Get interface method
func (d *BadgerDB) Get(k []byte) ([]byte, error) {
	var v []byte
	err := d.db.View(func(txn *badger.Txn) error {
		var err error
		v, err = WriteTx{tx: txn}.Get(k)
		return err
	})
	return v, err
}

// Iterate implements the db.Database.Iterate interface method
func (d *BadgerDB) Iterate(prefix []byte, callback func(k, v []byte) bool) error {
	return d.db.View(func(txn *badger.Txn) error {
		return iterate(txn, prefix, callback)
	})
}

// WriteTx returns a db.WriteTx
func (d *BadgerDB) WriteTx() db.WriteTx {
	return WriteTx{tx: d.db.NewTransaction(true)}
}

// Close closes the BadgerDB. Further calls return the result of the first.
func (d *BadgerDB) Close() error {
	d.closeOnce.Do(func() { d.closeErr = d.db.Close() })
	return d.closeErr
}
