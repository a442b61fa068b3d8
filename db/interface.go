// Package db defines the key-value storage contract used by the hub state.
// Backends live in subpackages.
package db

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Supported database backends.
const (
	TypePebble = "pebble"
	TypeBadger = "badger"
)

// ErrKeyNotFound is used to indicate that a key does not exist in the db.
var ErrKeyNotFound = fmt.Errorf("key not found")

// ErrTxnTooBig is used to indicate that a WriteTx is too big and can't include
// more writes.
var ErrTxnTooBig = fmt.Errorf("txn too big")

// ErrConflict is returned when a transaction conflicts with another one.
var ErrConflict = fmt.Errorf("txn conflict")

// Options defines generic parameters for creating a new Database.
type Options struct {
	Path string
}

// Database wraps all database operations. All methods are safe for concurrent
// use.
type Database interface {
	io.Closer

	Reader

	// WriteTx creates a new write transaction.
	WriteTx() WriteTx
}

// Reader contains the read-only database operations.
type Reader interface {
	// Get retrieves the value for the given key. If the key does not
	// exist, returns the error ErrKeyNotFound
	Get(key []byte) ([]byte, error)

	// Iterate calls callback with all key-value pairs whose key starts with
	// prefix, ordered lexicographically. The prefix is stripped from the keys
	// passed to the callback. Iteration stops when the callback returns false.
	//
	// The key and value slices are only valid during the callback.
	Iterate(prefix []byte, callback func(key, value []byte) bool) error
}

// WriteTx is a read-your-writes transaction. Nothing is visible to other
// readers until Commit.
type WriteTx interface {
	Reader

	// Set adds a key-value pair. If the key already exists, its value is
	// updated.
	Set(key []byte, value []byte) error
	// Delete deletes a key and its value.
	Delete(key []byte) error
	// Commit commits the transaction into the db.
	// Calling Commit more than once, or after Discard, is an error.
	Commit() error
	// Discard releases the transaction's resources. It can be safely called
	// after Commit or Discard, which allows deferred Discard calls.
	Discard()
}

// Has reports whether key is present.
func Has(r Reader, key []byte) (bool, error) {
	_, err := r.Get(key)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetUint64 reads a big-endian counter, returning zero if the key is missing.
func GetUint64(r Reader, key []byte) (uint64, error) {
	v, err := r.Get(key)
	if errors.Is(err, ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(v) != 8 {
		return 0, fmt.Errorf("counter %x has invalid length %d", key, len(v))
	}
	return binary.BigEndian.Uint64(v), nil
}

// SetUint64 stores a big-endian counter.
func SetUint64(tx WriteTx, key []byte, n uint64) error {
	var v [8]byte
	binary.BigEndian.PutUint64(v[:], n)
	return tx.Set(key, v[:])
}

// IncrementUint64 increments the counter at key inside tx and returns the new
// value. Atomicity comes from the enclosing transaction.
func IncrementUint64(tx WriteTx, key []byte) (uint64, error) {
	n, err := GetUint64(tx, key)
	if err != nil {
		return 0, err
	}
	if n+1 < n {
		return 0, fmt.Errorf("counter %x overflow", key)
	}
	n++
	return n, SetUint64(tx, key, n)
}

// CompareAndIncrementUint64 increments the counter at key only if it currently
// holds expected. It returns false without writing when it doesn't.
func CompareAndIncrementUint64(tx WriteTx, key []byte, expected uint64) (bool, error) {
	n, err := GetUint64(tx, key)
	if err != nil {
		return false, err
	}
	if n != expected {
		return false, nil
	}
	_, err = IncrementUint64(tx, key)
	return err == nil, err
}
