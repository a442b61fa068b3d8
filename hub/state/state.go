// Package state persists the hub's protocol state on top of a db.Database.
// Every mutation runs inside Update, which serializes transitions and commits
// only when the callback succeeds, so a rejected operation leaves no trace.
package state

import (
	"errors"
	"fmt"

	"git.sr.ht/~sircmpwn/go-bare"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sasha-s/go-deadlock"
	"go.vocdoni.io/hub/db"
	"go.vocdoni.io/hub/db/prefixeddb"
	"go.vocdoni.io/hub/types"
)

// Key prefixes.
var (
	keyProtocol      = []byte("proto")
	keyProfileCount  = []byte("pcount")
	prefixProfile    = []byte("prof/")
	prefixHandle     = []byte("handle/")
	prefixPub        = []byte("pub/")
	prefixNonce      = []byte("nonce/")
	prefixWhitelist  = []byte("wl/")
	prefixCollection = []byte("col/")
	prefixToken      = []byte("tok/")
	prefixBalance    = []byte("bal/")
	prefixOperator   = []byte("opr/")
	prefixDelegate   = []byte("dlg/")
	prefixPower      = []byte("pow/")
	prefixSupply     = []byte("sup/")
	prefixModule     = []byte("mod/")
	prefixDeployment = []byte("dep/")
)

// Whitelist identifiers. Module kinds map onto their types.ModuleKind value.
const (
	ListProfileCreators byte = 0
)

// ListModules returns the whitelist identifier for a module kind.
func ListModules(kind types.ModuleKind) byte {
	return byte(kind)
}

func join(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	k := make([]byte, 0, n)
	for _, p := range parts {
		k = append(k, p...)
	}
	return k
}

// State is the hub's persistent state.
type State struct {
	db   db.Database
	lock deadlock.RWMutex
}

// New returns a State backed by database.
func New(database db.Database) *State {
	return &State{db: database}
}

// Close closes the underlying database.
func (s *State) Close() error {
	return s.db.Close()
}

// Update runs fn inside a write transaction. The transaction is committed if
// fn returns nil and discarded otherwise. Updates are serialized.
func (s *State) Update(fn func(tx *Tx) error) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	wtx := s.db.WriteTx()
	defer wtx.Discard()
	if err := fn(&Tx{tx: wtx}); err != nil {
		return err
	}
	if err := wtx.Commit(); err != nil {
		return fmt.Errorf("cannot commit state: %w", err)
	}
	return nil
}

// View runs fn against the committed state. Writes done by fn are dropped.
func (s *State) View(fn func(tx *Tx) error) error {
	s.lock.RLock()
	defer s.lock.RUnlock()
	wtx := s.db.WriteTx()
	defer wtx.Discard()
	return fn(&Tx{tx: wtx})
}

// Tx gives typed access to the state inside a transaction.
type Tx struct {
	tx db.WriteTx
}

// NewTx wraps a raw transaction. Used by tests and tools that manage the
// transaction lifecycle themselves.
func NewTx(wtx db.WriteTx) *Tx {
	return &Tx{tx: wtx}
}

func (t *Tx) get(key []byte, v any) (bool, error) {
	raw, err := t.tx.Get(key)
	if errors.Is(err, db.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := bare.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("cannot decode %x: %w", key, err)
	}
	return true, nil
}

func (t *Tx) set(key []byte, v any) error {
	raw, err := bare.Marshal(v)
	if err != nil {
		return fmt.Errorf("cannot encode %x: %w", key, err)
	}
	return t.tx.Set(key, raw)
}

// Protocol returns the protocol record. An uninitialized hub returns the zero
// value.
func (t *Tx) Protocol() (*Protocol, error) {
	p := &Protocol{}
	if _, err := t.get(keyProtocol, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetProtocol stores the protocol record.
func (t *Tx) SetProtocol(p *Protocol) error {
	return t.set(keyProtocol, p)
}

// ProfileCount returns the number of profiles ever created.
func (t *Tx) ProfileCount() (uint64, error) {
	return db.GetUint64(t.tx, keyProfileCount)
}

// NextProfileID increments the profile counter and returns the new id.
func (t *Tx) NextProfileID() (types.ProfileID, error) {
	n, err := db.IncrementUint64(t.tx, keyProfileCount)
	return types.ProfileID(n), err
}

// Profile returns the profile with the given id, or nil if it doesn't exist.
func (t *Tx) Profile(id types.ProfileID) (*Profile, error) {
	p := &Profile{}
	ok, err := t.get(join(prefixProfile, id.Bytes()), p)
	if err != nil || !ok {
		return nil, err
	}
	return p, nil
}

// SetProfile stores a profile.
func (t *Tx) SetProfile(p *Profile) error {
	return t.set(join(prefixProfile, types.ProfileID(p.ID).Bytes()), p)
}

// ProfileIDByHandle returns the profile owning handle, zero if none.
func (t *Tx) ProfileIDByHandle(handle string) (types.ProfileID, error) {
	n, err := db.GetUint64(t.tx, join(prefixHandle, []byte(handle)))
	return types.ProfileID(n), err
}

// SetHandle binds handle to id.
func (t *Tx) SetHandle(handle string, id types.ProfileID) error {
	return db.SetUint64(t.tx, join(prefixHandle, []byte(handle)), uint64(id))
}

// Publication returns the publication at ptr, or nil if it doesn't exist.
func (t *Tx) Publication(ptr types.PubPointer) (*Publication, error) {
	p := &Publication{}
	ok, err := t.get(join(prefixPub, ptr.ProfileID.Bytes(), ptr.PubID.Bytes()), p)
	if err != nil || !ok {
		return nil, err
	}
	return p, nil
}

// SetPublication stores a publication.
func (t *Tx) SetPublication(p *Publication) error {
	ptr := p.Pointer()
	return t.set(join(prefixPub, ptr.ProfileID.Bytes(), ptr.PubID.Bytes()), p)
}

// Nonce returns the signature nonce of addr.
func (t *Tx) Nonce(addr common.Address) (uint64, error) {
	return db.GetUint64(t.tx, join(prefixNonce, addr.Bytes()))
}

// ConsumeNonce increments the nonce of addr if it currently equals expected.
func (t *Tx) ConsumeNonce(addr common.Address, expected uint64) (bool, error) {
	return db.CompareAndIncrementUint64(t.tx, join(prefixNonce, addr.Bytes()), expected)
}

// Whitelisted reports whether addr is on the given whitelist.
func (t *Tx) Whitelisted(list byte, addr common.Address) (bool, error) {
	return db.Has(t.tx, join(prefixWhitelist, []byte{list}, addr.Bytes()))
}

// SetWhitelisted adds or removes addr from the given whitelist.
func (t *Tx) SetWhitelisted(list byte, addr common.Address, whitelisted bool) error {
	key := join(prefixWhitelist, []byte{list}, addr.Bytes())
	if whitelisted {
		return t.tx.Set(key, []byte{1})
	}
	return t.tx.Delete(key)
}

// ListWhitelisted returns the members of the given whitelist in address order.
func (t *Tx) ListWhitelisted(list byte) ([]common.Address, error) {
	var addrs []common.Address
	err := t.tx.Iterate(join(prefixWhitelist, []byte{list}), func(k, _ []byte) bool {
		addrs = append(addrs, common.BytesToAddress(k))
		return true
	})
	return addrs, err
}

// Collection returns the NFT collection at addr, or nil.
func (t *Tx) Collection(addr common.Address) (*Collection, error) {
	c := &Collection{}
	ok, err := t.get(join(prefixCollection, addr.Bytes()), c)
	if err != nil || !ok {
		return nil, err
	}
	return c, nil
}

// SetCollection stores a collection.
func (t *Tx) SetCollection(c *Collection) error {
	return t.set(join(prefixCollection, c.Address), c)
}

// NextDeployment returns a per-deployer counter used to derive fresh
// instance addresses.
func (t *Tx) NextDeployment(deployer common.Address) (uint64, error) {
	return db.IncrementUint64(t.tx, join(prefixDeployment, deployer.Bytes()))
}

// Token returns a token of collection, or nil if it doesn't exist.
func (t *Tx) Token(collection common.Address, id uint64) (*Token, error) {
	tok := &Token{}
	ok, err := t.get(join(prefixToken, collection.Bytes(), types.Uint64Bytes(id)), tok)
	if err != nil || !ok {
		return nil, err
	}
	return tok, nil
}

// SetToken stores a token.
func (t *Tx) SetToken(collection common.Address, id uint64, tok *Token) error {
	return t.set(join(prefixToken, collection.Bytes(), types.Uint64Bytes(id)), tok)
}

// DeleteToken removes a token.
func (t *Tx) DeleteToken(collection common.Address, id uint64) error {
	return t.tx.Delete(join(prefixToken, collection.Bytes(), types.Uint64Bytes(id)))
}

// Balance returns the number of tokens of collection held by owner.
func (t *Tx) Balance(collection, owner common.Address) (uint64, error) {
	return db.GetUint64(t.tx, join(prefixBalance, collection.Bytes(), owner.Bytes()))
}

// SetBalance stores the balance of owner.
func (t *Tx) SetBalance(collection, owner common.Address, n uint64) error {
	key := join(prefixBalance, collection.Bytes(), owner.Bytes())
	if n == 0 {
		return t.tx.Delete(key)
	}
	return db.SetUint64(t.tx, key, n)
}

// IsOperator reports whether operator may manage every token of owner.
func (t *Tx) IsOperator(collection, owner, operator common.Address) (bool, error) {
	return db.Has(t.tx, join(prefixOperator, collection.Bytes(), owner.Bytes(), operator.Bytes()))
}

// SetOperator grants or revokes operator rights.
func (t *Tx) SetOperator(collection, owner, operator common.Address, approved bool) error {
	key := join(prefixOperator, collection.Bytes(), owner.Bytes(), operator.Bytes())
	if approved {
		return t.tx.Set(key, []byte{1})
	}
	return t.tx.Delete(key)
}

// Delegatee returns who owner delegated its power to, zero if never set.
func (t *Tx) Delegatee(collection, owner common.Address) (common.Address, error) {
	v, err := t.tx.Get(join(prefixDelegate, collection.Bytes(), owner.Bytes()))
	if errors.Is(err, db.ErrKeyNotFound) {
		return types.ZeroAddress, nil
	}
	if err != nil {
		return types.ZeroAddress, err
	}
	return common.BytesToAddress(v), nil
}

// SetDelegatee stores the delegatee of owner.
func (t *Tx) SetDelegatee(collection, owner, delegatee common.Address) error {
	return t.tx.Set(join(prefixDelegate, collection.Bytes(), owner.Bytes()), delegatee.Bytes())
}

func (t *Tx) checkpoints(key []byte) ([]Checkpoint, error) {
	c := &checkpoints{}
	if _, err := t.get(key, c); err != nil {
		return nil, err
	}
	return c.List, nil
}

// PowerCheckpoints returns the power history of user.
func (t *Tx) PowerCheckpoints(collection, user common.Address) ([]Checkpoint, error) {
	return t.checkpoints(join(prefixPower, collection.Bytes(), user.Bytes()))
}

// SetPowerCheckpoints stores the power history of user.
func (t *Tx) SetPowerCheckpoints(collection, user common.Address, list []Checkpoint) error {
	return t.set(join(prefixPower, collection.Bytes(), user.Bytes()), &checkpoints{List: list})
}

// SupplyCheckpoints returns the delegated supply history of collection.
func (t *Tx) SupplyCheckpoints(collection common.Address) ([]Checkpoint, error) {
	return t.checkpoints(join(prefixSupply, collection.Bytes()))
}

// SetSupplyCheckpoints stores the delegated supply history of collection.
func (t *Tx) SetSupplyCheckpoints(collection common.Address, list []Checkpoint) error {
	return t.set(join(prefixSupply, collection.Bytes()), &checkpoints{List: list})
}

// ModuleStore returns a transaction scoped to the private storage of module.
// Writes are committed or discarded together with the enclosing Update.
func (t *Tx) ModuleStore(module common.Address) db.WriteTx {
	return &scopedTx{prefixeddb.NewPrefixedWriteTx(t.tx, join(prefixModule, module.Bytes(), []byte{'/'}))}
}

// ErrScopedCommit is returned when a module tries to commit its scoped store.
var ErrScopedCommit = errors.New("scoped store is committed by the hub")

// scopedTx leaves the lifecycle of the parent transaction to Update.
type scopedTx struct {
	*prefixeddb.PrefixedWriteTx
}

func (*scopedTx) Commit() error { return ErrScopedCommit }

func (*scopedTx) Discard() {}
