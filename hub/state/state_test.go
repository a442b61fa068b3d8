package state

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/hub/db/metadb"
	"go.vocdoni.io/hub/types"
)

func TestUpdateRollback(t *testing.T) {
	c := qt.New(t)
	s := New(metadb.NewTest(t))

	errBoom := errors.New("boom")
	err := s.Update(func(tx *Tx) error {
		id, err := tx.NextProfileID()
		c.Assert(err, qt.IsNil)
		c.Assert(tx.SetProfile(&Profile{ID: uint64(id), Handle: "alice"}), qt.IsNil)
		c.Assert(tx.SetHandle("alice", id), qt.IsNil)
		return errBoom
	})
	c.Assert(err, qt.ErrorIs, errBoom)

	err = s.View(func(tx *Tx) error {
		n, err := tx.ProfileCount()
		c.Assert(err, qt.IsNil)
		c.Assert(n, qt.Equals, uint64(0))
		p, err := tx.Profile(1)
		c.Assert(err, qt.IsNil)
		c.Assert(p, qt.IsNil)
		id, err := tx.ProfileIDByHandle("alice")
		c.Assert(err, qt.IsNil)
		c.Assert(id, qt.Equals, types.ProfileID(0))
		return nil
	})
	c.Assert(err, qt.IsNil)
}

func TestProfilesAndPublications(t *testing.T) {
	c := qt.New(t)
	s := New(metadb.NewTest(t))
	disp := common.HexToAddress("0x1234")

	err := s.Update(func(tx *Tx) error {
		id, err := tx.NextProfileID()
		c.Assert(err, qt.IsNil)
		c.Assert(id, qt.Equals, types.ProfileID(1))
		p := &Profile{ID: uint64(id), Handle: "alice", PubCount: 1}
		p.SetDispatcherAddr(disp)
		c.Assert(tx.SetProfile(p), qt.IsNil)
		c.Assert(tx.SetHandle("alice", id), qt.IsNil)
		pub := &Publication{ProfileID: 1, PubID: 1, Kind: uint8(types.PubKindPost), ContentURI: "ipfs://x"}
		return tx.SetPublication(pub)
	})
	c.Assert(err, qt.IsNil)

	err = s.View(func(tx *Tx) error {
		p, err := tx.Profile(1)
		c.Assert(err, qt.IsNil)
		c.Assert(p.Handle, qt.Equals, "alice")
		c.Assert(p.DispatcherAddr(), qt.Equals, disp)
		c.Assert(p.FollowModuleAddr(), qt.Equals, types.ZeroAddress)
		id, err := tx.ProfileIDByHandle("alice")
		c.Assert(err, qt.IsNil)
		c.Assert(id, qt.Equals, types.ProfileID(1))
		pub, err := tx.Publication(types.PubPointer{ProfileID: 1, PubID: 1})
		c.Assert(err, qt.IsNil)
		c.Assert(pub.PubKind(), qt.Equals, types.PubKindPost)
		c.Assert(pub.ContentURI, qt.Equals, "ipfs://x")
		missing, err := tx.Publication(types.PubPointer{ProfileID: 1, PubID: 2})
		c.Assert(err, qt.IsNil)
		c.Assert(missing, qt.IsNil)
		return nil
	})
	c.Assert(err, qt.IsNil)
}

func TestNoncesAndWhitelists(t *testing.T) {
	c := qt.New(t)
	s := New(metadb.NewTest(t))
	a := common.HexToAddress("0xaa")
	b := common.HexToAddress("0xbb")

	err := s.Update(func(tx *Tx) error {
		ok, err := tx.ConsumeNonce(a, 1)
		c.Assert(err, qt.IsNil)
		c.Assert(ok, qt.IsFalse)
		ok, err = tx.ConsumeNonce(a, 0)
		c.Assert(err, qt.IsNil)
		c.Assert(ok, qt.IsTrue)
		n, err := tx.Nonce(a)
		c.Assert(err, qt.IsNil)
		c.Assert(n, qt.Equals, uint64(1))

		list := ListModules(types.CollectModule)
		c.Assert(tx.SetWhitelisted(list, b, true), qt.IsNil)
		c.Assert(tx.SetWhitelisted(list, a, true), qt.IsNil)
		c.Assert(tx.SetWhitelisted(list, b, false), qt.IsNil)
		addrs, err := tx.ListWhitelisted(list)
		c.Assert(err, qt.IsNil)
		c.Assert(addrs, qt.DeepEquals, []common.Address{a})
		ok, err = tx.Whitelisted(ListProfileCreators, a)
		c.Assert(err, qt.IsNil)
		c.Assert(ok, qt.IsFalse)
		return nil
	})
	c.Assert(err, qt.IsNil)
}

func TestModuleStoreIsScoped(t *testing.T) {
	c := qt.New(t)
	s := New(metadb.NewTest(t))
	m1 := common.HexToAddress("0x01")
	m2 := common.HexToAddress("0x02")

	err := s.Update(func(tx *Tx) error {
		st := tx.ModuleStore(m1)
		c.Assert(st.Set([]byte("k"), []byte("v")), qt.IsNil)
		c.Assert(st.Commit(), qt.ErrorIs, ErrScopedCommit)
		st.Discard()
		return nil
	})
	c.Assert(err, qt.IsNil)

	err = s.View(func(tx *Tx) error {
		v, err := tx.ModuleStore(m1).Get([]byte("k"))
		c.Assert(err, qt.IsNil)
		c.Assert(string(v), qt.Equals, "v")
		_, err = tx.ModuleStore(m2).Get([]byte("k"))
		c.Assert(err, qt.IsNotNil)
		return nil
	})
	c.Assert(err, qt.IsNil)
}

func TestCheckpoints(t *testing.T) {
	c := qt.New(t)
	s := New(metadb.NewTest(t))
	col := common.HexToAddress("0xc0")
	user := common.HexToAddress("0xee")

	err := s.Update(func(tx *Tx) error {
		return tx.SetPowerCheckpoints(col, user, []Checkpoint{{Block: 1, Value: 1}, {Block: 5, Value: 2}})
	})
	c.Assert(err, qt.IsNil)
	err = s.View(func(tx *Tx) error {
		list, err := tx.PowerCheckpoints(col, user)
		c.Assert(err, qt.IsNil)
		c.Assert(list, qt.DeepEquals, []Checkpoint{{Block: 1, Value: 1}, {Block: 5, Value: 2}})
		supply, err := tx.SupplyCheckpoints(col)
		c.Assert(err, qt.IsNil)
		c.Assert(supply, qt.HasLen, 0)
		return nil
	})
	c.Assert(err, qt.IsNil)
}
