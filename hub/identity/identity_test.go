package identity

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/hub/db/metadb"
	"go.vocdoni.io/hub/hub/governance"
	"go.vocdoni.io/hub/hub/nft"
	"go.vocdoni.io/hub/hub/revert"
	"go.vocdoni.io/hub/hub/state"
	"go.vocdoni.io/hub/hub/whitelist"
	"go.vocdoni.io/hub/types"
)

var (
	hubAddr = common.HexToAddress("0x00000000000000000000000000000000000000b0")
	gov     = common.HexToAddress("0x00000000000000000000000000000000000000a0")
	alice   = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob     = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	carol   = common.HexToAddress("0x00000000000000000000000000000000000000c1")
)

func TestValidateHandle(t *testing.T) {
	c := qt.New(t)
	for _, tc := range []struct {
		handle string
		want   error
	}{
		{"alice", nil},
		{"a", nil},
		{"0x.1-2_3", nil},
		{strings.Repeat("a", types.MaxHandleLength), nil},
		{"", revert.ErrHandleLengthInvalid},
		{strings.Repeat("a", types.MaxHandleLength+1), revert.ErrHandleLengthInvalid},
		{"Alice", revert.ErrHandleContainsInvalidCharacters},
		{"al ice", revert.ErrHandleContainsInvalidCharacters},
		{"ali@ce", revert.ErrHandleContainsInvalidCharacters},
		{"_alice", revert.ErrHandleFirstCharInvalid},
		{".alice", revert.ErrHandleFirstCharInvalid},
		{"-", revert.ErrHandleFirstCharInvalid},
		{"-Ab", revert.ErrHandleFirstCharInvalid},
		{"_al ice", revert.ErrHandleFirstCharInvalid},
		{"Alice-", revert.ErrHandleContainsInvalidCharacters},
	} {
		err := ValidateHandle(tc.handle)
		if tc.want == nil {
			c.Assert(err, qt.IsNil, qt.Commentf("%q", tc.handle))
			continue
		}
		c.Assert(err, qt.ErrorIs, tc.want, qt.Commentf("%q", tc.handle))
	}
}

type fixture struct {
	c   *qt.C
	st  *state.State
	reg *Registry
}

func newFixture(c *qt.C) *fixture {
	f := &fixture{
		c:   c,
		st:  state.New(metadb.NewTest(c)),
		reg: &Registry{Ledger: &nft.Ledger{Hub: hubAddr}},
	}
	c.Assert(f.st.Update(func(tx *state.Tx) error {
		if err := governance.Initialize(tx, "Hub", "HUB", gov); err != nil {
			return err
		}
		if err := f.reg.Ledger.DeployProfiles(tx, "Hub", "HUB"); err != nil {
			return err
		}
		return whitelist.SetProfileCreator(tx, gov, alice, true)
	}), qt.IsNil)
	return f
}

func (f *fixture) create(creator common.Address, handle string) (*state.Profile, error) {
	var p *state.Profile
	err := f.st.Update(func(tx *state.Tx) error {
		var err error
		p, err = f.reg.CreateProfile(tx, creator, &CreateProfileParams{To: creator, Handle: handle}, 1, 1)
		return err
	})
	return p, err
}

func TestCreateProfile(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c)

	_, err := f.create(bob, "bob")
	c.Assert(err, qt.ErrorIs, revert.ErrProfileCreatorNotWhitelisted)

	p, err := f.create(alice, "alice")
	c.Assert(err, qt.IsNil)
	c.Assert(p.ID, qt.Equals, uint64(1))

	_, err = f.create(alice, "alice")
	c.Assert(err, qt.ErrorIs, revert.ErrHandleTaken)
	_, err = f.create(alice, "_x")
	c.Assert(err, qt.ErrorIs, revert.ErrHandleFirstCharInvalid)

	err = f.st.Update(func(tx *state.Tx) error {
		_, err := f.reg.CreateProfile(tx, alice, &CreateProfileParams{
			To:       alice,
			Handle:   "img",
			ImageURI: strings.Repeat("x", types.MaxProfileImageURILength+1),
		}, 1, 1)
		return err
	})
	c.Assert(err, qt.ErrorIs, revert.ErrProfileImageURILengthInvalid)

	// rejected creations do not burn ids
	p, err = f.create(alice, "alice2")
	c.Assert(err, qt.IsNil)
	c.Assert(p.ID, qt.Equals, uint64(2))

	err = f.st.View(func(tx *state.Tx) error {
		id, err := f.reg.ProfileIDByHandle(tx, "alice2")
		c.Assert(err, qt.IsNil)
		c.Assert(id, qt.Equals, types.ProfileID(2))
		owner, err := f.reg.OwnerOf(tx, 2)
		c.Assert(err, qt.IsNil)
		c.Assert(owner, qt.Equals, alice)
		return nil
	})
	c.Assert(err, qt.IsNil)
}

func TestAuthorizeAndDispatcher(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c)
	_, err := f.create(alice, "alice")
	c.Assert(err, qt.IsNil)

	authorize := func(id types.ProfileID, caller common.Address, strict bool) error {
		return f.st.View(func(tx *state.Tx) error {
			_, err := f.reg.Authorize(tx, id, caller, strict)
			return err
		})
	}
	setDispatcher := func(caller, dispatcher common.Address) error {
		return f.st.Update(func(tx *state.Tx) error {
			return f.reg.SetDispatcher(tx, caller, 1, dispatcher)
		})
	}

	c.Assert(authorize(2, alice, true), qt.ErrorIs, revert.ErrTokenDoesNotExist)
	c.Assert(authorize(1, alice, true), qt.IsNil)
	c.Assert(authorize(1, bob, true), qt.ErrorIs, revert.ErrNotProfileOwner)
	c.Assert(authorize(1, bob, false), qt.ErrorIs, revert.ErrNotProfileOwnerOrValid)

	c.Assert(setDispatcher(bob, bob), qt.ErrorIs, revert.ErrNotProfileOwner)
	c.Assert(setDispatcher(alice, bob), qt.IsNil)
	c.Assert(authorize(1, bob, false), qt.IsNil)
	c.Assert(authorize(1, bob, true), qt.ErrorIs, revert.ErrNotProfileOwner)

	// a dispatcher can resign but not replace itself
	c.Assert(setDispatcher(bob, carol), qt.ErrorIs, revert.ErrNotDispatcher)
	c.Assert(setDispatcher(carol, types.ZeroAddress), qt.ErrorIs, revert.ErrNotProfileOwner)
	c.Assert(setDispatcher(carol, carol), qt.ErrorIs, revert.ErrNotProfileOwner)
	c.Assert(setDispatcher(bob, types.ZeroAddress), qt.IsNil)
	c.Assert(authorize(1, bob, false), qt.ErrorIs, revert.ErrNotProfileOwnerOrValid)
}

func TestTransferClearsDispatcher(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c)
	_, err := f.create(alice, "alice")
	c.Assert(err, qt.IsNil)
	c.Assert(f.st.Update(func(tx *state.Tx) error {
		return f.reg.SetDispatcher(tx, alice, 1, bob)
	}), qt.IsNil)

	err = f.st.Update(func(tx *state.Tx) error {
		return f.reg.Transfer(tx, bob, alice, carol, 1, 2)
	})
	c.Assert(err, qt.ErrorIs, revert.ErrERC721CallerNotOwnerOrApproved)

	c.Assert(f.st.Update(func(tx *state.Tx) error {
		return f.reg.Transfer(tx, alice, alice, carol, 1, 2)
	}), qt.IsNil)
	err = f.st.View(func(tx *state.Tx) error {
		p, err := f.reg.Authorize(tx, 1, carol, true)
		c.Assert(err, qt.IsNil)
		c.Assert(p.DispatcherAddr(), qt.Equals, types.ZeroAddress)
		return nil
	})
	c.Assert(err, qt.IsNil)
}

func TestSetImageURI(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c)
	_, err := f.create(alice, "alice")
	c.Assert(err, qt.IsNil)
	err = f.st.Update(func(tx *state.Tx) error {
		return f.reg.SetImageURI(tx, bob, 1, "ipfs://x")
	})
	c.Assert(err, qt.ErrorIs, revert.ErrNotProfileOwnerOrValid)
	err = f.st.Update(func(tx *state.Tx) error {
		return f.reg.SetImageURI(tx, alice, 1, strings.Repeat("x", types.MaxProfileImageURILength+1))
	})
	c.Assert(err, qt.ErrorIs, revert.ErrProfileImageURILengthInvalid)
	c.Assert(f.st.Update(func(tx *state.Tx) error {
		return f.reg.SetImageURI(tx, alice, 1, "ipfs://x")
	}), qt.IsNil)
}
