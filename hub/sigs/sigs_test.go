package sigs

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/hub/crypto/ethereum"
	"go.vocdoni.io/hub/db/metadb"
	"go.vocdoni.io/hub/hub/revert"
	"go.vocdoni.io/hub/hub/state"
	"go.vocdoni.io/hub/types"
)

var testDomain = Domain{
	Name:              "Hub Profiles",
	ChainID:           1337,
	VerifyingContract: common.HexToAddress("0x0000000000000000000000000000000000000abc"),
}

func newSigner(c *qt.C) *ethereum.SignKeys {
	keys, err := ethereum.NewSignKeys()
	c.Assert(err, qt.IsNil)
	return keys
}

func TestDigestIsDeterministic(t *testing.T) {
	c := qt.New(t)
	msg := SetDispatcher(1, common.HexToAddress("0x01"))
	d1, err := testDomain.Digest(msg, 0, 100)
	c.Assert(err, qt.IsNil)
	c.Assert(d1, qt.HasLen, ethereum.DigestLength)
	d2, err := testDomain.Digest(msg, 0, 100)
	c.Assert(err, qt.IsNil)
	c.Assert(d2, qt.DeepEquals, d1)

	d3, err := testDomain.Digest(msg, 1, 100)
	c.Assert(err, qt.IsNil)
	c.Assert(d3, qt.Not(qt.DeepEquals), d1)

	other := testDomain
	other.ChainID = 1
	d4, err := other.Digest(msg, 0, 100)
	c.Assert(err, qt.IsNil)
	c.Assert(d4, qt.Not(qt.DeepEquals), d1)
}

func TestAllMessagesEncode(t *testing.T) {
	c := qt.New(t)
	a := common.HexToAddress("0x0a")
	ptr := types.PubPointer{ProfileID: 1, PubID: 1}
	msgs := []Message{
		SetFollowModule(1, a, []byte{1}),
		SetDispatcher(1, a),
		SetProfileImageURI(1, "ipfs://img"),
		Post(1, "ipfs://c", a, nil, types.ZeroAddress, nil),
		Comment(1, "ipfs://c", ptr, nil, a, nil, types.ZeroAddress, nil),
		Mirror(1, ptr, nil, types.ZeroAddress, nil),
		Follow([]types.ProfileID{1, 2}, [][]byte{nil, {1}}),
		Collect(ptr, nil),
		Permit(a, 1),
		PermitForAll(a, a, true),
		Burn(1),
		Delegate(a, a),
	}
	c.Assert(msgs, qt.HasLen, len(messageTypes))
	for _, msg := range msgs {
		_, err := testDomain.Digest(msg, 0, 1)
		c.Assert(err, qt.IsNil, qt.Commentf("%s", msg.PrimaryType))
	}
	_, err := testDomain.Digest(Message{PrimaryType: "Unknown"}, 0, 1)
	c.Assert(err, qt.IsNotNil)
}

func TestVerify(t *testing.T) {
	c := qt.New(t)
	st := state.New(metadb.NewTest(t))
	v, err := NewValidator(16)
	c.Assert(err, qt.IsNil)
	keys := newSigner(c)
	msg := SetProfileImageURI(1, "ipfs://img")

	auth, err := Sign(keys, testDomain, msg, 0, 100)
	c.Assert(err, qt.IsNil)

	// past the deadline the nonce is not even looked at
	err = st.Update(func(tx *state.Tx) error {
		return v.Verify(tx, 101, testDomain, msg, auth)
	})
	c.Assert(err, qt.ErrorIs, revert.ErrSignatureExpired)

	// a different message does not recover the signer
	err = st.Update(func(tx *state.Tx) error {
		return v.Verify(tx, 50, testDomain, SetProfileImageURI(2, "ipfs://img"), auth)
	})
	c.Assert(err, qt.ErrorIs, revert.ErrSignatureInvalid)

	err = st.Update(func(tx *state.Tx) error {
		return v.Verify(tx, 100, testDomain, msg, auth)
	})
	c.Assert(err, qt.IsNil)

	// replay
	err = st.Update(func(tx *state.Tx) error {
		return v.Verify(tx, 50, testDomain, msg, auth)
	})
	c.Assert(err, qt.ErrorIs, revert.ErrSignatureInvalid)

	err = st.View(func(tx *state.Tx) error {
		n, err := tx.Nonce(keys.Address())
		c.Assert(err, qt.IsNil)
		c.Assert(n, qt.Equals, uint64(1))
		return nil
	})
	c.Assert(err, qt.IsNil)
}

func TestVerifyWrongSigner(t *testing.T) {
	c := qt.New(t)
	st := state.New(metadb.NewTest(t))
	v, err := NewValidator(0)
	c.Assert(err, qt.IsNil)
	keys := newSigner(c)
	msg := Burn(7)

	auth, err := Sign(keys, testDomain, msg, 0, 100)
	c.Assert(err, qt.IsNil)
	auth.Signer = newSigner(c).Address()
	err = st.Update(func(tx *state.Tx) error {
		return v.Verify(tx, 1, testDomain, msg, auth)
	})
	c.Assert(err, qt.ErrorIs, revert.ErrSignatureInvalid)

	auth.Signer = keys.Address()
	auth.Signature = []byte{1, 2, 3}
	err = st.Update(func(tx *state.Tx) error {
		return v.Verify(tx, 1, testDomain, msg, auth)
	})
	c.Assert(err, qt.ErrorIs, revert.ErrSignatureInvalid)

	err = st.Update(func(tx *state.Tx) error {
		return v.Verify(tx, 1, testDomain, msg, nil)
	})
	c.Assert(err, qt.ErrorIs, revert.ErrSignatureInvalid)
}

func TestCheckSpender(t *testing.T) {
	c := qt.New(t)
	c.Assert(CheckSpender(types.ZeroAddress), qt.ErrorIs, revert.ErrZeroSpender)
	c.Assert(CheckSpender(common.HexToAddress("0x01")), qt.IsNil)
}
