package hub_test

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/hub/hub"
	"go.vocdoni.io/hub/hub/hubtest"
	"go.vocdoni.io/hub/hub/revert"
	"go.vocdoni.io/hub/hub/sigs"
	"go.vocdoni.io/hub/types"
)

func TestFollowNFTTransfer(t *testing.T) {
	c := qt.New(t)
	env := hubtest.New(t, 3)
	alice, bob, carol := env.Users[0], env.Users[1], env.Users[2]
	aliceID := env.CreateProfile(t, alice, "alice")
	_, err := env.Hub.Follow(bob.Address(), []types.ProfileID{aliceID}, [][]byte{nil})
	c.Assert(err, qt.IsNil)
	followNFT := mustFollowNFT(c, env, aliceID)

	c.Assert(env.Hub.TransferNFT(carol.Address(), followNFT, bob.Address(), carol.Address(), 9), qt.ErrorIs,
		revert.ErrERC721OwnerQueryForNonexistent)
	c.Assert(env.Hub.TransferNFT(carol.Address(), followNFT, carol.Address(), carol.Address(), 1), qt.ErrorIs,
		revert.ErrERC721NotOwn)
	c.Assert(env.Hub.TransferNFT(carol.Address(), followNFT, bob.Address(), carol.Address(), 1), qt.ErrorIs,
		revert.ErrERC721CallerNotOwnerOrApproved)

	c.Assert(env.Hub.Approve(carol.Address(), followNFT, carol.Address(), 1), qt.ErrorIs,
		revert.ErrERC721CallerNotOwnerOrApproved)
	c.Assert(env.Hub.Approve(bob.Address(), followNFT, carol.Address(), 1), qt.IsNil)
	c.Assert(env.Hub.TransferNFT(carol.Address(), followNFT, bob.Address(), carol.Address(), 1), qt.IsNil)

	token, err := env.Hub.Token(followNFT, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(token.OwnerAddr(), qt.Equals, carol.Address())
	c.Assert(token.ApprovedAddr(), qt.Equals, types.ZeroAddress)

	following, err := env.Hub.IsFollowing(aliceID, carol.Address())
	c.Assert(err, qt.IsNil)
	c.Assert(following, qt.IsTrue)
	following, err = env.Hub.IsFollowing(aliceID, bob.Address())
	c.Assert(err, qt.IsNil)
	c.Assert(following, qt.IsFalse)

	// operators move any token of the owner
	c.Assert(env.Hub.SetApprovalForAll(carol.Address(), followNFT, bob.Address(), true), qt.IsNil)
	c.Assert(env.Hub.TransferNFT(bob.Address(), followNFT, carol.Address(), bob.Address(), 1), qt.IsNil)
}

func TestNFTsOutsidePauseGate(t *testing.T) {
	c := qt.New(t)
	env := hubtest.New(t, 3)
	alice, bob, carol := env.Users[0], env.Users[1], env.Users[2]
	aliceID := env.CreateProfile(t, alice, "alice")
	_, err := env.Hub.Follow(bob.Address(), []types.ProfileID{aliceID}, [][]byte{nil})
	c.Assert(err, qt.IsNil)
	followNFT := mustFollowNFT(c, env, aliceID)

	c.Assert(env.Hub.SetPauseLevel(env.Governance.Address(), types.Paused), qt.IsNil)
	_, err = env.Hub.Follow(carol.Address(), []types.ProfileID{aliceID}, [][]byte{nil})
	c.Assert(err, qt.ErrorIs, revert.ErrPaused)

	// holders keep control of their tokens while the hub is paused
	c.Assert(env.Hub.Delegate(bob.Address(), followNFT, bob.Address()), qt.IsNil)
	c.Assert(env.Hub.TransferNFT(bob.Address(), followNFT, bob.Address(), carol.Address(), 1), qt.IsNil)
	c.Assert(env.Hub.Burn(carol.Address(), followNFT, 1), qt.IsNil)
}

func TestTransferHooks(t *testing.T) {
	c := qt.New(t)
	env := hubtest.New(t, 2)
	alice, bob := env.Users[0], env.Users[1]
	aliceID := env.CreateProfile(t, alice, "alice")
	pubID := env.Post(t, alice, aliceID)

	_, err := env.Hub.Follow(bob.Address(), []types.ProfileID{aliceID}, [][]byte{nil})
	c.Assert(err, qt.IsNil)
	_, err = env.Hub.Collect(bob.Address(), &hub.CollectRequest{ProfileID: aliceID, PubID: pubID})
	c.Assert(err, qt.IsNil)
	followNFT := mustFollowNFT(c, env, aliceID)
	ptr := types.PubPointer{ProfileID: aliceID, PubID: pubID}
	collectNFT, err := env.Hub.CollectNFTOf(ptr)
	c.Assert(err, qt.IsNil)

	c.Assert(env.Hub.OnFollowNFTTransfer(bob.Address(), aliceID, 1, bob.Address(), alice.Address()), qt.ErrorIs,
		revert.ErrCallerNotFollowNFT)
	c.Assert(env.Hub.OnFollowNFTTransfer(collectNFT, aliceID, 1, bob.Address(), alice.Address()), qt.ErrorIs,
		revert.ErrCallerNotFollowNFT)
	c.Assert(env.Hub.OnFollowNFTTransfer(followNFT, aliceID, 1, bob.Address(), alice.Address()), qt.IsNil)

	c.Assert(env.Hub.OnCollectNFTTransfer(followNFT, ptr, 1, bob.Address(), alice.Address()), qt.ErrorIs,
		revert.ErrCallerNotCollectNFT)
	c.Assert(env.Hub.OnCollectNFTTransfer(collectNFT, types.PubPointer{ProfileID: aliceID, PubID: 7}, 1,
		bob.Address(), alice.Address()), qt.ErrorIs, revert.ErrCallerNotCollectNFT)
	c.Assert(env.Hub.OnCollectNFTTransfer(collectNFT, ptr, 1, bob.Address(), alice.Address()), qt.IsNil)

	// a real transfer goes through the same hook
	c.Assert(env.Hub.TransferNFT(bob.Address(), collectNFT, bob.Address(), alice.Address(), 1), qt.IsNil)
}

func TestBurn(t *testing.T) {
	c := qt.New(t)
	env := hubtest.New(t, 2)
	alice, bob := env.Users[0], env.Users[1]
	aliceID := env.CreateProfile(t, alice, "alice")
	_, err := env.Hub.Follow(bob.Address(), []types.ProfileID{aliceID}, [][]byte{nil})
	c.Assert(err, qt.IsNil)
	followNFT := mustFollowNFT(c, env, aliceID)

	c.Assert(env.Hub.Burn(alice.Address(), followNFT, 5), qt.ErrorIs, revert.ErrTokenDoesNotExist)
	c.Assert(env.Hub.Burn(alice.Address(), followNFT, 1), qt.ErrorIs, revert.ErrNotOwnerOrApproved)
	c.Assert(env.Hub.Burn(alice.Address(), hubtest.HubAddress, uint64(aliceID)), qt.ErrorIs,
		revert.ErrNotOwnerOrApproved)

	d := env.CollectionDomain(t, followNFT)
	auth := env.SignDomain(t, alice, d, sigs.Burn(1))
	c.Assert(env.Hub.BurnWithSig(followNFT, 1, auth), qt.ErrorIs, revert.ErrNotOwnerOrApproved)

	// signed for the hub domain instead of the NFT
	auth = env.Sign(t, bob, sigs.Burn(1))
	c.Assert(env.Hub.BurnWithSig(followNFT, 1, auth), qt.ErrorIs, revert.ErrSignatureInvalid)

	auth = env.SignDomain(t, bob, d, sigs.Burn(1))
	c.Assert(env.Hub.BurnWithSig(followNFT, 1, auth), qt.IsNil)
	_, err = env.Hub.Token(followNFT, 1)
	c.Assert(err, qt.ErrorIs, revert.ErrERC721OwnerQueryForNonexistent)
	following, err := env.Hub.IsFollowing(aliceID, bob.Address())
	c.Assert(err, qt.IsNil)
	c.Assert(following, qt.IsFalse)
}

func TestPermit(t *testing.T) {
	c := qt.New(t)
	env := hubtest.New(t, 3)
	alice, bob, carol := env.Users[0], env.Users[1], env.Users[2]
	aliceID := env.CreateProfile(t, alice, "alice")
	_, err := env.Hub.Follow(bob.Address(), []types.ProfileID{aliceID}, [][]byte{nil})
	c.Assert(err, qt.IsNil)
	followNFT := mustFollowNFT(c, env, aliceID)
	d := env.CollectionDomain(t, followNFT)

	auth := env.SignDomain(t, bob, d, sigs.Permit(types.ZeroAddress, 1))
	c.Assert(env.Hub.Permit(followNFT, types.ZeroAddress, 1, auth), qt.ErrorIs, revert.ErrZeroSpender)

	auth = env.SignDomain(t, carol, d, sigs.Permit(carol.Address(), 1))
	c.Assert(env.Hub.Permit(followNFT, carol.Address(), 1, auth), qt.ErrorIs, revert.ErrSignatureInvalid)

	auth = env.SignDomain(t, bob, d, sigs.Permit(carol.Address(), 1))
	c.Assert(env.Hub.Permit(followNFT, carol.Address(), 2, auth), qt.ErrorIs,
		revert.ErrERC721OwnerQueryForNonexistent)
	c.Assert(env.Hub.Permit(followNFT, carol.Address(), 1, auth), qt.IsNil)
	c.Assert(env.Hub.TransferNFT(carol.Address(), followNFT, bob.Address(), carol.Address(), 1), qt.IsNil)

	auth = env.SignDomain(t, carol, d, sigs.PermitForAll(carol.Address(), alice.Address(), true))
	c.Assert(env.Hub.PermitForAll(followNFT, carol.Address(), types.ZeroAddress, true, auth), qt.ErrorIs,
		revert.ErrZeroSpender)
	c.Assert(env.Hub.PermitForAll(followNFT, carol.Address(), alice.Address(), true, auth), qt.IsNil)
	c.Assert(env.Hub.TransferNFT(alice.Address(), followNFT, carol.Address(), alice.Address(), 1), qt.IsNil)
}

func TestDelegatedPower(t *testing.T) {
	c := qt.New(t)
	env := hubtest.New(t, 3)
	alice, bob, carol := env.Users[0], env.Users[1], env.Users[2]
	aliceID := env.CreateProfile(t, alice, "alice")
	_, err := env.Hub.Follow(bob.Address(), []types.ProfileID{aliceID, aliceID}, [][]byte{nil, nil})
	c.Assert(err, qt.IsNil)
	followNFT := mustFollowNFT(c, env, aliceID)

	start := env.Clock.Height()
	power, err := env.Hub.PowerAt(followNFT, bob.Address(), start)
	c.Assert(err, qt.IsNil)
	c.Assert(power, qt.Equals, uint64(0))

	c.Assert(env.Hub.Delegate(bob.Address(), followNFT, bob.Address()), qt.IsNil)
	env.Clock.Advance(10, 1)
	d := env.CollectionDomain(t, followNFT)
	auth := env.SignDomain(t, bob, d, sigs.Delegate(bob.Address(), carol.Address()))
	c.Assert(env.Hub.DelegateBySig(followNFT, carol.Address(), carol.Address(), auth), qt.ErrorIs,
		revert.ErrSignatureInvalid)
	c.Assert(env.Hub.DelegateBySig(followNFT, bob.Address(), carol.Address(), auth), qt.IsNil)
	env.Clock.Advance(10, 1)

	for _, tc := range []struct {
		block      uint64
		bob, carol uint64
	}{
		{start, 2, 0},
		{start + 1, 0, 2},
		{start + 2, 0, 2},
	} {
		power, err := env.Hub.PowerAt(followNFT, bob.Address(), tc.block)
		c.Assert(err, qt.IsNil)
		c.Assert(power, qt.Equals, tc.bob, qt.Commentf("block %d", tc.block))
		power, err = env.Hub.PowerAt(followNFT, carol.Address(), tc.block)
		c.Assert(err, qt.IsNil)
		c.Assert(power, qt.Equals, tc.carol, qt.Commentf("block %d", tc.block))
		supply, err := env.Hub.DelegatedSupplyAt(followNFT, tc.block)
		c.Assert(err, qt.IsNil)
		c.Assert(supply, qt.Equals, uint64(2))
	}

	_, err = env.Hub.PowerAt(followNFT, bob.Address(), env.Clock.Height()+1)
	c.Assert(err, qt.ErrorIs, revert.ErrBlockNumberInvalid)
	_, err = env.Hub.DelegatedSupplyAt(followNFT, env.Clock.Height()+1)
	c.Assert(err, qt.ErrorIs, revert.ErrBlockNumberInvalid)

	// profile NFTs carry no power
	c.Assert(env.Hub.Delegate(alice.Address(), hubtest.HubAddress, alice.Address()), qt.ErrorIs, revert.ErrNotHub)
}
