package hub

import (
	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/hub/hub/nft"
	"go.vocdoni.io/hub/hub/publication"
	"go.vocdoni.io/hub/hub/revert"
	"go.vocdoni.io/hub/hub/sigs"
	"go.vocdoni.io/hub/hub/state"
	"go.vocdoni.io/hub/types"
)

var _ nft.TransferHook = (*Hub)(nil)

// OnTransfer implements nft.TransferHook. Follow and collect NFTs report
// their transfers back to the hub, which checks the caller is the NFT bound
// to the profile or publication.
func (h *Hub) OnTransfer(tx *state.Tx, c *state.Collection, tokenID uint64, from, to common.Address) error {
	switch c.Kind {
	case state.CollectionFollow:
		return h.onFollowNFTTransfer(tx, c.Addr(), types.ProfileID(c.ProfileID), tokenID, from, to)
	case state.CollectionCollect:
		return h.onCollectNFTTransfer(tx, c.Addr(), types.PubPointer{
			ProfileID: types.ProfileID(c.ProfileID),
			PubID:     types.PubID(c.PubID),
		}, tokenID, from, to)
	}
	return nil
}

func (h *Hub) onFollowNFTTransfer(tx *state.Tx, caller common.Address, profileID types.ProfileID, _ uint64,
	_, _ common.Address,
) error {
	p, err := tx.Profile(profileID)
	if err != nil {
		return err
	}
	if p == nil || p.FollowNFTAddr() == types.ZeroAddress || caller != p.FollowNFTAddr() {
		return revert.ErrCallerNotFollowNFT
	}
	return nil
}

func (h *Hub) onCollectNFTTransfer(tx *state.Tx, caller common.Address, ptr types.PubPointer, _ uint64,
	_, _ common.Address,
) error {
	pub, err := tx.Publication(ptr)
	if err != nil {
		return err
	}
	if pub == nil || pub.CollectNFTAddr() == types.ZeroAddress || caller != pub.CollectNFTAddr() {
		return revert.ErrCallerNotCollectNFT
	}
	return nil
}

// OnFollowNFTTransfer is the entry point follow NFTs use to report a
// transfer. Only the follow NFT of profileID may call it.
func (h *Hub) OnFollowNFTTransfer(caller common.Address, profileID types.ProfileID, tokenID uint64,
	from, to common.Address,
) error {
	return h.update("emitFollowNFTTransfer", func(tx *state.Tx, ev *events) error {
		if err := h.onFollowNFTTransfer(tx, caller, profileID, tokenID, from, to); err != nil {
			return err
		}
		ev.emit(&Event{Type: EventFollowNFTTransferred, ProfileID: profileID, Collection: caller,
			TokenID: tokenID, Actor: from, Target: to})
		return nil
	})
}

// OnCollectNFTTransfer is the entry point collect NFTs use to report a
// transfer. Only the collect NFT of the publication may call it.
func (h *Hub) OnCollectNFTTransfer(caller common.Address, ptr types.PubPointer, tokenID uint64,
	from, to common.Address,
) error {
	return h.update("emitCollectNFTTransfer", func(tx *state.Tx, ev *events) error {
		if err := h.onCollectNFTTransfer(tx, caller, ptr, tokenID, from, to); err != nil {
			return err
		}
		ev.emit(&Event{Type: EventCollectNFTTransferred, ProfileID: ptr.ProfileID, PubID: ptr.PubID,
			Collection: caller, TokenID: tokenID, Actor: from, Target: to})
		return nil
	})
}

// Collection returns an NFT collection record.
func (h *Hub) Collection(addr common.Address) (*state.Collection, error) {
	var c *state.Collection
	err := h.view(func(tx *state.Tx) error {
		var err error
		c, err = h.ledger.Collection(tx, addr)
		return err
	})
	return c, err
}

// Token returns a token of collection.
func (h *Hub) Token(collection common.Address, tokenID uint64) (*state.Token, error) {
	var tok *state.Token
	err := h.view(func(tx *state.Tx) error {
		var err error
		tok, err = h.ledger.Token(tx, collection, tokenID)
		return err
	})
	return tok, err
}

// Approve lets spender move a token.
func (h *Hub) Approve(caller, collection, spender common.Address, tokenID uint64) error {
	return h.update("approve", func(tx *state.Tx, ev *events) error {
		if err := h.ledger.Approve(tx, collection, caller, spender, tokenID); err != nil {
			return err
		}
		ev.emit(&Event{Type: EventApproval, Collection: collection, TokenID: tokenID, Actor: caller, Target: spender})
		return nil
	})
}

// SetApprovalForAll grants or revokes operator rights over every token the
// caller holds in collection.
func (h *Hub) SetApprovalForAll(caller, collection, operator common.Address, approved bool) error {
	return h.setApprovalForAll("setApprovalForAll", caller, collection, operator, approved, nil)
}

func (h *Hub) setApprovalForAll(op string, owner, collection, operator common.Address, approved bool,
	sig func(c *state.Collection) verifier,
) error {
	return h.update(op, func(tx *state.Tx, ev *events) error {
		c, err := h.ledger.Collection(tx, collection)
		if err != nil {
			return err
		}
		if sig != nil {
			if err := sig(c).verify(tx); err != nil {
				return err
			}
		}
		if err := h.ledger.SetApprovalForAll(tx, collection, owner, operator, approved); err != nil {
			return err
		}
		ev.emit(&Event{Type: EventApprovalForAll, Collection: collection, Actor: owner, Target: operator,
			Data: flag(approved)})
		return nil
	})
}

func flag(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

// Permit approves spender on a token with the owner signature.
func (h *Hub) Permit(collection, spender common.Address, tokenID uint64, auth *sigs.Authorization) error {
	return h.update("permit", func(tx *state.Tx, ev *events) error {
		if err := sigs.CheckSpender(spender); err != nil {
			return err
		}
		c, err := h.ledger.Collection(tx, collection)
		if err != nil {
			return err
		}
		owner, err := h.ledger.OwnerOf(tx, collection, tokenID)
		if err != nil {
			return err
		}
		if signer(auth) != owner {
			return revert.ErrSignatureInvalid.WithDetail("signer is not the token owner")
		}
		if err := h.withCollectionSig(c, sigs.Permit(spender, tokenID), auth).verify(tx); err != nil {
			return err
		}
		if err := h.ledger.Approve(tx, collection, owner, spender, tokenID); err != nil {
			return err
		}
		ev.emit(&Event{Type: EventApproval, Collection: collection, TokenID: tokenID, Actor: owner, Target: spender})
		return nil
	})
}

// PermitForAll grants or revokes operator rights with the owner signature.
func (h *Hub) PermitForAll(collection, owner, operator common.Address, approved bool, auth *sigs.Authorization) error {
	if err := sigs.CheckSpender(operator); err != nil {
		return err
	}
	if signer(auth) != owner {
		return revert.ErrSignatureInvalid.WithDetail("signer is not the owner")
	}
	return h.setApprovalForAll("permitForAll", owner, collection, operator, approved, func(c *state.Collection) verifier {
		return h.withCollectionSig(c, sigs.PermitForAll(owner, operator, approved), auth)
	})
}

// TransferNFT moves a token of any collection. Profile transfers go through
// TransferProfile.
func (h *Hub) TransferNFT(caller, collection, from, to common.Address, tokenID uint64) error {
	if collection == h.address {
		return h.TransferProfile(caller, from, to, types.ProfileID(tokenID))
	}
	return h.update("transferNFT", func(tx *state.Tx, ev *events) error {
		if err := h.ledger.Transfer(tx, collection, caller, from, to, tokenID, h.clock.Height()); err != nil {
			return err
		}
		ev.emit(&Event{Type: EventNFTTransferred, Collection: collection, TokenID: tokenID, Actor: from, Target: to})
		return nil
	})
}

// Burn destroys a follow or collect NFT. Profiles cannot be burnt.
func (h *Hub) Burn(caller, collection common.Address, tokenID uint64) error {
	return h.burn("burn", caller, collection, tokenID, nil)
}

// BurnWithSig is Burn authorized by the token owner signature.
func (h *Hub) BurnWithSig(collection common.Address, tokenID uint64, auth *sigs.Authorization) error {
	return h.burn("burnWithSig", signer(auth), collection, tokenID, func(c *state.Collection) verifier {
		return h.withCollectionSig(c, sigs.Burn(tokenID), auth)
	})
}

func (h *Hub) burn(op string, caller, collection common.Address, tokenID uint64,
	sig func(c *state.Collection) verifier,
) error {
	return h.update(op, func(tx *state.Tx, ev *events) error {
		if collection == h.address {
			return revert.ErrNotOwnerOrApproved.WithDetail("profiles cannot be burnt")
		}
		c, err := h.ledger.Collection(tx, collection)
		if err != nil {
			return err
		}
		if sig != nil {
			if err := sig(c).verify(tx); err != nil {
				return err
			}
		}
		if err := h.ledger.Burn(tx, collection, caller, tokenID, h.clock.Height()); err != nil {
			return err
		}
		ev.emit(&Event{Type: EventNFTBurnt, Collection: collection, TokenID: tokenID, Actor: caller})
		return nil
	})
}

// Delegate moves the follow NFT power of caller to delegatee.
func (h *Hub) Delegate(caller, collection, delegatee common.Address) error {
	return h.delegate("delegate", caller, collection, delegatee, nil)
}

// DelegateBySig is Delegate authorized by the delegator signature.
func (h *Hub) DelegateBySig(collection, delegator, delegatee common.Address, auth *sigs.Authorization) error {
	if signer(auth) != delegator {
		return revert.ErrSignatureInvalid.WithDetail("signer is not the delegator")
	}
	return h.delegate("delegateBySig", delegator, collection, delegatee, func(c *state.Collection) verifier {
		return h.withCollectionSig(c, sigs.Delegate(delegator, delegatee), auth)
	})
}

func (h *Hub) delegate(op string, delegator, collection, delegatee common.Address,
	sig func(c *state.Collection) verifier,
) error {
	return h.update(op, func(tx *state.Tx, ev *events) error {
		c, err := h.ledger.Collection(tx, collection)
		if err != nil {
			return err
		}
		if sig != nil {
			if err := sig(c).verify(tx); err != nil {
				return err
			}
		}
		if err := h.ledger.Delegate(tx, collection, delegator, delegatee, h.clock.Height()); err != nil {
			return err
		}
		ev.emit(&Event{Type: EventDelegated, Collection: collection, Actor: delegator, Target: delegatee})
		return nil
	})
}

// PowerAt returns the follow NFT power delegated to user at block.
func (h *Hub) PowerAt(collection, user common.Address, block uint64) (uint64, error) {
	var power uint64
	err := h.view(func(tx *state.Tx) error {
		var err error
		power, err = h.ledger.PowerAt(tx, collection, user, block, h.clock.Height())
		return err
	})
	return power, err
}

// DelegatedSupplyAt returns the total delegated follow NFT power at block.
func (h *Hub) DelegatedSupplyAt(collection common.Address, block uint64) (uint64, error) {
	var supply uint64
	err := h.view(func(tx *state.Tx) error {
		var err error
		supply, err = h.ledger.DelegatedSupplyAt(tx, collection, block, h.clock.Height())
		return err
	})
	return supply, err
}

// FollowNFTOf returns the follow NFT of a profile, zero if not deployed.
func (h *Hub) FollowNFTOf(profileID types.ProfileID) (common.Address, error) {
	p, err := h.Profile(profileID)
	if err != nil {
		return types.ZeroAddress, err
	}
	return p.FollowNFTAddr(), nil
}

// CollectNFTOf returns the collect NFT of a publication, zero if not
// deployed.
func (h *Hub) CollectNFTOf(ptr types.PubPointer) (common.Address, error) {
	var addr common.Address
	err := h.view(func(tx *state.Tx) error {
		pub, err := publication.Get(tx, ptr)
		if err != nil {
			return err
		}
		addr = pub.CollectNFTAddr()
		return nil
	})
	return addr, err
}
