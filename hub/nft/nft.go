// Package nft keeps the ERC721Time ledger shared by the profile, follow and
// collect NFTs: ownership with mint timestamps, approvals, transfers, burns,
// one-shot initialization of cloned instances and, for follow NFTs, the
// delegated power checkpoints used for voting snapshots.
package nft

import (
	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/hub/crypto/ethereum"
	"go.vocdoni.io/hub/hub/revert"
	"go.vocdoni.io/hub/hub/state"
	"go.vocdoni.io/hub/types"
)

// TransferHook is notified after a token changes hands inside the same
// transaction. Returning an error rolls the transfer back.
type TransferHook interface {
	OnTransfer(tx *state.Tx, c *state.Collection, tokenID uint64, from, to common.Address) error
}

// Ledger implements the NFT operations. Hub is the only address allowed to
// mint.
type Ledger struct {
	Hub  common.Address
	Hook TransferHook
}

// Collection returns the collection at addr or TokenDoesNotExist.
func (l *Ledger) Collection(tx *state.Tx, addr common.Address) (*state.Collection, error) {
	c, err := tx.Collection(addr)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, revert.ErrTokenDoesNotExist.WithDetail("no collection at %s", addr.Hex())
	}
	return c, nil
}

// DeployImplementation registers a template instance. Templates can never be
// initialized or minted from; they are only cloned.
func (l *Ledger) DeployImplementation(tx *state.Tx, addr common.Address, kind uint8) error {
	return tx.SetCollection(&state.Collection{
		Address:        addr.Bytes(),
		Kind:           kind,
		Implementation: true,
	})
}

// DeployProfiles registers the profile collection, which lives at the hub
// address and is initialized from the start.
func (l *Ledger) DeployProfiles(tx *state.Tx, name, symbol string) error {
	return tx.SetCollection(&state.Collection{
		Address:     l.Hub.Bytes(),
		Kind:        state.CollectionProfile,
		Initialized: true,
		Name:        name,
		Symbol:      symbol,
	})
}

// Clone deploys a fresh, uninitialized copy of template and returns its
// address.
func (l *Ledger) Clone(tx *state.Tx, template common.Address) (common.Address, error) {
	tmpl, err := l.Collection(tx, template)
	if err != nil {
		return types.ZeroAddress, err
	}
	n, err := tx.NextDeployment(l.Hub)
	if err != nil {
		return types.ZeroAddress, err
	}
	addr := ethereum.DeriveAddress(template.Bytes(), l.Hub.Bytes(), types.Uint64Bytes(n))
	return addr, tx.SetCollection(&state.Collection{
		Address: addr.Bytes(),
		Kind:    tmpl.Kind,
	})
}

// Initialize binds a cloned instance to the profile (and publication) it
// serves. It can run only once and never on a template.
func (l *Ledger) Initialize(tx *state.Tx, addr common.Address, profileID types.ProfileID,
	pubID types.PubID, name, symbol string,
) error {
	c, err := l.Collection(tx, addr)
	if err != nil {
		return err
	}
	if c.Implementation {
		return revert.ErrCannotInitImplementation
	}
	if c.Initialized {
		return revert.ErrInitialized
	}
	c.Initialized = true
	c.ProfileID = uint64(profileID)
	c.PubID = uint64(pubID)
	c.Name = name
	c.Symbol = symbol
	return tx.SetCollection(c)
}

// Mint creates a new token owned by to, stamped with now. Only the hub mints.
func (l *Ledger) Mint(tx *state.Tx, caller, collection, to common.Address, now, height uint64) (uint64, error) {
	if caller != l.Hub {
		return 0, revert.ErrNotHub
	}
	c, err := l.Collection(tx, collection)
	if err != nil {
		return 0, err
	}
	if c.Implementation || !c.Initialized {
		return 0, revert.ErrNotHub.WithDetail("collection %s not initialized", collection.Hex())
	}
	if to == types.ZeroAddress {
		return 0, revert.ErrZeroSpender.WithDetail("mint to the zero address")
	}
	c.LastTokenID++
	c.TotalSupply++
	id := c.LastTokenID
	if err := tx.SetCollection(c); err != nil {
		return 0, err
	}
	if err := tx.SetToken(collection, id, &state.Token{Owner: to.Bytes(), MintTimestamp: now}); err != nil {
		return 0, err
	}
	if err := l.addBalance(tx, collection, to, 1); err != nil {
		return 0, err
	}
	if err := l.moveOwnership(tx, c, types.ZeroAddress, to, height); err != nil {
		return 0, err
	}
	return id, nil
}

// Token returns token id of collection or the nonexistent token query error.
func (l *Ledger) Token(tx *state.Tx, collection common.Address, id uint64) (*state.Token, error) {
	tok, err := tx.Token(collection, id)
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, revert.ErrERC721OwnerQueryForNonexistent.WithDetail("token %d", id)
	}
	return tok, nil
}

// OwnerOf returns the owner of token id.
func (l *Ledger) OwnerOf(tx *state.Tx, collection common.Address, id uint64) (common.Address, error) {
	tok, err := l.Token(tx, collection, id)
	if err != nil {
		return types.ZeroAddress, err
	}
	return tok.OwnerAddr(), nil
}

// Exists reports whether token id has been minted and not burnt.
func (l *Ledger) Exists(tx *state.Tx, collection common.Address, id uint64) (bool, error) {
	tok, err := tx.Token(collection, id)
	return tok != nil, err
}

// isApprovedOrOwner reports whether caller can move tok.
func (l *Ledger) isApprovedOrOwner(tx *state.Tx, collection common.Address, tok *state.Token,
	caller common.Address,
) (bool, error) {
	owner := tok.OwnerAddr()
	if caller == owner || caller == tok.ApprovedAddr() {
		return true, nil
	}
	return tx.IsOperator(collection, owner, caller)
}

// Approve grants spender rights over token id. The caller must own the token
// or be an operator of its owner.
func (l *Ledger) Approve(tx *state.Tx, collection, caller, spender common.Address, id uint64) error {
	tok, err := l.Token(tx, collection, id)
	if err != nil {
		return err
	}
	owner := tok.OwnerAddr()
	if caller != owner {
		ok, err := tx.IsOperator(collection, owner, caller)
		if err != nil {
			return err
		}
		if !ok {
			return revert.ErrERC721CallerNotOwnerOrApproved
		}
	}
	tok.Approved = spender.Bytes()
	if spender == types.ZeroAddress {
		tok.Approved = nil
	}
	return tx.SetToken(collection, id, tok)
}

// SetApprovalForAll grants or revokes operator rights over all tokens of
// owner.
func (l *Ledger) SetApprovalForAll(tx *state.Tx, collection, owner, operator common.Address, approved bool) error {
	if _, err := l.Collection(tx, collection); err != nil {
		return err
	}
	if operator == owner {
		return revert.ErrERC721CallerNotOwnerOrApproved.WithDetail("approve to caller")
	}
	return tx.SetOperator(collection, owner, operator, approved)
}

// Transfer moves token id from from to to on behalf of caller.
func (l *Ledger) Transfer(tx *state.Tx, collection, caller, from, to common.Address, id, height uint64) error {
	tok, err := l.Token(tx, collection, id)
	if err != nil {
		return err
	}
	if tok.OwnerAddr() != from {
		return revert.ErrERC721NotOwn
	}
	ok, err := l.isApprovedOrOwner(tx, collection, tok, caller)
	if err != nil {
		return err
	}
	if !ok {
		return revert.ErrERC721CallerNotOwnerOrApproved
	}
	if to == types.ZeroAddress {
		return revert.ErrZeroSpender.WithDetail("transfer to the zero address")
	}
	c, err := l.Collection(tx, collection)
	if err != nil {
		return err
	}
	tok.Owner = to.Bytes()
	tok.Approved = nil
	if err := tx.SetToken(collection, id, tok); err != nil {
		return err
	}
	if err := l.addBalance(tx, collection, from, -1); err != nil {
		return err
	}
	if err := l.addBalance(tx, collection, to, 1); err != nil {
		return err
	}
	if err := l.moveOwnership(tx, c, from, to, height); err != nil {
		return err
	}
	if l.Hook != nil {
		return l.Hook.OnTransfer(tx, c, id, from, to)
	}
	return nil
}

// Burn destroys token id on behalf of caller.
func (l *Ledger) Burn(tx *state.Tx, collection, caller common.Address, id, height uint64) error {
	tok, err := tx.Token(collection, id)
	if err != nil {
		return err
	}
	if tok == nil {
		return revert.ErrTokenDoesNotExist
	}
	ok, err := l.isApprovedOrOwner(tx, collection, tok, caller)
	if err != nil {
		return err
	}
	if !ok {
		return revert.ErrNotOwnerOrApproved
	}
	c, err := l.Collection(tx, collection)
	if err != nil {
		return err
	}
	owner := tok.OwnerAddr()
	c.TotalSupply--
	if err := tx.SetCollection(c); err != nil {
		return err
	}
	if err := tx.DeleteToken(collection, id); err != nil {
		return err
	}
	if err := l.addBalance(tx, collection, owner, -1); err != nil {
		return err
	}
	return l.moveOwnership(tx, c, owner, types.ZeroAddress, height)
}

func (l *Ledger) addBalance(tx *state.Tx, collection, owner common.Address, delta int) error {
	n, err := tx.Balance(collection, owner)
	if err != nil {
		return err
	}
	if delta < 0 {
		n -= uint64(-delta)
	} else {
		n += uint64(delta)
	}
	return tx.SetBalance(collection, owner, n)
}

// moveOwnership keeps follow NFT voting power in sync with token moves.
func (l *Ledger) moveOwnership(tx *state.Tx, c *state.Collection, from, to common.Address, height uint64) error {
	if c.Kind != state.CollectionFollow {
		return nil
	}
	var fromDelegatee, toDelegatee common.Address
	var err error
	if from != types.ZeroAddress {
		if fromDelegatee, err = tx.Delegatee(c.Addr(), from); err != nil {
			return err
		}
	}
	if to != types.ZeroAddress {
		if toDelegatee, err = tx.Delegatee(c.Addr(), to); err != nil {
			return err
		}
	}
	return moveDelegate(tx, c.Addr(), fromDelegatee, toDelegatee, 1, height)
}
