// Package identity manages profiles: handle rules, creation, ownership and
// dispatcher authorization. Profile ownership is the profile NFT ledger.
package identity

import (
	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/hub/hub/nft"
	"go.vocdoni.io/hub/hub/revert"
	"go.vocdoni.io/hub/hub/state"
	"go.vocdoni.io/hub/hub/whitelist"
	"go.vocdoni.io/hub/types"
)

func isAlphanumeric(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z')
}

func isSeparator(b byte) bool {
	return b == '.' || b == '-' || b == '_'
}

// ValidateHandle checks a handle is 1 to MaxHandleLength bytes of lowercase
// letters, digits, '.', '-' and '_', starting with a letter or digit.
func ValidateHandle(handle string) error {
	if len(handle) == 0 || len(handle) > types.MaxHandleLength {
		return revert.ErrHandleLengthInvalid
	}
	if isSeparator(handle[0]) {
		return revert.ErrHandleFirstCharInvalid
	}
	for i := 0; i < len(handle); i++ {
		b := handle[i]
		if !isAlphanumeric(b) && !isSeparator(b) {
			return revert.ErrHandleContainsInvalidCharacters
		}
	}
	return nil
}

// ValidateImageURI checks the profile image URI length.
func ValidateImageURI(uri string) error {
	if len(uri) > types.MaxProfileImageURILength {
		return revert.ErrProfileImageURILengthInvalid
	}
	return nil
}

// Registry implements the profile operations on top of the profile NFT.
type Registry struct {
	Ledger *nft.Ledger
}

func (r *Registry) collection() common.Address {
	return r.Ledger.Hub
}

// CreateProfileParams are the inputs of CreateProfile.
type CreateProfileParams struct {
	To       common.Address
	Handle   string
	ImageURI string
}

// CreateProfile mints a new profile to params.To on behalf of creator. The
// follow module, if any, is attached by the caller in the same transaction.
func (r *Registry) CreateProfile(tx *state.Tx, creator common.Address, params *CreateProfileParams,
	now, height uint64,
) (*state.Profile, error) {
	if err := whitelist.RequireProfileCreator(tx, creator); err != nil {
		return nil, err
	}
	taken, err := tx.ProfileIDByHandle(params.Handle)
	if err != nil {
		return nil, err
	}
	if taken != 0 {
		return nil, revert.ErrHandleTaken
	}
	if err := ValidateHandle(params.Handle); err != nil {
		return nil, err
	}
	if err := ValidateImageURI(params.ImageURI); err != nil {
		return nil, err
	}
	id, err := tx.NextProfileID()
	if err != nil {
		return nil, err
	}
	tokenID, err := r.Ledger.Mint(tx, r.Ledger.Hub, r.collection(), params.To, now, height)
	if err != nil {
		return nil, err
	}
	if tokenID != uint64(id) {
		return nil, revert.ErrTokenDoesNotExist.WithDetail("profile %d minted as token %d", id, tokenID)
	}
	p := &state.Profile{
		ID:        uint64(id),
		Handle:    params.Handle,
		ImageURI:  params.ImageURI,
		CreatedAt: now,
	}
	if err := tx.SetProfile(p); err != nil {
		return nil, err
	}
	if err := tx.SetHandle(params.Handle, id); err != nil {
		return nil, err
	}
	return p, nil
}

// Profile returns a profile or TokenDoesNotExist.
func (r *Registry) Profile(tx *state.Tx, id types.ProfileID) (*state.Profile, error) {
	p, err := tx.Profile(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, revert.ErrTokenDoesNotExist.WithDetail("profile %d", id)
	}
	return p, nil
}

// OwnerOf returns the owner of a profile.
func (r *Registry) OwnerOf(tx *state.Tx, id types.ProfileID) (common.Address, error) {
	tok, err := tx.Token(r.collection(), uint64(id))
	if err != nil {
		return types.ZeroAddress, err
	}
	if tok == nil {
		return types.ZeroAddress, revert.ErrTokenDoesNotExist.WithDetail("profile %d", id)
	}
	return tok.OwnerAddr(), nil
}

// Authorize checks caller may act for profile id. Strict requires the owner;
// otherwise the dispatcher is accepted too.
func (r *Registry) Authorize(tx *state.Tx, id types.ProfileID, caller common.Address, strict bool) (*state.Profile, error) {
	owner, err := r.OwnerOf(tx, id)
	if err != nil {
		return nil, err
	}
	p, err := r.Profile(tx, id)
	if err != nil {
		return nil, err
	}
	if caller == owner {
		return p, nil
	}
	if strict {
		return nil, revert.ErrNotProfileOwner
	}
	if caller != types.ZeroAddress && caller == p.DispatcherAddr() {
		return p, nil
	}
	return nil, revert.ErrNotProfileOwnerOrValid
}

// SetDispatcher sets or clears the dispatcher of profile id. Only the owner
// sets one; the current dispatcher may also clear itself but fails
// NotDispatcher on anything else.
func (r *Registry) SetDispatcher(tx *state.Tx, caller common.Address, id types.ProfileID, dispatcher common.Address) error {
	owner, err := r.OwnerOf(tx, id)
	if err != nil {
		return err
	}
	p, err := r.Profile(tx, id)
	if err != nil {
		return err
	}
	switch {
	case caller == owner:
	case caller == types.ZeroAddress || caller != p.DispatcherAddr():
		return revert.ErrNotProfileOwner
	case dispatcher != types.ZeroAddress:
		return revert.ErrNotDispatcher
	}
	p.SetDispatcherAddr(dispatcher)
	return tx.SetProfile(p)
}

// SetImageURI changes the image of profile id. Owner or dispatcher.
func (r *Registry) SetImageURI(tx *state.Tx, caller common.Address, id types.ProfileID, uri string) error {
	p, err := r.Authorize(tx, id, caller, false)
	if err != nil {
		return err
	}
	if err := ValidateImageURI(uri); err != nil {
		return err
	}
	p.ImageURI = uri
	return tx.SetProfile(p)
}

// Transfer moves profile id to a new owner and clears its dispatcher.
func (r *Registry) Transfer(tx *state.Tx, caller, from, to common.Address, id types.ProfileID, height uint64) error {
	if err := r.Ledger.Transfer(tx, r.collection(), caller, from, to, uint64(id), height); err != nil {
		return err
	}
	p, err := r.Profile(tx, id)
	if err != nil {
		return err
	}
	p.Dispatcher = nil
	return tx.SetProfile(p)
}

// ProfileIDByHandle resolves a handle, zero if unknown.
func (r *Registry) ProfileIDByHandle(tx *state.Tx, handle string) (types.ProfileID, error) {
	return tx.ProfileIDByHandle(handle)
}
