// Package follow holds the built-in follow modules.
package follow

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/hub/db"
	"go.vocdoni.io/hub/hub/modules"
	"go.vocdoni.io/hub/hub/revert"
	"go.vocdoni.io/hub/types"
)

// ApprovalParams is the optional configuration of Approval: the addresses
// approved up front.
type ApprovalParams struct {
	Approved [][]byte
}

// Approval only lets through followers the profile owner approved. Each
// approval is consumed by one follow.
type Approval struct{}

var (
	_ modules.Module         = Approval{}
	_ modules.FollowApprover = Approval{}
)

func approvalKey(profileID types.ProfileID, addr common.Address) []byte {
	return append(profileID.Bytes(), addr.Bytes()...)
}

// Kind implements modules.Module.
func (Approval) Kind() types.ModuleKind { return types.FollowModule }

// ProcessConfiguration implements modules.Module.
func (Approval) ProcessConfiguration(ctx *modules.Context, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var params ApprovalParams
	if err := modules.Decode(data, &params); err != nil {
		return nil, err
	}
	for _, addr := range modules.Addrs(params.Approved) {
		if err := ctx.Store.Set(approvalKey(ctx.ProfileID, addr), []byte{1}); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// ProcessAction implements modules.Module.
func (Approval) ProcessAction(ctx *modules.Context) error {
	key := approvalKey(ctx.ProfileID, ctx.Actor)
	if _, err := ctx.Store.Get(key); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return revert.ErrFollowNotApproved
		}
		return err
	}
	return ctx.Store.Delete(key)
}

// Approve implements modules.FollowApprover.
func (Approval) Approve(ctx *modules.Context, addrs []common.Address, approved []bool) error {
	if len(addrs) != len(approved) {
		return revert.ErrArrayMismatch
	}
	for i, addr := range addrs {
		key := approvalKey(ctx.ProfileID, addr)
		var err error
		if approved[i] {
			err = ctx.Store.Set(key, []byte{1})
		} else {
			err = ctx.Store.Delete(key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// IsApproved reports whether addr may follow profileID.
func IsApproved(store db.Reader, profileID types.ProfileID, addr common.Address) (bool, error) {
	return db.Has(store, approvalKey(profileID, addr))
}

// Revert rejects every follow, turning a profile unfollowable.
type Revert struct{}

var _ modules.Module = Revert{}

// Kind implements modules.Module.
func (Revert) Kind() types.ModuleKind { return types.FollowModule }

// ProcessConfiguration implements modules.Module.
func (Revert) ProcessConfiguration(*modules.Context, []byte) ([]byte, error) { return nil, nil }

// ProcessAction implements modules.Module.
func (Revert) ProcessAction(*modules.Context) error { return revert.ErrFollowInvalid }
