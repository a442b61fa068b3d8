// Package whitelist keeps the governance-managed lists of admitted modules and
// profile creators, and validates module configurations.
package whitelist

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/hub/hub/governance"
	"go.vocdoni.io/hub/hub/modules"
	"go.vocdoni.io/hub/hub/revert"
	"go.vocdoni.io/hub/hub/state"
	"go.vocdoni.io/hub/types"
)

func notWhitelisted(kind types.ModuleKind) *revert.Error {
	switch kind {
	case types.FollowModule:
		return revert.ErrFollowModuleNotWhitelisted
	case types.CollectModule:
		return revert.ErrCollectModuleNotWhitelisted
	default:
		return revert.ErrReferenceModuleNotWhitelisted
	}
}

// RequireProfileCreator fails unless addr may create profiles.
func RequireProfileCreator(tx *state.Tx, addr common.Address) error {
	ok, err := tx.Whitelisted(state.ListProfileCreators, addr)
	if err != nil {
		return err
	}
	if !ok {
		return revert.ErrProfileCreatorNotWhitelisted
	}
	return nil
}

// RequireModule fails with the kind specific error unless addr is an admitted
// module of that kind.
func RequireModule(tx *state.Tx, kind types.ModuleKind, addr common.Address) error {
	ok, err := tx.Whitelisted(state.ListModules(kind), addr)
	if err != nil {
		return err
	}
	if !ok {
		return notWhitelisted(kind)
	}
	return nil
}

// RequireCollectModule is RequireModule for collect modules.
func RequireCollectModule(tx *state.Tx, addr common.Address) error {
	return RequireModule(tx, types.CollectModule, addr)
}

// RequireFollowModule is RequireModule for follow modules.
func RequireFollowModule(tx *state.Tx, addr common.Address) error {
	return RequireModule(tx, types.FollowModule, addr)
}

// RequireReferenceModule is RequireModule for reference modules.
func RequireReferenceModule(tx *state.Tx, addr common.Address) error {
	return RequireModule(tx, types.ReferenceModule, addr)
}

// SetProfileCreator admits or removes a profile creator. Governance only.
func SetProfileCreator(tx *state.Tx, caller, addr common.Address, whitelisted bool) error {
	if err := governance.RequireGovernance(tx, caller); err != nil {
		return err
	}
	return tx.SetWhitelisted(state.ListProfileCreators, addr, whitelisted)
}

// SetModule admits or removes a module. Governance only.
func SetModule(tx *state.Tx, caller common.Address, kind types.ModuleKind, addr common.Address, whitelisted bool) error {
	if err := governance.RequireGovernance(tx, caller); err != nil {
		return err
	}
	return tx.SetWhitelisted(state.ListModules(kind), addr, whitelisted)
}

// List returns the admitted modules of kind.
func List(tx *state.Tx, kind types.ModuleKind) ([]common.Address, error) {
	return tx.ListWhitelisted(state.ListModules(kind))
}

// ListProfileCreators returns the admitted profile creators.
func ListProfileCreators(tx *state.Tx) ([]common.Address, error) {
	return tx.ListWhitelisted(state.ListProfileCreators)
}

// Resolve returns the implementation of an admitted module. An admitted
// address with no implementation behind it is treated as not admitted.
func Resolve(tx *state.Tx, registry *modules.Registry, kind types.ModuleKind, addr common.Address) (modules.Module, error) {
	if err := RequireModule(tx, kind, addr); err != nil {
		return nil, err
	}
	m, ok := registry.Get(addr)
	if !ok || m.Kind() != kind {
		return nil, notWhitelisted(kind).WithDetail("no %s module implementation at %s", kind, addr.Hex())
	}
	return m, nil
}

// ValidateInitParams runs the module configuration hook and returns the data
// to keep. When expected is not nil the returned data must match it. A module
// rejecting its configuration without a reason fails InitParamsInvalid.
func ValidateInitParams(m modules.Module, ctx *modules.Context, data, expected []byte) ([]byte, error) {
	ret, err := m.ProcessConfiguration(ctx, data)
	if err != nil {
		if _, ok := revert.As(err); ok {
			return nil, err
		}
		return nil, revert.ErrInitParamsInvalid.WithDetail("%v", err)
	}
	if expected != nil && !bytes.Equal(ret, expected) {
		return nil, revert.ErrModuleDataMismatch
	}
	return ret, nil
}
