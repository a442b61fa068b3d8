// Package builtin wires the modules shipped with the hub at their
// well-known addresses.
package builtin

import (
	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/hub/crypto/ethereum"
	"go.vocdoni.io/hub/hub/modules"
	"go.vocdoni.io/hub/hub/modules/collect"
	"go.vocdoni.io/hub/hub/modules/currency"
	"go.vocdoni.io/hub/hub/modules/follow"
	"go.vocdoni.io/hub/hub/modules/reference"
)

// Module and currency addresses.
var (
	FreeCollect     = Address("FreeCollectModule")
	LimitedCollect  = Address("LimitedTimedCollectModule")
	FeeCollect      = Address("FeeCollectModule")
	RevertCollect   = Address("RevertCollectModule")
	ApprovalFollow  = Address("ApprovalFollowModule")
	RevertFollow    = Address("RevertFollowModule")
	FollowerOnlyRef = Address("FollowerOnlyReferenceModule")
	Currency        = Address("Currency")
	LegacyCurrency  = Address("LegacyCurrency")
)

// Address derives the address a built-in module is registered at.
func Address(name string) common.Address {
	return ethereum.DeriveAddress([]byte("module"), []byte(name))
}

// Modules returns the built-in modules keyed by address.
func Modules() map[common.Address]modules.Module {
	return map[common.Address]modules.Module{
		FreeCollect:    collect.Free{},
		LimitedCollect: collect.LimitedTimed{},
		FeeCollect: &collect.Fee{
			Address: FeeCollect,
			Currencies: map[common.Address]currency.Currency{
				Currency:       &currency.ERC20{},
				LegacyCurrency: &currency.ERC20{Legacy: true},
			},
		},
		RevertCollect:   collect.Revert{},
		ApprovalFollow:  follow.Approval{},
		RevertFollow:    follow.Revert{},
		FollowerOnlyRef: reference.FollowerOnly{},
	}
}

// Registry returns a registry holding every built-in module.
func Registry() (*modules.Registry, error) {
	r := modules.NewRegistry()
	for addr, m := range Modules() {
		if err := r.Register(addr, m); err != nil {
			return nil, err
		}
	}
	return r, nil
}
