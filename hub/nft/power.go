package nft

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/hub/hub/revert"
	"go.vocdoni.io/hub/hub/state"
	"go.vocdoni.io/hub/types"
)

// Delegate moves the follow NFT power of delegator to delegatee. Power is
// only counted once delegated; delegating to oneself activates it.
func (l *Ledger) Delegate(tx *state.Tx, collection, delegator, delegatee common.Address, height uint64) error {
	c, err := l.Collection(tx, collection)
	if err != nil {
		return err
	}
	if c.Kind != state.CollectionFollow {
		return revert.ErrNotHub.WithDetail("%s is not a follow NFT", collection.Hex())
	}
	previous, err := tx.Delegatee(collection, delegator)
	if err != nil {
		return err
	}
	if err := tx.SetDelegatee(collection, delegator, delegatee); err != nil {
		return err
	}
	balance, err := tx.Balance(collection, delegator)
	if err != nil {
		return err
	}
	return moveDelegate(tx, collection, previous, delegatee, balance, height)
}

// PowerAt returns the power delegated to user at block height block. Asking
// about a block after current fails with BlockNumberInvalid.
func (l *Ledger) PowerAt(tx *state.Tx, collection, user common.Address, block, current uint64) (uint64, error) {
	if block > current {
		return 0, revert.ErrBlockNumberInvalid
	}
	list, err := tx.PowerCheckpoints(collection, user)
	if err != nil {
		return 0, err
	}
	return valueAt(list, block), nil
}

// DelegatedSupplyAt returns the total delegated power at block.
func (l *Ledger) DelegatedSupplyAt(tx *state.Tx, collection common.Address, block, current uint64) (uint64, error) {
	if block > current {
		return 0, revert.ErrBlockNumberInvalid
	}
	list, err := tx.SupplyCheckpoints(collection)
	if err != nil {
		return 0, err
	}
	return valueAt(list, block), nil
}

func valueAt(list []state.Checkpoint, block uint64) uint64 {
	i := sort.Search(len(list), func(i int) bool { return list[i].Block > block })
	if i == 0 {
		return 0
	}
	return list[i-1].Value
}

func last(list []state.Checkpoint) uint64 {
	if len(list) == 0 {
		return 0
	}
	return list[len(list)-1].Value
}

// write records value at height, overwriting a checkpoint of the same block.
func write(list []state.Checkpoint, value, height uint64) []state.Checkpoint {
	if n := len(list); n > 0 && list[n-1].Block == height {
		list[n-1].Value = value
		return list
	}
	return append(list, state.Checkpoint{Block: height, Value: value})
}

func moveDelegate(tx *state.Tx, collection, from, to common.Address, amount, height uint64) error {
	if amount == 0 || from == to {
		return nil
	}
	if from != types.ZeroAddress {
		list, err := tx.PowerCheckpoints(collection, from)
		if err != nil {
			return err
		}
		if err := tx.SetPowerCheckpoints(collection, from, write(list, last(list)-amount, height)); err != nil {
			return err
		}
	}
	if to != types.ZeroAddress {
		list, err := tx.PowerCheckpoints(collection, to)
		if err != nil {
			return err
		}
		if err := tx.SetPowerCheckpoints(collection, to, write(list, last(list)+amount, height)); err != nil {
			return err
		}
	}
	if from != types.ZeroAddress && to != types.ZeroAddress {
		return nil
	}
	supply, err := tx.SupplyCheckpoints(collection)
	if err != nil {
		return err
	}
	if from == types.ZeroAddress {
		return tx.SetSupplyCheckpoints(collection, write(supply, last(supply)+amount, height))
	}
	return tx.SetSupplyCheckpoints(collection, write(supply, last(supply)-amount, height))
}
