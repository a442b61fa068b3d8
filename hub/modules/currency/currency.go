// Package currency models the ERC-20 tokens fee collect modules charge in.
// Currencies are external to the hub; their balances live in a store the hub
// hands them so payments commit or roll back with the collect that caused
// them.
package currency

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/hub/db"
	"go.vocdoni.io/hub/hub/revert"
)

// ErrInsufficientBalance is returned when the payer cannot cover a transfer.
var ErrInsufficientBalance = errors.New("ERC20: transfer amount exceeds balance")

// Currency moves funds on behalf of an approved spender.
type Currency interface {
	TransferFrom(store db.WriteTx, spender, from, to common.Address, amount uint64) error
}

// ERC20 is a fungible token ledger. Legacy selects the allowance error wording
// of older token contracts.
type ERC20 struct {
	Legacy bool
}

var _ Currency = (*ERC20)(nil)

func balanceKey(owner common.Address) []byte {
	return append([]byte("b/"), owner.Bytes()...)
}

func allowanceKey(owner, spender common.Address) []byte {
	k := append([]byte("a/"), owner.Bytes()...)
	return append(k, spender.Bytes()...)
}

// BalanceOf returns the balance of owner.
func (e *ERC20) BalanceOf(store db.Reader, owner common.Address) (uint64, error) {
	return db.GetUint64(store, balanceKey(owner))
}

// Allowance returns how much spender may still move from owner.
func (e *ERC20) Allowance(store db.Reader, owner, spender common.Address) (uint64, error) {
	return db.GetUint64(store, allowanceKey(owner, spender))
}

// Mint credits amount to to.
func (e *ERC20) Mint(store db.WriteTx, to common.Address, amount uint64) error {
	n, err := e.BalanceOf(store, to)
	if err != nil {
		return err
	}
	return db.SetUint64(store, balanceKey(to), n+amount)
}

// Approve sets the allowance of spender over owner's funds.
func (e *ERC20) Approve(store db.WriteTx, owner, spender common.Address, amount uint64) error {
	return db.SetUint64(store, allowanceKey(owner, spender), amount)
}

// TransferFrom implements Currency.
func (e *ERC20) TransferFrom(store db.WriteTx, spender, from, to common.Address, amount uint64) error {
	allowance, err := e.Allowance(store, from, spender)
	if err != nil {
		return err
	}
	if allowance < amount {
		if e.Legacy {
			return revert.ErrERC20TransferExceedsAllowance
		}
		return revert.ErrERC20InsufficientAllowance
	}
	balance, err := e.BalanceOf(store, from)
	if err != nil {
		return err
	}
	if balance < amount {
		return ErrInsufficientBalance
	}
	if err := db.SetUint64(store, allowanceKey(from, spender), allowance-amount); err != nil {
		return err
	}
	if err := db.SetUint64(store, balanceKey(from), balance-amount); err != nil {
		return err
	}
	received, err := e.BalanceOf(store, to)
	if err != nil {
		return err
	}
	return db.SetUint64(store, balanceKey(to), received+amount)
}
