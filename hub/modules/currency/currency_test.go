package currency

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/hub/db/metadb"
	"go.vocdoni.io/hub/hub/revert"
)

func TestTransferFrom(t *testing.T) {
	c := qt.New(t)
	database := metadb.NewTest(t)
	store := database.WriteTx()
	defer store.Discard()

	payer := common.HexToAddress("0x01")
	spender := common.HexToAddress("0x02")
	payee := common.HexToAddress("0x03")

	for _, legacy := range []bool{false, true} {
		token := &ERC20{Legacy: legacy}
		want := revert.ErrERC20InsufficientAllowance
		if legacy {
			want = revert.ErrERC20TransferExceedsAllowance
		}
		c.Assert(token.TransferFrom(store, spender, payer, payee, 1), qt.ErrorIs, want)
	}

	token := &ERC20{}
	c.Assert(token.Approve(store, payer, spender, 100), qt.IsNil)
	c.Assert(token.TransferFrom(store, spender, payer, payee, 10), qt.ErrorIs, ErrInsufficientBalance)

	c.Assert(token.Mint(store, payer, 50), qt.IsNil)
	c.Assert(token.TransferFrom(store, spender, payer, payee, 10), qt.IsNil)

	bal, err := token.BalanceOf(store, payee)
	c.Assert(err, qt.IsNil)
	c.Assert(bal, qt.Equals, uint64(10))
	bal, err = token.BalanceOf(store, payer)
	c.Assert(err, qt.IsNil)
	c.Assert(bal, qt.Equals, uint64(40))
	left, err := token.Allowance(store, payer, spender)
	c.Assert(err, qt.IsNil)
	c.Assert(left, qt.Equals, uint64(90))
}
