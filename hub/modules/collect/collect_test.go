package collect

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/hub/db"
	"go.vocdoni.io/hub/db/metadb"
	"go.vocdoni.io/hub/hub/modules"
	"go.vocdoni.io/hub/hub/modules/currency"
	"go.vocdoni.io/hub/hub/revert"
	"go.vocdoni.io/hub/types"
)

var (
	alice = common.HexToAddress("0x0a")
	bob   = common.HexToAddress("0x0b")
	carol = common.HexToAddress("0x0c")
)

type graph struct {
	owners    map[types.ProfileID]common.Address
	followers map[common.Address]bool
	currency  db.WriteTx
}

func (g *graph) OwnerOf(id types.ProfileID) (common.Address, error) {
	owner, ok := g.owners[id]
	if !ok {
		return types.ZeroAddress, revert.ErrTokenDoesNotExist
	}
	return owner, nil
}

func (g *graph) IsFollowing(_ types.ProfileID, addr common.Address) (bool, error) {
	return g.followers[addr], nil
}

func (*graph) PowerAt(types.ProfileID, common.Address, uint64) (uint64, error) { return 0, nil }

func (g *graph) CurrencyStore(common.Address) db.WriteTx { return g.currency }

func newContext(t *testing.T) *modules.Context {
	database := metadb.NewTest(t)
	store, currencyStore := database.WriteTx(), database.WriteTx()
	t.Cleanup(store.Discard)
	t.Cleanup(currencyStore.Discard)
	return &modules.Context{
		Store: store,
		Graph: &graph{
			owners:    map[types.ProfileID]common.Address{1: alice, 2: carol},
			followers: map[common.Address]bool{bob: true},
			currency:  currencyStore,
		},
		Action:    modules.ActionCollect,
		ProfileID: 1,
		PubID:     1,
		Now:       1000,
	}
}

func configure(c *qt.C, ctx *modules.Context, m modules.Module, params any) {
	cfg, err := m.ProcessConfiguration(ctx, modules.Encode(params))
	c.Assert(err, qt.IsNil)
	ctx.Config = cfg
}

func TestFree(t *testing.T) {
	c := qt.New(t)
	ctx := newContext(t)

	configure(c, ctx, Free{}, &FreeParams{})
	ctx.Actor = carol
	c.Assert(Free{}.ProcessAction(ctx), qt.IsNil)

	configure(c, ctx, Free{}, &FreeParams{FollowerOnly: true})
	c.Assert(Free{}.ProcessAction(ctx), qt.ErrorIs, revert.ErrFollowInvalid)
	ctx.Actor = bob
	c.Assert(Free{}.ProcessAction(ctx), qt.IsNil)

	_, err := Free{}.ProcessConfiguration(ctx, nil)
	c.Assert(err, qt.ErrorIs, revert.ErrInitParamsInvalid)
}

func TestLimitedTimed(t *testing.T) {
	c := qt.New(t)
	ctx := newContext(t)
	m := LimitedTimed{}

	_, err := m.ProcessConfiguration(ctx, modules.Encode(&LimitedTimedParams{Duration: 10}))
	c.Assert(err, qt.ErrorIs, revert.ErrInitParamsInvalid)

	configure(c, ctx, m, &LimitedTimedParams{CollectLimit: 2, Duration: 100})
	ctx.Actor = carol
	c.Assert(m.ProcessAction(ctx), qt.IsNil)
	c.Assert(m.ProcessAction(ctx), qt.IsNil)
	c.Assert(m.ProcessAction(ctx), qt.ErrorIs, revert.ErrMintLimitExceeded)

	n, err := Collects(ctx.Store, 1, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, uint64(2))

	// a fresh publication past its window
	ctx.PubID = 2
	ctx.Now = 1101
	c.Assert(m.ProcessAction(ctx), qt.ErrorIs, revert.ErrCollectExpired)
	ctx.Now = 1100
	c.Assert(m.ProcessAction(ctx), qt.IsNil)
}

func TestLimitedTimedNoExpiry(t *testing.T) {
	c := qt.New(t)
	ctx := newContext(t)
	m := LimitedTimed{}

	configure(c, ctx, m, &LimitedTimedParams{CollectLimit: 1, FollowerOnly: true})
	ctx.Now = 1 << 40
	ctx.Actor = carol
	c.Assert(m.ProcessAction(ctx), qt.ErrorIs, revert.ErrFollowInvalid)
	ctx.Actor = bob
	c.Assert(m.ProcessAction(ctx), qt.IsNil)
}

func TestFee(t *testing.T) {
	c := qt.New(t)
	ctx := newContext(t)

	token := &currency.ERC20{}
	tokenAddr := common.HexToAddress("0xee")
	feeAddr := common.HexToAddress("0xfe")
	recipient := common.HexToAddress("0x0d")
	m := &Fee{Address: feeAddr, Currencies: map[common.Address]currency.Currency{tokenAddr: token}}

	for _, params := range []FeeParams{
		{Currency: tokenAddr.Bytes(), Recipient: recipient.Bytes()},
		{Amount: 10, Currency: tokenAddr.Bytes()},
		{Amount: 10, Currency: tokenAddr.Bytes(), Recipient: recipient.Bytes(), ReferralFee: BPSMax + 1},
		{Amount: 10, Currency: carol.Bytes(), Recipient: recipient.Bytes()},
	} {
		params := params
		_, err := m.ProcessConfiguration(ctx, modules.Encode(&params))
		c.Assert(err, qt.ErrorIs, revert.ErrInitParamsInvalid)
	}

	configure(c, ctx, m, &FeeParams{
		Amount:      100,
		Currency:    tokenAddr.Bytes(),
		Recipient:   recipient.Bytes(),
		ReferralFee: 1000,
	})
	ctx.Actor = bob

	ctx.Data = modules.Encode(&FeeData{Currency: tokenAddr.Bytes(), Amount: 99})
	c.Assert(m.ProcessAction(ctx), qt.ErrorIs, revert.ErrModuleDataMismatch)
	ctx.Data = nil
	c.Assert(m.ProcessAction(ctx), qt.ErrorIs, revert.ErrModuleDataMismatch)

	ctx.Data = modules.Encode(&FeeData{Currency: tokenAddr.Bytes(), Amount: 100})
	c.Assert(m.ProcessAction(ctx), qt.ErrorIs, revert.ErrERC20InsufficientAllowance)

	store := ctx.Graph.CurrencyStore(tokenAddr)
	c.Assert(token.Mint(store, bob, 1000), qt.IsNil)
	c.Assert(token.Approve(store, bob, feeAddr, 1000), qt.IsNil)

	// collected through a mirror of profile 2
	ctx.ReferrerProfileID = 2
	c.Assert(m.ProcessAction(ctx), qt.IsNil)

	for addr, want := range map[common.Address]uint64{bob: 900, carol: 10, recipient: 90} {
		bal, err := token.BalanceOf(store, addr)
		c.Assert(err, qt.IsNil)
		c.Assert(bal, qt.Equals, want, qt.Commentf("%s", addr.Hex()))
	}
}

func TestRevert(t *testing.T) {
	qt.Assert(t, Revert{}.ProcessAction(&modules.Context{}), qt.ErrorIs, revert.ErrCollectNotAllowed)
}
