// Package collect holds the built-in collect modules.
package collect

import (
	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/hub/db"
	"go.vocdoni.io/hub/hub/modules"
	"go.vocdoni.io/hub/hub/modules/currency"
	"go.vocdoni.io/hub/hub/revert"
	"go.vocdoni.io/hub/types"
)

// BPSMax is the basis points denominator of referral fees.
const BPSMax = 10000

func checkFollower(ctx *modules.Context, followerOnly bool) error {
	if !followerOnly {
		return nil
	}
	following, err := ctx.Graph.IsFollowing(ctx.ProfileID, ctx.Actor)
	if err != nil {
		return err
	}
	if !following {
		return revert.ErrFollowInvalid
	}
	return nil
}

func pubKey(ctx *modules.Context) []byte {
	return append(ctx.ProfileID.Bytes(), ctx.PubID.Bytes()...)
}

// FreeParams configures Free.
type FreeParams struct {
	FollowerOnly bool
}

// Free lets anyone, or only followers, collect for free.
type Free struct{}

var _ modules.Module = Free{}

// Kind implements modules.Module.
func (Free) Kind() types.ModuleKind { return types.CollectModule }

// ProcessConfiguration implements modules.Module.
func (Free) ProcessConfiguration(_ *modules.Context, data []byte) ([]byte, error) {
	var params FreeParams
	if err := modules.Decode(data, &params); err != nil {
		return nil, err
	}
	return modules.Encode(&params), nil
}

// ProcessAction implements modules.Module.
func (Free) ProcessAction(ctx *modules.Context) error {
	var params FreeParams
	if err := modules.Decode(ctx.Config, &params); err != nil {
		return err
	}
	return checkFollower(ctx, params.FollowerOnly)
}

// LimitedTimedParams configures LimitedTimed. A zero Duration never expires.
type LimitedTimedParams struct {
	CollectLimit uint64
	Duration     uint64
	FollowerOnly bool
}

// LimitedTimedConfig is what LimitedTimed keeps per publication.
type LimitedTimedConfig struct {
	CollectLimit uint64
	EndTimestamp uint64
	FollowerOnly bool
}

// LimitedTimed caps the number of collects and closes collecting after a
// window.
type LimitedTimed struct{}

var _ modules.Module = LimitedTimed{}

// Kind implements modules.Module.
func (LimitedTimed) Kind() types.ModuleKind { return types.CollectModule }

// ProcessConfiguration implements modules.Module.
func (LimitedTimed) ProcessConfiguration(ctx *modules.Context, data []byte) ([]byte, error) {
	var params LimitedTimedParams
	if err := modules.Decode(data, &params); err != nil {
		return nil, err
	}
	if params.CollectLimit == 0 {
		return nil, revert.ErrInitParamsInvalid.WithDetail("zero collect limit")
	}
	cfg := LimitedTimedConfig{
		CollectLimit: params.CollectLimit,
		FollowerOnly: params.FollowerOnly,
	}
	if params.Duration > 0 {
		cfg.EndTimestamp = ctx.Now + params.Duration
	}
	return modules.Encode(&cfg), nil
}

// ProcessAction implements modules.Module.
func (LimitedTimed) ProcessAction(ctx *modules.Context) error {
	var cfg LimitedTimedConfig
	if err := modules.Decode(ctx.Config, &cfg); err != nil {
		return err
	}
	if err := checkFollower(ctx, cfg.FollowerOnly); err != nil {
		return err
	}
	if cfg.EndTimestamp != 0 && ctx.Now > cfg.EndTimestamp {
		return revert.ErrCollectExpired
	}
	key := pubKey(ctx)
	n, err := db.GetUint64(ctx.Store, key)
	if err != nil {
		return err
	}
	if n >= cfg.CollectLimit {
		return revert.ErrMintLimitExceeded.WithDetail("limit %d", cfg.CollectLimit)
	}
	return db.SetUint64(ctx.Store, key, n+1)
}

// Collects returns how many times a publication was collected through
// LimitedTimed.
func Collects(store db.Reader, profileID types.ProfileID, pubID types.PubID) (uint64, error) {
	return db.GetUint64(store, append(profileID.Bytes(), pubID.Bytes()...))
}

// FeeParams configures Fee.
type FeeParams struct {
	Amount       uint64
	Currency     []byte
	Recipient    []byte
	ReferralFee  uint16
	FollowerOnly bool
}

// FeeData is the collect input Fee expects, echoing the configured price so
// the collector cannot be charged more than agreed.
type FeeData struct {
	Currency []byte
	Amount   uint64
}

// Fee charges collectors in an external currency and pays a share to the
// mirror that referred them.
type Fee struct {
	// Address is the module address, the spender collectors approve.
	Address    common.Address
	Currencies map[common.Address]currency.Currency
}

var _ modules.Module = (*Fee)(nil)

// Kind implements modules.Module.
func (*Fee) Kind() types.ModuleKind { return types.CollectModule }

// ProcessConfiguration implements modules.Module.
func (f *Fee) ProcessConfiguration(_ *modules.Context, data []byte) ([]byte, error) {
	var params FeeParams
	if err := modules.Decode(data, &params); err != nil {
		return nil, err
	}
	switch {
	case params.Amount == 0:
		return nil, revert.ErrInitParamsInvalid.WithDetail("zero amount")
	case len(params.Recipient) == 0 || common.BytesToAddress(params.Recipient) == types.ZeroAddress:
		return nil, revert.ErrInitParamsInvalid.WithDetail("zero recipient")
	case params.ReferralFee > BPSMax:
		return nil, revert.ErrInitParamsInvalid.WithDetail("referral fee above %d", BPSMax)
	}
	if _, ok := f.Currencies[common.BytesToAddress(params.Currency)]; !ok {
		return nil, revert.ErrInitParamsInvalid.WithDetail("currency not supported")
	}
	return modules.Encode(&params), nil
}

// ProcessAction implements modules.Module.
func (f *Fee) ProcessAction(ctx *modules.Context) error {
	var params FeeParams
	if err := modules.Decode(ctx.Config, &params); err != nil {
		return err
	}
	if err := checkFollower(ctx, params.FollowerOnly); err != nil {
		return err
	}
	var data FeeData
	if err := modules.Decode(ctx.Data, &data); err != nil {
		return revert.ErrModuleDataMismatch
	}
	currencyAddr := common.BytesToAddress(params.Currency)
	if common.BytesToAddress(data.Currency) != currencyAddr || data.Amount != params.Amount {
		return revert.ErrModuleDataMismatch
	}
	token, ok := f.Currencies[currencyAddr]
	if !ok {
		return revert.ErrInitParamsInvalid.WithDetail("currency not supported")
	}
	store := ctx.Graph.CurrencyStore(currencyAddr)
	amount := params.Amount
	if params.ReferralFee > 0 && ctx.ReferrerProfileID != 0 && ctx.ReferrerProfileID != ctx.ProfileID {
		referral := amount * uint64(params.ReferralFee) / BPSMax
		if referral > 0 {
			referrer, err := ctx.Graph.OwnerOf(ctx.ReferrerProfileID)
			if err != nil {
				return err
			}
			if err := token.TransferFrom(store, f.Address, ctx.Actor, referrer, referral); err != nil {
				return err
			}
			amount -= referral
		}
	}
	return token.TransferFrom(store, f.Address, ctx.Actor, common.BytesToAddress(params.Recipient), amount)
}

// Revert rejects every collect.
type Revert struct{}

var _ modules.Module = Revert{}

// Kind implements modules.Module.
func (Revert) Kind() types.ModuleKind { return types.CollectModule }

// ProcessConfiguration implements modules.Module.
func (Revert) ProcessConfiguration(*modules.Context, []byte) ([]byte, error) { return nil, nil }

// ProcessAction implements modules.Module.
func (Revert) ProcessAction(*modules.Context) error { return revert.ErrCollectNotAllowed }
