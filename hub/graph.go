package hub

import (
	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/hub/db"
	"go.vocdoni.io/hub/hub/modules"
	"go.vocdoni.io/hub/hub/revert"
	"go.vocdoni.io/hub/hub/state"
	"go.vocdoni.io/hub/hub/whitelist"
	"go.vocdoni.io/hub/types"
)

// graph is the modules.Graph view of one transaction.
type graph struct {
	h  *Hub
	tx *state.Tx
}

var _ modules.Graph = (*graph)(nil)

func (g *graph) OwnerOf(profileID types.ProfileID) (common.Address, error) {
	return g.h.identity.OwnerOf(g.tx, profileID)
}

func (g *graph) IsFollowing(profileID types.ProfileID, addr common.Address) (bool, error) {
	return g.h.isFollowing(g.tx, profileID, addr)
}

func (g *graph) PowerAt(profileID types.ProfileID, addr common.Address, block uint64) (uint64, error) {
	p, err := g.h.identity.Profile(g.tx, profileID)
	if err != nil {
		return 0, err
	}
	if p.FollowNFTAddr() == types.ZeroAddress {
		return 0, nil
	}
	return g.h.ledger.PowerAt(g.tx, p.FollowNFTAddr(), addr, block, g.h.clock.Height())
}

func (g *graph) CurrencyStore(currency common.Address) db.WriteTx {
	return g.tx.ModuleStore(currency)
}

func (h *Hub) isFollowing(tx *state.Tx, profileID types.ProfileID, addr common.Address) (bool, error) {
	p, err := tx.Profile(profileID)
	if err != nil || p == nil {
		return false, err
	}
	if p.FollowNFTAddr() == types.ZeroAddress {
		return false, nil
	}
	n, err := tx.Balance(p.FollowNFTAddr(), addr)
	return n > 0, err
}

// moduleContext builds the context handed to the module at addr.
func (h *Hub) moduleContext(tx *state.Tx, addr common.Address) *modules.Context {
	return &modules.Context{
		Store:  tx.ModuleStore(addr),
		Graph:  &graph{h: h, tx: tx},
		Now:    h.clock.Timestamp(),
		Height: h.clock.Height(),
	}
}

// configureModule resolves an admitted module of kind at addr and runs its
// configuration hook for the profile (and publication) it is attached to.
func (h *Hub) configureModule(tx *state.Tx, kind types.ModuleKind, addr common.Address,
	profileID types.ProfileID, pubID types.PubID, actor common.Address, data []byte,
) ([]byte, error) {
	m, err := whitelist.Resolve(tx, h.modules, kind, addr)
	if err != nil {
		return nil, err
	}
	ctx := h.moduleContext(tx, addr)
	ctx.ProfileID = profileID
	ctx.PubID = pubID
	ctx.Actor = actor
	return whitelist.ValidateInitParams(m, ctx, data, nil)
}

// attachedModule returns the implementation of a module already attached to
// a profile or publication. It may have been removed from the whitelist
// since, which does not detach it.
func (h *Hub) attachedModule(kind types.ModuleKind, addr common.Address) (modules.Module, error) {
	m, ok := h.modules.Get(addr)
	if !ok || m.Kind() != kind {
		switch kind {
		case types.FollowModule:
			return nil, revert.ErrFollowModuleNotWhitelisted.WithDetail("no implementation at %s", addr.Hex())
		case types.CollectModule:
			return nil, revert.ErrCollectModuleNotWhitelisted.WithDetail("no implementation at %s", addr.Hex())
		default:
			return nil, revert.ErrReferenceModuleNotWhitelisted.WithDetail("no implementation at %s", addr.Hex())
		}
	}
	return m, nil
}

// ValidateModuleConfig previews the configuration of an admitted module
// without keeping any effect. When expected is not nil the data the module
// would keep must match it.
func (h *Hub) ValidateModuleConfig(kind types.ModuleKind, module common.Address, profileID types.ProfileID,
	data, expected []byte,
) ([]byte, error) {
	var ret []byte
	err := h.view(func(tx *state.Tx) error {
		m, err := whitelist.Resolve(tx, h.modules, kind, module)
		if err != nil {
			return err
		}
		ctx := h.moduleContext(tx, module)
		ctx.ProfileID = profileID
		ret, err = whitelist.ValidateInitParams(m, ctx, data, expected)
		return err
	})
	return ret, err
}

// UpdateExternal runs fn in its own transition against the storage of an
// external collaborator, such as a currency collect modules charge in.
func (h *Hub) UpdateExternal(addr common.Address, fn func(store db.WriteTx) error) error {
	return h.update("updateExternal", func(tx *state.Tx, _ *events) error {
		return fn(tx.ModuleStore(addr))
	})
}

// ViewExternal runs fn against the committed storage of an external
// collaborator.
func (h *Hub) ViewExternal(addr common.Address, fn func(store db.Reader) error) error {
	return h.view(func(tx *state.Tx) error {
		return fn(tx.ModuleStore(addr))
	})
}
