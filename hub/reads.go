package hub

import (
	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/hub/hub/state"
	"go.vocdoni.io/hub/hub/whitelist"
	"go.vocdoni.io/hub/types"
)

// Protocol returns the protocol record. It is zero before Initialize.
func (h *Hub) Protocol() (*state.Protocol, error) {
	var p *state.Protocol
	err := h.view(func(tx *state.Tx) error {
		var err error
		p, err = tx.Protocol()
		return err
	})
	return p, err
}

// PauseLevel returns the current pause level.
func (h *Hub) PauseLevel() (types.PauseLevel, error) {
	p, err := h.Protocol()
	if err != nil {
		return types.Paused, err
	}
	return p.Level(), nil
}

// Nonce returns the next signature nonce expected from addr.
func (h *Hub) Nonce(addr common.Address) (uint64, error) {
	var n uint64
	err := h.view(func(tx *state.Tx) error {
		var err error
		n, err = tx.Nonce(addr)
		return err
	})
	return n, err
}

// ProfileCreators lists the admitted profile creators.
func (h *Hub) ProfileCreators() ([]common.Address, error) {
	var list []common.Address
	err := h.view(func(tx *state.Tx) error {
		var err error
		list, err = whitelist.ListProfileCreators(tx)
		return err
	})
	return list, err
}

// WhitelistedModules lists the admitted modules of kind.
func (h *Hub) WhitelistedModules(kind types.ModuleKind) ([]common.Address, error) {
	var list []common.Address
	err := h.view(func(tx *state.Tx) error {
		var err error
		list, err = whitelist.List(tx, kind)
		return err
	})
	return list, err
}
