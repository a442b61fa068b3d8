// Package governance implements the role checks and the protocol-wide pause
// gate. The emergency admin is strictly weaker than governance: it can only
// make the protocol more restrictive.
package governance

import (
	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/hub/hub/revert"
	"go.vocdoni.io/hub/hub/state"
	"go.vocdoni.io/hub/types"
)

// Initialize sets up the protocol state once.
func Initialize(tx *state.Tx, name, symbol string, gov common.Address) error {
	p, err := tx.Protocol()
	if err != nil {
		return err
	}
	if p.Initialized {
		return revert.ErrInitialized
	}
	p.Initialized = true
	p.Name = name
	p.Symbol = symbol
	p.SetGovernanceAddr(gov)
	p.PauseLevel = uint8(types.Paused)
	return tx.SetProtocol(p)
}

// CheckNotPaused fails if the current level is at least as restrictive as
// required. The error names the current level.
func CheckNotPaused(tx *state.Tx, required types.PauseLevel) error {
	p, err := tx.Protocol()
	if err != nil {
		return err
	}
	current := p.Level()
	if current < required {
		return nil
	}
	if current >= types.Paused {
		return revert.ErrPaused
	}
	return revert.ErrPublishingPaused
}

// RequireGovernance fails unless caller is the governance address.
func RequireGovernance(tx *state.Tx, caller common.Address) error {
	p, err := tx.Protocol()
	if err != nil {
		return err
	}
	if caller == types.ZeroAddress || caller != p.GovernanceAddr() {
		return revert.ErrNotGovernance
	}
	return nil
}

// SetPauseLevel changes the pause level on behalf of caller. It returns the
// previous level.
func SetPauseLevel(tx *state.Tx, caller common.Address, level types.PauseLevel) (types.PauseLevel, error) {
	p, err := tx.Protocol()
	if err != nil {
		return 0, err
	}
	current := p.Level()
	switch {
	case caller == types.ZeroAddress:
		return current, revert.ErrNotGovernanceOrEmergencyAdmin
	case caller == p.GovernanceAddr():
	case caller == p.EmergencyAdminAddr():
		if level < current {
			return current, revert.ErrEmergencyAdminCanOnlyPauseFurther
		}
	default:
		return current, revert.ErrNotGovernanceOrEmergencyAdmin
	}
	if !level.Valid() {
		return current, revert.ErrInitParamsInvalid.WithDetail("unknown pause level %d", level)
	}
	p.PauseLevel = uint8(level)
	return current, tx.SetProtocol(p)
}

// SetGovernance hands governance over to gov.
func SetGovernance(tx *state.Tx, caller, gov common.Address) error {
	if err := RequireGovernance(tx, caller); err != nil {
		return err
	}
	p, err := tx.Protocol()
	if err != nil {
		return err
	}
	p.SetGovernanceAddr(gov)
	return tx.SetProtocol(p)
}

// SetEmergencyAdmin sets or clears the emergency admin.
func SetEmergencyAdmin(tx *state.Tx, caller, admin common.Address) error {
	if err := RequireGovernance(tx, caller); err != nil {
		return err
	}
	p, err := tx.Protocol()
	if err != nil {
		return err
	}
	p.SetEmergencyAdminAddr(admin)
	return tx.SetProtocol(p)
}
