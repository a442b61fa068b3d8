// Package hub is the validation core of the social graph protocol. Every
// mutating operation runs as one atomic transition that passes, in order,
// the pause gate, existence and ownership checks, module whitelist checks,
// signature validation and finally NFT minting or transfer. The first failing
// check rejects the whole transition with exactly one revert.Error and leaves
// no effects behind.
package hub

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sasha-s/go-deadlock"
	"go.vocdoni.io/hub/crypto/ethereum"
	"go.vocdoni.io/hub/db"
	"go.vocdoni.io/hub/hub/clock"
	"go.vocdoni.io/hub/hub/governance"
	"go.vocdoni.io/hub/hub/identity"
	"go.vocdoni.io/hub/hub/modules"
	"go.vocdoni.io/hub/hub/nft"
	"go.vocdoni.io/hub/hub/revert"
	"go.vocdoni.io/hub/hub/sigs"
	"go.vocdoni.io/hub/hub/state"
	"go.vocdoni.io/hub/hub/whitelist"
	"go.vocdoni.io/hub/log"
	"go.vocdoni.io/hub/types"
)

// Options configures a Hub.
type Options struct {
	// Address is the hub identity: the only minter and the profile NFT.
	Address common.Address
	// ChainID is part of every signing domain.
	ChainID uint64
	// Clock defaults to a system clock with one-second blocks.
	Clock clock.Clock
	// Modules defaults to an empty registry.
	Modules *modules.Registry
	// SignerCacheSize bounds the recovered-signer cache.
	SignerCacheSize int
}

// Hub owns the protocol state and runs the transitions.
type Hub struct {
	address common.Address
	chainID uint64

	state    *state.State
	clock    clock.Clock
	modules  *modules.Registry
	sigs     *sigs.Validator
	ledger   *nft.Ledger
	identity *identity.Registry

	followNFTImpl  common.Address
	collectNFTImpl common.Address

	listenersLock deadlock.Mutex
	listeners     []EventListener
}

// New builds a Hub on database. The protocol still needs Initialize before
// it accepts operations.
func New(database db.Database, opts Options) (*Hub, error) {
	if opts.Address == types.ZeroAddress {
		return nil, fmt.Errorf("hub address cannot be zero")
	}
	if opts.Clock == nil {
		opts.Clock = clock.NewSystem(0)
	}
	if opts.Modules == nil {
		opts.Modules = modules.NewRegistry()
	}
	validator, err := sigs.NewValidator(opts.SignerCacheSize)
	if err != nil {
		return nil, err
	}
	h := &Hub{
		address:        opts.Address,
		chainID:        opts.ChainID,
		state:          state.New(database),
		clock:          opts.Clock,
		modules:        opts.Modules,
		sigs:           validator,
		followNFTImpl:  ethereum.DeriveAddress(opts.Address.Bytes(), []byte("FollowNFT")),
		collectNFTImpl: ethereum.DeriveAddress(opts.Address.Bytes(), []byte("CollectNFT")),
	}
	h.ledger = &nft.Ledger{Hub: h.address, Hook: h}
	h.identity = &identity.Registry{Ledger: h.ledger}
	return h, nil
}

// Address returns the hub address.
func (h *Hub) Address() common.Address { return h.address }

// ChainID returns the chain id used in signing domains.
func (h *Hub) ChainID() uint64 { return h.chainID }

// Modules returns the module registry.
func (h *Hub) Modules() *modules.Registry { return h.modules }

// Clock returns the hub clock.
func (h *Hub) Clock() clock.Clock { return h.clock }

// Close closes the underlying storage.
func (h *Hub) Close() error {
	return h.state.Close()
}

// update runs one transition. On success the events are delivered to the
// listeners; on failure nothing is kept.
func (h *Hub) update(op string, fn func(tx *state.Tx, ev *events) error) error {
	ev := &events{now: h.clock.Timestamp()}
	err := h.state.Update(func(tx *state.Tx) error {
		return fn(tx, ev)
	})
	if err != nil {
		if name := revert.Name(err); name != "" {
			HubRejected.WithLabelValues(op, name).Inc()
			log.Debugw("transition rejected", "op", op, "reason", name, "error", err.Error())
		} else {
			HubRejected.WithLabelValues(op, "internal").Inc()
			log.Errorw(err, "transition failed", "op", op)
		}
		return err
	}
	HubCommitted.WithLabelValues(op).Inc()
	log.Debugw("transition committed", "op", op, "events", len(ev.list))
	h.listenersLock.Lock()
	listeners := h.listeners
	h.listenersLock.Unlock()
	for _, e := range ev.list {
		for _, l := range listeners {
			l.OnEvent(e)
		}
	}
	return nil
}

// view runs a read-only function against the committed state.
func (h *Hub) view(fn func(tx *state.Tx) error) error {
	return h.state.View(fn)
}

// domain is the signing domain of hub operations.
func (h *Hub) domain(tx *state.Tx) (sigs.Domain, error) {
	p, err := tx.Protocol()
	if err != nil {
		return sigs.Domain{}, err
	}
	return sigs.Domain{Name: p.Name, ChainID: h.chainID, VerifyingContract: h.address}, nil
}

// Domain returns the signing domain of hub operations.
func (h *Hub) Domain() (sigs.Domain, error) {
	var d sigs.Domain
	err := h.view(func(tx *state.Tx) error {
		var err error
		d, err = h.domain(tx)
		return err
	})
	return d, err
}

// verifier checks a signature at the signature stage of a transition. A nil
// verifier means the caller acts directly.
type verifier func(tx *state.Tx) error

func (v verifier) verify(tx *state.Tx) error {
	if v == nil {
		return nil
	}
	return v(tx)
}

// withSig verifies auth for msg under the hub domain.
func (h *Hub) withSig(msg sigs.Message, auth *sigs.Authorization) verifier {
	return func(tx *state.Tx) error {
		d, err := h.domain(tx)
		if err != nil {
			return err
		}
		return h.sigs.Verify(tx, h.clock.Timestamp(), d, msg, auth)
	}
}

// withCollectionSig verifies auth for msg under the domain of an NFT
// collection.
func (h *Hub) withCollectionSig(c *state.Collection, msg sigs.Message, auth *sigs.Authorization) verifier {
	return func(tx *state.Tx) error {
		d := sigs.Domain{Name: c.Name, ChainID: h.chainID, VerifyingContract: c.Addr()}
		return h.sigs.Verify(tx, h.clock.Timestamp(), d, msg, auth)
	}
}

// signer returns the claimed signer of auth, zero if there is none.
func signer(auth *sigs.Authorization) common.Address {
	if auth == nil {
		return types.ZeroAddress
	}
	return auth.Signer
}

// Initialize sets the protocol name, symbol and governance once, deploys the
// profile NFT and the follow and collect NFT templates. The protocol starts
// paused.
func (h *Hub) Initialize(name, symbol string, gov common.Address) error {
	return h.update("initialize", func(tx *state.Tx, ev *events) error {
		if err := governance.Initialize(tx, name, symbol, gov); err != nil {
			return err
		}
		if err := h.ledger.DeployProfiles(tx, name, symbol); err != nil {
			return err
		}
		if err := h.ledger.DeployImplementation(tx, h.followNFTImpl, state.CollectionFollow); err != nil {
			return err
		}
		if err := h.ledger.DeployImplementation(tx, h.collectNFTImpl, state.CollectionCollect); err != nil {
			return err
		}
		ev.emit(&Event{Type: EventInitialized, Target: gov})
		return nil
	})
}

// FollowNFTImplementation returns the follow NFT template address.
func (h *Hub) FollowNFTImplementation() common.Address { return h.followNFTImpl }

// CollectNFTImplementation returns the collect NFT template address.
func (h *Hub) CollectNFTImplementation() common.Address { return h.collectNFTImpl }

// SetGovernance hands governance to gov.
func (h *Hub) SetGovernance(caller, gov common.Address) error {
	return h.update("setGovernance", func(tx *state.Tx, ev *events) error {
		if err := governance.SetGovernance(tx, caller, gov); err != nil {
			return err
		}
		ev.emit(&Event{Type: EventGovernanceSet, Actor: caller, Target: gov})
		return nil
	})
}

// SetEmergencyAdmin sets or clears the emergency admin.
func (h *Hub) SetEmergencyAdmin(caller, admin common.Address) error {
	return h.update("setEmergencyAdmin", func(tx *state.Tx, ev *events) error {
		if err := governance.SetEmergencyAdmin(tx, caller, admin); err != nil {
			return err
		}
		ev.emit(&Event{Type: EventEmergencyAdminSet, Actor: caller, Target: admin})
		return nil
	})
}

// SetPauseLevel changes the protocol pause level.
func (h *Hub) SetPauseLevel(caller common.Address, level types.PauseLevel) error {
	return h.update("setPauseLevel", func(tx *state.Tx, ev *events) error {
		previous, err := governance.SetPauseLevel(tx, caller, level)
		if err != nil {
			return err
		}
		log.Infow("pause level changed", "from", previous.String(), "to", level.String(), "by", caller.Hex())
		ev.emit(&Event{Type: EventPauseLevelSet, Actor: caller, Data: []byte{byte(previous), byte(level)}})
		return nil
	})
}

// WhitelistProfileCreator admits or removes a profile creator.
func (h *Hub) WhitelistProfileCreator(caller, creator common.Address, whitelisted bool) error {
	return h.update("whitelistProfileCreator", func(tx *state.Tx, ev *events) error {
		if err := whitelist.SetProfileCreator(tx, caller, creator, whitelisted); err != nil {
			return err
		}
		ev.emit(&Event{Type: EventWhitelistChanged, Actor: caller, Target: creator, Data: whitelistData(0, whitelisted)})
		return nil
	})
}

func (h *Hub) whitelistModule(op string, kind types.ModuleKind, caller, module common.Address, whitelisted bool) error {
	return h.update(op, func(tx *state.Tx, ev *events) error {
		if err := whitelist.SetModule(tx, caller, kind, module, whitelisted); err != nil {
			return err
		}
		ev.emit(&Event{Type: EventWhitelistChanged, Actor: caller, Target: module, Data: whitelistData(kind, whitelisted)})
		return nil
	})
}

func whitelistData(kind types.ModuleKind, whitelisted bool) []byte {
	return append([]byte{byte(kind)}, flag(whitelisted)...)
}

// WhitelistFollowModule admits or removes a follow module.
func (h *Hub) WhitelistFollowModule(caller, module common.Address, whitelisted bool) error {
	return h.whitelistModule("whitelistFollowModule", types.FollowModule, caller, module, whitelisted)
}

// WhitelistCollectModule admits or removes a collect module.
func (h *Hub) WhitelistCollectModule(caller, module common.Address, whitelisted bool) error {
	return h.whitelistModule("whitelistCollectModule", types.CollectModule, caller, module, whitelisted)
}

// WhitelistReferenceModule admits or removes a reference module.
func (h *Hub) WhitelistReferenceModule(caller, module common.Address, whitelisted bool) error {
	return h.whitelistModule("whitelistReferenceModule", types.ReferenceModule, caller, module, whitelisted)
}
