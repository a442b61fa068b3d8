package service

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/hub/crypto/ethereum"
	"go.vocdoni.io/hub/hub/modules/builtin"
	"go.vocdoni.io/hub/log"
	"go.vocdoni.io/hub/types"
)

// Bootstrap initializes the protocol on first start and applies the
// governance actions the configuration asks for. Actions that need the
// governance signature are skipped with a warning if no governance key is
// configured. Running it again on an initialized hub only re-applies the
// idempotent governance actions.
func (s *HubService) Bootstrap() error {
	cfg := s.Config
	var govKey *ethereum.SignKeys
	if cfg.GovernanceKey != "" {
		govKey = &ethereum.SignKeys{}
		if err := govKey.AddHexKey(cfg.GovernanceKey); err != nil {
			return fmt.Errorf("invalid governance key: %w", err)
		}
	}
	gov := common.HexToAddress(cfg.Governance)
	if cfg.Governance == "" && govKey != nil {
		gov = govKey.Address()
	}

	protocol, err := s.Hub.Protocol()
	if err != nil {
		return err
	}
	if !protocol.Initialized {
		if gov == types.ZeroAddress {
			return fmt.Errorf("governance or governanceKey must be set to initialize the hub")
		}
		if err := s.Hub.Initialize(cfg.Name, cfg.Symbol, gov); err != nil {
			return fmt.Errorf("cannot initialize hub: %w", err)
		}
		log.Infow("hub initialized", "name", cfg.Name, "symbol", cfg.Symbol, "governance", gov.Hex())
		protocol, err = s.Hub.Protocol()
		if err != nil {
			return err
		}
	}

	if govKey == nil {
		if cfg.EmergencyAdmin != "" || len(cfg.ProfileCreators) > 0 || cfg.WhitelistBuiltinModules || cfg.Unpause {
			log.Warnf("no governance key configured, skipping governance actions")
		}
		return nil
	}
	if govKey.Address() != protocol.GovernanceAddr() {
		return fmt.Errorf("governance key %s is not the hub governance %s",
			govKey.Address().Hex(), protocol.GovernanceAddr().Hex())
	}
	caller := govKey.Address()

	if cfg.EmergencyAdmin != "" {
		if err := s.Hub.SetEmergencyAdmin(caller, common.HexToAddress(cfg.EmergencyAdmin)); err != nil {
			return fmt.Errorf("cannot set emergency admin: %w", err)
		}
	}
	for _, creator := range cfg.ProfileCreators {
		if err := s.Hub.WhitelistProfileCreator(caller, common.HexToAddress(creator), true); err != nil {
			return fmt.Errorf("cannot whitelist profile creator %s: %w", creator, err)
		}
	}
	if cfg.WhitelistBuiltinModules {
		if err := s.whitelistBuiltins(caller); err != nil {
			return err
		}
	}
	if cfg.Unpause && protocol.Level() != types.Unpaused {
		if err := s.Hub.SetPauseLevel(caller, types.Unpaused); err != nil {
			return fmt.Errorf("cannot unpause hub: %w", err)
		}
	}
	return nil
}

func (s *HubService) whitelistBuiltins(caller common.Address) error {
	for addr, m := range builtin.Modules() {
		var err error
		switch m.Kind() {
		case types.FollowModule:
			err = s.Hub.WhitelistFollowModule(caller, addr, true)
		case types.CollectModule:
			err = s.Hub.WhitelistCollectModule(caller, addr, true)
		case types.ReferenceModule:
			err = s.Hub.WhitelistReferenceModule(caller, addr, true)
		}
		if err != nil {
			return fmt.Errorf("cannot whitelist module %s: %w", addr.Hex(), err)
		}
		log.Debugw("built-in module whitelisted", "address", addr.Hex(), "kind", m.Kind().String())
	}
	return nil
}
