// Package config holds the hub daemon configuration.
package config

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/hub/db"
)

// HubCfg stores the hubd configuration.
type HubCfg struct {
	// DataDir is the path for storing the database and the config file.
	DataDir string
	// DBType is the storage backend, pebble or badger.
	DBType string
	// LogLevel logging level (debug, info, warn, error, fatal).
	LogLevel string
	// LogOutput is stdout, stderr or a file path.
	LogOutput string
	// LogErrorFile duplicates errors to a file, if set.
	LogErrorFile string
	// ChainID is part of every signing domain.
	ChainID uint64
	// Address is the hub identity, derived from ChainID if empty.
	Address string
	// Name and Symbol of the profile NFT, set on first start.
	Name   string
	Symbol string
	// BlockPeriod is the number of seconds per block of the height oracle.
	BlockPeriod int
	// API holds the HTTP API options.
	API APICfg
	// Governance is the address set on first start.
	Governance string
	// GovernanceKey is the hex private key of the governance account. When
	// set, startup whitelists profile creators and built-in modules with it.
	GovernanceKey string
	// EmergencyAdmin is set on first start if not empty.
	EmergencyAdmin string
	// ProfileCreators to admit on start.
	ProfileCreators []string
	// WhitelistBuiltinModules admits every built-in module on start.
	WhitelistBuiltinModules bool
	// Unpause sets the protocol to Unpaused on start.
	Unpause bool
	// SignerCacheSize bounds the recovered-signer cache.
	SignerCacheSize int
}

// APICfg is the HTTP API configuration.
type APICfg struct {
	ListenHost string
	ListenPort int
	Route      string
	// Metrics exposes prometheus metrics under /metrics.
	Metrics bool
}

// NewConfig returns a HubCfg with default values.
func NewConfig() *HubCfg {
	return &HubCfg{
		DBType:      db.TypePebble,
		LogLevel:    "info",
		LogOutput:   "stdout",
		ChainID:     DefaultChainID,
		Name:        DefaultName,
		Symbol:      DefaultSymbol,
		BlockPeriod: DefaultBlockPeriod,
		API: APICfg{
			ListenHost: "0.0.0.0",
			ListenPort: DefaultListenPort,
			Route:      "/v1",
			Metrics:    true,
		},
		WhitelistBuiltinModules: true,
	}
}

// Validate checks the values that cannot be fixed with a default.
func (c *HubCfg) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("dataDir cannot be empty")
	}
	if c.DBType != db.TypePebble && c.DBType != db.TypeBadger {
		return fmt.Errorf("invalid dbType %q", c.DBType)
	}
	if c.ChainID == 0 {
		return fmt.Errorf("chainID cannot be zero")
	}
	if c.BlockPeriod <= 0 {
		return fmt.Errorf("blockPeriod must be positive")
	}
	for _, addr := range append([]string{c.Address, c.Governance, c.EmergencyAdmin}, c.ProfileCreators...) {
		if addr != "" && !common.IsHexAddress(addr) {
			return fmt.Errorf("invalid address %q", addr)
		}
	}
	return nil
}
