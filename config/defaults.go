package config

// Defaults used by NewConfig.
const (
	DefaultChainID     = 1
	DefaultName        = "Hub Profiles"
	DefaultSymbol      = "HP"
	DefaultBlockPeriod = 2
	DefaultListenPort  = 9090
)
