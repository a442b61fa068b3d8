package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.vocdoni.io/hub/config"
	"go.vocdoni.io/hub/log"
	"go.vocdoni.io/hub/service"
)

func loadConfig() *config.HubCfg {
	cfg := config.NewConfig()
	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	flag.StringVar(&cfg.DataDir, "dataDir", filepath.Join(home, ".hubd"), "storage data directory")
	flag.StringVar(&cfg.DBType, "dbType", cfg.DBType, "database backend (pebble, badger)")
	flag.StringVar(&cfg.LogLevel, "logLevel", cfg.LogLevel, "log level (debug, info, warn, error, fatal)")
	flag.StringVar(&cfg.LogOutput, "logOutput", cfg.LogOutput, "log output (stdout, stderr or filepath)")
	flag.StringVar(&cfg.LogErrorFile, "logErrorFile", "", "log errors and warnings to a file")
	flag.Uint64Var(&cfg.ChainID, "chainID", cfg.ChainID, "chain ID of every signing domain")
	flag.StringVar(&cfg.Address, "address", "", "hub address (derived from the chain ID if empty)")
	flag.StringVar(&cfg.Name, "name", cfg.Name, "profile NFT name, also the signing domain name")
	flag.StringVar(&cfg.Symbol, "symbol", cfg.Symbol, "profile NFT symbol")
	flag.IntVar(&cfg.BlockPeriod, "blockPeriod", cfg.BlockPeriod, "block period in seconds")
	flag.StringVar(&cfg.API.ListenHost, "listenHost", cfg.API.ListenHost, "API endpoint listen address")
	flag.IntVarP(&cfg.API.ListenPort, "listenPort", "p", cfg.API.ListenPort, "API endpoint http port")
	flag.StringVar(&cfg.API.Route, "apiPath", cfg.API.Route, "HTTP path for the API rest")
	flag.BoolVar(&cfg.API.Metrics, "metrics", cfg.API.Metrics, "expose prometheus metrics under /metrics")
	flag.StringVar(&cfg.Governance, "governance", "", "governance address set on first start")
	flag.StringVar(&cfg.GovernanceKey, "governanceKey", "", "governance private hexadecimal key")
	flag.StringVar(&cfg.EmergencyAdmin, "emergencyAdmin", "", "emergency admin address")
	flag.StringSliceVar(&cfg.ProfileCreators, "profileCreators", []string{},
		"addresses allowed to create profiles (comma-separated)")
	flag.BoolVar(&cfg.WhitelistBuiltinModules, "whitelistBuiltinModules", cfg.WhitelistBuiltinModules,
		"whitelist every built-in module on start")
	flag.BoolVar(&cfg.Unpause, "unpause", false, "unpause the protocol on start")
	flag.IntVar(&cfg.SignerCacheSize, "signerCacheSize", 0, "number of recovered signers kept in memory")
	flag.CommandLine.SortFlags = false
	flag.Parse()

	pviper := viper.New()
	pviper.SetConfigName("hubd")
	pviper.SetConfigType("yml")
	pviper.SetEnvPrefix("HUBD")
	pviper.AutomaticEnv()
	pviper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// dataDir first, it holds the config file
	if err := pviper.BindPFlag("dataDir", flag.Lookup("dataDir")); err != nil {
		panic(err)
	}
	cfg.DataDir = pviper.GetString("dataDir")
	pviper.AddConfigPath(cfg.DataDir)
	_ = pviper.ReadInConfig()

	flag.VisitAll(func(f *flag.Flag) {
		if err := pviper.BindPFlag(f.Name, f); err != nil {
			panic(err)
		}
	})
	cfg.DBType = pviper.GetString("dbType")
	cfg.LogLevel = pviper.GetString("logLevel")
	cfg.LogOutput = pviper.GetString("logOutput")
	cfg.LogErrorFile = pviper.GetString("logErrorFile")
	cfg.ChainID = pviper.GetUint64("chainID")
	cfg.Address = pviper.GetString("address")
	cfg.Name = pviper.GetString("name")
	cfg.Symbol = pviper.GetString("symbol")
	cfg.BlockPeriod = pviper.GetInt("blockPeriod")
	cfg.API.ListenHost = pviper.GetString("listenHost")
	cfg.API.ListenPort = pviper.GetInt("listenPort")
	cfg.API.Route = pviper.GetString("apiPath")
	cfg.API.Metrics = pviper.GetBool("metrics")
	cfg.Governance = pviper.GetString("governance")
	cfg.GovernanceKey = pviper.GetString("governanceKey")
	cfg.EmergencyAdmin = pviper.GetString("emergencyAdmin")
	cfg.ProfileCreators = pviper.GetStringSlice("profileCreators")
	cfg.WhitelistBuiltinModules = pviper.GetBool("whitelistBuiltinModules")
	cfg.Unpause = pviper.GetBool("unpause")
	cfg.SignerCacheSize = pviper.GetInt("signerCacheSize")

	_, err = os.Stat(filepath.Join(cfg.DataDir, "hubd.yml"))
	if os.IsNotExist(err) {
		if err := os.MkdirAll(cfg.DataDir, os.ModePerm); err != nil {
			panic(err)
		}
		// the governance key is never persisted
		pviper.Set("governanceKey", "")
		if err := pviper.SafeWriteConfig(); err != nil {
			panic(err)
		}
	} else if err != nil {
		panic(err)
	}
	return cfg
}

func main() {
	cfg := loadConfig()

	log.Init(cfg.LogLevel, cfg.LogOutput)
	if cfg.LogErrorFile != "" {
		if err := log.SetFileErrorLog(cfg.LogErrorFile); err != nil {
			log.Fatal(err)
		}
	}
	log.Infow("starting "+filepath.Base(os.Args[0]), "dataDir", cfg.DataDir, "chainId", cfg.ChainID)

	s, err := service.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if err := s.Bootstrap(); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.StartAPI(ctx); err != nil {
		log.Fatal(err)
	}

	// close if interrupt received
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	log.Warnf("received SIGTERM, exiting at %s", time.Now().Format(time.RFC850))
	cancel()
	if err := s.Close(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
