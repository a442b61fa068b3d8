// Package service assembles the hub daemon: storage, the hub itself, its
// bootstrap from configuration and the HTTP API.
package service

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi"
	"go.vocdoni.io/hub/api"
	"go.vocdoni.io/hub/config"
	"go.vocdoni.io/hub/crypto/ethereum"
	"go.vocdoni.io/hub/db"
	"go.vocdoni.io/hub/db/metadb"
	"go.vocdoni.io/hub/hub"
	"go.vocdoni.io/hub/hub/clock"
	"go.vocdoni.io/hub/hub/modules/builtin"
	"go.vocdoni.io/hub/log"
	"go.vocdoni.io/hub/metrics"
	"go.vocdoni.io/hub/types"
)

// HubService holds every component of a running hub node.
type HubService struct {
	Config  *config.HubCfg
	DB      db.Database
	Hub     *hub.Hub
	Router  *chi.Mux
	API     *api.API
	Metrics *metrics.Agent
	// Addr is the address the API listens on once started.
	Addr net.Addr
}

// HubAddress returns the configured hub address, or one derived from the
// chain ID.
func HubAddress(cfg *config.HubCfg) common.Address {
	if cfg.Address != "" {
		return common.HexToAddress(cfg.Address)
	}
	return ethereum.DeriveAddress([]byte("hub"), types.Uint64Bytes(cfg.ChainID))
}

// New opens the database and builds the hub.
func New(cfg *config.HubCfg) (*HubService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	database, err := metadb.New(cfg.DBType, filepath.Join(cfg.DataDir, "db"))
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	registry, err := builtin.Registry()
	if err != nil {
		database.Close()
		return nil, err
	}
	h, err := hub.New(database, hub.Options{
		Address:         HubAddress(cfg),
		ChainID:         cfg.ChainID,
		Clock:           clock.NewSystem(time.Duration(cfg.BlockPeriod) * time.Second),
		Modules:         registry,
		SignerCacheSize: cfg.SignerCacheSize,
	})
	if err != nil {
		database.Close()
		return nil, err
	}
	h.AddEventListener(eventLogger{})
	log.Infow("hub created", "address", h.Address().Hex(), "chainId", cfg.ChainID, "dbType", cfg.DBType)
	return &HubService{Config: cfg, DB: database, Hub: h}, nil
}

// StartAPI serves the HTTP API until ctx is done.
func (s *HubService) StartAPI(ctx context.Context) error {
	s.Router = api.NewRouter()
	if s.Config.API.Metrics {
		api.EnablePrometheusMetrics(s.Router, "hubapi")
		hub.RegisterMetrics()
		s.Metrics = metrics.NewAgent("/metrics", s.Router)
	}
	var err error
	if s.API, err = api.NewAPI(s.Hub, s.Router, s.Config.API.Route); err != nil {
		return err
	}
	s.Addr, err = api.Serve(ctx, s.Config.API.ListenHost, s.Config.API.ListenPort, s.Router)
	return err
}

// Close releases the storage.
func (s *HubService) Close() error {
	return s.Hub.Close()
}

type eventLogger struct{}

func (eventLogger) OnEvent(e *hub.Event) {
	log.Debugw("hub event",
		"type", e.Type.String(),
		"profileId", e.ProfileID,
		"pubId", e.PubID,
		"actor", e.Actor.Hex(),
		"collection", e.Collection.Hex(),
		"tokenId", e.TokenID,
	)
}
