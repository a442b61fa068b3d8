// Package modules defines the capability interface every follow, collect and
// reference module implements, the context the hub hands them, and the
// registry mapping module addresses to implementations.
package modules

import (
	"bytes"
	"errors"
	"fmt"

	"git.sr.ht/~sircmpwn/go-bare"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sasha-s/go-deadlock"
	"golang.org/x/exp/slices"
	"go.vocdoni.io/hub/db"
	"go.vocdoni.io/hub/hub/revert"
	"go.vocdoni.io/hub/types"
)

// Action is what triggered ProcessAction.
type Action uint8

const (
	ActionFollow Action = iota + 1
	ActionCollect
	ActionComment
	ActionMirror
)

func (a Action) String() string {
	switch a {
	case ActionFollow:
		return "follow"
	case ActionCollect:
		return "collect"
	case ActionComment:
		return "comment"
	case ActionMirror:
		return "mirror"
	default:
		return "unknown"
	}
}

// Graph gives modules read access to the social graph of the transaction
// they run in.
type Graph interface {
	// OwnerOf returns the owner of a profile.
	OwnerOf(profileID types.ProfileID) (common.Address, error)
	// IsFollowing reports whether addr holds a follow NFT of profileID.
	IsFollowing(profileID types.ProfileID, addr common.Address) (bool, error)
	// PowerAt returns the follow NFT power delegated to addr at block.
	PowerAt(profileID types.ProfileID, addr common.Address, block uint64) (uint64, error)
	// CurrencyStore returns the storage of an external currency.
	CurrencyStore(currency common.Address) db.WriteTx
}

// Context carries everything a module may look at. Store is private to the
// module and is committed together with the hub transition.
type Context struct {
	Store db.WriteTx
	Graph Graph

	Action    Action
	ProfileID types.ProfileID
	PubID     types.PubID
	// Actor is the profile owner on configuration, the follower or collector
	// on follow and collect, and the owner of the referencing profile on
	// comment and mirror.
	Actor common.Address
	// Referrer is the profile whose publication led to the action: the
	// mirror being collected or the profile commenting or mirroring.
	ReferrerProfileID types.ProfileID
	ReferrerPubID     types.PubID

	// Config is the data returned by ProcessConfiguration.
	Config []byte
	// Data is the action input supplied by the caller.
	Data []byte

	Now           uint64
	Height        uint64
	SnapshotBlock uint64
}

// Module is a pluggable follow, collect or reference policy.
type Module interface {
	// Kind returns the extension point the module plugs into.
	Kind() types.ModuleKind
	// ProcessConfiguration validates data when the module is attached to a
	// profile or publication and returns the data to keep for later actions.
	ProcessConfiguration(ctx *Context, data []byte) ([]byte, error)
	// ProcessAction accepts or rejects a follow, collect or reference.
	ProcessAction(ctx *Context) error
}

// FollowApprover is implemented by follow modules holding an allow list
// managed by the profile owner.
type FollowApprover interface {
	Approve(ctx *Context, addrs []common.Address, approved []bool) error
}

// Registry maps module addresses to implementations.
type Registry struct {
	mu      deadlock.RWMutex
	modules map[common.Address]Module
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[common.Address]Module)}
}

// Register binds addr to m.
func (r *Registry) Register(addr common.Address, m Module) error {
	if addr == types.ZeroAddress {
		return errors.New("cannot register a module at the zero address")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.modules[addr]; ok {
		return fmt.Errorf("module already registered at %s", addr.Hex())
	}
	r.modules[addr] = m
	return nil
}

// Get returns the module at addr.
func (r *Registry) Get(addr common.Address) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[addr]
	return m, ok
}

// Addresses returns every registered address of the given kind, sorted.
func (r *Registry) Addresses(kind types.ModuleKind) []common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []common.Address
	for addr, m := range r.modules {
		if m.Kind() == kind {
			list = append(list, addr)
		}
	}
	slices.SortFunc(list, func(a, b common.Address) bool {
		return bytes.Compare(a[:], b[:]) < 0
	})
	return list
}

// Encode marshals a module parameter struct.
func Encode(v any) []byte {
	data, err := bare.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("cannot encode module params: %v", err))
	}
	return data
}

// Addrs converts raw address bytes, as stored in encoded params.
func Addrs(raw [][]byte) []common.Address {
	list := make([]common.Address, len(raw))
	for i, b := range raw {
		list[i] = common.BytesToAddress(b)
	}
	return list
}

// Decode unmarshals module parameters, failing with InitParamsInvalid.
func Decode(data []byte, v any) error {
	if len(data) == 0 {
		return revert.ErrInitParamsInvalid.WithDetail("empty params")
	}
	if err := bare.Unmarshal(data, v); err != nil {
		return revert.ErrInitParamsInvalid.WithDetail("%v", err)
	}
	return nil
}
