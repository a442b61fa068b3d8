// Package hubtest builds fully wired hubs for tests.
package hubtest

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/hub/crypto/ethereum"
	"go.vocdoni.io/hub/db/metadb"
	"go.vocdoni.io/hub/hub"
	"go.vocdoni.io/hub/hub/clock"
	"go.vocdoni.io/hub/hub/modules"
	"go.vocdoni.io/hub/hub/modules/builtin"
	"go.vocdoni.io/hub/hub/modules/collect"
	"go.vocdoni.io/hub/hub/sigs"
	"go.vocdoni.io/hub/types"
)

const (
	// ChainID of test hubs.
	ChainID = 1337
	// Name of the test protocol, also its signing domain name.
	Name = "Hub Profiles"
	// Symbol of the test profile NFT.
	Symbol = "HP"
	// Genesis is the mock clock start timestamp.
	Genesis = 1_650_000_000
)

// Built-in module addresses.
var (
	HubAddress      = ethereum.DeriveAddress([]byte("hubtest"))
	FreeCollect     = builtin.FreeCollect
	LimitedCollect  = builtin.LimitedCollect
	FeeCollect      = builtin.FeeCollect
	RevertCollect   = builtin.RevertCollect
	ApprovalFollow  = builtin.ApprovalFollow
	RevertFollow    = builtin.RevertFollow
	FollowerOnlyRef = builtin.FollowerOnlyRef
	Currency        = builtin.Currency
	LegacyCurrency  = builtin.LegacyCurrency
	Unregistered    = builtin.Address("Unregistered")
)

// Registry returns a registry with every built-in module.
func Registry() *modules.Registry {
	r, err := builtin.Registry()
	if err != nil {
		panic(err)
	}
	return r
}

// Env is a wired hub with governance and a few funded users.
type Env struct {
	Hub        *hub.Hub
	Clock      *clock.Mock
	Governance *ethereum.SignKeys
	Users      []*ethereum.SignKeys
}

// New returns an initialized, unpaused hub whose governance admitted every
// user as profile creator and every built-in module.
func New(t testing.TB, users int) *Env {
	c := qt.New(t)
	mock := clock.NewMock(Genesis, 1)
	h, err := hub.New(metadb.NewTest(t), hub.Options{
		Address: HubAddress,
		ChainID: ChainID,
		Clock:   mock,
		Modules: Registry(),
	})
	c.Assert(err, qt.IsNil)

	env := &Env{Hub: h, Clock: mock, Governance: keys(t)}
	gov := env.Governance.Address()
	c.Assert(h.Initialize(Name, Symbol, gov), qt.IsNil)
	c.Assert(h.SetPauseLevel(gov, types.Unpaused), qt.IsNil)
	for addr, m := range builtin.Modules() {
		switch m.Kind() {
		case types.FollowModule:
			c.Assert(h.WhitelistFollowModule(gov, addr, true), qt.IsNil)
		case types.CollectModule:
			c.Assert(h.WhitelistCollectModule(gov, addr, true), qt.IsNil)
		case types.ReferenceModule:
			c.Assert(h.WhitelistReferenceModule(gov, addr, true), qt.IsNil)
		}
	}
	for i := 0; i < users; i++ {
		k := keys(t)
		c.Assert(h.WhitelistProfileCreator(gov, k.Address(), true), qt.IsNil)
		env.Users = append(env.Users, k)
	}
	return env
}

func keys(t testing.TB) *ethereum.SignKeys {
	k, err := ethereum.NewSignKeys()
	qt.Assert(t, err, qt.IsNil)
	return k
}

// CreateProfile creates a profile owned by user with the given handle.
func (e *Env) CreateProfile(t testing.TB, user *ethereum.SignKeys, handle string) types.ProfileID {
	id, err := e.Hub.CreateProfile(user.Address(), &hub.CreateProfileRequest{
		To:       user.Address(),
		Handle:   handle,
		ImageURI: "ipfs://image/" + handle,
	})
	qt.Assert(t, err, qt.IsNil)
	return id
}

// Post publishes a post with the free collect module.
func (e *Env) Post(t testing.TB, user *ethereum.SignKeys, profileID types.ProfileID) types.PubID {
	pubID, err := e.Hub.Post(user.Address(), &hub.PostRequest{
		ProfileID:             profileID,
		ContentURI:            "ipfs://content",
		CollectModule:         FreeCollect,
		CollectModuleInitData: FreeParams(false),
	})
	qt.Assert(t, err, qt.IsNil)
	return pubID
}

// FreeParams encodes the free collect module configuration.
func FreeParams(followerOnly bool) []byte {
	return modules.Encode(&collect.FreeParams{FollowerOnly: followerOnly})
}

// Deadline returns a signature deadline d after the mock clock.
func (e *Env) Deadline(d time.Duration) uint64 {
	return e.Clock.Timestamp() + uint64(d.Seconds())
}

// Sign signs msg under the hub domain with the next nonce of k.
func (e *Env) Sign(t testing.TB, k *ethereum.SignKeys, msg sigs.Message) *sigs.Authorization {
	d, err := e.Hub.Domain()
	qt.Assert(t, err, qt.IsNil)
	return e.SignDomain(t, k, d, msg)
}

// SignDomain signs msg under domain d with the next nonce of k.
func (e *Env) SignDomain(t testing.TB, k *ethereum.SignKeys, d sigs.Domain, msg sigs.Message) *sigs.Authorization {
	nonce, err := e.Hub.Nonce(k.Address())
	qt.Assert(t, err, qt.IsNil)
	auth, err := sigs.Sign(k, d, msg, nonce, e.Deadline(time.Hour))
	qt.Assert(t, err, qt.IsNil)
	return auth
}

// CollectionDomain returns the signing domain of an NFT collection.
func (e *Env) CollectionDomain(t testing.TB, addr common.Address) sigs.Domain {
	col, err := e.Hub.Collection(addr)
	qt.Assert(t, err, qt.IsNil)
	return sigs.Domain{Name: col.Name, ChainID: ChainID, VerifyingContract: addr}
}
