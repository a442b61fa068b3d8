package state

import (
	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/hub/types"
)

// Addresses are stored as raw bytes; an empty slice is the zero address.

func addrBytes(a common.Address) []byte {
	if a == types.ZeroAddress {
		return nil
	}
	return a.Bytes()
}

func bytesAddr(b []byte) common.Address {
	return common.BytesToAddress(b)
}

// Protocol is the process-wide protocol state, written once on initialization
// and then only through the governance gate.
type Protocol struct {
	Initialized    bool
	Name           string
	Symbol         string
	Governance     []byte
	EmergencyAdmin []byte
	PauseLevel     uint8
}

// GovernanceAddr returns the governance address.
func (p *Protocol) GovernanceAddr() common.Address { return bytesAddr(p.Governance) }

// SetGovernanceAddr sets the governance address.
func (p *Protocol) SetGovernanceAddr(a common.Address) { p.Governance = addrBytes(a) }

// EmergencyAdminAddr returns the emergency admin address, zero if unset.
func (p *Protocol) EmergencyAdminAddr() common.Address { return bytesAddr(p.EmergencyAdmin) }

// SetEmergencyAdminAddr sets the emergency admin address.
func (p *Protocol) SetEmergencyAdminAddr(a common.Address) { p.EmergencyAdmin = addrBytes(a) }

// Level returns the current pause level. An uninitialized protocol is paused.
func (p *Protocol) Level() types.PauseLevel {
	if !p.Initialized {
		return types.Paused
	}
	return types.PauseLevel(p.PauseLevel)
}

// Profile is a profile record. The owner lives in the profile NFT ledger.
type Profile struct {
	ID               uint64
	Handle           string
	ImageURI         string
	Dispatcher       []byte
	FollowModule     []byte
	FollowModuleData []byte
	FollowNFT        []byte
	PubCount         uint64
	CreatedAt        uint64
}

// DispatcherAddr returns the dispatcher, zero if none.
func (p *Profile) DispatcherAddr() common.Address { return bytesAddr(p.Dispatcher) }

// SetDispatcherAddr sets the dispatcher; zero clears it.
func (p *Profile) SetDispatcherAddr(a common.Address) { p.Dispatcher = addrBytes(a) }

// FollowModuleAddr returns the follow module, zero if none.
func (p *Profile) FollowModuleAddr() common.Address { return bytesAddr(p.FollowModule) }

// SetFollowModuleAddr sets the follow module; zero clears it.
func (p *Profile) SetFollowModuleAddr(a common.Address) { p.FollowModule = addrBytes(a) }

// FollowNFTAddr returns the follow NFT instance, zero if not deployed yet.
func (p *Profile) FollowNFTAddr() common.Address { return bytesAddr(p.FollowNFT) }

// SetFollowNFTAddr records the deployed follow NFT instance.
func (p *Profile) SetFollowNFTAddr(a common.Address) { p.FollowNFT = addrBytes(a) }

// Publication is a post, comment or mirror.
type Publication struct {
	ProfileID           uint64
	PubID               uint64
	Kind                uint8
	ContentURI          string
	PointedProfileID    uint64
	PointedPubID        uint64
	CollectModule       []byte
	CollectModuleData   []byte
	ReferenceModule     []byte
	ReferenceModuleData []byte
	CollectNFT          []byte
	Timestamp           uint64
}

// Pointer returns the pointer identifying this publication.
func (p *Publication) Pointer() types.PubPointer {
	return types.PubPointer{ProfileID: types.ProfileID(p.ProfileID), PubID: types.PubID(p.PubID)}
}

// Pointed returns the publication this one points at; zero for posts.
func (p *Publication) Pointed() types.PubPointer {
	return types.PubPointer{ProfileID: types.ProfileID(p.PointedProfileID), PubID: types.PubID(p.PointedPubID)}
}

// PubKind returns the publication kind.
func (p *Publication) PubKind() types.PubKind { return types.PubKind(p.Kind) }

// CollectModuleAddr returns the collect module, zero if none.
func (p *Publication) CollectModuleAddr() common.Address { return bytesAddr(p.CollectModule) }

// SetCollectModuleAddr sets the collect module.
func (p *Publication) SetCollectModuleAddr(a common.Address) { p.CollectModule = addrBytes(a) }

// ReferenceModuleAddr returns the reference module, zero if none.
func (p *Publication) ReferenceModuleAddr() common.Address { return bytesAddr(p.ReferenceModule) }

// SetReferenceModuleAddr sets the reference module.
func (p *Publication) SetReferenceModuleAddr(a common.Address) { p.ReferenceModule = addrBytes(a) }

// CollectNFTAddr returns the collect NFT instance, zero if not deployed yet.
func (p *Publication) CollectNFTAddr() common.Address { return bytesAddr(p.CollectNFT) }

// SetCollectNFTAddr records the deployed collect NFT instance.
func (p *Publication) SetCollectNFTAddr(a common.Address) { p.CollectNFT = addrBytes(a) }

// Collection kinds.
const (
	CollectionProfile uint8 = iota + 1
	CollectionFollow
	CollectionCollect
)

// Collection is an NFT instance: the profile NFT, a follow NFT or a collect
// NFT. Implementation instances are templates that are only ever cloned.
type Collection struct {
	Address        []byte
	Kind           uint8
	Implementation bool
	Initialized    bool
	ProfileID      uint64
	PubID          uint64
	Name           string
	Symbol         string
	TotalSupply    uint64
	LastTokenID    uint64
}

// Addr returns the collection address.
func (c *Collection) Addr() common.Address { return bytesAddr(c.Address) }

// Token is a minted NFT.
type Token struct {
	Owner         []byte
	Approved      []byte
	MintTimestamp uint64
}

// OwnerAddr returns the token owner.
func (t *Token) OwnerAddr() common.Address { return bytesAddr(t.Owner) }

// ApprovedAddr returns the single approved address, zero if none.
func (t *Token) ApprovedAddr() common.Address { return bytesAddr(t.Approved) }

// Checkpoint is a value recorded at a block height.
type Checkpoint struct {
	Block uint64
	Value uint64
}

// checkpoints wraps the slice so it can be encoded as a struct.
type checkpoints struct {
	List []Checkpoint
}
