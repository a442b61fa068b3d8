package api

import (
	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/hub/hub"
	"go.vocdoni.io/hub/hub/sigs"
	"go.vocdoni.io/hub/hub/state"
	"go.vocdoni.io/hub/types"
)

// Protocol is the global hub configuration.
type Protocol struct {
	Address                  common.Address `json:"address"`
	ChainID                  uint64         `json:"chainId"`
	Initialized              bool           `json:"initialized"`
	Name                     string         `json:"name"`
	Symbol                   string         `json:"symbol"`
	Governance               common.Address `json:"governance"`
	EmergencyAdmin           common.Address `json:"emergencyAdmin"`
	State                    string         `json:"state"`
	FollowNFTImplementation  common.Address `json:"followNFTImplementation"`
	CollectNFTImplementation common.Address `json:"collectNFTImplementation"`
	Height                   uint64         `json:"height"`
}

type Domain struct {
	Name              string         `json:"name"`
	ChainID           uint64         `json:"chainId"`
	VerifyingContract common.Address `json:"verifyingContract"`
}

type Profile struct {
	ID               types.ProfileID `json:"id"`
	Owner            common.Address  `json:"owner"`
	Handle           string          `json:"handle"`
	ImageURI         string          `json:"imageURI"`
	Dispatcher       common.Address  `json:"dispatcher"`
	FollowModule     common.Address  `json:"followModule"`
	FollowModuleData []byte          `json:"followModuleData,omitempty"`
	FollowNFT        common.Address  `json:"followNFT"`
	PubCount         uint64          `json:"pubCount"`
	CreatedAt        uint64          `json:"createdAt"`
}

type Publication struct {
	ProfileID           types.ProfileID   `json:"profileId"`
	PubID               types.PubID       `json:"pubId"`
	Kind                string            `json:"kind"`
	ContentURI          string            `json:"contentURI,omitempty"`
	Pointed             *types.PubPointer `json:"pointed,omitempty"`
	CollectModule       common.Address    `json:"collectModule"`
	CollectModuleData   []byte            `json:"collectModuleData,omitempty"`
	ReferenceModule     common.Address    `json:"referenceModule"`
	ReferenceModuleData []byte            `json:"referenceModuleData,omitempty"`
	CollectNFT          common.Address    `json:"collectNFT"`
	Timestamp           uint64            `json:"timestamp"`
}

type Collection struct {
	Address     common.Address  `json:"address"`
	Kind        string          `json:"kind"`
	Name        string          `json:"name"`
	Symbol      string          `json:"symbol"`
	ProfileID   types.ProfileID `json:"profileId,omitempty"`
	PubID       types.PubID     `json:"pubId,omitempty"`
	TotalSupply uint64          `json:"totalSupply"`
}

type Token struct {
	Collection    common.Address `json:"collection"`
	TokenID       uint64         `json:"tokenId"`
	Owner         common.Address `json:"owner"`
	Approved      common.Address `json:"approved"`
	MintTimestamp uint64         `json:"mintTimestamp"`
}

type Nonce struct {
	Address common.Address `json:"address"`
	Nonce   uint64         `json:"nonce"`
}

type Following struct {
	ProfileID types.ProfileID `json:"profileId"`
	Address   common.Address  `json:"address"`
	Following bool            `json:"following"`
}

type Whitelist struct {
	Kind    string           `json:"kind"`
	Modules []common.Address `json:"modules"`
}

type Power struct {
	Collection common.Address `json:"collection"`
	Address    common.Address `json:"address,omitempty"`
	Block      uint64         `json:"block"`
	Power      uint64         `json:"power"`
}

// RevertReason is one entry of the rejection catalogue.
type RevertReason struct {
	Code uint16 `json:"code"`
	Name string `json:"name"`
}

// TransitionResult is returned by every signed operation.
type TransitionResult struct {
	ProfileID types.ProfileID `json:"profileId,omitempty"`
	PubID     types.PubID     `json:"pubId,omitempty"`
	TokenID   uint64          `json:"tokenId,omitempty"`
	TokenIDs  []uint64        `json:"tokenIds,omitempty"`
	Nonce     uint64          `json:"nonce"`
}

// Signed operation payloads. Each one carries the request and the
// authorization produced with hubcli or any EIP-712 wallet.

type SetDispatcherWithSig struct {
	ProfileID  types.ProfileID     `json:"profileId"`
	Dispatcher common.Address      `json:"dispatcher"`
	Auth       *sigs.Authorization `json:"auth"`
}

type SetProfileImageURIWithSig struct {
	ProfileID types.ProfileID     `json:"profileId"`
	ImageURI  string              `json:"imageURI"`
	Auth      *sigs.Authorization `json:"auth"`
}

type SetFollowModuleWithSig struct {
	ProfileID            types.ProfileID     `json:"profileId"`
	FollowModule         common.Address      `json:"followModule"`
	FollowModuleInitData []byte              `json:"followModuleInitData"`
	Auth                 *sigs.Authorization `json:"auth"`
}

type PostWithSig struct {
	hub.PostRequest
	Auth *sigs.Authorization `json:"auth"`
}

type CommentWithSig struct {
	hub.CommentRequest
	Auth *sigs.Authorization `json:"auth"`
}

type MirrorWithSig struct {
	hub.MirrorRequest
	Auth *sigs.Authorization `json:"auth"`
}

type FollowWithSig struct {
	ProfileIDs []types.ProfileID   `json:"profileIds"`
	Datas      [][]byte            `json:"datas"`
	Auth       *sigs.Authorization `json:"auth"`
}

type CollectWithSig struct {
	hub.CollectRequest
	Auth *sigs.Authorization `json:"auth"`
}

type PermitWithSig struct {
	Collection common.Address      `json:"collection"`
	Spender    common.Address      `json:"spender"`
	TokenID    uint64              `json:"tokenId"`
	Auth       *sigs.Authorization `json:"auth"`
}

type PermitForAllWithSig struct {
	Collection common.Address      `json:"collection"`
	Owner      common.Address      `json:"owner"`
	Operator   common.Address      `json:"operator"`
	Approved   bool                `json:"approved"`
	Auth       *sigs.Authorization `json:"auth"`
}

type BurnWithSig struct {
	Collection common.Address      `json:"collection"`
	TokenID    uint64              `json:"tokenId"`
	Auth       *sigs.Authorization `json:"auth"`
}

type DelegateBySig struct {
	Collection common.Address      `json:"collection"`
	Delegator  common.Address      `json:"delegator"`
	Delegatee  common.Address      `json:"delegatee"`
	Auth       *sigs.Authorization `json:"auth"`
}

func profileView(p *state.Profile, owner common.Address) *Profile {
	return &Profile{
		ID:               types.ProfileID(p.ID),
		Owner:            owner,
		Handle:           p.Handle,
		ImageURI:         p.ImageURI,
		Dispatcher:       p.DispatcherAddr(),
		FollowModule:     p.FollowModuleAddr(),
		FollowModuleData: p.FollowModuleData,
		FollowNFT:        p.FollowNFTAddr(),
		PubCount:         p.PubCount,
		CreatedAt:        p.CreatedAt,
	}
}

func publicationView(p *state.Publication) *Publication {
	pub := &Publication{
		ProfileID:           types.ProfileID(p.ProfileID),
		PubID:               types.PubID(p.PubID),
		Kind:                p.PubKind().String(),
		ContentURI:          p.ContentURI,
		CollectModule:       p.CollectModuleAddr(),
		CollectModuleData:   p.CollectModuleData,
		ReferenceModule:     p.ReferenceModuleAddr(),
		ReferenceModuleData: p.ReferenceModuleData,
		CollectNFT:          p.CollectNFTAddr(),
		Timestamp:           p.Timestamp,
	}
	if p.PubKind() != types.PubKindPost {
		pointed := p.Pointed()
		pub.Pointed = &pointed
	}
	return pub
}

func domainView(d sigs.Domain) *Domain {
	return &Domain{Name: d.Name, ChainID: d.ChainID, VerifyingContract: d.VerifyingContract}
}

func collectionKind(kind uint8) string {
	switch kind {
	case state.CollectionProfile:
		return "profile"
	case state.CollectionFollow:
		return "follow"
	case state.CollectionCollect:
		return "collect"
	default:
		return "unknown"
	}
}
