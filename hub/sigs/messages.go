package sigs

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"go.vocdoni.io/hub/types"
)

// Typed-data primary types.
const (
	TypeSetFollowModule    = "SetFollowModuleWithSig"
	TypeSetDispatcher      = "SetDispatcherWithSig"
	TypeSetProfileImageURI = "SetProfileImageURIWithSig"
	TypePost               = "PostWithSig"
	TypeComment            = "CommentWithSig"
	TypeMirror             = "MirrorWithSig"
	TypeFollow             = "FollowWithSig"
	TypeCollect            = "CollectWithSig"
	TypePermit             = "Permit"
	TypePermitForAll       = "PermitForAll"
	TypeBurn               = "BurnWithSig"
	TypeDelegate           = "DelegateBySig"
)

func fields(pairs ...string) []apitypes.Type {
	list := make([]apitypes.Type, 0, len(pairs)/2+2)
	for i := 0; i+1 < len(pairs); i += 2 {
		list = append(list, apitypes.Type{Name: pairs[i], Type: pairs[i+1]})
	}
	return append(list,
		apitypes.Type{Name: "nonce", Type: "uint256"},
		apitypes.Type{Name: "deadline", Type: "uint256"},
	)
}

var messageTypes = map[string][]apitypes.Type{
	TypeSetFollowModule: fields(
		"profileId", "uint256",
		"followModule", "address",
		"followModuleInitData", "bytes"),
	TypeSetDispatcher: fields(
		"profileId", "uint256",
		"dispatcher", "address"),
	TypeSetProfileImageURI: fields(
		"profileId", "uint256",
		"imageURI", "string"),
	TypePost: fields(
		"profileId", "uint256",
		"contentURI", "string",
		"collectModule", "address",
		"collectModuleInitData", "bytes",
		"referenceModule", "address",
		"referenceModuleInitData", "bytes"),
	TypeComment: fields(
		"profileId", "uint256",
		"contentURI", "string",
		"profileIdPointed", "uint256",
		"pubIdPointed", "uint256",
		"referenceModuleData", "bytes",
		"collectModule", "address",
		"collectModuleInitData", "bytes",
		"referenceModule", "address",
		"referenceModuleInitData", "bytes"),
	TypeMirror: fields(
		"profileId", "uint256",
		"profileIdPointed", "uint256",
		"pubIdPointed", "uint256",
		"referenceModuleData", "bytes",
		"referenceModule", "address",
		"referenceModuleInitData", "bytes"),
	TypeFollow: fields(
		"profileIds", "uint256[]",
		"datas", "bytes[]"),
	TypeCollect: fields(
		"profileId", "uint256",
		"pubId", "uint256",
		"data", "bytes"),
	TypePermit: fields(
		"spender", "address",
		"tokenId", "uint256"),
	TypePermitForAll: fields(
		"owner", "address",
		"operator", "address",
		"approved", "bool"),
	TypeBurn: fields(
		"tokenId", "uint256"),
	TypeDelegate: fields(
		"delegator", "address",
		"delegatee", "address"),
}

// SetFollowModule is signed by a profile owner to change its follow module.
func SetFollowModule(profileID types.ProfileID, module common.Address, initData []byte) Message {
	return Message{TypeSetFollowModule, apitypes.TypedDataMessage{
		"profileId":            Uint(uint64(profileID)),
		"followModule":         Address(module),
		"followModuleInitData": Bytes(initData),
	}}
}

// SetDispatcher is signed by a profile owner to set or clear its dispatcher.
func SetDispatcher(profileID types.ProfileID, dispatcher common.Address) Message {
	return Message{TypeSetDispatcher, apitypes.TypedDataMessage{
		"profileId":  Uint(uint64(profileID)),
		"dispatcher": Address(dispatcher),
	}}
}

// SetProfileImageURI is signed by a profile owner to change its image.
func SetProfileImageURI(profileID types.ProfileID, uri string) Message {
	return Message{TypeSetProfileImageURI, apitypes.TypedDataMessage{
		"profileId": Uint(uint64(profileID)),
		"imageURI":  uri,
	}}
}

// Post is signed by a profile owner to publish a post.
func Post(profileID types.ProfileID, contentURI string, collectModule common.Address,
	collectData []byte, referenceModule common.Address, referenceData []byte,
) Message {
	return Message{TypePost, apitypes.TypedDataMessage{
		"profileId":               Uint(uint64(profileID)),
		"contentURI":              contentURI,
		"collectModule":           Address(collectModule),
		"collectModuleInitData":   Bytes(collectData),
		"referenceModule":         Address(referenceModule),
		"referenceModuleInitData": Bytes(referenceData),
	}}
}

// Comment is signed by a profile owner to comment on a publication.
func Comment(profileID types.ProfileID, contentURI string, pointed types.PubPointer,
	referenceModuleData []byte, collectModule common.Address, collectData []byte,
	referenceModule common.Address, referenceData []byte,
) Message {
	return Message{TypeComment, apitypes.TypedDataMessage{
		"profileId":               Uint(uint64(profileID)),
		"contentURI":              contentURI,
		"profileIdPointed":        Uint(uint64(pointed.ProfileID)),
		"pubIdPointed":            Uint(uint64(pointed.PubID)),
		"referenceModuleData":     Bytes(referenceModuleData),
		"collectModule":           Address(collectModule),
		"collectModuleInitData":   Bytes(collectData),
		"referenceModule":         Address(referenceModule),
		"referenceModuleInitData": Bytes(referenceData),
	}}
}

// Mirror is signed by a profile owner to mirror a publication.
func Mirror(profileID types.ProfileID, pointed types.PubPointer, referenceModuleData []byte,
	referenceModule common.Address, referenceData []byte,
) Message {
	return Message{TypeMirror, apitypes.TypedDataMessage{
		"profileId":               Uint(uint64(profileID)),
		"profileIdPointed":        Uint(uint64(pointed.ProfileID)),
		"pubIdPointed":            Uint(uint64(pointed.PubID)),
		"referenceModuleData":     Bytes(referenceModuleData),
		"referenceModule":         Address(referenceModule),
		"referenceModuleInitData": Bytes(referenceData),
	}}
}

// Follow is signed by a follower to follow a batch of profiles.
func Follow(profileIDs []types.ProfileID, datas [][]byte) Message {
	ids := make([]interface{}, len(profileIDs))
	for i, id := range profileIDs {
		ids[i] = Uint(uint64(id))
	}
	ds := make([]interface{}, len(datas))
	for i, d := range datas {
		ds[i] = Bytes(d)
	}
	return Message{TypeFollow, apitypes.TypedDataMessage{
		"profileIds": ids,
		"datas":      ds,
	}}
}

// Collect is signed by a collector to collect a publication.
func Collect(ptr types.PubPointer, data []byte) Message {
	return Message{TypeCollect, apitypes.TypedDataMessage{
		"profileId": Uint(uint64(ptr.ProfileID)),
		"pubId":     Uint(uint64(ptr.PubID)),
		"data":      Bytes(data),
	}}
}

// Permit is signed by a token owner to approve spender on a single token.
func Permit(spender common.Address, tokenID uint64) Message {
	return Message{TypePermit, apitypes.TypedDataMessage{
		"spender": Address(spender),
		"tokenId": Uint(tokenID),
	}}
}

// PermitForAll is signed by owner to grant or revoke operator rights.
func PermitForAll(owner, operator common.Address, approved bool) Message {
	return Message{TypePermitForAll, apitypes.TypedDataMessage{
		"owner":    Address(owner),
		"operator": Address(operator),
		"approved": Bool(approved),
	}}
}

// Burn is signed by a token owner to burn it.
func Burn(tokenID uint64) Message {
	return Message{TypeBurn, apitypes.TypedDataMessage{
		"tokenId": Uint(tokenID),
	}}
}

// Delegate is signed by a follow NFT holder to delegate its power.
func Delegate(delegator, delegatee common.Address) Message {
	return Message{TypeDelegate, apitypes.TypedDataMessage{
		"delegator": Address(delegator),
		"delegatee": Address(delegatee),
	}}
}
