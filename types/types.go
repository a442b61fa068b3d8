// Package types holds the identifiers and limits shared by every hub
// component.
package types

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// MaxHandleLength is the maximum length of a profile handle.
	MaxHandleLength = 31
	// MaxProfileImageURILength is the maximum length of a profile image URI.
	MaxProfileImageURILength = 6000
)

// ZeroAddress is the null identity.
var ZeroAddress = common.Address{}

// ProfileID identifies a profile. Zero is never assigned.
type ProfileID uint64

// Bytes returns the big-endian encoding, used as storage key component.
func (p ProfileID) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(p))
	return b[:]
}

// PubID identifies a publication within a profile. Zero is never assigned.
type PubID uint64

// Bytes returns the big-endian encoding, used as storage key component.
func (p PubID) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(p))
	return b[:]
}

// PubPointer references a publication.
type PubPointer struct {
	ProfileID ProfileID `json:"profileId"`
	PubID     PubID     `json:"pubId"`
}

func (p PubPointer) String() string {
	return fmt.Sprintf("%d-%d", p.ProfileID, p.PubID)
}

// PubKind is the type of a publication.
type PubKind uint8

const (
	PubKindNone PubKind = iota
	PubKindPost
	PubKindComment
	PubKindMirror
)

func (k PubKind) String() string {
	switch k {
	case PubKindPost:
		return "post"
	case PubKindComment:
		return "comment"
	case PubKindMirror:
		return "mirror"
	default:
		return "none"
	}
}

// PauseLevel is the protocol-wide gate. Levels are totally ordered by
// restrictiveness.
type PauseLevel uint8

const (
	Unpaused PauseLevel = iota
	PublishingPaused
	Paused
)

func (l PauseLevel) String() string {
	switch l {
	case Unpaused:
		return "unpaused"
	case PublishingPaused:
		return "publishingPaused"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(l))
	}
}

// Valid reports whether l is a known level.
func (l PauseLevel) Valid() bool {
	return l <= Paused
}

// ModuleKind is the extension point a module plugs into.
type ModuleKind uint8

const (
	FollowModule ModuleKind = iota + 1
	CollectModule
	ReferenceModule
)

func (k ModuleKind) String() string {
	switch k {
	case FollowModule:
		return "follow"
	case CollectModule:
		return "collect"
	case ReferenceModule:
		return "reference"
	default:
		return "unknown"
	}
}

// Uint64Bytes encodes n big-endian.
func Uint64Bytes(n uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	return b[:]
}
