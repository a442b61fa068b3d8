package hub

import (
	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/hub/types"
)

// EventType identifies a committed transition.
type EventType uint8

const (
	EventInitialized EventType = iota + 1
	EventGovernanceSet
	EventEmergencyAdminSet
	EventPauseLevelSet
	EventWhitelistChanged
	EventProfileCreated
	EventProfileTransferred
	EventDispatcherSet
	EventProfileImageURISet
	EventFollowModuleSet
	EventPostCreated
	EventCommentCreated
	EventMirrorCreated
	EventFollowed
	EventFollowNFTDeployed
	EventFollowNFTTransferred
	EventCollected
	EventCollectNFTDeployed
	EventCollectNFTTransferred
	EventApproval
	EventApprovalForAll
	EventNFTTransferred
	EventNFTBurnt
	EventDelegated
	EventFollowsApproved
)

var eventNames = map[EventType]string{
	EventInitialized:           "initialized",
	EventGovernanceSet:         "governanceSet",
	EventEmergencyAdminSet:     "emergencyAdminSet",
	EventPauseLevelSet:         "pauseLevelSet",
	EventWhitelistChanged:      "whitelistChanged",
	EventProfileCreated:        "profileCreated",
	EventProfileTransferred:    "profileTransferred",
	EventDispatcherSet:         "dispatcherSet",
	EventProfileImageURISet:    "profileImageURISet",
	EventFollowModuleSet:       "followModuleSet",
	EventPostCreated:           "postCreated",
	EventCommentCreated:        "commentCreated",
	EventMirrorCreated:         "mirrorCreated",
	EventFollowed:              "followed",
	EventFollowNFTDeployed:     "followNFTDeployed",
	EventFollowNFTTransferred:  "followNFTTransferred",
	EventCollected:             "collected",
	EventCollectNFTDeployed:    "collectNFTDeployed",
	EventCollectNFTTransferred: "collectNFTTransferred",
	EventApproval:              "approval",
	EventApprovalForAll:        "approvalForAll",
	EventNFTTransferred:        "nftTransferred",
	EventNFTBurnt:              "nftBurnt",
	EventDelegated:             "delegated",
	EventFollowsApproved:       "followsApproved",
}

func (t EventType) String() string {
	if name, ok := eventNames[t]; ok {
		return name
	}
	return "unknown"
}

// Event describes one effect of a committed transition. Fields not relevant
// to the type are left zero.
type Event struct {
	Type       EventType        `json:"type"`
	ProfileID  types.ProfileID  `json:"profileId,omitempty"`
	PubID      types.PubID      `json:"pubId,omitempty"`
	Pointed    types.PubPointer `json:"pointed,omitempty"`
	Actor      common.Address   `json:"actor"`
	Target     common.Address   `json:"target"`
	Collection common.Address   `json:"collection"`
	TokenID    uint64           `json:"tokenId,omitempty"`
	Data       []byte           `json:"data,omitempty"`
	Timestamp  uint64           `json:"timestamp"`
}

// EventListener receives the events of every committed transition, in order,
// after the commit. Rejected transitions produce no events.
type EventListener interface {
	OnEvent(e *Event)
}

// AddEventListener subscribes l to committed transitions.
func (h *Hub) AddEventListener(l EventListener) {
	h.listenersLock.Lock()
	defer h.listenersLock.Unlock()
	h.listeners = append(h.listeners, l)
}

// CleanEventListeners removes all event listeners.
func (h *Hub) CleanEventListeners() {
	h.listenersLock.Lock()
	defer h.listenersLock.Unlock()
	h.listeners = nil
}

// events collects the events of a transition until it commits.
type events struct {
	list []*Event
	now  uint64
}

func (e *events) emit(ev *Event) {
	ev.Timestamp = e.now
	e.list = append(e.list, ev)
}
