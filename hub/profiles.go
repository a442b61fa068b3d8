package hub

import (
	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/hub/hub/governance"
	"go.vocdoni.io/hub/hub/identity"
	"go.vocdoni.io/hub/hub/sigs"
	"go.vocdoni.io/hub/hub/state"
	"go.vocdoni.io/hub/types"
)

// CreateProfileRequest holds the inputs of CreateProfile.
type CreateProfileRequest struct {
	To                   common.Address `json:"to"`
	Handle               string         `json:"handle"`
	ImageURI             string         `json:"imageURI"`
	FollowModule         common.Address `json:"followModule"`
	FollowModuleInitData []byte         `json:"followModuleInitData"`
}

// CreateProfile mints a profile to req.To. The caller must be an admitted
// profile creator.
func (h *Hub) CreateProfile(caller common.Address, req *CreateProfileRequest) (types.ProfileID, error) {
	var id types.ProfileID
	err := h.update("createProfile", func(tx *state.Tx, ev *events) error {
		if err := governance.CheckNotPaused(tx, types.Paused); err != nil {
			return err
		}
		p, err := h.identity.CreateProfile(tx, caller, &identity.CreateProfileParams{
			To:       req.To,
			Handle:   req.Handle,
			ImageURI: req.ImageURI,
		}, h.clock.Timestamp(), h.clock.Height())
		if err != nil {
			return err
		}
		id = types.ProfileID(p.ID)
		if req.FollowModule != types.ZeroAddress {
			ret, err := h.configureModule(tx, types.FollowModule, req.FollowModule, id, 0, req.To, req.FollowModuleInitData)
			if err != nil {
				return err
			}
			p.SetFollowModuleAddr(req.FollowModule)
			p.FollowModuleData = ret
			if err := tx.SetProfile(p); err != nil {
				return err
			}
		}
		ev.emit(&Event{Type: EventProfileCreated, ProfileID: id, Actor: caller, Target: req.To, Data: []byte(req.Handle)})
		return nil
	})
	if err != nil {
		return 0, err
	}
	HubProfiles.Inc()
	return id, nil
}

// SetFollowModule attaches a follow module to a profile, or detaches it when
// module is zero. Owner or dispatcher.
func (h *Hub) SetFollowModule(caller common.Address, profileID types.ProfileID, module common.Address, data []byte) error {
	return h.setFollowModule("setFollowModule", caller, profileID, module, data, nil)
}

// SetFollowModuleWithSig is SetFollowModule authorized by an owner signature.
func (h *Hub) SetFollowModuleWithSig(profileID types.ProfileID, module common.Address, data []byte,
	auth *sigs.Authorization,
) error {
	return h.setFollowModule("setFollowModuleWithSig", signer(auth), profileID, module, data,
		h.withSig(sigs.SetFollowModule(profileID, module, data), auth))
}

func (h *Hub) setFollowModule(op string, caller common.Address, profileID types.ProfileID, module common.Address,
	data []byte, v verifier,
) error {
	return h.update(op, func(tx *state.Tx, ev *events) error {
		if err := governance.CheckNotPaused(tx, types.Paused); err != nil {
			return err
		}
		p, err := h.identity.Authorize(tx, profileID, caller, v != nil)
		if err != nil {
			return err
		}
		var ret []byte
		if module != types.ZeroAddress {
			owner, err := h.identity.OwnerOf(tx, profileID)
			if err != nil {
				return err
			}
			if ret, err = h.configureModule(tx, types.FollowModule, module, profileID, 0, owner, data); err != nil {
				return err
			}
		}
		if err := v.verify(tx); err != nil {
			return err
		}
		p.SetFollowModuleAddr(module)
		p.FollowModuleData = ret
		if err := tx.SetProfile(p); err != nil {
			return err
		}
		ev.emit(&Event{Type: EventFollowModuleSet, ProfileID: profileID, Actor: caller, Target: module, Data: ret})
		return nil
	})
}

// SetDispatcher sets or clears the dispatcher of a profile.
func (h *Hub) SetDispatcher(caller common.Address, profileID types.ProfileID, dispatcher common.Address) error {
	return h.setDispatcher("setDispatcher", caller, profileID, dispatcher, nil)
}

// SetDispatcherWithSig is SetDispatcher authorized by an owner signature.
func (h *Hub) SetDispatcherWithSig(profileID types.ProfileID, dispatcher common.Address, auth *sigs.Authorization) error {
	return h.setDispatcher("setDispatcherWithSig", signer(auth), profileID, dispatcher,
		h.withSig(sigs.SetDispatcher(profileID, dispatcher), auth))
}

func (h *Hub) setDispatcher(op string, caller common.Address, profileID types.ProfileID, dispatcher common.Address,
	v verifier,
) error {
	return h.update(op, func(tx *state.Tx, ev *events) error {
		if err := governance.CheckNotPaused(tx, types.Paused); err != nil {
			return err
		}
		if err := h.identity.SetDispatcher(tx, caller, profileID, dispatcher); err != nil {
			return err
		}
		if err := v.verify(tx); err != nil {
			return err
		}
		ev.emit(&Event{Type: EventDispatcherSet, ProfileID: profileID, Actor: caller, Target: dispatcher})
		return nil
	})
}

// SetProfileImageURI changes the image of a profile. Owner or dispatcher.
func (h *Hub) SetProfileImageURI(caller common.Address, profileID types.ProfileID, uri string) error {
	return h.setProfileImageURI("setProfileImageURI", caller, profileID, uri, nil)
}

// SetProfileImageURIWithSig is SetProfileImageURI authorized by an owner
// signature.
func (h *Hub) SetProfileImageURIWithSig(profileID types.ProfileID, uri string, auth *sigs.Authorization) error {
	return h.setProfileImageURI("setProfileImageURIWithSig", signer(auth), profileID, uri,
		h.withSig(sigs.SetProfileImageURI(profileID, uri), auth))
}

func (h *Hub) setProfileImageURI(op string, caller common.Address, profileID types.ProfileID, uri string,
	v verifier,
) error {
	return h.update(op, func(tx *state.Tx, ev *events) error {
		if err := governance.CheckNotPaused(tx, types.Paused); err != nil {
			return err
		}
		if v != nil {
			if _, err := h.identity.Authorize(tx, profileID, caller, true); err != nil {
				return err
			}
		}
		if err := h.identity.SetImageURI(tx, caller, profileID, uri); err != nil {
			return err
		}
		if err := v.verify(tx); err != nil {
			return err
		}
		ev.emit(&Event{Type: EventProfileImageURISet, ProfileID: profileID, Actor: caller, Data: []byte(uri)})
		return nil
	})
}

// TransferProfile moves a profile to a new owner, clearing its dispatcher.
func (h *Hub) TransferProfile(caller, from, to common.Address, profileID types.ProfileID) error {
	return h.update("transferProfile", func(tx *state.Tx, ev *events) error {
		if err := governance.CheckNotPaused(tx, types.Paused); err != nil {
			return err
		}
		if err := h.identity.Transfer(tx, caller, from, to, profileID, h.clock.Height()); err != nil {
			return err
		}
		ev.emit(&Event{
			Type:       EventProfileTransferred,
			ProfileID:  profileID,
			Actor:      from,
			Target:     to,
			Collection: h.address,
			TokenID:    uint64(profileID),
		})
		return nil
	})
}

// Profile returns a profile record.
func (h *Hub) Profile(profileID types.ProfileID) (*state.Profile, error) {
	var p *state.Profile
	err := h.view(func(tx *state.Tx) error {
		var err error
		p, err = h.identity.Profile(tx, profileID)
		return err
	})
	return p, err
}

// ProfileOwner returns the owner of a profile.
func (h *Hub) ProfileOwner(profileID types.ProfileID) (common.Address, error) {
	var owner common.Address
	err := h.view(func(tx *state.Tx) error {
		var err error
		owner, err = h.identity.OwnerOf(tx, profileID)
		return err
	})
	return owner, err
}

// ProfileIDByHandle resolves a handle, zero if unknown.
func (h *Hub) ProfileIDByHandle(handle string) (types.ProfileID, error) {
	var id types.ProfileID
	err := h.view(func(tx *state.Tx) error {
		var err error
		id, err = h.identity.ProfileIDByHandle(tx, handle)
		return err
	})
	return id, err
}
