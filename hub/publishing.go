package hub

import (
	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/hub/hub/governance"
	"go.vocdoni.io/hub/hub/modules"
	"go.vocdoni.io/hub/hub/publication"
	"go.vocdoni.io/hub/hub/sigs"
	"go.vocdoni.io/hub/hub/state"
	"go.vocdoni.io/hub/types"
)

// PostRequest holds the inputs of Post.
type PostRequest struct {
	ProfileID               types.ProfileID `json:"profileId"`
	ContentURI              string          `json:"contentURI"`
	CollectModule           common.Address  `json:"collectModule"`
	CollectModuleInitData   []byte          `json:"collectModuleInitData"`
	ReferenceModule         common.Address  `json:"referenceModule"`
	ReferenceModuleInitData []byte          `json:"referenceModuleInitData"`
}

// CommentRequest holds the inputs of Comment.
type CommentRequest struct {
	ProfileID               types.ProfileID  `json:"profileId"`
	ContentURI              string           `json:"contentURI"`
	Pointed                 types.PubPointer `json:"pointed"`
	ReferenceModuleData     []byte           `json:"referenceModuleData"`
	CollectModule           common.Address   `json:"collectModule"`
	CollectModuleInitData   []byte           `json:"collectModuleInitData"`
	ReferenceModule         common.Address   `json:"referenceModule"`
	ReferenceModuleInitData []byte           `json:"referenceModuleInitData"`
}

// MirrorRequest holds the inputs of Mirror.
type MirrorRequest struct {
	ProfileID               types.ProfileID  `json:"profileId"`
	Pointed                 types.PubPointer `json:"pointed"`
	ReferenceModuleData     []byte           `json:"referenceModuleData"`
	ReferenceModule         common.Address   `json:"referenceModule"`
	ReferenceModuleInitData []byte           `json:"referenceModuleInitData"`
}

// draft is a publication being built by a transition.
type draft struct {
	pub     *state.Publication
	profile *state.Profile
	owner   common.Address
}

// allocate runs the stages every publication shares before its modules: the
// publishing gate, authorization and id allocation.
func (h *Hub) allocate(tx *state.Tx, caller common.Address, profileID types.ProfileID, kind types.PubKind,
	strict bool,
) (*draft, error) {
	if err := governance.CheckNotPaused(tx, types.PublishingPaused); err != nil {
		return nil, err
	}
	p, err := h.identity.Authorize(tx, profileID, caller, strict)
	if err != nil {
		return nil, err
	}
	owner, err := h.identity.OwnerOf(tx, profileID)
	if err != nil {
		return nil, err
	}
	pubID, err := publication.Allocate(tx, p)
	if err != nil {
		return nil, err
	}
	return &draft{
		profile: p,
		owner:   owner,
		pub: &state.Publication{
			ProfileID: uint64(profileID),
			PubID:     uint64(pubID),
			Kind:      uint8(kind),
			Timestamp: h.clock.Timestamp(),
		},
	}, nil
}

// configure attaches the collect and reference modules of a draft.
func (h *Hub) configure(tx *state.Tx, d *draft, collect common.Address, collectData []byte,
	reference common.Address, referenceData []byte,
) error {
	ptr := d.pub.Pointer()
	if d.pub.PubKind() != types.PubKindMirror {
		ret, err := h.configureModule(tx, types.CollectModule, collect, ptr.ProfileID, ptr.PubID, d.owner, collectData)
		if err != nil {
			return err
		}
		d.pub.SetCollectModuleAddr(collect)
		d.pub.CollectModuleData = ret
	}
	if reference != types.ZeroAddress {
		ret, err := h.configureModule(tx, types.ReferenceModule, reference, ptr.ProfileID, ptr.PubID, d.owner, referenceData)
		if err != nil {
			return err
		}
		d.pub.SetReferenceModuleAddr(reference)
		d.pub.ReferenceModuleData = ret
	}
	return nil
}

// processReference runs the reference module of the referenced publication.
func (h *Hub) processReference(tx *state.Tx, d *draft, pointed *state.Publication, action modules.Action,
	data []byte,
) error {
	addr := pointed.ReferenceModuleAddr()
	if addr == types.ZeroAddress {
		return nil
	}
	m, err := h.attachedModule(types.ReferenceModule, addr)
	if err != nil {
		return err
	}
	ctx := h.moduleContext(tx, addr)
	ctx.Action = action
	ctx.ProfileID = types.ProfileID(pointed.ProfileID)
	ctx.PubID = types.PubID(pointed.PubID)
	ctx.Actor = d.owner
	ctx.ReferrerProfileID = types.ProfileID(d.pub.ProfileID)
	ctx.ReferrerPubID = types.PubID(d.pub.PubID)
	ctx.Config = pointed.ReferenceModuleData
	ctx.Data = data
	return m.ProcessAction(ctx)
}

// Post publishes a post. Owner or dispatcher.
func (h *Hub) Post(caller common.Address, req *PostRequest) (types.PubID, error) {
	return h.post("post", caller, req, nil)
}

// PostWithSig is Post authorized by an owner signature.
func (h *Hub) PostWithSig(req *PostRequest, auth *sigs.Authorization) (types.PubID, error) {
	return h.post("postWithSig", signer(auth), req, h.withSig(sigs.Post(req.ProfileID, req.ContentURI,
		req.CollectModule, req.CollectModuleInitData, req.ReferenceModule, req.ReferenceModuleInitData), auth))
}

func (h *Hub) post(op string, caller common.Address, req *PostRequest, v verifier) (types.PubID, error) {
	var pubID types.PubID
	err := h.update(op, func(tx *state.Tx, ev *events) error {
		d, err := h.allocate(tx, caller, req.ProfileID, types.PubKindPost, v != nil)
		if err != nil {
			return err
		}
		d.pub.ContentURI = req.ContentURI
		if err := h.configure(tx, d, req.CollectModule, req.CollectModuleInitData,
			req.ReferenceModule, req.ReferenceModuleInitData); err != nil {
			return err
		}
		if err := v.verify(tx); err != nil {
			return err
		}
		if err := tx.SetPublication(d.pub); err != nil {
			return err
		}
		pubID = types.PubID(d.pub.PubID)
		ev.emit(&Event{Type: EventPostCreated, ProfileID: req.ProfileID, PubID: pubID, Actor: caller,
			Data: []byte(req.ContentURI)})
		return nil
	})
	return pubID, err
}

// Comment publishes a comment on an existing publication. Owner or
// dispatcher.
func (h *Hub) Comment(caller common.Address, req *CommentRequest) (types.PubID, error) {
	return h.comment("comment", caller, req, nil)
}

// CommentWithSig is Comment authorized by an owner signature.
func (h *Hub) CommentWithSig(req *CommentRequest, auth *sigs.Authorization) (types.PubID, error) {
	return h.comment("commentWithSig", signer(auth), req, h.withSig(sigs.Comment(req.ProfileID, req.ContentURI,
		req.Pointed, req.ReferenceModuleData, req.CollectModule, req.CollectModuleInitData,
		req.ReferenceModule, req.ReferenceModuleInitData), auth))
}

func (h *Hub) comment(op string, caller common.Address, req *CommentRequest, v verifier) (types.PubID, error) {
	var pubID types.PubID
	err := h.update(op, func(tx *state.Tx, ev *events) error {
		d, err := h.allocate(tx, caller, req.ProfileID, types.PubKindComment, v != nil)
		if err != nil {
			return err
		}
		ptr := d.pub.Pointer()
		if err := publication.ValidatePointer(tx, ptr.ProfileID, ptr.PubID, req.Pointed); err != nil {
			return err
		}
		pointed, err := publication.Get(tx, req.Pointed)
		if err != nil {
			return err
		}
		d.pub.ContentURI = req.ContentURI
		d.pub.PointedProfileID = uint64(req.Pointed.ProfileID)
		d.pub.PointedPubID = uint64(req.Pointed.PubID)
		if err := h.configure(tx, d, req.CollectModule, req.CollectModuleInitData,
			req.ReferenceModule, req.ReferenceModuleInitData); err != nil {
			return err
		}
		if err := v.verify(tx); err != nil {
			return err
		}
		if err := h.processReference(tx, d, pointed, modules.ActionComment, req.ReferenceModuleData); err != nil {
			return err
		}
		if err := tx.SetPublication(d.pub); err != nil {
			return err
		}
		pubID = ptr.PubID
		ev.emit(&Event{Type: EventCommentCreated, ProfileID: req.ProfileID, PubID: pubID, Pointed: req.Pointed,
			Actor: caller, Data: []byte(req.ContentURI)})
		return nil
	})
	return pubID, err
}

// Mirror republishes an existing publication. Mirroring a mirror points at
// the mirrored root. Owner or dispatcher.
func (h *Hub) Mirror(caller common.Address, req *MirrorRequest) (types.PubID, error) {
	return h.mirror("mirror", caller, req, nil)
}

// MirrorWithSig is Mirror authorized by an owner signature.
func (h *Hub) MirrorWithSig(req *MirrorRequest, auth *sigs.Authorization) (types.PubID, error) {
	return h.mirror("mirrorWithSig", signer(auth), req, h.withSig(sigs.Mirror(req.ProfileID, req.Pointed,
		req.ReferenceModuleData, req.ReferenceModule, req.ReferenceModuleInitData), auth))
}

func (h *Hub) mirror(op string, caller common.Address, req *MirrorRequest, v verifier) (types.PubID, error) {
	var pubID types.PubID
	err := h.update(op, func(tx *state.Tx, ev *events) error {
		d, err := h.allocate(tx, caller, req.ProfileID, types.PubKindMirror, v != nil)
		if err != nil {
			return err
		}
		ptr := d.pub.Pointer()
		if err := publication.ValidatePointer(tx, ptr.ProfileID, ptr.PubID, req.Pointed); err != nil {
			return err
		}
		pointed, err := publication.Get(tx, req.Pointed)
		if err != nil {
			return err
		}
		root, err := publication.Root(tx, pointed)
		if err != nil {
			return err
		}
		d.pub.PointedProfileID = root.ProfileID
		d.pub.PointedPubID = root.PubID
		if err := h.configure(tx, d, types.ZeroAddress, nil, req.ReferenceModule, req.ReferenceModuleInitData); err != nil {
			return err
		}
		if err := v.verify(tx); err != nil {
			return err
		}
		if err := h.processReference(tx, d, root, modules.ActionMirror, req.ReferenceModuleData); err != nil {
			return err
		}
		if err := tx.SetPublication(d.pub); err != nil {
			return err
		}
		pubID = ptr.PubID
		ev.emit(&Event{Type: EventMirrorCreated, ProfileID: req.ProfileID, PubID: pubID, Pointed: root.Pointer(),
			Actor: caller})
		return nil
	})
	return pubID, err
}

// Publication returns a publication record.
func (h *Hub) Publication(ptr types.PubPointer) (*state.Publication, error) {
	var pub *state.Publication
	err := h.view(func(tx *state.Tx) error {
		var err error
		pub, err = publication.Get(tx, ptr)
		return err
	})
	return pub, err
}
