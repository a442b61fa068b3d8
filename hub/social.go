package hub

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/hub/hub/governance"
	"go.vocdoni.io/hub/hub/modules"
	"go.vocdoni.io/hub/hub/publication"
	"go.vocdoni.io/hub/hub/revert"
	"go.vocdoni.io/hub/hub/sigs"
	"go.vocdoni.io/hub/hub/state"
	"go.vocdoni.io/hub/types"
)

// CollectRequest holds the inputs of Collect. SnapshotBlock, when not zero,
// is the block modules evaluate follower power at; it cannot be in the
// future.
type CollectRequest struct {
	ProfileID     types.ProfileID `json:"profileId"`
	PubID         types.PubID     `json:"pubId"`
	Data          []byte          `json:"data"`
	SnapshotBlock uint64          `json:"snapshotBlock"`
}

func symbolPrefix(handle string) string {
	if len(handle) > 4 {
		return handle[:4]
	}
	return handle
}

// Follow follows every profile in profileIDs, passing datas[i] to the follow
// module of profileIDs[i]. It returns the minted follow NFT token ids.
func (h *Hub) Follow(follower common.Address, profileIDs []types.ProfileID, datas [][]byte) ([]uint64, error) {
	return h.follow("follow", follower, profileIDs, datas, nil)
}

// FollowWithSig is Follow authorized by the follower signature.
func (h *Hub) FollowWithSig(profileIDs []types.ProfileID, datas [][]byte, auth *sigs.Authorization) ([]uint64, error) {
	return h.follow("followWithSig", signer(auth), profileIDs, datas,
		h.withSig(sigs.Follow(profileIDs, datas), auth))
}

func (h *Hub) follow(op string, follower common.Address, profileIDs []types.ProfileID, datas [][]byte,
	v verifier,
) ([]uint64, error) {
	var tokenIDs []uint64
	err := h.update(op, func(tx *state.Tx, ev *events) error {
		if err := governance.CheckNotPaused(tx, types.Paused); err != nil {
			return err
		}
		if err := publication.CheckArrays(len(profileIDs), len(datas)); err != nil {
			return err
		}
		for _, id := range profileIDs {
			if _, err := h.identity.Profile(tx, id); err != nil {
				return err
			}
		}
		if err := v.verify(tx); err != nil {
			return err
		}
		tokenIDs = make([]uint64, 0, len(profileIDs))
		for i, id := range profileIDs {
			// reloaded on each step, a batch may follow a profile twice
			p, err := h.identity.Profile(tx, id)
			if err != nil {
				return err
			}
			if addr := p.FollowModuleAddr(); addr != types.ZeroAddress {
				m, err := h.attachedModule(types.FollowModule, addr)
				if err != nil {
					return err
				}
				ctx := h.moduleContext(tx, addr)
				ctx.Action = modules.ActionFollow
				ctx.ProfileID = id
				ctx.Actor = follower
				ctx.Config = p.FollowModuleData
				ctx.Data = datas[i]
				if err := m.ProcessAction(ctx); err != nil {
					return err
				}
			}
			followNFT, err := h.followNFT(tx, p, ev)
			if err != nil {
				return err
			}
			tokenID, err := h.ledger.Mint(tx, h.address, followNFT, follower, h.clock.Timestamp(), h.clock.Height())
			if err != nil {
				return err
			}
			tokenIDs = append(tokenIDs, tokenID)
			ev.emit(&Event{Type: EventFollowed, ProfileID: id, Actor: follower, Collection: followNFT,
				TokenID: tokenID, Data: datas[i]})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tokenIDs, nil
}

// followNFT returns the follow NFT of p, deploying it on first use.
func (h *Hub) followNFT(tx *state.Tx, p *state.Profile, ev *events) (common.Address, error) {
	if addr := p.FollowNFTAddr(); addr != types.ZeroAddress {
		return addr, nil
	}
	addr, err := h.ledger.Clone(tx, h.followNFTImpl)
	if err != nil {
		return types.ZeroAddress, err
	}
	name := fmt.Sprintf("%s-Follower", p.Handle)
	symbol := fmt.Sprintf("%s-Fl", symbolPrefix(p.Handle))
	if err := h.ledger.Initialize(tx, addr, types.ProfileID(p.ID), 0, name, symbol); err != nil {
		return types.ZeroAddress, err
	}
	p.SetFollowNFTAddr(addr)
	if err := tx.SetProfile(p); err != nil {
		return types.ZeroAddress, err
	}
	ev.emit(&Event{Type: EventFollowNFTDeployed, ProfileID: types.ProfileID(p.ID), Collection: addr})
	return addr, nil
}

// Collect collects a publication. Collecting a mirror collects the mirrored
// root and credits the mirror as referrer. It returns the collect NFT token
// id.
func (h *Hub) Collect(collector common.Address, req *CollectRequest) (uint64, error) {
	return h.collect("collect", collector, req, nil)
}

// CollectWithSig is Collect authorized by the collector signature.
func (h *Hub) CollectWithSig(req *CollectRequest, auth *sigs.Authorization) (uint64, error) {
	ptr := types.PubPointer{ProfileID: req.ProfileID, PubID: req.PubID}
	return h.collect("collectWithSig", signer(auth), req, h.withSig(sigs.Collect(ptr, req.Data), auth))
}

func (h *Hub) collect(op string, collector common.Address, req *CollectRequest, v verifier) (uint64, error) {
	var tokenID uint64
	err := h.update(op, func(tx *state.Tx, ev *events) error {
		if err := governance.CheckNotPaused(tx, types.Paused); err != nil {
			return err
		}
		pub, err := publication.Get(tx, types.PubPointer{ProfileID: req.ProfileID, PubID: req.PubID})
		if err != nil {
			return err
		}
		root, err := publication.Root(tx, pub)
		if err != nil {
			return err
		}
		if req.SnapshotBlock > h.clock.Height() {
			return revert.ErrBlockNumberInvalid.WithDetail("snapshot %d, height %d", req.SnapshotBlock, h.clock.Height())
		}
		if err := v.verify(tx); err != nil {
			return err
		}
		addr := root.CollectModuleAddr()
		m, err := h.attachedModule(types.CollectModule, addr)
		if err != nil {
			return err
		}
		ctx := h.moduleContext(tx, addr)
		ctx.Action = modules.ActionCollect
		ctx.ProfileID = types.ProfileID(root.ProfileID)
		ctx.PubID = types.PubID(root.PubID)
		ctx.Actor = collector
		ctx.ReferrerProfileID = req.ProfileID
		ctx.ReferrerPubID = req.PubID
		ctx.Config = root.CollectModuleData
		ctx.Data = req.Data
		ctx.SnapshotBlock = req.SnapshotBlock
		if err := m.ProcessAction(ctx); err != nil {
			return err
		}
		collectNFT, err := h.collectNFT(tx, root, ev)
		if err != nil {
			return err
		}
		if tokenID, err = h.ledger.Mint(tx, h.address, collectNFT, collector, h.clock.Timestamp(), h.clock.Height()); err != nil {
			return err
		}
		ev.emit(&Event{Type: EventCollected, ProfileID: types.ProfileID(root.ProfileID), PubID: types.PubID(root.PubID),
			Pointed: pub.Pointer(), Actor: collector, Collection: collectNFT, TokenID: tokenID, Data: req.Data})
		return nil
	})
	return tokenID, err
}

// collectNFT returns the collect NFT of pub, deploying it on first use.
func (h *Hub) collectNFT(tx *state.Tx, pub *state.Publication, ev *events) (common.Address, error) {
	if addr := pub.CollectNFTAddr(); addr != types.ZeroAddress {
		return addr, nil
	}
	p, err := h.identity.Profile(tx, types.ProfileID(pub.ProfileID))
	if err != nil {
		return types.ZeroAddress, err
	}
	addr, err := h.ledger.Clone(tx, h.collectNFTImpl)
	if err != nil {
		return types.ZeroAddress, err
	}
	name := fmt.Sprintf("%s-Collect-%d", p.Handle, pub.PubID)
	symbol := fmt.Sprintf("%s-Cl-%d", symbolPrefix(p.Handle), pub.PubID)
	if err := h.ledger.Initialize(tx, addr, types.ProfileID(pub.ProfileID), types.PubID(pub.PubID), name, symbol); err != nil {
		return types.ZeroAddress, err
	}
	pub.SetCollectNFTAddr(addr)
	if err := tx.SetPublication(pub); err != nil {
		return types.ZeroAddress, err
	}
	ev.emit(&Event{Type: EventCollectNFTDeployed, ProfileID: types.ProfileID(pub.ProfileID),
		PubID: types.PubID(pub.PubID), Collection: addr})
	return addr, nil
}

// ApproveFollows updates the allow list an approval follow module keeps for
// a profile. Profile owner only.
func (h *Hub) ApproveFollows(caller, module common.Address, profileID types.ProfileID, addrs []common.Address,
	approved []bool,
) error {
	return h.update("approveFollows", func(tx *state.Tx, ev *events) error {
		if _, err := h.identity.Authorize(tx, profileID, caller, true); err != nil {
			return err
		}
		m, err := h.attachedModule(types.FollowModule, module)
		if err != nil {
			return err
		}
		approver, ok := m.(modules.FollowApprover)
		if !ok {
			return revert.ErrFollowModuleNotWhitelisted.WithDetail("%s does not take approvals", module.Hex())
		}
		ctx := h.moduleContext(tx, module)
		ctx.ProfileID = profileID
		ctx.Actor = caller
		if err := approver.Approve(ctx, addrs, approved); err != nil {
			return err
		}
		ev.emit(&Event{Type: EventFollowsApproved, ProfileID: profileID, Actor: caller, Target: module})
		return nil
	})
}

// IsFollowing reports whether addr holds a follow NFT of profileID.
func (h *Hub) IsFollowing(profileID types.ProfileID, addr common.Address) (bool, error) {
	var following bool
	err := h.view(func(tx *state.Tx) error {
		var err error
		following, err = h.isFollowing(tx, profileID, addr)
		return err
	})
	return following, err
}
