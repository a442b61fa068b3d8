package api

import (
	"net/http"

	"github.com/go-chi/chi"
	"go.vocdoni.io/hub/hub/revert"
	"go.vocdoni.io/hub/types"
)

func (a *API) protocolHandler(w http.ResponseWriter, r *http.Request) {
	p, err := a.hub.Protocol()
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	sendJSON(w, &Protocol{
		Address:                  a.hub.Address(),
		ChainID:                  a.hub.ChainID(),
		Initialized:              p.Initialized,
		Name:                     p.Name,
		Symbol:                   p.Symbol,
		Governance:               p.GovernanceAddr(),
		EmergencyAdmin:           p.EmergencyAdminAddr(),
		State:                    p.Level().String(),
		FollowNFTImplementation:  a.hub.FollowNFTImplementation(),
		CollectNFTImplementation: a.hub.CollectNFTImplementation(),
		Height:                   a.hub.Clock().Height(),
	})
}

func (a *API) domainHandler(w http.ResponseWriter, r *http.Request) {
	d, err := a.hub.Domain()
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	sendJSON(w, domainView(d))
}

func (a *API) errorsHandler(w http.ResponseWriter, r *http.Request) {
	list := []RevertReason{}
	for _, e := range revert.All() {
		list = append(list, RevertReason{Code: e.Code(), Name: e.Name()})
	}
	sendJSON(w, list)
}

func (a *API) nonceHandler(w http.ResponseWriter, r *http.Request) {
	addr, err := addressParam(r, "address")
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	n, err := a.hub.Nonce(addr)
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	sendJSON(w, &Nonce{Address: addr, Nonce: n})
}

func (a *API) creatorsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := a.hub.ProfileCreators()
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	sendJSON(w, &Whitelist{Kind: "creators", Modules: list})
}

func (a *API) whitelistHandler(w http.ResponseWriter, r *http.Request) {
	kind, err := moduleKind(chi.URLParam(r, "kind"))
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	list, err := a.hub.WhitelistedModules(kind)
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	sendJSON(w, &Whitelist{Kind: kind.String(), Modules: list})
}

func (a *API) sendProfile(w http.ResponseWriter, id types.ProfileID) {
	p, err := a.hub.Profile(id)
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	owner, err := a.hub.ProfileOwner(id)
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	sendJSON(w, profileView(p, owner))
}

func (a *API) profileHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uintParam(r, "profileId", ErrCantParseProfileID)
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	a.sendProfile(w, types.ProfileID(id))
}

func (a *API) profileByHandleHandler(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	id, err := a.hub.ProfileIDByHandle(handle)
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	if id == 0 {
		ErrHandleNotFound.With(handle).Send(w)
		return
	}
	a.sendProfile(w, id)
}

func (a *API) followingHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uintParam(r, "profileId", ErrCantParseProfileID)
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	addr, err := addressParam(r, "address")
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	following, err := a.hub.IsFollowing(types.ProfileID(id), addr)
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	sendJSON(w, &Following{ProfileID: types.ProfileID(id), Address: addr, Following: following})
}

func (a *API) publicationHandler(w http.ResponseWriter, r *http.Request) {
	profileID, err := uintParam(r, "profileId", ErrCantParseProfileID)
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	pubID, err := uintParam(r, "pubId", ErrCantParsePubID)
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	pub, err := a.hub.Publication(types.PubPointer{
		ProfileID: types.ProfileID(profileID),
		PubID:     types.PubID(pubID),
	})
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	sendJSON(w, publicationView(pub))
}

func (a *API) collectionHandler(w http.ResponseWriter, r *http.Request) {
	addr, err := addressParam(r, "collection")
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	c, err := a.hub.Collection(addr)
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	sendJSON(w, &Collection{
		Address:     c.Addr(),
		Kind:        collectionKind(c.Kind),
		Name:        c.Name,
		Symbol:      c.Symbol,
		ProfileID:   types.ProfileID(c.ProfileID),
		PubID:       types.PubID(c.PubID),
		TotalSupply: c.TotalSupply,
	})
}

func (a *API) tokenHandler(w http.ResponseWriter, r *http.Request) {
	addr, err := addressParam(r, "collection")
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	tokenID, err := uintParam(r, "tokenId", ErrCantParseTokenID)
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	t, err := a.hub.Token(addr, tokenID)
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	sendJSON(w, &Token{
		Collection:    addr,
		TokenID:       tokenID,
		Owner:         t.OwnerAddr(),
		Approved:      t.ApprovedAddr(),
		MintTimestamp: t.MintTimestamp,
	})
}

func (a *API) powerHandler(w http.ResponseWriter, r *http.Request) {
	addr, err := addressParam(r, "collection")
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	user, err := addressParam(r, "address")
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	block, err := uintParam(r, "block", ErrCantParseBlock)
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	power, err := a.hub.PowerAt(addr, user, block)
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	sendJSON(w, &Power{Collection: addr, Address: user, Block: block, Power: power})
}

func (a *API) supplyHandler(w http.ResponseWriter, r *http.Request) {
	addr, err := addressParam(r, "collection")
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	block, err := uintParam(r, "block", ErrCantParseBlock)
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	supply, err := a.hub.DelegatedSupplyAt(addr, block)
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	sendJSON(w, &Power{Collection: addr, Block: block, Power: supply})
}
