package api

import (
	"net/http"

	"go.vocdoni.io/hub/hub/sigs"
	"go.vocdoni.io/hub/log"
)

// relay decodes a signed operation into req, runs it with exec and answers
// with the result and the signer's next nonce.
func (a *API) relay(w http.ResponseWriter, r *http.Request, op string, req any,
	auth func() *sigs.Authorization, exec func(res *TransitionResult) error,
) {
	if err := decodeBody(w, r, req); err != nil {
		fromHub(err).Send(w)
		return
	}
	sig := auth()
	if sig == nil {
		ErrAuthorizationMissing.With(op).Send(w)
		return
	}
	res := &TransitionResult{}
	if err := exec(res); err != nil {
		log.Debugw("relayed operation rejected", "op", op, "signer", sig.Signer, "error", err)
		fromHub(err).Send(w)
		return
	}
	nonce, err := a.hub.Nonce(sig.Signer)
	if err != nil {
		fromHub(err).Send(w)
		return
	}
	res.Nonce = nonce
	sendJSON(w, res)
}

func (a *API) setDispatcherHandler(w http.ResponseWriter, r *http.Request) {
	req := &SetDispatcherWithSig{}
	a.relay(w, r, "setDispatcher", req, func() *sigs.Authorization { return req.Auth },
		func(res *TransitionResult) error {
			res.ProfileID = req.ProfileID
			return a.hub.SetDispatcherWithSig(req.ProfileID, req.Dispatcher, req.Auth)
		})
}

func (a *API) setProfileImageURIHandler(w http.ResponseWriter, r *http.Request) {
	req := &SetProfileImageURIWithSig{}
	a.relay(w, r, "setProfileImageURI", req, func() *sigs.Authorization { return req.Auth },
		func(res *TransitionResult) error {
			res.ProfileID = req.ProfileID
			return a.hub.SetProfileImageURIWithSig(req.ProfileID, req.ImageURI, req.Auth)
		})
}

func (a *API) setFollowModuleHandler(w http.ResponseWriter, r *http.Request) {
	req := &SetFollowModuleWithSig{}
	a.relay(w, r, "setFollowModule", req, func() *sigs.Authorization { return req.Auth },
		func(res *TransitionResult) error {
			res.ProfileID = req.ProfileID
			return a.hub.SetFollowModuleWithSig(req.ProfileID, req.FollowModule, req.FollowModuleInitData, req.Auth)
		})
}

func (a *API) postHandler(w http.ResponseWriter, r *http.Request) {
	req := &PostWithSig{}
	a.relay(w, r, "post", req, func() *sigs.Authorization { return req.Auth },
		func(res *TransitionResult) error {
			pubID, err := a.hub.PostWithSig(&req.PostRequest, req.Auth)
			res.ProfileID, res.PubID = req.ProfileID, pubID
			return err
		})
}

func (a *API) commentHandler(w http.ResponseWriter, r *http.Request) {
	req := &CommentWithSig{}
	a.relay(w, r, "comment", req, func() *sigs.Authorization { return req.Auth },
		func(res *TransitionResult) error {
			pubID, err := a.hub.CommentWithSig(&req.CommentRequest, req.Auth)
			res.ProfileID, res.PubID = req.ProfileID, pubID
			return err
		})
}

func (a *API) mirrorHandler(w http.ResponseWriter, r *http.Request) {
	req := &MirrorWithSig{}
	a.relay(w, r, "mirror", req, func() *sigs.Authorization { return req.Auth },
		func(res *TransitionResult) error {
			pubID, err := a.hub.MirrorWithSig(&req.MirrorRequest, req.Auth)
			res.ProfileID, res.PubID = req.ProfileID, pubID
			return err
		})
}

func (a *API) followHandler(w http.ResponseWriter, r *http.Request) {
	req := &FollowWithSig{}
	a.relay(w, r, "follow", req, func() *sigs.Authorization { return req.Auth },
		func(res *TransitionResult) error {
			tokenIDs, err := a.hub.FollowWithSig(req.ProfileIDs, req.Datas, req.Auth)
			res.TokenIDs = tokenIDs
			return err
		})
}

func (a *API) collectHandler(w http.ResponseWriter, r *http.Request) {
	req := &CollectWithSig{}
	a.relay(w, r, "collect", req, func() *sigs.Authorization { return req.Auth },
		func(res *TransitionResult) error {
			tokenID, err := a.hub.CollectWithSig(&req.CollectRequest, req.Auth)
			res.ProfileID, res.PubID, res.TokenID = req.ProfileID, req.PubID, tokenID
			return err
		})
}

func (a *API) permitHandler(w http.ResponseWriter, r *http.Request) {
	req := &PermitWithSig{}
	a.relay(w, r, "permit", req, func() *sigs.Authorization { return req.Auth },
		func(res *TransitionResult) error {
			res.TokenID = req.TokenID
			return a.hub.Permit(req.Collection, req.Spender, req.TokenID, req.Auth)
		})
}

func (a *API) permitForAllHandler(w http.ResponseWriter, r *http.Request) {
	req := &PermitForAllWithSig{}
	a.relay(w, r, "permitForAll", req, func() *sigs.Authorization { return req.Auth },
		func(res *TransitionResult) error {
			return a.hub.PermitForAll(req.Collection, req.Owner, req.Operator, req.Approved, req.Auth)
		})
}

func (a *API) burnHandler(w http.ResponseWriter, r *http.Request) {
	req := &BurnWithSig{}
	a.relay(w, r, "burn", req, func() *sigs.Authorization { return req.Auth },
		func(res *TransitionResult) error {
			res.TokenID = req.TokenID
			return a.hub.BurnWithSig(req.Collection, req.TokenID, req.Auth)
		})
}

func (a *API) delegateHandler(w http.ResponseWriter, r *http.Request) {
	req := &DelegateBySig{}
	a.relay(w, r, "delegate", req, func() *sigs.Authorization { return req.Auth },
		func(res *TransitionResult) error {
			return a.hub.DelegateBySig(req.Collection, req.Delegator, req.Delegatee, req.Auth)
		})
}
