// Package api exposes the hub over HTTP: JSON reads of the protocol state
// and relayed signed operations. Rejections are answered with HTTP 400 and
// the verbatim reason name.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi"
	"go.vocdoni.io/hub/hub"
	"go.vocdoni.io/hub/log"
	"go.vocdoni.io/hub/types"
)

// MaxRequestSize bounds the body of signed operations.
const MaxRequestSize = 1 << 20

var (
	ErrHubIsNil         = fmt.Errorf("hub is nil")
	ErrRouterIsNil      = fmt.Errorf("router is nil")
	ErrBaseRouteInvalid = fmt.Errorf("base route must start with /")
)

// API is the hub REST API.
type API struct {
	hub       *hub.Hub
	baseRoute string
}

// NewAPI creates the API and mounts its handlers on router under baseRoute.
func NewAPI(h *hub.Hub, router chi.Router, baseRoute string) (*API, error) {
	if h == nil {
		return nil, ErrHubIsNil
	}
	if router == nil {
		return nil, ErrRouterIsNil
	}
	if len(baseRoute) == 0 || baseRoute[0] != '/' {
		return nil, fmt.Errorf("%w (invalid given: %s)", ErrBaseRouteInvalid, baseRoute)
	}
	a := &API{hub: h, baseRoute: strings.TrimSuffix(baseRoute, "/")}
	router.Route(a.baseRoute, func(r chi.Router) {
		a.attachReads(r)
		a.attachSigned(r)
	})
	log.Infow("hub api mounted", "route", a.baseRoute)
	return a, nil
}

func (a *API) attachReads(r chi.Router) {
	r.Get("/protocol", a.protocolHandler)
	r.Get("/domain", a.domainHandler)
	r.Get("/errors", a.errorsHandler)
	r.Get("/nonces/{address}", a.nonceHandler)
	r.Get("/whitelist/creators", a.creatorsHandler)
	r.Get("/whitelist/{kind}", a.whitelistHandler)
	r.Get("/profiles/{profileId}", a.profileHandler)
	r.Get("/profiles/handle/{handle}", a.profileByHandleHandler)
	r.Get("/profiles/{profileId}/followers/{address}", a.followingHandler)
	r.Get("/publications/{profileId}/{pubId}", a.publicationHandler)
	r.Get("/nfts/{collection}", a.collectionHandler)
	r.Get("/nfts/{collection}/tokens/{tokenId}", a.tokenHandler)
	r.Get("/nfts/{collection}/power/{address}/{block}", a.powerHandler)
	r.Get("/nfts/{collection}/supply/{block}", a.supplyHandler)
}

func (a *API) attachSigned(r chi.Router) {
	r.Post("/sig/setDispatcher", a.setDispatcherHandler)
	r.Post("/sig/setProfileImageURI", a.setProfileImageURIHandler)
	r.Post("/sig/setFollowModule", a.setFollowModuleHandler)
	r.Post("/sig/post", a.postHandler)
	r.Post("/sig/comment", a.commentHandler)
	r.Post("/sig/mirror", a.mirrorHandler)
	r.Post("/sig/follow", a.followHandler)
	r.Post("/sig/collect", a.collectHandler)
	r.Post("/sig/permit", a.permitHandler)
	r.Post("/sig/permitForAll", a.permitForAllHandler)
	r.Post("/sig/burn", a.burnHandler)
	r.Post("/sig/delegate", a.delegateHandler)
}

func sendJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		ErrMarshalingServerJSONFailed.Withf("%v", err).Send(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		log.Debugw("cannot write response", "error", err)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestSize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return ErrCantParsePayloadAsJSON.Withf("%v", err)
	}
	return nil
}

func addressParam(r *http.Request, name string) (common.Address, error) {
	s := chi.URLParam(r, name)
	if !common.IsHexAddress(s) {
		return types.ZeroAddress, ErrAddressMalformed.With(s)
	}
	return common.HexToAddress(s), nil
}

func uintParam(r *http.Request, name string, apiErr APIerror) (uint64, error) {
	s := chi.URLParam(r, name)
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, apiErr.With(s)
	}
	return n, nil
}

func moduleKind(s string) (types.ModuleKind, error) {
	for _, k := range []types.ModuleKind{types.FollowModule, types.CollectModule, types.ReferenceModule} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, ErrCantParseModuleKind.With(s)
}
