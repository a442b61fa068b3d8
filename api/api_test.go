package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/go-chi/chi"
	"github.com/google/go-cmp/cmp"
	"go.vocdoni.io/hub/hub"
	"go.vocdoni.io/hub/hub/hubtest"
	"go.vocdoni.io/hub/hub/revert"
	"go.vocdoni.io/hub/hub/sigs"
	"go.vocdoni.io/hub/types"
)

type errorBody struct {
	Error  string `json:"error"`
	Code   int    `json:"code"`
	Detail string `json:"detail"`
}

func newTestAPI(t *testing.T, users int) (*hubtest.Env, *chi.Mux) {
	env := hubtest.New(t, users)
	router := NewRouter()
	_, err := NewAPI(env.Hub, router, "/v1")
	qt.Assert(t, err, qt.IsNil)
	return env, router
}

func request(t *testing.T, router http.Handler, method, path string, body any, out any) int {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		qt.Assert(t, err, qt.IsNil)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if out != nil {
		qt.Assert(t, json.Unmarshal(resp.Body.Bytes(), out), qt.IsNil, qt.Commentf("body: %s", resp.Body))
	}
	return resp.Code
}

func TestNewAPI(t *testing.T) {
	c := qt.New(t)
	env := hubtest.New(t, 0)
	_, err := NewAPI(env.Hub, NewRouter(), "v1")
	c.Assert(err, qt.ErrorIs, ErrBaseRouteInvalid)
	_, err = NewAPI(nil, NewRouter(), "/v1")
	c.Assert(err, qt.ErrorIs, ErrHubIsNil)
	_, err = NewAPI(env.Hub, nil, "/v1")
	c.Assert(err, qt.ErrorIs, ErrRouterIsNil)
}

func TestReads(t *testing.T) {
	c := qt.New(t)
	env, router := newTestAPI(t, 2)
	alice := env.Users[0]
	id := env.CreateProfile(t, alice, "alice")
	pubID := env.Post(t, alice, id)

	protocol := &Protocol{}
	c.Assert(request(t, router, "GET", "/v1/protocol", nil, protocol), qt.Equals, http.StatusOK)
	c.Assert(protocol.Initialized, qt.IsTrue)
	c.Assert(protocol.Name, qt.Equals, hubtest.Name)
	c.Assert(protocol.State, qt.Equals, "unpaused")
	c.Assert(protocol.Governance, qt.Equals, env.Governance.Address())

	domain := &Domain{}
	c.Assert(request(t, router, "GET", "/v1/domain", nil, domain), qt.Equals, http.StatusOK)
	c.Assert(domain.VerifyingContract, qt.Equals, hubtest.HubAddress)
	c.Assert(domain.ChainID, qt.Equals, uint64(hubtest.ChainID))

	profile := &Profile{}
	c.Assert(request(t, router, "GET", "/v1/profiles/handle/alice", nil, profile), qt.Equals, http.StatusOK)
	want := &Profile{
		ID:        id,
		Owner:     alice.Address(),
		Handle:    "alice",
		ImageURI:  "ipfs://image/alice",
		PubCount:  1,
		CreatedAt: hubtest.Genesis,
	}
	if diff := cmp.Diff(want, profile); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}

	pub := &Publication{}
	c.Assert(request(t, router, "GET", "/v1/publications/1/1", nil, pub), qt.Equals, http.StatusOK)
	c.Assert(pub.PubID, qt.Equals, pubID)
	c.Assert(pub.Kind, qt.Equals, "post")
	c.Assert(pub.CollectModule, qt.Equals, hubtest.FreeCollect)
	c.Assert(pub.Pointed, qt.IsNil)

	wl := &Whitelist{}
	c.Assert(request(t, router, "GET", "/v1/whitelist/collect", nil, wl), qt.Equals, http.StatusOK)
	c.Assert(wl.Modules, qt.Contains, hubtest.FreeCollect)

	reasons := []RevertReason{}
	c.Assert(request(t, router, "GET", "/v1/errors", nil, &reasons), qt.Equals, http.StatusOK)
	c.Assert(reasons, qt.HasLen, len(revert.All()))

	following := &Following{}
	c.Assert(request(t, router, "GET", "/v1/profiles/1/followers/"+alice.Address().Hex(), nil, following),
		qt.Equals, http.StatusOK)
	c.Assert(following.Following, qt.IsFalse)
}

func TestReadErrors(t *testing.T) {
	c := qt.New(t)
	_, router := newTestAPI(t, 1)

	body := &errorBody{}
	c.Assert(request(t, router, "GET", "/v1/profiles/7", nil, body), qt.Equals, http.StatusBadRequest)
	c.Assert(body.Error, qt.Equals, revert.ErrTokenDoesNotExist.Name())
	c.Assert(body.Code, qt.Equals, int(revert.ErrTokenDoesNotExist.Code()))
	c.Assert(body.Detail, qt.Equals, "profile 7")

	body = &errorBody{}
	c.Assert(request(t, router, "GET", "/v1/profiles/handle/nobody", nil, body), qt.Equals, http.StatusNotFound)
	c.Assert(body.Code, qt.Equals, ErrHandleNotFound.Code)

	body = &errorBody{}
	c.Assert(request(t, router, "GET", "/v1/nonces/0xnope", nil, body), qt.Equals, http.StatusBadRequest)
	c.Assert(body.Code, qt.Equals, ErrAddressMalformed.Code)

	body = &errorBody{}
	c.Assert(request(t, router, "GET", "/v1/whitelist/governance", nil, body), qt.Equals, http.StatusBadRequest)
	c.Assert(body.Code, qt.Equals, ErrCantParseModuleKind.Code)
}

func TestSignedPost(t *testing.T) {
	c := qt.New(t)
	env, router := newTestAPI(t, 1)
	alice := env.Users[0]
	id := env.CreateProfile(t, alice, "alice")

	req := hub.PostRequest{
		ProfileID:             id,
		ContentURI:            "ipfs://post",
		CollectModule:         hubtest.FreeCollect,
		CollectModuleInitData: hubtest.FreeParams(false),
	}
	auth := env.Sign(t, alice, sigs.Post(req.ProfileID, req.ContentURI, req.CollectModule,
		req.CollectModuleInitData, req.ReferenceModule, req.ReferenceModuleInitData))
	payload := &PostWithSig{PostRequest: req, Auth: auth}

	res := &TransitionResult{}
	c.Assert(request(t, router, "POST", "/v1/sig/post", payload, res), qt.Equals, http.StatusOK)
	c.Assert(res.PubID, qt.Equals, types.PubID(1))
	c.Assert(res.Nonce, qt.Equals, uint64(1))

	// replayed signatures are rejected with the verbatim reason
	body := &errorBody{}
	c.Assert(request(t, router, "POST", "/v1/sig/post", payload, body), qt.Equals, http.StatusBadRequest)
	c.Assert(body.Error, qt.Equals, "SignatureInvalid()")

	body = &errorBody{}
	c.Assert(request(t, router, "POST", "/v1/sig/post", &PostWithSig{PostRequest: req}, body),
		qt.Equals, http.StatusBadRequest)
	c.Assert(body.Code, qt.Equals, ErrAuthorizationMissing.Code)

	body = &errorBody{}
	c.Assert(request(t, router, "POST", "/v1/sig/post", map[string]any{"unknown": 1}, body),
		qt.Equals, http.StatusBadRequest)
	c.Assert(body.Code, qt.Equals, ErrCantParsePayloadAsJSON.Code)
}

func TestSignedFollowAndDispatcher(t *testing.T) {
	c := qt.New(t)
	env, router := newTestAPI(t, 2)
	alice, bob := env.Users[0], env.Users[1]
	id := env.CreateProfile(t, alice, "alice")

	ids := []types.ProfileID{id}
	datas := [][]byte{nil}
	follow := &FollowWithSig{ProfileIDs: ids, Datas: datas, Auth: env.Sign(t, bob, sigs.Follow(ids, datas))}
	res := &TransitionResult{}
	c.Assert(request(t, router, "POST", "/v1/sig/follow", follow, res), qt.Equals, http.StatusOK)
	c.Assert(res.TokenIDs, qt.DeepEquals, []uint64{1})
	c.Assert(res.Nonce, qt.Equals, uint64(1))

	following := &Following{}
	c.Assert(request(t, router, "GET", "/v1/profiles/1/followers/"+bob.Address().Hex(), nil, following),
		qt.Equals, http.StatusOK)
	c.Assert(following.Following, qt.IsTrue)

	// a signer who does not own the profile
	dispatcher := &SetDispatcherWithSig{
		ProfileID:  id,
		Dispatcher: bob.Address(),
		Auth:       env.Sign(t, bob, sigs.SetDispatcher(id, bob.Address())),
	}
	body := &errorBody{}
	c.Assert(request(t, router, "POST", "/v1/sig/setDispatcher", dispatcher, body), qt.Equals, http.StatusBadRequest)
	c.Assert(body.Error, qt.Equals, revert.ErrNotProfileOwner.Name())

	dispatcher.Auth = env.Sign(t, alice, sigs.SetDispatcher(id, bob.Address()))
	res = &TransitionResult{}
	c.Assert(request(t, router, "POST", "/v1/sig/setDispatcher", dispatcher, res), qt.Equals, http.StatusOK)
	c.Assert(res.Nonce, qt.Equals, uint64(1))

	profile := &Profile{}
	c.Assert(request(t, router, "GET", "/v1/profiles/1", nil, profile), qt.Equals, http.StatusOK)
	c.Assert(profile.Dispatcher, qt.Equals, bob.Address())

	nonce := &Nonce{}
	c.Assert(request(t, router, "GET", "/v1/nonces/"+alice.Address().Hex(), nil, nonce), qt.Equals, http.StatusOK)
	c.Assert(nonce.Nonce, qt.Equals, uint64(1))
}
