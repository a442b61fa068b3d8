//nolint:lll
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.vocdoni.io/hub/db"
	"go.vocdoni.io/hub/hub/revert"
	"go.vocdoni.io/hub/log"
)

// APIerror satisfies the error interface.
//
// Error codes below 1000 are hub rejection reasons and reuse the revert
// code. Codes 4001-4999 are the user's fault and 5001-5999 the server's,
// mimicking HTTP.
type APIerror struct {
	Err        error
	Code       int
	HTTPstatus int
}

var (
	ErrAddressMalformed       = APIerror{Code: 4000, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("address malformed")}
	ErrCantParseProfileID     = APIerror{Code: 4001, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("cannot parse profileId")}
	ErrCantParsePubID         = APIerror{Code: 4002, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("cannot parse pubId")}
	ErrCantParseTokenID       = APIerror{Code: 4003, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("cannot parse tokenId")}
	ErrCantParseBlock         = APIerror{Code: 4004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("cannot parse block number")}
	ErrCantParseModuleKind    = APIerror{Code: 4005, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("module kind must be follow, collect or reference")}
	ErrCantParsePayloadAsJSON = APIerror{Code: 4006, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("cannot parse payload as JSON")}
	ErrAuthorizationMissing   = APIerror{Code: 4007, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("signed authorization missing")}
	ErrHandleNotFound         = APIerror{Code: 4008, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("handle not found")}
	ErrNotFound               = APIerror{Code: 4009, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("not found")}

	ErrMarshalingServerJSONFailed = APIerror{Code: 5001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("marshaling (server-side) JSON failed")}
	ErrHubStorage                 = APIerror{Code: 5002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("hub storage error")}
)

// MarshalJSON returns a JSON containing Err.Error() and Code. Field
// HTTPstatus is ignored.
//
// Example output: {"error":"HandleTaken()","code":12}
func (e APIerror) MarshalJSON() ([]byte, error) {
	out := struct {
		Err    string `json:"error"`
		Code   int    `json:"code"`
		Detail string `json:"detail,omitempty"`
	}{
		Err:  e.Err.Error(),
		Code: e.Code,
	}
	// Rejections are matched verbatim by clients, so the detail travels
	// apart from the name.
	if r, ok := revert.As(e.Err); ok {
		out.Err = r.Name()
		out.Detail = r.Detail()
	}
	return json.Marshal(out)
}

// Error returns the message contained inside the APIerror.
func (e APIerror) Error() string {
	return e.Err.Error()
}

// Withf returns a copy of APIerror with the Sprintf formatted string appended
// at the end of e.Err.
func (e APIerror) Withf(format string, args ...any) APIerror {
	return APIerror{
		Err:        fmt.Errorf("%w: %v", e.Err, fmt.Sprintf(format, args...)),
		Code:       e.Code,
		HTTPstatus: e.HTTPstatus,
	}
}

// With returns a copy of APIerror with the string appended at the end of e.Err.
func (e APIerror) With(s string) APIerror {
	return e.Withf("%s", s)
}

// Send writes the error as the response body.
func (e APIerror) Send(w http.ResponseWriter) {
	msg, err := json.Marshal(e)
	if err != nil {
		log.Warn(err)
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.HTTPstatus)
	if _, err := w.Write(msg); err != nil {
		log.Debugw("cannot write error response", "error", err)
	}
}

// fromHub maps an error returned by the hub to an APIerror. Rejections keep
// their revert code and wire name.
func fromHub(err error) APIerror {
	var apiErr APIerror
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if r, ok := revert.As(err); ok {
		return APIerror{Err: r, Code: int(r.Code()), HTTPstatus: http.StatusBadRequest}
	}
	if errors.Is(err, db.ErrKeyNotFound) {
		return ErrNotFound
	}
	log.Errorw(err, "hub request failed")
	return ErrHubStorage.Withf("%v", err)
}
