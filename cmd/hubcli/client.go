package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/hub/api"
	"go.vocdoni.io/hub/hub/sigs"
	"go.vocdoni.io/hub/log"
)

// client talks to the hub API.
type client struct {
	url  string
	http *http.Client
}

func newClient(url string) *client {
	return &client{
		url:  strings.TrimSuffix(url, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *client) do(method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.url+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	log.Debugw("api request", "method", method, "url", req.URL.String())
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func (c *client) domain() (sigs.Domain, error) {
	d := &api.Domain{}
	if err := c.do("GET", "/domain", nil, d); err != nil {
		return sigs.Domain{}, err
	}
	return sigs.Domain{Name: d.Name, ChainID: d.ChainID, VerifyingContract: d.VerifyingContract}, nil
}

func (c *client) collectionDomain(collection common.Address) (sigs.Domain, error) {
	d, err := c.domain()
	if err != nil {
		return d, err
	}
	col := &api.Collection{}
	if err := c.do("GET", "/nfts/"+collection.Hex(), nil, col); err != nil {
		return d, err
	}
	return sigs.Domain{Name: col.Name, ChainID: d.ChainID, VerifyingContract: collection}, nil
}

func (c *client) nonce(addr common.Address) (uint64, error) {
	n := &api.Nonce{}
	if err := c.do("GET", "/nonces/"+addr.Hex(), nil, n); err != nil {
		return 0, err
	}
	return n.Nonce, nil
}

func (c *client) relay(op string, payload any) (*api.TransitionResult, error) {
	res := &api.TransitionResult{}
	if err := c.do("POST", "/sig/"+op, payload, res); err != nil {
		return nil, err
	}
	return res, nil
}
