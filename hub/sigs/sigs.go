// Package sigs validates off-chain signed authorizations (meta-transactions):
// EIP-712 typed-data digests, expiry deadlines and single-use nonces.
package sigs

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"
	"go.vocdoni.io/hub/crypto/ethereum"
	"go.vocdoni.io/hub/hub/revert"
	"go.vocdoni.io/hub/hub/state"
	"go.vocdoni.io/hub/types"
)

// DefaultCacheSize is the number of recovered signers kept in memory.
const DefaultCacheSize = 4096

// Authorization is an off-chain signed permission to perform one operation.
type Authorization struct {
	Signer    common.Address `json:"signer"`
	Nonce     uint64         `json:"nonce"`
	Deadline  uint64         `json:"deadline"`
	Signature []byte         `json:"signature"`
}

// Sign produces an Authorization for msg under domain using the signer's
// current nonce.
func Sign(keys *ethereum.SignKeys, d Domain, msg Message, nonce, deadline uint64) (*Authorization, error) {
	digest, err := d.Digest(msg, nonce, deadline)
	if err != nil {
		return nil, err
	}
	sig, err := keys.SignDigest(digest)
	if err != nil {
		return nil, err
	}
	return &Authorization{
		Signer:    keys.Address(),
		Nonce:     nonce,
		Deadline:  deadline,
		Signature: sig,
	}, nil
}

// Validator checks authorizations against the signers' nonces.
type Validator struct {
	recovered *lru.Cache
}

// NewValidator returns a Validator caching up to cacheSize recovered signers.
func NewValidator(cacheSize int) (*Validator, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("cannot create signer cache: %w", err)
	}
	return &Validator{recovered: cache}, nil
}

// Recover returns the address that signed digest. Results are cached by
// digest and signature.
func (v *Validator) Recover(digest, signature []byte) (common.Address, error) {
	key := string(digest) + string(signature)
	if addr, ok := v.recovered.Get(key); ok {
		return addr.(common.Address), nil
	}
	addr, err := ethereum.AddrFromDigestSignature(digest, signature)
	if err != nil {
		return types.ZeroAddress, err
	}
	v.recovered.Add(key, addr)
	return addr, nil
}

// Verify checks auth for msg under domain at time now and consumes the
// signer's nonce inside tx. Expiry is checked before the nonce, so an expired
// authorization fails with SignatureExpired whatever its nonce.
func (v *Validator) Verify(tx *state.Tx, now uint64, d Domain, msg Message, auth *Authorization) error {
	if auth == nil {
		return revert.ErrSignatureInvalid.WithDetail("missing authorization")
	}
	if now > auth.Deadline {
		return revert.ErrSignatureExpired.WithDetail("deadline %d, now %d", auth.Deadline, now)
	}
	expected, err := tx.Nonce(auth.Signer)
	if err != nil {
		return err
	}
	if auth.Nonce != expected {
		return revert.ErrSignatureInvalid.WithDetail("nonce %d, expected %d", auth.Nonce, expected)
	}
	digest, err := d.Digest(msg, auth.Nonce, auth.Deadline)
	if err != nil {
		return err
	}
	signer, err := v.Recover(digest, auth.Signature)
	if err != nil {
		return revert.ErrSignatureInvalid.WithDetail("%v", err)
	}
	if signer == types.ZeroAddress || signer != auth.Signer {
		return revert.ErrSignatureInvalid.WithDetail("recovered %s", signer.Hex())
	}
	ok, err := tx.ConsumeNonce(auth.Signer, expected)
	if err != nil {
		return err
	}
	if !ok {
		return revert.ErrSignatureInvalid
	}
	return nil
}

// CheckSpender rejects the zero address as an approval target.
func CheckSpender(spender common.Address) error {
	if spender == types.ZeroAddress {
		return revert.ErrZeroSpender
	}
	return nil
}
