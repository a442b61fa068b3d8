package sigs

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"go.vocdoni.io/hub/crypto/ethereum"
)

// DomainVersion is the version every hub signing domain uses.
const DomainVersion = "1"

var domainType = []apitypes.Type{
	{Name: "name", Type: "string"},
	{Name: "version", Type: "string"},
	{Name: "chainId", Type: "uint256"},
	{Name: "verifyingContract", Type: "address"},
}

// Domain separates signatures of different deployments and contracts.
type Domain struct {
	Name              string
	ChainID           uint64
	VerifyingContract common.Address
}

func (d Domain) typed() apitypes.TypedDataDomain {
	return apitypes.TypedDataDomain{
		Name:              d.Name,
		Version:           DomainVersion,
		ChainId:           (*math.HexOrDecimal256)(new(big.Int).SetUint64(d.ChainID)),
		VerifyingContract: d.VerifyingContract.Hex(),
	}
}

// Message is an unsigned typed-data payload. Nonce and deadline are appended
// from the authorization when the digest is computed.
type Message struct {
	PrimaryType string
	Data        apitypes.TypedDataMessage
}

// TypedData returns the full typed-data document for msg, as handed to
// eth_signTypedData_v4 compatible signers.
func (d Domain) TypedData(msg Message, nonce, deadline uint64) (*apitypes.TypedData, error) {
	fields, ok := messageTypes[msg.PrimaryType]
	if !ok {
		return nil, fmt.Errorf("unknown message type %q", msg.PrimaryType)
	}
	data := make(apitypes.TypedDataMessage, len(msg.Data)+2)
	for k, v := range msg.Data {
		data[k] = v
	}
	data["nonce"] = Uint(nonce)
	data["deadline"] = Uint(deadline)
	return &apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain":  domainType,
			msg.PrimaryType: fields,
		},
		PrimaryType: msg.PrimaryType,
		Domain:      d.typed(),
		Message:     data,
	}, nil
}

// Digest returns keccak256("\x19\x01" || domainSeparator || hashStruct(msg)).
func (d Domain) Digest(msg Message, nonce, deadline uint64) ([]byte, error) {
	td, err := d.TypedData(msg, nonce, deadline)
	if err != nil {
		return nil, err
	}
	separator, err := td.HashStruct("EIP712Domain", td.Domain.Map())
	if err != nil {
		return nil, fmt.Errorf("cannot hash domain: %w", err)
	}
	hash, err := td.HashStruct(td.PrimaryType, td.Message)
	if err != nil {
		return nil, fmt.Errorf("cannot hash %s: %w", td.PrimaryType, err)
	}
	return ethereum.HashRaw([]byte("\x19\x01"), separator, hash), nil
}

// Uint encodes n as a typed-data uint256 value.
func Uint(n uint64) string {
	return strconv.FormatUint(n, 10)
}

// Address encodes a as a typed-data address value.
func Address(a common.Address) string {
	return a.Hex()
}

// Bool encodes b as a typed-data bool value.
func Bool(b bool) bool {
	return b
}

// Bytes encodes b as a typed-data bytes value.
func Bytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
