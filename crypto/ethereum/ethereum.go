// Package ethereum provides the secp256k1 key handling and signature recovery
// used to authenticate hub callers.
package ethereum

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is the size of an ECDSA signature with its recovery byte.
const SignatureLength = ethcrypto.SignatureLength

// DigestLength is the size of a signed digest.
const DigestLength = ethcrypto.DigestLength

// SigningPrefix is the prefix added when hashing personal messages.
const SigningPrefix = "\u0019Ethereum Signed Message:\n"

// ErrInvalidSignature is returned when a signature cannot be parsed or
// recovered.
var ErrInvalidSignature = errors.New("invalid signature")

// SignKeys represents an ECDSA pair of keys for signing.
type SignKeys struct {
	Public  ecdsa.PublicKey
	Private ecdsa.PrivateKey
}

// NewSignKeys generates a fresh pair of keys.
func NewSignKeys() (*SignKeys, error) {
	k := &SignKeys{}
	return k, k.Generate()
}

// Generate generates new keys
func (k *SignKeys) Generate() error {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return err
	}
	k.Private = *key
	k.Public = key.PublicKey
	return nil
}

// AddHexKey imports a private hex key
func (k *SignKeys) AddHexKey(privHex string) error {
	key, err := ethcrypto.HexToECDSA(TrimHex(privHex))
	if err != nil {
		return err
	}
	k.Private = *key
	k.Public = key.PublicKey
	return nil
}

// PrivateKeyHex returns the private key as hex string without 0x prefix.
func (k *SignKeys) PrivateKeyHex() string {
	return fmt.Sprintf("%x", ethcrypto.FromECDSA(&k.Private))
}

// Address returns the SignKeys ethereum address
func (k *SignKeys) Address() ethcommon.Address {
	return ethcrypto.PubkeyToAddress(k.Public)
}

// SignDigest signs a 32 byte digest. The recovery byte is returned as 27/28,
// the way wallets encode it.
func (k *SignKeys) SignDigest(digest []byte) ([]byte, error) {
	if k.Private.D == nil {
		return nil, errors.New("no private key available")
	}
	if len(digest) != DigestLength {
		return nil, fmt.Errorf("digest must be %d bytes, got %d", DigestLength, len(digest))
	}
	sig, err := ethcrypto.Sign(digest, &k.Private)
	if err != nil {
		return nil, err
	}
	sig[64] += 27
	return sig, nil
}

// SignMessage signs a personal message using the Ethereum signing prefix.
func (k *SignKeys) SignMessage(message []byte) ([]byte, error) {
	return k.SignDigest(Hash(message))
}

// AddrFromDigestSignature recovers the address that signed a 32 byte digest.
// Both 0/1 and 27/28 recovery bytes are accepted.
func AddrFromDigestSignature(digest, signature []byte) (ethcommon.Address, error) {
	if len(signature) != SignatureLength || len(digest) != DigestLength {
		return ethcommon.Address{}, ErrInvalidSignature
	}
	sig := make([]byte, SignatureLength)
	copy(sig, signature)
	if sig[64] > 1 {
		sig[64] -= 27
	}
	if sig[64] > 1 {
		return ethcommon.Address{}, fmt.Errorf("%w: bad recovery byte", ErrInvalidSignature)
	}
	pub, err := ethcrypto.SigToPub(digest, sig)
	if err != nil {
		return ethcommon.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return ethcrypto.PubkeyToAddress(*pub), nil
}

// AddrFromSignature recovers the address that signed a personal message.
func AddrFromSignature(message, signature []byte) (ethcommon.Address, error) {
	return AddrFromDigestSignature(Hash(message), signature)
}

// Hash hashes data adding the Ethereum personal message prefix.
func Hash(data []byte) []byte {
	return HashRaw([]byte(fmt.Sprintf("%s%d%s", SigningPrefix, len(data), data)))
}

// HashRaw hashes data with keccak256 and no prefix.
func HashRaw(data ...[]byte) []byte {
	return ethcrypto.Keccak256(data...)
}

// TrimHex removes the 0x prefix of a hex string if present.
func TrimHex(s string) string {
	return strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
}

// DeriveAddress returns a deterministic address for the given seed parts,
// used to identify instances created by the hub.
func DeriveAddress(parts ...[]byte) ethcommon.Address {
	return ethcommon.BytesToAddress(HashRaw(parts...)[12:])
}
