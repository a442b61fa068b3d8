package ethereum

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestSignature(t *testing.T) {
	t.Parallel()

	s, err := NewSignKeys()
	qt.Assert(t, err, qt.IsNil)

	message := []byte("hello")
	sig, err := s.SignMessage(message)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, sig, qt.HasLen, SignatureLength)

	addr, err := AddrFromSignature(message, sig)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, addr, qt.Equals, s.Address())

	// a different message recovers a different address
	addr, err = AddrFromSignature([]byte("hello!"), sig)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, addr == s.Address(), qt.IsFalse)

	// 0/1 recovery byte is accepted too
	sig[64] -= 27
	addr, err = AddrFromSignature(message, sig)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, addr, qt.Equals, s.Address())
}

func TestImportKey(t *testing.T) {
	t.Parallel()

	hardcodedPriv := "fad9c8855b740a0b7ed4c221dbad0f33a83a49cad6b3fe8d5817ac83d38b6a19"
	var s SignKeys
	qt.Assert(t, s.AddHexKey("0x"+hardcodedPriv), qt.IsNil)
	qt.Assert(t, s.PrivateKeyHex(), qt.Equals, hardcodedPriv)

	var s2 SignKeys
	qt.Assert(t, s2.AddHexKey(hardcodedPriv), qt.IsNil)
	qt.Assert(t, s2.Address(), qt.Equals, s.Address())
}

func TestBadSignatures(t *testing.T) {
	t.Parallel()

	digest := HashRaw([]byte("digest"))
	_, err := AddrFromDigestSignature(digest, []byte{1, 2, 3})
	qt.Assert(t, err, qt.ErrorIs, ErrInvalidSignature)

	sig := make([]byte, SignatureLength)
	sig[64] = 30
	_, err = AddrFromDigestSignature(digest, sig)
	qt.Assert(t, err, qt.ErrorIs, ErrInvalidSignature)

	var empty SignKeys
	_, err = empty.SignDigest(digest)
	qt.Assert(t, err, qt.IsNotNil)
}

func TestDeriveAddress(t *testing.T) {
	a := DeriveAddress([]byte("follow"), []byte{1})
	b := DeriveAddress([]byte("follow"), []byte{1})
	c := DeriveAddress([]byte("follow"), []byte{2})
	qt.Assert(t, a, qt.Equals, b)
	qt.Assert(t, a == c, qt.IsFalse)
}
