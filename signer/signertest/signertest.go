// Package signertest is a conformance suite every signer.I backend runs from
// its own tests.
package signertest

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"

	"nsigner.lol/nip04"
	"nsigner.lol/secure"
	"nsigner.lol/sha256"
	"nsigner.lol/signer"
)

// PubVectors are secret keys and x-only public keys from the BIP-340 test
// vectors.
var PubVectors = []struct{ Sec, Pub string }{
	{
		"0000000000000000000000000000000000000000000000000000000000000003",
		"f9308a019258c31049344f85f89d5229b531c845836f99b08601f113bce036f9",
	},
	{
		"0000000000000000000000000000000000000000000000000000000000000001",
		"79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798",
	},
}

func mustHex(s string) (b []byte) {
	var err error
	if b, err = hex.DecodeString(s); err != nil {
		panic(err)
	}
	return
}

// Run executes every check against s. Backends that do not implement NIP-04
// skip those checks by returning signer.ErrNotImplemented.
func Run(t *testing.T, s signer.I) {
	t.Run("Sizes", func(t *testing.T) { Sizes(t, s) })
	t.Run("RecoverPub", func(t *testing.T) { RecoverPub(t, s) })
	t.Run("InvalidSecret", func(t *testing.T) { InvalidSecret(t, s) })
	t.Run("Generate", func(t *testing.T) { Generate(t, s) })
	t.Run("SignVerify", func(t *testing.T) { SignVerify(t, s) })
	t.Run("FreshAux", func(t *testing.T) { FreshAux(t, s) })
	t.Run("PreconditionPanics", func(t *testing.T) { PreconditionPanics(t, s) })
	t.Run("NIP04", func(t *testing.T) { NIP04(t, s) })
}

func Sizes(t *testing.T, s signer.I) {
	sec, pub := s.KeySizes()
	require.Equal(t, signer.SecKeyLen, sec)
	require.Equal(t, signer.PubKeyLen, pub)
	require.Equal(t, signer.SignatureLen, s.SignatureSize())
}

func RecoverPub(t *testing.T, s signer.I) {
	for _, v := range PubVectors {
		pub := make([]byte, signer.PubKeyLen)
		require.NoError(t, s.RecoverPub(mustHex(v.Sec), pub))
		require.Equal(t, v.Pub, hex.EncodeToString(pub))
	}
}

func InvalidSecret(t *testing.T, s signer.I) {
	pub := make([]byte, signer.PubKeyLen)
	order := mustHex("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")
	for _, sec := range [][]byte{make([]byte, signer.SecKeyLen), order} {
		err := s.RecoverPub(sec, pub)
		require.ErrorIs(t, err, signer.ErrInvalidSecretKey)
	}
}

func Generate(t *testing.T, s signer.I) {
	seen := make(map[string]bool)
	for range 16 {
		sec := make([]byte, signer.SecKeyLen)
		pub := make([]byte, signer.PubKeyLen)
		require.NoError(t, s.Generate(sec, pub))
		again := make([]byte, signer.PubKeyLen)
		require.NoError(t, s.RecoverPub(sec, again))
		require.Equal(t, pub, again)
		require.False(t, seen[string(pub)])
		seen[string(pub)] = true
	}
}

// SignVerify signs sha256("") with the key 0x0101..01 and checks the
// signature verifies for that digest and not for sha256("x").
func SignVerify(t *testing.T, s signer.I) {
	sec := bytes.Repeat([]byte{1}, signer.SecKeyLen)
	pub := make([]byte, signer.PubKeyLen)
	require.NoError(t, s.RecoverPub(sec, pub))
	empty := sha256.Sum256(nil)
	x := sha256.Sum256([]byte("x"))
	sig := make([]byte, s.SignatureSize())
	require.NoError(t, s.Sign(sec, empty[:], sig))
	require.True(t, s.Verify(pub, empty[:], sig))
	require.False(t, s.Verify(pub, x[:], sig))
	sig[0] ^= 1
	require.False(t, s.Verify(pub, empty[:], sig))
	for range 32 {
		k := make([]byte, signer.SecKeyLen)
		p := make([]byte, signer.PubKeyLen)
		require.NoError(t, s.Generate(k, p))
		d := frand.Bytes(signer.DigestLen)
		require.NoError(t, s.Sign(k, d, sig))
		require.True(t, s.Verify(p, d, sig))
	}
}

func FreshAux(t *testing.T, s signer.I) {
	sec := bytes.Repeat([]byte{1}, signer.SecKeyLen)
	d := sha256.Sum256(nil)
	a := make([]byte, signer.SignatureLen)
	b := make([]byte, signer.SignatureLen)
	require.NoError(t, s.Sign(sec, d[:], a))
	require.NoError(t, s.Sign(sec, d[:], b))
	require.NotEqual(t, a, b)
}

func PreconditionPanics(t *testing.T, s signer.I) {
	d := sha256.Sum256(nil)
	require.Panics(t, func() {
		_ = s.Sign(make([]byte, 31), d[:], make([]byte, signer.SignatureLen))
	})
	require.Panics(t, func() {
		_ = s.Sign(make([]byte, 32), d[:16], make([]byte, signer.SignatureLen))
	})
	require.Panics(t, func() { _ = s.RecoverPub(make([]byte, 32), make([]byte, 33)) })
}

func keypair(t *testing.T, s signer.I) (sec, pub []byte) {
	sec = make([]byte, signer.SecKeyLen)
	pub = make([]byte, signer.PubKeyLen)
	require.NoError(t, s.Generate(sec, pub))
	return
}

func NIP04(t *testing.T, s signer.I) {
	aSec, aPub := keypair(t, s)
	bSec, bPub := keypair(t, s)
	iv := frand.Bytes(signer.IVLen)
	msg := []byte("the quick brown fox jumps over the lazy dog")
	ct, err := s.ECDHEncrypt(aSec, bPub, iv, msg)
	if errors.Is(err, signer.ErrNotImplemented) {
		t.Skipf("%s does not implement NIP-04", s.Name())
	}
	require.NoError(t, err)
	require.Zero(t, len(ct)%signer.IVLen)
	plain, err := s.ECDHDecrypt(bSec, aPub, iv, ct)
	require.NoError(t, err)
	require.Equal(t, msg, nip04.Trim(plain))
	// a third party derives a different key
	cSec, _ := keypair(t, s)
	plain, err = s.ECDHDecrypt(cSec, aPub, iv, ct)
	require.NoError(t, err)
	require.NotEqual(t, msg, nip04.Trim(plain))
	// with secret key 1 the shared point is the peer's own public key
	one := mustHex(PubVectors[1].Sec)
	ct, err = s.ECDHEncrypt(one, bPub, iv, msg)
	require.NoError(t, err)
	want, err := nip04.Encrypt(bPub, iv, msg)
	require.NoError(t, err)
	require.Equal(t, want, ct)
}

// Zeroing runs one of each operation, including failing ones, against a
// backend built on r and checks every buffer it allocated came back wiped.
func Zeroing(t *testing.T, s signer.I, r *secure.Recorder) {
	sec, pub := keypair(t, s)
	_, peer := keypair(t, s)
	d := sha256.Sum256([]byte("zeroing"))
	sig := make([]byte, signer.SignatureLen)
	require.NoError(t, s.Sign(sec, d[:], sig))
	require.True(t, s.Verify(pub, d[:], sig))
	iv := frand.Bytes(signer.IVLen)
	if ct, err := s.ECDHEncrypt(sec, peer, iv, []byte("hi")); err == nil {
		_, err = s.ECDHDecrypt(sec, peer, iv, ct)
		require.NoError(t, err)
	}
	// failures must wipe too
	bad := make([]byte, signer.SecKeyLen)
	require.Error(t, s.Sign(bad, d[:], sig))
	_, err := s.ECDHEncrypt(sec, make([]byte, signer.PubKeyLen), iv, []byte("hi"))
	require.Error(t, err)
	allocated, freed := r.Allocated()
	require.Equal(t, allocated, freed)
	require.Zero(t, r.Residue())
}
