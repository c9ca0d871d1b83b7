// Package keys parses and checks hex encoded keys at the edge of the engine.
package keys

import (
	"errors"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"nsigner.lol/hex"
	"nsigner.lol/secure"
	"nsigner.lol/signer"
)

var (
	ErrSecretHex = errors.New("secret key must be 64 hex characters")
	ErrPublicHex = errors.New("public key must be 64 hex characters")
)

// ValidSecret reports whether sec is a usable secp256k1 secret key: 32 bytes,
// non-zero and below the group order.
func ValidSecret(sec []byte) bool {
	if len(sec) != signer.SecKeyLen {
		return false
	}
	var k secp256k1.ModNScalar
	defer k.Zero()
	overflow := k.SetByteSlice(sec)
	return !overflow && !k.IsZero()
}

// ParseSecretHex decodes a 64 character hex secret key into sec. Either case is
// accepted and surrounding whitespace is ignored. sec is zeroed on failure.
func ParseSecretHex(s string, sec []byte) (err error) {
	signer.MustLen(sec, signer.SecKeyLen, "secret key")
	src := []byte(strings.TrimSpace(s))
	defer secure.Zero(src)
	if len(src) != 2*signer.SecKeyLen {
		secure.Zero(sec)
		return ErrSecretHex
	}
	if err = hex.DecInto(sec, src); err != nil {
		secure.Zero(sec)
		return ErrSecretHex
	}
	if !ValidSecret(sec) {
		secure.Zero(sec)
		return signer.ErrInvalidSecretKey
	}
	return
}

// ParsePublicHex decodes and checks a hex x-only public key. Upper case input
// is accepted; PublicHex gives the canonical lower case form.
func ParsePublicHex(s string) (pub []byte, err error) {
	s = strings.TrimSpace(s)
	if len(s) != 2*signer.PubKeyLen {
		return nil, ErrPublicHex
	}
	pub = make([]byte, signer.PubKeyLen)
	if err = hex.DecInto(pub, []byte(s)); err != nil {
		return nil, ErrPublicHex
	}
	if !IsValidPublicKey(pub) {
		return nil, signer.ErrInvalidPublicKey
	}
	return
}

// PublicHex is the lower case hex of a public key.
func PublicHex(pub []byte) string { return hex.Enc(pub) }

// IsValidPublicKey reports whether pub is the x coordinate of a curve point.
func IsValidPublicKey(pub []byte) bool {
	_, err := schnorr.ParsePubKey(pub)
	return err == nil
}

// IsValid32ByteHex reports whether pk is 64 lower case hex characters.
func IsValid32ByteHex(pk string) bool {
	if strings.ToLower(pk) != pk {
		return false
	}
	dec, err := hex.Dec(pk)
	return err == nil && len(dec) == 32
}

// NormalizePublicHex lower cases and checks a hex public key.
func NormalizePublicHex(s string) (norm string, err error) {
	var pub []byte
	if pub, err = ParsePublicHex(s); err != nil {
		return
	}
	return PublicHex(pub), nil
}
