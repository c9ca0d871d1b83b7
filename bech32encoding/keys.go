package bech32encoding

import (
	"errors"

	"github.com/btcsuite/btcd/btcutil/bech32"

	"nsigner.lol/hex"
	"nsigner.lol/secure"
	"nsigner.lol/signer"
)

const (
	// MinKeyStringLen is 56 because Bech32 needs 52 characters plus 4 for the HRP,
	// any string shorter than this cannot be a nostr key.
	MinKeyStringLen = 56
	HexKeyLen       = 64
	Bech32HRPLen    = 4
)

const (
	SecHRP = "nsec"
	PubHRP = "npub"
)

var (
	ErrHRP    = errors.New("wrong human readable part")
	ErrKeyLen = errors.New("decoded key is not 32 bytes")
)

// ConvertForBech32 performs the bit expansion required for encoding into Bech32.
func ConvertForBech32(b8 by) (b5 by, err er) { return bech32.ConvertBits(b8, 8, 5, true) }

// ConvertFromBech32 collapses together the bit expanded 5 bit numbers encoded in bech32.
func ConvertFromBech32(b5 by) (b8 by, err er) { return bech32.ConvertBits(b5, 5, 8, false) }

func encode(hrp st, key by) (encoded by, err er) {
	var b5 by
	if b5, err = ConvertForBech32(key); chk.E(err) {
		return
	}
	defer secure.Zero(b5)
	var s st
	if s, err = bech32.Encode(hrp, b5); chk.E(err) {
		return
	}
	encoded = by(s)
	return
}

// decode writes the 32 byte payload of a bech32 string with the given HRP
// into dst. dst is left zeroed on any failure.
func decode(hrp st, encoded, dst by) (err er) {
	signer.MustLen(dst, 32, "key buffer")
	defer func() {
		if err != nil {
			secure.Zero(dst)
		}
	}()
	var h st
	var b5, b8 by
	if h, b5, err = bech32.Decode(st(encoded)); chk.D(err) {
		return
	}
	defer secure.Zero(b5)
	if h != hrp {
		err = errorf.D("%w: got '%s' want '%s'", ErrHRP, h, hrp)
		return
	}
	if b8, err = ConvertFromBech32(b5); chk.D(err) {
		return
	}
	defer secure.Zero(b8)
	if len(b8) != 32 {
		err = ErrKeyLen
		return
	}
	copy(dst, b8)
	return
}

// SecretToNsec encodes a 32 byte secret key as an nsec. The result holds
// the secret and should be wiped by the caller.
func SecretToNsec(sec by) (nsec by, err er) {
	signer.MustLen(sec, signer.SecKeyLen, "secret key")
	return encode(SecHRP, sec)
}

// NsecToSecret decodes an nsec into the 32 byte buffer sec.
func NsecToSecret(nsec, sec by) (err er) { return decode(SecHRP, nsec, sec) }

// PublicToNpub encodes an x-only public key as an npub.
func PublicToNpub(pub by) (npub by, err er) {
	signer.MustLen(pub, signer.PubKeyLen, "public key")
	return encode(PubHRP, pub)
}

// NpubToPublic decodes an npub into a new 32 byte x-only public key.
func NpubToPublic(npub by) (pub by, err er) {
	pub = make(by, signer.PubKeyLen)
	if err = decode(PubHRP, npub, pub); err != nil {
		pub = nil
	}
	return
}

// HexToNpub converts a hex encoded public key to an npub.
func HexToNpub(publicKeyHex by) (npub by, err er) {
	pub := make(by, signer.PubKeyLen)
	if err = hex.DecInto(pub, publicKeyHex); chk.D(err) {
		err = errorf.D("failed to decode public key hex: %w", err)
		return
	}
	return PublicToNpub(pub)
}

// NpubToHex converts an npub to lower case hex.
func NpubToHex(npub by) (publicKeyHex by, err er) {
	var pub by
	if pub, err = NpubToPublic(npub); err != nil {
		return
	}
	return hex.EncAppend(nil, pub), nil
}
