// Package encoder converts binary secret keys to and from the text form they
// are stored under, so the storage format can change independently of the
// crypto backend.
//
// Encoded output carries the secret just as the binary does, which is why it
// is returned as a byte slice: callers wipe it once it has been handed to the
// store.
package encoder

import (
	"encoding/base64"
	"errors"

	"nsigner.lol/bech32encoding"
	"nsigner.lol/hex"
	"nsigner.lol/random"
	"nsigner.lol/secure"
)

var (
	ErrDecode  = errors.New("encoded secret is malformed")
	ErrBuffer  = errors.New("output buffer too small for decoded secret")
	ErrUnknown = errors.New("unknown key encoding")
)

// I is a reversible secret key encoding.
type I interface {
	Name() string
	// Encode returns the text form of sec.
	Encode(sec []byte) (enc []byte, err error)
	// Decode writes the binary form of enc into out and returns how many bytes
	// it wrote. out must be at least BufferSize(enc) long.
	Decode(enc, out []byte) (n int, err error)
	// BufferSize is how large a buffer Decode needs for enc.
	BufferSize(enc []byte) int
}

const (
	Base64Name = "base64"
	HexName    = "hex"
	NsecName   = "nsec"
	SealedName = "sealed"
)

// New returns the named encoder. The sealed encoder needs a passphrase and a
// random source; the others ignore them.
func New(name string, passphrase []byte, rnd random.Source) (e I, err error) {
	switch name {
	case Base64Name, "":
		e = Base64{}
	case HexName:
		e = Hex{}
	case NsecName:
		e = Nsec{}
	case SealedName:
		e, err = NewSealed(passphrase, rnd, DefaultParams)
	default:
		err = ErrUnknown
	}
	return
}

// Base64 is standard padded base64.
type Base64 struct{}

func (Base64) Name() string { return Base64Name }

func (Base64) Encode(sec []byte) (enc []byte, err error) {
	enc = make([]byte, base64.StdEncoding.EncodedLen(len(sec)))
	base64.StdEncoding.Encode(enc, sec)
	return
}

func (Base64) BufferSize(enc []byte) int { return base64.StdEncoding.DecodedLen(len(enc)) }

func (b Base64) Decode(enc, out []byte) (n int, err error) {
	if len(out) < b.BufferSize(enc) {
		return 0, ErrBuffer
	}
	if n, err = base64.StdEncoding.Decode(out, enc); err != nil {
		secure.Zero(out)
		return 0, errors.Join(ErrDecode, err)
	}
	return
}

// Hex is lower case hex.
type Hex struct{}

func (Hex) Name() string { return HexName }

func (Hex) Encode(sec []byte) (enc []byte, err error) {
	return hex.EncAppend(make([]byte, 0, 2*len(sec)), sec), nil
}

func (Hex) BufferSize(enc []byte) int { return hex.DecLen(len(enc)) }

func (h Hex) Decode(enc, out []byte) (n int, err error) {
	n = h.BufferSize(enc)
	if len(out) < n {
		return 0, ErrBuffer
	}
	if err = hex.DecInto(out[:n], enc); err != nil {
		return 0, errors.Join(ErrDecode, err)
	}
	return
}

// Nsec is the NIP-19 bech32 form.
type Nsec struct{}

func (Nsec) Name() string { return NsecName }

func (Nsec) Encode(sec []byte) (enc []byte, err error) {
	return bech32encoding.SecretToNsec(sec)
}

func (Nsec) BufferSize(enc []byte) int { return 32 }

func (Nsec) Decode(enc, out []byte) (n int, err error) {
	if len(out) < 32 {
		return 0, ErrBuffer
	}
	if err = bech32encoding.NsecToSecret(enc, out[:32]); err != nil {
		return 0, errors.Join(ErrDecode, err)
	}
	return 32, nil
}
