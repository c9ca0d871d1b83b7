// Package nip04 implements the symmetric half of NIP-04 direct messages.
//
// The key is the raw x-coordinate of the ECDH point between one party's
// secret key and the other's x-only public key; it is not hashed. That is what
// the reference clients do and it has to be reproduced exactly or messages stop
// decrypting on the other side. The cipher is AES-256-CBC with zero padding,
// and the wire form is "<base64 ciphertext>?iv=<base64 iv>".
package nip04

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"strings"

	"nsigner.lol/secure"
)

const (
	KeyLen = 32
	IVLen  = aes.BlockSize
	// MaxIVEncodedLen is the length of a padded base64 encoding of a 16 byte
	// IV. Anything longer is rejected before decoding is attempted.
	MaxIVEncodedLen = 24
	ivSeparator     = "?iv="
)

var (
	ErrMalformed  = errors.New("nip04: payload is not of the form ciphertext?iv=iv")
	ErrIVTooLong  = errors.New("nip04: iv segment longer than a 16 byte iv encodes to")
	ErrInvalidIV  = errors.New("nip04: iv must be 16 bytes")
	ErrCiphertext = errors.New("nip04: ciphertext must be a non-empty whole number of blocks")
	ErrKey        = errors.New("nip04: key must be 32 bytes")
)

// IdentityHash is the ECDH hash hook NIP-04 uses: the 32 byte x-coordinate is
// copied to the output unchanged and the y-coordinate is ignored. It reports
// false if the buffers are not 32 bytes.
func IdentityHash(out, x, y []byte) (ok bool) {
	if len(out) != KeyLen || len(x) != KeyLen {
		return
	}
	copy(out, x)
	return true
}

// PaddedLen is the length plaintext of n bytes is zero padded to: the next
// multiple of the block size, and at least one block.
func PaddedLen(n int) (l int) {
	l = (n + IVLen - 1) / IVLen * IVLen
	if l == 0 {
		l = IVLen
	}
	return
}

// Trim drops trailing zero bytes, which removes the zero padding but also any
// zeros that genuinely ended the message.
func Trim(b []byte) []byte {
	i := len(b)
	for i > 0 && b[i-1] == 0 {
		i--
	}
	return b[:i]
}

// Encrypt zero pads plain and encrypts it with AES-256-CBC. The padded copy
// of the plaintext is wiped before returning.
func Encrypt(key, iv, plain []byte) (ct []byte, err error) {
	if len(key) != KeyLen {
		return nil, ErrKey
	}
	if len(iv) != IVLen {
		return nil, ErrInvalidIV
	}
	var block cipher.Block
	if block, err = aes.NewCipher(key); err != nil {
		return
	}
	padded := make([]byte, PaddedLen(len(plain)))
	defer secure.Zero(padded)
	copy(padded, plain)
	ct = make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)
	return
}

// Decrypt decrypts AES-256-CBC ciphertext. The result still carries the zero
// padding; see Trim.
func Decrypt(key, iv, ct []byte) (plain []byte, err error) {
	if len(key) != KeyLen {
		return nil, ErrKey
	}
	if len(iv) != IVLen {
		return nil, ErrInvalidIV
	}
	if len(ct) == 0 || len(ct)%IVLen != 0 {
		return nil, ErrCiphertext
	}
	var block cipher.Block
	if block, err = aes.NewCipher(key); err != nil {
		return
	}
	plain = make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ct)
	return
}

// Envelope is an encrypted note: base64 ciphertext and base64 IV.
type Envelope struct {
	Ciphertext string `json:"ciphertext"`
	IV         string `json:"iv"`
}

// Seal base64 encodes a ciphertext and its IV.
func Seal(ct, iv []byte) Envelope {
	return Envelope{
		Ciphertext: base64.StdEncoding.EncodeToString(ct),
		IV:         base64.StdEncoding.EncodeToString(iv),
	}
}

// String renders the NIP-04 wire form.
func (e Envelope) String() string { return e.Ciphertext + ivSeparator + e.IV }

// ParseEnvelope splits the wire form. The IV segment length is checked here,
// before anything is decoded.
func ParseEnvelope(s string) (e Envelope, err error) {
	ct, iv, found := strings.Cut(s, ivSeparator)
	if !found || ct == "" || iv == "" {
		err = ErrMalformed
		return
	}
	if len(iv) > MaxIVEncodedLen {
		err = ErrIVTooLong
		return
	}
	e = Envelope{Ciphertext: ct, IV: iv}
	return
}

// Decode base64 decodes both parts and checks the IV is exactly 16 bytes.
func (e Envelope) Decode() (ct, iv []byte, err error) {
	if len(e.IV) > MaxIVEncodedLen {
		err = ErrIVTooLong
		return
	}
	if iv, err = decode(e.IV); err != nil {
		err = errors.Join(ErrInvalidIV, err)
		return
	}
	if len(iv) != IVLen {
		err = ErrInvalidIV
		return
	}
	if ct, err = decode(e.Ciphertext); err != nil {
		err = errors.Join(ErrMalformed, err)
		return
	}
	if len(ct) == 0 || len(ct)%IVLen != 0 {
		err = ErrCiphertext
		return
	}
	return
}

// decode accepts both padded and unpadded standard base64, some clients strip
// the trailing '='.
func decode(s string) (b []byte, err error) {
	if len(s)%4 == 0 {
		return base64.StdEncoding.DecodeString(s)
	}
	return base64.RawStdEncoding.DecodeString(s)
}
