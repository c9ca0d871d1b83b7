// Package hex wraps the standard hex codec with the SIMD accelerated xhex
// encoder for the append forms used on hot paths like canonical event
// encoding.
package hex

import (
	"encoding/hex"

	"github.com/templexxx/xhex"
)

var Enc = hex.EncodeToString
var EncBytes = hex.Encode
var Dec = hex.DecodeString
var DecBytes = hex.Decode
var DecLen = hex.DecodedLen

type InvalidByteError = hex.InvalidByteError

// EncAppend appends the lower case hex encoding of src to dst.
func EncAppend(dst, src []byte) (b []byte) {
	l := len(dst)
	dst = append(dst, make([]byte, len(src)*2)...)
	xhex.Encode(dst[l:], src)
	return dst
}

// DecAppend appends the decoding of the hex string src to dst.
func DecAppend(dst, src []byte) (b []byte, err error) {
	if len(src)%2 != 0 {
		err = hex.ErrLength
		return
	}
	l := len(dst)
	b = append(dst, make([]byte, len(src)/2)...)
	if err = xhex.Decode(b[l:], src); err != nil {
		b = dst
		return
	}
	return
}

// DecInto decodes the hex string src into the fixed size buffer dst, which
// must be exactly half the length of src. Upper and lower case digits are
// accepted. dst is left zeroed on failure, so it is safe to use with secret
// material.
func DecInto(dst, src []byte) (err error) {
	if len(src) != len(dst)*2 {
		err = hex.ErrLength
		return
	}
	if _, err = hex.Decode(dst, src); err != nil {
		for i := range dst {
			dst[i] = 0
		}
	}
	return
}
