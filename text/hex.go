package text

import (
	"nsigner.lol/hex"
)

// AppendHexFromBinary appends the lower case hex of src, quoted if asked.
func AppendHexFromBinary(dst, src []byte, quote bool) (b []byte) {
	if quote {
		dst = AppendQuote(dst, src, hex.EncAppend)
	} else {
		dst = hex.EncAppend(dst, src)
	}
	b = dst
	return
}

// JSONKey appends a quoted object key and its colon.
func JSONKey(dst, k []byte) (b []byte) {
	dst = append(dst, '"')
	dst = append(dst, k...)
	dst = append(dst, '"', ':')
	b = dst
	return
}
