package text

const lowerHex = "0123456789abcdef"

// NostrEscape appends src to dst as the body of a JSON string, escaped the
// way NIP-01 requires for the canonical event form:
//
//	No whitespace, line breaks or other unnecessary formatting should be included
//	in the output JSON. No characters except the following should be escaped, and
//	instead should be included verbatim:
//
//	- A line break, 0x0A, as \n
//	- A double quote, 0x22, as \"
//	- A backslash, 0x5C, as \\
//	- A carriage return, 0x0D, as \r
//	- A tab character, 0x09, as \t
//	- A backspace, 0x08, as \b
//	- A form feed, 0x0C, as \f
//
//	UTF-8 should be used for encoding.
//
// The remaining control characters below 0x20 cannot appear raw in JSON; they
// are written as \u00xx with lower case hex, as JSON.stringify does. Everything
// else, '+', '<', '>', '&', '/' and all non-ASCII bytes included, is copied
// verbatim.
func NostrEscape(dst, src []byte) []byte {
	for _, c := range src {
		switch {
		case c == '"':
			dst = append(dst, '\\', '"')
		case c == '\\':
			dst = append(dst, '\\', '\\')
		case c == '\b':
			dst = append(dst, '\\', 'b')
		case c == '\t':
			dst = append(dst, '\\', 't')
		case c == '\n':
			dst = append(dst, '\\', 'n')
		case c == '\f':
			dst = append(dst, '\\', 'f')
		case c == '\r':
			dst = append(dst, '\\', 'r')
		case c < 0x20:
			dst = append(dst, '\\', 'u', '0', '0', lowerHex[c>>4], lowerHex[c&0xf])
		default:
			dst = append(dst, c)
		}
	}
	return dst
}

func unhex(c byte) (v byte, ok bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return
}

// NostrUnescape reverses NostrEscape in place and returns the shortened slice.
// Escapes NostrEscape never produces are kept as they are.
func NostrUnescape(dst []byte) (b []byte) {
	var r, w int
	for ; r < len(dst); r++ {
		if dst[r] != '\\' || r+1 == len(dst) {
			dst[w] = dst[r]
			w++
			continue
		}
		r++
		c := dst[r]
		switch c {
		case '"', '\\':
			dst[w] = c
		case 'b':
			dst[w] = '\b'
		case 't':
			dst[w] = '\t'
		case 'n':
			dst[w] = '\n'
		case 'f':
			dst[w] = '\f'
		case 'r':
			dst[w] = '\r'
		case 'u':
			if r+4 < len(dst) && dst[r+1] == '0' && dst[r+2] == '0' {
				hi, ok1 := unhex(dst[r+3])
				lo, ok2 := unhex(dst[r+4])
				if ok1 && ok2 && hi < 2 {
					dst[w] = hi<<4 | lo
					w++
					r += 4
					continue
				}
			}
			dst[w] = '\\'
			w++
			dst[w] = c
		default:
			dst[w] = '\\'
			w++
			dst[w] = c
		}
		w++
	}
	b = dst[:w]
	return
}
