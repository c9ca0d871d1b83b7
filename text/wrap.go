package text

type AppendBytesClosure func(dst, src []byte) []byte

type AppendClosure func(dst []byte) []byte

func Noop(dst, src []byte) []byte { return append(dst, src...) }

func AppendQuote(dst, src []byte, ac AppendBytesClosure) []byte {
	dst = append(dst, '"')
	dst = ac(dst, src)
	dst = append(dst, '"')
	return dst
}

func Quote(dst, src []byte) []byte { return AppendQuote(dst, src, Noop) }

// EscapedQuote appends src as a complete NIP-01 escaped JSON string.
func EscapedQuote(dst, src []byte) []byte { return AppendQuote(dst, src, NostrEscape) }

func AppendBracket(dst []byte, ac AppendClosure) []byte {
	dst = append(dst, '[')
	dst = ac(dst)
	dst = append(dst, ']')
	return dst
}

// AppendList appends the items of src separated by separator, each written
// by ac.
func AppendList(dst []byte, src [][]byte, separator byte,
	ac AppendBytesClosure) []byte {
	last := len(src) - 1
	for i := range src {
		dst = ac(dst, src[i])
		if i < last {
			dst = append(dst, separator)
		}
	}
	return dst
}
