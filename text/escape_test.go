package text

import (
	"bytes"
	"testing"

	"lukechampine.com/frand"

	"nsigner.lol/chk"
	"nsigner.lol/sha256"
)

func TestUnescapeByteString(t *testing.T) {
	b := make([]byte, 256)
	for i := range b {
		b[i] = byte(i)
	}
	escaped := NostrEscape(nil, b)
	unescaped := NostrUnescape(escaped)
	if string(b) != string(unescaped) {
		t.Log(b)
		t.Log(unescaped)
		t.FailNow()
	}
}

func TestEscapeVectors(t *testing.T) {
	for in, want := range map[string]string{
		"a+b":           "a+b",
		`say "hi"`:      `say \"hi\"`,
		`C:\path`:       `C:\\path`,
		`\u0041`:        `\\u0041`,
		"\n\t\r\b\f":    `\n\t\r\b\f`,
		"\x00\x01\x1f":  `\u0000\u0001\u001f`,
		"\x7f":          "\x7f",
		"<a href=/>&é🙂": "<a href=/>&é🙂",
	} {
		if got := string(NostrEscape(nil, []byte(in))); got != want {
			t.Errorf("escape %q: got %s want %s", in, got, want)
		}
	}
}

func TestUnescapeKeepsForeignEscapes(t *testing.T) {
	in := []byte(`\/ \u00e9 \u2028 \x`)
	if got := string(NostrUnescape(bytes.Clone(in))); got != string(in) {
		t.Fatalf("got %s", got)
	}
}

func GenRandString(l int, src *frand.RNG) (str []byte) {
	return src.Bytes(l)
}

var seed = sha256.Sum256([]byte(`
The tao that can be told
is not the eternal Tao
The name that can be named
is not the eternal Name
`))

var src = frand.NewCustom(seed[:], 32, 12)

func TestRandomEscapeByteString(t *testing.T) {
	// a kind of fuzz test: random content must come back unchanged after an
	// escape and unescape, and the escaped form must never hold a raw control
	// character.
	for i := 0; i < 1000; i++ {
		l := src.Intn(1<<8) + 32
		orig := GenRandString(l, src)
		escaped := NostrEscape(nil, orig)
		for _, c := range escaped {
			if c < 0x20 {
				t.Fatalf("raw control character %#x in %q", c, escaped)
			}
		}
		if unescaped := NostrUnescape(escaped); !bytes.Equal(unescaped, orig) {
			t.Fatalf("\ngot      %d %v\nexpected %d %v\n",
				len(unescaped), unescaped, len(orig), orig)
		}
	}
}

func BenchmarkNostrEscapeNostrUnescape(b *testing.B) {
	const size = 65536
	b.Run("NostrEscape64k", func(b *testing.B) {
		b.ReportAllocs()
		in := make([]byte, size)
		out := make([]byte, size*2)
		var err error
		for i := 0; i < b.N; i++ {
			if _, err = frand.Read(in); chk.E(err) {
				b.Fatal(err)
			}
			out = NostrEscape(out, in)
			out = out[:0]
		}
	})
	b.Run("NostrEscapeNostrUnescape64k", func(b *testing.B) {
		b.ReportAllocs()
		in := make([]byte, size)
		out := make([]byte, size*6)
		var err error
		for i := 0; i < b.N; i++ {
			if _, err = frand.Read(in); chk.E(err) {
				b.Fatal(err)
			}
			out = NostrEscape(out, in)
			out = NostrUnescape(out)
			out = out[:0]
		}
	})
}
