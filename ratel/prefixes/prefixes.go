// Package prefixes is the single byte key prefix of each table in the ratel
// secret store.
package prefixes

const (
	// Version is the key that stores the version number, the value is a 16-bit
	// integer (2 bytes)
	//
	//   [ 255 ][ 2 byte/16 bit version code ]
	Version P = 255
)

const (
	// Secret holds an encoded secret key. Scope and id are separated by a zero
	// byte, which neither may contain.
	//
	//   [ 0 ][ scope ][ 0 ][ id ]
	Secret P = iota

	// Created holds the unix timestamp a secret was first stored at.
	//
	//   [ 1 ][ scope ][ 0 ][ id ]
	Created
)

// P is a table prefix.
type P byte

// Key writes a key with the P prefix byte followed by each part, zero byte
// separated.
func (p P) Key(parts ...string) (b []byte) {
	n := 1
	for _, s := range parts {
		n += len(s) + 1
	}
	b = make([]byte, 1, n)
	b[0] = byte(p)
	for i, s := range parts {
		if i > 0 {
			b = append(b, 0)
		}
		b = append(b, s...)
	}
	return
}

// B returns the P as a byte slice, for use as an iterator prefix.
func (p P) B() []byte { return []byte{byte(p)} }
