package p256k

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"nsigner.lol/nip04"
	"nsigner.lol/signer"
)

var (
	hashOnce sync.Once
	hashFn   uintptr
)

// identityHash returns the secp256k1_ecdh_hash_function that hands the shared
// point's x-coordinate back unchanged. Callbacks cannot be freed, so it is
// created once for the process.
func identityHash() uintptr {
	hashOnce.Do(func() {
		hashFn = purego.NewCallback(func(output, x32, y32, data uintptr) no {
			out := unsafe.Slice((*byte)(unsafe.Pointer(output)), signer.SharedLen)
			x := unsafe.Slice((*byte)(unsafe.Pointer(x32)), signer.SharedLen)
			y := unsafe.Slice((*byte)(unsafe.Pointer(y32)), signer.SharedLen)
			if nip04.IdentityHash(out, x, y) {
				return 1
			}
			return 0
		})
	})
	return hashFn
}
