package noscrypt

import (
	"runtime"
	"sync"

	"github.com/ebitengine/purego"

	"nsigner.lol/chk"
	"nsigner.lol/errorf"
	"nsigner.lol/log"
	"nsigner.lol/signer"
)

// Result codes. Entry points return NCResult, an int64 that is zero on
// success and negative on error; NCValidateSecretKey returns 1 for a valid key.
const (
	Success     int64 = 0
	validSecret int64 = 1
	EntropyLen        = 32
)

// Library is a loaded noscrypt. Entry points are read only after Load; Close
// is exclusive with every operation.
type Library struct {
	sync.RWMutex
	path   string
	handle uintptr
	closed bool

	getContextStructSize func() uint32
	initContext          func(ctx, entropy32 *byte) int64
	reInitContext        func(ctx, entropy32 *byte) int64
	destroyContext       func(ctx *byte) int64
	getPublicKey         func(ctx, sk, pk *byte) int64
	validateSecretKey    func(ctx, sk *byte) int64
	signDigest           func(ctx, sk, random32, digest32, sig64 *byte) int64
	verifyDigest         func(ctx, pk, digest32, sig64 *byte) int64
}

func (l *Library) symbols() []struct {
	name string
	fptr any
} {
	return []struct {
		name string
		fptr any
	}{
		{"NCGetContextStructSize", &l.getContextStructSize},
		{"NCInitContext", &l.initContext},
		{"NCReInitContext", &l.reInitContext},
		{"NCDestroyContext", &l.destroyContext},
		{"NCGetPublicKey", &l.getPublicKey},
		{"NCValidateSecretKey", &l.validateSecretKey},
		{"NCSignDigest", &l.signDigest},
		{"NCVerifyDigest", &l.verifyDigest},
	}
}

// DefaultPath is the library name dlopen searches for when none is set.
func DefaultPath() string {
	if runtime.GOOS == "darwin" {
		return "libnoscrypt.dylib"
	}
	return "libnoscrypt.so"
}

// Load opens noscrypt at path (DefaultPath if empty) and resolves every entry
// point. Nothing is returned unless all of them resolve.
func Load(path string) (l *Library, err error) {
	if path == "" {
		path = DefaultPath()
	}
	var h uintptr
	if h, err = purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL); err != nil {
		err = errorf.D("noscrypt: %w: %s: %w", signer.ErrLoad, path, err)
		return
	}
	lib := &Library{path: path, handle: h}
	for _, s := range lib.symbols() {
		var fn uintptr
		if fn, err = purego.Dlsym(h, s.name); err != nil {
			chk.D(purego.Dlclose(h))
			err = errorf.E("noscrypt: %w: %s has no symbol %s", signer.ErrLoad, path, s.name)
			return
		}
		purego.RegisterFunc(s.fptr, fn)
	}
	log.D.F("loaded %s", path)
	l = lib
	return
}

// Close unloads the library once every operation in flight has finished.
func (l *Library) Close() (err error) {
	l.Lock()
	defer l.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	if l.handle != 0 {
		err = purego.Dlclose(l.handle)
		l.handle = 0
	}
	return
}
