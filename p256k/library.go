package p256k

import (
	"runtime"
	"sync"

	"github.com/ebitengine/purego"

	"nsigner.lol/signer"
)

// Sizes of the opaque libsecp256k1 structures.
const (
	KeypairLen     = 96
	XOnlyPubkeyLen = 64
	PubkeyLen      = 64
	compressedLen  = 33
)

// contextFlags is SECP256K1_CONTEXT_SIGN | SECP256K1_CONTEXT_VERIFY.
const contextFlags u32 = 0x0201 | 0x0101

// Library is a loaded libsecp256k1. The resolved entry points are read only
// after Load and may be called from any goroutine; Close is exclusive with all
// of them.
type Library struct {
	sync.RWMutex
	path   st
	handle uintptr
	closed bo

	contextCreate        func(flags u32) uintptr
	contextDestroy       func(ctx uintptr)
	contextRandomize     func(ctx uintptr, seed32 *byte) i32
	ecSeckeyVerify       func(ctx uintptr, seckey *byte) i32
	ecPubkeyParse        func(ctx uintptr, pubkey, input *byte, inputlen uintptr) i32
	keypairCreate        func(ctx uintptr, keypair, seckey *byte) i32
	keypairXonlyPub      func(ctx uintptr, pubkey *byte, parity *i32, keypair *byte) i32
	xonlyPubkeyParse     func(ctx uintptr, pubkey, input32 *byte) i32
	xonlyPubkeySerialize func(ctx uintptr, output32, pubkey *byte) i32
	schnorrsigSign32     func(ctx uintptr, sig64, msg32, keypair, aux32 *byte) i32
	schnorrsigVerify     func(ctx uintptr, sig64, msg *byte, msglen uintptr, pubkey *byte) i32
	ecdh                 func(ctx uintptr, output, pubkey, seckey *byte, hashfp, data uintptr) i32
}

type symbol struct {
	name st
	fptr any
}

func (l *Library) symbols() []symbol {
	return []symbol{
		{"secp256k1_context_create", &l.contextCreate},
		{"secp256k1_context_destroy", &l.contextDestroy},
		{"secp256k1_context_randomize", &l.contextRandomize},
		{"secp256k1_ec_seckey_verify", &l.ecSeckeyVerify},
		{"secp256k1_ec_pubkey_parse", &l.ecPubkeyParse},
		{"secp256k1_keypair_create", &l.keypairCreate},
		{"secp256k1_keypair_xonly_pub", &l.keypairXonlyPub},
		{"secp256k1_xonly_pubkey_parse", &l.xonlyPubkeyParse},
		{"secp256k1_xonly_pubkey_serialize", &l.xonlyPubkeySerialize},
		{"secp256k1_schnorrsig_sign32", &l.schnorrsigSign32},
		{"secp256k1_schnorrsig_verify", &l.schnorrsigVerify},
		{"secp256k1_ecdh", &l.ecdh},
	}
}

// DefaultPaths are tried in order when no library path is configured.
func DefaultPaths() []st {
	switch runtime.GOOS {
	case "darwin":
		return []st{
			"libsecp256k1.dylib",
			"/opt/homebrew/lib/libsecp256k1.dylib",
			"/usr/local/lib/libsecp256k1.dylib",
		}
	default:
		return []st{"libsecp256k1.so.2", "libsecp256k1.so.1", "libsecp256k1.so"}
	}
}

// Load opens the library at path, or the first of DefaultPaths that opens if
// path is empty, and resolves every entry point.
func Load(path st) (l *Library, err er) {
	if path != "" {
		return load(path)
	}
	for _, p := range DefaultPaths() {
		if l, err = load(p); err == nil {
			return
		}
	}
	return
}

func load(path st) (l *Library, err er) {
	var h uintptr
	if h, err = purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL); err != nil {
		err = errorf.D("p256k: %w: %s: %w", signer.ErrLoad, path, err)
		return
	}
	lib := &Library{path: path, handle: h}
	for _, s := range lib.symbols() {
		var fn uintptr
		if fn, err = purego.Dlsym(h, s.name); err != nil {
			_ = purego.Dlclose(h)
			err = errorf.E("p256k: %w: %s has no symbol %s", signer.ErrLoad, path, s.name)
			return
		}
		purego.RegisterFunc(s.fptr, fn)
	}
	log.D.F("loaded %s", path)
	l = lib
	return
}

// Path is where the library was loaded from.
func (l *Library) Path() st { return l.path }

// Close unloads the library. It waits for operations in flight; any started
// afterwards fail with signer.ErrClosed.
func (l *Library) Close() (err er) {
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
