// Package p256k binds bitcoin-core/libsecp256k1 at run time and implements
// signer.I on it.
//
// The shared library is opened by path with dlopen and every entry point is
// resolved by name when the Library is loaded; a missing symbol fails the load
// and nothing is left half initialised. No cgo is involved, so the binary
// builds without a C toolchain and the library is only needed on hosts that
// select this backend.
//
// Every operation runs on its own context: created, randomized with 32 fresh
// bytes from the configured source, used once and destroyed, so no native state
// is ever shared between goroutines.
package p256k
