// Package random provides the random source the engine draws every nonce,
// IV, context seed and fresh secret key from. The source is always passed in
// explicitly; only the composition root picks a default.
package random

import (
	"crypto/rand"
	"sync"

	"lukechampine.com/frand"
)

// Source fills buffers with cryptographically secure random bytes.
type Source interface {
	Fill(b []byte)
}

// System reads from the operating system CSPRNG.
type System struct{}

func (System) Fill(b []byte) {
	if _, err := rand.Read(b); err != nil {
		// crypto/rand only fails when the kernel source is broken, and nothing
		// after this point is safe.
		panic("random: system source failed: " + err.Error())
	}
}

// Frand is the fast userspace ChaCha8 generator from lukechampine.com/frand,
// itself seeded from the system source.
type Frand struct{}

func (Frand) Fill(b []byte) { frand.Read(b) }

// Fallback is a ChaCha20 stream seeded once. With a fixed seed it is fully
// deterministic, which is what simulations and tests want.
type Fallback struct {
	sync.Mutex
	rng *frand.RNG
}

// NewFallback creates a Fallback from a 32 byte seed, or from the system
// source if seed is nil.
func NewFallback(seed []byte) (f *Fallback) {
	s := make([]byte, 32)
	if seed == nil {
		System{}.Fill(s)
	} else {
		if len(seed) != 32 {
			panic("random: fallback seed must be 32 bytes")
		}
		copy(s, seed)
	}
	f = &Fallback{rng: frand.NewCustom(s, 1024, 20)}
	clear(s)
	return
}

func (f *Fallback) Fill(b []byte) {
	f.Lock()
	_, _ = f.rng.Read(b)
	f.Unlock()
}

// Names of the selectable sources.
const (
	SystemName   = "system"
	FrandName    = "frand"
	FallbackName = "fallback"
)

// ByName returns the named source, or nil if the name is unknown.
func ByName(name string) (s Source) {
	switch name {
	case SystemName, "":
		return System{}
	case FrandName:
		return Frand{}
	case FallbackName:
		return NewFallback(nil)
	}
	return
}
