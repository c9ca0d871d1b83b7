// Package secure holds the single code path through which every buffer that
// can contain secret bytes is wiped: secret keys, shared secrets, entropy,
// native keypair structures and intermediate plaintext.
//
// Buffers are obtained from an Allocator and released with Release, which
// zeroes them. With wraps the acquire/release pair around a function so the
// wipe happens on every exit path, including a panic unwinding through it.
package secure

import (
	"runtime"
	"sync"
)

// Zero overwrites b with zeros.
func Zero(b []byte) {
	clear(b)
	runtime.KeepAlive(b)
}

// Wipe zeroes each of the given buffers.
func Wipe(bufs ...[]byte) {
	for _, b := range bufs {
		Zero(b)
	}
}

// Allocator hands out buffers for secret material. Free must leave the buffer
// zeroed.
type Allocator interface {
	Alloc(n int) []byte
	Free(b []byte)
}

// Heap is the plain allocator: fresh slices from the Go heap, zeroed on Free.
type Heap struct{}

func (Heap) Alloc(n int) []byte { return make([]byte, n) }
func (Heap) Free(b []byte)      { Zero(b) }

// Buffer is a secret buffer that must be released once its owner is done.
type Buffer struct {
	B []byte
	a Allocator
}

// New allocates an n byte secret buffer from a, or from the heap if a is nil.
func New(a Allocator, n int) (b *Buffer) {
	if a == nil {
		a = Heap{}
	}
	return &Buffer{B: a.Alloc(n), a: a}
}

// Release zeroes the buffer and hands it back to its allocator. Calling it more
// than once is harmless.
func (b *Buffer) Release() {
	if b == nil || b.B == nil {
		return
	}
	b.a.Free(b.B)
	b.B = nil
}

// With allocates an n byte buffer, passes it to fn and releases it however fn
// returns.
func With(a Allocator, n int, fn func(b []byte) error) (err error) {
	buf := New(a, n)
	defer buf.Release()
	return fn(buf.B)
}

// Recorder is an Allocator that remembers every buffer it handed out so a test
// harness can check afterwards that nothing secret was left behind.
type Recorder struct {
	sync.Mutex
	bufs  [][]byte
	freed int
}

func (r *Recorder) Alloc(n int) (b []byte) {
	b = make([]byte, n)
	r.Lock()
	r.bufs = append(r.bufs, b)
	r.Unlock()
	return
}

func (r *Recorder) Free(b []byte) {
	Zero(b)
	r.Lock()
	r.freed++
	r.Unlock()
}

// Allocated returns how many buffers were handed out and how many came back.
func (r *Recorder) Allocated() (allocated, freed int) {
	r.Lock()
	defer r.Unlock()
	return len(r.bufs), r.freed
}

// Residue counts the non-zero bytes remaining across every buffer handed out.
func (r *Recorder) Residue() (n int) {
	r.Lock()
	defer r.Unlock()
	for _, b := range r.bufs {
		for _, c := range b {
			if c != 0 {
				n++
			}
		}
	}
	return
}
