package p256k

import (
	"fmt"

	"nsigner.lol/random"
	"nsigner.lol/secure"
	"nsigner.lol/signer"
)

type State int

const (
	Created State = iota
	Randomized
	Used
	Destroyed
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Randomized:
		return "randomized"
	case Used:
		return "used"
	case Destroyed:
		return "destroyed"
	}
	return fmt.Sprintf("state(%d)", no(s))
}

// Context is one libsecp256k1 context. It moves through Created, Randomized,
// Used and Destroyed exactly once and is never shared between goroutines.
type Context struct {
	lib   *Library
	ptr   uintptr
	state State
}

// NewContext creates a context and randomizes it with 32 bytes from rnd. If
// randomization fails the context is destroyed and signer.ErrRandomize
// returned; the operation must not go ahead on an unblinded context. The
// caller holds the library read lock.
func (l *Library) NewContext(rnd random.Source, alloc secure.Allocator) (c *Context, err er) {
	if l.closed {
		err = signer.ErrClosed
		return
	}
	ptr := l.contextCreate(contextFlags)
	if ptr == 0 {
		err = errorf.E("p256k: context creation failed")
		return
	}
	ctx := &Context{lib: l, ptr: ptr, state: Created}
	seed := secure.New(alloc, signer.SeedLen)
	defer seed.Release()
	rnd.Fill(seed.B)
	if l.contextRandomize(ptr, &seed.B[0]) != 1 {
		ctx.Destroy()
		err = signer.ErrRandomize
		return
	}
	ctx.state = Randomized
	c = ctx
	return
}

// State reports where the context is in its lifecycle.
func (c *Context) State() State { return c.state }

// Use runs fn with the native context pointer. It panics unless the context
// is freshly randomized: a second use is a programming error.
func (c *Context) Use(fn func(ctx uintptr) er) (err er) {
	if c.state != Randomized {
		panic("p256k: context used while " + c.state.String())
	}
	c.state = Used
	return fn(c.ptr)
}

// Destroy releases the native context. It is safe to call more than once.
func (c *Context) Destroy() {
	if c == nil || c.state == Destroyed {
		return
	}
	c.lib.contextDestroy(c.ptr)
	c.ptr = 0
	c.state = Destroyed
}
