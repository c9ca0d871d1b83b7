package noscrypt

import (
	"nsigner.lol/errorf"
	"nsigner.lol/random"
	"nsigner.lol/secure"
	"nsigner.lol/signer"
)

// Context is one noscrypt context held in a secret buffer. It is initialised
// with fresh entropy, used for a single operation and then destroyed and
// wiped.
type Context struct {
	lib       *Library
	mem       *secure.Buffer
	used      bool
	destroyed bool
}

// NewContext allocates and initialises a context. The caller holds the
// library read lock.
func (l *Library) NewContext(rnd random.Source, alloc secure.Allocator) (c *Context, err error) {
	if l.closed {
		err = signer.ErrClosed
		return
	}
	size := int(l.getContextStructSize())
	if size <= 0 {
		err = errorf.E("noscrypt: library reports a context size of %d", size)
		return
	}
	ctx := &Context{lib: l, mem: secure.New(alloc, size)}
	entropy := secure.New(alloc, EntropyLen)
	defer entropy.Release()
	rnd.Fill(entropy.B)
	if r := l.initContext(&ctx.mem.B[0], &entropy.B[0]); r != Success {
		ctx.mem.Release()
		err = errorf.D("noscrypt: %w: NCInitContext returned %d", signer.ErrRandomize, r)
		return
	}
	c = ctx
	return
}

// Use hands the context to fn. Using a context twice panics.
func (c *Context) Use(fn func(ctx *byte) error) error {
	if c.used || c.destroyed {
		panic("noscrypt: context reused")
	}
	c.used = true
	return fn(&c.mem.B[0])
}

// Destroy tears the context down and wipes its memory. Repeated calls do
// nothing.
func (c *Context) Destroy() {
	if c == nil || c.destroyed {
		return
	}
	c.destroyed = true
	c.lib.destroyContext(&c.mem.B[0])
	c.mem.Release()
}
