package p256k

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nsigner.lol/p256k/btcec"
	"nsigner.lol/random"
	"nsigner.lol/secure"
	"nsigner.lol/signer"
	"nsigner.lol/signer/signertest"
)

// loadOrSkip loads the system libsecp256k1, or the one named by
// NSIGNER_SECP256K1_LIB, and skips the test if there is none.
func loadOrSkip(t *testing.T) (l *Library) {
	var err er
	if l, err = Load(os.Getenv("NSIGNER_SECP256K1_LIB")); err != nil {
		t.Skipf("libsecp256k1 not available: %v", err)
	}
	t.Cleanup(func() { chk.E(l.Close()) })
	return
}

func TestLoadMissingLibrary(t *testing.T) {
	_, err := Load("/nonexistent/libsecp256k1.so")
	require.ErrorIs(t, err, signer.ErrLoad)
}

func TestLoadMissingSymbols(t *testing.T) {
	// libc opens fine but exports none of the entry points
	_, err := Load("libc.so.6")
	require.ErrorIs(t, err, signer.ErrLoad)
}

// fake is a Library whose entry points only record the context lifecycle.
type fake struct {
	created, destroyed, randomized no
	randomizeResult                i32
}

func (f *fake) library() *Library {
	return &Library{
		contextCreate: func(flags u32) uintptr {
			f.created++
			return 0x1000
		},
		contextDestroy: func(ctx uintptr) { f.destroyed++ },
		contextRandomize: func(ctx uintptr, seed32 *byte) i32 {
			f.randomized++
			return f.randomizeResult
		},
	}
}

func TestContextLifecycle(t *testing.T) {
	f := &fake{randomizeResult: 1}
	lib := f.library()
	c, err := lib.NewContext(random.System{}, nil)
	require.NoError(t, err)
	require.Equal(t, Randomized, c.State())
	var seen uintptr
	require.NoError(t, c.Use(func(ctx uintptr) er { seen = ctx; return nil }))
	require.Equal(t, uintptr(0x1000), seen)
	require.Equal(t, Used, c.State())
	require.PanicsWithValue(t, "p256k: context used while used",
		func() { _ = c.Use(func(uintptr) er { return nil }) })
	c.Destroy()
	c.Destroy()
	require.Equal(t, Destroyed, c.State())
	require.Equal(t, 1, f.created)
	require.Equal(t, 1, f.destroyed)
}

func TestRandomizeFailureAborts(t *testing.T) {
	f := &fake{randomizeResult: 0}
	r := new(secure.Recorder)
	c, err := f.library().NewContext(random.System{}, r)
	require.ErrorIs(t, err, signer.ErrRandomize)
	require.Nil(t, c)
	require.Equal(t, 1, f.destroyed)
	require.Zero(t, r.Residue())
}

func TestClosedLibrary(t *testing.T) {
	f := &fake{randomizeResult: 1}
	s := NewWithLibrary(f.library(), random.System{}, nil)
	require.NoError(t, s.Close())
	pub := make(by, 32)
	require.ErrorIs(t, s.RecoverPub(bytes.Repeat(by{1}, 32), pub), signer.ErrClosed)
	require.Zero(t, f.created)
}

func TestConformance(t *testing.T) {
	signertest.Run(t, NewWithLibrary(loadOrSkip(t), random.System{}, nil))
}

func TestZeroing(t *testing.T) {
	r := new(secure.Recorder)
	signertest.Zeroing(t, NewWithLibrary(loadOrSkip(t), random.System{}, r), r)
}

func TestAgreesWithBTCEC(t *testing.T) {
	n := NewWithLibrary(loadOrSkip(t), random.Frand{}, nil)
	b := btcec.New(random.Frand{}, nil)
	var err er
	const total = 100
	start := time.Now()
	for range total {
		sec, pub := make(by, 32), make(by, 32)
		if err = n.Generate(sec, pub); chk.E(err) {
			t.Fatal(err)
		}
		pub2 := make(by, 32)
		if err = b.RecoverPub(sec, pub2); chk.E(err) {
			t.Fatal(err)
		}
		require.Equal(t, pub, pub2)
		digest := make(by, 32)
		random.Frand{}.Fill(digest)
		sig := make(by, 64)
		if err = n.Sign(sec, digest, sig); chk.E(err) {
			t.Fatal(err)
		}
		require.True(t, b.Verify(pub, digest, sig))
		if err = b.Sign(sec, digest, sig); chk.E(err) {
			t.Fatal(err)
		}
		require.True(t, n.Verify(pub, digest, sig))
		peerSec, peer := make(by, 32), make(by, 32)
		if err = b.Generate(peerSec, peer); chk.E(err) {
			t.Fatal(err)
		}
		s1, s2 := make(by, 32), make(by, 32)
		if err = n.Shared(sec, peer, s1); chk.E(err) {
			t.Fatal(err)
		}
		if err = b.Shared(peerSec, pub, s2); chk.E(err) {
			t.Fatal(err)
		}
		require.Equal(t, s1, s2)
	}
	d := time.Since(start)
	log.I.Ln("total", total, "time", d, "time/op", d/total)
}
