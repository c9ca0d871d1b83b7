package p256k

import (
	"errors"

	"nsigner.lol/nip04"
	"nsigner.lol/random"
	"nsigner.lol/secure"
	"nsigner.lol/signer"
)

const Name = "secp256k1"

// Signer implements signer.I on a loaded libsecp256k1.
type Signer struct {
	lib   *Library
	rnd   random.Source
	alloc secure.Allocator
}

var _ signer.I = (*Signer)(nil)

// New loads the library at path (see Load) and returns a Signer using it.
func New(path st, rnd random.Source, alloc secure.Allocator) (s *Signer, err er) {
	var lib *Library
	if lib, err = Load(path); err != nil {
		return
	}
	s = NewWithLibrary(lib, rnd, alloc)
	return
}

// NewWithLibrary returns a Signer on an already loaded library. Closing the
// Signer closes the library.
func NewWithLibrary(lib *Library, rnd random.Source, alloc secure.Allocator) *Signer {
	if lib == nil || rnd == nil {
		panic("p256k: nil library or random source")
	}
	if alloc == nil {
		alloc = secure.Heap{}
	}
	return &Signer{lib: lib, rnd: rnd, alloc: alloc}
}

func (s *Signer) Name() st                { return Name }
func (s *Signer) SignatureSize() no       { return signer.SignatureLen }
func (s *Signer) KeySizes() (sec, pub no) { return signer.SecKeyLen, signer.PubKeyLen }
func (s *Signer) Random(b by)             { s.rnd.Fill(b) }
func (s *Signer) Close() (err er)         { return s.lib.Close() }

// run executes fn on a fresh randomized context and destroys it afterwards,
// whatever fn returns.
func (s *Signer) run(fn func(ctx uintptr) er) (err er) {
	s.lib.RLock()
	defer s.lib.RUnlock()
	var c *Context
	if c, err = s.lib.NewContext(s.rnd, s.alloc); err != nil {
		return
	}
	defer c.Destroy()
	return c.Use(fn)
}

// keypair builds the native keypair for sec into kp. A failure means sec is
// not a valid secret key.
func (s *Signer) keypair(ctx uintptr, sec, kp by) (err er) {
	if s.lib.keypairCreate(ctx, &kp[0], &sec[0]) != 1 {
		err = signer.ErrInvalidSecretKey
	}
	return
}

func (s *Signer) xonly(ctx uintptr, kp, pub by) (err er) {
	xo := make(by, XOnlyPubkeyLen)
	if s.lib.keypairXonlyPub(ctx, &xo[0], nil, &kp[0]) != 1 {
		return signer.ErrInvalidSecretKey
	}
	if s.lib.xonlyPubkeySerialize(ctx, &pub[0], &xo[0]) != 1 {
		return errorf.E("p256k: x-only public key serialization failed")
	}
	return
}

// RecoverPub derives the x-only public key of sec. The keypair structure is
// wiped whether or not the derivation worked.
func (s *Signer) RecoverPub(sec, pub by) (err er) {
	signer.CheckSizes(s, sec, pub)
	return s.run(func(ctx uintptr) (err er) {
		kp := secure.New(s.alloc, KeypairLen)
		defer kp.Release()
		if err = s.keypair(ctx, sec, kp.B); err != nil {
			return
		}
		return s.xonly(ctx, kp.B, pub)
	})
}

// Generate draws secret keys until libsecp256k1 accepts one. Rejection has
// negligible probability, so the loop is not bounded.
func (s *Signer) Generate(sec, pub by) (err er) {
	signer.CheckSizes(s, sec, pub)
	for {
		s.rnd.Fill(sec)
		if err = s.RecoverPub(sec, pub); err == nil {
			return
		}
		if !errors.Is(err, signer.ErrInvalidSecretKey) {
			secure.Wipe(sec, pub)
			return
		}
		log.T.Ln("p256k: generated secret rejected, drawing again")
	}
}

// Sign writes the BIP-340 signature of digest into sig.
func (s *Signer) Sign(sec, digest, sig by) (err er) {
	signer.MustLen(sec, signer.SecKeyLen, "secret key")
	signer.MustLen(digest, signer.DigestLen, "digest")
	signer.MustLen(sig, signer.SignatureLen, "signature")
	return s.run(func(ctx uintptr) (err er) {
		kp := secure.New(s.alloc, KeypairLen)
		defer kp.Release()
		if err = s.keypair(ctx, sec, kp.B); err != nil {
			return
		}
		aux := secure.New(s.alloc, 32)
		defer aux.Release()
		s.rnd.Fill(aux.B)
		if s.lib.schnorrsigSign32(ctx, &sig[0], &digest[0], &kp.B[0], &aux.B[0]) != 1 {
			secure.Zero(sig)
			err = signer.ErrSign
		}
		return
	})
}

// Verify checks a BIP-340 signature.
func (s *Signer) Verify(pub, digest, sig by) (valid bo) {
	signer.MustLen(pub, signer.PubKeyLen, "public key")
	signer.MustLen(digest, signer.DigestLen, "digest")
	signer.MustLen(sig, signer.SignatureLen, "signature")
	_ = s.run(func(ctx uintptr) (err er) {
		xo := make(by, XOnlyPubkeyLen)
		if s.lib.xonlyPubkeyParse(ctx, &xo[0], &pub[0]) != 1 {
			return
		}
		valid = s.lib.schnorrsigVerify(ctx, &sig[0], &digest[0], uintptr(len(digest)), &xo[0]) == 1
		return
	})
	return
}

// Shared writes the raw x-coordinate of sec*peer into out, peer being lifted
// to the point with even y.
func (s *Signer) Shared(sec, peer, out by) (err er) {
	signer.MustLen(sec, signer.SecKeyLen, "secret key")
	signer.MustLen(peer, signer.PubKeyLen, "peer public key")
	signer.MustLen(out, signer.SharedLen, "shared secret")
	hash := identityHash()
	return s.run(func(ctx uintptr) (err er) {
		if s.lib.ecSeckeyVerify(ctx, &sec[0]) != 1 {
			return signer.ErrInvalidSecretKey
		}
		compressed := make(by, compressedLen)
		compressed[0] = 2
		copy(compressed[1:], peer)
		pk := make(by, PubkeyLen)
		if s.lib.ecPubkeyParse(ctx, &pk[0], &compressed[0], compressedLen) != 1 {
			return signer.ErrInvalidPublicKey
		}
		if s.lib.ecdh(ctx, &out[0], &pk[0], &sec[0], hash, 0) != 1 {
			secure.Zero(out)
			return signer.ErrECDH
		}
		return
	})
}

func (s *Signer) ECDHEncrypt(sec, peer, iv, plain by) (ct by, err er) {
	signer.MustLen(iv, signer.IVLen, "iv")
	err = secure.With(s.alloc, signer.SharedLen, func(shared by) (err er) {
		if err = s.Shared(sec, peer, shared); err != nil {
			return
		}
		ct, err = nip04.Encrypt(shared, iv, plain)
		return
	})
	return
}

func (s *Signer) ECDHDecrypt(sec, peer, iv, ct by) (plain by, err er) {
	signer.MustLen(iv, signer.IVLen, "iv")
	err = secure.With(s.alloc, signer.SharedLen, func(shared by) (err er) {
		if err = s.Shared(sec, peer, shared); err != nil {
			return
		}
		plain, err = nip04.Decrypt(shared, iv, ct)
		return
	})
	return
}
