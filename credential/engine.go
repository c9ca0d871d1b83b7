// Package credential is the engine the rest of a host system calls to issue
// and operate per-user Nostr identities.
//
// Secret keys live only in the external secret store, encoded by the
// configured key encoder. Each operation fetches the encoded key, decodes it
// into a buffer sized exactly for a secret key, uses it and wipes every copy
// before returning, on success and failure alike. Nothing secret is cached
// between calls, so an Engine is safe for concurrent use as long as its
// backend, encoder and store are.
package credential

import (
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"nsigner.lol/encoder"
	"nsigner.lol/event"
	"nsigner.lol/hex"
	"nsigner.lol/keys"
	"nsigner.lol/nip04"
	"nsigner.lol/secure"
	"nsigner.lol/signer"
	"nsigner.lol/store"
)

// Credential is the public metadata of a stored identity.
type Credential struct {
	ID        st        `json:"id"`
	Scope     st        `json:"scope"`
	PublicKey st        `json:"pubkey"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Engine coordinates a crypto backend, a key encoder and a secret store.
type Engine struct {
	signer  signer.I
	encoder encoder.I
	store   store.I
	alloc   secure.Allocator
	now     func() time.Time
}

// Params are the collaborators of an Engine. Alloc is optional.
type Params struct {
	Signer  signer.I
	Encoder encoder.I
	Store   store.I
	Alloc   secure.Allocator
}

// New creates an Engine. A missing backend, encoder or store is a programming
// error and panics.
func New(p Params) (e *Engine) {
	if p.Signer == nil || p.Encoder == nil || p.Store == nil {
		panic("credential: signer, encoder and store are required")
	}
	if p.Alloc == nil {
		p.Alloc = secure.Heap{}
	}
	e = &Engine{
		signer:  p.Signer,
		encoder: p.Encoder,
		store:   p.Store,
		alloc:   p.Alloc,
		now:     time.Now,
	}
	log.D.F("credential engine on %s backend, %s key encoding",
		p.Signer.Name(), p.Encoder.Name())
	return
}

// Backend returns the crypto backend, for verifying what the engine signed.
func (e *Engine) Backend() signer.I { return e.signer }

// sourceReader draws uuids from the backend's random source.
type sourceReader struct{ s signer.I }

func (r sourceReader) Read(b by) (n no, err er) {
	r.s.Random(b)
	return len(b), nil
}

var _ io.Reader = sourceReader{}

func (e *Engine) newID() (id st, err er) {
	var u uuid.UUID
	if u, err = uuid.NewRandomFromReader(sourceReader{e.signer}); err != nil {
		return
	}
	return u.String(), nil
}

func (e *Engine) secretBuffer() *secure.Buffer {
	sl, _ := e.signer.KeySizes()
	return secure.New(e.alloc, sl)
}

func (e *Engine) pubBuffer() by {
	_, pl := e.signer.KeySizes()
	return make(by, pl)
}

// Create generates a new identity in scope and stores its secret key.
func (e *Engine) Create(c cx, scope st) (cred Credential, err er) {
	if err = store.CheckKey(scope, "-"); err != nil {
		err = invalid("scope", err)
		return
	}
	if err = c.Err(); err != nil {
		return
	}
	sec := e.secretBuffer()
	defer sec.Release()
	pub := e.pubBuffer()
	if err = e.signer.Generate(sec.B, pub); chk.E(err) {
		err = failed("generate", err)
		return
	}
	return e.save(c, scope, sec.B, pub)
}

// CreateFromExisting imports a hex encoded secret key as a new identity in
// scope. Malformed hex is an ErrInvalidArgument; a well formed key that is
// not a valid secret key fails public key recovery.
func (e *Engine) CreateFromExisting(c cx, scope, secHex st) (cred Credential, err er) {
	if err = store.CheckKey(scope, "-"); err != nil {
		err = invalid("scope", err)
		return
	}
	if err = c.Err(); err != nil {
		return
	}
	sec := e.secretBuffer()
	defer sec.Release()
	if err = keys.ParseSecretHex(secHex, sec.B); err != nil {
		if errors.Is(err, keys.ErrSecretHex) {
			err = invalid("secret key", err)
		} else {
			err = failed("recover public key", err)
		}
		return
	}
	pub := e.pubBuffer()
	if err = e.signer.RecoverPub(sec.B, pub); chk.D(err) {
		err = failed("recover public key", err)
		return
	}
	return e.save(c, scope, sec.B, pub)
}

// save encodes sec and stores it under a fresh id.
func (e *Engine) save(c cx, scope st, sec, pub by) (cred Credential, err er) {
	var id st
	if id, err = e.newID(); chk.E(err) {
		err = failed("new id", err)
		return
	}
	var enc by
	if enc, err = e.encoder.Encode(sec); chk.E(err) {
		err = failed("encode", err)
		return
	}
	defer secure.Zero(enc)
	if err = c.Err(); err != nil {
		return
	}
	if err = e.store.Set(c, scope, id, enc); chk.E(err) {
		err = failed("store", err)
		return
	}
	cred = Credential{
		ID:        id,
		Scope:     scope,
		PublicKey: hex.Enc(pub),
		CreatedAt: e.now().UTC(),
	}
	log.I.F("stored credential %s/%s pubkey %s", scope, id, cred.PublicKey)
	return
}

// Delete removes a stored identity. Deleting one that does not exist
// succeeds.
func (e *Engine) Delete(c cx, scope, id st) (err er) {
	if err = store.CheckKey(scope, id); err != nil {
		err = invalid("credential", err)
		return
	}
	if err = c.Err(); err != nil {
		return
	}
	if err = e.store.Delete(c, scope, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		err = failed("delete", err)
		return
	}
	log.I.F("deleted credential %s/%s", scope, id)
	return
}

// withSecret fetches and decodes the secret key of a credential and passes it
// to fn. The encoded copy, the decode scratch and the key are all wiped
// however fn returns.
func (e *Engine) withSecret(c cx, scope, id st, fn func(sec by) er) (err er) {
	if err = store.CheckKey(scope, id); err != nil {
		return invalid("credential", err)
	}
	if err = c.Err(); err != nil {
		return
	}
	var enc by
	if enc, err = e.store.Get(c, scope, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errorf.D("%w: %s/%s", ErrNotFound, scope, id)
		}
		return failed("fetch", err)
	}
	defer secure.Zero(enc)
	sec := e.secretBuffer()
	defer sec.Release()
	if err = func() (err er) {
		scratch := secure.New(e.alloc, e.encoder.BufferSize(enc))
		defer scratch.Release()
		var n no
		if n, err = e.encoder.Decode(enc, scratch.B); chk.E(err) {
			return failed("decode", err)
		}
		if n != len(sec.B) {
			return failed("decode", errorf.E("decoded secret is %d bytes, want %d",
				n, len(sec.B)))
		}
		copy(sec.B, scratch.B[:n])
		return
	}(); err != nil {
		return
	}
	if err = c.Err(); err != nil {
		return
	}
	return fn(sec.B)
}

// PublicKey recovers the hex public key of a stored credential.
func (e *Engine) PublicKey(c cx, scope, id st) (pubHex st, err er) {
	pub := e.pubBuffer()
	if err = e.withSecret(c, scope, id, func(sec by) (err er) {
		if err = e.signer.RecoverPub(sec, pub); chk.E(err) {
			return failed("recover public key", err)
		}
		return
	}); err != nil {
		return
	}
	return hex.Enc(pub), nil
}

// List returns every credential stored in scope with its public key. It needs
// a store that can enumerate its keys.
func (e *Engine) List(c cx, scope st) (creds []Credential, err er) {
	l, ok := e.store.(store.Lister)
	if !ok {
		err = failed("list", errors.New("store cannot list credentials"))
		return
	}
	var ids []st
	if ids, err = l.List(c, scope); err != nil {
		if errors.Is(err, store.ErrInvalidKey) {
			err = invalid("scope", err)
			return
		}
		err = failed("list", err)
		return
	}
	for _, id := range ids {
		var pub st
		if pub, err = e.PublicKey(c, scope, id); err != nil {
			return
		}
		creds = append(creds, Credential{ID: id, Scope: scope, PublicKey: pub})
	}
	return
}

// SignEvent signs a copy of ev with the credential's key. The copy gets the
// credential's public key, the id of its canonical form and a BIP-340
// signature; CreatedAt, Kind, Tags and Content are signed as given. ev itself
// is not modified.
func (e *Engine) SignEvent(c cx, scope, id st, ev *event.T) (signed *event.T, err er) {
	if ev == nil {
		panic("credential: nil event")
	}
	signed = ev.Clone()
	if err = e.withSecret(c, scope, id, func(sec by) (err er) {
		if err = signed.Sign(e.signer, sec); err != nil {
			return failed("sign", err)
		}
		return
	}); err != nil {
		signed = nil
		return
	}
	log.D.F("signed event %s kind %d for %s/%s", signed.IDString(), signed.Kind, scope, id)
	return
}

// EncryptNote encrypts plain for the holder of peerHex under NIP-04 with a
// fresh IV. env.String() is the wire form.
func (e *Engine) EncryptNote(c cx, scope, id, peerHex, plain st) (env nip04.Envelope, err er) {
	var peer by
	if peer, err = keys.ParsePublicHex(peerHex); err != nil {
		err = invalid("peer public key", err)
		return
	}
	iv := make(by, nip04.IVLen)
	e.signer.Random(iv)
	msg := by(plain)
	defer secure.Zero(msg)
	var ct by
	if err = e.withSecret(c, scope, id, func(sec by) (err er) {
		if ct, err = e.signer.ECDHEncrypt(sec, peer, iv, msg); err != nil {
			return failed("encrypt", err)
		}
		return
	}); err != nil {
		return
	}
	env = nip04.Seal(ct, iv)
	return
}

// DecryptNote decrypts a NIP-04 payload ("ciphertext?iv=IV") from the holder
// of peerHex. The payload is parsed and checked before the secret key is
// fetched; a malformed one is an ErrInvalidArgument. Trailing zero bytes are
// trimmed from the plaintext.
func (e *Engine) DecryptNote(c cx, scope, id, peerHex, payload st) (plain st, err er) {
	var env nip04.Envelope
	if env, err = nip04.ParseEnvelope(payload); err != nil {
		err = invalid("payload", err)
		return
	}
	var ct, iv by
	if ct, iv, err = env.Decode(); err != nil {
		err = invalid("payload", err)
		return
	}
	var peer by
	if peer, err = keys.ParsePublicHex(peerHex); err != nil {
		err = invalid("peer public key", err)
		return
	}
	if err = e.withSecret(c, scope, id, func(sec by) (err er) {
		var padded by
		if padded, err = e.signer.ECDHDecrypt(sec, peer, iv, ct); err != nil {
			return failed("decrypt", err)
		}
		plain = st(nip04.Trim(padded))
		secure.Zero(padded)
		return
	}); err != nil {
		return
	}
	return
}
