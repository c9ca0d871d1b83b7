// Package app builds a credential engine from a configuration: it picks the
// random source, crypto backend, key encoder and secret store, and is the only
// place a platform default for any of them is chosen.
package app

import (
	"errors"
	"io"

	"nsigner.lol/credential"
	"nsigner.lol/config"
	"nsigner.lol/encoder"
	"nsigner.lol/hex"
	"nsigner.lol/lol"
	"nsigner.lol/noscrypt"
	"nsigner.lol/p256k"
	"nsigner.lol/p256k/btcec"
	"nsigner.lol/random"
	"nsigner.lol/ratel"
	"nsigner.lol/secure"
	"nsigner.lol/signer"
	"nsigner.lol/store"
	"nsigner.lol/store/awssm"
	"nsigner.lol/store/vault"
)

var (
	ErrUnknownBackend = errors.New("unknown crypto backend")
	ErrUnknownRandom  = errors.New("unknown random source")
	ErrUnknownStore   = errors.New("unknown secret store")
)

// T is a running engine and everything it holds open.
type T struct {
	Config *config.C
	Engine *credential.Engine
	Signer signer.I
	Store  store.I
	// closers are closed in reverse order.
	closers []io.Closer
}

// New builds the engine described by cfg and applies its log level.
func New(c cx, cfg *config.C) (a *T, err er) {
	lol.SetLogLevel(cfg.LogLevel)
	a = &T{Config: cfg}
	defer func() {
		if err != nil {
			chk.E(a.Close())
			a = nil
		}
	}()
	rnd := random.ByName(cfg.Random)
	if rnd == nil {
		err = errorf.E("%w: %q", ErrUnknownRandom, cfg.Random)
		return
	}
	if a.Signer, err = NewSigner(cfg.Backend, cfg.LibPath, rnd, nil); err != nil {
		return
	}
	a.closers = append(a.closers, a.Signer)
	var enc encoder.I
	pass := by(cfg.SealPassphrase)
	enc, err = encoder.New(cfg.KeyEncoding, pass, rnd)
	secure.Zero(pass)
	if err != nil {
		err = errorf.E("key encoding %q: %w", cfg.KeyEncoding, err)
		return
	}
	if cl, ok := enc.(io.Closer); ok {
		a.closers = append(a.closers, cl)
	}
	if a.Store, err = NewStore(c, cfg); err != nil {
		return
	}
	a.closers = append(a.closers, a.Store)
	a.Engine = credential.New(credential.Params{
		Signer:  a.Signer,
		Encoder: enc,
		Store:   a.Store,
	})
	log.D.F("engine ready: backend %s, random %s, encoding %s, store %s",
		a.Signer.Name(), cfg.Random, enc.Name(), cfg.Store)
	return
}

// NewSigner loads the named crypto backend. libPath only matters to the native
// backends; when empty the usual install locations are searched.
func NewSigner(name, libPath st, rnd random.Source, alloc secure.Allocator) (s signer.I, err er) {
	switch name {
	case btcec.Name, "":
		s = btcec.New(rnd, alloc)
	case p256k.Name:
		var ps *p256k.Signer
		if ps, err = p256k.New(libPath, rnd, alloc); err == nil {
			s = ps
		}
	case noscrypt.Name:
		var ns *noscrypt.Signer
		if ns, err = noscrypt.New(libPath, rnd, alloc); err == nil {
			s = ns
		}
	default:
		err = errorf.E("%w: %q", ErrUnknownBackend, name)
	}
	return
}

// NewStore opens the secret store cfg names.
func NewStore(c cx, cfg *config.C) (s store.I, err er) {
	switch cfg.Store {
	case "memory":
		log.W.Ln("using the in memory secret store, nothing will be kept after exit")
		s = store.NewMemory()
	case "ratel", "":
		p := ratel.BackendParams{LogLevel: lol.GetLogLevel(cfg.DBLogLevel)}
		if cfg.DBEncryptionKey != "" {
			if p.EncryptionKey, err = hex.Dec(cfg.DBEncryptionKey); err != nil {
				err = errorf.E("DB_ENCRYPTION_KEY: %w", err)
				return
			}
			defer secure.Zero(p.EncryptionKey)
		}
		r := ratel.New(p)
		if err = r.Init(cfg.DataDir); err != nil {
			chk.E(r.Close())
			return
		}
		s = r
	case "vault":
		var v *vault.T
		if v, err = vault.New(vault.Params{
			Addr:   cfg.VaultAddr,
			Token:  cfg.VaultToken,
			Mount:  cfg.VaultMount,
			Prefix: cfg.VaultPrefix,
		}); err == nil {
			s = v
		}
	case "awssm":
		var as *awssm.T
		if as, err = awssm.New(c, cfg.AWSRegion, cfg.AWSSecretPrefix); err == nil {
			s = as
		}
	default:
		err = errorf.E("%w: %q", ErrUnknownStore, cfg.Store)
	}
	return
}

// Close releases the store, key encoder and backend, in that order.
func (a *T) Close() (err er) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if e := a.closers[i].Close(); chk.E(e) && err == nil {
			err = e
		}
	}
	a.closers = nil
	return
}
