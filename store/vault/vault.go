// Package vault is a secret store on a HashiCorp Vault KV version 2 mount.
//
// Each secret is one KV entry at <prefix>/<scope>/<id> holding the encoded key
// base64 encoded under the "secret" field. Delete removes the metadata and
// with it every version of the entry.
package vault

import (
	"context"
	"encoding/base64"
	"errors"
	"slices"
	"strings"

	"github.com/hashicorp/vault/api"

	"nsigner.lol/lol"
	"nsigner.lol/store"
)

var (
	log, chk, errorf = lol.Main.Log, lol.Main.Check, lol.Main.Errorf
)

// Field is the KV data field the encoded secret is kept in.
const Field = "secret"

// KV is the part of *api.KVv2 the store uses.
type KV interface {
	Get(c context.Context, path string) (*api.KVSecret, error)
	Put(c context.Context, path string, data map[string]any,
		opts ...api.KVOption) (*api.KVSecret, error)
	DeleteMetadata(c context.Context, path string) error
}

// Lister lists the keys directly under a path, as Vault's LIST does.
type Lister func(c context.Context, path string) (keys []string, err error)

// T is a Vault KV v2 secret store.
type T struct {
	kv     KV
	list   Lister
	prefix string
}

var (
	_ store.I      = (*T)(nil)
	_ store.Lister = (*T)(nil)
)

// Params configure a T.
type Params struct {
	// Addr is the Vault server address, VAULT_ADDR when empty.
	Addr string
	// Token authenticates the client, VAULT_TOKEN when empty.
	Token string
	// Mount is the KV v2 mount path, "secret" when empty.
	Mount string
	// Prefix is prepended to every path under the mount.
	Prefix string
}

// New connects a store to a Vault server.
func New(p Params) (t *T, err error) {
	cfg := api.DefaultConfig()
	if cfg.Error != nil {
		err = errorf.E("vault: %w", cfg.Error)
		return
	}
	if p.Addr != "" {
		cfg.Address = p.Addr
	}
	var client *api.Client
	if client, err = api.NewClient(cfg); chk.E(err) {
		return
	}
	if p.Token != "" {
		client.SetToken(p.Token)
	}
	if p.Mount == "" {
		p.Mount = "secret"
	}
	mount := strings.Trim(p.Mount, "/")
	log.I.F("using vault kv v2 mount %s at %s", mount, client.Address())
	t = NewWithKV(client.KVv2(mount), func(c context.Context, path string) (keys []string, err error) {
		var s *api.Secret
		if s, err = client.Logical().ListWithContext(c, mount+"/metadata/"+path); err != nil {
			return
		}
		if s == nil || s.Data == nil {
			return
		}
		raw, _ := s.Data["keys"].([]any)
		for _, k := range raw {
			if ks, ok := k.(string); ok {
				keys = append(keys, ks)
			}
		}
		return
	}, p.Prefix)
	return
}

// NewWithKV builds a store on an existing KV client. list may be nil, in which
// case List fails.
func NewWithKV(kv KV, list Lister, prefix string) *T {
	return &T{kv: kv, list: list, prefix: strings.Trim(prefix, "/")}
}

func (t *T) Get(c context.Context, scope, id string) (secret []byte, err error) {
	if err = store.CheckKey(scope, id); err != nil {
		return
	}
	path := store.Path(t.prefix, scope, id)
	var s *api.KVSecret
	if s, err = t.kv.Get(c, path); err != nil {
		if errors.Is(err, api.ErrSecretNotFound) {
			err = store.ErrNotFound
			return
		}
		err = errorf.E("vault: get %s: %w", path, err)
		return
	}
	if s == nil || s.Data == nil {
		err = store.ErrNotFound
		return
	}
	enc, ok := s.Data[Field].(string)
	if !ok {
		err = errorf.E("vault: %s has no %q field", path, Field)
		return
	}
	if secret, err = base64.StdEncoding.DecodeString(enc); err != nil {
		err = errorf.E("vault: %s: %w", path, err)
	}
	return
}

func (t *T) Set(c context.Context, scope, id string, secret []byte) (err error) {
	if err = store.CheckKey(scope, id); err != nil {
		return
	}
	path := store.Path(t.prefix, scope, id)
	if _, err = t.kv.Put(c, path,
		map[string]any{Field: base64.StdEncoding.EncodeToString(secret)}); err != nil {
		err = errorf.E("vault: put %s: %w", path, err)
	}
	return
}

func (t *T) Delete(c context.Context, scope, id string) (err error) {
	if err = store.CheckKey(scope, id); err != nil {
		return
	}
	path := store.Path(t.prefix, scope, id)
	// deleting metadata that does not exist succeeds
	if err = t.kv.DeleteMetadata(c, path); err != nil {
		err = errorf.E("vault: delete %s: %w", path, err)
	}
	return
}

func (t *T) List(c context.Context, scope string) (ids []string, err error) {
	if err = store.CheckKey(scope, "-"); err != nil {
		return
	}
	if t.list == nil {
		err = errorf.E("vault: listing is not configured")
		return
	}
	var keys []string
	if keys, err = t.list(c, store.Path(t.prefix, scope, "")); err != nil {
		err = errorf.E("vault: list %s: %w", scope, err)
		return
	}
	for _, k := range keys {
		// sub folders end in a slash
		if !strings.HasSuffix(k, "/") {
			ids = append(ids, k)
		}
	}
	slices.Sort(ids)
	return
}

// Close has nothing to release, the Vault client holds no secrets of the
// store's.
func (t *T) Close() (err error) { return }
