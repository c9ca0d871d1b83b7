package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"nsigner.lol/bech32encoding"
	"nsigner.lol/credential"
	"nsigner.lol/event"
	"nsigner.lol/hex"
	"nsigner.lol/nip04"
	"nsigner.lol/secure"
	"nsigner.lol/signer"
)

var errInput = errors.New("invalid input")

type commands struct {
	e      *credential.Engine
	stdin  io.Reader
	stdout io.Writer
}

// output is a credential as printed, with the npub form added.
type output struct {
	ID        string `json:"id"`
	Scope     string `json:"scope"`
	PublicKey string `json:"pubkey"`
	Npub      string `json:"npub"`
	CreatedAt string `json:"created_at,omitempty"`
}

func (cmd *commands) print(v any) error {
	enc := json.NewEncoder(cmd.stdout)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func (cmd *commands) printCredential(cred credential.Credential) (err error) {
	var npub []byte
	if npub, err = bech32encoding.HexToNpub([]byte(cred.PublicKey)); chk.E(err) {
		return
	}
	out := output{ID: cred.ID, Scope: cred.Scope, PublicKey: cred.PublicKey,
		Npub: string(npub)}
	if !cred.CreatedAt.IsZero() {
		out.CreatedAt = cred.CreatedAt.Format(time.RFC3339)
	}
	return cmd.print(out)
}

// input returns arg, or all of stdin with surrounding whitespace removed when
// arg is empty.
func (cmd *commands) input(arg string) (s string, err error) {
	if arg != "" {
		return arg, nil
	}
	var b []byte
	if b, err = io.ReadAll(cmd.stdin); err != nil {
		return
	}
	s = strings.TrimSpace(string(b))
	secure.Zero(b)
	if s == "" {
		err = errorf.D("%w: nothing on stdin", errInput)
	}
	return
}

// peerHex accepts a public key as hex or npub.
func peerHex(s string) (h string, err error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, bech32encoding.PubHRP+"1") {
		return s, nil
	}
	var b []byte
	if b, err = bech32encoding.NpubToHex([]byte(s)); err != nil {
		err = errorf.D("%w: peer: %w", errInput, err)
		return
	}
	return string(b), nil
}

func (cmd *commands) create(c context.Context, a *CreateCmd) (err error) {
	var cred credential.Credential
	if cred, err = cmd.e.Create(c, a.Scope); err != nil {
		return
	}
	return cmd.printCredential(cred)
}

// importKey takes the secret as hex or nsec. An nsec is converted to hex
// here, the engine only takes hex.
func (cmd *commands) importKey(c context.Context, a *ImportCmd) (err error) {
	var s string
	if s, err = cmd.input(a.Secret); err != nil {
		return
	}
	if strings.HasPrefix(s, bech32encoding.SecHRP+"1") {
		sec := secure.New(nil, signer.SecKeyLen)
		defer sec.Release()
		if err = bech32encoding.NsecToSecret([]byte(s), sec.B); err != nil {
			return errorf.D("%w: secret: %w", errInput, err)
		}
		s = hex.Enc(sec.B)
	}
	var cred credential.Credential
	if cred, err = cmd.e.CreateFromExisting(c, a.Scope, s); err != nil {
		return
	}
	return cmd.printCredential(cred)
}

func (cmd *commands) delete(c context.Context, a *Target) (err error) {
	return cmd.e.Delete(c, a.Scope, a.ID)
}

func (cmd *commands) pubkey(c context.Context, a *Target) (err error) {
	var pub string
	if pub, err = cmd.e.PublicKey(c, a.Scope, a.ID); err != nil {
		return
	}
	return cmd.printCredential(credential.Credential{ID: a.ID, Scope: a.Scope, PublicKey: pub})
}

func (cmd *commands) list(c context.Context, a *ListCmd) (err error) {
	var creds []credential.Credential
	if creds, err = cmd.e.List(c, a.Scope); err != nil {
		return
	}
	for _, cred := range creds {
		if err = cmd.printCredential(cred); err != nil {
			return
		}
	}
	return
}

func (cmd *commands) sign(c context.Context, a *SignCmd) (err error) {
	var b []byte
	if a.File != "" {
		b, err = os.ReadFile(a.File)
	} else {
		b, err = io.ReadAll(cmd.stdin)
	}
	if err != nil {
		return
	}
	ev := event.New()
	if err = ev.UnmarshalJSON(bytes.TrimSpace(b)); err != nil {
		return errorf.D("%w: event: %w", errInput, err)
	}
	var signed *event.T
	if signed, err = cmd.e.SignEvent(c, a.Scope, a.ID, ev); err != nil {
		return
	}
	_, err = cmd.stdout.Write(append(signed.Serialize(), '\n'))
	return
}

func (cmd *commands) encrypt(c context.Context, a *EncryptCmd) (err error) {
	var peer, msg string
	if peer, err = peerHex(a.Peer); err != nil {
		return
	}
	if msg, err = cmd.input(a.Message); err != nil {
		return
	}
	var env nip04.Envelope
	if env, err = cmd.e.EncryptNote(c, a.Scope, a.ID, peer, msg); err != nil {
		return
	}
	_, err = io.WriteString(cmd.stdout, env.String()+"\n")
	return
}

func (cmd *commands) decrypt(c context.Context, a *DecryptCmd) (err error) {
	var peer, payload, plain string
	if peer, err = peerHex(a.Peer); err != nil {
		return
	}
	if payload, err = cmd.input(a.Payload); err != nil {
		return
	}
	if plain, err = cmd.e.DecryptNote(c, a.Scope, a.ID, peer, payload); err != nil {
		return
	}
	_, err = io.WriteString(cmd.stdout, plain+"\n")
	return
}
