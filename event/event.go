package event

import (
	"nsigner.lol/hex"
	"nsigner.lol/sha256"
)

// Kinds the engine itself produces.
const (
	TextNote               uint16 = 1
	EncryptedDirectMessage uint16 = 4
)

// T is a nostr event. ID, PubKey and Sig are held in binary form and only
// rendered as hex in the JSON and canonical encodings.
type T struct {
	// ID is the SHA256 hash of the canonical encoding of the event.
	ID by
	// PubKey is the x-only public key of the event creator.
	PubKey by
	// CreatedAt is the UNIX timestamp of the event according to the event
	// creator (never trust a timestamp!)
	CreatedAt int64
	// Kind is the nostr protocol code for the type of event.
	Kind uint16
	// Tags are a list of tags, which are a list of strings usually structured
	// as a 3 layer scheme indicating specific features of an event.
	Tags Tags
	// Content is an arbitrary string that can contain anything, but usually
	// conforming to a specification relating to the Kind and the Tags.
	Content by
	// Sig is the signature on the ID hash that validates as coming from the
	// Pubkey.
	Sig by
}

// Tags is the ordered tag list of an event. The order is part of the hashed
// canonical form.
type Tags [][]st

func New() (ev *T) { return &T{} }

func (ev *T) IDString() (s st)      { return hex.Enc(ev.ID) }
func (ev *T) PubKeyString() (s st)  { return hex.Enc(ev.PubKey) }
func (ev *T) SigString() (s st)     { return hex.Enc(ev.Sig) }
func (ev *T) ContentString() (s st) { return st(ev.Content) }

// Clone returns a deep copy of the event.
func (ev *T) Clone() (c *T) {
	c = &T{
		ID:        append(by(nil), ev.ID...),
		PubKey:    append(by(nil), ev.PubKey...),
		CreatedAt: ev.CreatedAt,
		Kind:      ev.Kind,
		Content:   append(by(nil), ev.Content...),
		Sig:       append(by(nil), ev.Sig...),
	}
	if ev.Tags != nil {
		c.Tags = make(Tags, len(ev.Tags))
		for i := range ev.Tags {
			c.Tags[i] = append([]st(nil), ev.Tags[i]...)
		}
	}
	return
}

func Hash(in by) (out by) {
	h := sha256.Sum256(in)
	return h[:]
}
