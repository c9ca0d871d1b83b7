package event

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/pkg/errors"

	"nsigner.lol/hex"
	"nsigner.lol/text"
)

// J is the NIP-01 JSON form of an event with every binary field as hex.
type J struct {
	ID        st     `json:"id"`
	PubKey    st     `json:"pubkey"`
	CreatedAt int64  `json:"created_at"`
	Kind      int64  `json:"kind"`
	Tags      [][]st `json:"tags"`
	Content   st     `json:"content"`
	Sig       st     `json:"sig"`
}

func (ev *T) ToEventJ() (j *J) {
	j = &J{
		ID:        ev.IDString(),
		PubKey:    ev.PubKeyString(),
		CreatedAt: ev.CreatedAt,
		Kind:      int64(ev.Kind),
		Tags:      ev.Tags,
		Content:   ev.ContentString(),
		Sig:       ev.SigString(),
	}
	if j.Tags == nil {
		j.Tags = [][]st{}
	}
	return
}

func decodeHex(name, s st, size no) (b by, err er) {
	if s == "" {
		return
	}
	if len(s) != size*2 {
		err = errorf.D("%s must be %d hex characters, got %d", name, size*2, len(s))
		return
	}
	b = make(by, size)
	if err = hex.DecInto(b, by(s)); err != nil {
		err = errors.Wrap(err, name)
	}
	return
}

// ToEvent converts the JSON form into an event. Empty id, pubkey and sig are
// allowed so an unsigned event can be handed to Sign; hex of either case is
// accepted.
func (j *J) ToEvent() (ev *T, err er) {
	if j.Kind < 0 || j.Kind > math.MaxUint16 {
		err = errorf.D("kind %d out of range", j.Kind)
		return
	}
	e := &T{
		CreatedAt: j.CreatedAt,
		Kind:      uint16(j.Kind),
		Tags:      j.Tags,
		Content:   by(j.Content),
	}
	if e.ID, err = decodeHex("id", j.ID, 32); err != nil {
		return
	}
	if e.PubKey, err = decodeHex("pubkey", j.PubKey, 32); err != nil {
		return
	}
	if e.Sig, err = decodeHex("sig", j.Sig, 64); err != nil {
		return
	}
	ev = e
	return
}

// Marshal appends the NIP-01 JSON object of the event, fields in the order
// id, pubkey, created_at, kind, tags, content, sig.
func (ev *T) Marshal(dst by) (b by) {
	b = append(dst, '{')
	b = text.JSONKey(b, by("id"))
	b = text.AppendHexFromBinary(b, ev.ID, true)
	b = append(b, ',')
	b = text.JSONKey(b, by("pubkey"))
	b = text.AppendHexFromBinary(b, ev.PubKey, true)
	b = append(b, ',')
	b = text.JSONKey(b, by("created_at"))
	b = strconv.AppendInt(b, ev.CreatedAt, 10)
	b = append(b, ',')
	b = text.JSONKey(b, by("kind"))
	b = strconv.AppendUint(b, uint64(ev.Kind), 10)
	b = append(b, ',')
	b = text.JSONKey(b, by("tags"))
	b = ev.Tags.Marshal(b)
	b = append(b, ',')
	b = text.JSONKey(b, by("content"))
	b = text.EscapedQuote(b, ev.Content)
	b = append(b, ',')
	b = text.JSONKey(b, by("sig"))
	b = text.AppendHexFromBinary(b, ev.Sig, true)
	b = append(b, '}')
	return
}

func (ev *T) MarshalJSON() (b []byte, err error) { return ev.Marshal(nil), nil }

func (ev *T) UnmarshalJSON(b []byte) (err error) {
	var j J
	if err = json.Unmarshal(b, &j); err != nil {
		err = errors.Wrap(err, "event json")
		return
	}
	var e *T
	if e, err = j.ToEvent(); err != nil {
		return
	}
	*ev = *e
	return
}

// Serialize is the JSON form of the event.
func (ev *T) Serialize() (b by) { return ev.Marshal(nil) }
