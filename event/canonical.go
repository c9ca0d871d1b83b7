package event

import (
	"strconv"

	"nsigner.lol/hex"
	"nsigner.lol/text"
)

// Marshal appends the tags as a JSON array of arrays of strings, in order.
func (t Tags) Marshal(dst by) (b by) {
	return text.AppendBracket(dst, func(b by) by {
		for i, tg := range t {
			if i > 0 {
				b = append(b, ',')
			}
			b = text.AppendBracket(b, func(b by) by {
				for j, s := range tg {
					if j > 0 {
						b = append(b, ',')
					}
					b = text.EscapedQuote(b, by(s))
				}
				return b
			})
		}
		return b
	})
}

// ToCanonical appends the canonical encoding used to derive the event ID:
//
//	[0,"<pubkey hex>",<created_at>,<kind>,<tags>,"<content>"]
//
// with no whitespace and NIP-01 string escaping. The public key is always
// written in lower case.
func (ev *T) ToCanonical(dst by) (b by) {
	b = dst
	b = append(b, "[0,\""...)
	b = hex.EncAppend(b, ev.PubKey)
	b = append(b, "\","...)
	b = strconv.AppendInt(b, ev.CreatedAt, 10)
	b = append(b, ',')
	b = strconv.AppendUint(b, uint64(ev.Kind), 10)
	b = append(b, ',')
	b = ev.Tags.Marshal(b)
	b = append(b, ',')
	b = text.EscapedQuote(b, ev.Content)
	b = append(b, ']')
	return
}

// GetIDBytes returns the raw SHA256 hash of the canonical form of an event.T.
func (ev *T) GetIDBytes() by { return Hash(ev.ToCanonical(nil)) }

// CheckID reports whether the stored ID matches the event's content.
func (ev *T) CheckID() bo { return len(ev.ID) == 32 && equals(ev.ID, ev.GetIDBytes()) }
