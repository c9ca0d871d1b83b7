package event

import (
	"nsigner.lol/signer"
)

// Sign signs the event with the secret key sec on the backend s.
//
// The public key is recovered from sec and replaces whatever PubKey the event
// had, then the ID is computed and signed. CreatedAt, Kind, Tags and Content
// are left exactly as the caller set them. On failure ID and Sig are cleared.
func (ev *T) Sign(s signer.I, sec by) (err er) {
	_, pl := s.KeySizes()
	pub := make(by, pl)
	if err = s.RecoverPub(sec, pub); chk.D(err) {
		return
	}
	ev.PubKey = pub
	ev.ID = ev.GetIDBytes()
	sig := make(by, s.SignatureSize())
	if err = s.Sign(sec, ev.ID, sig); chk.E(err) {
		ev.ID, ev.Sig = nil, nil
		return
	}
	ev.Sig = sig
	return
}

// Verify checks that the event ID matches its content and that Sig is a valid
// signature by PubKey over it. A malformed field is an error; a well formed
// event with a bad ID or signature is simply not valid.
func (ev *T) Verify(s signer.I) (valid bo, err er) {
	if len(ev.PubKey) != signer.PubKeyLen {
		err = errorf.D("event pubkey is %d bytes, want %d", len(ev.PubKey), signer.PubKeyLen)
		return
	}
	if len(ev.Sig) != signer.SignatureLen {
		err = errorf.D("event sig is %d bytes, want %d", len(ev.Sig), signer.SignatureLen)
		return
	}
	if !ev.CheckID() {
		log.D.F("event id %0x does not match its content", ev.ID)
		return
	}
	valid = s.Verify(ev.PubKey, ev.ID, ev.Sig)
	return
}
