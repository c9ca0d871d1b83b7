package encoder

import (
	"bytes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/binary"
	"errors"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"nsigner.lol/random"
	"nsigner.lol/secure"
	"nsigner.lol/units"
)

// Params are the argon2id cost parameters of a sealed secret.
type Params struct {
	Time     uint32
	MemoryKB uint32
	Threads  uint8
}

var DefaultParams = Params{Time: 2, MemoryKB: 64 * units.MiB / units.KiB, Threads: 1}

const (
	sealedPrefix  = "nsealed1:"
	sealedVersion = 1
	saltLen       = 16
	// version, time, memory, threads, salt, nonce
	headerLen = 1 + 4 + 4 + 1 + saltLen + chacha20poly1305.NonceSizeX
)

var ErrAuth = errors.New("sealed secret failed authentication")

// Sealed encrypts secrets under a passphrase with an argon2id derived
// XChaCha20-Poly1305 key. The cost parameters travel with each sealed value,
// so they can be raised without breaking what is already stored.
type Sealed struct {
	passphrase []byte
	rnd        random.Source
	params     Params
}

// NewSealed copies the passphrase; Close wipes the copy.
func NewSealed(passphrase []byte, rnd random.Source, p Params) (s *Sealed, err error) {
	if len(passphrase) == 0 {
		err = errors.New("sealed key encoding needs a passphrase")
		return
	}
	if rnd == nil {
		rnd = random.System{}
	}
	s = &Sealed{passphrase: bytes.Clone(passphrase), rnd: rnd, params: p}
	return
}

func (s *Sealed) Name() string { return SealedName }

// Close wipes the passphrase.
func (s *Sealed) Close() error {
	secure.Zero(s.passphrase)
	return nil
}

func (s *Sealed) key(salt []byte, p Params) []byte {
	return argon2.IDKey(s.passphrase, salt, p.Time, p.MemoryKB, p.Threads,
		chacha20poly1305.KeySize)
}

func (s *Sealed) Encode(sec []byte) (enc []byte, err error) {
	raw := make([]byte, headerLen, headerLen+len(sec)+chacha20poly1305.Overhead)
	raw[0] = sealedVersion
	binary.BigEndian.PutUint32(raw[1:], s.params.Time)
	binary.BigEndian.PutUint32(raw[5:], s.params.MemoryKB)
	raw[9] = s.params.Threads
	salt := raw[10 : 10+saltLen]
	nonce := raw[10+saltLen : headerLen]
	s.rnd.Fill(salt)
	s.rnd.Fill(nonce)
	key := s.key(salt, s.params)
	defer secure.Zero(key)
	var aead cipher.AEAD
	if aead, err = chacha20poly1305.NewX(key); err != nil {
		return
	}
	raw = aead.Seal(raw, nonce, sec, raw[:10])
	enc = make([]byte, len(sealedPrefix)+base64.RawURLEncoding.EncodedLen(len(raw)))
	copy(enc, sealedPrefix)
	base64.RawURLEncoding.Encode(enc[len(sealedPrefix):], raw)
	return
}

func (s *Sealed) BufferSize(enc []byte) (n int) {
	if !bytes.HasPrefix(enc, []byte(sealedPrefix)) {
		return 0
	}
	n = base64.RawURLEncoding.DecodedLen(len(enc)-len(sealedPrefix)) -
		headerLen - chacha20poly1305.Overhead
	return max(n, 0)
}

func (s *Sealed) Decode(enc, out []byte) (n int, err error) {
	if !bytes.HasPrefix(enc, []byte(sealedPrefix)) {
		return 0, ErrDecode
	}
	var raw []byte
	if raw, err = base64.RawURLEncoding.DecodeString(string(enc[len(sealedPrefix):])); err != nil {
		return 0, errors.Join(ErrDecode, err)
	}
	if len(raw) < headerLen+chacha20poly1305.Overhead || raw[0] != sealedVersion {
		return 0, ErrDecode
	}
	ptLen := len(raw) - headerLen - chacha20poly1305.Overhead
	if len(out) < ptLen {
		return 0, ErrBuffer
	}
	p := Params{
		Time:     binary.BigEndian.Uint32(raw[1:]),
		MemoryKB: binary.BigEndian.Uint32(raw[5:]),
		Threads:  raw[9],
	}
	if p.Time == 0 || p.Threads == 0 {
		return 0, ErrDecode
	}
	key := s.key(raw[10:10+saltLen], p)
	defer secure.Zero(key)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return
	}
	if _, err = aead.Open(out[:0], raw[10+saltLen:headerLen], raw[headerLen:], raw[:10]); err != nil {
		secure.Zero(out)
		return 0, ErrAuth
	}
	return ptLen, nil
}
