// Package nsigner issues and operates per-user Nostr identities: key
// generation and import, BIP-340 event signing and NIP-04 encrypted notes,
// with secret keys kept in an external secret store and wiped from memory
// after every operation.
package nsigner

const (
	Version = "v0.1.0"
	URL     = "https://nsigner.lol"
)
