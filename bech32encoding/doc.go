// Package bech32encoding implements the NIP-19 key entities: nsec for secret
// keys and npub for x-only public keys.
package bech32encoding
