// Package noscrypt binds the noscrypt library at run time and implements
// signer.I on it.
//
// noscrypt keeps its context in caller owned memory: the library reports the
// structure size, the binding allocates it as a secret buffer, initialises it
// with 32 bytes of entropy and wipes it when the operation is done.
//
// NIP-04 is not offered through this backend. ECDHEncrypt and ECDHDecrypt
// always return signer.ErrNotImplemented.
package noscrypt
