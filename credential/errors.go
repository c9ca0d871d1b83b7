package credential

import (
	"errors"
)

var (
	// ErrNotFound is returned when no secret is stored for a credential.
	ErrNotFound = errors.New("credential not found")
	// ErrInvalidArgument marks malformed caller input: hex keys, envelopes,
	// scopes and ids.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrFailed marks a failure inside the engine: key generation, encoding,
	// storage or a backend operation.
	ErrFailed = errors.New("operation failed")
)

// Failed collapses any error into ErrFailed, for layers that must not reveal
// which step of an operation went wrong. nil stays nil.
func Failed(err er) er {
	if err == nil {
		return nil
	}
	log.D.F("operation failed: %v", err)
	return ErrFailed
}

func invalid(what st, err er) er {
	return errorf.D("%w: %s: %w", ErrInvalidArgument, what, err)
}

func failed(step st, err er) er {
	return errorf.D("%w: %s: %w", ErrFailed, step, err)
}
