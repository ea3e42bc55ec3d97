package domain

import "errors"

var (
	// ErrUnknownField is returned when a disclosure mask selects a field the credential does not have
	ErrUnknownField = errors.New("disclosure mask selects a field not present in the credential")
	// ErrMissingCircuit is returned when a proof request carries no circuit id
	ErrMissingCircuit = errors.New("circuit id is empty")
	// ErrCredentialNotUsable is returned when proving from a revoked, suspended or expired credential
	ErrCredentialNotUsable = errors.New("credential is not in a usable status")
	// ErrProofInProgress is returned when a second execute is issued while one is outstanding
	ErrProofInProgress = errors.New("a proof generation is already in progress")
	// ErrKeyUnavailable is returned when signing is attempted with no key pair loaded
	ErrKeyUnavailable = errors.New("no key pair loaded")
	// ErrWrongEnvelopeKind is returned by the verifier when the received envelope is not a proof
	ErrWrongEnvelopeKind = errors.New("envelope does not carry a proof")
	// ErrCredentialNotFound is returned when a credential id is unknown to the local store
	ErrCredentialNotFound = errors.New("credential not found")
	// ErrSessionNotFound is returned when a proof session id is unknown or the session expired
	ErrSessionNotFound = errors.New("proof session not found")
	// ErrProofNotReady is returned when sharing is attempted before the session reached Succeeded
	ErrProofNotReady = errors.New("proof session has no successful result to share")
)
