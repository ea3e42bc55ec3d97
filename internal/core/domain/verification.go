package domain

import "time"

// VerifiedProof is the verifier-side outcome for a received proof envelope
// that survived decoding and expiry checks.
type VerifiedProof struct {
	Share      ProofShare
	Valid      bool
	ReceivedAt time.Time
	TxHash     string
}
