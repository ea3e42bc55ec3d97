// Package envelope implements the time-boxed transport wrapper used to move
// credentials, proofs and DIDs through ephemeral channels such as QR codes.
package envelope

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

// Kind tags the payload carried by an envelope
type Kind string

// Envelope kinds
const (
	KindCredential Kind = "credential"
	KindProof      Kind = "proof"
	KindDID        Kind = "did"
)

var (
	// ErrMalformed is returned when an envelope string cannot be decoded or misses required fields
	ErrMalformed = errors.New("malformed envelope")
	// ErrExpired is returned when an envelope is decoded after its expiry instant
	ErrExpired = errors.New("envelope expired")
)

// Envelope wraps an opaque payload with its kind, creation time and optional
// expiry. The codec never inspects the payload.
type Envelope struct {
	Kind      Kind
	Payload   string
	CreatedAt time.Time
	ExpiresAt *time.Time
}

type wire struct {
	Type      string `json:"type"`
	Data      string `json:"data"`
	Timestamp *int64 `json:"timestamp"`
	ExpiresAt *int64 `json:"expiresAt,omitempty"`
}

func validKind(k Kind) bool {
	switch k {
	case KindCredential, KindProof, KindDID:
		return true
	}
	return false
}

// Encode wraps payload into a transport string. A zero ttl means the envelope
// never expires.
func Encode(kind Kind, payload string, ttl time.Duration) (string, error) {
	return encodeAt(kind, payload, ttl, time.Now())
}

func encodeAt(kind Kind, payload string, ttl time.Duration, now time.Time) (string, error) {
	if !validKind(kind) {
		return "", ErrMalformed
	}
	ts := now.Unix()
	w := wire{
		Type:      string(kind),
		Data:      payload,
		Timestamp: &ts,
	}
	if ttl > 0 {
		exp := now.Add(ttl).Unix()
		w.ExpiresAt = &exp
	}
	raw, err := json.Marshal(w)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode parses a transport string, rejecting malformed payloads and
// envelopes whose expiry has passed. Expiry is a strict greater-than check:
// an envelope decoded exactly at its expiry instant is still valid.
func Decode(s string) (*Envelope, error) {
	return decodeAt(s, time.Now())
}

func decodeAt(s string, now time.Time) (*Envelope, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrMalformed
	}
	var w wire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed
	}
	if w.Type == "" || w.Data == "" || w.Timestamp == nil {
		return nil, ErrMalformed
	}
	kind := Kind(w.Type)
	if !validKind(kind) {
		return nil, ErrMalformed
	}
	env := &Envelope{
		Kind:      kind,
		Payload:   w.Data,
		CreatedAt: time.Unix(*w.Timestamp, 0),
	}
	if w.ExpiresAt != nil {
		exp := time.Unix(*w.ExpiresAt, 0)
		env.ExpiresAt = &exp
		if now.Unix() > *w.ExpiresAt {
			return nil, ErrExpired
		}
	}
	return env, nil
}
