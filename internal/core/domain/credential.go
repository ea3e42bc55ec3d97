package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/iden3/go-iden3-core/v2/w3c"
)

// CredentialType is the category of a verifiable credential held by the wallet
type CredentialType string

// Supported credential types
const (
	CredentialTypeEducation  CredentialType = "education"
	CredentialTypeHealth     CredentialType = "health"
	CredentialTypeEmployment CredentialType = "employment"
	CredentialTypeAge        CredentialType = "age"
	CredentialTypeAddress    CredentialType = "address"
	CredentialTypeCustom     CredentialType = "custom"
)

// CredentialStatus is the lifecycle status of a credential. It is only
// changed by refresh operations against the chain, never locally.
type CredentialStatus string

// Credential statuses
const (
	CredentialStatusActive    CredentialStatus = "active"
	CredentialStatusRevoked   CredentialStatus = "revoked"
	CredentialStatusExpired   CredentialStatus = "expired"
	CredentialStatusSuspended CredentialStatus = "suspended"
)

// Credential is a verifiable credential owned by the holder. Fields holds the
// private attribute values. A credential is immutable once issued except for
// status transitions driven by the chain.
type Credential struct {
	ID             uuid.UUID
	Subject        string
	Issuer         string
	CredentialType CredentialType
	Status         CredentialStatus
	IssuedAt       time.Time
	ExpiresAt      *time.Time
	Fields         map[string]string
}

// SubjectDID parses the credential subject as a DID
func (c *Credential) SubjectDID() (*w3c.DID, error) {
	return w3c.ParseDID(c.Subject)
}

// IssuerDID parses the credential issuer as a DID
func (c *Credential) IssuerDID() (*w3c.DID, error) {
	return w3c.ParseDID(c.Issuer)
}

// FieldNames returns the credential field names in sorted order
func (c *Credential) FieldNames() []string {
	names := make([]string, 0, len(c.Fields))
	for name := range c.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Usable tells whether proofs can be generated from this credential at time t
func (c *Credential) Usable(t time.Time) bool {
	if c.Status != CredentialStatusActive {
		return false
	}
	if c.ExpiresAt != nil && t.After(*c.ExpiresAt) {
		return false
	}
	return true
}

// DisclosureMask is the set of field names selected for revelation from one
// credential. It is created per proof request and never persisted.
type DisclosureMask []string

// Contains tells whether the mask selects the given field
func (m DisclosureMask) Contains(field string) bool {
	for _, f := range m {
		if f == field {
			return true
		}
	}
	return false
}

// Sorted returns a sorted copy of the mask with duplicates removed
func (m DisclosureMask) Sorted() []string {
	seen := make(map[string]struct{}, len(m))
	out := make([]string, 0, len(m))
	for _, f := range m {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
