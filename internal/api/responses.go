package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/holdr-id/wallet-node/internal/core/domain"
	"github.com/holdr-id/wallet-node/internal/core/services"
)

type errorResponse struct {
	Message string `json:"message"`
}

type credentialResponse struct {
	ID             uuid.UUID  `json:"id"`
	Subject        string     `json:"subject"`
	Issuer         string     `json:"issuer"`
	CredentialType string     `json:"credentialType"`
	Status         string     `json:"status"`
	IssuedAt       time.Time  `json:"issuedAt"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	FieldNames     []string   `json:"fieldNames"`
}

type sessionResponse struct {
	ID        uuid.UUID `json:"id"`
	State     string    `json:"state"`
	Busy      bool      `json:"busy"`
	CircuitID string    `json:"circuitId,omitempty"`
	LastError string    `json:"lastError,omitempty"`
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, errorResponse{Message: message})
}

func pathUUID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "id path parameter must be a uuid")
		return uuid.Nil, false
	}
	return id, true
}

// field values never leave the wallet through this surface, only their names
func toCredentialResponse(c *domain.Credential) credentialResponse {
	return credentialResponse{
		ID:             c.ID,
		Subject:        c.Subject,
		Issuer:         c.Issuer,
		CredentialType: string(c.CredentialType),
		Status:         string(c.Status),
		IssuedAt:       c.IssuedAt,
		ExpiresAt:      c.ExpiresAt,
		FieldNames:     c.FieldNames(),
	}
}

func toCredentialResponses(creds []*domain.Credential) []credentialResponse {
	out := make([]credentialResponse, 0, len(creds))
	for _, c := range creds {
		out = append(out, toCredentialResponse(c))
	}
	return out
}

func toSessionResponse(s *services.ProofSession) sessionResponse {
	return sessionResponse{
		ID:        s.ID(),
		State:     string(s.State()),
		Busy:      s.Busy(),
		CircuitID: s.CircuitID(),
		LastError: s.LastError(),
	}
}
