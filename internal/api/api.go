// Package api exposes the wallet node over HTTP. Handlers are thin: they
// translate between the wire and the services, which own all the behavior.
package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/holdr-id/wallet-node/internal/core/domain"
	"github.com/holdr-id/wallet-node/internal/core/ports"
	"github.com/holdr-id/wallet-node/internal/core/services"
	"github.com/holdr-id/wallet-node/internal/envelope"
	"github.com/holdr-id/wallet-node/internal/log"
	"github.com/holdr-id/wallet-node/internal/primitive"
)

const defaultShareTTL = 2 * time.Minute

// ProofService is the holder-side proof flow consumed by the handlers.
// services.Proof satisfies it.
type ProofService interface {
	Start(ctx context.Context, credentialID uuid.UUID, mask domain.DisclosureMask, circuitID string, options map[string]string) (*services.ProofSession, error)
	Session(id uuid.UUID) (*services.ProofSession, error)
	Share(ctx context.Context, sessionID uuid.UUID, ttl time.Duration) (*services.ShareLinks, error)
}

// CredentialsService is the credential store surface consumed by the
// handlers. services.Credentials satisfies it.
type CredentialsService interface {
	Ingest(ctx context.Context, credential *domain.Credential) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Credential, error)
	GetAllBySubject(ctx context.Context, subject string) ([]*domain.Credential, error)
	Refresh(ctx context.Context, id uuid.UUID) (*domain.Credential, error)
}

// Signer is the holder signing surface. primitive.BJJSigner satisfies it.
type Signer interface {
	Sign(ctx context.Context, message []byte) ([]byte, error)
	PublicKey() string
}

// Server wires the wallet services into HTTP handlers
type Server struct {
	proof        ProofService
	credentials  CredentialsService
	verification ports.VerificationService
	qrStore      ports.QrStoreService
	signer       Signer
	sigVerifier  *primitive.BJJVerifier
}

// NewServer returns the HTTP server facade
func NewServer(proof ProofService, credentials CredentialsService, verification ports.VerificationService, qrStore ports.QrStoreService, signer Signer) *Server {
	return &Server{
		proof:        proof,
		credentials:  credentials,
		verification: verification,
		qrStore:      qrStore,
		signer:       signer,
		sigVerifier:  &primitive.BJJVerifier{},
	}
}

// Routes mounts all wallet endpoints on a chi router. ctx carries the
// logger used for request logging.
func (s *Server) Routes(ctx context.Context) http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Use(log.ChiMiddleware(ctx))
	mux.Use(cors.AllowAll().Handler)

	mux.Get("/status", s.status)
	mux.Route("/v1", func(r chi.Router) {
		r.Post("/credentials", s.ingestCredential)
		r.Get("/credentials", s.listCredentials)
		r.Get("/credentials/{id}", s.getCredential)
		r.Post("/credentials/{id}/refresh", s.refreshCredential)
		r.Post("/credentials/{id}/proofs", s.startProof)
		r.Get("/sessions/{id}", s.getSession)
		r.Post("/proofs/share", s.shareProof)
		r.Post("/proofs/receive", s.receiveProof)
		r.Get("/qr-store", s.getQRCode)
		r.Post("/sign", s.sign)
		r.Post("/verify", s.verifySignature)
	})
	return mux
}

func (s *Server) status(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, map[string]string{"status": "up"})
}

type credentialRequest struct {
	ID             uuid.UUID         `json:"id"`
	Subject        string            `json:"subject"`
	Issuer         string            `json:"issuer"`
	CredentialType string            `json:"credentialType"`
	ExpiresAt      *time.Time        `json:"expiresAt,omitempty"`
	Fields         map[string]string `json:"fields"`
}

func (s *Server) ingestCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == uuid.Nil || req.Subject == "" || req.Issuer == "" {
		respondError(w, http.StatusBadRequest, "id, subject and issuer are required")
		return
	}
	credential := &domain.Credential{
		ID:             req.ID,
		Subject:        req.Subject,
		Issuer:         req.Issuer,
		CredentialType: domain.CredentialType(req.CredentialType),
		Status:         domain.CredentialStatusActive,
		IssuedAt:       time.Now().UTC(),
		ExpiresAt:      req.ExpiresAt,
		Fields:         req.Fields,
	}
	if err := s.credentials.Ingest(r.Context(), credential); err != nil {
		log.Error(r.Context(), "ingesting credential", err)
		respondError(w, http.StatusInternalServerError, "cannot store credential")
		return
	}
	respond(w, http.StatusCreated, map[string]string{"id": credential.ID.String()})
}

func (s *Server) listCredentials(w http.ResponseWriter, r *http.Request) {
	subject := r.URL.Query().Get("subject")
	if subject == "" {
		respondError(w, http.StatusBadRequest, "subject query parameter is required")
		return
	}
	creds, err := s.credentials.GetAllBySubject(r.Context(), subject)
	if err != nil {
		log.Error(r.Context(), "listing credentials", err)
		respondError(w, http.StatusInternalServerError, "cannot list credentials")
		return
	}
	respond(w, http.StatusOK, toCredentialResponses(creds))
}

func (s *Server) getCredential(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}
	credential, err := s.credentials.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Error(r.Context(), "fetching credential", err)
		respondError(w, http.StatusInternalServerError, "cannot fetch credential")
		return
	}
	respond(w, http.StatusOK, toCredentialResponse(credential))
}

func (s *Server) refreshCredential(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}
	credential, err := s.credentials.Refresh(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Error(r.Context(), "refreshing credential", err)
		respondError(w, http.StatusBadGateway, "cannot refresh credential from chain")
		return
	}
	respond(w, http.StatusOK, toCredentialResponse(credential))
}

type startProofRequest struct {
	CircuitID string            `json:"circuitId"`
	Mask      []string          `json:"mask"`
	Options   map[string]string `json:"options,omitempty"`
}

func (s *Server) startProof(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}
	var req startProofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	session, err := s.proof.Start(r.Context(), id, domain.DisclosureMask(req.Mask), req.CircuitID, req.Options)
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, domain.ErrCredentialNotFound):
			status = http.StatusNotFound
		case errors.Is(err, domain.ErrProofInProgress):
			status = http.StatusConflict
		}
		respondError(w, status, err.Error())
		return
	}
	respond(w, http.StatusAccepted, toSessionResponse(session))
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}
	session, err := s.proof.Session(id)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respond(w, http.StatusOK, toSessionResponse(session))
}

type shareProofRequest struct {
	SessionID  uuid.UUID `json:"sessionId"`
	TTLSeconds int64     `json:"ttlSeconds,omitempty"`
}

func (s *Server) shareProof(w http.ResponseWriter, r *http.Request) {
	var req shareProofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ttl := defaultShareTTL
	if req.TTLSeconds > 0 {
		ttl = time.Duration(req.TTLSeconds) * time.Second
	}
	links, err := s.proof.Share(r.Context(), req.SessionID, ttl)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			respondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrProofNotReady):
			respondError(w, http.StatusConflict, err.Error())
		default:
			log.Error(r.Context(), "sharing proof", err)
			respondError(w, http.StatusInternalServerError, "cannot share proof")
		}
		return
	}
	respond(w, http.StatusOK, links)
}

type receiveProofRequest struct {
	Envelope string `json:"envelope"`
}

type receiveProofResponse struct {
	Valid      bool      `json:"valid"`
	CircuitID  string    `json:"circuitId"`
	Holder     string    `json:"holder,omitempty"`
	ReceivedAt time.Time `json:"receivedAt"`
	TxHash     string    `json:"txHash,omitempty"`
}

func (s *Server) receiveProof(w http.ResponseWriter, r *http.Request) {
	var req receiveProofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Envelope == "" {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	verified, err := s.verification.Receive(r.Context(), req.Envelope)
	if err != nil {
		switch {
		case errors.Is(err, envelope.ErrExpired):
			respondError(w, http.StatusGone, err.Error())
		case errors.Is(err, envelope.ErrMalformed), errors.Is(err, domain.ErrWrongEnvelopeKind):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			log.Error(r.Context(), "receiving proof", err)
			respondError(w, http.StatusBadGateway, "verification unavailable")
		}
		return
	}
	respond(w, http.StatusOK, receiveProofResponse{
		Valid:      verified.Valid,
		CircuitID:  verified.Share.CircuitID,
		Holder:     verified.Share.Holder,
		ReceivedAt: verified.ReceivedAt,
		TxHash:     verified.TxHash,
	})
}

type signRequest struct {
	Message string `json:"message"` // base64
}

type signResponse struct {
	Signature string `json:"signature"` // base64
	PublicKey string `json:"publicKey"`
}

func (s *Server) sign(w http.ResponseWriter, r *http.Request) {
	var req signRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	message, err := base64.StdEncoding.DecodeString(req.Message)
	if err != nil {
		respondError(w, http.StatusBadRequest, "message must be base64")
		return
	}
	signature, err := s.signer.Sign(r.Context(), message)
	if err != nil {
		if errors.Is(err, domain.ErrKeyUnavailable) {
			respondError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		log.Error(r.Context(), "signing message", err)
		respondError(w, http.StatusInternalServerError, "cannot sign message")
		return
	}
	respond(w, http.StatusOK, signResponse{
		Signature: base64.StdEncoding.EncodeToString(signature),
		PublicKey: s.signer.PublicKey(),
	})
}

type verifySignatureRequest struct {
	Message   string `json:"message"`   // base64
	Signature string `json:"signature"` // base64
	PublicKey string `json:"publicKey"`
}

func (s *Server) verifySignature(w http.ResponseWriter, r *http.Request) {
	var req verifySignatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	message, err := base64.StdEncoding.DecodeString(req.Message)
	if err != nil {
		respondError(w, http.StatusBadRequest, "message must be base64")
		return
	}
	// malformed signatures and keys verify to false, they are not an error
	signature, err := base64.StdEncoding.DecodeString(req.Signature)
	if err != nil {
		respond(w, http.StatusOK, map[string]bool{"valid": false})
		return
	}
	respond(w, http.StatusOK, map[string]bool{"valid": s.sigVerifier.Verify(message, signature, req.PublicKey)})
}

func (s *Server) getQRCode(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "id query parameter must be a uuid")
		return
	}
	body, err := s.qrStore.Find(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "qr code not found or expired")
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
