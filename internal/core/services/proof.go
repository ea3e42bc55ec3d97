package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/iden3/go-iden3-core/v2/w3c"
	"github.com/pkg/errors"

	"github.com/holdr-id/wallet-node/internal/core/domain"
	"github.com/holdr-id/wallet-node/internal/core/ports"
	"github.com/holdr-id/wallet-node/internal/envelope"
	"github.com/holdr-id/wallet-node/internal/log"
	"github.com/holdr-id/wallet-node/internal/qrlink"
)

// ShareLinks is everything a caller needs to present a generated proof:
// the raw envelope string plus the QR shortener urls pointing at it.
type ShareLinks struct {
	Envelope      string    `json:"envelope"`
	QRID          uuid.UUID `json:"qrId"`
	DeepLink      string    `json:"deepLink"`
	UniversalLink string    `json:"universalLink"`
}

// CredentialGetter resolves stored credentials by id. The credentials
// service satisfies it.
type CredentialGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Credential, error)
}

// Proof orchestrates the holder-side proof flow: resolve the credential,
// build the canonical request, run it through a per-holder session and wrap
// the outcome for transport.
type Proof struct {
	builder      ports.RequestBuilder
	sessions     *SessionRegistry
	credentials  CredentialGetter
	qrStore      ports.QrStoreService
	hostURL      string
	uLinkBaseURL string
}

// NewProof returns the proof orchestration service
func NewProof(builder ports.RequestBuilder, sessions *SessionRegistry, credentials CredentialGetter, qrStore ports.QrStoreService, hostURL, uLinkBaseURL string) *Proof {
	return &Proof{
		builder:      builder,
		sessions:     sessions,
		credentials:  credentials,
		qrStore:      qrStore,
		hostURL:      hostURL,
		uLinkBaseURL: uLinkBaseURL,
	}
}

// Start builds a proof request for the credential and launches it on the
// holder's session. The returned session is already Requesting; callers poll
// it for the terminal state.
func (s *Proof) Start(ctx context.Context, credentialID uuid.UUID, mask domain.DisclosureMask, circuitID string, options map[string]string) (*ProofSession, error) {
	credential, err := s.credentials.GetByID(ctx, credentialID)
	if err != nil {
		return nil, err
	}
	request, err := s.builder.Build(credential, mask, circuitID, options)
	if err != nil {
		return nil, err
	}

	session := s.sessions.ForHolder(credential.Subject)
	if err := session.Start(ctx, request); err != nil {
		return nil, err
	}
	log.Info(ctx, "proof session started", "session", session.ID().String(), "circuit", circuitID)
	return session, nil
}

// Session returns the session with the given id
func (s *Proof) Session(id uuid.UUID) (*ProofSession, error) {
	session := s.sessions.Get(id)
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Share wraps a successful session result into a proof envelope, stores it
// as a QR body and returns the links pointing at it. ttl bounds both the
// envelope and the stored body.
func (s *Proof) Share(ctx context.Context, sessionID uuid.UUID, ttl time.Duration) (*ShareLinks, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}
	result := session.Result()
	if session.State() != SessionSucceeded || result == nil {
		return nil, domain.ErrProofNotReady
	}

	share := domain.ProofShare{
		CircuitID:    session.CircuitID(),
		Proof:        base64.StdEncoding.EncodeToString(result.Proof),
		PublicInputs: session.PublicInputs(),
		Holder:       session.Holder(),
	}
	payload, err := json.Marshal(share)
	if err != nil {
		return nil, errors.Wrap(err, "encoding proof share")
	}
	env, err := envelope.Encode(envelope.KindProof, string(payload), ttl)
	if err != nil {
		return nil, errors.Wrap(err, "wrapping proof share")
	}

	qrID, err := s.qrStore.Store(ctx, []byte(env), ttl)
	if err != nil {
		return nil, errors.Wrap(err, "storing qr body")
	}

	var holderDID *w3c.DID
	if did, err := w3c.ParseDID(session.Holder()); err == nil {
		holderDID = did
	}
	return &ShareLinks{
		Envelope:      env,
		QRID:          qrID,
		DeepLink:      qrlink.NewDeepLink(s.hostURL, qrID, holderDID),
		UniversalLink: qrlink.NewUniversal(s.uLinkBaseURL, s.hostURL, qrID, holderDID),
	}, nil
}
