package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/holdr-id/wallet-node/internal/core/domain"
	"github.com/holdr-id/wallet-node/internal/core/ports"
	"github.com/holdr-id/wallet-node/internal/db"
	"github.com/holdr-id/wallet-node/internal/log"
)

// Credentials manages the holder-local credential store. Credential field
// values are immutable once issued; status transitions only come from the
// chain collaborator through Refresh.
type Credentials struct {
	repo    ports.CredentialsRepository
	chain   ports.ChainService
	storage *db.Storage
}

// NewCredentials returns a credentials service
func NewCredentials(repo ports.CredentialsRepository, chain ports.ChainService, storage *db.Storage) *Credentials {
	return &Credentials{repo: repo, chain: chain, storage: storage}
}

// GetByID fetches a credential from the local store
func (s *Credentials) GetByID(ctx context.Context, id uuid.UUID) (*domain.Credential, error) {
	return s.repo.GetByID(ctx, s.storage.Pgx, id)
}

// GetAllBySubject lists the credentials held for a subject
func (s *Credentials) GetAllBySubject(ctx context.Context, subject string) ([]*domain.Credential, error) {
	return s.repo.GetAllBySubject(ctx, s.storage.Pgx, subject)
}

// Ingest stores a credential received from an issuer
func (s *Credentials) Ingest(ctx context.Context, credential *domain.Credential) error {
	if err := s.repo.Save(ctx, s.storage.Pgx, credential); err != nil {
		return errors.Wrap(err, "saving credential")
	}
	log.Info(ctx, "credential ingested", "id", credential.ID.String(), "type", credential.CredentialType)
	return nil
}

// Refresh pulls the chain view of a credential and applies its status to the
// local store. This is the only path that mutates a stored credential.
func (s *Credentials) Refresh(ctx context.Context, id uuid.UUID) (*domain.Credential, error) {
	chainView, err := s.chain.GetCredential(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "fetching credential from chain")
	}

	local, err := s.repo.GetByID(ctx, s.storage.Pgx, id)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialNotFound) {
			if err := s.repo.Save(ctx, s.storage.Pgx, chainView); err != nil {
				return nil, errors.Wrap(err, "saving refreshed credential")
			}
			return chainView, nil
		}
		return nil, err
	}

	if local.Status != chainView.Status {
		log.Info(ctx, "credential status changed on chain", "id", id.String(), "from", local.Status, "to", chainView.Status)
		if err := s.repo.UpdateStatus(ctx, s.storage.Pgx, id, chainView.Status); err != nil {
			return nil, errors.Wrap(err, "applying status transition")
		}
		local.Status = chainView.Status
	}
	return local, nil
}
