package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/holdr-id/wallet-node/internal/core/domain"
	"github.com/holdr-id/wallet-node/internal/db"
)

// CredentialsRepository is the holder-local credential store. Credentials are
// written on ingestion and refresh; field values are immutable, only status
// transitions driven by the chain are applied.
type CredentialsRepository interface {
	Save(ctx context.Context, conn db.Querier, credential *domain.Credential) error
	GetByID(ctx context.Context, conn db.Querier, id uuid.UUID) (*domain.Credential, error)
	GetAllBySubject(ctx context.Context, conn db.Querier, subject string) ([]*domain.Credential, error)
	UpdateStatus(ctx context.Context, conn db.Querier, id uuid.UUID, status domain.CredentialStatus) error
}
