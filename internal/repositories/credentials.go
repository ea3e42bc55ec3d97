package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"

	"github.com/holdr-id/wallet-node/internal/core/domain"
	"github.com/holdr-id/wallet-node/internal/core/ports"
	"github.com/holdr-id/wallet-node/internal/db"
)

type credentials struct{}

type dbCredential struct {
	ID             uuid.UUID
	Subject        sql.NullString
	Issuer         sql.NullString
	CredentialType sql.NullString
	Status         sql.NullString
	IssuedAt       time.Time
	ExpiresAt      *time.Time
	Fields         pgtype.JSONB
}

// NewCredentials returns a new holder-local credentials repository
func NewCredentials() ports.CredentialsRepository {
	return &credentials{}
}

// Save stores or refreshes a credential. Refreshing overwrites the chain
// driven columns; the field values of an existing credential are kept as
// issued.
func (c *credentials) Save(ctx context.Context, conn db.Querier, credential *domain.Credential) error {
	fields, err := json.Marshal(credential.Fields)
	if err != nil {
		return err
	}
	_, err = conn.Exec(ctx, `INSERT INTO credentials (id, subject, issuer, credential_type, status, issued_at, expires_at, fields)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status, expires_at = EXCLUDED.expires_at`,
		credential.ID,
		credential.Subject,
		credential.Issuer,
		credential.CredentialType,
		credential.Status,
		credential.IssuedAt,
		credential.ExpiresAt,
		fields)
	return err
}

// GetByID fetches one credential
func (c *credentials) GetByID(ctx context.Context, conn db.Querier, id uuid.UUID) (*domain.Credential, error) {
	row := conn.QueryRow(ctx, `SELECT id, subject, issuer, credential_type, status, issued_at, expires_at, fields
		FROM credentials WHERE id = $1`, id)
	cred, err := scanCredential(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCredentialNotFound
		}
		return nil, err
	}
	return cred, nil
}

// GetAllBySubject lists every credential held for a subject
func (c *credentials) GetAllBySubject(ctx context.Context, conn db.Querier, subject string) ([]*domain.Credential, error) {
	rows, err := conn.Query(ctx, `SELECT id, subject, issuer, credential_type, status, issued_at, expires_at, fields
		FROM credentials WHERE subject = $1 ORDER BY issued_at DESC`, subject)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var creds []*domain.Credential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		creds = append(creds, cred)
	}
	return creds, rows.Err()
}

// UpdateStatus applies a chain driven status transition
func (c *credentials) UpdateStatus(ctx context.Context, conn db.Querier, id uuid.UUID, status domain.CredentialStatus) error {
	tag, err := conn.Exec(ctx, `UPDATE credentials SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCredentialNotFound
	}
	return nil
}

func scanCredential(row pgx.Row) (*domain.Credential, error) {
	var dbc dbCredential
	if err := row.Scan(&dbc.ID, &dbc.Subject, &dbc.Issuer, &dbc.CredentialType, &dbc.Status, &dbc.IssuedAt, &dbc.ExpiresAt, &dbc.Fields); err != nil {
		return nil, err
	}

	cred := &domain.Credential{
		ID:             dbc.ID,
		Subject:        dbc.Subject.String,
		Issuer:         dbc.Issuer.String,
		CredentialType: domain.CredentialType(dbc.CredentialType.String),
		Status:         domain.CredentialStatus(dbc.Status.String),
		IssuedAt:       dbc.IssuedAt,
		ExpiresAt:      dbc.ExpiresAt,
	}
	if dbc.Fields.Status == pgtype.Present {
		if err := json.Unmarshal(dbc.Fields.Bytes, &cred.Fields); err != nil {
			return nil, err
		}
	}
	return cred, nil
}
