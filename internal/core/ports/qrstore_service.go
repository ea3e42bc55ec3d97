package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// QrStoreService stores QR code bodies (envelope strings) under short ids so
// the full payload does not need to fit in the QR symbol.
type QrStoreService interface {
	Find(ctx context.Context, id uuid.UUID) ([]byte, error)
	Store(ctx context.Context, qrCode []byte, ttl time.Duration) (uuid.UUID, error)
	ToURL(hostURL string, id uuid.UUID) string
}
