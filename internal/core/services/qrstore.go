package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/holdr-id/wallet-node/internal/log"
	"github.com/holdr-id/wallet-node/pkg/cache"
)

// DefaultQRBodyTTL is the default time to live for a QR code body. QR bodies
// carry envelope strings, which expire on their own, so the store ttl only
// bounds garbage accumulation.
const DefaultQRBodyTTL = 5 * time.Minute

// ErrQRCodeLinkNotFound is the error returned when a QR code body is not found in the QR storage
var ErrQRCodeLinkNotFound = errors.New("qr code link not found")

// QrStoreService implements the ports.QrStoreService interface.
// It stores the body of shared QR codes and backs the QR url shortener, so a
// scanned code resolves to a short url instead of embedding the full envelope.
type QrStoreService struct {
	mx    sync.Mutex
	store cache.Cache
}

type qrPayload struct {
	QrCode string `json:"qr_code"`
}

// NewQrStoreService creates a new QrStoreService instance
func NewQrStoreService(store cache.Cache) *QrStoreService {
	return &QrStoreService{
		store: store,
	}
}

// Find retrieves the body of a QR code. Not finding an item is considered an error
func (s *QrStoreService) Find(ctx context.Context, id uuid.UUID) ([]byte, error) {
	var raw qrPayload
	if found := s.store.Get(ctx, s.key(id), &raw); !found {
		log.Info(ctx, "qr code body not found, it may have expired", "id", id.String())
		return nil, ErrQRCodeLinkNotFound
	}
	return []byte(raw.QrCode), nil
}

// Store stores the body of a QR code under a new unique id and returns the id
func (s *QrStoreService) Store(ctx context.Context, qrCode []byte, ttl time.Duration) (uuid.UUID, error) {
	id := s.newID(ctx)
	if err := s.store.Set(ctx, s.key(id), qrPayload{QrCode: string(qrCode)}, ttl); err != nil {
		log.Error(ctx, "storing qr code body", err, "id", id.String())
		return uuid.Nil, err
	}
	return id, nil
}

// ToURL constructs the url that will be used to get the body of a QR code
func (s *QrStoreService) ToURL(hostURL string, id uuid.UUID) string {
	return fmt.Sprintf("%s/v1/qr-store?id=%s", hostURL, id.String())
}

func (s *QrStoreService) key(id uuid.UUID) string {
	return "wallet-node:qr-code:" + id.String()
}

func (s *QrStoreService) newID(ctx context.Context) uuid.UUID {
	s.mx.Lock()
	defer s.mx.Unlock()
	for {
		id := uuid.New()
		if !s.store.Exists(ctx, s.key(id)) {
			return id
		}
	}
}
