package ratestore

import (
	"context"
	"fmt"

	"cartera-service/internal/domain"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Ubicación por defecto del documento de TRM en Firestore.
const (
	DefaultCollection = "config"
	DefaultDocument   = "trm"
)

// FirestoreStore guarda el snapshot en un único documento de Firestore, compartido
// por todas las instancias del servicio.
type FirestoreStore struct {
	doc    *firestore.DocumentRef
	logger *zap.Logger
}

// NewFirestoreStore devuelve un almacén sobre collection/document de client.
func NewFirestoreStore(client *firestore.Client, collection, document string, logger *zap.Logger) *FirestoreStore {
	if collection == "" {
		collection = DefaultCollection
	}
	if document == "" {
		document = DefaultDocument
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FirestoreStore{doc: client.Collection(collection).Doc(document), logger: logger}
}

// Load lee el documento; si no existe devuelve un snapshot vacío.
func (s *FirestoreStore) Load(ctx context.Context) (domain.RateSnapshot, error) {
	snap, err := s.doc.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return domain.RateSnapshot{}, nil
	}
	if err != nil {
		s.logger.Error("error al leer la TRM de firestore", zap.Error(err))
		return domain.RateSnapshot{}, fmt.Errorf("error al leer la TRM: %w", err)
	}

	var out domain.RateSnapshot
	if err := snap.DataTo(&out); err != nil {
		s.logger.Warn("documento de TRM mal formado, se ignora", zap.Error(err))
		return domain.RateSnapshot{}, nil
	}
	return out, nil
}

// Save sobrescribe el documento.
func (s *FirestoreStore) Save(ctx context.Context, snap domain.RateSnapshot) error {
	if _, err := s.doc.Set(ctx, snap); err != nil {
		return fmt.Errorf("error al escribir la TRM: %w", err)
	}
	s.logger.Info("TRM guardada en firestore", zap.String("updated_at", snap.UpdatedAt))
	return nil
}
