// Package ratestore persiste el snapshot de TRM compartido entre ejecuciones.
package ratestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cartera-service/internal/domain"

	"go.uber.org/zap"
)

// FileStore guarda el snapshot en un archivo JSON.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore devuelve un almacén sobre path.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger}
}

// Path devuelve la ruta del archivo.
func (s *FileStore) Path() string {
	return s.path
}

// Load lee el snapshot. Un archivo ausente o corrupto da un snapshot vacío, no un error.
func (s *FileStore) Load(_ context.Context) (domain.RateSnapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.RateSnapshot{}, nil
	}
	if err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("error al leer la TRM: %w", err)
	}

	var snap domain.RateSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("archivo de TRM corrupto, se ignora", zap.String("path", s.path), zap.Error(err))
		return domain.RateSnapshot{}, nil
	}
	return snap, nil
}

// Save escribe en un temporal y lo renombra; nunca queda un archivo a medias.
func (s *FileStore) Save(_ context.Context, snap domain.RateSnapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("error al codificar la TRM: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error al crear el directorio de la TRM: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".trm-*.json")
	if err != nil {
		return fmt.Errorf("error al crear el temporal de la TRM: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("error al escribir la TRM: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error al cerrar la TRM: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("error al reemplazar la TRM: %w", err)
	}
	s.logger.Info("TRM guardada", zap.String("path", s.path), zap.String("updated_at", snap.UpdatedAt))
	return nil
}
