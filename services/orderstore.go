package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"cafe-telegram/models"
)

// ErrNoOrder is returned by Load when nothing has been placed yet.
var ErrNoOrder = errors.New("no order on record")

// FileOrderStore keeps the most recent order record as JSON in a single
// well-known file. Save overwrites; history is never kept.
type FileOrderStore struct {
	path string
}

func NewFileOrderStore(path string) *FileOrderStore {
	return &FileOrderStore{path: path}
}

func (s *FileOrderStore) Save(o *models.OrderRecord) error {
	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write order file: %w", err)
	}
	return nil
}

func (s *FileOrderStore) Load() (*models.OrderRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoOrder
	}
	if err != nil {
		return nil, fmt.Errorf("read order file: %w", err)
	}
	var o models.OrderRecord
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}
