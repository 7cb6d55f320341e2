package memory

import (
	"context"

	"github.com/VitaminP8/postery-admin/internal/apperr"
	"github.com/VitaminP8/postery-admin/models"
)

type ExportMemoryStorage struct {
	store *Store
}

func NewExportMemoryStorage(store *Store) *ExportMemoryStorage {
	return &ExportMemoryStorage{store: store}
}

func (s *ExportMemoryStorage) CreateExport(ctx context.Context, export *models.Export) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	export.ID = s.store.id("exports")
	if export.CreatedAt.IsZero() {
		export.CreatedAt = s.store.now()
	}

	stored := *export
	s.store.exports[export.ID] = &stored
	return nil
}

func (s *ExportMemoryStorage) UpdateExport(ctx context.Context, export *models.Export) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	stored, ok := s.store.exports[export.ID]
	if !ok {
		return apperr.NotFound("export", export.ID)
	}
	stored.FileName = export.FileName
	stored.TotalRows = export.TotalRows
	stored.SuccessfulRows = export.SuccessfulRows
	stored.CompletedAt = export.CompletedAt
	return nil
}

func (s *ExportMemoryStorage) GetExportById(ctx context.Context, id uint) (*models.Export, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	stored, ok := s.store.exports[id]
	if !ok {
		return nil, apperr.NotFound("export", id)
	}
	cp := *stored
	return &cp, nil
}
