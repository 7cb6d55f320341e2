package postgres

import (
	"context"
	"fmt"

	"github.com/VitaminP8/postery-admin/models"
	"github.com/jinzhu/gorm"
)

type ExportPostgresStorage struct {
	db *gorm.DB
}

func NewExportPostgresStorage(db *gorm.DB) *ExportPostgresStorage {
	return &ExportPostgresStorage{db: db}
}

func (s *ExportPostgresStorage) CreateExport(ctx context.Context, export *models.Export) error {
	err := s.db.Create(export).Error
	if err != nil {
		return fmt.Errorf("could not create export: %w", err)
	}
	return nil
}

func (s *ExportPostgresStorage) UpdateExport(ctx context.Context, export *models.Export) error {
	err := s.db.Model(export).Updates(map[string]interface{}{
		"file_name":       export.FileName,
		"total_rows":      export.TotalRows,
		"successful_rows": export.SuccessfulRows,
		"completed_at":    export.CompletedAt,
	}).Error
	if err != nil {
		return fmt.Errorf("could not update export: %w", err)
	}
	return nil
}

func (s *ExportPostgresStorage) GetExportById(ctx context.Context, id uint) (*models.Export, error) {
	var export models.Export
	err := s.db.First(&export, id).Error
	if err != nil {
		return nil, getError(err, "export", id)
	}
	return &export, nil
}
