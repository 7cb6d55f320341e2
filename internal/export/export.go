// Package export writes selected users to a CSV file named after the export
// record, users-{id}.csv.
package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"slices"
	"strconv"
	"time"

	"github.com/spf13/afero"

	"github.com/VitaminP8/postery-admin/internal/auth"
	"github.com/VitaminP8/postery-admin/internal/resource"
	"github.com/VitaminP8/postery-admin/models"
)

const UsersExporter = "users"

// Header is the first CSV line of a users export.
var Header = []string{"ID", "Name", "Email", "Location", "Avatar", "Created At"}

var ErrNothingSelected = errors.New("no users selected")

type ExportStorage interface {
	CreateExport(ctx context.Context, export *models.Export) error
	UpdateExport(ctx context.Context, export *models.Export) error
	GetExportById(ctx context.Context, id uint) (*models.Export, error)
}

type Users interface {
	GetUsersByIds(ctx context.Context, ids []uint) ([]*models.User, error)
}

type Exporter struct {
	exports ExportStorage
	users   Users
	fs      afero.Fs
	now     func() time.Time
}

func NewExporter(exports ExportStorage, users Users, fs afero.Fs, now func() time.Time) *Exporter {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Exporter{exports: exports, users: users, fs: fs, now: now}
}

// Fs is the filesystem export files are written to.
func (e *Exporter) Fs() afero.Fs {
	return e.fs
}

func FileName(id uint) string {
	return fmt.Sprintf("users-%d.csv", id)
}

// Run exports the users with the given ids in id order. A row that cannot be
// written aborts the export: the file is removed and the record is left
// without completed_at.
func (e *Exporter) Run(ctx context.Context, ids []uint) (*models.Export, error) {
	ids = sortedIDs(ids)
	if len(ids) == 0 {
		return nil, ErrNothingSelected
	}

	export := &models.Export{
		Exporter:  UsersExporter,
		TotalRows: len(ids),
	}
	if staffID, err := auth.GetStaffIDFromContext(ctx); err == nil {
		export.StaffID = &staffID
	}
	if err := e.exports.CreateExport(ctx, export); err != nil {
		return nil, fmt.Errorf("could not create export: %w", err)
	}
	export.FileName = FileName(export.ID)

	written, err := e.write(ctx, export.FileName, ids)
	export.SuccessfulRows = written
	if err != nil {
		if rmErr := e.fs.Remove(export.FileName); rmErr != nil {
			log.Printf("could not remove partial export %s: %v", export.FileName, rmErr)
		}
		if upErr := e.exports.UpdateExport(ctx, export); upErr != nil {
			log.Printf("could not record failed export %d: %v", export.ID, upErr)
		}
		log.Printf("export %d aborted after %d of %d rows: %v", export.ID, written, export.TotalRows, err)
		return export, fmt.Errorf("export %d failed: %w", export.ID, err)
	}

	completed := e.now()
	export.CompletedAt = &completed
	if err := e.exports.UpdateExport(ctx, export); err != nil {
		return nil, fmt.Errorf("could not complete export: %w", err)
	}

	log.Printf("export %d of %d users finished by %s", export.ID, written, auth.Actor(ctx))
	return export, nil
}

func (e *Exporter) write(ctx context.Context, name string, ids []uint) (written int, err error) {
	users, err := e.users.GetUsersByIds(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("could not load users: %w", err)
	}
	byID := make(map[uint]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	f, err := e.fs.Create(name)
	if err != nil {
		return 0, fmt.Errorf("could not create %s: %w", name, err)
	}
	// ошибка закрытия тоже обрывает выгрузку: с ней теряется последняя запись
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("could not close %s: %w", name, cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := writeRow(w, Header); err != nil {
		return 0, fmt.Errorf("could not write header: %w", err)
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		u, ok := byID[id]
		if !ok {
			return written, fmt.Errorf("user %d no longer exists", id)
		}
		if err := writeRow(w, row(u)); err != nil {
			return written, fmt.Errorf("could not write user %d: %w", id, err)
		}
		written++
	}
	return written, nil
}

// writeRow flushes every row so a failing write is pinned to its row.
func writeRow(w *csv.Writer, record []string) error {
	if err := w.Write(record); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func row(u *models.User) []string {
	avatar := ""
	if u.Avatar != nil {
		avatar = *u.Avatar
	}
	return []string{
		strconv.FormatUint(uint64(u.ID), 10),
		u.Name,
		u.Email,
		u.Location,
		avatar,
		u.CreatedAt.Format(resource.DateTimeFormat),
	}
}

// sortedIDs drops duplicates and sorts.
func sortedIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}
