package export

import (
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VitaminP8/postery-admin/internal/apperr"
	"github.com/VitaminP8/postery-admin/internal/auth"
	"github.com/VitaminP8/postery-admin/internal/mocks"
	"github.com/VitaminP8/postery-admin/internal/storage/memory"
	"github.com/VitaminP8/postery-admin/models"
)

var fixedNow = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

type fixture struct {
	exports *memory.ExportMemoryStorage
	users   *memory.UserMemoryStorage
	ids     []uint
}

func newFixture(t *testing.T) *fixture {
	store := memory.NewStore()
	store.SetClock(func() time.Time { return fixedNow })
	f := &fixture{
		exports: memory.NewExportMemoryStorage(store),
		users:   memory.NewUserMemoryStorage(store),
	}

	avatar := "avatars/b.png"
	for _, u := range []*models.User{
		{Name: "Alice", Email: "alice@example.com", Location: "US"},
		{Name: "Bob, Jr.", Email: "bob@example.com", Location: "DE", Avatar: &avatar},
		{Name: "Carol", Email: "carol@example.com", Location: "US"},
	} {
		require.NoError(t, f.users.CreateUser(context.Background(), u))
		f.ids = append(f.ids, u.ID)
	}
	return f
}

func readCSV(t *testing.T, fs afero.Fs, name string) [][]string {
	t.Helper()
	file, err := fs.Open(name)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return records
}

func TestExporter_Run(t *testing.T) {
	t.Run("Selected users are written in id order", func(t *testing.T) {
		f := newFixture(t)
		fs := afero.NewMemMapFs()
		exporter := NewExporter(f.exports, f.users, fs, func() time.Time { return fixedNow })

		ctx := auth.WithStaffID(context.Background(), 7)
		export, err := exporter.Run(ctx, []uint{f.ids[1], f.ids[0], f.ids[1]})
		require.NoError(t, err)

		assert.Equal(t, "users-1.csv", export.FileName)
		assert.Equal(t, 2, export.TotalRows)
		assert.Equal(t, 2, export.SuccessfulRows)
		require.NotNil(t, export.StaffID)
		assert.Equal(t, uint(7), *export.StaffID)

		records := readCSV(t, fs, export.FileName)
		assert.Equal(t, [][]string{
			Header,
			{"1", "Alice", "alice@example.com", "US", "", "Oct 19, 2026 08:00:00"},
			{"2", "Bob, Jr.", "bob@example.com", "DE", "avatars/b.png", "Oct 19, 2026 08:00:00"},
		}, records)

		stored, err := f.exports.GetExportById(ctx, export.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.CompletedAt)
		assert.Equal(t, fixedNow, *stored.CompletedAt)
	})

	t.Run("Nothing selected", func(t *testing.T) {
		f := newFixture(t)
		exporter := NewExporter(f.exports, f.users, afero.NewMemMapFs(), nil)

		_, err := exporter.Run(context.Background(), nil)
		assert.ErrorIs(t, err, ErrNothingSelected)
	})

	t.Run("Failing row aborts the export", func(t *testing.T) {
		f := newFixture(t)
		// заголовок и первая строка проходят, вторая строка падает
		fs := mocks.NewFailingFs(2)
		exporter := NewExporter(f.exports, f.users, fs, nil)

		export, err := exporter.Run(context.Background(), f.ids)
		require.Error(t, err)
		assert.ErrorIs(t, err, mocks.ErrDiskFull)
		assert.Equal(t, 1, export.SuccessfulRows)
		assert.Equal(t, 3, export.TotalRows)

		exists, err := afero.Exists(fs, export.FileName)
		require.NoError(t, err)
		assert.False(t, exists)

		stored, err := f.exports.GetExportById(context.Background(), export.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.CompletedAt)
		assert.Equal(t, 1, stored.SuccessfulRows)
	})

	t.Run("Failing close aborts the export", func(t *testing.T) {
		f := newFixture(t)
		fs := mocks.NewFailingFs(100)
		fs.CloseErr = mocks.ErrDiskFull
		exporter := NewExporter(f.exports, f.users, fs, nil)

		export, err := exporter.Run(context.Background(), f.ids)
		require.Error(t, err)
		assert.ErrorIs(t, err, mocks.ErrDiskFull)
		assert.Contains(t, err.Error(), "could not close")

		exists, err := afero.Exists(fs, export.FileName)
		require.NoError(t, err)
		assert.False(t, exists)

		stored, err := f.exports.GetExportById(context.Background(), export.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.CompletedAt)
	})

	t.Run("Vanished user aborts the export", func(t *testing.T) {
		f := newFixture(t)
		fs := afero.NewMemMapFs()
		exporter := NewExporter(f.exports, f.users, fs, nil)

		export, err := exporter.Run(context.Background(), []uint{f.ids[0], 99})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "user 99 no longer exists")
		assert.False(t, apperr.IsNotFound(err))

		exists, _ := afero.Exists(fs, export.FileName)
		assert.False(t, exists)
	})
}
