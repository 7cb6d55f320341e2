package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VitaminP8/postery-admin/internal/auth"
	"github.com/VitaminP8/postery-admin/internal/dashboard"
	"github.com/VitaminP8/postery-admin/internal/user"
)

const testSecret = "cli-secret"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	locations := filepath.Join(dir, "locations.yaml")
	require.NoError(t, os.WriteFile(locations, []byte(`locations:
  options:
    - code: US
      label: United States
    - code: DE
      label: Germany
`), 0o644))

	t.Setenv("LOCATIONS_FILE", locations)
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "postery.db"))
	t.Setenv("EXPORT_ROOT", filepath.Join(dir, "exports"))
	t.Setenv("MEDIA_ROOT", filepath.Join(dir, "public"))
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("STORAGE", "sqlite")
	t.Setenv("OTEL_ENABLED", "false")
	return dir
}

func TestRenderStats(t *testing.T) {
	out := renderStats([]dashboard.Stat{
		{Label: "Total Users", Value: 1500, Display: "1.50k"},
		{Label: "Total Posts", Value: 2, Display: "2"},
	})

	assert.Contains(t, out, "Total Users")
	assert.Contains(t, out, "1.50k")
	assert.Contains(t, out, "1,500")
	assert.Contains(t, out, "Total Posts")
	// плитки стоят рядом, а не друг под другом
	assert.Less(t, strings.Count(out, "\n"), 6)
}

func TestRenderActivity(t *testing.T) {
	out := renderActivity(nil, 0)
	assert.Contains(t, out, "nothing yet")

	out = renderActivity([]dashboard.Activity{{ID: 1, Cells: map[string]string{
		"activity":   "Post created",
		"content":    "Hello",
		"user.name":  "Alice",
		"created_at": "Oct 19, 2026 12:00:00",
	}}}, 1)
	assert.Contains(t, out, "Post created")
	assert.Contains(t, out, "Alice")
}

func TestCommands_SQLite(t *testing.T) {
	dir := setupEnv(t)

	t.Run("Migrate creates the schema", func(t *testing.T) {
		out, err := run(t, "migrate", "--storage", "sqlite")
		require.NoError(t, err)
		assert.Contains(t, out, "sqlite schema is up to date")
	})

	t.Run("Seed creates admin and users", func(t *testing.T) {
		out, err := run(t, "seed", "--storage", "sqlite", "--users", "3", "--seed", "42")
		require.NoError(t, err)
		assert.Contains(t, out, "admin: admin@example.com")
		assert.Contains(t, out, "users: 3")
	})

	t.Run("Stats count seeded rows", func(t *testing.T) {
		out, err := run(t, "stats", "--storage", "sqlite")
		require.NoError(t, err)
		assert.Contains(t, out, "Total Users")
		assert.Contains(t, out, "Total Comments")
		assert.Contains(t, out, "Post created")
	})

	t.Run("Token for the admin", func(t *testing.T) {
		out, err := run(t, "token", "--storage", "sqlite", "--email", "admin@example.com", "--password", "password")
		require.NoError(t, err)

		id, err := auth.ParseToken(testSecret, strings.TrimSpace(out))
		require.NoError(t, err)
		assert.Equal(t, uint(1), id)
	})

	t.Run("Token with a wrong password fails", func(t *testing.T) {
		_, err := run(t, "token", "--storage", "sqlite", "--email", "admin@example.com", "--password", "nope")
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})

	t.Run("Export writes the CSV", func(t *testing.T) {
		out, err := run(t, "export", "--storage", "sqlite", "--ids", "1,2")
		require.NoError(t, err)
		assert.Contains(t, out, "2 of 2 rows")

		data, err := os.ReadFile(filepath.Join(dir, "exports", "users-1.csv"))
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		assert.Len(t, lines, 3)
		assert.Equal(t, "ID,Name,Email,Location,Avatar,Created At", lines[0])
	})

	t.Run("Export without ids fails", func(t *testing.T) {
		_, err := run(t, "export", "--storage", "sqlite")
		assert.Error(t, err)
	})
}

func TestMigrate_Memory(t *testing.T) {
	setupEnv(t)
	t.Setenv("STORAGE", "memory")

	_, err := run(t, "migrate", "--storage", "memory")
	assert.EqualError(t, err, "memory storage has no schema")
}
