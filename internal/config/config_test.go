package config_test

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/VitaminP8/postery-admin/internal/config"
)

func writeFile(c *qt.C, dir, name, content string) string {
	path := filepath.Join(dir, name)
	err := os.WriteFile(path, []byte(content), 0o644)
	c.Assert(err, qt.IsNil)
	return path
}

func TestLoadDefaults(t *testing.T) {
	c := qt.New(t)
	c.Setenv("STORAGE", "")
	c.Setenv("HTTP_ADDR", "")

	cfg, err := config.Load()
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Storage, qt.Equals, "memory")
	c.Assert(cfg.HTTPAddr, qt.Equals, ":8080")
	c.Assert(cfg.LocationsFile, qt.Equals, "config/locations.yaml")
	c.Assert(cfg.OTELEnabled, qt.IsTrue)
}

func TestConfigDSN(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		expected string
	}{
		{
			name: "postgres",
			cfg: config.Config{Storage: "postgres", DBHost: "db", DBPort: "5432", DBUser: "u",
				DBPassword: "p", DBName: "postery", DBSSLMode: "disable"},
			expected: "host=db user=u password=p dbname=postery port=5432 sslmode=disable",
		},
		{
			name: "mysql",
			cfg: config.Config{Storage: "mysql", DBHost: "db", DBPort: "3306", DBUser: "u",
				DBPassword: "p", DBName: "postery"},
			expected: "u:p@tcp(db:3306)/postery?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name:     "sqlite",
			cfg:      config.Config{Storage: "sqlite", SQLitePath: "data.db"},
			expected: "data.db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			dsn, err := tt.cfg.DSN()
			c.Assert(err, qt.IsNil)
			c.Assert(dsn, qt.Equals, tt.expected)
		})
	}

	t.Run("unknown storage", func(t *testing.T) {
		c := qt.New(t)

		cfg := config.Config{Storage: "redis"}
		_, err := cfg.DSN()
		c.Assert(err, qt.ErrorMatches, "unknown storage type: redis")
	})
}

func TestLoadLocations(t *testing.T) {
	c := qt.New(t)
	dir := c.TempDir()

	path := writeFile(c, dir, "locations.yaml", `
locations:
  options:
    - code: US
      label: United States
    - code: DE
      label: Germany
`)

	locations, err := config.LoadLocations(path, false)
	c.Assert(err, qt.IsNil)
	c.Assert(locations.Options(), qt.DeepEquals, []config.Location{
		{Code: "US", Label: "United States"},
		{Code: "DE", Label: "Germany"},
	})
	c.Assert(locations.First(), qt.Equals, "US")
	c.Assert(locations.Has("DE"), qt.IsTrue)
	c.Assert(locations.Has("de"), qt.IsFalse)
}

func TestLoadLocationsRejectsDuplicates(t *testing.T) {
	c := qt.New(t)
	dir := c.TempDir()

	path := writeFile(c, dir, "locations.yaml", `
locations:
  options:
    - code: US
      label: United States
    - code: US
      label: USA
`)

	_, err := config.LoadLocations(path, false)
	c.Assert(err, qt.ErrorMatches, `duplicate location code "US"`)
}

func TestLoadLocationsMissingFile(t *testing.T) {
	c := qt.New(t)

	_, err := config.LoadLocations(filepath.Join(c.TempDir(), "nope.yaml"), false)
	c.Assert(err, qt.ErrorMatches, "read locations config: .*")
}

func TestLocationsSetChangesMembership(t *testing.T) {
	c := qt.New(t)

	locations := config.NewLocations(config.Location{Code: "US", Label: "United States"})
	c.Assert(locations.Has("JP"), qt.IsFalse)

	locations.Set([]config.Location{{Code: "JP", Label: "Japan"}})
	c.Assert(locations.Has("JP"), qt.IsTrue)
	c.Assert(locations.Has("US"), qt.IsFalse)

	label, ok := locations.Label("JP")
	c.Assert(ok, qt.IsTrue)
	c.Assert(label, qt.Equals, "Japan")
}

func TestEmptyLocations(t *testing.T) {
	c := qt.New(t)

	locations := config.NewLocations()
	c.Assert(locations.First(), qt.Equals, "")
	c.Assert(locations.Options(), qt.HasLen, 0)
}
