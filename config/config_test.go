package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/miyuchina/catalog/catalog"
	"github.com/stretchr/testify/require"
)

// chdir keeps a developer's .env out of the tests.
func chdir(t *testing.T, dir string) {
	t.Helper()
	previous, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(previous) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "postgres", cfg.Store)
	require.Equal(t, 1, cfg.Workers)
	require.Equal(t, 24*time.Hour, cfg.CacheTTL)
	require.Equal(t, "first", cfg.Dedup)
	require.Empty(t, cfg.CacheDir)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_CONNECTION_STRING", "postgres://localhost/catalog")
	t.Setenv("CATALOG_STORE", "sqlite")
	t.Setenv("CATALOG_WORKERS", "4")
	t.Setenv("CATALOG_CACHE_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "postgres://localhost/catalog", cfg.DatabaseConnectionString)
	require.Equal(t, "sqlite", cfg.Store)
	require.Equal(t, 4, cfg.Workers)
	require.Equal(t, time.Hour, cfg.CacheTTL)
}

func TestLoadRejectsUnknownValues(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("CATALOG_STORE", "mysql")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("CATALOG_STORE", "sqlite")
	t.Setenv("CATALOG_DEDUP", "last")
	_, err = Load()
	require.Error(t, err)
}

func TestTerms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`terms:
  - id: "1193"
    name: Fall 2019
  - id: "1201"
    name: Spring 2020
    url: https://mirror.example.edu/list/?strm=1201
`), 0o644))

	file, err := ReadTerms(path)
	require.NoError(t, err)
	require.Len(t, file.Terms, 2)

	listURL := "https://catalog.example.edu/list/?Action=Search&strm="

	terms, err := file.Select(listURL, nil)
	require.NoError(t, err)
	require.Equal(t, []catalog.Term{
		{ID: "1193", ListURL: "https://catalog.example.edu/list/?Action=Search&strm=1193"},
		{ID: "1201", ListURL: "https://mirror.example.edu/list/?strm=1201"},
	}, terms)

	terms, err = file.Select(listURL, []string{"1201", "1205"})
	require.NoError(t, err)
	require.Equal(t, []catalog.Term{
		{ID: "1201", ListURL: "https://mirror.example.edu/list/?strm=1201"},
		{ID: "1205", ListURL: "https://catalog.example.edu/list/?Action=Search&strm=1205"},
	}, terms)
}

func TestTermsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terms.yaml")
	file := &TermsFile{Terms: []TermEntry{{ID: "1193", Name: "Fall 2019"}}}
	require.NoError(t, WriteTerms(path, file))

	read, err := ReadTerms(path)
	require.NoError(t, err)
	require.Equal(t, file, read)
}

func TestTermsRequireID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terms.yaml")
	require.NoError(t, os.WriteFile(path, []byte("terms:\n  - name: Fall 2019\n"), 0o644))

	_, err := ReadTerms(path)
	require.Error(t, err)
}
