package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POLL_DELAYS", "")
	t.Setenv("CARJET_LANGUAGE", "")
	cfg := Load()

	require.Equal(t, "pt", cfg.Language)
	require.Equal(t, 8, cfg.PollAttempts)
	require.Equal(t, DefaultPollDelays(), cfg.PollDelays)
	require.Equal(t, 4*time.Second, cfg.PollDelays[0])
	require.Equal(t, 12*time.Second, cfg.PollDelays[len(cfg.PollDelays)-1])
	require.Equal(t, "https://www.carjet.com/pt/", cfg.EntryURL("pt"))
	require.Equal(t, "https://www.carjet.com/", cfg.EntryURL("xx"))
}

func TestLoadPollDelaysOverride(t *testing.T) {
	t.Setenv("POLL_DELAYS", "1, 2.5,3")
	cfg := Load()
	require.Equal(t, []time.Duration{time.Second, 2500 * time.Millisecond, 3 * time.Second}, cfg.PollDelays)

	t.Setenv("POLL_DELAYS", "1,x")
	cfg = Load()
	require.Equal(t, DefaultPollDelays(), cfg.PollDelays)
}

func TestLoadCatalogMergesLocalOverrides(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "locations.json5")
	require.NoError(t, os.WriteFile(base, []byte(`{
		// comment allowed
		locations: {
			Faro: { query: "Faro", sites: { pt: "Faro Aeroporto (FAO)" } },
		},
	}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "locations.local.json5"), []byte(`{
		locations: {
			porto: { query: "Porto", sites: { pt: "Porto Aeroporto (OPO)" } },
		},
	}`), 0o644))

	cat, err := LoadCatalog(base)
	require.NoError(t, err)
	require.Equal(t, []string{"faro", "porto"}, cat.Keys())

	loc, ok := cat.Lookup(" FARO ")
	require.True(t, ok)
	require.Equal(t, "Faro Aeroporto (FAO)", loc.Sites["pt"])
}

func TestLoadCatalogMissing(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
