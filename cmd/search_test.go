package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"carhire-scraper/config"
)

func TestParsePickup(t *testing.T) {
	now := time.Date(2026, 10, 19, 16, 45, 0, 0, time.UTC)
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"", time.Date(2026, 10, 26, 10, 0, 0, 0, time.UTC), false},
		{"+14d", time.Date(2026, 11, 2, 10, 0, 0, 0, time.UTC), false},
		{"2026-12-01 09:30", time.Date(2026, 12, 1, 9, 30, 0, 0, time.UTC), false},
		{"2026-12-01", time.Date(2026, 12, 1, 10, 0, 0, 0, time.UTC), false},
		{"+xd", time.Time{}, true},
		{"next week", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := parsePickup(tt.in, now)
		if tt.wantErr {
			require.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		require.True(t, tt.want.Equal(got), "%q: got %s want %s", tt.in, got, tt.want)
	}
}

func TestBuildRequest(t *testing.T) {
	catalog := config.Catalog{Locations: map[string]config.Location{
		"faro": {Query: "Faro", Sites: map[string]string{"pt": "Faro Aeroporto (FAO)"}},
	}}
	pickup := time.Date(2026, 11, 10, 10, 0, 0, 0, time.UTC)

	req := buildRequest(catalog, "FARO", pickup, 3, "pt", "eur")
	require.Equal(t, "Faro", req.Location)
	require.Equal(t, "Faro Aeroporto (FAO)", req.SiteName())
	require.Equal(t, "EUR", req.Currency)
	require.Equal(t, 3, req.Days())
	require.NoError(t, req.Validate())

	free := buildRequest(catalog, "Albufeira", pickup, 5, "en", "GBP")
	require.Equal(t, "Albufeira", free.Location)
	require.Equal(t, "Albufeira", free.SiteName())
}
