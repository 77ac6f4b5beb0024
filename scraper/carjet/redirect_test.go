package carjet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExtractRedirectTarget(t *testing.T) {
	const page = "https://www.carjet.com/pt/do/search"
	tests := []struct {
		name string
		body string
		want string
	}{
		{"replace absolute", `<script>window.location.replace("https://www.carjet.com/do/list/pt?s=1&amp;b=2")</script>`,
			"https://www.carjet.com/do/list/pt?s=1&b=2"},
		{"href escaped slashes", `<script>var x=1; location.href = '\/pt\/do\/list?s=1&b=2';</script>`,
			"https://www.carjet.com/pt/do/list?s=1&b=2"},
		{"document location after tag", `<script>document.location="/pt/do/list?s=3&b=4"</script>`,
			"https://www.carjet.com/pt/do/list?s=3&b=4"},
		{"relative to page", `<script>location.assign('list?s=5&b=6')</script>`,
			"https://www.carjet.com/pt/do/list?s=5&b=6"},
		{"meta refresh", `<html><head><meta http-equiv="Refresh" content="0; url=/pt/do/list?s=9&amp;b=8"></head></html>`,
			"https://www.carjet.com/pt/do/list?s=9&b=8"},
		{"data attribute is not navigation", `<div data-location="/pt/faro">Faro</div>`, ""},
		{"nothing", `<html><body>Loading</body></html>`, ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ExtractRedirectTarget(tt.body, page))
		})
	}
}

func TestSnapSlot(t *testing.T) {
	day := func(h, m int) time.Time { return time.Date(2026, 11, 10, h, m, 0, 0, time.UTC) }
	tests := []struct {
		at     time.Time
		offset time.Duration
		want   string
	}{
		{day(10, 0), 0, "10:00"},
		{day(10, 10), 0, "10:00"},
		{day(10, 20), 0, "10:30"},
		{day(10, 0), 30 * time.Minute, "10:30"},
		{day(10, 0), -60 * time.Minute, "09:00"},
		{day(7, 0), 0, "08:00"},
		{day(8, 0), -60 * time.Minute, "08:00"},
		{day(22, 45), 0, "21:30"},
	}
	for _, tt := range tests {
		if got := snapSlot(tt.at, tt.offset); got != tt.want {
			t.Errorf("snapSlot(%s, %s) = %s, want %s", tt.at.Format("15:04"), tt.offset, got, tt.want)
		}
	}
}

func TestValuesFor(t *testing.T) {
	profile := testProfile()
	profile.TimeOffset = 30 * time.Minute

	v := valuesFor(testAcquisition(), profile)
	require.Equal(t, "Faro Aeroporto (FAO)", v.site)
	require.Equal(t, "10/11/2026", v.pickupDate)
	require.Equal(t, "13/11/2026", v.dropoffDate)
	require.Equal(t, "10:30", v.pickupTime)
	require.Equal(t, "10:30", v.dropoffTime)
	require.Equal(t, "PT", v.language)
	require.Equal(t, "EUR", v.currency)
}

func TestCallEncodesArguments(t *testing.T) {
	got := call("function f(a, b) {}", []string{`it's "quoted"`}, 3)
	require.Equal(t, `(function f(a, b) {})(["it's \"quoted\""], 3)`, got)
}
