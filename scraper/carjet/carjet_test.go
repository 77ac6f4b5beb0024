package carjet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"carhire-scraper/config"
	"carhire-scraper/models"
	"carhire-scraper/utils"
)

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func testConfig(base string) *config.Config {
	return &config.Config{
		BaseURL:         base,
		EntryURLs:       config.DefaultEntryURLs(base),
		Language:        "pt",
		Currency:        "EUR",
		PrimaryStrategy: config.StrategyBrowser,
		FallbackEnabled: true,
		PollAttempts:    3,
		PollDelays:      []time.Duration{0},
		SessionTimeout:  5 * time.Second,
		StepRetries:     1,
		SearchParam:     "s",
		BatchParam:      "b",
		WarningParam:    "war",
		PriceMin:        5,
		PriceMax:        15000,
	}
}

func testAcquisition() models.AcquisitionRequest {
	pickup := time.Date(2026, 11, 10, 10, 0, 0, 0, time.UTC)
	return models.AcquisitionRequest{
		Location:  "Faro",
		SiteNames: map[string]string{"pt": "Faro Aeroporto (FAO)"},
		Pickup:    pickup,
		Dropoff:   pickup.Add(3 * 24 * time.Hour),
		Language:  "pt",
		Currency:  "EUR",
	}
}

// submittedSession walks a fresh session up to Submitted.
func submittedSession(t *testing.T, currentURL, html string) *models.FormSession {
	t.Helper()
	s := models.NewFormSession(testAcquisition(), models.IdentityProfile{}, "test")
	for _, st := range []models.SessionState{
		models.StateCookiesHandled, models.StateLocationEntered, models.StateSuggestionSelected,
		models.StateDatesFilled, models.StateSubmitted,
	} {
		require.NoError(t, s.Transition(st, ""))
	}
	s.CurrentURL, s.HTML = currentURL, html
	return s
}

// stubStrategy ends every session in a fixed state.
type stubStrategy struct {
	name    string
	calls   int
	outcome func(s *models.FormSession)
	fetcher Fetcher
}

func (st *stubStrategy) Name() string { return st.name }

func (st *stubStrategy) Drive(ctx context.Context, req models.AcquisitionRequest, profile models.IdentityProfile) (*models.FormSession, Fetcher) {
	st.calls++
	s := models.NewFormSession(req, profile, st.name)
	st.outcome(s)
	return s, st.fetcher
}

func failWith(err error) func(s *models.FormSession) {
	return func(s *models.FormSession) { s.Fail(err) }
}

func submitTo(url, html string) func(s *models.FormSession) {
	return func(s *models.FormSession) {
		for _, st := range []models.SessionState{
			models.StateCookiesHandled, models.StateLocationEntered, models.StateSuggestionSelected,
			models.StateDatesFilled, models.StateSubmitted,
		} {
			_ = s.Transition(st, "")
		}
		s.CurrentURL, s.HTML = url, html
	}
}

func newStubScraper(cfg *config.Config, primary, fallback *stubStrategy) *Scraper {
	sc := New(cfg, utils.NewDiscardLogger())
	sc.strategies = map[string]Strategy{
		config.StrategyBrowser: primary,
		config.StrategyDirect:  fallback,
	}
	sc.resolver.sleep = noSleep
	return sc
}

const carsPage = `<html><body><section class="newcarlist">
  <article data-prv="AUP">
    <h2>Renault Clio ou similar</h2>
    <span class="price total">45,00 €</span>
  </article>
  <article data-prv="KED">
    <h2>Fiat 500 Cabrio</h2>
    <span class="price total">3,00 €</span>
  </article>
</section></body></html>`

func TestAcquire_FallsBackOnceWithFreshProfile(t *testing.T) {
	cfg := testConfig("http://carjet.test")
	primary := &stubStrategy{name: "browser", outcome: failWith(models.ErrLocationUnresolved)}
	fallback := &stubStrategy{name: "direct", outcome: submitTo("http://carjet.test/pt/do/list/pt?s=1&b=2", carsPage)}

	out := newStubScraper(cfg, primary, fallback).Acquire(context.Background(), testAcquisition())

	require.Equal(t, models.StatusSuccess, out.Status)
	require.Equal(t, "direct", out.Strategy)
	require.Equal(t, 1, primary.calls)
	require.Equal(t, 1, fallback.calls)
	require.Len(t, out.Listings, 1)
	require.Equal(t, "Renault Clio", out.Listings[0].Name)
	require.Equal(t, models.GroupE1, out.Listings[0].Group)
	require.Equal(t, "Faro", out.Listings[0].Location)
}

func TestAcquire_NoAvailabilityIsNotRetried(t *testing.T) {
	cfg := testConfig("http://carjet.test")
	primary := &stubStrategy{name: "browser", outcome: submitTo("http://carjet.test/pt/do/list/pt?war=1", "")}
	fallback := &stubStrategy{name: "direct", outcome: failWith(errors.New("unused"))}

	out := newStubScraper(cfg, primary, fallback).Acquire(context.Background(), testAcquisition())

	require.Equal(t, models.StatusNoAvailability, out.Status)
	require.NoError(t, out.Err)
	require.Empty(t, out.Listings)
	require.Equal(t, 0, fallback.calls)
}

func TestAcquire_FallbackDisabled(t *testing.T) {
	cfg := testConfig("http://carjet.test")
	cfg.FallbackEnabled = false
	primary := &stubStrategy{name: "browser", outcome: failWith(models.ErrLocationUnresolved)}
	fallback := &stubStrategy{name: "direct", outcome: failWith(errors.New("unused"))}

	out := newStubScraper(cfg, primary, fallback).Acquire(context.Background(), testAcquisition())

	require.Equal(t, models.StatusFailure, out.Status)
	require.ErrorIs(t, out.Err, models.ErrLocationUnresolved)
	require.Equal(t, 0, fallback.calls)
}

func TestAcquire_BothStrategiesFail(t *testing.T) {
	cfg := testConfig("http://carjet.test")
	primary := &stubStrategy{name: "browser", outcome: failWith(models.ErrLocationUnresolved)}
	fallback := &stubStrategy{name: "direct", outcome: submitTo("http://carjet.test/pt/do/wait", "<p>nothing here</p>")}

	out := newStubScraper(cfg, primary, fallback).Acquire(context.Background(), testAcquisition())

	require.Equal(t, models.StatusFailure, out.Status)
	require.Equal(t, "direct", out.Strategy)
	require.ErrorIs(t, out.Err, models.ErrNoRedirectTarget)
	require.Equal(t, 1, primary.calls)
	require.Equal(t, 1, fallback.calls)
}

func TestAcquire_RejectsInvalidRequest(t *testing.T) {
	cfg := testConfig("http://carjet.test")
	primary := &stubStrategy{name: "browser", outcome: failWith(errors.New("unused"))}
	fallback := &stubStrategy{name: "direct", outcome: failWith(errors.New("unused"))}

	req := testAcquisition()
	req.Dropoff = req.Pickup

	out := newStubScraper(cfg, primary, fallback).Acquire(context.Background(), req)
	require.Equal(t, models.StatusFailure, out.Status)
	require.Error(t, out.Err)
	require.Equal(t, 0, primary.calls)
}

func TestAcquire_PrimaryStrategyFromConfig(t *testing.T) {
	cfg := testConfig("http://carjet.test")
	cfg.PrimaryStrategy = config.StrategyDirect
	browser := &stubStrategy{name: "browser", outcome: failWith(errors.New("unused"))}
	direct := &stubStrategy{name: "direct", outcome: submitTo("http://carjet.test/pt/do/list/pt?s=1&b=2", carsPage)}

	out := newStubScraper(cfg, browser, direct).Acquire(context.Background(), testAcquisition())
	require.Equal(t, models.StatusSuccess, out.Status)
	require.Equal(t, 0, browser.calls)
}

func TestFailSession_DeadlineBecomesTimeout(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	s := models.NewFormSession(testAcquisition(), models.IdentityProfile{}, "test")
	require.False(t, advance(ctx, s, models.StateCookiesHandled, ""))
	require.Equal(t, models.StateFailed, s.State)
	require.ErrorIs(t, s.Err, models.ErrSessionTimeout)
	require.True(t, s.Released())
}
