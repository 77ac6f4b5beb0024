package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"carhire-scraper/config"
	"carhire-scraper/models"
	"carhire-scraper/utils"
)

type fakeAcquirer struct {
	mu   sync.Mutex
	seen []models.AcquisitionRequest
}

func (f *fakeAcquirer) Acquire(_ context.Context, req models.AcquisitionRequest) *models.Outcome {
	f.mu.Lock()
	f.seen = append(f.seen, req)
	f.mu.Unlock()

	if req.Location == "Porto" {
		return &models.Outcome{Request: req, Status: models.StatusNoAvailability}
	}
	return &models.Outcome{
		Request:  req,
		Status:   models.StatusSuccess,
		Listings: []*models.ClassifiedListing{{Name: "Renault Clio", Price: 45, Group: models.GroupE1, Location: req.Location}},
		Raw:      []*models.RawListing{{Name: "Renault Clio", Price: 45}},
	}
}

type fakeWriter struct {
	mu     sync.Mutex
	writes [][]*models.ClassifiedListing
	raw    int
}

func (w *fakeWriter) Write(_ context.Context, listings []*models.ClassifiedListing) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writes = append(w.writes, listings)
	return nil
}

func (w *fakeWriter) WriteRaw(_ models.AcquisitionRequest, listings []*models.RawListing) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.raw += len(listings)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func testCatalog() config.Catalog {
	return config.Catalog{Locations: map[string]config.Location{
		"faro":  {Query: "Faro", Sites: map[string]string{"pt": "Faro Aeroporto (FAO)"}},
		"porto": {Query: "Porto", Sites: map[string]string{"pt": "Porto Aeroporto (OPO)"}},
	}}
}

func newTestScheduler(t *testing.T, jobs []Job, acq Acquirer, w *fakeWriter) *Scheduler {
	t.Helper()
	lisbon := time.FixedZone("WET", 0)
	s, err := New(Options{
		Clock:          FixedClock{At: time.Date(2026, 10, 19, 7, 0, 0, 0, lisbon)},
		Logger:         utils.NewDiscardLogger(),
		Catalog:        testCatalog(),
		Jobs:           jobs,
		Acquirer:       acq,
		Writer:         w,
		Raw:            w,
		MaxConcurrency: 2,
	})
	require.NoError(t, err)
	return s
}

func TestJobsFor(t *testing.T) {
	jobs := JobsFor([]string{"faro", "porto"}, []int{7, 14}, []int{3}, 10, "pt", "EUR")
	require.Len(t, jobs, 4)
	require.Equal(t, "faro+7d/3d", jobs[0].String())
	require.Equal(t, "porto+14d/3d", jobs[3].String())
}

func TestRequests_FromClock(t *testing.T) {
	jobs := JobsFor([]string{"faro"}, []int{7}, []int{3}, 10, "pt", "EUR")
	s := newTestScheduler(t, jobs, &fakeAcquirer{}, &fakeWriter{})

	reqs := s.Requests(s.opts.Clock.Now())
	require.Len(t, reqs, 1)

	want := models.AcquisitionRequest{
		Location:  "Faro",
		SiteNames: map[string]string{"pt": "Faro Aeroporto (FAO)"},
		Pickup:    time.Date(2026, 10, 26, 10, 0, 0, 0, s.opts.Clock.Location()),
		Dropoff:   time.Date(2026, 10, 29, 10, 0, 0, 0, s.opts.Clock.Location()),
		Language:  "pt",
		Currency:  "EUR",
	}
	if diff := cmp.Diff(want, reqs[0]); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, reqs[0].Validate())
}

func TestRunOnce_PersistsSuccessesOnly(t *testing.T) {
	acq := &fakeAcquirer{}
	w := &fakeWriter{}
	jobs := JobsFor([]string{"faro", "porto"}, []int{7}, []int{3, 7}, 10, "pt", "EUR")
	s := newTestScheduler(t, jobs, acq, w)

	outcomes := s.RunOnce(context.Background())

	require.Len(t, outcomes, 4)
	require.Equal(t, models.StatusSuccess, outcomes[0].Status)
	require.Equal(t, models.StatusNoAvailability, outcomes[2].Status)
	require.Len(t, acq.seen, 4)
	require.Len(t, w.writes, 2)
	require.Equal(t, 2, w.raw)
	require.Equal(t, 0, s.inflight.Len())
}

func TestRunOnce_SkipsRequestsInFlight(t *testing.T) {
	acq := &fakeAcquirer{}
	jobs := JobsFor([]string{"faro", "porto"}, []int{7}, []int{3}, 10, "pt", "EUR")
	s := newTestScheduler(t, jobs, acq, &fakeWriter{})

	busy := s.Requests(s.opts.Clock.Now())[0].Key()
	release, ok := s.inflight.Claim(busy)
	require.True(t, ok)
	defer release()

	outcomes := s.RunOnce(context.Background())
	require.Nil(t, outcomes[0])
	require.NotNil(t, outcomes[1])
	require.Len(t, acq.seen, 1)
	require.Equal(t, "Porto", acq.seen[0].Location)
}

func TestNew_RejectsUnknownLocation(t *testing.T) {
	_, err := New(Options{
		Logger:   utils.NewDiscardLogger(),
		Catalog:  testCatalog(),
		Jobs:     []Job{{Location: "madrid", LeadDays: 7, RentalDays: 3}},
		Acquirer: &fakeAcquirer{},
	})
	require.Error(t, err)
}

func TestStart_InvalidSpec(t *testing.T) {
	s := newTestScheduler(t, nil, &fakeAcquirer{}, &fakeWriter{})
	require.Error(t, s.Start(context.Background(), "not a cron spec"))
}
