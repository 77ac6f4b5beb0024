// Package scheduler runs the acquisition job table on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"carhire-scraper/config"
	"carhire-scraper/models"
	"carhire-scraper/storage"
	"carhire-scraper/utils"
)

// Job is one row of the job table: search Location (a catalog key)
// LeadDays ahead of the run, for RentalDays days.
type Job struct {
	Location   string
	LeadDays   int
	RentalDays int
	// PickupHour is the requested time of day for pickup and dropoff.
	PickupHour int
	Language   string
	Currency   string
}

func (j Job) String() string {
	return fmt.Sprintf("%s+%dd/%dd", j.Location, j.LeadDays, j.RentalDays)
}

// JobsFor builds the cross product of locations, lead days and rental
// lengths, in that order.
func JobsFor(locations []string, leadDays, rentalDays []int, pickupHour int, language, currency string) []Job {
	jobs := make([]Job, 0, len(locations)*len(leadDays)*len(rentalDays))
	for _, loc := range locations {
		for _, lead := range leadDays {
			for _, days := range rentalDays {
				jobs = append(jobs, Job{
					Location:   loc,
					LeadDays:   lead,
					RentalDays: days,
					PickupHour: pickupHour,
					Language:   language,
					Currency:   currency,
				})
			}
		}
	}
	return jobs
}

// Acquirer runs one acquisition. *carjet.Scraper satisfies it.
type Acquirer interface {
	Acquire(ctx context.Context, req models.AcquisitionRequest) *models.Outcome
}

// Options configures a Scheduler.
type Options struct {
	Clock    Clock
	Logger   *utils.Logger
	Catalog  config.Catalog
	Jobs     []Job
	Acquirer Acquirer
	Writer   storage.ListingWriter
	// Raw is optional; when set every run's raw blocks are dumped.
	Raw storage.RawListingWriter

	MaxConcurrency int
	RateLimitMs    int
}

// Scheduler turns the job table into acquisition requests and runs them
// through a worker pool.
type Scheduler struct {
	opts     Options
	inflight *utils.KeySet
}

// New validates the job table against the catalog.
func New(opts Options) (*Scheduler, error) {
	if opts.Clock == nil {
		opts.Clock = SystemClock(nil)
	}
	if opts.Logger == nil {
		opts.Logger = utils.NewLogger()
	}
	if opts.Acquirer == nil {
		return nil, fmt.Errorf("scheduler: no acquirer")
	}
	for _, j := range opts.Jobs {
		if _, ok := opts.Catalog.Lookup(j.Location); !ok {
			return nil, fmt.Errorf("scheduler: job %s: unknown location %q", j, j.Location)
		}
		if j.RentalDays < 1 || j.LeadDays < 0 {
			return nil, fmt.Errorf("scheduler: job %s: lead and rental days must be positive", j)
		}
	}
	return &Scheduler{opts: opts, inflight: utils.NewKeySet()}, nil
}

// Requests resolves every job against now. Pickup is LeadDays after now's
// date at PickupHour in the clock's zone.
func (s *Scheduler) Requests(now time.Time) []models.AcquisitionRequest {
	now = now.In(s.opts.Clock.Location())
	out := make([]models.AcquisitionRequest, 0, len(s.opts.Jobs))
	for _, j := range s.opts.Jobs {
		loc, _ := s.opts.Catalog.Lookup(j.Location)
		pickup := time.Date(now.Year(), now.Month(), now.Day()+j.LeadDays, j.PickupHour, 0, 0, 0, now.Location())
		query := loc.Query
		if strings.TrimSpace(query) == "" {
			query = j.Location
		}
		out = append(out, models.AcquisitionRequest{
			Location:  query,
			SiteNames: loc.Sites,
			Pickup:    pickup,
			Dropoff:   pickup.AddDate(0, 0, j.RentalDays),
			Language:  j.Language,
			Currency:  j.Currency,
		})
	}
	return out
}

// RunOnce acquires every job once and persists successful outcomes. The
// outcomes come back in job order; requests already in flight from an
// overlapping run are skipped and reported as nil.
func (s *Scheduler) RunOnce(ctx context.Context) []*models.Outcome {
	runID := uuid.NewString()
	logger := s.opts.Logger.With("run", runID[:8])
	reqs := s.Requests(s.opts.Clock.Now())
	logger.Info("[scheduler] Run starting with %d requests", len(reqs))

	outcomes := make([]*models.Outcome, len(reqs))
	pool := utils.NewWorkerPool(s.opts.MaxConcurrency, s.opts.RateLimitMs)
	var mu sync.Mutex
	counts := map[models.Status]int{}

	for i, req := range reqs {
		key := req.Key()
		release, ok := s.inflight.Claim(key)
		if !ok {
			logger.Warn("[scheduler] Skipping %s: already running", key)
			continue
		}
		i, req := i, req
		err := pool.Submit(ctx, func(ctx context.Context) {
			defer release()
			out := s.opts.Acquirer.Acquire(ctx, req)
			s.persist(ctx, logger, out)

			mu.Lock()
			outcomes[i] = out
			counts[out.Status]++
			mu.Unlock()
		})
		if err != nil {
			release()
			logger.Warn("[scheduler] Run cancelled before %s: %v", key, err)
			break
		}
	}
	pool.Wait()

	logger.Info("[scheduler] Run finished: %d success, %d no availability, %d failure",
		counts[models.StatusSuccess], counts[models.StatusNoAvailability], counts[models.StatusFailure])
	return outcomes
}

func (s *Scheduler) persist(ctx context.Context, logger *utils.Logger, out *models.Outcome) {
	if s.opts.Raw != nil && len(out.Raw) > 0 {
		if err := s.opts.Raw.WriteRaw(out.Request, out.Raw); err != nil {
			logger.Error("[scheduler] Raw dump for %q failed: %v", out.Request.Location, err)
		}
	}
	if s.opts.Writer == nil || out.Status != models.StatusSuccess || len(out.Listings) == 0 {
		return
	}
	if err := s.opts.Writer.Write(ctx, out.Listings); err != nil {
		logger.Error("[scheduler] Storing %d listings for %q failed: %v", len(out.Listings), out.Request.Location, err)
		return
	}
	logger.Debug("[scheduler] Stored %d listings for %q", len(out.Listings), out.Request.Location)
}

// Start registers RunOnce under spec and runs until ctx is done. Runs that
// would overlap a still-running one are skipped.
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	c := cron.New(
		cron.WithLocation(s.opts.Clock.Location()),
		cron.WithLogger(cronLogger{logger: s.opts.Logger}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger: s.opts.Logger})),
	)
	if _, err := c.AddFunc(spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("scheduler: spec %q: %w", spec, err)
	}
	c.Start()
	s.opts.Logger.Info("[scheduler] %d jobs scheduled on %q", len(s.opts.Jobs), spec)

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// cronLogger adapts the application logger to cron.Logger.
type cronLogger struct {
	logger *utils.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("[cron] %s %v", msg, keysAndValues)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("[cron] %s: %v %v", msg, err, keysAndValues)
}
