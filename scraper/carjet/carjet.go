// Package carjet acquires listings from the car-rental marketplace: it
// drives the search form, resolves the asynchronous results page and hands
// the markup to extraction and classification.
package carjet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carhire-scraper/config"
	"carhire-scraper/models"
	"carhire-scraper/scraper/identity"
	"carhire-scraper/services"
	"carhire-scraper/utils"
)

// Strategy fills and submits the search form for one session. The returned
// session is Submitted or Failed; the Fetcher polls within the same session
// and may be nil when the session never opened.
type Strategy interface {
	Name() string
	Drive(ctx context.Context, req models.AcquisitionRequest, profile models.IdentityProfile) (*models.FormSession, Fetcher)
}

// failSession moves s to Failed. A breached session deadline is reported as
// ErrSessionTimeout whatever step noticed it.
func failSession(ctx context.Context, s *models.FormSession, err error) {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, models.ErrSessionTimeout) {
		err = fmt.Errorf("%w in %s: %v", models.ErrSessionTimeout, s.State, err)
	}
	s.Fail(err)
}

// advance transitions s and fails it when the edge is illegal or the
// context is already done. It reports whether the session may continue.
func advance(ctx context.Context, s *models.FormSession, next models.SessionState, note string) bool {
	if err := ctx.Err(); err != nil && !next.Terminal() {
		failSession(ctx, s, fmt.Errorf("before %s: %w", next, err))
		return false
	}
	if err := s.Transition(next, note); err != nil {
		failSession(ctx, s, err)
		return false
	}
	return true
}

// Scraper runs one acquisition per request: identity, form drive, result
// resolution, extraction and classification.
type Scraper struct {
	cfg        *config.Config
	logger     *utils.Logger
	selector   *identity.Selector
	strategies map[string]Strategy
	resolver   *Resolver
	extractor  *services.Extractor
	cleaner    *services.Cleaner
	now        func() time.Time
}

// New wires a Scraper with both form strategies and the default vehicle
// table.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	jitter := utils.NewJitter(nil)
	classifier := services.NewClassifier(nil)
	return &Scraper{
		cfg:      cfg,
		logger:   logger,
		selector: identity.NewSelector(nil),
		strategies: map[string]Strategy{
			config.StrategyBrowser: NewBrowserStrategy(cfg, logger, jitter),
			config.StrategyDirect:  NewDirectStrategy(cfg, logger),
		},
		resolver:  NewResolver(cfg, logger, jitter),
		extractor: services.NewExtractor(logger, cfg.PriceMin, cfg.PriceMax, cfg.Currency),
		cleaner:   services.NewCleaner(logger, classifier, cfg.PriceMin, cfg.PriceMax),
		now:       time.Now,
	}
}

// order returns the strategies to try: the primary, then the other one when
// fallback is enabled.
func (sc *Scraper) order() []Strategy {
	primary := sc.cfg.PrimaryStrategy
	if _, ok := sc.strategies[primary]; !ok {
		primary = config.StrategyBrowser
	}
	out := []Strategy{sc.strategies[primary]}
	if !sc.cfg.FallbackEnabled {
		return out
	}
	for _, name := range []string{config.StrategyBrowser, config.StrategyDirect} {
		if st, ok := sc.strategies[name]; ok && name != primary {
			out = append(out, st)
			break
		}
	}
	return out
}

// Acquire runs the pipeline for req. Failures are reported in the Outcome;
// the fallback strategy runs once, with a fresh identity, only when the
// primary ends in Failed.
func (sc *Scraper) Acquire(ctx context.Context, req models.AcquisitionRequest) *models.Outcome {
	if err := req.Validate(); err != nil {
		return &models.Outcome{Request: req, Status: models.StatusFailure, Err: err}
	}

	var outcome *models.Outcome
	for i, st := range sc.order() {
		if i > 0 {
			sc.logger.Warn("[carjet] %s failed for %q (%v), falling back to %s",
				outcome.Strategy, req.Location, outcome.Err, st.Name())
		}
		outcome = sc.attempt(ctx, st, req)
		if outcome.Status != models.StatusFailure || ctx.Err() != nil {
			break
		}
	}

	switch outcome.Status {
	case models.StatusFailure:
		sc.logger.Error("[carjet] %s", outcome.Line())
	default:
		sc.logger.Info("[carjet] %s", outcome.Line())
	}
	return outcome
}

// attempt runs one strategy end to end under the session ceiling.
func (sc *Scraper) attempt(ctx context.Context, st Strategy, req models.AcquisitionRequest) *models.Outcome {
	if sc.cfg.SessionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sc.cfg.SessionTimeout)
		defer cancel()
	}

	profile := sc.selector.Select(req.Language)
	s, fetcher := st.Drive(ctx, req, profile)
	defer s.Release()

	if s.State == models.StateSubmitted {
		sc.resolver.Resolve(ctx, s, fetcher)
	}
	if !s.State.Terminal() {
		failSession(ctx, s, fmt.Errorf("%s stopped in %s", st.Name(), s.State))
	}

	outcome := models.OutcomeFromSession(s)
	if outcome.Status != models.StatusSuccess {
		return outcome
	}

	raw := sc.extractor.ExtractWithBase(s.HTML, s.CurrentURL)
	listings := sc.cleaner.Clean(raw, req, sc.now())
	outcome.Raw = raw
	outcome.Listings = listings
	outcome.Dropped = len(raw) - len(listings)
	if len(raw) == 0 {
		sc.logger.Warn("[carjet] Results page for %q had no vehicle blocks", req.Location)
	}
	return outcome
}
