package carjet

import (
	"context"
	"fmt"
	"time"

	"carhire-scraper/config"
	"carhire-scraper/models"
	"carhire-scraper/utils"
)

// timing holds the human-like waits of the browser drive. Every wait is a
// fixed minimum plus random spread.
type timing struct {
	keyMin, keySpread       time.Duration
	suggestPoll             time.Duration
	suggestPolls            int
	afterPickMin, afterPick time.Duration
	pauseMin, pauseMax      time.Duration
	scrollMin, scrollMax    int
	settleMin, settleSpread time.Duration
}

func defaultTiming() timing {
	return timing{
		keyMin: 60 * time.Millisecond, keySpread: 140 * time.Millisecond,
		suggestPoll: 400 * time.Millisecond, suggestPolls: 15,
		afterPickMin: 300 * time.Millisecond, afterPick: 400 * time.Millisecond,
		pauseMin: 800 * time.Millisecond, pauseMax: 2400 * time.Millisecond,
		scrollMin: 120, scrollMax: 420,
		settleMin: 3 * time.Second, settleSpread: 2 * time.Second,
	}
}

// BrowserStrategy fills and submits the search form in a real browser.
type BrowserStrategy struct {
	cfg    *config.Config
	logger *utils.Logger
	retry  *utils.RetryConfig
	jitter *utils.Jitter
	fields FieldNames
	open   pageOpener
	timing timing
}

// NewBrowserStrategy creates a BrowserStrategy launching Chrome per session.
func NewBrowserStrategy(cfg *config.Config, logger *utils.Logger, jitter *utils.Jitter) *BrowserStrategy {
	return &BrowserStrategy{
		cfg:    cfg,
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.StepRetries + 1,
			BaseDelay:   time.Second,
			Logger:      logger,
		},
		jitter: jitter,
		fields: DefaultFieldNames(),
		open:   chromeOpener(cfg),
		timing: defaultTiming(),
	}
}

func (b *BrowserStrategy) Name() string { return config.StrategyBrowser }

// Drive runs the form steps and returns the session in Submitted or Failed,
// together with the fetcher the resolver polls through.
func (b *BrowserStrategy) Drive(ctx context.Context, req models.AcquisitionRequest, profile models.IdentityProfile) (*models.FormSession, Fetcher) {
	s := models.NewFormSession(req, profile, b.Name())

	p, release, err := b.open(ctx, profile)
	if err != nil {
		failSession(ctx, s, fmt.Errorf("open browser: %w", err))
		return s, nil
	}
	s.OnRelease(release)

	b.logger.Info("[carjet] Browser session for %q as %s (%s, %s)",
		req.Location, profile.Device.Name, profile.Timezone, profile.AcceptLanguage)
	b.drive(ctx, s, p)
	return s, pageFetcher{p: p}
}

func (b *BrowserStrategy) drive(ctx context.Context, s *models.FormSession, p page) {
	req := s.Request

	// 1. Entry page.
	entry := b.cfg.EntryURL(req.Language)
	if err := b.retry.Do(ctx, "navigate-entry", func(context.Context) error {
		return p.Navigate(entry)
	}); err != nil {
		failSession(ctx, s, fmt.Errorf("navigate %s: %w", entry, err))
		return
	}

	// 2. Consent banner, never fatal.
	var consent string
	if err := p.Eval(call(rejectCookiesJS, cookieRejectKeywords, consentContainers), &consent); err != nil {
		b.logger.Warn("[carjet] Cookie handling failed: %v", err)
		consent = "error"
	}
	if !advance(ctx, s, models.StateCookiesHandled, "consent "+consent) {
		return
	}

	// 3. Location text.
	if err := b.retry.Do(ctx, "type-location", func(ctx context.Context) error {
		return b.typeLocation(ctx, p, req.Location)
	}); err != nil {
		failSession(ctx, s, fmt.Errorf("type location: %w", err))
		return
	}
	if !advance(ctx, s, models.StateLocationEntered, req.Location) {
		return
	}

	// 4. Autocomplete suggestion.
	if n := b.waitForSuggestions(ctx, p); n == 0 {
		b.logger.Warn("[carjet] No visible suggestions for %q, trying strategies anyway", req.Location)
	}
	picked, err := b.selectSuggestion(p, req)
	if err != nil {
		failSession(ctx, s, err)
		return
	}
	b.logger.Debug("[carjet] Suggestion picked via %s", picked)
	if err := b.jitter.Wait(ctx, b.timing.afterPickMin, b.timing.afterPick); err != nil {
		failSession(ctx, s, err)
		return
	}
	if !advance(ctx, s, models.StateSuggestionSelected, picked) {
		return
	}

	// 5. Dates and times.
	values := valuesFor(req, s.Profile)
	if err := b.retry.Do(ctx, "fill-dates", func(context.Context) error {
		return b.fillDates(p, values)
	}); err != nil {
		b.logger.Warn("[carjet] Date fields incomplete: %v", err)
	}
	if !advance(ctx, s, models.StateDatesFilled, values.pickupDate+" "+values.pickupTime) {
		return
	}

	// 6. Submit.
	if err := b.submit(ctx, p); err != nil {
		if ctx.Err() != nil {
			failSession(ctx, s, err)
			return
		}
		b.logger.Warn("[carjet] Submit step: %v", err)
	}
	if err := b.jitter.Wait(ctx, b.timing.settleMin, b.timing.settleSpread); err != nil {
		failSession(ctx, s, err)
		return
	}

	if err := b.retry.Do(ctx, "capture-page", func(context.Context) error {
		loc, err := p.Location()
		if err != nil {
			return err
		}
		html, err := p.HTML()
		if err != nil {
			return err
		}
		s.CurrentURL, s.HTML = loc, html
		return nil
	}); err != nil {
		failSession(ctx, s, fmt.Errorf("capture submitted page: %w", err))
		return
	}
	advance(ctx, s, models.StateSubmitted, s.CurrentURL)
}

func (b *BrowserStrategy) typeLocation(ctx context.Context, p page, text string) error {
	var selector string
	if err := p.Eval(call(focusLocationJS, b.fields.selectors(b.fields.Location)), &selector); err != nil {
		return err
	}
	if selector == "" {
		return fmt.Errorf("location field %q not found", b.fields.Location)
	}
	for _, r := range text {
		if err := p.SendKeys(selector, string(r)); err != nil {
			return err
		}
		if err := b.jitter.Wait(ctx, b.timing.keyMin, b.timing.keySpread); err != nil {
			return err
		}
	}
	return nil
}

// waitForSuggestions polls until the autocomplete list shows items or the
// poll budget runs out, returning the last count seen.
func (b *BrowserStrategy) waitForSuggestions(ctx context.Context, p page) int {
	count := 0
	for i := 0; i < b.timing.suggestPolls; i++ {
		if err := p.Eval(call(countSuggestionsJS, suggestionSelectors), &count); err != nil {
			b.logger.Debug("[carjet] Suggestion count failed: %v", err)
		}
		if count > 0 {
			return count
		}
		if err := utils.SleepContext(ctx, b.timing.suggestPoll); err != nil {
			return 0
		}
	}
	return count
}

func (b *BrowserStrategy) fillDates(p page, v formValues) error {
	f := b.fields
	entries := []fieldEntry{
		{Name: f.PickupDate, Selectors: f.selectors(f.PickupDate), Value: v.pickupDate},
		{Name: f.DropoffDate, Selectors: f.selectors(f.DropoffDate), Value: v.dropoffDate},
		{Name: f.PickupTime, Selectors: f.selectors(f.PickupTime), Value: v.pickupTime},
		{Name: f.DropoffTime, Selectors: f.selectors(f.DropoffTime), Value: v.dropoffTime},
	}
	var missing []string
	if err := p.Eval(call(fillFieldsJS, entries), &missing); err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("fields not set: %v", missing)
	}
	return nil
}

func (b *BrowserStrategy) submit(ctx context.Context, p page) error {
	if err := utils.SleepContext(ctx, b.jitter.Between(b.timing.pauseMin, b.timing.pauseMax)); err != nil {
		return err
	}
	px := b.timing.scrollMin + b.jitter.Intn(b.timing.scrollMax-b.timing.scrollMin+1)
	if err := p.Eval(call(scrollJS, px), nil); err != nil {
		b.logger.Debug("[carjet] Scroll failed: %v", err)
	}

	var how string
	err := b.retry.Do(ctx, "submit-form", func(context.Context) error {
		return p.Eval(call(submitSearchJS, formSelectors, submitSelectors, b.fields.selectors(b.fields.Location)), &how)
	})
	if err != nil {
		return err
	}
	if how == "none" {
		return fmt.Errorf("no search form or submit button found")
	}
	b.logger.Debug("[carjet] Form %s", how)
	return nil
}
