package carjet

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"carhire-scraper/config"
	"carhire-scraper/models"
	"carhire-scraper/utils"
)

// Fetcher loads a URL within a session and returns where it ended up and
// the page markup.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (finalURL, body string, err error)
}

// URLRules classify result URLs by their query parameters.
type URLRules struct {
	SearchParam  string
	BatchParam   string
	WarningParam string
}

// Classify returns ResultsReady or NoAvailability for terminal result URLs
// and ResultsPending for anything else. The warning parameter wins over
// the search/batch pair.
func (r URLRules) Classify(rawURL string) models.SessionState {
	u, err := url.Parse(rawURL)
	if err != nil {
		return models.StateResultsPending
	}
	q := u.Query()
	if r.WarningParam != "" && q.Has(r.WarningParam) {
		return models.StateNoAvailability
	}
	if q.Has(r.SearchParam) && q.Has(r.BatchParam) {
		return models.StateResultsReady
	}
	return models.StateResultsPending
}

// defaultLoadingPhrases appear on the interstitial shown while the
// marketplace gathers prices.
var defaultLoadingPhrases = []string{
	"a procurar os melhores preços", "a pesquisar", "por favor aguarde",
	"searching for the best prices", "please wait",
	"buscando los mejores precios", "por favor espere",
	"recherche des meilleurs prix", "veuillez patienter",
	"suche nach den besten preisen", "bitte warten",
	"ricerca dei migliori prezzi", "attendere prego",
	"zoeken naar de beste prijzen", "even geduld",
}

// Resolver drives a submitted session to a terminal state by following the
// transitional redirect and polling the session-scoped results URL.
type Resolver struct {
	logger *utils.Logger
	jitter *utils.Jitter
	sleep  func(ctx context.Context, d time.Duration) error

	Rules          URLRules
	Delays         []time.Duration
	MaxAttempts    int
	Jitter         time.Duration
	MinResultBytes int
	LoadingPhrases []string
}

// NewResolver builds a Resolver from configuration.
func NewResolver(cfg *config.Config, logger *utils.Logger, jitter *utils.Jitter) *Resolver {
	return &Resolver{
		logger: logger,
		jitter: jitter,
		sleep:  utils.SleepContext,
		Rules: URLRules{
			SearchParam:  cfg.SearchParam,
			BatchParam:   cfg.BatchParam,
			WarningParam: cfg.WarningParam,
		},
		Delays:         cfg.PollDelays,
		MaxAttempts:    cfg.PollAttempts,
		Jitter:         cfg.PollJitter,
		MinResultBytes: cfg.MinResultBytes,
		LoadingPhrases: defaultLoadingPhrases,
	}
}

// Resolve moves a Submitted session to ResultsReady, NoAvailability or
// Failed. Sessions in any other state are returned untouched.
func (r *Resolver) Resolve(ctx context.Context, s *models.FormSession, f Fetcher) *models.FormSession {
	if s.State != models.StateSubmitted {
		return s
	}

	switch r.Rules.Classify(s.CurrentURL) {
	case models.StateNoAvailability:
		advance(ctx, s, models.StateNoAvailability, s.CurrentURL)
		return s
	case models.StateResultsReady:
		if !r.stillLoading(s.HTML) {
			advance(ctx, s, models.StateResultsReady, s.CurrentURL)
			return s
		}
		s.Target = s.CurrentURL
	default:
		s.Target = ExtractRedirectTarget(s.HTML, s.CurrentURL)
	}

	if s.Target == "" {
		failSession(ctx, s, fmt.Errorf("%w at %s", models.ErrNoRedirectTarget, s.CurrentURL))
		return s
	}
	if f == nil {
		failSession(ctx, s, fmt.Errorf("resolve: session has no fetcher"))
		return s
	}
	r.logger.Debug("[resolver] Polling %s", s.Target)

	for attempt := 0; attempt < r.MaxAttempts; attempt++ {
		if !advance(ctx, s, models.StateResultsPending, fmt.Sprintf("poll %d", attempt+1)) {
			return s
		}
		if err := r.sleep(ctx, r.delay(attempt)); err != nil {
			failSession(ctx, s, fmt.Errorf("waiting for poll %d: %w", attempt+1, err))
			return s
		}

		finalURL, body, err := f.Fetch(ctx, s.Target)
		if err != nil {
			if ctx.Err() != nil {
				failSession(ctx, s, fmt.Errorf("poll %d: %w", attempt+1, err))
				return s
			}
			r.logger.Warn("[resolver] Poll %d/%d failed: %v", attempt+1, r.MaxAttempts, err)
			continue
		}
		s.CurrentURL, s.HTML = finalURL, body

		switch r.Rules.Classify(finalURL) {
		case models.StateNoAvailability:
			advance(ctx, s, models.StateNoAvailability, finalURL)
			return s
		case models.StateResultsReady:
			if !r.stillLoading(body) {
				advance(ctx, s, models.StateResultsReady, finalURL)
				return s
			}
		}

		if next := ExtractRedirectTarget(body, finalURL); next != "" && next != s.Target {
			r.logger.Debug("[resolver] Target moved to %s", next)
			s.Target = next
		}
		r.logger.Debug("[resolver] Poll %d/%d: results not ready (%d bytes)", attempt+1, r.MaxAttempts, len(body))
	}

	failSession(ctx, s, fmt.Errorf("%w after %d attempts, last url %s",
		models.ErrPollExhausted, r.MaxAttempts, s.CurrentURL))
	return s
}

// delay returns the wait before poll attempt (0-based); the last delay
// repeats once the sequence is exhausted.
func (r *Resolver) delay(attempt int) time.Duration {
	var d time.Duration
	if n := len(r.Delays); n > 0 {
		if attempt >= n {
			attempt = n - 1
		}
		d = r.Delays[attempt]
	}
	if r.Jitter > 0 && r.jitter != nil {
		d += r.jitter.Between(0, r.Jitter)
	}
	return d
}

// stillLoading reports whether body is the interstitial rather than the
// results: too short, or showing a loading phrase in its visible text.
func (r *Resolver) stillLoading(body string) bool {
	if len(body) < r.MinResultBytes {
		return true
	}
	if len(r.LoadingPhrases) == 0 {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return false
	}
	doc.Find("script, style, noscript").Remove()
	text := strings.ToLower(strings.Join(strings.Fields(doc.Text()), " "))
	for _, phrase := range r.LoadingPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
