package carjet

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"carhire-scraper/config"
	"carhire-scraper/models"
	"carhire-scraper/utils"
)

// DirectStrategy submits the search form over a plain HTTP session: the
// entry page seeds cookies, the form is posted in one request, and results
// are polled with the same client.
type DirectStrategy struct {
	cfg    *config.Config
	logger *utils.Logger
	retry  *utils.RetryConfig
	fields FieldNames

	// RequestsPerSecond caps the session's request rate.
	RequestsPerSecond rate.Limit
	Timeout           time.Duration
}

// NewDirectStrategy creates a DirectStrategy with a one request per second
// budget.
func NewDirectStrategy(cfg *config.Config, logger *utils.Logger) *DirectStrategy {
	return &DirectStrategy{
		cfg:    cfg,
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.StepRetries + 1,
			BaseDelay:   time.Second,
			Logger:      logger,
		},
		fields:            DefaultFieldNames(),
		RequestsPerSecond: 1,
		Timeout:           30 * time.Second,
	}
}

func (d *DirectStrategy) Name() string { return config.StrategyDirect }

// newClient builds the per-session HTTP client carrying the profile.
func (d *DirectStrategy) newClient(profile models.IdentityProfile, entry *url.URL) (*resty.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(entry.Hostname()))
	client.SetTimeout(d.Timeout)

	client.SetHeader("User-Agent", profile.Device.UserAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("Accept-Language", profile.AcceptLanguage)
	if profile.Referrer != "" {
		client.SetHeader("Referer", profile.Referrer)
	}

	limiter := rate.NewLimiter(d.RequestsPerSecond, 2)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})
	return client, nil
}

// Drive performs the form steps over HTTP and returns the session in
// Submitted or Failed.
func (d *DirectStrategy) Drive(ctx context.Context, req models.AcquisitionRequest, profile models.IdentityProfile) (*models.FormSession, Fetcher) {
	s := models.NewFormSession(req, profile, d.Name())

	entryURL := d.cfg.EntryURL(req.Language)
	entry, err := url.Parse(entryURL)
	if err != nil {
		failSession(ctx, s, fmt.Errorf("entry url %q: %w", entryURL, err))
		return s, nil
	}
	client, err := d.newClient(profile, entry)
	if err != nil {
		failSession(ctx, s, fmt.Errorf("http session: %w", err))
		return s, nil
	}
	fetcher := &httpFetcher{client: client}
	s.OnRelease(func() { client.GetClient().CloseIdleConnections() })

	d.logger.Info("[carjet] Direct session for %q as %s", req.Location, profile.Device.Name)

	// Entry page: seeds session cookies and carries the form.
	var entryHTML, entryFinal string
	if err := d.retry.Do(ctx, "get-entry", func(ctx context.Context) error {
		entryFinal, entryHTML, err = fetcher.Fetch(ctx, entryURL)
		return err
	}); err != nil {
		failSession(ctx, s, fmt.Errorf("get %s: %w", entryURL, err))
		return s, fetcher
	}
	s.CurrentURL, s.HTML = entryFinal, entryHTML
	if !advance(ctx, s, models.StateCookiesHandled, "cookies seeded") {
		return s, fetcher
	}

	form, err := parseSearchForm(entryHTML, entryFinal, d.fields)
	if err != nil {
		failSession(ctx, s, err)
		return s, fetcher
	}

	values := valuesFor(req, profile)
	form.values.Set(d.fields.Location, req.Location)
	if !advance(ctx, s, models.StateLocationEntered, req.Location) {
		return s, fetcher
	}

	// No autocomplete over HTTP; the canonical site string stands in for
	// the picked suggestion.
	if strings.TrimSpace(values.site) == "" {
		failSession(ctx, s, fmt.Errorf("%w: empty site name", models.ErrLocationUnresolved))
		return s, fetcher
	}
	form.values.Set(d.fields.Location, values.site)
	if !advance(ctx, s, models.StateSuggestionSelected, "canonical "+values.site) {
		return s, fetcher
	}

	form.values.Set(d.fields.PickupDate, values.pickupDate)
	form.values.Set(d.fields.DropoffDate, values.dropoffDate)
	form.values.Set(d.fields.PickupTime, values.pickupTime)
	form.values.Set(d.fields.DropoffTime, values.dropoffTime)
	form.values.Set(d.fields.Language, values.language)
	form.values.Set(d.fields.Currency, values.currency)
	if !advance(ctx, s, models.StateDatesFilled, values.pickupDate+" "+values.pickupTime) {
		return s, fetcher
	}

	if err := d.retry.Do(ctx, "post-search", func(ctx context.Context) error {
		resp, err := client.R().
			SetContext(ctx).
			SetHeader("Referer", entryFinal).
			SetFormDataFromValues(form.values).
			Post(form.action)
		if err != nil {
			return err
		}
		if resp.IsError() {
			return fmt.Errorf("search post: status %d", resp.StatusCode())
		}
		s.CurrentURL, s.HTML = finalURL(resp, form.action), resp.String()
		return nil
	}); err != nil {
		failSession(ctx, s, fmt.Errorf("submit search: %w", err))
		return s, fetcher
	}

	advance(ctx, s, models.StateSubmitted, s.CurrentURL)
	return s, fetcher
}

// searchForm is the parsed booking form: where it posts and its default
// field values, hidden tokens included.
type searchForm struct {
	action string
	values url.Values
}

func parseSearchForm(body, pageURL string, fields FieldNames) (*searchForm, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse entry page: %w", err)
	}

	var form *goquery.Selection
	candidates := append([]string{fmt.Sprintf(`form:has([name="%s"])`, fields.Location)}, formSelectors...)
	for _, sel := range candidates {
		if found := doc.Find(sel).First(); found.Length() > 0 {
			form = found
			break
		}
	}
	if form == nil {
		return nil, fmt.Errorf("search form not found on %s", pageURL)
	}

	action := resolveAgainst(pageURL, form.AttrOr("action", ""))
	if action == "" {
		action = pageURL
	}

	values := url.Values{}
	form.Find("input[name], select[name], textarea[name]").Each(func(_ int, el *goquery.Selection) {
		name, _ := el.Attr("name")
		switch goquery.NodeName(el) {
		case "select":
			opt := el.Find("option[selected]").First()
			if opt.Length() == 0 {
				opt = el.Find("option").First()
			}
			values.Set(name, opt.AttrOr("value", strings.TrimSpace(opt.Text())))
		case "textarea":
			values.Set(name, el.Text())
		default:
			switch strings.ToLower(el.AttrOr("type", "text")) {
			case "submit", "button", "image", "reset", "file":
				return
			case "checkbox", "radio":
				if _, checked := el.Attr("checked"); !checked {
					return
				}
				values.Add(name, el.AttrOr("value", "on"))
				return
			}
			values.Set(name, el.AttrOr("value", ""))
		}
	})

	return &searchForm{action: action, values: values}, nil
}

// httpFetcher polls through the session's HTTP client so cookies carry over.
type httpFetcher struct {
	client *resty.Client
}

func (f *httpFetcher) Fetch(ctx context.Context, target string) (string, string, error) {
	resp, err := f.client.R().SetContext(ctx).Get(target)
	if err != nil {
		return "", "", err
	}
	if resp.IsError() {
		return "", "", fmt.Errorf("get %s: status %d", target, resp.StatusCode())
	}
	return finalURL(resp, target), string(bytes.TrimSpace(resp.Body())), nil
}

// finalURL returns the URL after redirects.
func finalURL(resp *resty.Response, requested string) string {
	if resp.RawResponse != nil && resp.RawResponse.Request != nil && resp.RawResponse.Request.URL != nil {
		return resp.RawResponse.Request.URL.String()
	}
	return requested
}
