package carjet

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"carhire-scraper/config"
	"carhire-scraper/models"
)

// page is the slice of a browser tab the driver needs. The tab is bound to
// its session context when opened.
type page interface {
	Navigate(url string) error
	Eval(script string, out interface{}) error
	SendKeys(selector, text string) error
	Location() (string, error)
	HTML() (string, error)
}

// pageOpener starts a tab presenting profile and returns it with the
// function that closes it.
type pageOpener func(ctx context.Context, profile models.IdentityProfile) (page, func(), error)

type chromePage struct {
	ctx context.Context
}

func (p *chromePage) Navigate(url string) error {
	return chromedp.Run(p.ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (p *chromePage) Eval(script string, out interface{}) error {
	return chromedp.Run(p.ctx, chromedp.Evaluate(script, out))
}

func (p *chromePage) SendKeys(selector, text string) error {
	return chromedp.Run(p.ctx, chromedp.SendKeys(selector, text, chromedp.ByQuery))
}

func (p *chromePage) Location() (string, error) {
	var loc string
	err := chromedp.Run(p.ctx, chromedp.Location(&loc))
	return loc, err
}

func (p *chromePage) HTML() (string, error) {
	var html string
	err := chromedp.Run(p.ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

// chromeOpener launches a dedicated browser per session so no cookies or
// cache leak between identities.
func chromeOpener(cfg *config.Config) pageOpener {
	return func(ctx context.Context, profile models.IdentityProfile) (page, func(), error) {
		chromeBin := cfg.ChromeBin
		if chromeBin == "" {
			chromeBin = findChromeBinary()
		}

		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", cfg.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-setuid-sandbox", true),
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
			chromedp.Flag("lang", profile.Language),
			chromedp.UserAgent(profile.Device.UserAgent),
			chromedp.WindowSize(int(profile.Device.Width), int(profile.Device.Height)),
		)
		if chromeBin != "" {
			opts = append(opts, chromedp.ExecPath(chromeBin))
		}

		allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
		tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
		release := func() {
			cancelTab()
			cancelAlloc()
		}

		if err := chromedp.Run(tabCtx, identityTasks(profile)); err != nil {
			release()
			return nil, nil, fmt.Errorf("apply identity %s: %w", profile.Device.Name, err)
		}
		return &chromePage{ctx: tabCtx}, release, nil
	}
}

// identityTasks applies the profile's fingerprint to the tab.
func identityTasks(profile models.IdentityProfile) chromedp.Tasks {
	d := profile.Device
	tasks := chromedp.Tasks{
		network.Enable(),
		emulation.SetUserAgentOverride(d.UserAgent).
			WithAcceptLanguage(profile.AcceptLanguage).
			WithPlatform(d.Platform),
		emulation.SetTimezoneOverride(profile.Timezone),
		emulation.SetLocaleOverride().WithLocale(localeOf(profile)),
		emulation.SetDeviceMetricsOverride(d.Width, d.Height, d.Scale, d.Mobile),
		emulation.SetAutomationOverride(false),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := cdppage.AddScriptToEvaluateOnNewDocument(hideWebdriverJS).Do(ctx)
			return err
		}),
	}
	if profile.Referrer != "" {
		tasks = append(tasks, network.SetExtraHTTPHeaders(network.Headers{"Referer": profile.Referrer}))
	}
	return tasks
}

// localeOf turns the first Accept-Language entry into an ICU locale.
func localeOf(profile models.IdentityProfile) string {
	first := strings.TrimSpace(strings.Split(profile.AcceptLanguage, ",")[0])
	if i := strings.Index(first, ";"); i >= 0 {
		first = first[:i]
	}
	if first == "" {
		first = profile.Language
	}
	return strings.ReplaceAll(first, "-", "_")
}

// pageFetcher polls result URLs through the session's own tab.
type pageFetcher struct {
	p page
}

func (f pageFetcher) Fetch(ctx context.Context, url string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	if err := f.p.Navigate(url); err != nil {
		return "", "", fmt.Errorf("navigate %s: %w", url, err)
	}
	loc, err := f.p.Location()
	if err != nil {
		return "", "", fmt.Errorf("read location: %w", err)
	}
	html, err := f.p.HTML()
	if err != nil {
		return "", "", fmt.Errorf("read html: %w", err)
	}
	return loc, html, nil
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
