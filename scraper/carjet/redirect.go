package carjet

import (
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var redirectPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:window\.|document\.|top\.|self\.)?location\.(?:replace|assign)\(\s*["']([^"']+)["']\s*\)`),
	regexp.MustCompile(`(?:^|[\s;{(,>])(?:window\.|document\.|top\.|self\.)?location(?:\.href)?\s*=\s*["']([^"']+)["']`),
}

var refreshURLRegexp = regexp.MustCompile(`(?i)^\s*\d*\s*;?\s*url\s*=\s*['"]?([^'"]+)['"]?\s*$`)

// ExtractRedirectTarget finds the client-side navigation instruction on a
// transitional page and returns its absolute URL, or "" when there is none.
func ExtractRedirectTarget(body, pageURL string) string {
	target := ""
	for _, re := range redirectPatterns {
		if m := re.FindStringSubmatch(body); len(m) == 2 {
			target = m[1]
			break
		}
	}
	if target == "" {
		target = metaRefreshTarget(body)
	}
	if target == "" {
		return ""
	}

	target = strings.ReplaceAll(target, `\/`, "/")
	target = html.UnescapeString(strings.TrimSpace(target))
	return resolveAgainst(pageURL, target)
}

func metaRefreshTarget(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}
	target := ""
	doc.Find("meta[http-equiv]").EachWithBreak(func(_ int, m *goquery.Selection) bool {
		if !strings.EqualFold(m.AttrOr("http-equiv", ""), "refresh") {
			return true
		}
		if g := refreshURLRegexp.FindStringSubmatch(m.AttrOr("content", "")); len(g) == 2 {
			target = g[1]
			return false
		}
		return true
	})
	return target
}

func resolveAgainst(base, ref string) string {
	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil || base == "" {
		return refURL.String()
	}
	return baseURL.ResolveReference(refURL).String()
}
