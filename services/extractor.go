package services

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"carhire-scraper/models"
	"carhire-scraper/utils"
)

// blockSelectors are tried in order; the first one that matches any element
// defines the listing blocks of the page.
var blockSelectors = []string{
	"article.car",
	"section.newcarlist article",
	"li.car-item",
	"div.car-result",
	"[data-car]",
}

// nameSelectors are tried in order before falling back to raw text fragments.
var nameSelectors = []string{
	"h1", "h2", "h3", "h4",
	".car-name", ".titleCar",
	"[class*='title']", "[class*='name']",
}

// sizeLabels are category captions that also read as a brand.
var sizeLabels = map[string]bool{"mini": true}

type priceRole int

const (
	rolePlain priceRole = iota
	roleTotal
	rolePerDay
	roleStruck
)

type priceCandidate struct {
	node     *html.Node
	text     string
	value    float64
	currency string
	role     priceRole
}

var (
	perDayClassTokens = map[string]bool{
		"day": true, "dia": true, "daily": true, "diario": true, "jour": true,
		"perday": true, "pday": true, "night": true,
	}
	// perDayClassPhrases match whole hyphenated class values; "tag" alone
	// is too common ("price-tag") to mean the German day.
	perDayClassPhrases = []string{"per-day", "pro-tag", "per-tag", "pro_tag"}
	perDayTextMarkers = []string{"/dia", "/día", "/day", "/jour", "/tag", "/giorno", "por dia", "por día", "per day", "par jour", "pro tag", "al giorno"}
	struckClassTokens = map[string]bool{
		"old": true, "strike": true, "striked": true, "before": true, "antes": true,
		"crossed": true, "was": true, "previous": true,
	}

	automaticWords = map[string]bool{
		"automatic": true, "automatico": true, "automatica": true,
		"automatique": true, "automatik": true, "automatisch": true,
	}
	manualWords = map[string]bool{
		"manual": true, "manuel": true, "manuell": true, "manuale": true,
		"schaltgetriebe": true,
	}
	automaticIconMarkers = []string{
		"ico-auto", "icon-auto", "ico_auto", "transmission-auto", "gear-auto",
		"caja-automatica", "caixa-automatica", "automatic",
	}
)

// Extractor turns results markup into raw listings.
type Extractor struct {
	logger *utils.Logger

	PriceMin        float64
	PriceMax        float64
	DefaultCurrency string
}

// NewExtractor creates an Extractor accepting prices within [priceMin, priceMax].
func NewExtractor(logger *utils.Logger, priceMin, priceMax float64, currency string) *Extractor {
	return &Extractor{
		logger:          logger,
		PriceMin:        priceMin,
		PriceMax:        priceMax,
		DefaultCurrency: currency,
	}
}

// Extract parses markup into raw listings in document order. Blocks
// missing a vehicle name or an acceptable price are skipped; markup
// without listing blocks yields an empty slice.
func (e *Extractor) Extract(markup string) []*models.RawListing {
	return e.ExtractWithBase(markup, "")
}

// ExtractWithBase is Extract with relative photo URLs resolved against pageURL.
func (e *Extractor) ExtractWithBase(markup, pageURL string) []*models.RawListing {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		e.logger.Warn("[extractor] Could not parse markup: %v", err)
		return []*models.RawListing{}
	}

	var base *url.URL
	if pageURL != "" {
		base, _ = url.Parse(pageURL)
	}

	var blocks *goquery.Selection
	for _, selector := range blockSelectors {
		found := doc.Find(selector)
		if found.Length() > 0 {
			e.logger.Debug("[extractor] Found %d blocks using selector: %s", found.Length(), selector)
			blocks = found
			break
		}
	}
	if blocks == nil {
		e.logger.Debug("[extractor] No listing blocks in document")
		return []*models.RawListing{}
	}

	out := make([]*models.RawListing, 0, blocks.Length())
	skipped := 0
	blocks.Each(func(i int, block *goquery.Selection) {
		listing, reason := e.parseBlock(block, base)
		if listing == nil {
			skipped++
			e.logger.Debug("[extractor] Skipping block %d: %s", i, reason)
			return
		}
		listing.Position = i
		out = append(out, listing)
	})

	e.logger.Info("[extractor] Extracted %d listings (skipped %d blocks)", len(out), skipped)
	return out
}

func (e *Extractor) parseBlock(block *goquery.Selection, base *url.URL) (*models.RawListing, string) {
	fragments := textFragments(block)

	name := blockName(block, fragments)
	photo, alt := pickPhoto(block, base)
	if alt != "" && ContainsBrand(alt) {
		altName := CleanDisplayName(alt)
		switch {
		case name == "":
			name = altName
		case strings.HasPrefix(strings.ToLower(altName), strings.ToLower(name)+" "):
			name = altName
		}
	}
	if name == "" {
		return nil, "no vehicle name"
	}

	best, ok := e.pickPrice(block)
	if !ok {
		return nil, "no acceptable price for " + name
	}

	code, supplier := pickSupplier(block)

	return &models.RawListing{
		Name:         name,
		SupplierCode: code,
		SupplierName: supplier,
		PriceText:    best.text,
		Price:        best.value,
		Currency:     best.currency,
		PhotoURL:     photo,
		Transmission: detectTransmission(block, fragments),
	}, ""
}

// textFragments returns the block's text nodes in document order.
func textFragments(sel *goquery.Selection) []string {
	var out []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := collapseSpace(n.Data); t != "" {
				out = append(out, t)
			}
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return out
}

func blockName(block *goquery.Selection, fragments []string) string {
	for _, selector := range nameSelectors {
		name := ""
		block.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if text := collapseSpace(s.Text()); isVehicleName(text) {
				name = CleanDisplayName(text)
				return false
			}
			return true
		})
		if name != "" {
			return name
		}
	}
	for _, f := range fragments {
		if isVehicleName(f) {
			return CleanDisplayName(f)
		}
	}
	return ""
}

// isVehicleName reports whether text names a vehicle rather than a size
// caption such as "Mini".
func isVehicleName(text string) bool {
	return ContainsBrand(text) && !sizeLabels[normalizeText(text)]
}

func pickSupplier(block *goquery.Selection) (string, string) {
	for _, attr := range []string{"data-prv", "data-supplier", "data-provider"} {
		val, ok := block.Attr(attr)
		if !ok {
			val, ok = block.Find("[" + attr + "]").First().Attr(attr)
		}
		if ok && strings.TrimSpace(val) != "" {
			val = strings.TrimSpace(val)
			if name, known := SupplierName(val); known {
				return strings.ToUpper(val), name
			}
			if code, name := supplierFromLabel(val); code != "" {
				return code, name
			}
			return strings.ToUpper(val), ""
		}
	}

	code, name := "", ""
	block.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src := imageSource(img)
		if c := supplierCodeFromPath(src); c != "" {
			code = c
			name, _ = SupplierName(c)
			return false
		}
		hint := strings.ToLower(src + " " + img.AttrOr("class", ""))
		if !strings.Contains(hint, "logo") && !strings.Contains(hint, "supplier") && !strings.Contains(hint, "prv") {
			return true
		}
		for _, label := range []string{img.AttrOr("alt", ""), img.AttrOr("title", "")} {
			if c, n := supplierFromLabel(label); c != "" {
				code, name = c, n
				return false
			}
		}
		return true
	})
	return code, name
}

func (e *Extractor) pickPrice(block *goquery.Selection) (priceCandidate, bool) {
	var candidates []priceCandidate
	block.Find("*").Each(func(_ int, el *goquery.Selection) {
		text := collapseSpace(el.Text())
		if text == "" || !strings.ContainsAny(text, "0123456789") {
			return
		}
		value, currency, ok := ParsePrice(text)
		if !ok {
			return
		}
		if currency == "" {
			currency = strings.ToUpper(el.AttrOr("data-currency", ""))
		}
		if currency == "" {
			return
		}
		candidates = append(candidates, priceCandidate{
			node:     el.Nodes[0],
			text:     text,
			value:    value,
			currency: currency,
			role:     priceRoleOf(el, block, text),
		})
	})

	var deepest []priceCandidate
	for i, c := range candidates {
		inner := false
		for j, other := range candidates {
			if i != j && isAncestor(c.node, other.node) {
				inner = true
				break
			}
		}
		if !inner {
			deepest = append(deepest, c)
		}
	}

	for _, want := range []priceRole{roleTotal, rolePlain} {
		for _, c := range deepest {
			if c.role == want && c.value > 0 && c.value >= e.PriceMin && c.value <= e.PriceMax {
				if c.currency == "" {
					c.currency = e.DefaultCurrency
				}
				return c, true
			}
		}
	}
	return priceCandidate{}, false
}

func isAncestor(ancestor, n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// priceRoleOf classifies a price element using its own and its ancestors'
// markup up to the block boundary.
func priceRoleOf(el, block *goquery.Selection, text string) priceRole {
	lowerText := strings.ToLower(text)
	var tokens []string
	hints := ""
	struckTag := false
	stop := block.Nodes[0]
	for n := el.Nodes[0]; n != nil && n != stop; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		switch n.Data {
		case "del", "s", "strike":
			struckTag = true
		}
		for _, a := range n.Attr {
			switch a.Key {
			case "class", "id", "data-price-type", "data-type":
				tokens = append(tokens, splitTokens(a.Val)...)
				hints += " " + strings.ToLower(a.Val)
			case "style":
				hints += " " + strings.ToLower(a.Val)
			}
		}
	}

	if struckTag || strings.Contains(hints, "line-through") || anyToken(tokens, struckClassTokens) {
		return roleStruck
	}
	if anyToken(tokens, perDayClassTokens) {
		return rolePerDay
	}
	for _, phrase := range perDayClassPhrases {
		if strings.Contains(hints, phrase) {
			return rolePerDay
		}
	}
	for _, m := range perDayTextMarkers {
		if strings.Contains(lowerText, m) {
			return rolePerDay
		}
	}
	if strings.Contains(hints, "total") || strings.Contains(lowerText, "total") {
		return roleTotal
	}
	return rolePlain
}

func splitTokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '\t' || r == '\n'
	})
}

func anyToken(tokens []string, set map[string]bool) bool {
	for _, t := range tokens {
		if set[t] {
			return true
		}
	}
	return false
}

func imageSource(img *goquery.Selection) string {
	for _, attr := range []string{"src", "data-src", "data-original", "data-lazy"} {
		if v := strings.TrimSpace(img.AttrOr(attr, "")); v != "" && !strings.HasPrefix(v, "data:") {
			return v
		}
	}
	return ""
}

// pickPhoto returns the first vehicle photo in the block and its alt text.
func pickPhoto(block *goquery.Selection, base *url.URL) (string, string) {
	photo, alt := "", ""
	block.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src := imageSource(img)
		if src == "" {
			return true
		}
		imgAlt := collapseSpace(img.AttrOr("alt", ""))
		hint := strings.ToLower(src + " " + img.AttrOr("class", ""))
		if strings.Contains(hint, "logo") || strings.Contains(hint, "/prv/") ||
			strings.Contains(hint, "icon") || strings.Contains(hint, "ico-") ||
			strings.Contains(hint, "ico_") || strings.Contains(hint, "sprite") ||
			strings.HasSuffix(strings.ToLower(src), ".svg") || supplierCodeFromPath(src) != "" {
			return true
		}
		path := strings.ToLower(src)
		looksLikeCar := strings.Contains(path, "/car") || strings.Contains(path, "cars/") ||
			strings.Contains(path, "vehic") || strings.Contains(path, "fleet") ||
			strings.Contains(path, "modelo") || ContainsBrand(imgAlt)
		if !looksLikeCar {
			return true
		}
		photo, alt = resolveURL(base, src), imgAlt
		return false
	})
	return photo, alt
}

func resolveURL(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

func detectTransmission(block *goquery.Selection, fragments []string) string {
	for _, attr := range []string{"data-transmission", "data-gearbox"} {
		val, ok := block.Attr(attr)
		if !ok {
			val, ok = block.Find("[" + attr + "]").First().Attr(attr)
		}
		if ok {
			if t := transmissionFromWords(normalizeText(val)); t != "" {
				return t
			}
		}
	}

	found := ""
	block.Find("img, i, span, svg, use").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		hint := strings.ToLower(strings.Join([]string{
			imageSource(s), s.AttrOr("class", ""), s.AttrOr("title", ""),
			s.AttrOr("href", ""), s.AttrOr("xlink:href", ""),
		}, " "))
		for _, marker := range automaticIconMarkers {
			if strings.Contains(hint, marker) {
				found = models.TransmissionAutomatic
				return false
			}
		}
		return true
	})
	if found != "" {
		return found
	}

	for _, f := range fragments {
		if t := transmissionFromWords(normalizeText(f)); t != "" {
			return t
		}
	}
	return ""
}

func transmissionFromWords(n string) string {
	for _, w := range strings.Fields(n) {
		if automaticWords[w] {
			return models.TransmissionAutomatic
		}
		if manualWords[w] {
			return models.TransmissionManual
		}
	}
	return ""
}
