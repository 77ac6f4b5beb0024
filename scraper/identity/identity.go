// Package identity picks the visitor fingerprint presented by a session.
package identity

import (
	"math/rand"
	"sync"
	"time"

	"carhire-scraper/models"
)

var devices = []models.Device{
	{
		Name:      "win-chrome-fhd",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		Platform:  "Win32",
		Width:     1920, Height: 1080, Scale: 1,
	},
	{
		Name:      "mac-chrome-retina",
		UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
		Platform:  "MacIntel",
		Width:     1440, Height: 900, Scale: 2,
	},
	{
		Name:      "linux-chrome-laptop",
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		Platform:  "Linux x86_64",
		Width:     1366, Height: 768, Scale: 1,
	},
	{
		Name:      "win-edge-laptop",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Edg/124.0.0.0",
		Platform:  "Win32",
		Width:     1536, Height: 864, Scale: 1.25,
	},
	{
		Name:      "mac-chrome-wide",
		UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		Platform:  "MacIntel",
		Width:     1680, Height: 1050, Scale: 2,
	},
}

var timezones = []string{
	"Europe/Lisbon",
	"Europe/Madrid",
	"Europe/London",
	"Europe/Paris",
	"Europe/Berlin",
}

type languageSet struct {
	locale string
	accept string
}

// languageSets holds, per display language, the Accept-Language variants a
// real visitor of that language version would plausibly send.
var languageSets = map[string][]languageSet{
	"pt": {
		{"pt-PT", "pt-PT,pt;q=0.9,en;q=0.8"},
		{"pt-PT", "pt-PT,pt;q=0.9"},
		{"pt-BR", "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7"},
		{"pt-PT", "pt-PT,pt;q=0.8,en-GB;q=0.6,en;q=0.4"},
	},
	"en": {
		{"en-GB", "en-GB,en;q=0.9"},
		{"en-US", "en-US,en;q=0.9"},
		{"en-GB", "en-GB,en-US;q=0.9,en;q=0.8"},
		{"en-IE", "en-IE,en;q=0.9,pt;q=0.5"},
	},
	"es": {
		{"es-ES", "es-ES,es;q=0.9"},
		{"es-ES", "es-ES,es;q=0.9,en;q=0.8"},
		{"es-MX", "es-MX,es;q=0.9,en;q=0.6"},
		{"es-ES", "es,en-US;q=0.7,en;q=0.3"},
	},
	"fr": {
		{"fr-FR", "fr-FR,fr;q=0.9"},
		{"fr-FR", "fr-FR,fr;q=0.9,en-US;q=0.8,en;q=0.7"},
		{"fr-BE", "fr-BE,fr;q=0.9,nl;q=0.6"},
		{"fr-CH", "fr-CH,fr;q=0.9,de;q=0.6"},
	},
	"de": {
		{"de-DE", "de-DE,de;q=0.9"},
		{"de-DE", "de-DE,de;q=0.9,en;q=0.8"},
		{"de-AT", "de-AT,de;q=0.9"},
		{"de-CH", "de-CH,de;q=0.9,fr;q=0.5"},
	},
	"it": {
		{"it-IT", "it-IT,it;q=0.9"},
		{"it-IT", "it-IT,it;q=0.9,en;q=0.8"},
		{"it-CH", "it-CH,it;q=0.9,de;q=0.6"},
		{"it-IT", "it,en-US;q=0.7,en;q=0.3"},
	},
	"nl": {
		{"nl-NL", "nl-NL,nl;q=0.9"},
		{"nl-NL", "nl-NL,nl;q=0.9,en;q=0.8"},
		{"nl-BE", "nl-BE,nl;q=0.9,fr;q=0.6"},
		{"nl-NL", "nl,en-US;q=0.7,en;q=0.3"},
	},
}

// referrers always includes "" for a direct visit.
var referrers = []string{
	"",
	"https://www.google.com/",
	"https://www.google.pt/",
	"https://www.bing.com/",
	"https://duckduckgo.com/",
	"https://www.google.es/",
}

// timeOffsets keep requested times on the form's half-hour grid.
var timeOffsets = []time.Duration{
	-60 * time.Minute,
	-30 * time.Minute,
	0,
	30 * time.Minute,
	60 * time.Minute,
}

// Selector draws identity profiles uniformly from the fixed pools. The pools
// are read-only; the selector's own RNG is guarded so one Selector can serve
// parallel sessions.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector creates a Selector. A nil src seeds from the wall clock.
func NewSelector(src rand.Source) *Selector {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Selector{rng: rand.New(src)}
}

// Select returns a fresh profile for a session in the given display language.
// Unknown languages use the English language sets.
func (s *Selector) Select(language string) models.IdentityProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	sets, ok := languageSets[language]
	if !ok {
		sets = languageSets["en"]
	}
	lang := sets[s.rng.Intn(len(sets))]

	return models.IdentityProfile{
		Device:         devices[s.rng.Intn(len(devices))],
		Language:       lang.locale,
		AcceptLanguage: lang.accept,
		Timezone:       timezones[s.rng.Intn(len(timezones))],
		Referrer:       referrers[s.rng.Intn(len(referrers))],
		TimeOffset:     timeOffsets[s.rng.Intn(len(timeOffsets))],
	}
}
