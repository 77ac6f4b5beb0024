package models

import (
	"fmt"
	"strings"
	"time"
)

// SupportedLanguages are the display languages the marketplace form is driven in.
var SupportedLanguages = []string{"pt", "en", "es", "fr", "de", "it", "nl"}

// AcquisitionRequest describes one search. It is passed by value and never
// mutated once built.
type AcquisitionRequest struct {
	// Location is the free text typed into the location field.
	Location string
	// SiteNames holds the canonical suggestion text per display language,
	// e.g. "Faro Aeroporto (FAO)" for "pt".
	SiteNames map[string]string
	Pickup    time.Time
	Dropoff   time.Time
	Language  string
	Currency  string
}

// SiteName returns the canonical suggestion text for the request language,
// falling back to the free-text location.
func (r AcquisitionRequest) SiteName() string {
	if name := strings.TrimSpace(r.SiteNames[r.Language]); name != "" {
		return name
	}
	return r.Location
}

// Days returns the rental length in whole days, rounding partial days up.
func (r AcquisitionRequest) Days() int {
	d := r.Dropoff.Sub(r.Pickup)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}

// Key identifies the request for de-duplicating concurrent sessions.
func (r AcquisitionRequest) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s",
		strings.ToLower(r.Location), r.Pickup.Format("2006-01-02T15:04"),
		r.Dropoff.Format("2006-01-02T15:04"), r.Language, r.Currency)
}

// Validate rejects requests the form could never accept.
func (r AcquisitionRequest) Validate() error {
	if strings.TrimSpace(r.Location) == "" {
		return fmt.Errorf("request: empty location")
	}
	if r.Pickup.IsZero() || r.Dropoff.IsZero() {
		return fmt.Errorf("request: pickup and dropoff are required")
	}
	if !r.Dropoff.After(r.Pickup) {
		return fmt.Errorf("request: dropoff %s is not after pickup %s",
			r.Dropoff.Format(time.RFC3339), r.Pickup.Format(time.RFC3339))
	}
	if !IsSupportedLanguage(r.Language) {
		return fmt.Errorf("request: unsupported language %q", r.Language)
	}
	if len(r.Currency) != 3 {
		return fmt.Errorf("request: currency must be an ISO code, got %q", r.Currency)
	}
	return nil
}

// IsSupportedLanguage reports whether lang is one of SupportedLanguages.
func IsSupportedLanguage(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// Device describes the browser fingerprint presented by a session.
type Device struct {
	Name      string
	UserAgent string
	Platform  string
	Width     int64
	Height    int64
	Scale     float64
	Mobile    bool
}

// IdentityProfile bundles everything a session presents about its visitor.
// It is selected once per request and owned by that session.
type IdentityProfile struct {
	Device Device
	// Language is the primary locale, e.g. "pt-PT".
	Language string
	// AcceptLanguage is the full header value, e.g. "pt-PT,pt;q=0.9,en;q=0.8".
	AcceptLanguage string
	Timezone       string
	// Referrer is empty for a direct visit.
	Referrer string
	// TimeOffset shifts the requested pickup/dropoff time of day.
	TimeOffset time.Duration
}
