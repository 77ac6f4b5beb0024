package models

import (
	"fmt"
	"time"
)

// Status is the operator-visible result of one acquisition.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusNoAvailability Status = "no_availability"
	StatusFailure        Status = "failure"
)

// Outcome is the structured result of one acquisition. Failures are
// reported here rather than returned as errors so the caller can decide
// whether to retry with a fresh identity.
type Outcome struct {
	Request  AcquisitionRequest
	Status   Status
	Strategy string
	Listings []*ClassifiedListing
	// Raw holds the extracted blocks before cleaning, for the raw dump.
	Raw []*RawListing
	// Dropped counts extracted listings the cleaner rejected.
	Dropped  int
	Attempts int
	FinalURL string
	Err      error
	Duration time.Duration
}

// OutcomeFromSession maps a terminal session onto an Outcome.
func OutcomeFromSession(s *FormSession) *Outcome {
	o := &Outcome{
		Request:  s.Request,
		Strategy: s.Strategy,
		Attempts: s.PollAttempts,
		FinalURL: s.CurrentURL,
		Duration: s.Elapsed(),
	}
	switch s.State {
	case StateResultsReady:
		o.Status = StatusSuccess
	case StateNoAvailability:
		o.Status = StatusNoAvailability
	default:
		o.Status = StatusFailure
		o.Err = s.Err
		if o.Err == nil {
			o.Err = fmt.Errorf("session ended in %s", s.State)
		}
	}
	return o
}

// Line renders the per-request status line shown to operators.
func (o *Outcome) Line() string {
	switch o.Status {
	case StatusSuccess:
		return fmt.Sprintf("%s: success via %s, %d listings (%d dropped) in %s",
			o.Request.Location, o.Strategy, len(o.Listings), o.Dropped, o.Duration.Round(time.Second))
	case StatusNoAvailability:
		return fmt.Sprintf("%s: no availability via %s", o.Request.Location, o.Strategy)
	default:
		return fmt.Sprintf("%s: failure via %s: %v", o.Request.Location, o.Strategy, o.Err)
	}
}
