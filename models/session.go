package models

import (
	"fmt"
	"sync"
	"time"
)

// SessionState is a step of the search-form state machine.
type SessionState int

const (
	StateInit SessionState = iota
	StateCookiesHandled
	StateLocationEntered
	StateSuggestionSelected
	StateDatesFilled
	StateSubmitted
	StateResultsPending
	StateResultsReady
	StateNoAvailability
	StateFailed
)

var stateNames = map[SessionState]string{
	StateInit:               "Init",
	StateCookiesHandled:     "CookiesHandled",
	StateLocationEntered:    "LocationEntered",
	StateSuggestionSelected: "SuggestionSelected",
	StateDatesFilled:        "DatesFilled",
	StateSubmitted:          "Submitted",
	StateResultsPending:     "ResultsPending",
	StateResultsReady:       "ResultsReady",
	StateNoAvailability:     "NoAvailability",
	StateFailed:             "Failed",
}

func (s SessionState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SessionState(%d)", int(s))
}

// Terminal reports whether no further transitions are possible.
func (s SessionState) Terminal() bool {
	return s == StateResultsReady || s == StateNoAvailability || s == StateFailed
}

// transitions lists the forward edges. Failed is reachable from every
// non-terminal state and is handled separately.
var transitions = map[SessionState][]SessionState{
	StateInit:               {StateCookiesHandled},
	StateCookiesHandled:     {StateLocationEntered},
	StateLocationEntered:    {StateSuggestionSelected},
	StateSuggestionSelected: {StateDatesFilled},
	StateDatesFilled:        {StateSubmitted},
	StateSubmitted:          {StateResultsPending, StateResultsReady, StateNoAvailability},
	StateResultsPending:     {StateResultsPending, StateResultsReady, StateNoAvailability},
}

// CanTransition reports whether from → to is an edge of the state machine.
func CanTransition(from, to SessionState) bool {
	if from.Terminal() {
		return false
	}
	if to == StateFailed {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StateChange records one transition for diagnostics.
type StateChange struct {
	From SessionState
	To   SessionState
	At   time.Time
	Note string
}

// FormSession is the mutable state of one simulated visitor session. A
// session is driven by exactly one goroutine; the mutex only protects
// Release against a concurrent deferred call.
type FormSession struct {
	Request  AcquisitionRequest
	Profile  IdentityProfile
	Strategy string

	State   SessionState
	History []StateChange

	// CurrentURL and HTML hold the last page the session looked at.
	CurrentURL string
	HTML       string
	// Target is the session-scoped URL polled by the resolver.
	Target string
	// PollAttempts counts ResultsPending rounds.
	PollAttempts int
	// Err is set when the session ends in Failed.
	Err error

	StartedAt time.Time

	mu       sync.Mutex
	release  func()
	released bool
}

// NewFormSession starts a session in Init.
func NewFormSession(req AcquisitionRequest, profile IdentityProfile, strategy string) *FormSession {
	return &FormSession{
		Request:   req,
		Profile:   profile,
		Strategy:  strategy,
		State:     StateInit,
		StartedAt: time.Now(),
	}
}

// OnRelease registers the function that frees the session's transport.
// It runs once, on the first terminal transition or Release call.
func (s *FormSession) OnRelease(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.release = fn
}

// Release frees the session's resources. It is idempotent.
func (s *FormSession) Release() {
	s.mu.Lock()
	fn := s.release
	already := s.released
	s.released = true
	s.mu.Unlock()

	if !already && fn != nil {
		fn()
	}
}

// Released reports whether the release function has run.
func (s *FormSession) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// Transition moves the session to next. Entering a terminal state releases
// the session's resources.
func (s *FormSession) Transition(next SessionState, note string) error {
	if !CanTransition(s.State, next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s.State, next)
	}
	s.History = append(s.History, StateChange{From: s.State, To: next, At: time.Now(), Note: note})
	s.State = next
	if next == StateResultsPending {
		s.PollAttempts++
	}
	if next.Terminal() {
		s.Release()
	}
	return nil
}

// Fail moves the session to Failed with err. Calling Fail on a session that
// already ended is a no-op so the first terminal cause is kept.
func (s *FormSession) Fail(err error) {
	if s.State.Terminal() {
		return
	}
	s.Err = err
	note := ""
	if err != nil {
		note = err.Error()
	}
	_ = s.Transition(StateFailed, note)
}

// Elapsed returns the time since the session started.
func (s *FormSession) Elapsed() time.Duration {
	return time.Since(s.StartedAt)
}
