package models

import "errors"

var (
	// ErrLocationUnresolved means no suggestion could be selected for the
	// typed location. Fatal for the session.
	ErrLocationUnresolved = errors.New("location suggestion could not be resolved")

	// ErrNoRedirectTarget means the submit response was neither a results
	// page nor a transitional page with a navigation target.
	ErrNoRedirectTarget = errors.New("no redirect target on transitional page")

	// ErrPollExhausted means polling ran out of attempts without reaching
	// a terminal results URL.
	ErrPollExhausted = errors.New("polling exhausted without terminal results url")

	// ErrSessionTimeout means the session wall-clock ceiling was breached.
	ErrSessionTimeout = errors.New("session wall-clock ceiling exceeded")

	// ErrIllegalTransition is returned when a session is moved along an
	// edge the state machine does not have.
	ErrIllegalTransition = errors.New("illegal session state transition")

	// ErrNoAvailability marks the marketplace's "nothing available" answer.
	// It is a business outcome, not a failure.
	ErrNoAvailability = errors.New("no availability for the requested search")
)
