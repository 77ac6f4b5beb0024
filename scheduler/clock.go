package scheduler

import "time"

// Clock is the scheduler's source of time. Pickup dates are computed from
// it, so tests pin it.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type systemClock struct {
	location *time.Location
}

// SystemClock returns the wall clock in loc. A nil loc means Europe/Lisbon,
// falling back to UTC when the zone database is missing.
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		var err error
		if loc, err = time.LoadLocation("Europe/Lisbon"); err != nil {
			loc = time.UTC
		}
	}
	return systemClock{location: loc}
}

func (c systemClock) Now() time.Time {
	return time.Now().In(c.location)
}

func (c systemClock) Location() *time.Location {
	return c.location
}

// FixedClock always returns the same instant. Used by tests and dry runs.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }

func (c FixedClock) Location() *time.Location { return c.At.Location() }
