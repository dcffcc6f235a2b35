package services

import "time"

// Clock supplies the current instant. Services read time only through it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
func SystemClock() Clock { return systemClock{} }

// FixedClock always reports t. Used by tests and the sweep command.
type FixedClock struct{ T time.Time }

func (c FixedClock) Now() time.Time { return c.T }

func clockOrSystem(c Clock) Clock {
	if c == nil {
		return systemClock{}
	}
	return c
}
