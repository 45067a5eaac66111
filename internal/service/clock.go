package service

import "time"

// Clock abstracts time.Now so lifecycle and expiry logic can be tested with
// an injected clock instead of sleeping.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func NewSystemClock() Clock { return systemClock{} }
