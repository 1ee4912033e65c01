package catalog

import "time"

// Clock supplies scan timestamps so runs are reproducible in tests.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
