package clock

import "time"

// Clock supplies wall-clock timestamps for session start/stop and duration
// math. Injected so tests can control elapsed time exactly.
type Clock interface {
	Now() time.Time
}

// System reads the real clock in UTC.
type System struct{}

func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a settable clock for tests.
type Fixed struct {
	T time.Time
}

func (f *Fixed) Now() time.Time {
	return f.T
}

// Advance moves the fixed clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.T = f.T.Add(d)
}
