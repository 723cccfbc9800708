package clock

import "time"

// Clock abstracts wall-clock reads so delivery timestamps are testable.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the system wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Fixed returns a clock frozen at the given instant.
type Fixed struct {
	At time.Time
}

func (f Fixed) Now() time.Time { return f.At }
