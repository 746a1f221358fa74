package core

// Clock is the time source consumed by recording and presentation
// Successive Now values must be monotonically non-decreasing
type Clock interface {
	// Now returns the current scene time snapshot
	Now() Time

	// SessionInterval returns [session start, Now)
	SessionInterval() TimeInterval
}
