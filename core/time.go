package core

import (
	"errors"
	"fmt"
	"math"
)

// Time is elapsed scene time in seconds
type Time float64

// Sub returns the duration t - o in seconds
func (t Time) Sub(o Time) float64 {
	return float64(t - o)
}

// Add returns t advanced by d seconds
func (t Time) Add(d float64) Time {
	return t + Time(d)
}

// Seconds returns the raw float value
func (t Time) Seconds() float64 {
	return float64(t)
}

// ErrInvalidInterval is returned when an interval would end before it starts
var ErrInvalidInterval = errors.New("invalid time interval")

// TimeInterval is the half-open range [Start, End)
type TimeInterval struct {
	Start Time `json:"start" msgpack:"start"`
	End   Time `json:"end" msgpack:"end"`
}

// NewTimeInterval validates start <= end
func NewTimeInterval(start, end Time) (TimeInterval, error) {
	if math.IsNaN(float64(start)) || math.IsNaN(float64(end)) || start > end {
		return TimeInterval{}, fmt.Errorf("%w: [%g, %g)", ErrInvalidInterval, start, end)
	}
	return TimeInterval{Start: start, End: end}, nil
}

// Duration returns End - Start in seconds
func (i TimeInterval) Duration() float64 {
	return i.End.Sub(i.Start)
}

// IsEmpty reports a zero-length interval
func (i TimeInterval) IsEmpty() bool {
	return i.Start == i.End
}

// Contains reports whether t lies in [Start, End)
func (i TimeInterval) Contains(t Time) bool {
	return t >= i.Start && t < i.End
}

// Validate checks the ordering invariant
func (i TimeInterval) Validate() error {
	_, err := NewTimeInterval(i.Start, i.End)
	return err
}

func (i TimeInterval) String() string {
	return fmt.Sprintf("[%g, %g)", float64(i.Start), float64(i.End))
}
