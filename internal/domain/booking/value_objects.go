package booking

import (
	"errors"
	"fmt"
	"time"
)

// MaxRentalDuration caps a single booking. A slot of exactly this length
// is still accepted.
const MaxRentalDuration = 10 * time.Hour

type TimeSlot struct {
	start time.Time
	end   time.Time
}

func NewTimeSlot(start, end time.Time) (TimeSlot, error) {
	if !start.Before(end) {
		return TimeSlot{}, errors.New("start time must be before end time")
	}

	return TimeSlot{
		start: start,
		end:   end,
	}, nil
}

func (ts TimeSlot) Start() time.Time {
	return ts.start
}

func (ts TimeSlot) End() time.Time {
	return ts.end
}

func (ts TimeSlot) Duration() time.Duration {
	return ts.end.Sub(ts.start)
}

func (ts TimeSlot) ExceedsMaxDuration() bool {
	return ts.Duration() > MaxRentalDuration
}

// Overlaps treats both bounds as inclusive: a booking ending exactly when
// another begins still conflicts, so back-to-back rentals of the same
// locker are rejected.
func (ts TimeSlot) Overlaps(other TimeSlot) bool {
	return !ts.start.After(other.end) && !ts.end.Before(other.start)
}

func (ts TimeSlot) String() string {
	return fmt.Sprintf("%s/%s", ts.start.Format(time.RFC3339), ts.end.Format(time.RFC3339))
}

type Note struct {
	value string
}

func NewNote(value string) Note {
	return Note{value: value}
}

func (n Note) String() string {
	return n.value
}

func (n Note) IsEmpty() bool {
	return n.value == ""
}
