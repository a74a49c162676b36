package domain

import "time"

// TimeSlot immutable half-open interval [Start, End)
type TimeSlot struct {
	start    time.Time
	duration time.Duration
}

// NewTimeSlot creates a slot starting at start lasting durationMinutes
func NewTimeSlot(start time.Time, durationMinutes int) TimeSlot {
	return TimeSlot{start: start, duration: time.Duration(durationMinutes) * time.Minute}
}

func (s TimeSlot) Start() time.Time {
	return s.start
}

func (s TimeSlot) End() time.Time {
	return s.start.Add(s.duration)
}

func (s TimeSlot) Duration() time.Duration {
	return s.duration
}

func (s TimeSlot) DurationMinutes() int {
	return int(s.duration / time.Minute)
}

func (s TimeSlot) IsZero() bool {
	return s.start.IsZero() && s.duration == 0
}

// Equal reports whether both slots describe the same interval
func (s TimeSlot) Equal(other TimeSlot) bool {
	return s.start.Equal(other.start) && s.duration == other.duration
}

// Overlaps reports whether the intervals, each extended by buffer on its end, intersect
func (s TimeSlot) Overlaps(other TimeSlot, buffer time.Duration) bool {
	return s.start.Before(other.End().Add(buffer)) && other.start.Before(s.End().Add(buffer))
}

// In returns the same slot expressed in loc
func (s TimeSlot) In(loc *time.Location) TimeSlot {
	return TimeSlot{start: s.start.In(loc), duration: s.duration}
}
