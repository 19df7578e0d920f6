package domain

import "time"

// Bucket is the time granularity to which raw rows are grouped before
// charting.
type Bucket string

const (
	BucketDay   Bucket = "day"
	BucketWeek  Bucket = "week"
	BucketMonth Bucket = "month"
)

// RangeWindow is a concrete half-open [Start, End) interval resolved from
// a symbolic range token. Immutable once computed; End is "now" at
// resolution time, so windows are not reproducible across calls unless
// the caller freezes the clock.
type RangeWindow struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Bucket Bucket    `json:"bucket"`
}

// Days returns the window span in whole days, rounding up.
func (w RangeWindow) Days() int {
	d := w.End.Sub(w.Start)
	if d <= 0 {
		return 0
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// Contains reports whether t falls inside the half-open window.
func (w RangeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}
