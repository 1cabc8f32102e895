package analytics

import (
	"errors"
	"sort"
	"time"
)

// ErrUnknownTimeframe is returned by ParseTimeframe for unsupported names.
var ErrUnknownTimeframe = errors.New("unknown time frame")

// DefaultTimeframe is used by clients that do not pick one.
const DefaultTimeframe = "day"

const (
	hourLabel  = "01/02/2006 15:04"
	dayLabel   = "01/02/2006"
	monthLabel = "01/2006"
)

// Timeframe is a window ending now, divided into contiguous buckets.
type Timeframe struct {
	Name  string
	Start time.Time
	End   time.Time

	// bounds holds each bucket's start followed by End.
	bounds []time.Time
	layout string
}

// ParseTimeframe builds the window named by name, ending at now. Buckets
// and labels follow now's location.
//
//	day    24 one-hour buckets
//	week   7 one-day buckets
//	month  30 one-day buckets
//	year   12 calendar months, the last one being the current month
func ParseTimeframe(name string, now time.Time) (Timeframe, error) {
	switch name {
	case "day":
		return fixedTimeframe(name, now, time.Hour, 24, hourLabel), nil
	case "week":
		return fixedTimeframe(name, now, 24*time.Hour, 7, dayLabel), nil
	case "month":
		return fixedTimeframe(name, now, 24*time.Hour, 30, dayLabel), nil
	case "year":
		return yearTimeframe(now), nil
	default:
		return Timeframe{}, ErrUnknownTimeframe
	}
}

func fixedTimeframe(name string, now time.Time, step time.Duration, n int, layout string) Timeframe {
	start := now.Add(-time.Duration(n) * step)
	bounds := make([]time.Time, n+1)
	for i := 0; i < n; i++ {
		bounds[i] = start.Add(time.Duration(i) * step)
	}
	bounds[n] = now
	return Timeframe{Name: name, Start: start, End: now, bounds: bounds, layout: layout}
}

func yearTimeframe(now time.Time) Timeframe {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -11, 0)
	bounds := make([]time.Time, 13)
	for i := 0; i < 12; i++ {
		bounds[i] = first.AddDate(0, i, 0)
	}
	bounds[12] = now
	return Timeframe{Name: "year", Start: first, End: now, bounds: bounds, layout: monthLabel}
}

// Len returns the number of buckets.
func (tf Timeframe) Len() int {
	if len(tf.bounds) == 0 {
		return 0
	}
	return len(tf.bounds) - 1
}

// Labels returns one label per bucket, oldest first.
func (tf Timeframe) Labels() []string {
	labels := make([]string, tf.Len())
	for i := range labels {
		labels[i] = tf.bounds[i].Format(tf.layout)
	}
	return labels
}

// Bucket returns the index of the bucket containing t, or -1 if t falls
// outside [Start, End).
func (tf Timeframe) Bucket(t time.Time) int {
	if t.Before(tf.Start) || !t.Before(tf.End) {
		return -1
	}
	// first bound strictly after t, minus one
	return sort.Search(len(tf.bounds), func(i int) bool {
		return tf.bounds[i].After(t)
	}) - 1
}
