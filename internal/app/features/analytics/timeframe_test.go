package analytics

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2024, 3, 10, 12, 30, 0, 0, time.UTC)

func TestParseTimeframe_Day(t *testing.T) {
	tf, err := ParseTimeframe("day", testNow)
	if err != nil {
		t.Fatalf("ParseTimeframe() error = %v", err)
	}
	if tf.Len() != 24 {
		t.Errorf("Len() = %d, want 24", tf.Len())
	}
	if !tf.Start.Equal(testNow.Add(-24 * time.Hour)) {
		t.Errorf("Start = %v", tf.Start)
	}

	labels := tf.Labels()
	if labels[0] != "03/09/2024 12:30" {
		t.Errorf("labels[0] = %q", labels[0])
	}
	if labels[23] != "03/10/2024 11:30" {
		t.Errorf("labels[23] = %q", labels[23])
	}
}

func TestParseTimeframe_WeekAndMonth(t *testing.T) {
	tests := []struct {
		name    string
		wantLen int
	}{
		{"week", 7},
		{"month", 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tf, err := ParseTimeframe(tt.name, testNow)
			if err != nil {
				t.Fatalf("ParseTimeframe() error = %v", err)
			}
			if tf.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", tf.Len(), tt.wantLen)
			}
			if got := tf.Labels()[tt.wantLen-1]; got != "03/09/2024" {
				t.Errorf("last label = %q, want 03/09/2024", got)
			}
		})
	}
}

func TestParseTimeframe_Year(t *testing.T) {
	tf, err := ParseTimeframe("year", testNow)
	if err != nil {
		t.Fatalf("ParseTimeframe() error = %v", err)
	}
	labels := tf.Labels()
	if len(labels) != 12 {
		t.Fatalf("len(labels) = %d, want 12", len(labels))
	}
	if labels[0] != "04/2023" || labels[11] != "03/2024" {
		t.Errorf("labels = %v", labels)
	}
	if got := tf.Bucket(time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC)); got != 8 {
		t.Errorf("Bucket(Dec 31) = %d, want 8", got)
	}
	if got := tf.Bucket(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)); got != 11 {
		t.Errorf("Bucket(Mar 5) = %d, want 11", got)
	}
}

func TestParseTimeframe_Unknown(t *testing.T) {
	for _, name := range []string{"", "hour", "DAY", "decade"} {
		if _, err := ParseTimeframe(name, testNow); !errors.Is(err, ErrUnknownTimeframe) {
			t.Errorf("ParseTimeframe(%q) error = %v, want ErrUnknownTimeframe", name, err)
		}
	}
}

func TestTimeframe_Bucket(t *testing.T) {
	tf, _ := ParseTimeframe("day", testNow)

	tests := []struct {
		name string
		at   time.Time
		want int
	}{
		{"window start", tf.Start, 0},
		{"second bucket", tf.Start.Add(90 * time.Minute), 1},
		{"just before end", testNow.Add(-time.Nanosecond), 23},
		{"end is exclusive", testNow, -1},
		{"before start", tf.Start.Add(-time.Second), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tf.Bucket(tt.at); got != tt.want {
				t.Errorf("Bucket() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseTimeframe_FollowsLocation(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	// 03:00 UTC on April 1st is still March 31st in EST
	now := time.Date(2024, 3, 31, 22, 0, 0, 0, est)

	tf, err := ParseTimeframe("year", now)
	if err != nil {
		t.Fatalf("ParseTimeframe() error = %v", err)
	}
	labels := tf.Labels()
	if labels[11] != "03/2024" {
		t.Errorf("labels[11] = %q, want 03/2024", labels[11])
	}
	if want := time.Date(2023, 4, 1, 0, 0, 0, 0, est); !tf.Start.Equal(want) {
		t.Errorf("Start = %v, want %v", tf.Start, want)
	}

	utc, _ := ParseTimeframe("year", now.UTC())
	if got := utc.Labels()[11]; got != "04/2024" {
		t.Errorf("UTC labels[11] = %q, want 04/2024", got)
	}
}
