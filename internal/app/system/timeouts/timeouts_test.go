package timeouts

import (
	"testing"
	"time"
)

func TestConfigure(t *testing.T) {
	t.Cleanup(Reset)

	Configure(Config{Medium: 3 * time.Second})

	if got := Medium(); got != 3*time.Second {
		t.Errorf("Medium() = %v, want 3s", got)
	}
	if got := Short(); got != DefaultShort {
		t.Errorf("Short() = %v, want default %v", got, DefaultShort)
	}
	if got := Long(); got != DefaultLong {
		t.Errorf("Long() = %v, want default %v", got, DefaultLong)
	}

	Reset()
	if got := Medium(); got != DefaultMedium {
		t.Errorf("after Reset Medium() = %v, want %v", got, DefaultMedium)
	}
}
