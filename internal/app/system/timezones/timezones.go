// Package timezones resolves the zone analytics buckets and labels are
// computed in.
package timezones

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Default is used when no zone is configured.
const Default = "UTC"

// ErrUnknownZone is returned for names the zone database does not know.
var ErrUnknownZone = errors.New("unknown time zone")

var (
	mu    sync.Mutex
	cache = map[string]*time.Location{}
)

// Resolve returns the location for an IANA zone name such as
// "America/New_York". An empty name resolves to Default. Loaded locations
// are cached for reuse.
func Resolve(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = Default
	}

	mu.Lock()
	defer mu.Unlock()
	if loc, ok := cache[name]; ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownZone, name)
	}
	cache[name] = loc
	return loc, nil
}

// Valid reports whether name resolves.
func Valid(name string) bool {
	_, err := Resolve(name)
	return err == nil
}

// Label returns a display label for name, e.g. "America/New_York (EST)".
// Unknown names are returned unchanged.
func Label(name string, at time.Time) string {
	loc, err := Resolve(name)
	if err != nil {
		return name
	}
	abbr, _ := at.In(loc).Zone()
	if abbr == loc.String() {
		return abbr
	}
	return loc.String() + " (" + abbr + ")"
}
