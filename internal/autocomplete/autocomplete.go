// Package autocomplete feeds course subject IDs into an autocomplete widget.
package autocomplete

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// CoursesPath lists every public course.
const CoursesPath = "/courses/all"

// Defaults for Set.Suggest.
const (
	DefaultLimit     = 10
	DefaultMinLength = 1
)

// Fetcher performs GET requests and decodes the JSON body.
type Fetcher interface {
	GetJSON(ctx context.Context, path string, v any) error
}

// Sink receives the autocomplete data. Keys are the candidates.
type Sink interface {
	UpdateData(data map[string]struct{})
}

type course struct {
	SubjectID string `json:"subject_id"`
}

// Loader populates a Sink from the course list.
type Loader struct {
	Fetcher Fetcher
	Sink    Sink
	Logger  *zap.Logger
}

// Load fetches the course list and hands the set of subject IDs to the
// sink. On failure the error is logged and the sink is left untouched.
func (l *Loader) Load(ctx context.Context) error {
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var courses []course
	if err := l.Fetcher.GetJSON(ctx, CoursesPath, &courses); err != nil {
		logger.Error("failed to load course list", zap.String("path", CoursesPath), zap.Error(err))
		return err
	}

	data := make(map[string]struct{}, len(courses))
	for _, c := range courses {
		data[c.SubjectID] = struct{}{}
	}
	l.Sink.UpdateData(data)
	logger.Debug("autocomplete data loaded", zap.Int("courses", len(data)))
	return nil
}

// Set is an in-memory Sink that answers prefix queries.
type Set struct {
	mu        sync.RWMutex
	items     []string
	Limit     int
	MinLength int
}

// NewSet returns an empty Set with the default limit and minimum length.
func NewSet() *Set {
	return &Set{Limit: DefaultLimit, MinLength: DefaultMinLength}
}

// UpdateData replaces the candidates.
func (s *Set) UpdateData(data map[string]struct{}) {
	items := make([]string, 0, len(data))
	for k := range data {
		items = append(items, k)
	}
	sort.Strings(items)

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

// Items returns every candidate in sorted order.
func (s *Set) Items() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.items...)
}

// Suggest returns up to Limit candidates starting with prefix, ignoring
// case. Inputs shorter than MinLength get no suggestions.
func (s *Set) Suggest(prefix string) []string {
	if len(prefix) < s.MinLength {
		return nil
	}
	prefix = strings.ToLower(prefix)

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, item := range s.items {
		if !strings.HasPrefix(strings.ToLower(item), prefix) {
			continue
		}
		out = append(out, item)
		if s.Limit > 0 && len(out) == s.Limit {
			break
		}
	}
	return out
}
