package dashboard

import (
	"context"
	"encoding/json"
	"sync"
)

type fakeFetcher struct {
	mu      sync.Mutex
	paths   []string
	respond func(path string) (string, error)
}

func (f *fakeFetcher) GetJSON(ctx context.Context, path string, v any) error {
	f.mu.Lock()
	f.paths = append(f.paths, path)
	f.mu.Unlock()

	body, err := f.respond(path)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(body), v)
}

func (f *fakeFetcher) requested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

type fakeChart struct {
	cfg     ChartConfig
	data    ChartData
	updates int
}

func (c *fakeChart) SetData(d ChartData) { c.data = d }
func (c *fakeChart) Update()             { c.updates++ }

type fakeSurface struct {
	mu      sync.Mutex
	charts  map[string]*fakeChart
	created int
	texts   map[string]string
	busy    map[string]bool
	missing map[string]bool
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		charts:  make(map[string]*fakeChart),
		texts:   make(map[string]string),
		busy:    make(map[string]bool),
		missing: make(map[string]bool),
	}
}

func (s *fakeSurface) NewChart(slot string, cfg ChartConfig) (Chart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.missing[slot] {
		return nil, ErrNoSlot
	}
	c := &fakeChart{cfg: cfg, data: cfg.Data}
	s.charts[slot] = c
	s.created++
	return c, nil
}

func (s *fakeSurface) SetText(slot, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.missing[slot] {
		return ErrNoSlot
	}
	s.texts[slot] = text
	return nil
}

func (s *fakeSurface) SetBusy(slot string, busy bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy[slot] = busy
	return nil
}

func (s *fakeSurface) chart(slot string) *fakeChart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.charts[slot]
}

func (s *fakeSurface) text(slot string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.texts[slot]
}

func (s *fakeSurface) isBusy(slot string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy[slot]
}
