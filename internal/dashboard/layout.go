package dashboard

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Layout is the set of metrics a dashboard tracks and where their
// endpoints live.
type Layout struct {
	// BasePath prefixes every metric endpoint. Defaults to "/analytics".
	BasePath string   `yaml:"base_path"`
	Metrics  []Metric `yaml:"metrics"`
}

// DefaultBasePath is where the analytics endpoints are mounted.
const DefaultBasePath = "/analytics"

// DefaultLayout returns the standard analytics dashboard.
func DefaultLayout() Layout {
	return Layout{BasePath: DefaultBasePath, Metrics: DefaultMetrics()}
}

// LoadLayout reads a YAML layout file.
func LoadLayout(path string) (Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return Layout{}, fmt.Errorf("opening layout: %w", err)
	}
	defer f.Close()
	return DecodeLayout(f)
}

// DecodeLayout reads a YAML layout. Charts without a chart section get
// DefaultChartOptions and single-series metrics without a label get
// DefaultLabel.
//
//	base_path: /analytics
//	metrics:
//	  - name: total_requests
//	    kind: single
//	    slot: total-requests-chart
//	    busy_slot: total-requests-loading
//	  - name: active_documents
//	    kind: scorecard
//	    fields:
//	      - {name: roads, slot: active-roads}
func DecodeLayout(r io.Reader) (Layout, error) {
	var raw struct {
		BasePath string `yaml:"base_path"`
		Metrics  []struct {
			Metric `yaml:",inline"`
			Chart  *ChartOptions `yaml:"chart"`
		} `yaml:"metrics"`
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return Layout{}, fmt.Errorf("decoding layout: %w", err)
	}

	l := Layout{BasePath: raw.BasePath}
	if l.BasePath == "" {
		l.BasePath = DefaultBasePath
	}
	for _, rm := range raw.Metrics {
		m := rm.Metric
		if rm.Chart != nil {
			m.Chart = *rm.Chart
		} else {
			m.Chart = DefaultChartOptions()
		}
		if m.Kind == SingleSeries && m.Label == "" {
			m.Label = DefaultLabel
		}
		l.Metrics = append(l.Metrics, m)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// Validate checks that every metric names an endpoint and the slots its
// kind needs. A slot name may be used once across charts, text and busy
// indicators.
func (l Layout) Validate() error {
	if len(l.Metrics) == 0 {
		return errors.New("layout has no metrics")
	}
	seen := make(map[string]string)
	claim := func(m Metric, slot string) error {
		if slot == "" {
			return nil
		}
		if owner, ok := seen[slot]; ok {
			return fmt.Errorf("metric %s: slot %s used twice (also by %s)", m.Name, slot, owner)
		}
		seen[slot] = m.Name
		return nil
	}
	for i, m := range l.Metrics {
		if m.Name == "" {
			return fmt.Errorf("metric %d: missing name", i)
		}
		switch m.Kind {
		case SingleSeries, MultiSeries:
			if m.Slot == "" {
				return fmt.Errorf("metric %s: %s metric needs a slot", m.Name, m.Kind)
			}
		case Scorecard:
			if len(m.Fields) == 0 {
				return fmt.Errorf("metric %s: scorecard needs fields", m.Name)
			}
		}
		slots := []string{m.Slot, m.TotalSlot, m.BusySlot}
		for _, f := range m.Fields {
			if f.Slot == "" {
				return fmt.Errorf("metric %s: field %s needs a slot", m.Name, f.Name)
			}
			slots = append(slots, f.Slot)
		}
		for _, slot := range slots {
			if err := claim(m, slot); err != nil {
				return err
			}
		}
	}
	return nil
}
