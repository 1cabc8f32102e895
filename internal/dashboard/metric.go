package dashboard

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Kind is the response shape of a tracked metric.
type Kind int

const (
	// SingleSeries responses are {labels, data, total?}.
	SingleSeries Kind = iota
	// MultiSeries responses are {labels, data: {series: [...]}}.
	MultiSeries
	// Scorecard responses are a flat object of named totals.
	Scorecard
)

var kindNames = map[Kind]string{
	SingleSeries: "single",
	MultiSeries:  "multi",
	Scorecard:    "scorecard",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind parses "single", "multi" or "scorecard".
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown metric kind %q", s)
}

// UnmarshalYAML reads a Kind from its name.
func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalYAML writes a Kind as its name.
func (k Kind) MarshalYAML() (any, error) {
	return k.String(), nil
}

// Field binds one named scorecard total to a text slot.
type Field struct {
	Name string `yaml:"name"`
	Slot string `yaml:"slot"`
}

// Metric is one tracked endpoint and the slots it fills.
type Metric struct {
	Name     string `yaml:"name"`
	Kind     Kind   `yaml:"kind"`
	Slot     string `yaml:"slot,omitempty"`
	BusySlot string `yaml:"busy_slot,omitempty"`

	// Label names the dataset of a single-series chart.
	Label string `yaml:"label,omitempty"`
	// TotalSlot receives a single-series response's total, if any.
	TotalSlot string `yaml:"total_slot,omitempty"`
	// Fields lists the scorecard totals, in display order.
	Fields []Field `yaml:"fields,omitempty"`

	// Chart is read from a layout's "chart" section by DecodeLayout.
	Chart ChartOptions `yaml:"-"`
}

// DefaultLabel is the single-series dataset label used when none is set.
const DefaultLabel = "# of Requests"

// DefaultMetrics returns the standard analytics dashboard layout.
func DefaultMetrics() []Metric {
	opts := DefaultChartOptions()
	return []Metric{
		{
			Name:      "total_requests",
			Kind:      SingleSeries,
			Slot:      "total-requests-chart",
			BusySlot:  "total-requests-loading",
			Label:     DefaultLabel,
			TotalSlot: "total-requests-total",
			Chart:     opts,
		},
		{
			Name:      "logged_in_users",
			Kind:      SingleSeries,
			Slot:      "logged-in-users-chart",
			BusySlot:  "logged-in-users-loading",
			Label:     "# of Users",
			TotalSlot: "logged-in-users-total",
			Chart:     opts,
		},
		{
			Name:     "user_agents",
			Kind:     MultiSeries,
			Slot:     "user-agents-chart",
			BusySlot: "user-agents-loading",
			Chart:    opts,
		},
		{
			Name:     "user_semesters",
			Kind:     SingleSeries,
			Slot:     "user-semesters-chart",
			BusySlot: "user-semesters-loading",
			Label:    "# of Users",
			Chart:    opts,
		},
		{
			Name:     "request_paths",
			Kind:     SingleSeries,
			Slot:     "request-paths-chart",
			BusySlot: "request-paths-loading",
			Label:    DefaultLabel,
			Chart:    opts,
		},
		{
			Name:     "active_documents",
			Kind:     Scorecard,
			BusySlot: "active-documents-loading",
			Fields: []Field{
				{Name: "roads", Slot: "active-roads"},
				{Name: "schedules", Slot: "active-schedules"},
			},
		},
	}
}

// Slots returns every slot referenced by metrics, grouped by purpose.
func Slots(metrics []Metric) (charts, texts, busy []string) {
	for _, m := range metrics {
		if m.Slot != "" {
			charts = append(charts, m.Slot)
		}
		if m.TotalSlot != "" {
			texts = append(texts, m.TotalSlot)
		}
		for _, f := range m.Fields {
			texts = append(texts, f.Slot)
		}
		if m.BusySlot != "" {
			busy = append(busy, m.BusySlot)
		}
	}
	return charts, texts, busy
}
