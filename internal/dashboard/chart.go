package dashboard

import "errors"

// ErrNoSlot is returned by a Surface for a slot it does not have.
var ErrNoSlot = errors.New("no such slot")

// Color is one palette entry.
type Color struct {
	Background string
	Border     string
}

// Palette is cycled by series index when coloring datasets.
var Palette = []Color{
	{Background: "rgba(142, 8, 48, 0.4)", Border: "rgba(142, 8, 48, 1)"},
	{Background: "rgba(143, 9, 105, 0.4)", Border: "rgba(143, 9, 105, 1.0)"},
	{Background: "rgba(227, 59, 59, 0.4)", Border: "rgba(227, 59, 59, 1.0)"},
	{Background: "rgba(201, 27, 121, 0.4)", Border: "rgba(201, 27, 121, 1.0)"},
	{Background: "rgba(77, 8, 177, 0.4)", Border: "rgba(77, 8, 177, 1.0)"},
}

// PaletteColor returns the palette entry for series i.
func PaletteColor(i int) Color {
	return Palette[i%len(Palette)]
}

// ChartOptions controls how a chart is drawn. They are fixed when the chart
// is created.
type ChartOptions struct {
	BeginAtZero   bool    `yaml:"begin_at_zero"`
	Stacked       bool    `yaml:"stacked"`
	AutoSkip      bool    `yaml:"auto_skip"`
	MaxTicksLimit int     `yaml:"max_ticks_limit"` // 0 shows every label
	BarPercentage float64 `yaml:"bar_percentage"`
	AspectRatio   float64 `yaml:"aspect_ratio"`
}

// DefaultChartOptions returns the options shared by every dashboard bar
// chart: zero-based stacked bars with at most 10 X labels.
func DefaultChartOptions() ChartOptions {
	return ChartOptions{
		BeginAtZero:   true,
		Stacked:       true,
		AutoSkip:      true,
		MaxTicksLimit: 10,
		BarPercentage: 1.0,
		AspectRatio:   1.6,
	}
}

// Dataset is one series of a chart.
type Dataset struct {
	Label           string
	Data            []float64
	BackgroundColor string
	BorderColor     string
	BorderWidth     int
}

// ChartData is the data bound to a chart. Every dataset has one value
// per label.
type ChartData struct {
	Labels   []string
	Datasets []Dataset
}

// ChartConfig is used to create a chart.
type ChartConfig struct {
	Type    string // always "bar" today
	Data    ChartData
	Options ChartOptions
}

// Chart is a live chart handle. A handle is never recreated: new data is
// bound with SetData and drawn with Update.
type Chart interface {
	SetData(ChartData)
	Update()
}

// Surface owns the visual slots the dashboard writes into.
type Surface interface {
	// NewChart creates the chart for slot.
	NewChart(slot string, cfg ChartConfig) (Chart, error)
	// SetText replaces the content of a text slot.
	SetText(slot, text string) error
	// SetBusy shows or hides a busy indicator.
	SetBusy(slot string, busy bool) error
}
