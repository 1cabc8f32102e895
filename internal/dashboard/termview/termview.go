// Package termview draws dashboard widgets as text: charts become
// horizontal bar charts, scorecards become labelled values.
package termview

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/dalemusser/stratadash/internal/dashboard"
	"github.com/muesli/termenv"
)

// DefaultBarWidth is the width of the longest bar.
const DefaultBarWidth = 40

// segment glyphs follow the dashboard palette order.
var glyphs = []string{"█", "▓", "▒", "░", "#"}

// View implements dashboard.Surface on top of an io.Writer.
type View struct {
	mu       sync.Mutex
	out      io.Writer
	renderer *lipgloss.Renderer
	styles   *styles
	barWidth int

	chartSlots []string
	charts     map[string]*Chart
	textSlots  []string
	texts      map[string]string
	busySlots  []string
	busy       map[string]bool
}

// Option configures a View.
type Option func(*View)

// WithColor forces colors on or off instead of detecting them from the
// writer and the environment.
func WithColor(on bool) Option {
	return func(v *View) {
		if on {
			v.renderer.SetColorProfile(termenv.TrueColor)
		} else {
			v.renderer.SetColorProfile(termenv.Ascii)
		}
	}
}

// WithBarWidth sets the width of the longest bar.
func WithBarWidth(n int) Option {
	return func(v *View) {
		if n > 0 {
			v.barWidth = n
		}
	}
}

// New creates a View with the given slots. Colors follow what out supports,
// honoring NO_COLOR and CLICOLOR_FORCE.
func New(out io.Writer, chartSlots, textSlots, busySlots []string, opts ...Option) *View {
	v := &View{
		out:        out,
		renderer:   lipgloss.NewRenderer(out),
		barWidth:   DefaultBarWidth,
		chartSlots: chartSlots,
		charts:     make(map[string]*Chart, len(chartSlots)),
		textSlots:  textSlots,
		texts:      make(map[string]string, len(textSlots)),
		busySlots:  busySlots,
		busy:       make(map[string]bool, len(busySlots)),
	}
	for _, s := range chartSlots {
		v.charts[s] = nil
	}
	for _, s := range textSlots {
		v.texts[s] = ""
	}
	for _, s := range busySlots {
		v.busy[s] = false
	}
	for _, opt := range opts {
		opt(v)
	}
	v.styles = newStyles(v.renderer)
	return v
}

// ForLayout creates a View with every slot the layout references.
func ForLayout(out io.Writer, l dashboard.Layout, opts ...Option) *View {
	charts, texts, busy := dashboard.Slots(l.Metrics)
	return New(out, charts, texts, busy, opts...)
}

// NewChart creates the chart for slot.
func (v *View) NewChart(slot string, cfg dashboard.ChartConfig) (dashboard.Chart, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.charts[slot]; !ok {
		return nil, fmt.Errorf("chart %s: %w", slot, dashboard.ErrNoSlot)
	}
	c := &Chart{view: v, cfg: cfg, data: cfg.Data}
	v.charts[slot] = c
	return c, nil
}

// SetText replaces the content of a text slot.
func (v *View) SetText(slot, text string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.texts[slot]; !ok {
		return fmt.Errorf("text %s: %w", slot, dashboard.ErrNoSlot)
	}
	v.texts[slot] = text
	return nil
}

// SetBusy shows or hides a busy indicator.
func (v *View) SetBusy(slot string, busy bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.busy[slot]; !ok {
		return fmt.Errorf("busy %s: %w", slot, dashboard.ErrNoSlot)
	}
	v.busy[slot] = busy
	return nil
}

// Text returns the content of a text slot.
func (v *View) Text(slot string) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.texts[slot]
}

// Busy reports whether a busy indicator is shown.
func (v *View) Busy(slot string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.busy[slot]
}

// Chart is a text bar chart bound to one slot.
type Chart struct {
	view    *View
	cfg     dashboard.ChartConfig
	data    dashboard.ChartData
	drawn   dashboard.ChartData
	updates int
}

// SetData binds new data. It is shown after the next Update.
func (c *Chart) SetData(d dashboard.ChartData) {
	c.view.mu.Lock()
	defer c.view.mu.Unlock()
	c.data = d
}

// Update makes the bound data visible.
func (c *Chart) Update() {
	c.view.mu.Lock()
	defer c.view.mu.Unlock()
	c.drawn = c.data
	c.updates++
}

// Updates returns how many times Update was called.
func (c *Chart) Updates() int {
	c.view.mu.Lock()
	defer c.view.mu.Unlock()
	return c.updates
}

// Render writes every slot to the view's writer.
func (v *View) Render() error {
	_, err := io.WriteString(v.out, v.String())
	return err
}

// String draws every slot.
func (v *View) String() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	var b strings.Builder
	for _, slot := range v.chartSlots {
		v.renderChart(&b, slot, v.charts[slot])
		b.WriteByte('\n')
	}
	for _, slot := range v.textSlots {
		val := v.texts[slot]
		if val == "" {
			val = "-"
		}
		fmt.Fprintf(&b, "%s %s\n", v.styles.label.Render(fmt.Sprintf("%-24s", slot)), v.styles.value.Render(val))
	}
	var loading []string
	for _, slot := range v.busySlots {
		if v.busy[slot] {
			loading = append(loading, slot)
		}
	}
	if len(loading) > 0 {
		sort.Strings(loading)
		b.WriteString(v.styles.busy.Render("loading: "+strings.Join(loading, ", ")) + "\n")
	}
	return b.String()
}

func (v *View) renderChart(b *strings.Builder, slot string, c *Chart) {
	b.WriteString(v.styles.title.Render("== "+slot+" ==") + "\n")
	if c == nil {
		b.WriteString("  " + v.styles.muted.Render("(no data)") + "\n")
		return
	}
	// a freshly created chart is drawn with its initial data
	data := c.drawn
	if c.updates == 0 {
		data = c.data
	}
	if len(data.Labels) == 0 {
		b.WriteString("  " + v.styles.muted.Render("(empty)") + "\n")
		return
	}

	opts := c.cfg.Options
	show := visibleLabels(len(data.Labels), opts)
	labelWidth := 0
	for i, l := range data.Labels {
		if show[i] && len(l) > labelWidth {
			labelWidth = len(l)
		}
	}

	if len(data.Datasets) > 1 {
		b.WriteString("  ")
		for i, ds := range data.Datasets {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(v.paint(ds, i, glyphs[i%len(glyphs)]) + " " + ds.Label)
		}
		b.WriteByte('\n')
	}

	if opts.Stacked || len(data.Datasets) == 1 {
		scale := v.scale(maxStacked(data), opts)
		for i, label := range data.Labels {
			if !show[i] {
				label = ""
			}
			fmt.Fprintf(b, "  %-*s |", labelWidth, label)
			var total float64
			for d, ds := range data.Datasets {
				val := valueAt(ds, i)
				total += val
				b.WriteString(v.paint(ds, d, strings.Repeat(glyphs[d%len(glyphs)], barLen(val, scale))))
			}
			fmt.Fprintf(b, " %s\n", formatValue(total))
		}
		return
	}

	scale := v.scale(maxSingle(data), opts)
	for i, label := range data.Labels {
		if !show[i] {
			label = ""
		}
		for d, ds := range data.Datasets {
			if d > 0 {
				label = ""
			}
			val := valueAt(ds, i)
			fmt.Fprintf(b, "  %-*s |%s %s\n", labelWidth, label,
				v.paint(ds, d, strings.Repeat(glyphs[d%len(glyphs)], barLen(val, scale))), formatValue(val))
		}
	}
}

// visibleLabels thins labels to at most MaxTicksLimit, evenly spaced, when
// AutoSkip is on.
func visibleLabels(n int, opts dashboard.ChartOptions) []bool {
	show := make([]bool, n)
	if !opts.AutoSkip || opts.MaxTicksLimit <= 0 || n <= opts.MaxTicksLimit {
		for i := range show {
			show[i] = true
		}
		return show
	}
	step := int(math.Ceil(float64(n) / float64(opts.MaxTicksLimit)))
	for i := 0; i < n; i += step {
		show[i] = true
	}
	return show
}

func (v *View) scale(max float64, opts dashboard.ChartOptions) float64 {
	if max <= 0 {
		return 0
	}
	width := float64(v.barWidth)
	if opts.BarPercentage > 0 && opts.BarPercentage < 1 {
		width *= opts.BarPercentage
	}
	return width / max
}

func barLen(val, scale float64) int {
	if val <= 0 || scale == 0 {
		return 0
	}
	n := int(math.Round(val * scale))
	if n == 0 {
		n = 1
	}
	return n
}

func maxStacked(data dashboard.ChartData) float64 {
	var max float64
	for i := range data.Labels {
		var sum float64
		for _, ds := range data.Datasets {
			sum += valueAt(ds, i)
		}
		max = math.Max(max, sum)
	}
	return max
}

func maxSingle(data dashboard.ChartData) float64 {
	var max float64
	for _, ds := range data.Datasets {
		for _, val := range ds.Data {
			max = math.Max(max, val)
		}
	}
	return max
}

func valueAt(ds dashboard.Dataset, i int) float64 {
	if i < len(ds.Data) {
		return ds.Data[i]
	}
	return 0
}

func formatValue(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// paint colors a bar segment with its dataset's border color, falling back
// to the palette entry for its position.
func (v *View) paint(ds dashboard.Dataset, series int, s string) string {
	if s == "" {
		return s
	}
	color := ds.BorderColor
	if color == "" {
		color = dashboard.PaletteColor(series).Border
	}
	return v.styles.series(color).Render(s)
}
