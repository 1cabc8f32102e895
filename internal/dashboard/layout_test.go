package dashboard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecodeLayout(t *testing.T) {
	src := `
base_path: /stats
metrics:
  - name: total_requests
    kind: single
    slot: requests
    busy_slot: requests-busy
    total_slot: requests-total
  - name: user_agents
    kind: multi
    slot: agents
    chart:
      begin_at_zero: true
      stacked: false
      max_ticks_limit: 4
  - name: active_documents
    kind: scorecard
    fields:
      - {name: roads, slot: roads}
      - {name: schedules, slot: schedules}
`
	l, err := DecodeLayout(strings.NewReader(src))
	if err != nil {
		t.Fatalf("DecodeLayout() error = %v", err)
	}
	if l.BasePath != "/stats" {
		t.Errorf("BasePath = %q", l.BasePath)
	}
	if len(l.Metrics) != 3 {
		t.Fatalf("got %d metrics, want 3", len(l.Metrics))
	}

	req := l.Metrics[0]
	if req.Kind != SingleSeries || req.Label != DefaultLabel || req.TotalSlot != "requests-total" {
		t.Errorf("metric 0 = %+v", req)
	}
	if req.Chart != DefaultChartOptions() {
		t.Errorf("metric 0 chart = %+v, want defaults", req.Chart)
	}

	ua := l.Metrics[1]
	if ua.Kind != MultiSeries || ua.Chart.Stacked || ua.Chart.MaxTicksLimit != 4 {
		t.Errorf("metric 1 = %+v", ua)
	}

	docs := l.Metrics[2]
	if docs.Kind != Scorecard || len(docs.Fields) != 2 || docs.Fields[1].Slot != "schedules" {
		t.Errorf("metric 2 = %+v", docs)
	}
}

func TestDecodeLayout_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown kind", "metrics:\n  - {name: a, kind: pie, slot: a}\n", "unknown metric kind"},
		{"unknown key", "metrics:\n  - {name: a, kind: single, slot: a, colour: red}\n", "colour"},
		{"no metrics", "base_path: /x\n", "no metrics"},
		{"missing slot", "metrics:\n  - {name: a, kind: multi}\n", "needs a slot"},
		{"duplicate slot", "metrics:\n  - {name: a, kind: single, slot: s}\n  - {name: b, kind: single, slot: s}\n", "used twice"},
		{"empty scorecard", "metrics:\n  - {name: a, kind: scorecard}\n", "needs fields"},
		{"field without slot", "metrics:\n  - {name: a, kind: scorecard, fields: [{name: roads}]}\n", "field roads needs a slot"},
		{"busy slot shared", "metrics:\n  - {name: a, kind: single, slot: a, busy_slot: wait}\n  - {name: b, kind: single, slot: b, busy_slot: wait}\n", "slot wait used twice"},
		{"busy slot is a chart", "metrics:\n  - {name: a, kind: single, slot: a}\n  - {name: b, kind: single, slot: b, busy_slot: a}\n", "slot a used twice"},
		{"total reuses field", "metrics:\n  - {name: a, kind: single, slot: a, total_slot: n}\n  - {name: b, kind: scorecard, fields: [{name: roads, slot: n}]}\n", "slot n used twice"},
		{"fields share a slot", "metrics:\n  - {name: a, kind: scorecard, fields: [{name: roads, slot: n}, {name: schedules, slot: n}]}\n", "slot n used twice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeLayout(strings.NewReader(tt.src))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("DecodeLayout() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	if err := os.WriteFile(path, []byte("metrics:\n  - {name: total_requests, kind: single, slot: r}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	l, err := LoadLayout(path)
	if err != nil {
		t.Fatalf("LoadLayout() error = %v", err)
	}
	if l.BasePath != DefaultBasePath || len(l.Metrics) != 1 {
		t.Errorf("layout = %+v", l)
	}

	if _, err := LoadLayout(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadLayout(missing) error = nil")
	}
}

func TestDefaultLayoutIsValid(t *testing.T) {
	if err := DefaultLayout().Validate(); err != nil {
		t.Errorf("DefaultLayout().Validate() = %v", err)
	}
	charts, texts, busy := Slots(DefaultMetrics())
	if len(charts) != 5 || len(texts) != 4 || len(busy) != 6 {
		t.Errorf("Slots() = %d charts, %d texts, %d busy", len(charts), len(texts), len(busy))
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{SingleSeries, MultiSeries, Scorecard} {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
}
