package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/dalemusser/stratadash/internal/client"
	"go.uber.org/zap"
)

func single(name string) Metric {
	return Metric{Name: name, Kind: SingleSeries, Slot: name + "-chart", BusySlot: name + "-busy", Chart: DefaultChartOptions()}
}

func TestRefresh_OneRequestPerEndpoint(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(r.URL.Path, "/user_agents/"):
			w.Write([]byte(`{"labels":["a"],"data":{"Desktop":[1]}}`))
		case strings.Contains(r.URL.Path, "/active_documents/"):
			w.Write([]byte(`{"roads":1,"schedules":2}`))
		default:
			w.Write([]byte(`{"labels":["a"],"data":[1],"total":1}`))
		}
	}))
	defer srv.Close()

	for _, tf := range []string{"day", "week", "month", "year"} {
		t.Run(tf, func(t *testing.T) {
			mu.Lock()
			paths = nil
			mu.Unlock()

			r := New(client.New(srv.URL, ""), newFakeSurface(), DefaultMetrics(), Options{Logger: zap.NewNop()})
			if err := r.Refresh(context.Background(), tf).Wait(); err != nil {
				t.Fatalf("Wait() error = %v", err)
			}

			mu.Lock()
			got := append([]string(nil), paths...)
			mu.Unlock()
			sort.Strings(got)

			want := []string{
				"/analytics/active_documents/" + tf,
				"/analytics/logged_in_users/" + tf,
				"/analytics/request_paths/" + tf,
				"/analytics/total_requests/" + tf,
				"/analytics/user_agents/" + tf,
				"/analytics/user_semesters/" + tf,
			}
			if fmt.Sprint(got) != fmt.Sprint(want) {
				t.Errorf("requested %v, want %v", got, want)
			}
		})
	}
}

func TestRefresh_SingleSeriesCreateThenUpdate(t *testing.T) {
	surface := newFakeSurface()
	fetcher := &fakeFetcher{respond: func(string) (string, error) {
		return `{"labels":["a","b"],"data":[1,2]}`, nil
	}}
	r := New(fetcher, surface, []Metric{single("total_requests")}, Options{})

	if err := r.Refresh(context.Background(), "day").Wait(); err != nil {
		t.Fatalf("first Wait() error = %v", err)
	}
	first := r.Chart("total_requests-chart")
	if first == nil {
		t.Fatal("chart not created")
	}
	fc := surface.chart("total_requests-chart")
	ds := fc.data.Datasets
	if len(ds) != 1 || fmt.Sprint(ds[0].Data) != "[1 2]" {
		t.Fatalf("datasets = %+v", ds)
	}
	if ds[0].Label != DefaultLabel || ds[0].BackgroundColor != Palette[0].Background || ds[0].BorderWidth != 1 {
		t.Errorf("dataset style = %+v", ds[0])
	}
	if fc.cfg.Type != "bar" || !fc.cfg.Options.BeginAtZero {
		t.Errorf("chart config = %+v", fc.cfg)
	}
	if fc.updates != 0 {
		t.Errorf("updates after create = %d, want 0", fc.updates)
	}

	if err := r.Refresh(context.Background(), "week").Wait(); err != nil {
		t.Fatalf("second Wait() error = %v", err)
	}
	if r.Chart("total_requests-chart") != first {
		t.Error("chart handle replaced on update")
	}
	if surface.created != 1 {
		t.Errorf("charts created = %d, want 1", surface.created)
	}
	if fc.updates != 1 {
		t.Errorf("updates = %d, want 1", fc.updates)
	}
}

func TestRefresh_MultiSeriesColorsFollowServerOrder(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantOrder []string
	}{
		{"sorted keys", `{"labels":["l1","l2"],"data":{"X":[1,2],"Y":[3,4]}}`, []string{"X", "Y"}},
		{"unsorted keys", `{"labels":["l1","l2"],"data":{"Y":[3,4],"X":[1,2]}}`, []string{"Y", "X"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			surface := newFakeSurface()
			fetcher := &fakeFetcher{respond: func(string) (string, error) { return tt.body, nil }}
			m := Metric{Name: "user_agents", Kind: MultiSeries, Slot: "ua", Chart: DefaultChartOptions()}
			r := New(fetcher, surface, []Metric{m}, Options{})

			if err := r.Refresh(context.Background(), "day").Wait(); err != nil {
				t.Fatalf("Wait() error = %v", err)
			}
			ds := surface.chart("ua").data.Datasets
			if len(ds) != 2 {
				t.Fatalf("got %d datasets, want 2", len(ds))
			}
			for i, want := range tt.wantOrder {
				if ds[i].Label != want {
					t.Errorf("dataset %d = %s, want %s", i, ds[i].Label, want)
				}
				if ds[i].BackgroundColor != Palette[i].Background || ds[i].BorderColor != Palette[i].Border {
					t.Errorf("dataset %d colors = %s/%s, want palette %d", i, ds[i].BackgroundColor, ds[i].BorderColor, i)
				}
			}
		})
	}
}

func TestRefresh_PaletteCycles(t *testing.T) {
	surface := newFakeSurface()
	body := `{"labels":["a"],"data":{"s0":[1],"s1":[1],"s2":[1],"s3":[1],"s4":[1],"s5":[1]}}`
	fetcher := &fakeFetcher{respond: func(string) (string, error) { return body, nil }}
	r := New(fetcher, surface, []Metric{{Name: "m", Kind: MultiSeries, Slot: "m"}}, Options{})

	if err := r.Refresh(context.Background(), "day").Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	ds := surface.chart("m").data.Datasets
	if ds[5].BackgroundColor != Palette[0].Background {
		t.Errorf("series 5 color = %s, want palette 0", ds[5].BackgroundColor)
	}
}

func TestRefresh_ScorecardLiteral(t *testing.T) {
	surface := newFakeSurface()
	fetcher := &fakeFetcher{respond: func(path string) (string, error) {
		if strings.Contains(path, "active_documents") {
			return `{"roads":7,"schedules":1200}`, nil
		}
		return `{"total":42}`, nil
	}}
	metrics := []Metric{
		{Name: "total_requests", Kind: Scorecard, Fields: []Field{{Name: "total", Slot: "total"}}},
		{Name: "active_documents", Kind: Scorecard, Fields: []Field{{Name: "roads", Slot: "roads"}, {Name: "schedules", Slot: "schedules"}}},
	}
	r := New(fetcher, surface, metrics, Options{})

	if err := r.Refresh(context.Background(), "day").Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if got := surface.text("total"); got != "42" {
		t.Errorf("total = %q, want \"42\"", got)
	}
	if surface.text("roads") != "7" || surface.text("schedules") != "1200" {
		t.Errorf("roads=%q schedules=%q", surface.text("roads"), surface.text("schedules"))
	}
}

func TestRefresh_ScorecardIgnoresOtherMembers(t *testing.T) {
	surface := newFakeSurface()
	fetcher := &fakeFetcher{respond: func(string) (string, error) {
		return `{"labels":["a","b"],"data":[1,41],"total":42}`, nil
	}}
	m := Metric{Name: "total_requests", Kind: Scorecard, Fields: []Field{{Name: "total", Slot: "total"}}}
	r := New(fetcher, surface, []Metric{m}, Options{})

	if err := r.Refresh(context.Background(), "day").Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if got := surface.text("total"); got != "42" {
		t.Errorf("total = %q, want \"42\"", got)
	}
}

func TestRefresh_ScorecardFieldNotANumber(t *testing.T) {
	for _, body := range []string{`{"total":[1,2]}`, `{"total":null}`, `{"total":"many"}`} {
		t.Run(body, func(t *testing.T) {
			surface := newFakeSurface()
			fetcher := &fakeFetcher{respond: func(string) (string, error) { return body, nil }}
			m := Metric{Name: "total_requests", Kind: Scorecard, Fields: []Field{{Name: "total", Slot: "total"}}}
			r := New(fetcher, surface, []Metric{m}, Options{})

			if err := r.Refresh(context.Background(), "day").Wait(); !errors.Is(err, ErrMalformed) {
				t.Fatalf("Wait() error = %v, want ErrMalformed", err)
			}
			if surface.text("total") != "" {
				t.Errorf("total = %q, want untouched", surface.text("total"))
			}
		})
	}
}

func TestRefresh_SingleSeriesTotalSlot(t *testing.T) {
	surface := newFakeSurface()
	fetcher := &fakeFetcher{respond: func(string) (string, error) {
		return `{"labels":["a"],"data":[3],"total":3}`, nil
	}}
	m := single("total_requests")
	m.TotalSlot = "total"
	r := New(fetcher, surface, []Metric{m}, Options{})

	if err := r.Refresh(context.Background(), "day").Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if got := surface.text("total"); got != "3" {
		t.Errorf("total = %q, want 3", got)
	}
}

func TestRefresh_BusyIndicator(t *testing.T) {
	surface := newFakeSurface()
	release := make(chan struct{})
	fail := false
	fetcher := &fakeFetcher{respond: func(string) (string, error) {
		<-release
		if fail {
			return "", errors.New("connection refused")
		}
		return `{"labels":[],"data":[]}`, nil
	}}
	r := New(fetcher, surface, []Metric{single("m")}, Options{})

	b := r.Refresh(context.Background(), "day")
	if !surface.isBusy("m-busy") {
		t.Error("busy not set on issuance")
	}
	close(release)
	if err := b.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if surface.isBusy("m-busy") {
		t.Error("busy not cleared on success")
	}

	fail = true
	err := r.Refresh(context.Background(), "day").Wait()
	if err == nil {
		t.Fatal("Wait() error = nil, want fetch failure")
	}
	if !surface.isBusy("m-busy") {
		t.Error("busy cleared after failure")
	}
}

func TestRefresh_FailureLeavesChart(t *testing.T) {
	surface := newFakeSurface()
	var fail bool
	fetcher := &fakeFetcher{respond: func(string) (string, error) {
		if fail {
			return "", &client.StatusError{Method: http.MethodGet, StatusCode: http.StatusInternalServerError}
		}
		return `{"labels":["a"],"data":[5]}`, nil
	}}
	r := New(fetcher, surface, []Metric{single("m")}, Options{})

	if err := r.Refresh(context.Background(), "day").Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	fail = true
	err := r.Refresh(context.Background(), "week").Wait()

	var se *client.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("Wait() error = %v, want *client.StatusError", err)
	}
	fc := surface.chart("m-chart")
	if fc.updates != 0 || fc.data.Datasets[0].Data[0] != 5 {
		t.Errorf("chart changed after failure: updates=%d data=%v", fc.updates, fc.data.Datasets[0].Data)
	}
}

func TestRefresh_MalformedAndMissingSlot(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		missing bool
		want    error
	}{
		{"length mismatch", `{"labels":["a","b"],"data":[1]}`, false, ErrMalformed},
		{"missing slot", `{"labels":["a"],"data":[1]}`, true, ErrNoSlot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			surface := newFakeSurface()
			surface.missing["m-chart"] = tt.missing
			fetcher := &fakeFetcher{respond: func(string) (string, error) { return tt.body, nil }}
			r := New(fetcher, surface, []Metric{single("m")}, Options{})

			err := r.Refresh(context.Background(), "day").Wait()
			if !errors.Is(err, tt.want) {
				t.Errorf("Wait() error = %v, want %v", err, tt.want)
			}
			if r.Chart("m-chart") != nil {
				t.Error("chart created despite failure")
			}
			if !surface.isBusy("m-busy") {
				t.Error("busy cleared despite failure")
			}
		})
	}
}

func TestRefresh_ScorecardMissingFieldWritesNothing(t *testing.T) {
	surface := newFakeSurface()
	fetcher := &fakeFetcher{respond: func(string) (string, error) { return `{"roads":1}`, nil }}
	m := Metric{Name: "active_documents", Kind: Scorecard, Fields: []Field{{Name: "roads", Slot: "roads"}, {Name: "schedules", Slot: "schedules"}}}
	r := New(fetcher, surface, []Metric{m}, Options{})

	if err := r.Refresh(context.Background(), "day").Wait(); !errors.Is(err, ErrMalformed) {
		t.Fatalf("Wait() error = %v, want ErrMalformed", err)
	}
	if surface.text("roads") != "" {
		t.Errorf("roads = %q, want untouched", surface.text("roads"))
	}
}

// staleFixture issues a slow "day" batch followed by a fast "week" batch
// and lets the day response arrive last.
func staleFixture(t *testing.T, opts Options) (*fakeSurface, *Batch) {
	t.Helper()
	surface := newFakeSurface()
	releaseDay := make(chan struct{})
	fetcher := &fakeFetcher{respond: func(path string) (string, error) {
		if strings.HasSuffix(path, "/day") {
			<-releaseDay
			return `{"labels":["day"],"data":[1]}`, nil
		}
		return `{"labels":["week"],"data":[2]}`, nil
	}}
	r := New(fetcher, surface, []Metric{single("m")}, opts)

	day := r.Refresh(context.Background(), "day")
	week := r.Refresh(context.Background(), "week")
	if err := week.Wait(); err != nil {
		t.Fatalf("week Wait() error = %v", err)
	}
	close(releaseDay)
	if err := day.Wait(); err != nil {
		t.Fatalf("day Wait() error = %v", err)
	}
	return surface, day
}

func TestRefresh_StaleResponseDiscarded(t *testing.T) {
	surface, day := staleFixture(t, Options{})

	if got := surface.chart("m-chart").data.Labels; fmt.Sprint(got) != "[week]" {
		t.Errorf("labels = %v, want [week]", got)
	}
	if day.Discarded() != 1 {
		t.Errorf("Discarded() = %d, want 1", day.Discarded())
	}
}

func TestRefresh_AllowStaleLastArrivalWins(t *testing.T) {
	surface, day := staleFixture(t, Options{AllowStale: true})

	if got := surface.chart("m-chart").data.Labels; fmt.Sprint(got) != "[day]" {
		t.Errorf("labels = %v, want [day]", got)
	}
	if day.Discarded() != 0 {
		t.Errorf("Discarded() = %d, want 0", day.Discarded())
	}
}

func TestRefresh_ConcurrentBatchesCreateOneChart(t *testing.T) {
	surface := newFakeSurface()
	fetcher := &fakeFetcher{respond: func(string) (string, error) {
		return `{"labels":["a"],"data":[1]}`, nil
	}}
	r := New(fetcher, surface, []Metric{single("m")}, Options{AllowStale: true})

	var batches []*Batch
	for i := 0; i < 20; i++ {
		batches = append(batches, r.Refresh(context.Background(), "day"))
	}
	for _, b := range batches {
		if err := b.Wait(); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}
	if surface.created != 1 {
		t.Errorf("charts created = %d, want 1", surface.created)
	}
	if got := surface.chart("m-chart").updates; got != 19 {
		t.Errorf("updates = %d, want 19", got)
	}
}

func TestPath(t *testing.T) {
	r := New(&fakeFetcher{}, newFakeSurface(), nil, Options{BasePath: "/analytics/"})
	if got := r.Path("total_requests", "day"); got != "/analytics/total_requests/day" {
		t.Errorf("Path() = %q", got)
	}
	if got := r.Path("m", "a b"); got != "/analytics/m/a%20b" {
		t.Errorf("Path() = %q", got)
	}
}
