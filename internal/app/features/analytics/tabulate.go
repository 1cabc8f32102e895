package analytics

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dalemusser/stratadash/internal/app/system/useragent"
	"github.com/dalemusser/stratadash/internal/domain/models"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Tally accumulates one metric over a stream of request counts. Memory
// grows with the number of buckets and distinct keys, never with the
// number of rows.
type Tally interface {
	Add(rc models.RequestCount)
	Result() any
}

// NewTally returns the tally for a request-count metric, or nil if metric
// is not computed from request counts.
func NewTally(metric string, tf Timeframe) Tally {
	switch metric {
	case MetricTotalRequests:
		return newRequestTally(tf)
	case MetricLoggedInUsers:
		return newLoggedInTally(tf)
	case MetricUserAgents:
		return newUserAgentTally(tf)
	case MetricUserSemesters:
		return newSemesterTally(tf)
	case MetricRequestPaths:
		return newPathTally(tf, TopPaths)
	}
	return nil
}

type requestTally struct {
	tf    Timeframe
	data  []int64
	total int64
}

func newRequestTally(tf Timeframe) *requestTally {
	return &requestTally{tf: tf, data: make([]int64, tf.Len())}
}

func (t *requestTally) Add(rc models.RequestCount) {
	if i := t.tf.Bucket(rc.Timestamp); i >= 0 {
		t.data[i]++
		t.total++
	}
}

func (t *requestTally) Result() any { return t.series() }

func (t *requestTally) series() Series {
	total := t.total
	return Series{Labels: t.tf.Labels(), Data: t.data, Total: &total}
}

type loggedInTally struct {
	tf        Timeframe
	perBucket []map[string]struct{}
	window    map[string]struct{}
}

func newLoggedInTally(tf Timeframe) *loggedInTally {
	return &loggedInTally{tf: tf, perBucket: make([]map[string]struct{}, tf.Len()), window: make(map[string]struct{})}
}

func (t *loggedInTally) Add(rc models.RequestCount) {
	if !rc.IsAuthenticated || rc.StudentUniqueID == "" {
		return
	}
	i := t.tf.Bucket(rc.Timestamp)
	if i < 0 {
		return
	}
	if t.perBucket[i] == nil {
		t.perBucket[i] = make(map[string]struct{})
	}
	t.perBucket[i][rc.StudentUniqueID] = struct{}{}
	t.window[rc.StudentUniqueID] = struct{}{}
}

func (t *loggedInTally) Result() any { return t.series() }

func (t *loggedInTally) series() Series {
	data := make([]int64, t.tf.Len())
	for i, set := range t.perBucket {
		data[i] = int64(len(set))
	}
	total := int64(len(t.window))
	return Series{Labels: t.tf.Labels(), Data: data, Total: &total}
}

type userAgentTally struct {
	tf     Timeframe
	series *orderedmap.OrderedMap[string, []int64]
}

func newUserAgentTally(tf Timeframe) *userAgentTally {
	series := orderedmap.New[string, []int64]()
	for _, c := range useragent.Categories() {
		series.Set(string(c), make([]int64, tf.Len()))
	}
	return &userAgentTally{tf: tf, series: series}
}

func (t *userAgentTally) Add(rc models.RequestCount) {
	i := t.tf.Bucket(rc.Timestamp)
	if i < 0 {
		return
	}
	counts, _ := t.series.Get(string(useragent.Classify(rc.UserAgent)))
	counts[i]++
}

func (t *userAgentTally) Result() any { return t.multi() }

func (t *userAgentTally) multi() MultiSeries {
	return MultiSeries{Labels: t.tf.Labels(), Data: t.series}
}

type semesterTally struct {
	tf       Timeframe
	students map[string]map[string]struct{}
}

func newSemesterTally(tf Timeframe) *semesterTally {
	return &semesterTally{tf: tf, students: make(map[string]map[string]struct{})}
}

func (t *semesterTally) Add(rc models.RequestCount) {
	if !rc.IsAuthenticated || rc.StudentUniqueID == "" || rc.StudentSemester == "" {
		return
	}
	if t.tf.Bucket(rc.Timestamp) < 0 {
		return
	}
	set := t.students[rc.StudentSemester]
	if set == nil {
		set = make(map[string]struct{})
		t.students[rc.StudentSemester] = set
	}
	set[rc.StudentUniqueID] = struct{}{}
}

func (t *semesterTally) Result() any { return t.series() }

func (t *semesterTally) series() Series {
	labels := make([]string, 0, len(t.students))
	for sem := range t.students {
		labels = append(labels, sem)
	}
	sort.Slice(labels, func(i, j int) bool {
		return semesterLess(labels[i], labels[j])
	})

	data := make([]int64, len(labels))
	for i, sem := range labels {
		data[i] = int64(len(t.students[sem]))
	}
	return Series{Labels: labels, Data: data}
}

func semesterLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

type pathTally struct {
	tf     Timeframe
	n      int
	counts map[string]int64
}

func newPathTally(tf Timeframe, n int) *pathTally {
	return &pathTally{tf: tf, n: n, counts: make(map[string]int64)}
}

func (t *pathTally) Add(rc models.RequestCount) {
	if t.tf.Bucket(rc.Timestamp) < 0 {
		return
	}
	t.counts[NormalizePath(rc.Path)]++
}

func (t *pathTally) Result() any { return t.series() }

func (t *pathTally) series() Series {
	paths := make([]string, 0, len(t.counts))
	for p := range t.counts {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		if t.counts[paths[i]] != t.counts[paths[j]] {
			return t.counts[paths[i]] > t.counts[paths[j]]
		}
		return paths[i] < paths[j]
	})
	if len(paths) > t.n {
		paths = paths[:t.n]
	}

	data := make([]int64, len(paths))
	for i, p := range paths {
		data[i] = t.counts[p]
	}
	return Series{Labels: paths, Data: data}
}

// TabulateRequests counts requests per bucket.
func TabulateRequests(tf Timeframe, rows []models.RequestCount) Series {
	t := newRequestTally(tf)
	feed(t, rows)
	return t.series()
}

// TabulateLoggedInUsers counts distinct authenticated students per bucket.
// The total counts distinct students over the whole window, so it is
// usually smaller than the sum of the buckets.
func TabulateLoggedInUsers(tf Timeframe, rows []models.RequestCount) Series {
	t := newLoggedInTally(tf)
	feed(t, rows)
	return t.series()
}

// TabulateUserAgents counts requests per bucket for every user agent
// category. Every category is present, in useragent.Categories order.
func TabulateUserAgents(tf Timeframe, rows []models.RequestCount) MultiSeries {
	t := newUserAgentTally(tf)
	feed(t, rows)
	return t.multi()
}

// TabulateSemesters counts distinct students per semester. Labels are
// ordered numerically, with any non-numeric semesters last.
func TabulateSemesters(tf Timeframe, rows []models.RequestCount) Series {
	t := newSemesterTally(tf)
	feed(t, rows)
	return t.series()
}

// TabulatePaths returns the n most requested paths, most frequent first.
// Ties are ordered by path.
func TabulatePaths(tf Timeframe, rows []models.RequestCount, n int) Series {
	t := newPathTally(tf, n)
	feed(t, rows)
	return t.series()
}

func feed(t Tally, rows []models.RequestCount) {
	for _, rc := range rows {
		t.Add(rc)
	}
}

// NormalizePath trims a trailing slash so "/courses/" and "/courses" are
// counted together. The root path is left alone.
func NormalizePath(p string) string {
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	if p == "" {
		return "/"
	}
	return p
}
