// Package metrics is a small Prometheus-compatible registry built on the
// standard library: counters, gauges, and histograms with optional
// labels, exposed in the text exposition format.
package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBuckets cover sub-millisecond to minute-scale durations.
var DefaultBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// Counter only goes up.
type Counter struct{ v atomic.Int64 }

func (c *Counter) Inc()         { c.v.Add(1) }
func (c *Counter) Add(n int64)  { c.v.Add(n) }
func (c *Counter) Value() int64 { return c.v.Load() }

// Gauge goes up and down.
type Gauge struct{ v atomic.Int64 }

func (g *Gauge) Set(n int64)  { g.v.Store(n) }
func (g *Gauge) Inc()         { g.v.Add(1) }
func (g *Gauge) Dec()         { g.v.Add(-1) }
func (g *Gauge) Value() int64 { return g.v.Load() }

// Histogram records a value distribution over fixed buckets.
type Histogram struct {
	mu      sync.Mutex
	bounds  []float64
	counts  []uint64
	sum     float64
	samples uint64
}

func newHistogram(bounds []float64) *Histogram {
	b := append([]float64(nil), bounds...)
	sort.Float64s(b)
	return &Histogram{bounds: b, counts: make([]uint64, len(b))}
}

// Observe records a value.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sum += v
	h.samples++
	for i, bound := range h.bounds {
		if v <= bound {
			h.counts[i]++
			return
		}
	}
}

// Since observes the seconds elapsed since t.
func (h *Histogram) Since(t time.Time) { h.Observe(time.Since(t).Seconds()) }

// series is one labeled instance of a metric family.
type series struct {
	labels string // raw label body, `k="v",k2="v2"` or ""
	metric any    // *Counter, *Gauge, or *Histogram
}

// family groups all label variants of one metric name.
type family struct {
	kind   string // counter, gauge, histogram
	help   string
	series []*series
}

// Registry holds named metrics and renders them for scraping.
type Registry struct {
	mu       sync.Mutex
	families map[string]*family
	order    []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{families: make(map[string]*family)}
}

// Counter returns (or registers) the counter for name. Use WithLabels
// to address a labeled variant.
func (r *Registry) Counter(name, help string) *Counter {
	s := r.lookup(name, "counter", help, func() any { return &Counter{} })
	return s.(*Counter)
}

// Gauge returns (or registers) the gauge for name.
func (r *Registry) Gauge(name, help string) *Gauge {
	s := r.lookup(name, "gauge", help, func() any { return &Gauge{} })
	return s.(*Gauge)
}

// Histogram returns (or registers) the histogram for name. Nil buckets
// mean DefaultBuckets.
func (r *Registry) Histogram(name, help string, buckets []float64) *Histogram {
	if buckets == nil {
		buckets = DefaultBuckets
	}
	s := r.lookup(name, "histogram", help, func() any { return newHistogram(buckets) })
	return s.(*Histogram)
}

func (r *Registry) lookup(name, kind, help string, create func() any) any {
	base, labels := splitName(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	fam, ok := r.families[base]
	if !ok {
		fam = &family{kind: kind, help: help}
		r.families[base] = fam
		r.order = append(r.order, base)
	}
	for _, s := range fam.series {
		if s.labels == labels {
			return s.metric
		}
	}
	s := &series{labels: labels, metric: create()}
	fam.series = append(fam.series, s)
	sort.Slice(fam.series, func(i, j int) bool { return fam.series[i].labels < fam.series[j].labels })
	return s.metric
}

// WithLabels appends label pairs to a metric name:
// WithLabels("jobs_total", "stage", "clean") -> `jobs_total{stage="clean"}`.
func WithLabels(name string, kvs ...string) string {
	if len(kvs) == 0 || len(kvs)%2 != 0 {
		return name
	}
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i := 0; i < len(kvs); i += 2 {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s=%q", kvs[i], kvs[i+1])
	}
	b.WriteByte('}')
	return b.String()
}

func splitName(name string) (base, labels string) {
	open := strings.IndexByte(name, '{')
	if open == -1 {
		return name, ""
	}
	return name[:open], strings.TrimSuffix(name[open+1:], "}")
}

// Render produces the Prometheus text exposition format.
func (r *Registry) Render() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	for _, base := range r.order {
		fam := r.families[base]
		if fam.help != "" {
			fmt.Fprintf(&b, "# HELP %s %s\n", base, fam.help)
		}
		fmt.Fprintf(&b, "# TYPE %s %s\n", base, fam.kind)

		for _, s := range fam.series {
			switch m := s.metric.(type) {
			case *Counter:
				fmt.Fprintf(&b, "%s %d\n", withLabelBody(base, s.labels), m.Value())
			case *Gauge:
				fmt.Fprintf(&b, "%s %d\n", withLabelBody(base, s.labels), m.Value())
			case *Histogram:
				renderHistogram(&b, base, s.labels, m)
			}
		}
	}
	return b.String()
}

func renderHistogram(b *strings.Builder, base, labels string, h *Histogram) {
	h.mu.Lock()
	bounds := h.bounds
	counts := append([]uint64(nil), h.counts...)
	sum, samples := h.sum, h.samples
	h.mu.Unlock()

	var cumulative uint64
	for i, bound := range bounds {
		cumulative += counts[i]
		le := fmt.Sprintf(`le="%g"`, bound)
		fmt.Fprintf(b, "%s %d\n", withLabelBody(base+"_bucket", joinLabels(labels, le)), cumulative)
	}
	fmt.Fprintf(b, "%s %d\n", withLabelBody(base+"_bucket", joinLabels(labels, `le="+Inf"`)), samples)
	fmt.Fprintf(b, "%s %g\n", withLabelBody(base+"_sum", labels), sum)
	fmt.Fprintf(b, "%s %d\n", withLabelBody(base+"_count", labels), samples)
}

func withLabelBody(base, labels string) string {
	if labels == "" {
		return base
	}
	return base + "{" + labels + "}"
}

func joinLabels(a, b string) string {
	if a == "" {
		return b
	}
	return a + "," + b
}

// Handler serves the registry at /metrics.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		w.Write([]byte(r.Render()))
	})
}

// ServeAsync exposes /metrics on the given port in a background
// goroutine. A port of 0 disables serving.
func (r *Registry) ServeAsync(port int) {
	if port <= 0 {
		return
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", r.Handler())
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
			fmt.Printf("metrics server error on port %d: %v\n", port, err)
		}
	}()
}
