package metrics

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestCounterAndGauge(t *testing.T) {
	r := New()
	c := r.Counter("reviews_total", "Total reviews processed")
	c.Inc()
	c.Add(4)
	if c.Value() != 5 {
		t.Errorf("counter = %d, want 5", c.Value())
	}

	g := r.Gauge("restaurants_loaded", "")
	g.Set(10)
	g.Dec()
	if g.Value() != 9 {
		t.Errorf("gauge = %d, want 9", g.Value())
	}

	out := r.Render()
	for _, want := range []string{
		"# HELP reviews_total Total reviews processed",
		"# TYPE reviews_total counter",
		"reviews_total 5",
		"restaurants_loaded 9",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}

func TestSameNameReturnsSameMetric(t *testing.T) {
	r := New()
	a := r.Counter("dup_total", "")
	b := r.Counter("dup_total", "")
	if a != b {
		t.Error("same name produced distinct counters")
	}
}

func TestLabeledSeries(t *testing.T) {
	r := New()
	r.Counter(WithLabels("docs_total", "source", "blog"), "Docs by source").Add(3)
	r.Counter(WithLabels("docs_total", "source", "zomato"), "Docs by source").Add(7)

	out := r.Render()
	if !strings.Contains(out, `docs_total{source="blog"} 3`) {
		t.Errorf("missing blog series:\n%s", out)
	}
	if !strings.Contains(out, `docs_total{source="zomato"} 7`) {
		t.Errorf("missing zomato series:\n%s", out)
	}
	if strings.Count(out, "# TYPE docs_total counter") != 1 {
		t.Errorf("TYPE line not emitted exactly once:\n%s", out)
	}
}

func TestHistogramRendersCumulativeBuckets(t *testing.T) {
	r := New()
	h := r.Histogram("embed_seconds", "Embed durations", []float64{0.1, 1, 10})
	h.Observe(0.05)
	h.Observe(0.5)
	h.Observe(0.7)
	h.Observe(100) // above every bound, only +Inf

	out := r.Render()
	for _, want := range []string{
		`embed_seconds_bucket{le="0.1"} 1`,
		`embed_seconds_bucket{le="1"} 3`,
		`embed_seconds_bucket{le="10"} 3`,
		`embed_seconds_bucket{le="+Inf"} 4`,
		"embed_seconds_count 4",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}

func TestCounterConcurrency(t *testing.T) {
	r := New()
	c := r.Counter("race_total", "")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Inc()
			}
		}()
	}
	wg.Wait()
	if c.Value() != 5000 {
		t.Errorf("counter = %d, want 5000", c.Value())
	}
}

func TestHandler(t *testing.T) {
	r := New()
	r.Counter("hits_total", "").Inc()

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp := httptest.NewRecorder()
	r.Handler().ServeHTTP(resp, httptest.NewRequest("GET", "/metrics", nil))
	if ct := resp.Header().Get("Content-Type"); !strings.Contains(ct, "text/plain") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(resp.Body.String(), "hits_total 1") {
		t.Errorf("body = %q", resp.Body.String())
	}
}
