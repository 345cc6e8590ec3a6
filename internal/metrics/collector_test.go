package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCounter(t *testing.T) {
	c := NewMetricsCollector()
	ctr := c.Counter("test_total", "test counter")

	ctr.Inc()
	ctr.Inc()
	if ctr.Value() != 2 {
		t.Fatalf("Value() = %d, want 2", ctr.Value())
	}

	// Same name returns the same counter.
	if c.Counter("test_total", "test counter") != ctr {
		t.Fatal("expected the same counter instance")
	}
}

func TestHistogram(t *testing.T) {
	c := NewMetricsCollector()
	h := c.Histogram("test_seconds", "test histogram", []float64{1, 5, 10})

	h.Observe(0.5)
	h.Observe(3)
	h.Observe(100)

	if h.count != 3 {
		t.Fatalf("count = %d, want 3", h.count)
	}
	if h.buckets[0].count != 1 || h.buckets[1].count != 2 || h.buckets[2].count != 2 {
		t.Fatalf("bucket counts = %+v", h.buckets)
	}
}

func TestHandler_Exposition(t *testing.T) {
	c := NewMetricsCollector()
	c.Counter("test_turns_total", "turns").Inc()
	c.Histogram("test_latency_seconds", "latency", []float64{1}).Observe(0.2)

	rec := httptest.NewRecorder()
	c.Handler()(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		"storybuilders_uptime_seconds",
		"test_turns_total 1",
		"# TYPE test_turns_total counter",
		`test_latency_seconds_bucket{le="1"} 1`,
		"test_latency_seconds_count 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q:\n%s", want, body)
		}
	}
	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Errorf("Content-Type = %q", got)
	}
}
