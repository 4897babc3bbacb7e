package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeBackend is a simple in-memory Backend implementation for tests.
type fakeBackend struct {
	mu sync.Mutex

	callsCounters   []counterCall
	callsHistograms []histCall
	flushCount      int
}

type counterCall struct {
	name   string
	delta  float64
	labels Labels
}

type histCall struct {
	name   string
	value  float64
	labels Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callsCounters = append(f.callsCounters, counterCall{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callsHistograms = append(f.callsHistograms, histCall{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushCount++
	return nil
}

func TestRecordQuery_SuccessAndFailure(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	backend = fb

	// Success case.
	RecordQuery("movie_type", nil, 2*time.Second)

	// Failure case.
	err := errors.New("boom")
	RecordQuery("releases", err, 1500*time.Millisecond)

	if len(fb.callsCounters) != 2 {
		t.Fatalf("expected 2 counter calls, got %d", len(fb.callsCounters))
	}
	if len(fb.callsHistograms) != 2 {
		t.Fatalf("expected 2 histogram calls, got %d", len(fb.callsHistograms))
	}

	// First call: success.
	cc0 := fb.callsCounters[0]
	if cc0.name != "corpus_queries_total" || cc0.delta != 1 {
		t.Fatalf("counter[0] = %#v; want name=corpus_queries_total, delta=1", cc0)
	}
	if got := cc0.labels["query"]; got != "movie_type" {
		t.Fatalf("counter[0].labels[query]=%q; want %q", got, "movie_type")
	}
	if got := cc0.labels["status"]; got != "success" {
		t.Fatalf("counter[0].labels[status]=%q; want %q", got, "success")
	}

	h0 := fb.callsHistograms[0]
	if h0.name != "corpus_query_duration_seconds" {
		t.Fatalf("hist[0].name=%q; want corpus_query_duration_seconds", h0.name)
	}
	if h0.value < 2.0-0.001 || h0.value > 2.0+0.001 {
		t.Fatalf("hist[0].value=%v; want ~2.0", h0.value)
	}

	// Second call: failure.
	cc1 := fb.callsCounters[1]
	if cc1.labels["query"] != "releases" {
		t.Fatalf("counter[1].labels[query]=%q; want releases", cc1.labels["query"])
	}
	if cc1.labels["status"] != "failure" {
		t.Fatalf("counter[1].labels[status]=%q; want %q", cc1.labels["status"], "failure")
	}

	h1 := fb.callsHistograms[1]
	if h1.value < 1.5-0.001 || h1.value > 1.5+0.001 {
		t.Fatalf("hist[1].value=%v; want ~1.5", h1.value)
	}
}

func TestRecordFileLoad(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	backend = fb

	RecordFileLoad("movie.metadata.tsv", 3, 2, time.Second)
	RecordFileLoad("plot_summaries.txt", 5, 0, time.Second) // no dropped counter

	if len(fb.callsCounters) != 3 {
		t.Fatalf("expected 3 counter calls, got %d", len(fb.callsCounters))
	}

	// 1) loaded rows
	c0 := fb.callsCounters[0]
	if c0.name != "corpus_rows_total" || c0.delta != 3 {
		t.Fatalf("counter[0] = %#v; want name=corpus_rows_total, delta=3", c0)
	}
	if c0.labels["file"] != "movie.metadata.tsv" || c0.labels["status"] != "loaded" {
		t.Fatalf("counter[0] labels = %v; want file=movie.metadata.tsv, status=loaded", c0.labels)
	}

	// 2) dropped rows
	c1 := fb.callsCounters[1]
	if c1.delta != 2 || c1.labels["status"] != "dropped" {
		t.Fatalf("counter[1] = %#v; want delta=2, status=dropped", c1)
	}

	// 3) second file, loaded only
	c2 := fb.callsCounters[2]
	if c2.labels["file"] != "plot_summaries.txt" || c2.labels["status"] != "loaded" {
		t.Fatalf("counter[2] labels = %v; want file=plot_summaries.txt, status=loaded", c2.labels)
	}

	if len(fb.callsHistograms) != 2 {
		t.Fatalf("expected 2 histogram calls, got %d", len(fb.callsHistograms))
	}
	if fb.callsHistograms[0].name != "corpus_file_load_seconds" {
		t.Fatalf("hist[0].name=%q; want corpus_file_load_seconds", fb.callsHistograms[0].name)
	}
}

func TestSetBackendAndFlush(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	SetBackend(fb)

	if backend != fb {
		t.Fatal("SetBackend did not replace global backend")
	}

	if err := Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}
	if fb.flushCount != 1 {
		t.Fatalf("expected flushCount=1, got %d", fb.flushCount)
	}

	// SetBackend(nil) should not nil out the backend.
	SetBackend(nil)
	if backend != fb {
		t.Fatal("SetBackend(nil) should not change backend")
	}
}
