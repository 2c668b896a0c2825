package suggest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/openshelf/engage/internal/catalog"
	"github.com/openshelf/engage/internal/kv"
	"github.com/openshelf/engage/internal/trending"
)

// fakeSearcher is a controllable search port.
//
// Per-query gates let tests hold a lookup in flight and release it at a
// chosen moment, which is how the staleness rule gets exercised
// deterministically.
type fakeSearcher struct {
	mu      sync.Mutex
	results map[string][]catalog.ProductSummary
	errs    map[string]error
	started map[string]chan struct{}
	gates   map[string]chan struct{}
	calls   []string
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{
		results: make(map[string][]catalog.ProductSummary),
		errs:    make(map[string]error),
		started: make(map[string]chan struct{}),
		gates:   make(map[string]chan struct{}),
	}
}

// gate makes lookups for query block until the returned channel is closed,
// and returns a second channel closed when the lookup begins.
func (f *fakeSearcher) gate(query string) (release chan struct{}, started chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()

	release = make(chan struct{})
	started = make(chan struct{}, 1)
	f.gates[query] = release
	f.started[query] = started
	return release, started
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSearcher) SearchProducts(ctx context.Context, query string, limit, offset int) ([]catalog.ProductSummary, error) {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	started := f.started[query]
	gate := f.gates[query]
	items := f.results[query]
	err := f.errs[query]
	f.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return items, err
}

// testPipeline builds a pipeline with a short debounce and a view feed.
func testPipeline(t *testing.T, searcher catalog.Searcher) (*Pipeline, *trending.Ranker, chan View) {
	t.Helper()

	trends := trending.NewRanker(kv.NewMemoryStore())
	trends.Initialize()

	views := make(chan View, 100)
	p := NewPipeline(searcher, trends, Options{
		DebounceDelay: 5 * time.Millisecond,
		OnUpdate: func(v View) {
			select {
			case views <- v:
			default:
			}
		},
	})
	t.Cleanup(p.Close)

	return p, trends, views
}

// waitForState blocks until a view with the wanted state arrives.
func waitForState(t *testing.T, views chan View, want State) View {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case v := <-views:
			if v.State == want {
				return v
			}
		case <-deadline:
			t.Fatalf("Timed out waiting for state %v", want)
		}
	}
}

// TestPipelineFulfillsQuery verifies the basic type-debounce-fetch flow.
func TestPipelineFulfillsQuery(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.results["rice"] = []catalog.ProductSummary{
		{ID: "1", Name: "Brown Rice"},
		{ID: "2", Name: "White Rice"},
	}

	p, _, views := testPipeline(t, searcher)

	p.OnQueryChange("rice")

	view := waitForState(t, views, StateFulfilled)
	if len(view.Suggestions) != 2 {
		t.Fatalf("Expected 2 suggestions, got %d", len(view.Suggestions))
	}
	if view.ShowTrending {
		t.Error("ShowTrending set for a full-length query")
	}
}

// TestPipelineShortQueryShowsTrending verifies queries below the minimum
// length go straight to Idle with the trending view, without any lookup.
func TestPipelineShortQueryShowsTrending(t *testing.T) {
	searcher := newFakeSearcher()
	p, trends, _ := testPipeline(t, searcher)

	trends.RecordSearch("rice")

	p.OnQueryChange("r")

	view := p.Snapshot()
	if view.State != StateIdle {
		t.Errorf("State = %v, want idle", view.State)
	}
	if !view.ShowTrending {
		t.Error("ShowTrending not set for short query")
	}
	if len(view.Trending) != 1 || view.Trending[0].Term != "rice" {
		t.Errorf("Trending view mismatch: %+v", view.Trending)
	}

	time.Sleep(50 * time.Millisecond)
	if searcher.callCount() != 0 {
		t.Error("Short query triggered a remote lookup")
	}
}

// TestPipelineDebounceCoalescesKeystrokes verifies rapid keystrokes issue
// only the final lookup.
func TestPipelineDebounceCoalescesKeystrokes(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.results["rice"] = []catalog.ProductSummary{{ID: "1"}}

	p, _, views := testPipeline(t, searcher)

	p.OnQueryChange("ri")
	p.OnQueryChange("ric")
	p.OnQueryChange("rice")

	waitForState(t, views, StateFulfilled)

	if got := searcher.callCount(); got != 1 {
		t.Errorf("Expected 1 lookup after rapid typing, got %d", got)
	}
}

// TestPipelineStaleResponseDiscarded verifies last-issued-wins: a slow
// response for an earlier query must not overwrite a faster later one.
func TestPipelineStaleResponseDiscarded(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.results["aa"] = []catalog.ProductSummary{{ID: "stale", Name: "Stale"}}
	searcher.results["aab"] = []catalog.ProductSummary{{ID: "fresh", Name: "Fresh"}}
	release, started := searcher.gate("aa")

	p, _, views := testPipeline(t, searcher)

	// Generation 1 goes out and hangs in flight.
	p.OnQueryChange("aa")
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("First lookup never started")
	}

	// Generation 2 supersedes it and resolves immediately.
	p.OnQueryChange("aab")
	view := waitForState(t, views, StateFulfilled)
	if len(view.Suggestions) != 1 || view.Suggestions[0].ID != "fresh" {
		t.Fatalf("Unexpected suggestions for generation 2: %+v", view.Suggestions)
	}

	// Now the stale response arrives late; it must be discarded silently.
	close(release)
	time.Sleep(50 * time.Millisecond)

	final := p.Snapshot()
	if final.State != StateFulfilled {
		t.Errorf("State = %v after stale arrival, want fulfilled", final.State)
	}
	if len(final.Suggestions) != 1 || final.Suggestions[0].ID != "fresh" {
		t.Errorf("Stale response overwrote fresh results: %+v", final.Suggestions)
	}
}

// TestPipelineLookupErrorClearsResults verifies remote failures clear the
// suggestion list without surfacing an error.
func TestPipelineLookupErrorClearsResults(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.results["rice"] = []catalog.ProductSummary{{ID: "1"}}
	searcher.errs["zzzz"] = errors.New("backend down")

	p, _, views := testPipeline(t, searcher)

	p.OnQueryChange("rice")
	waitForState(t, views, StateFulfilled)

	p.OnQueryChange("zzzz")
	view := waitForState(t, views, StateErrored)
	if len(view.Suggestions) != 0 {
		t.Errorf("Suggestions not cleared on error: %+v", view.Suggestions)
	}
}

// TestPipelineAcceptRecordsBeforeCallback verifies trending accounting is a
// side effect of acceptance and happens before the submit signal.
func TestPipelineAcceptRecordsBeforeCallback(t *testing.T) {
	searcher := newFakeSearcher()

	trends := trending.NewRanker(kv.NewMemoryStore())
	trends.Initialize()

	var countAtCallback int
	var gotProduct *catalog.ProductSummary
	done := make(chan struct{})

	p := NewPipeline(searcher, trends, Options{
		OnSubmit: func(term string, product *catalog.ProductSummary) {
			top := trends.TopN(5)
			if len(top) == 1 && top[0].Term == "rice" {
				countAtCallback = top[0].Count
			}
			gotProduct = product
			close(done)
		},
	})
	defer p.Close()

	chosen := &catalog.ProductSummary{ID: "1", Name: "Brown Rice"}
	p.OnSuggestionAccepted("rice", chosen)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Submit callback never fired")
	}

	if countAtCallback != 1 {
		t.Error("Term was not recorded before the submit callback fired")
	}
	if gotProduct == nil || gotProduct.ID != "1" {
		t.Errorf("Callback product = %+v, want the chosen product", gotProduct)
	}
}

// TestPipelineTrendingClick verifies a trending click sets the query,
// records the term, and signals a bare re-search.
func TestPipelineTrendingClick(t *testing.T) {
	searcher := newFakeSearcher()

	trends := trending.NewRanker(kv.NewMemoryStore())
	trends.Initialize()
	trends.RecordSearch("rice")

	var submittedTerm string
	var submittedProduct *catalog.ProductSummary
	done := make(chan struct{})

	p := NewPipeline(searcher, trends, Options{
		OnSubmit: func(term string, product *catalog.ProductSummary) {
			submittedTerm = term
			submittedProduct = product
			close(done)
		},
	})
	defer p.Close()

	p.OnTrendingTermClicked("rice")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Submit callback never fired")
	}

	if submittedTerm != "rice" {
		t.Errorf("Submitted term = %q, want rice", submittedTerm)
	}
	if submittedProduct != nil {
		t.Error("Trending click submitted a product; want bare re-search")
	}
	if p.Snapshot().Query != "rice" {
		t.Errorf("Active query = %q, want rice", p.Snapshot().Query)
	}
	if top := trends.TopN(1); top[0].Count != 2 {
		t.Errorf("Trending count = %d after click, want 2", top[0].Count)
	}
}

// TestPipelineCloseCancelsPendingLookup verifies teardown: a pending
// debounce never dispatches and an in-flight response never lands.
func TestPipelineCloseCancelsPendingLookup(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.results["rice"] = []catalog.ProductSummary{{ID: "1"}}
	release, started := searcher.gate("rice")

	p, _, _ := testPipeline(t, searcher)

	p.OnQueryChange("rice")
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("Lookup never started")
	}

	p.Close()
	close(release)
	time.Sleep(50 * time.Millisecond)

	if got := p.Snapshot().Suggestions; len(got) != 0 {
		t.Errorf("In-flight response landed after Close: %+v", got)
	}

	// Further keystrokes after Close must not dispatch lookups.
	p.OnQueryChange("beans")
	time.Sleep(50 * time.Millisecond)
	if searcher.callCount() != 1 {
		t.Error("Keystroke after Close triggered a lookup")
	}
}

// TestPipelineEmptyQueryReturnsToIdle verifies clearing the query drops
// remote results immediately.
func TestPipelineEmptyQueryReturnsToIdle(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.results["rice"] = []catalog.ProductSummary{{ID: "1"}}

	p, _, views := testPipeline(t, searcher)

	p.OnQueryChange("rice")
	waitForState(t, views, StateFulfilled)

	p.OnQueryChange("")

	view := p.Snapshot()
	if view.State != StateIdle {
		t.Errorf("State = %v after clearing query, want idle", view.State)
	}
	if len(view.Suggestions) != 0 {
		t.Errorf("Suggestions not cleared: %+v", view.Suggestions)
	}
	if !view.ShowTrending {
		t.Error("ShowTrending not set after clearing query")
	}
}
