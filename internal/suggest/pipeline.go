/*
Package suggest implements the debounced, staleness-aware suggestion pipeline
behind the storefront search box.

A live-typed query either produces remote product suggestions (query at or
above the minimum length, debounced, last-issued-wins) or the locally-ranked
trending view (query empty or too short). Overlapping in-flight lookups are
resolved with a monotonic generation counter compared at response time: only
the response to the most recently issued request may update visible state,
regardless of arrival order.
*/
package suggest

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/openshelf/engage/internal/catalog"
	"github.com/openshelf/engage/internal/trending"
)

// Defaults for the pipeline tunables.
const (
	DefaultMinQueryLength = 2
	DefaultDebounceDelay  = 300 * time.Millisecond
	DefaultPageSize       = 5
	DefaultTrendingSize   = 5
)

// State describes the visible suggestion state for the current query session.
type State int

const (
	// StateIdle means no remote lookup is wanted; the trending view renders.
	StateIdle State = iota

	// StatePending means a lookup is debouncing or in flight.
	StatePending

	// StateFulfilled means the latest lookup resolved with results.
	StateFulfilled

	// StateErrored means the latest lookup failed; results are cleared and
	// the failure is not surfaced to the user.
	StateErrored
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateFulfilled:
		return "fulfilled"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// View is the render-ready snapshot handed to the host UI.
type View struct {
	// Query is the current query text.
	Query string

	// State is the suggestion state for the current query session.
	State State

	// Suggestions are the remote results, valid when State is StateFulfilled.
	Suggestions []catalog.ProductSummary

	// Trending is the top-N trending terms, rendered when ShowTrending is set.
	Trending []trending.SearchTerm

	// ShowTrending is true when the query is empty or below the minimum
	// length, so the trending list renders instead of suggestions.
	ShowTrending bool
}

// Options configures a Pipeline. Zero values fall back to the defaults above.
type Options struct {
	// MinQueryLength is the minimum query length (in runes) that triggers a
	// remote lookup.
	MinQueryLength int

	// DebounceDelay is how long after the last keystroke a lookup is issued.
	DebounceDelay time.Duration

	// PageSize is the remote lookup page size.
	PageSize int

	// TrendingSize is how many trending terms the view carries.
	TrendingSize int

	// OnUpdate, if set, is called after every visible state change with a
	// fresh View. It is invoked without internal locks held.
	OnUpdate func(View)

	// OnSubmit, if set, is called when a suggestion is accepted or a trending
	// term is clicked. A nil product means a bare text re-search. Trending
	// accounting has already happened by the time it fires.
	OnSubmit func(term string, product *catalog.ProductSummary)
}

// Pipeline turns keystrokes into either remote suggestions or the trending
// view, with strict staleness control.
type Pipeline struct {
	mu       sync.Mutex
	searcher catalog.Searcher
	trends   *trending.Ranker
	debounce *Debouncer
	opts     Options

	// generation is the monotonic request counter. Every keystroke bumps it,
	// superseding the authority of any in-flight lookup.
	generation uint64

	query   string
	state   State
	results []catalog.ProductSummary
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewPipeline creates a pipeline over the given search port and ranker.
func NewPipeline(searcher catalog.Searcher, trends *trending.Ranker, opts Options) *Pipeline {
	if opts.MinQueryLength <= 0 {
		opts.MinQueryLength = DefaultMinQueryLength
	}
	if opts.DebounceDelay <= 0 {
		opts.DebounceDelay = DefaultDebounceDelay
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.TrendingSize <= 0 {
		opts.TrendingSize = DefaultTrendingSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pipeline{
		searcher: searcher,
		trends:   trends,
		debounce: NewDebouncer(opts.DebounceDelay),
		opts:     opts,
		state:    StateIdle,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// OnQueryChange records a new query, restarts the debounce timer, and
// supersedes any in-flight lookup's authority.
//
// A query below the minimum length transitions straight to StateIdle and
// clears remote results; the host renders the trending view instead.
func (p *Pipeline) OnQueryChange(text string) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}

	p.query = text
	p.generation++
	gen := p.generation

	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < p.opts.MinQueryLength {
		p.state = StateIdle
		p.results = nil
		p.mu.Unlock()

		p.debounce.Cancel()
		p.notify()
		return
	}

	p.state = StatePending
	p.mu.Unlock()

	p.debounce.Restart(func() {
		p.lookup(gen, trimmed)
	})
	p.notify()
}

// OnSuggestionAccepted records term with the trending ranker and then signals
// the host. Trending accounting is a side effect of acceptance, not of
// typing, and always happens before the submit callback fires. A nil product
// means a bare text re-search was chosen.
func (p *Pipeline) OnSuggestionAccepted(term string, product *catalog.ProductSummary) {
	p.trends.RecordSearch(term)

	p.resetSession("")

	if p.opts.OnSubmit != nil {
		p.opts.OnSubmit(term, product)
	}
}

// OnTrendingTermClicked sets the active query to term, records it, and
// signals the host to execute a bare re-search.
func (p *Pipeline) OnTrendingTermClicked(term string) {
	p.trends.RecordSearch(term)

	p.resetSession(term)

	if p.opts.OnSubmit != nil {
		p.opts.OnSubmit(term, nil)
	}
}

// Snapshot returns the current render-ready view.
func (p *Pipeline) Snapshot() View {
	p.mu.Lock()

	suggestions := make([]catalog.ProductSummary, len(p.results))
	copy(suggestions, p.results)

	trimmed := strings.TrimSpace(p.query)
	view := View{
		Query:        p.query,
		State:        p.state,
		Suggestions:  suggestions,
		ShowTrending: utf8.RuneCountInString(trimmed) < p.opts.MinQueryLength,
	}
	p.mu.Unlock()

	if view.ShowTrending {
		view.Trending = p.trends.TopN(p.opts.TrendingSize)
	}
	return view
}

// Close tears the pipeline down: the pending debounce timer is cancelled and
// any in-flight lookup loses its authority to update state.
func (p *Pipeline) Close() {
	p.mu.Lock()
	p.closed = true
	p.generation++
	p.mu.Unlock()

	p.cancel()
	p.debounce.Stop()
}

// lookup issues the remote search for gen and resolves it against the
// current generation. It runs on the debounce timer's goroutine, so it never
// blocks keystroke handling.
func (p *Pipeline) lookup(gen uint64, query string) {
	p.mu.Lock()
	if p.closed || gen != p.generation {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	items, err := p.searcher.SearchProducts(p.ctx, query, p.opts.PageSize, 0)

	p.mu.Lock()
	if p.closed || gen != p.generation {
		// A newer keystroke superseded this lookup; discard silently.
		p.mu.Unlock()
		return
	}

	if err != nil {
		p.state = StateErrored
		p.results = nil
		p.mu.Unlock()

		log.Printf("Warning: suggestion lookup for %q failed: %v", query, err)
		p.notify()
		return
	}

	p.state = StateFulfilled
	p.results = items
	p.mu.Unlock()

	p.notify()
}

// resetSession ends the current query session after an acceptance or a
// trending click, setting the query to next.
func (p *Pipeline) resetSession(next string) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.generation++
	p.query = next
	p.state = StateIdle
	p.results = nil
	p.mu.Unlock()

	p.debounce.Cancel()
	p.notify()
}

// notify invokes the host's update callback with a fresh view.
func (p *Pipeline) notify() {
	if p.opts.OnUpdate == nil {
		return
	}
	p.opts.OnUpdate(p.Snapshot())
}
