/*
Package trending maintains the locally-ranked "trending searches" list.

The ranking is built purely from the user's own accepted searches: every
acceptance increments a per-term counter, and the trending view is the top-N
terms by count. Terms are matched case-insensitively (Unicode case folding)
while the casing of the first occurrence is preserved for display.

There is no eviction policy for distinct terms; the persisted set grows with
the user's vocabulary. See DESIGN.md for the open question on capping it.
*/
package trending

import (
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"

	"github.com/openshelf/engage/internal/kv"
)

// DefaultTopN is the number of terms shown in the trending view.
const DefaultTopN = 5

// SearchTerm is a single tracked search term.
type SearchTerm struct {
	// Term is the search string as first entered (display casing).
	Term string `json:"term"`

	// Count is how many times the term has been searched or selected.
	Count int `json:"count"`

	// LastSearchedAt is the most recent occurrence.
	LastSearchedAt time.Time `json:"lastSearchedAt"`
}

// Ranker is the frequency-counting search term set.
type Ranker struct {
	mu    sync.Mutex
	store kv.Store
	terms []SearchTerm

	hydrateOnce sync.Once
	folder      cases.Caser

	// now is injectable for tests.
	now func() time.Time
}

// NewRanker creates a ranker persisting through store.
func NewRanker(store kv.Store) *Ranker {
	return &Ranker{
		store:  store,
		folder: cases.Fold(),
		now:    time.Now,
	}
}

// Initialize hydrates the term set from the kv store.
//
// It is idempotent; missing or malformed storage yields an empty set, never
// an error.
func (r *Ranker) Initialize() {
	r.hydrateOnce.Do(func() {
		var stored []SearchTerm
		if !r.store.Load(kv.SearchTrendsKey, &stored) {
			return
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		r.terms = stored
	})
}

// RecordSearch counts one occurrence of term.
//
// The term is trimmed; an empty result is a silent no-op. Matching against
// existing terms is case-insensitive, and a match increments the count and
// refreshes the timestamp while keeping the original display casing. The
// full set is persisted after every call.
func (r *Ranker) RecordSearch(term string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}

	folded := r.folder.String(term)

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.terms {
		if r.folder.String(r.terms[i].Term) == folded {
			r.terms[i].Count++
			r.terms[i].LastSearchedAt = r.now()
			r.persistLocked()
			return
		}
	}

	r.terms = append(r.terms, SearchTerm{
		Term:           term,
		Count:          1,
		LastSearchedAt: r.now(),
	})
	r.persistLocked()
}

// TopN returns the n highest-count terms, descending by count.
//
// Ties keep insertion order (stable sort), so the result is deterministic
// within a process run. An n <= 0 falls back to DefaultTopN.
func (r *Ranker) TopN(n int) []SearchTerm {
	if n <= 0 {
		n = DefaultTopN
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ranked := make([]SearchTerm, len(r.terms))
	copy(ranked, r.terms)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Len returns the number of distinct tracked terms.
func (r *Ranker) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.terms)
}

// persistLocked writes the full term set back to the kv store.
// Persistence failures are non-fatal; the store logs them.
func (r *Ranker) persistLocked() {
	terms := r.terms
	if terms == nil {
		terms = []SearchTerm{}
	}
	_ = r.store.Save(kv.SearchTrendsKey, terms)
}
