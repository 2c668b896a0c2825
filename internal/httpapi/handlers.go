package httpapi

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/engage/internal/catalog"
	"github.com/openshelf/engage/internal/history"
	"github.com/openshelf/engage/internal/trending"
)

// EngagementHandlers serves the engagement endpoints the storefront UI calls.
type EngagementHandlers struct {
	History  *history.Cache
	Limiter  *history.ViewLimiter
	Trends   *trending.Ranker
	Searcher catalog.Searcher

	// MinQueryLength, PageSize and TrendingSize mirror the pipeline tunables
	// for the stateless HTTP surface.
	MinQueryLength int
	PageSize       int
	TrendingSize   int
}

// NewEngagementHandlers wires the handler set over the engagement services.
func NewEngagementHandlers(cache *history.Cache, limiter *history.ViewLimiter, trends *trending.Ranker, searcher catalog.Searcher) *EngagementHandlers {
	return &EngagementHandlers{
		History:        cache,
		Limiter:        limiter,
		Trends:         trends,
		Searcher:       searcher,
		MinQueryLength: 2,
		PageSize:       5,
		TrendingSize:   5,
	}
}

// acceptRequest is the body of POST /api/engagement/accept.
type acceptRequest struct {
	Term    string                  `json:"term"`
	Product *catalog.ProductSummary `json:"product,omitempty"`
}

// TrackView records a product-view event into the recently-viewed cache.
// Repeat views of the same product inside the cool-down window are dropped.
func (h *EngagementHandlers) TrackView(c *gin.Context) {
	var product catalog.ProductSummary
	if err := c.ShouldBindJSON(&product); err != nil {
		log.Printf("Error binding view event JSON: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if !h.Limiter.Allow(product.ID) {
		c.Status(http.StatusOK)
		return
	}

	h.History.Record(product)
	c.Status(http.StatusOK)
}

// GetRecent returns the recently-viewed list, most-recent-first.
func (h *EngagementHandlers) GetRecent(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	c.JSON(http.StatusOK, gin.H{"items": h.History.List(limit)})
}

// ClearRecent empties the recently-viewed list.
func (h *EngagementHandlers) ClearRecent(c *gin.Context) {
	h.History.Clear()
	c.Status(http.StatusOK)
}

// GetTrending returns the top-N trending search terms.
func (h *EngagementHandlers) GetTrending(c *gin.Context) {
	limit := h.TrendingSize
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	c.JSON(http.StatusOK, gin.H{"terms": h.Trends.TopN(limit)})
}

// Suggest returns remote product suggestions for the query, or the trending
// list when the query is empty or below the minimum length.
//
// The UI debounces its own keystrokes before calling this endpoint (the
// embedded pipeline owns debouncing for in-process hosts). Lookup failures
// degrade to an empty suggestion list; suggestions are best-effort and never
// an error the user sees.
func (h *EngagementHandlers) Suggest(c *gin.Context) {
	query := c.Query("q")

	if len([]rune(query)) < h.MinQueryLength {
		c.JSON(http.StatusOK, gin.H{
			"items":        []catalog.ProductSummary{},
			"trending":     h.Trends.TopN(h.TrendingSize),
			"showTrending": true,
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	items, err := h.Searcher.SearchProducts(ctx, query, h.PageSize, 0)
	if err != nil {
		log.Printf("Warning: suggestion lookup for %q failed: %v", query, err)
		items = []catalog.ProductSummary{}
	}
	if items == nil {
		items = []catalog.ProductSummary{}
	}

	c.JSON(http.StatusOK, gin.H{
		"items":        items,
		"showTrending": false,
	})
}

// AcceptSuggestion records an accepted search term (with or without a chosen
// product) into the trending ranker. The UI calls this before it navigates.
func (h *EngagementHandlers) AcceptSuggestion(c *gin.Context) {
	var req acceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Error binding accept JSON: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	h.Trends.RecordSearch(req.Term)
	c.Status(http.StatusOK)
}
