package psiweb

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
)

// SuggestionStore is the search surface of the store. Each sub-query is
// independently limited; failures are tolerated per sub-query.
type SuggestionStore interface {
	SearchArticles(ctx context.Context, q string, limit int) ([]Suggestion, error)
	SearchCategories(ctx context.Context, q string, limit int) ([]Suggestion, error)
	SearchTags(ctx context.Context, q string, limit int) ([]Suggestion, error)
	SearchAuthors(ctx context.Context, q string, limit int) ([]Suggestion, error)
}

// Per-entity-type suggestion caps, applied before de-duplication.
const (
	suggestArticleLimit  = 5
	suggestCategoryLimit = 3
	suggestTagLimit      = 3
	suggestAuthorLimit   = 2
)

func (a *App) handleSuggestions(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, []Suggestion{})
	}

	ctx := c.Request().Context()
	type result struct {
		suggestions []Suggestion
		err         error
	}
	results := make([]result, 4)

	// All four sub-queries run concurrently; a failed one is logged and
	// contributes nothing instead of failing the whole response.
	var wg sync.WaitGroup
	run := func(i int, fn func(context.Context, string, int) ([]Suggestion, error), limit int) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := fn(ctx, q, limit)
			results[i] = result{suggestions: s, err: err}
		}()
	}
	run(0, a.Suggestions.SearchArticles, suggestArticleLimit)
	run(1, a.Suggestions.SearchCategories, suggestCategoryLimit)
	run(2, a.Suggestions.SearchTags, suggestTagLimit)
	run(3, a.Suggestions.SearchAuthors, suggestAuthorLimit)
	wg.Wait()

	merged := make([][]Suggestion, 0, len(results))
	for _, r := range results {
		if r.err != nil {
			c.Logger().Errorf("search: suggestion sub-query failed: %v", r.err)
			continue
		}
		merged = append(merged, r.suggestions)
	}
	return c.JSON(http.StatusOK, MergeSuggestions(merged...))
}

// MergeSuggestions concatenates the sub-query results in order and
// de-duplicates them by value. The first occurrence wins, so an article
// title shadows an identically named tag.
func MergeSuggestions(groups ...[]Suggestion) []Suggestion {
	seen := make(map[string]struct{})
	out := make([]Suggestion, 0)
	for _, group := range groups {
		for _, s := range group {
			if _, ok := seen[s.Value]; ok {
				continue
			}
			seen[s.Value] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
