// Package stats computes aggregate statistics over paginated collections,
// sampling pages adaptively so a dashboard load never costs more than
// three requests per resource.
package stats

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/api"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/models"
)

// fetchAllThreshold is the largest page count that is still fetched in
// full. Beyond it only the middle and last pages are sampled, so the
// request count is bounded at three regardless of collection size.
const fetchAllThreshold = 3

// Client is the slice of the API client the aggregator needs. Tests
// substitute fabricated page servers through it.
type Client interface {
	Get(ctx context.Context, path string, out any, opts ...api.ReqOption) error
}

// Categorizer maps an item to its category key, e.g. platform.
type Categorizer[T any] func(item T) string

// Scorer extracts a numeric score from an item for averaging use cases.
type Scorer[T any] func(item T) float64

// bucket accumulates one category during a pass. Sums only ever receive
// finite values; malformed scores were coerced to 0 upstream.
type bucket struct {
	count int
	sum   float64
}

// Aggregate computes per-category counts (and averages, when score is
// non-nil) for the collection at path. Collections spanning at most three
// pages are tallied exactly; larger ones are estimated from a sample of
// the first, middle and last pages, with counts extrapolated
// proportionally. Estimated counts may not sum exactly to Total; that is
// a documented property of the approximation, not a defect.
func Aggregate[T any](ctx context.Context, client Client, path string, categorize Categorizer[T], score Scorer[T]) (models.StatResult, error) {
	// Page 1 always comes first: the sampling decision needs its envelope
	first, err := fetchPage[T](ctx, client, path, 1)
	if err != nil {
		return models.StatResult{}, err
	}

	result := models.StatResult{
		Total:      first.Total,
		Categories: make(map[string]models.CategoryStat),
		PagesRead:  1,
	}

	if first.Total == 0 {
		result.Exact = true
		return result, nil
	}

	buckets := make(map[string]*bucket)
	sampled := 0

	fold := func(items []T) {
		for i := range items {
			key := categorize(items[i])
			b := buckets[key]
			if b == nil {
				b = &bucket{}
				buckets[key] = b
			}
			b.count++
			if score != nil {
				b.sum += models.Finite(score(items[i]))
			}
			sampled++
		}
	}

	fold(first.Items)

	lastPage := first.LastPage
	exact := true

	switch {
	case lastPage <= 1:
		// Page 1 was the entire collection

	case lastPage <= fetchAllThreshold:
		pages := make([]int, 0, lastPage-1)
		for page := 2; page <= lastPage; page++ {
			pages = append(pages, page)
		}
		fetched, err := fetchPages[T](ctx, client, path, pages)
		if err != nil {
			return models.StatResult{}, err
		}
		for _, page := range fetched {
			fold(page.Items)
		}
		result.PagesRead += len(fetched)

	default:
		// Strategic sample: middle and last page, skipping collisions
		// with page 1. Middle+last reduces the bias a single early page
		// would carry in time-ordered data.
		middle := (lastPage + 1) / 2
		pages := make([]int, 0, 2)
		for _, p := range []int{middle, lastPage} {
			if p != 1 && !contains(pages, p) {
				pages = append(pages, p)
			}
		}
		fetched, err := fetchPages[T](ctx, client, path, pages)
		if err != nil {
			return models.StatResult{}, err
		}
		for _, page := range fetched {
			fold(page.Items)
		}
		result.PagesRead += len(fetched)
		exact = false
	}

	result.Exact = exact

	if exact {
		deriveExact(&result, buckets, score != nil)
	} else {
		deriveEstimated(&result, buckets, sampled, score != nil)
	}

	return result, nil
}

// deriveExact reports folded counts as final values.
func deriveExact(result *models.StatResult, buckets map[string]*bucket, scoring bool) {
	var totalCount int
	var totalSum float64

	for key, b := range buckets {
		stat := models.CategoryStat{Count: b.count}
		if scoring && b.count > 0 {
			stat.Average = models.RoundTo1(b.sum / float64(b.count))
		}
		result.Categories[key] = stat
		totalCount += b.count
		totalSum += b.sum
	}

	if scoring && totalCount > 0 {
		result.Average = models.RoundTo1(totalSum / float64(totalCount))
	}
}

// deriveEstimated extrapolates sample ratios onto the envelope total.
// Sample averages stand in for population averages; the overall average
// weights them by the extrapolated counts.
func deriveEstimated(result *models.StatResult, buckets map[string]*bucket, sampled int, scoring bool) {
	if sampled == 0 {
		return
	}

	var weighted float64

	for key, b := range buckets {
		ratio := float64(b.count) / float64(sampled)
		estimated := int(math.Round(float64(result.Total) * ratio))

		stat := models.CategoryStat{Count: estimated}
		if scoring && b.count > 0 {
			stat.Average = models.RoundTo1(b.sum / float64(b.count))
		}
		result.Categories[key] = stat

		weighted += stat.Average * float64(estimated)
	}

	if scoring && result.Total > 0 {
		result.Average = models.RoundTo1(weighted / float64(result.Total))
	}
}

// fetchPage retrieves a single page of the collection.
func fetchPage[T any](ctx context.Context, client Client, path string, page int) (models.Page[T], error) {
	reqPath := path
	if page > 1 {
		reqPath = fmt.Sprintf("%s?page=%d", path, page)
	}

	var resp models.PageResponse[T]
	if err := client.Get(ctx, reqPath, &resp); err != nil {
		return models.Page[T]{}, fmt.Errorf("failed to fetch %s page %d: %w", path, page, err)
	}
	return resp.Data, nil
}

// fetchPages retrieves the given pages concurrently. Folding happens
// after all pages arrive; counts and sums are commutative so arrival
// order does not matter.
func fetchPages[T any](ctx context.Context, client Client, path string, pages []int) ([]models.Page[T], error) {
	results := make([]models.Page[T], len(pages))
	errs := make([]error, len(pages))

	var wg sync.WaitGroup
	for i, page := range pages {
		wg.Add(1)
		go func(i, page int) {
			defer wg.Done()
			results[i], errs[i] = fetchPage[T](ctx, client, path, page)
		}(i, page)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func contains(pages []int, page int) bool {
	for _, p := range pages {
		if p == page {
			return true
		}
	}
	return false
}
