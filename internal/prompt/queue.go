package prompt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// ErrNoMorePages is the exhaustion signal a PageFetcher returns when the
// source has no page at the requested index. It is informational, not a
// failure.
var ErrNoMorePages = errors.New("no more passage pages")

// LoadError indicates a page fetch failed for a reason other than
// exhaustion. Queue state is unchanged and the same page may be retried.
type LoadError struct {
	Page int
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load passage page %d: %v", e.Page, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// PageFetcher retrieves one ordered page of passages for a user. Pages are
// requested with a strictly increasing 1-based index.
type PageFetcher interface {
	FetchPage(ctx context.Context, user string, page int) ([]string, error)
}

// SkipRecorder persists a skipped passage into the user's exclusion set.
// Implementations must be idempotent (set semantics).
type SkipRecorder interface {
	RecordSkip(user, transcript string) error
}

// Queue maintains the append-only passage list and navigation cursor for one
// user. Passage identity is trimmed-text equality: two passages with equal
// trimmed text are the same passage everywhere, a known limitation when two
// distinct prompts share their wording.
type Queue struct {
	fetcher   PageFetcher
	skips     SkipRecorder
	logger    *slog.Logger
	user      string
	threshold int

	mu        sync.Mutex
	passages  []string
	seen      map[string]struct{}
	page      int // next page to fetch, 1-based
	exhausted bool
	loading   bool
	index     int // position within the available view
}

// QueueStats represents queue state for monitoring
type QueueStats struct {
	User         string `json:"user"`
	TotalLoaded  int    `json:"total_loaded"`
	NextPage     int    `json:"next_page"`
	Exhausted    bool   `json:"exhausted"`
	Loading      bool   `json:"loading"`
	CurrentIndex int    `json:"current_index"`
}

// NewQueue creates a passage queue for a user. threshold is the distance
// from the end of the available list at which a background prefetch fires.
func NewQueue(fetcher PageFetcher, skips SkipRecorder, logger *slog.Logger, user string, threshold int) *Queue {
	return &Queue{
		fetcher:   fetcher,
		skips:     skips,
		logger:    logger,
		user:      user,
		threshold: threshold,
		seen:      make(map[string]struct{}),
		page:      1,
	}
}

// LoadNextPage fetches the page at the current cursor. On exhaustion the
// cursor stops advancing; on any other failure the state is left unchanged
// for retry. Concurrent loads collapse into one in-flight request.
func (q *Queue) LoadNextPage(ctx context.Context) error {
	q.mu.Lock()
	if q.exhausted || q.loading {
		q.mu.Unlock()
		return nil
	}
	q.loading = true
	page := q.page
	q.mu.Unlock()

	return q.fetch(ctx, page)
}

// fetch performs one page load. The caller must have set the loading flag.
func (q *Queue) fetch(ctx context.Context, page int) error {
	passages, err := q.fetcher.FetchPage(ctx, q.user, page)

	q.mu.Lock()
	defer q.mu.Unlock()
	q.loading = false

	if errors.Is(err, ErrNoMorePages) {
		q.exhausted = true
		q.logger.Info("Passage source exhausted",
			slog.String("user", q.user),
			slog.Int("pages_loaded", page-1),
			slog.Int("total_passages", len(q.passages)),
		)
		return nil
	}

	if err != nil {
		q.logger.Warn("Passage page load failed",
			slog.String("user", q.user),
			slog.Int("page", page),
			slog.String("error", err.Error()),
		)
		return &LoadError{Page: page, Err: err}
	}

	added := 0
	for _, p := range passages {
		key := strings.TrimSpace(p)
		if _, dup := q.seen[key]; dup {
			continue
		}
		q.seen[key] = struct{}{}
		q.passages = append(q.passages, p)
		added++
	}
	q.page = page + 1

	q.logger.Debug("Passage page loaded",
		slog.String("user", q.user),
		slog.Int("page", page),
		slog.Int("fetched", len(passages)),
		slog.Int("added", added),
	)

	return nil
}

// Available returns the passages not excluded by the given trimmed-text set.
// It is a derived view, recomputed on every call.
func (q *Queue) Available(exclusion map[string]struct{}) []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.availableLocked(exclusion)
}

func (q *Queue) availableLocked(exclusion map[string]struct{}) []string {
	out := make([]string, 0, len(q.passages))
	for _, p := range q.passages {
		if _, excluded := exclusion[strings.TrimSpace(p)]; excluded {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Current returns the passage at the navigation cursor together with its
// position. The cursor is clamped into bounds when exclusions shrink the
// available view underneath it.
func (q *Queue) Current(exclusion map[string]struct{}) (string, int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	avail := q.availableLocked(exclusion)
	if len(avail) == 0 {
		return "", 0, false
	}

	if q.index >= len(avail) {
		q.index = len(avail) - 1
	}

	return avail[q.index], q.index, true
}

// Next advances the cursor. Past the end it wraps to the start only once the
// source is exhausted and passages remain available; otherwise it holds
// position while more pages load. Landing within the prefetch threshold of
// the end triggers exactly one background page load.
func (q *Queue) Next(ctx context.Context, exclusion map[string]struct{}) {
	q.mu.Lock()

	avail := q.availableLocked(exclusion)
	next := q.index + 1

	if next >= len(avail) {
		if q.exhausted && len(avail) > 0 {
			q.index = 0
		}
	} else {
		q.index = next
	}

	if next >= len(avail)-q.threshold && !q.loading && !q.exhausted {
		q.loading = true
		page := q.page
		prefetchCtx := context.WithoutCancel(ctx)
		go func() {
			if err := q.fetch(prefetchCtx, page); err != nil {
				q.logger.Warn("Background prefetch failed",
					slog.String("user", q.user),
					slog.Int("page", page),
					slog.String("error", err.Error()),
				)
			}
		}()
	}

	q.mu.Unlock()
}

// Skip records the current passage's trimmed text into the user's skip
// exclusion set. The navigation cursor is not advanced; the passage simply
// drops out of the available view.
func (q *Queue) Skip(exclusion map[string]struct{}) error {
	current, _, ok := q.Current(exclusion)
	if !ok {
		return fmt.Errorf("no passage to skip")
	}

	return q.skips.RecordSkip(q.user, strings.TrimSpace(current))
}

// Drained reports the terminal "nothing left" condition: the source is
// exhausted and no passage survives the exclusion set.
func (q *Queue) Drained(exclusion map[string]struct{}) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.exhausted && len(q.availableLocked(exclusion)) == 0
}

// Exhausted reports whether the source has signalled its last page
func (q *Queue) Exhausted() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.exhausted
}

// Stats returns a snapshot for monitoring
func (q *Queue) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()

	return QueueStats{
		User:         q.user,
		TotalLoaded:  len(q.passages),
		NextPage:     q.page,
		Exhausted:    q.exhausted,
		Loading:      q.loading,
		CurrentIndex: q.index,
	}
}
