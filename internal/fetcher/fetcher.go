// Package fetcher runs one refresh end to end on a background goroutine:
// resolve the category table, walk every post page in sequence, then
// persist the snapshot. Consumers watch the run through a channel of
// Update messages and are never blocked by network I/O.
package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"wpevents/internal/event"
	"wpevents/internal/wpapi"
)

// ErrRefreshInProgress is returned while a run is already active; callers
// treat it as a no-op.
var ErrRefreshInProgress = errors.New("refresh already in progress")

// Source is the slice of the API client the fetcher needs.
type Source interface {
	FetchCategories(ctx context.Context) (map[int64]string, error)
	FetchPosts(ctx context.Context, page int) (*wpapi.PostsPage, error)
}

// Store persists the snapshot at the end of a successful run.
type Store interface {
	Save(categories map[int64]string, posts []json.RawMessage, fetchedAt string) error
}

// Fetcher orchestrates refresh runs. At most one run is active at a time.
type Fetcher struct {
	source  Source
	store   Store
	logger  *slog.Logger
	running atomic.Bool
}

func New(source Source, store Store, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		source: source,
		store:  store,
		logger: logger,
	}
}

// Refresh starts one run on a background goroutine and returns its update
// stream. The channel is unbuffered, so page fetching paces itself to the
// consumer; it is closed after the terminal message. A second Refresh
// while a run is active returns ErrRefreshInProgress.
func (f *Fetcher) Refresh(ctx context.Context) (<-chan Update, error) {
	if !f.running.CompareAndSwap(false, true) {
		return nil, ErrRefreshInProgress
	}

	updates := make(chan Update)
	go func() {
		// Clear the run flag before closing the stream, so a consumer that
		// saw the channel close can start the next run immediately.
		defer close(updates)
		defer f.running.Store(false)
		f.run(ctx, updates)
	}()

	return updates, nil
}

func (f *Fetcher) run(ctx context.Context, updates chan<- Update) {
	started := time.Now()

	updates <- Status{Message: "fetching categories"}
	categories, err := f.source.FetchCategories(ctx)
	if err != nil {
		f.fail(updates, fmt.Errorf("fetch categories: %w", err))
		return
	}
	f.logger.Info("resolved categories", "count", len(categories))

	updates <- Status{Message: "fetching posts (page 1)"}
	first, err := f.source.FetchPosts(ctx, 1)
	if err != nil {
		f.fail(updates, fmt.Errorf("fetch posts page 1: %w", err))
		return
	}

	total := first.TotalPages
	posts := append([]json.RawMessage(nil), first.Posts...)
	updates <- Progress{Page: 1, TotalPages: total}
	updates <- Batch{Events: event.NormalizeAll(first.Posts, categories)}

	for page := 2; page <= total; page++ {
		updates <- Status{Message: fmt.Sprintf("fetching posts (page %d)", page)}
		resp, err := f.source.FetchPosts(ctx, page)
		if err != nil {
			f.fail(updates, fmt.Errorf("fetch posts page %d: %w", page, err))
			return
		}
		posts = append(posts, resp.Posts...)
		updates <- Progress{Page: page, TotalPages: total}
		updates <- Batch{Events: event.NormalizeAll(resp.Posts, categories)}
	}

	fetchedAt := time.Now().UTC().Format(time.RFC3339)

	updates <- Status{Message: "saving snapshot"}
	if err := f.store.Save(categories, posts, fetchedAt); err != nil {
		f.fail(updates, fmt.Errorf("save snapshot: %w", err))
		return
	}

	f.logger.Info("refresh finished",
		"pages", total,
		"posts", len(posts),
		"duration", time.Since(started),
	)

	updates <- Finished{Categories: categories, Posts: posts, FetchedAt: fetchedAt}
}

// fail emits the terminal failure message. The in-memory aggregate is
// abandoned with the goroutine; the on-disk snapshot stays whatever it was
// before the run.
func (f *Fetcher) fail(updates chan<- Update, err error) {
	f.logger.Error("refresh failed", "error", err)
	updates <- Failed{Message: err.Error()}
}
