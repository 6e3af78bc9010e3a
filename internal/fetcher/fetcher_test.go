package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wpevents/internal/cache"
	"wpevents/internal/event"
	"wpevents/internal/wpapi"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSource scripts the API responses page by page.
type fakeSource struct {
	categories map[int64]string
	catErr     error
	catStarted chan struct{}
	catBlock   chan struct{}

	pages   map[int]*wpapi.PostsPage
	pageErr map[int]error

	fetchedPages []int
}

func (s *fakeSource) FetchCategories(ctx context.Context) (map[int64]string, error) {
	if s.catStarted != nil {
		close(s.catStarted)
		s.catStarted = nil
	}
	if s.catBlock != nil {
		<-s.catBlock
	}
	if s.catErr != nil {
		return nil, s.catErr
	}
	return s.categories, nil
}

func (s *fakeSource) FetchPosts(ctx context.Context, page int) (*wpapi.PostsPage, error) {
	s.fetchedPages = append(s.fetchedPages, page)
	if err := s.pageErr[page]; err != nil {
		return nil, err
	}
	resp, ok := s.pages[page]
	if !ok {
		return nil, fmt.Errorf("unscripted page %d", page)
	}
	return resp, nil
}

func postWithStart(title, start string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"title":{"rendered":"%s"},"acf":{"esemeny_kezdete":"%s"}}`, title, start))
}

func postWithoutStart(title string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"title":{"rendered":"%s"},"acf":{}}`, title))
}

func collect(t *testing.T, updates <-chan Update) []Update {
	t.Helper()
	var all []Update
	for {
		select {
		case u, ok := <-updates:
			if !ok {
				return all
			}
			all = append(all, u)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for updates")
		}
	}
}

func terminal(t *testing.T, all []Update) Update {
	t.Helper()
	require.NotEmpty(t, all, "no updates received")
	return all[len(all)-1]
}

func TestRefreshSuccess(t *testing.T) {
	source := &fakeSource{
		categories: map[int64]string{1: "Fesztivál"},
		pages: map[int]*wpapi.PostsPage{
			1: {TotalPages: 3, Posts: []json.RawMessage{
				postWithStart("first", "20240901"),
				postWithoutStart("dropped"),
			}},
			2: {TotalPages: 3, Posts: []json.RawMessage{postWithStart("second", "20240902")}},
			3: {TotalPages: 3, Posts: []json.RawMessage{postWithStart("third", "20240903")}},
		},
	}
	store := cache.New(t.TempDir())
	f := New(source, store, testLogger())

	updates, err := f.Refresh(context.Background())
	require.NoError(t, err)
	all := collect(t, updates)

	// Pages fetched strictly in sequence.
	assert.Equal(t, []int{1, 2, 3}, source.fetchedPages)

	var progress []Progress
	var batches [][]event.Event
	for _, u := range all {
		switch u := u.(type) {
		case Progress:
			progress = append(progress, u)
		case Batch:
			batches = append(batches, u.Events)
		}
	}

	assert.Equal(t, []Progress{{1, 3}, {2, 3}, {3, 3}}, progress)
	require.Len(t, batches, 3)
	require.Len(t, batches[0], 1, "record without start date must be dropped")
	assert.Equal(t, "first", batches[0][0].Title)
	assert.Equal(t, "second", batches[1][0].Title)
	assert.Equal(t, "third", batches[2][0].Title)

	finished, ok := terminal(t, all).(Finished)
	require.True(t, ok, "terminal update is %T, want Finished", terminal(t, all))
	assert.Equal(t, source.categories, finished.Categories)
	assert.Len(t, finished.Posts, 4, "aggregate keeps every raw post, startless included")

	// Snapshot and finished payload are mutually consistent.
	cats, posts, fetchedAt := store.Load()
	assert.Equal(t, finished.Categories, cats)
	assert.Equal(t, finished.FetchedAt, fetchedAt)
	assert.Len(t, posts, 4)
}

func TestRefreshPageFailureLeavesSnapshot(t *testing.T) {
	store := cache.New(t.TempDir())
	oldPosts := []json.RawMessage{json.RawMessage(`{"id":99}`)}
	require.NoError(t, store.Save(map[int64]string{9: "régi"}, oldPosts, "2026-01-01T00:00:00Z"))

	source := &fakeSource{
		categories: map[int64]string{1: "Fesztivál"},
		pages: map[int]*wpapi.PostsPage{
			1: {TotalPages: 3, Posts: []json.RawMessage{postWithStart("first", "20240901")}},
		},
		pageErr: map[int]error{2: &wpapi.StatusError{StatusCode: 500, URL: "http://example"}},
	}
	f := New(source, store, testLogger())

	updates, err := f.Refresh(context.Background())
	require.NoError(t, err)
	all := collect(t, updates)

	failed, ok := terminal(t, all).(Failed)
	require.True(t, ok, "terminal update is %T, want Failed", terminal(t, all))
	assert.Contains(t, failed.Message, "page 2")

	for _, u := range all {
		_, isFinished := u.(Finished)
		assert.False(t, isFinished, "Failed and Finished are mutually exclusive")
	}

	// Page 3 never attempted after the failure.
	assert.Equal(t, []int{1, 2}, source.fetchedPages)

	// Previous snapshot untouched.
	cats, posts, fetchedAt := store.Load()
	assert.Equal(t, map[int64]string{9: "régi"}, cats)
	assert.Equal(t, oldPosts, posts)
	assert.Equal(t, "2026-01-01T00:00:00Z", fetchedAt)
}

func TestRefreshCategoryFailure(t *testing.T) {
	source := &fakeSource{catErr: errors.New("boom")}
	f := New(source, cache.New(t.TempDir()), testLogger())

	updates, err := f.Refresh(context.Background())
	require.NoError(t, err)
	all := collect(t, updates)

	failed, ok := terminal(t, all).(Failed)
	require.True(t, ok)
	assert.Contains(t, failed.Message, "categories")
	assert.Empty(t, source.fetchedPages, "no post pages fetched after category failure")
}

type failingStore struct{}

func (failingStore) Save(map[int64]string, []json.RawMessage, string) error {
	return errors.New("disk full")
}

func TestRefreshSaveFailure(t *testing.T) {
	source := &fakeSource{
		categories: map[int64]string{},
		pages: map[int]*wpapi.PostsPage{
			1: {TotalPages: 1, Posts: []json.RawMessage{postWithStart("only", "20240901")}},
		},
	}
	f := New(source, failingStore{}, testLogger())

	updates, err := f.Refresh(context.Background())
	require.NoError(t, err)
	all := collect(t, updates)

	failed, ok := terminal(t, all).(Failed)
	require.True(t, ok, "terminal update is %T, want Failed", terminal(t, all))
	assert.Contains(t, failed.Message, "snapshot")
}

func TestRefreshRejectsConcurrentRun(t *testing.T) {
	source := &fakeSource{
		categories: map[int64]string{},
		catStarted: make(chan struct{}),
		catBlock:   make(chan struct{}),
		pages: map[int]*wpapi.PostsPage{
			1: {TotalPages: 1, Posts: nil},
		},
	}
	f := New(source, cache.New(t.TempDir()), testLogger())

	updates, err := f.Refresh(context.Background())
	require.NoError(t, err)

	// Drain in the background so the unbuffered stream keeps moving while
	// the second Refresh is attempted mid-run.
	drained := make(chan []Update, 1)
	go func() {
		var all []Update
		for u := range updates {
			all = append(all, u)
		}
		drained <- all
	}()

	// Wait until the run is inside the source call, then try again.
	<-source.catStarted
	_, err = f.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrRefreshInProgress)

	close(source.catBlock)
	var all []Update
	select {
	case all = <-drained:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the run to finish")
	}
	_, ok := terminal(t, all).(Finished)
	assert.True(t, ok)

	// After the run ends a new refresh is accepted again.
	updates, err = f.Refresh(context.Background())
	require.NoError(t, err)
	collect(t, updates)
}

func TestRefreshDefaultsTotalPages(t *testing.T) {
	source := &fakeSource{
		categories: map[int64]string{},
		pages: map[int]*wpapi.PostsPage{
			1: {TotalPages: 1, Posts: []json.RawMessage{postWithStart("only", "20240901")}},
		},
	}
	f := New(source, cache.New(t.TempDir()), testLogger())

	updates, err := f.Refresh(context.Background())
	require.NoError(t, err)
	all := collect(t, updates)

	_, ok := terminal(t, all).(Finished)
	require.True(t, ok)
	assert.Equal(t, []int{1}, source.fetchedPages)
}
