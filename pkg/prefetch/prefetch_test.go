package prefetch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tigerabrodi/hinata/pkg/feed"
)

type recordingAPI struct {
	mu         sync.Mutex
	photoIDs   []string
	usernames  []string
	photoPages []int
	err        error
	done       chan struct{}
}

func newRecordingAPI(expectedCalls int) *recordingAPI {
	return &recordingAPI{done: make(chan struct{}, expectedCalls)}
}

func (a *recordingAPI) GetPhoto(_ context.Context, id string) (*feed.Photo, error) {
	a.mu.Lock()
	a.photoIDs = append(a.photoIDs, id)
	a.mu.Unlock()
	a.done <- struct{}{}
	return &feed.Photo{ID: id, Width: 1, Height: 1}, a.err
}

func (a *recordingAPI) GetUser(_ context.Context, username string) (*feed.User, error) {
	a.mu.Lock()
	a.usernames = append(a.usernames, username)
	a.mu.Unlock()
	a.done <- struct{}{}
	return &feed.User{Username: username}, a.err
}

func (a *recordingAPI) GetUserPhotos(_ context.Context, _ string, page, _ int) ([]feed.Photo, error) {
	a.mu.Lock()
	a.photoPages = append(a.photoPages, page)
	a.mu.Unlock()
	a.done <- struct{}{}
	return nil, a.err
}

func waitForCalls(t *testing.T, api *recordingAPI, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-api.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for prefetch call %d of %d", i+1, n)
		}
	}
}

func TestPrefetch_WarmsAllThreeTargets(t *testing.T) {
	api := newRecordingAPI(3)
	s := NewScheduler(api, zerolog.Nop())

	photo := feed.Photo{ID: "abc", Width: 10, Height: 10, User: feed.User{Username: "tiger"}}
	s.Prefetch(context.Background(), photo)
	waitForCalls(t, api, 3)

	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.photoIDs) != 1 || api.photoIDs[0] != "abc" {
		t.Errorf("photo detail calls = %v, want [abc]", api.photoIDs)
	}
	if len(api.usernames) != 1 || api.usernames[0] != "tiger" {
		t.Errorf("user detail calls = %v, want [tiger]", api.usernames)
	}
	if len(api.photoPages) != 1 || api.photoPages[0] != OwnerPhotosPage {
		t.Errorf("user photos pages = %v, want [%d]", api.photoPages, OwnerPhotosPage)
	}
}

func TestPrefetch_FailuresAreSwallowed(t *testing.T) {
	api := newRecordingAPI(3)
	api.err = errors.New("boom")
	s := NewScheduler(api, zerolog.Nop())

	// Must not panic or propagate anything.
	s.Prefetch(context.Background(), feed.Photo{ID: "abc", User: feed.User{Username: "tiger"}})
	waitForCalls(t, api, 3)
}

func TestPrefetch_NoOwnerSkipsOwnerFetches(t *testing.T) {
	api := newRecordingAPI(1)
	s := NewScheduler(api, zerolog.Nop())

	s.Prefetch(context.Background(), feed.Photo{ID: "abc"})
	waitForCalls(t, api, 1)

	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.usernames) != 0 || len(api.photoPages) != 0 {
		t.Error("owner fetches should be skipped without a username")
	}
}

func TestPrefetch_RedundantCallsAreSafe(t *testing.T) {
	api := newRecordingAPI(6)
	s := NewScheduler(api, zerolog.Nop())

	photo := feed.Photo{ID: "abc", User: feed.User{Username: "tiger"}}
	s.Prefetch(context.Background(), photo)
	s.Prefetch(context.Background(), photo)
	waitForCalls(t, api, 6)

	// No de-duplication here: both rounds reach the collaborator,
	// whose response cache absorbs the cost.
	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.photoIDs) != 2 {
		t.Errorf("photo detail calls = %d, want 2", len(api.photoIDs))
	}
}
