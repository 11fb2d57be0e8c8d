package sources

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/khushi6simplex/js2analytics-sub000/models"
)

func works(districts ...string) []models.Feature {
	out := make([]models.Feature, 0, len(districts))
	for _, d := range districts {
		out = append(out, models.NewFeature(map[string]any{"district": d}))
	}
	return out
}

func testStore(ttl time.Duration) (*Store, *int32) {
	var calls int32
	static := Static{
		"works_primary": works("Pune", "Satara"),
		"works_shadow":  works("Nashik"),
		"villages":      works("Pune"),
	}
	var c *cache.Cache
	if ttl > 0 {
		c = cache.New(ttl, 2*ttl)
	}
	s := NewStore(c)
	s.Register("wfs", SourceFunc(func(ctx context.Context, q Query) ([]models.Feature, error) {
		atomic.AddInt32(&calls, 1)
		return static.Fetch(ctx, q)
	}))
	s.Register("broken", SourceFunc(func(ctx context.Context, q Query) ([]models.Feature, error) {
		return nil, errors.New("connection refused")
	}))
	s.Bind(Binding{Name: "works", Source: "wfs", Collections: []string{"works_shadow", "works_primary"}})
	s.Bind(Binding{Name: "villages", Source: "wfs"})
	s.Bind(Binding{Name: "subplans", Source: "broken"})
	return s, &calls
}

func TestStoreFetchConcatenatesCollections(t *testing.T) {
	s, _ := testStore(0)
	features, err := s.Fetch(context.Background(), "works")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	got := []string{}
	for _, f := range features {
		got = append(got, f.Text("district"))
	}
	want := []string{"Nashik", "Pune", "Satara"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestStoreFetchUnknown(t *testing.T) {
	s, _ := testStore(0)
	if _, err := s.Fetch(context.Background(), "nope"); !errors.Is(err, ErrUnknownSource) {
		t.Errorf("expected ErrUnknownSource, got %v", err)
	}
	s.Bind(Binding{Name: "orphan", Source: "missing"})
	if _, err := s.Fetch(context.Background(), "orphan"); !errors.Is(err, ErrUnknownSource) {
		t.Errorf("expected ErrUnknownSource for an unregistered source, got %v", err)
	}
}

func TestStoreCacheAndInvalidate(t *testing.T) {
	s, calls := testStore(time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := s.Fetch(ctx, "villages"); err != nil {
			t.Fatal(err)
		}
	}
	if n := atomic.LoadInt32(calls); n != 1 {
		t.Errorf("expected 1 backend call with caching, got %d", n)
	}

	s.Invalidate("villages")
	if _, err := s.Fetch(ctx, "villages"); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(calls); n != 2 {
		t.Errorf("expected a refetch after Invalidate, got %d calls", n)
	}

	s.Invalidate()
	s.Fetch(ctx, "villages")
	if n := atomic.LoadInt32(calls); n != 3 {
		t.Errorf("expected a refetch after a full flush, got %d calls", n)
	}
}

func TestStoreLoadPartialFailure(t *testing.T) {
	s, _ := testStore(0)
	ws, results, err := s.Load(context.Background(), []string{"works", "subplans", "villages"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if ws.Status != models.StatusReady {
		t.Errorf("expected ready, got %s", ws.Status)
	}
	if len(ws.Failed) != 1 || ws.Failed[0] != "subplans" {
		t.Errorf("expected subplans to fail, got %v", ws.Failed)
	}
	if got := ws.Features("subplans"); got == nil || len(got) != 0 {
		t.Errorf("expected an empty set for the failed binding, got %v", got)
	}
	if len(ws.Features("works")) != 3 || len(ws.Features("villages")) != 1 {
		t.Error("expected the healthy bindings to load")
	}
	if results[1].Error == nil {
		t.Error("expected the per-binding error to be reported")
	}
}

func TestStoreFetchKeepsHealthyCollections(t *testing.T) {
	var calls int32
	s := NewStore(cache.New(time.Minute, 2*time.Minute))
	s.Register("wfs", SourceFunc(func(ctx context.Context, q Query) ([]models.Feature, error) {
		atomic.AddInt32(&calls, 1)
		if q.Collection == "works_shadow" {
			return nil, errors.New("layer not published")
		}
		return works("Pune"), nil
	}))
	s.Bind(Binding{Name: "works", Source: "wfs", Collections: []string{"works_shadow", "works"}})

	ws, _, err := s.Load(context.Background(), []string{"works"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := len(ws.Features("works")); got != 1 {
		t.Errorf("expected the healthy collection to survive, got %d works", got)
	}
	if ws.Status != models.StatusReady || len(ws.Failed) != 0 {
		t.Errorf("expected ready with no failed bindings, got %s %v", ws.Status, ws.Failed)
	}

	if _, err := s.Fetch(context.Background(), "works"); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&calls); n != 4 {
		t.Errorf("expected a partial result to stay uncached, got %d calls", n)
	}
}

func TestStoreFetchAllCollectionsFail(t *testing.T) {
	s := NewStore(nil)
	s.Register("wfs", SourceFunc(func(ctx context.Context, q Query) ([]models.Feature, error) {
		return nil, errors.New("timeout")
	}))
	s.Bind(Binding{Name: "works", Source: "wfs", Collections: []string{"works_shadow", "works"}})
	if _, err := s.Fetch(context.Background(), "works"); err == nil {
		t.Error("expected an error when every collection fails")
	}
}

func TestStoreLoadNoData(t *testing.T) {
	s, _ := testStore(0)
	ws, _, err := s.Load(context.Background(), []string{"subplans"})
	if err != nil {
		t.Fatal(err)
	}
	if ws.Status != models.StatusNoData {
		t.Errorf("expected no_data when every source fails, got %s", ws.Status)
	}
}

func TestStoreLoadCancelled(t *testing.T) {
	s, _ := testStore(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := s.Load(ctx, []string{"works"}); err == nil {
		t.Error("expected an error for a cancelled context")
	}
}

func TestTrackerLastWriteWins(t *testing.T) {
	var tr Tracker
	if tr.Status() != models.StatusLoading {
		t.Errorf("expected loading before first commit, got %s", tr.Status())
	}

	older := tr.Begin()
	newer := tr.Begin()
	fresh := &WorkingSet{Status: models.StatusReady}
	stale := &WorkingSet{Status: models.StatusNoData}

	if !tr.Commit(newer, fresh) {
		t.Fatal("expected the newest generation to commit")
	}
	if tr.Commit(older, stale) {
		t.Error("expected the stale generation to be rejected")
	}
	if tr.Current() != fresh {
		t.Error("stale load replaced the newer working set")
	}
}

func TestTrackerConcurrentCommits(t *testing.T) {
	var tr Tracker
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			gen := tr.Begin()
			tr.Commit(gen, &WorkingSet{Status: models.StatusReady})
		}()
	}
	wg.Wait()
	if tr.Current() == nil {
		t.Error("expected at least the newest load to commit")
	}
}
